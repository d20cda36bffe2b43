package normalize

import "github.com/pkordes/trip-planner/backend/internal/domain"

// PixabayResponse is the body of GET /api/.
type PixabayResponse struct {
	Total int          `json:"total"`
	Hits  []PixabayHit `json:"hits"`
}

// PixabayHit is one image in a PixabayResponse.
type PixabayHit struct {
	ID            int    `json:"id"`
	WebformatURL  string `json:"webformatURL"`
	LargeImageURL string `json:"largeImageURL"`
}

// Pixabay returns the web-format URL of the first hit, or
// domain.PlaceholderImageURL when there are no hits. No match is not an error.
func Pixabay(resp PixabayResponse) string {
	if len(resp.Hits) == 0 || resp.Hits[0].WebformatURL == "" {
		return domain.PlaceholderImageURL
	}
	return resp.Hits[0].WebformatURL
}
