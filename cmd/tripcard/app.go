package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/pkordes/trip-planner/backend/internal/config"
	"github.com/pkordes/trip-planner/backend/internal/gateway"
	"github.com/pkordes/trip-planner/backend/internal/repo"
	"github.com/pkordes/trip-planner/backend/internal/service"
)

// app holds the values shared by every subcommand: persistent flag values
// and the seams tests replace.
type app struct {
	server    string
	storePath string
	verbose   bool

	now        func() time.Time
	httpClient *http.Client
}

func newApp() *app {
	return &app{now: time.Now}
}

func defaultStorePath() string {
	if p := os.Getenv("STORE_PATH"); p != "" {
		return p
	}
	return "trips.json"
}

func (a *app) logger() *slog.Logger {
	level := slog.LevelWarn
	if a.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// store opens the file-backed trip store at --store.
func (a *app) store(ctx context.Context) (repo.TripStore, error) {
	kv, _, err := repo.OpenKV(ctx, repo.StoreOptions{Driver: config.StoreFile, Path: a.storePath})
	if err != nil {
		return nil, err
	}
	return repo.NewTripStore(kv), nil
}

// gateway returns a proxy client when --server is set, otherwise a direct
// client configured from the environment.
func (a *app) gateway(log *slog.Logger) (service.Gateway, error) {
	if a.server != "" {
		return gateway.NewProxyClient(a.server, a.httpClient), nil
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("direct lookups need provider credentials (or use --server): %w", err)
	}
	return gateway.New(gateway.Options{
		Credentials: gateway.Credentials{
			GeonamesUser:  cfg.GeonamesUser,
			WeatherbitKey: cfg.WeatherbitKey,
			PixabayKey:    cfg.PixabayKey,
		},
		GeonamesURL:   cfg.GeonamesURL,
		WeatherbitURL: cfg.WeatherbitURL,
		PixabayURL:    cfg.PixabayURL,
		Timeout:       cfg.UpstreamTimeout,
		HTTPClient:    a.httpClient,
		Logger:        log,
	})
}
