// Package config loads and validates application configuration from an
// optional YAML file and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Store drivers accepted in STORE_DRIVER.
const (
	StoreMemory   = "memory"
	StoreFile     = "file"
	StorePostgres = "postgres"
	StoreRedis    = "redis"
)

// Config holds all configuration values for the API server and the CLI.
// Values are populated by Load. The env tag names the variable that sets
// each field and is used in validation messages.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string `yaml:"port" env:"PORT" validate:"required,numeric"`

	// LogLevel controls the minimum log level. Defaults to "info".
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL" validate:"oneof=debug info warn error"`

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Defaults to ["http://localhost:5173"]. CORS_ORIGINS is comma-separated.
	CORSOrigins []string `yaml:"cors_origins" env:"CORS_ORIGINS" validate:"dive,url"`

	// Upstream credentials. Required; they never leave the server.
	GeonamesUser  string `yaml:"geonames_user" env:"GEONAMES_USER" validate:"required"`
	WeatherbitKey string `yaml:"weatherbit_key" env:"WEATHERBIT_KEY" validate:"required"`
	PixabayKey    string `yaml:"pixabay_key" env:"PIXABAY_KEY" validate:"required"`

	// Upstream base URLs. Empty means the provider's public endpoint.
	GeonamesURL   string `yaml:"geonames_url" env:"GEONAMES_URL" validate:"omitempty,url"`
	WeatherbitURL string `yaml:"weatherbit_url" env:"WEATHERBIT_URL" validate:"omitempty,url"`
	PixabayURL    string `yaml:"pixabay_url" env:"PIXABAY_URL" validate:"omitempty,url"`

	// UpstreamTimeout bounds each upstream call. Defaults to 10s.
	UpstreamTimeout time.Duration `yaml:"upstream_timeout" env:"UPSTREAM_TIMEOUT" validate:"gt=0"`

	// StoreDriver selects the trip store backend. Defaults to "file".
	StoreDriver string `yaml:"store_driver" env:"STORE_DRIVER" validate:"oneof=memory file postgres redis"`
	StorePath   string `yaml:"store_path" env:"STORE_PATH" validate:"required_if=StoreDriver file"`
	DatabaseURL string `yaml:"database_url" env:"DATABASE_URL" validate:"required_if=StoreDriver postgres"`
	RedisURL    string `yaml:"redis_url" env:"REDIS_URL" validate:"required_if=StoreDriver redis"`

	// MaxBodyBytes caps request bodies. 0 disables the limit. Defaults to 1 MiB.
	MaxBodyBytes int64 `yaml:"max_body_bytes" env:"MAX_BODY_BYTES" validate:"gte=0"`

	// AssetsDir, when set, is served under /assets (placeholder image).
	AssetsDir string `yaml:"assets_dir" env:"ASSETS_DIR"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		Port:            "8080",
		LogLevel:        "info",
		CORSOrigins:     []string{"http://localhost:5173"},
		UpstreamTimeout: 10 * time.Second,
		StoreDriver:     StoreFile,
		StorePath:       "trips.json",
		MaxBodyBytes:    1 << 20,
	}
}

// Load builds a Config from defaults, then the YAML file named by
// CONFIG_FILE (if set), then environment variables, and validates the result.
// The returned error names every offending variable.
func Load() (Config, error) {
	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}

	if err := validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config.Load: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("config.Load: parse %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.LogLevel = strings.ToLower(getEnv("LOG_LEVEL", cfg.LogLevel))
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		cfg.CORSOrigins = splitCSV(v)
	}

	cfg.GeonamesUser = getEnv("GEONAMES_USER", cfg.GeonamesUser)
	cfg.WeatherbitKey = getEnv("WEATHERBIT_KEY", cfg.WeatherbitKey)
	cfg.PixabayKey = getEnv("PIXABAY_KEY", cfg.PixabayKey)
	cfg.GeonamesURL = getEnv("GEONAMES_URL", cfg.GeonamesURL)
	cfg.WeatherbitURL = getEnv("WEATHERBIT_URL", cfg.WeatherbitURL)
	cfg.PixabayURL = getEnv("PIXABAY_URL", cfg.PixabayURL)

	if v := os.Getenv("UPSTREAM_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config.Load: UPSTREAM_TIMEOUT: %w", err)
		}
		cfg.UpstreamTimeout = d
	}

	cfg.StoreDriver = strings.ToLower(getEnv("STORE_DRIVER", cfg.StoreDriver))
	cfg.StorePath = getEnv("STORE_PATH", cfg.StorePath)
	cfg.DatabaseURL = getEnv("DATABASE_URL", cfg.DatabaseURL)
	cfg.RedisURL = getEnv("REDIS_URL", cfg.RedisURL)

	if v := os.Getenv("MAX_BODY_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("config.Load: MAX_BODY_BYTES: %w", err)
		}
		cfg.MaxBodyBytes = n
	}

	cfg.AssetsDir = getEnv("ASSETS_DIR", cfg.AssetsDir)
	return nil
}

func validate(cfg Config) error {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("env")
	})

	err := v.Struct(cfg)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("config.Load: %w", err)
	}

	var missing, invalid []string
	for _, fe := range verrs {
		// Namespace is "Config.CORS_ORIGINS[0]" for slice elements.
		name := fe.Field()
		if _, rest, ok := strings.Cut(fe.Namespace(), "."); ok {
			name = rest
		}
		switch fe.Tag() {
		case "required", "required_if":
			missing = append(missing, name)
		default:
			invalid = append(invalid, fmt.Sprintf("%s=%v", name, fe.Value()))
		}
	}

	var parts []string
	if len(missing) > 0 {
		parts = append(parts, "required environment variables not set: "+strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		parts = append(parts, "invalid values: "+strings.Join(invalid, ", "))
	}
	return errors.New(strings.Join(parts, "; "))
}

// getEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
