package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/swamyhotfoods/shopfront/internal/hours"
	"go-simpler.org/env"
)

type Config struct {
	AppEnv      string `env:"APP_ENV" default:"development"`
	Port        string `env:"PORT" default:"3001"`
	DatabaseURL string `env:"DATABASE_URL"`
	RedisURL    string `env:"REDIS_URL"`
	LogLevel    string `env:"LOG_LEVEL" default:"info"`
	LogFormat   string `env:"LOG_FORMAT" default:"text"`

	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
	CORSAllowedSuffix  string `env:"CORS_ALLOWED_SUFFIX"`

	UploadDir      string `env:"UPLOAD_DIR" default:"uploads"`
	UploadMaxBytes int64  `env:"UPLOAD_MAX_BYTES" default:"5242880"` // 5 MiB

	PlacesAPIKey    string        `env:"PLACES_API_KEY"`
	PlaceID         string        `env:"PLACE_ID"`
	PlacesBaseURL   string        `env:"PLACES_BASE_URL" default:"https://maps.googleapis.com/maps/api/place"`
	ReviewsCacheTTL time.Duration `env:"REVIEWS_CACHE_TTL" default:"10m"`

	StatusRefreshInterval   time.Duration `env:"STATUS_REFRESH_INTERVAL" default:"30s"`
	ShopTimezoneOffset      int           `env:"SHOP_TIMEZONE_OFFSET" default:"330"` // minutes east of UTC
	MaxWebSocketConnections int           `env:"MAX_WEBSOCKET_CONNECTIONS" default:"1000"`

	// Offsets from local midnight.
	ShopMorningOpen     time.Duration `env:"SHOP_MORNING_OPEN" default:"7h"`
	ShopMorningClose    time.Duration `env:"SHOP_MORNING_CLOSE" default:"11h"`
	ShopEveningOpen     time.Duration `env:"SHOP_EVENING_OPEN" default:"16h30m"`
	ShopEveningClose    time.Duration `env:"SHOP_EVENING_CLOSE" default:"21h"`
	ShopClosingSoonLead time.Duration `env:"SHOP_CLOSING_SOON_LEAD" default:"15m"`

	APIRateLimit float64 `env:"API_RATE_LIMIT" default:"10"`
	APIRateBurst int     `env:"API_RATE_BURST" default:"20"`
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// AllowedOrigins returns the comma separated CORS allow-list as a slice.
func (c *Config) AllowedOrigins() []string {
	var origins []string
	for _, origin := range strings.Split(c.CORSAllowedOrigins, ",") {
		origin = strings.TrimRight(strings.TrimSpace(origin), "/")
		if origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}

// ReviewsEnabled reports whether the upstream reviews API is configured.
func (c *Config) ReviewsEnabled() bool {
	return c.PlacesAPIKey != "" && c.PlaceID != ""
}

// ShopSchedule builds the opening-hours schedule in the configured fixed offset.
func (c *Config) ShopSchedule() hours.Schedule {
	return hours.Schedule{
		Zone:            time.FixedZone("shop", c.ShopTimezoneOffset*60),
		MorningOpen:     c.ShopMorningOpen,
		MorningClose:    c.ShopMorningClose,
		EveningOpen:     c.ShopEveningOpen,
		EveningClose:    c.ShopEveningClose,
		ClosingSoonLead: c.ShopClosingSoonLead,
	}
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func validate(cfg *Config) error {
	if cfg.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required")
	}

	if cfg.StatusRefreshInterval <= 0 {
		return errors.New("STATUS_REFRESH_INTERVAL must be positive")
	}
	if cfg.ReviewsCacheTTL <= 0 {
		return errors.New("REVIEWS_CACHE_TTL must be positive")
	}
	if cfg.UploadMaxBytes <= 0 {
		return errors.New("UPLOAD_MAX_BYTES must be positive")
	}
	if cfg.ShopTimezoneOffset < -12*60 || cfg.ShopTimezoneOffset > 14*60 {
		return fmt.Errorf("SHOP_TIMEZONE_OFFSET must be between -720 and 840 minutes, got %d", cfg.ShopTimezoneOffset)
	}
	if err := validateShopHours(cfg); err != nil {
		return err
	}
	if cfg.MaxWebSocketConnections < 0 {
		return errors.New("MAX_WEBSOCKET_CONNECTIONS must not be negative")
	}
	if cfg.APIRateLimit <= 0 || cfg.APIRateBurst <= 0 {
		return errors.New("API_RATE_LIMIT and API_RATE_BURST must be positive")
	}

	if (cfg.PlacesAPIKey == "") != (cfg.PlaceID == "") {
		return errors.New("PLACES_API_KEY and PLACE_ID must be set together")
	}

	if cfg.IsProduction() {
		if err := requireSecureSSL(cfg.DatabaseURL); err != nil {
			return err
		}
	}

	return nil
}

func validateShopHours(cfg *Config) error {
	if cfg.ShopMorningOpen < 0 ||
		cfg.ShopMorningOpen >= cfg.ShopMorningClose ||
		cfg.ShopMorningClose > cfg.ShopEveningOpen ||
		cfg.ShopEveningOpen >= cfg.ShopEveningClose ||
		cfg.ShopEveningClose > 24*time.Hour {
		return fmt.Errorf("shop hours must satisfy 0 <= SHOP_MORNING_OPEN < SHOP_MORNING_CLOSE <= SHOP_EVENING_OPEN < SHOP_EVENING_CLOSE <= 24h, got %s-%s and %s-%s",
			cfg.ShopMorningOpen, cfg.ShopMorningClose, cfg.ShopEveningOpen, cfg.ShopEveningClose)
	}
	if cfg.ShopClosingSoonLead <= 0 {
		return errors.New("SHOP_CLOSING_SOON_LEAD must be positive")
	}
	return nil
}

func requireSecureSSL(databaseURL string) error {
	u, err := url.Parse(databaseURL)
	if err != nil {
		return fmt.Errorf("DATABASE_URL is not a valid URL: %w", err)
	}

	mode := strings.ToLower(u.Query().Get("sslmode"))
	if mode == "disable" || mode == "allow" {
		return fmt.Errorf("DATABASE_URL uses sslmode=%s which is not allowed in production", mode)
	}
	return nil
}
