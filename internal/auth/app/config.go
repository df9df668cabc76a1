package app

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/recipic-shop/recipic/pkg/jwtx"
)

// SocialProviderConfig carries the OAuth2 client credentials for one social
// provider. A provider with an empty ClientID is left unregistered.
type SocialProviderConfig struct {
	ClientID     string
	ClientSecret string
}

type Config struct {
	Issuer string // Required: issuer claim for tokens

	KeyFile      string // Optional: path to Ed25519 PEM signing key (default: ./auth.key, generated when missing)
	KeyID        string // Optional: kid published in the JWKS (default: recipic-auth-key-001)
	DatabaseFile string // Optional: path to SQLite database file (default: ./auth.db)
	PepperFile   string // Optional: path to file containing pepper for password hashing (default: ./pepper)

	Env       string // Environment (dev, staging, prod) (default: dev)
	LogLevel  string // Log level (debug, info, warn, error) (default: info)
	LogFormat string // Log format (json, text) (default: json)
	Port      int    // HTTP server port (default: 8080)

	// FrontendURL is where activation links and social login redirects
	// point, e.g. http://local.recipic.shop:3000.
	FrontendURL string
	CORSOrigins []string

	AccessTTL           time.Duration
	RefreshTTL          time.Duration
	AutoLoginRefreshTTL time.Duration

	// SMTP relay for activation mail. When Host is empty the service logs
	// activation links instead of sending them.
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string

	Kakao  SocialProviderConfig
	Google SocialProviderConfig
	Naver  SocialProviderConfig
	// OAuth2RedirectBase is the externally visible base URL of this service,
	// used to build the provider redirect URIs (default: http://localhost:8080).
	OAuth2RedirectBase string

	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 1h)
}

func LoadConfig() Config {
	cfg := Config{
		Issuer:       getEnvOrDefault("AUTH_ISSUER", "recipic-auth"),
		KeyFile:      getEnvOrDefault("AUTH_KEY_FILE", "auth.key"),
		KeyID:        getEnvOrDefault("AUTH_KEY_ID", "recipic-auth-key-001"),
		DatabaseFile: getEnvOrDefault("AUTH_DATABASE_FILE", "auth.db"),
		PepperFile:   getEnvOrDefault("AUTH_PEPPER_FILE", "pepper"),

		Env:       getEnvOrDefault("ENV", "dev"),
		LogLevel:  getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat: getEnvOrDefault("LOG_FORMAT", "json"),
		Port:      getEnvIntOrDefault("PORT", 8080),

		FrontendURL: getEnvOrDefault("FRONTEND_URL", "http://local.recipic.shop:3000"),

		AccessTTL:           getEnvDurationOrDefault("AUTH_ACCESS_TTL", jwtx.DefaultAccessTokenTTL),
		RefreshTTL:          getEnvDurationOrDefault("AUTH_REFRESH_TTL", jwtx.DefaultRefreshTokenTTL),
		AutoLoginRefreshTTL: getEnvDurationOrDefault("AUTH_AUTOLOGIN_REFRESH_TTL", jwtx.DefaultAutoLoginRefreshTTL),

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     getEnvIntOrDefault("SMTP_PORT", 587),
		SMTPUsername: os.Getenv("SMTP_USERNAME"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		SMTPFrom:     getEnvOrDefault("SMTP_FROM", "no-reply@recipic.shop"),

		Kakao: SocialProviderConfig{
			ClientID:     os.Getenv("OAUTH2_KAKAO_CLIENT_ID"),
			ClientSecret: os.Getenv("OAUTH2_KAKAO_CLIENT_SECRET"),
		},
		Google: SocialProviderConfig{
			ClientID:     os.Getenv("OAUTH2_GOOGLE_CLIENT_ID"),
			ClientSecret: os.Getenv("OAUTH2_GOOGLE_CLIENT_SECRET"),
		},
		Naver: SocialProviderConfig{
			ClientID:     os.Getenv("OAUTH2_NAVER_CLIENT_ID"),
			ClientSecret: os.Getenv("OAUTH2_NAVER_CLIENT_SECRET"),
		},
		OAuth2RedirectBase: getEnvOrDefault("OAUTH2_REDIRECT_BASE", "http://localhost:8080"),

		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
	}

	cfg.CORSOrigins = getEnvListOrDefault("CORS_ORIGINS", []string{
		"http://local.recipic.shop:3000",
		"http://recipic.shop",
	})

	return cfg
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Try parsing as integer minutes (for backwards compatibility)
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}

func getEnvListOrDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
