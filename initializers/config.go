package initializers

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port     string
	GinMode  string
	AppEnv   string
	SiteURL  string
	DBURL    string
	Secret   string
	ClientID string

	OpenAIAPIKey          string
	OpenAIBaseURL         string
	OpenAIModel           string
	OpenAIModerationModel string
	OpenAIMaxRetries      int
	GeneratorProvider     string
	GeminiAPIKey          string
	GeminiModel           string

	RequestTimeout     time.Duration
	ModerationFailOpen bool
	MatchMinKeywords   int
	MatchMinMatches    int
	MatchMinPercentage float64

	CORSOrigins    []string
	RedisURL       string
	RateLimitRPS   float64
	RateLimitBurst int

	ResendAPIKey        string
	ResendFromEmail     string
	FirebaseAccountPath string
	PushEnabled         bool

	OtelEnabled     bool
	OtelEndpoint    string
	OtelInsecure    bool
	OtelServiceName string
	OtelSampleRatio float64
}

// LoadConfig reads the configuration from the environment, applying
// defaults for everything optional.
func LoadConfig() (Config, error) {
	cfg := Config{
		Port:     getEnv("PORT", "8080"),
		GinMode:  getEnv("GIN_MODE", "debug"),
		AppEnv:   getEnv("APP_ENV", "development"),
		SiteURL:  getEnv("SITE_URL", "http://localhost:3000"),
		DBURL:    getEnv("DB_URL", ""),
		Secret:   getEnv("SECRET", ""),
		ClientID: getEnv("GOOGLE_CLIENT_ID", ""),

		OpenAIAPIKey:          getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:         getEnv("OPENAI_BASE_URL", "https://api.openai.com"),
		OpenAIModel:           getEnv("OPENAI_MODEL", "gpt-4o"),
		OpenAIModerationModel: getEnv("OPENAI_MODERATION_MODEL", "omni-moderation-latest"),
		GeneratorProvider:     strings.ToLower(getEnv("GENERATOR_PROVIDER", "openai")),
		GeminiAPIKey:          getEnv("GEMINI_API_KEY", ""),
		GeminiModel:           getEnv("GEMINI_MODEL", "gemini-2.5-flash"),

		CORSOrigins: splitList(getEnv("CORS_ORIGINS", "http://localhost:3000")),
		RedisURL:    getEnv("REDIS_URL", ""),

		ResendAPIKey:        getEnv("RESEND_API_KEY", ""),
		ResendFromEmail:     getEnv("RESEND_FROM_EMAIL", "WWJD <noreply@wwjd.app>"),
		FirebaseAccountPath: getEnv("FIREBASE_SERVICE_ACCOUNT_PATH", ""),

		OtelEndpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		OtelServiceName: getEnv("OTEL_SERVICE_NAME", "wwjd"),
	}

	var err error
	if cfg.OpenAIMaxRetries, err = getInt("OPENAI_MAX_RETRIES", 0); err != nil {
		return Config{}, err
	}
	timeoutSeconds, err := getInt("REQUEST_TIMEOUT_SECONDS", 30)
	if err != nil {
		return Config{}, err
	}
	cfg.RequestTimeout = time.Duration(timeoutSeconds) * time.Second
	if cfg.ModerationFailOpen, err = getBool("MODERATION_FAIL_OPEN", true); err != nil {
		return Config{}, err
	}
	if cfg.MatchMinKeywords, err = getInt("MATCH_MIN_KEYWORDS", 2); err != nil {
		return Config{}, err
	}
	if cfg.MatchMinMatches, err = getInt("MATCH_MIN_MATCHES", 2); err != nil {
		return Config{}, err
	}
	if cfg.MatchMinPercentage, err = getFloat("MATCH_MIN_PERCENTAGE", 0.4); err != nil {
		return Config{}, err
	}
	if cfg.RateLimitRPS, err = getFloat("RATE_LIMIT_RPS", 1); err != nil {
		return Config{}, err
	}
	if cfg.RateLimitBurst, err = getInt("RATE_LIMIT_BURST", 5); err != nil {
		return Config{}, err
	}
	if cfg.PushEnabled, err = getBool("PUSH_ENABLED", cfg.FirebaseAccountPath != ""); err != nil {
		return Config{}, err
	}
	if cfg.OtelEnabled, err = getBool("OTEL_ENABLED", false); err != nil {
		return Config{}, err
	}
	if cfg.OtelInsecure, err = getBool("OTEL_EXPORTER_OTLP_INSECURE", false); err != nil {
		return Config{}, err
	}
	if cfg.OtelSampleRatio, err = getFloat("OTEL_SAMPLER_RATIO", 1); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks the settings the HTTP server cannot run without.
func (c Config) Validate() error {
	if c.DBURL == "" {
		return fmt.Errorf("DB_URL is required")
	}
	if c.Secret == "" {
		return fmt.Errorf("SECRET is required")
	}
	if c.OpenAIAPIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required for moderation")
	}
	switch c.GeneratorProvider {
	case "openai":
	case "gemini":
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required when GENERATOR_PROVIDER=gemini")
		}
	default:
		return fmt.Errorf("unknown GENERATOR_PROVIDER %q", c.GeneratorProvider)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT_SECONDS must be positive")
	}
	if c.MatchMinPercentage < 0 || c.MatchMinPercentage > 1 {
		return fmt.Errorf("MATCH_MIN_PERCENTAGE must be between 0 and 1")
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		return fmt.Errorf("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func getFloat(key string, fallback float64) (float64, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func getBool(key string, fallback bool) (bool, error) {
	raw := strings.ToLower(getEnv(key, ""))
	switch raw {
	case "":
		return fallback, nil
	case "1", "true", "yes", "on":
		return true, nil
	case "0", "false", "no", "off":
		return false, nil
	}
	return false, fmt.Errorf("invalid %s: %q", key, raw)
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
