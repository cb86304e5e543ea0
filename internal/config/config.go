// Package config provides application configuration loaded from environment
// variables with defaults and validation. It centralizes provider
// credentials, token signing keys, the identity gate, server timeouts,
// logging, rate limiting and observability.
//
// Provider and signing credentials have no defaults: a process without them
// cannot issue a single valid token, so Load fails and the server does not
// start.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// TwilioConfig holds account and API key credentials plus the resources
// every request targets.
type TwilioConfig struct {
	AccountSID              string // TWILIO_ACCOUNT_SID
	AuthToken               string // TWILIO_AUTH_TOKEN
	APIKeySID               string // TWILIO_API_KEY_SID
	APIKeySecret            string // TWILIO_API_KEY_SECRET
	RoomType                string // ROOM_TYPE: go|peer-to-peer|group|group-small
	ConversationsServiceSID string // CONVERSATIONS_SERVICE_SID
	DefaultMediaRegion      string // DEFAULT_MEDIA_REGION
}

// AuthConfig defines the identity gate.
type AuthConfig struct {
	ServiceAccountJSON string   // SERVICE_ACCOUNT_TOKEN (Firebase service account JSON)
	DatabaseURL        string   // FIREBASE_DATABASE_URL (optional)
	AllowedDomains     []string // AUTH_ALLOWED_DOMAINS, e.g. "twilio.com"
	TokenEndpoint      bool     // TOKEN_AUTH_ENABLED: also gate /token
}

// CORSConfig defines Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string
}

// SecurityConfig defines security-related settings such as HSTS.
type SecurityConfig struct {
	EnableHSTS bool
	HSTSMaxAge time.Duration
}

// OTELConfig defines OpenTelemetry observability settings.
type OTELConfig struct {
	Enabled     bool    // OTEL_ENABLED
	Endpoint    string  // OTEL_EXPORTER_OTLP_ENDPOINT (e.g. "otel:4317")
	Insecure    bool    // OTEL_EXPORTER_OTLP_INSECURE (true if no TLS)
	ServiceName string  // OTEL_SERVICE_NAME
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0..1]
}

// Config holds all configuration values for the application.
type Config struct {
	// Server
	Port              string
	ReadTimeout       time.Duration
	ReadHeaderTimeout time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	ShutdownTimeout   time.Duration
	MaxHeaderBytes    int
	GinMode           string // debug|release|test

	// Logging / Docs
	LogLevel       string // debug|info|warn|error|fatal|panic
	LogPretty      bool
	SwaggerEnabled bool
	APIBasePath    string

	// Providers
	Twilio TwilioConfig
	Auth   AuthConfig

	// Rate limiting
	RateRPS   float64
	RateBurst int

	// Web protection
	CORS     CORSConfig
	Security SecurityConfig

	// Observability
	OTEL OTELConfig
}

var roomTypes = map[string]struct{}{
	"go":           {},
	"peer-to-peer": {},
	"group":        {},
	"group-small":  {},
}

// MustLoad loads the configuration and panics if validation fails.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads configuration from environment variables,
// applies defaults, normalizes values, and validates the result.
func Load() (Config, error) {
	cfg := Config{
		// Server
		Port:              getenv("PORT", "8081"),
		ReadTimeout:       getdur("READ_TIMEOUT", 15*time.Second),
		ReadHeaderTimeout: getdur("READ_HEADER_TIMEOUT", 10*time.Second),
		WriteTimeout:      getdur("WRITE_TIMEOUT", 30*time.Second),
		IdleTimeout:       getdur("IDLE_TIMEOUT", 60*time.Second),
		ShutdownTimeout:   getdur("SHUTDOWN_TIMEOUT", 10*time.Second),
		MaxHeaderBytes:    getint("MAX_HEADER_BYTES", 1<<20),
		GinMode:           strings.ToLower(getenv("GIN_MODE", "release")),

		// Logging / Docs
		LogLevel:       strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogPretty:      getbool("LOG_PRETTY", false),
		SwaggerEnabled: getbool("SWAGGER_ENABLED", false),
		APIBasePath:    normalizeBasePath(getenv("API_BASE_PATH", "/")),

		// Providers
		Twilio: TwilioConfig{
			AccountSID:              strings.TrimSpace(getenv("TWILIO_ACCOUNT_SID", "")),
			AuthToken:               strings.TrimSpace(getenv("TWILIO_AUTH_TOKEN", "")),
			APIKeySID:               strings.TrimSpace(getenv("TWILIO_API_KEY_SID", "")),
			APIKeySecret:            strings.TrimSpace(getenv("TWILIO_API_KEY_SECRET", "")),
			RoomType:                strings.ToLower(strings.TrimSpace(getenv("ROOM_TYPE", ""))),
			ConversationsServiceSID: strings.TrimSpace(getenv("CONVERSATIONS_SERVICE_SID", "")),
			DefaultMediaRegion:      strings.TrimSpace(getenv("DEFAULT_MEDIA_REGION", "gll")),
		},
		Auth: AuthConfig{
			ServiceAccountJSON: getenv("SERVICE_ACCOUNT_TOKEN", ""),
			DatabaseURL:        getenv("FIREBASE_DATABASE_URL", ""),
			AllowedDomains:     splitCSV(getenv("AUTH_ALLOWED_DOMAINS", "twilio.com")),
			TokenEndpoint:      getbool("TOKEN_AUTH_ENABLED", false),
		},

		// Rate limiting
		RateRPS:   getfloat("RATE_RPS", 5.0),
		RateBurst: getint("RATE_BURST", 10),

		// Web protection
		CORS: CORSConfig{
			AllowedOrigins: splitCSV(getenv("CORS_ALLOWED_ORIGINS", "")),
		},
		Security: SecurityConfig{
			EnableHSTS: getbool("ENABLE_HSTS", false),
			HSTSMaxAge: getdur("HSTS_MAX_AGE", 180*24*time.Hour),
		},

		// Observability (OpenTelemetry)
		OTEL: OTELConfig{
			Enabled:     getbool("OTEL_ENABLED", false),
			Endpoint:    getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    getbool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: getenv("OTEL_SERVICE_NAME", "room-token"),
			SampleRatio: getfloat("OTEL_TRACES_SAMPLER_ARG", 1.0),
		},
	}

	// --- normalization ---
	if cfg.LogLevel == "warning" {
		cfg.LogLevel = "warn"
	}
	switch cfg.GinMode {
	case "debug", "release", "test":
	default:
		cfg.GinMode = "release"
	}

	// --- validation ---
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error", "fatal", "panic":
	default:
		return cfg, errors.New("LOG_LEVEL must be one of: debug, info, warn, error, fatal, panic")
	}
	if strings.TrimSpace(cfg.Port) == "" {
		return cfg, errors.New("PORT must not be empty")
	}
	if cfg.ReadTimeout <= 0 || cfg.ReadHeaderTimeout <= 0 || cfg.WriteTimeout <= 0 || cfg.IdleTimeout <= 0 || cfg.ShutdownTimeout <= 0 {
		return cfg, errors.New("timeouts must be positive durations")
	}
	if cfg.MaxHeaderBytes <= 0 {
		return cfg, errors.New("MAX_HEADER_BYTES must be > 0")
	}
	if err := requireAll(
		"TWILIO_ACCOUNT_SID", cfg.Twilio.AccountSID,
		"TWILIO_AUTH_TOKEN", cfg.Twilio.AuthToken,
		"TWILIO_API_KEY_SID", cfg.Twilio.APIKeySID,
		"TWILIO_API_KEY_SECRET", cfg.Twilio.APIKeySecret,
		"ROOM_TYPE", cfg.Twilio.RoomType,
		"CONVERSATIONS_SERVICE_SID", cfg.Twilio.ConversationsServiceSID,
		"SERVICE_ACCOUNT_TOKEN", strings.TrimSpace(cfg.Auth.ServiceAccountJSON),
	); err != nil {
		return cfg, err
	}
	if _, ok := roomTypes[cfg.Twilio.RoomType]; !ok {
		return cfg, errors.New("ROOM_TYPE must be one of: go, peer-to-peer, group, group-small")
	}
	if cfg.Twilio.DefaultMediaRegion == "" {
		return cfg, errors.New("DEFAULT_MEDIA_REGION must not be empty")
	}
	if len(cfg.Auth.AllowedDomains) == 0 {
		return cfg, errors.New("AUTH_ALLOWED_DOMAINS must name at least one domain")
	}
	if cfg.RateRPS < 0 {
		return cfg, errors.New("RATE_RPS must be >= 0")
	}
	if cfg.RateBurst < 1 {
		return cfg, errors.New("RATE_BURST must be >= 1")
	}
	if cfg.Security.HSTSMaxAge < 0 {
		return cfg, errors.New("HSTS_MAX_AGE must be >= 0")
	}
	if cfg.OTEL.SampleRatio < 0 || cfg.OTEL.SampleRatio > 1 {
		return cfg, errors.New("OTEL_TRACES_SAMPLER_ARG must be in [0,1]")
	}

	return cfg, nil
}

// requireAll takes name/value pairs and reports every empty value at once.
func requireAll(pairs ...string) error {
	var missing []string
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i+1] == "" {
			missing = append(missing, pairs[i])
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", "))
	}
	return nil
}

// ---- helpers (no external deps) ----

func getenv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		return v
	}
	return def
}

func getfloat(k string, def float64) float64 {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getint(k string, def int) int {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return def
}

func getdur(k string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// normalizeBasePath ensures leading '/' and strips trailing '/' (except root).
func normalizeBasePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 && strings.HasSuffix(p, "/") {
		p = strings.TrimRight(p, "/")
	}
	return p
}
