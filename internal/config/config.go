// Package config loads server settings from defaults, an optional .env
// file and the environment, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the resolved server configuration.
type Config struct {
	MongoURI      string
	MongoDatabase string
	Port          string

	JWTSecret    string
	JWTKeys      map[string]string // kid -> secret, parsed from JWT_KEYS
	JWTActiveKid string
	SessionTTL   time.Duration

	RateLimitRPM int

	TLSCert    string
	TLSKey     string
	RequireTLS bool

	LogFormat string
	LogLevel  string
}

// Load reads envFile (ignored when missing) and the environment.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config.godotenv(%s): %w", envFile, err)
		}
	}

	v := viper.New()
	v.SetTypeByDefaultValue(true)
	v.SetDefault("MONGODB_URI", "")
	v.SetDefault("MONGODB_DATABASE", "furgo")
	v.SetDefault("PORT", "50051")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_KEYS", "")
	v.SetDefault("JWT_ACTIVE_KID", "")
	v.SetDefault("SESSION_TTL", 24*time.Hour)
	v.SetDefault("RATE_LIMIT_RPM", 10)
	v.SetDefault("TLS_CERT", "")
	v.SetDefault("TLS_KEY", "")
	v.SetDefault("REQUIRE_TLS", false)
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("LOG_LEVEL", "info")
	v.AutomaticEnv()

	cfg := &Config{
		MongoURI:      v.GetString("MONGODB_URI"),
		MongoDatabase: v.GetString("MONGODB_DATABASE"),
		Port:          v.GetString("PORT"),
		JWTSecret:     v.GetString("JWT_SECRET"),
		JWTActiveKid:  v.GetString("JWT_ACTIVE_KID"),
		SessionTTL:    v.GetDuration("SESSION_TTL"),
		RateLimitRPM:  v.GetInt("RATE_LIMIT_RPM"),
		TLSCert:       v.GetString("TLS_CERT"),
		TLSKey:        v.GetString("TLS_KEY"),
		RequireTLS:    v.GetBool("REQUIRE_TLS"),
		LogFormat:     strings.ToLower(v.GetString("LOG_FORMAT")),
		LogLevel:      v.GetString("LOG_LEVEL"),
	}

	keys, err := parseKeys(v.GetString("JWT_KEYS"))
	if err != nil {
		return nil, err
	}
	cfg.JWTKeys = keys

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.MongoURI == "" {
		return errors.New("MONGODB_URI must be set")
	}
	if len(c.JWTKeys) == 0 && c.JWTSecret == "" {
		return errors.New("either JWT_SECRET or JWT_KEYS must be set")
	}
	if len(c.JWTKeys) > 0 {
		if _, ok := c.JWTKeys[c.JWTActiveKid]; !ok {
			return fmt.Errorf("JWT_ACTIVE_KID %q is not one of JWT_KEYS", c.JWTActiveKid)
		}
	}
	if c.RequireTLS && (c.TLSCert == "" || c.TLSKey == "") {
		return errors.New("REQUIRE_TLS is true but TLS_CERT/TLS_KEY are not configured")
	}
	if c.SessionTTL <= 0 {
		return errors.New("SESSION_TTL must be positive")
	}
	if c.RateLimitRPM <= 0 {
		c.RateLimitRPM = 10
	}
	return nil
}

// parseKeys reads "kid:secret,kid2:secret2".
func parseKeys(s string) (map[string]string, error) {
	if s == "" {
		return nil, nil
	}
	keys := map[string]string{}
	for _, p := range strings.Split(s, ",") {
		if p == "" {
			continue
		}
		kid, secret, ok := strings.Cut(p, ":")
		if !ok || kid == "" || secret == "" {
			return nil, fmt.Errorf("invalid JWT_KEYS entry: %s", p)
		}
		keys[kid] = secret
	}
	return keys, nil
}

// TLSEnabled reports whether a certificate pair is configured.
func (c *Config) TLSEnabled() bool {
	return c.TLSCert != "" && c.TLSKey != ""
}

// NewLogger builds the process logger from LOG_FORMAT and LOG_LEVEL.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.LogFormat == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}
