// Package config loads the server configuration from the environment, an
// optional .env file and an optional YAML file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Environments
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// DefaultDotenv is the .env file read when no other is named.
const DefaultDotenv = ".env"

// Config is the server configuration. Every field can be set in the YAML
// file and overridden by its environment variable.
type Config struct {
	Env       string `yaml:"env" env:"BROCHURE_ENV" env-default:"development" env-description:"development or production"`
	Addr      string `yaml:"addr" env:"BROCHURE_ADDR" env-default:":8080" env-description:"listen address"`
	APIURL    string `yaml:"api_url" env:"BROCHURE_API_URL" env-default:"http://localhost:3000" env-description:"remote student API origin"`
	PublicURL string `yaml:"public_url" env:"BROCHURE_PUBLIC_URL" env-default:"http://localhost:8080" env-description:"external origin used in emails"`
	DBPath    string `yaml:"db_path" env:"BROCHURE_DB_PATH" env-default:"brochure.db" env-description:"SQLite file for flags and audit events"`

	CSRFKey        string   `yaml:"csrf_key" env:"BROCHURE_CSRF_KEY" env-description:"64 hex characters; required in production"`
	FlagSecret     string   `yaml:"flag_secret" env:"BROCHURE_FLAG_SECRET" env-description:"key for hashing browser ids at rest; defaults to the CSRF key"`
	TrustedOrigins []string `yaml:"trusted_origins" env:"BROCHURE_TRUSTED_ORIGINS" env-separator:"," env-description:"extra origins allowed to post forms"`

	RateLimit float64 `yaml:"rate_limit" env:"BROCHURE_RATE_LIMIT" env-default:"10" env-description:"requests per second per IP; 0 disables"`
	RateBurst int     `yaml:"rate_burst" env:"BROCHURE_RATE_BURST" env-default:"30"`

	ResendKey string `yaml:"resend_key" env:"BROCHURE_RESEND_KEY" env-description:"Resend API key; empty logs emails instead"`
	EmailFrom string `yaml:"email_from" env:"BROCHURE_EMAIL_FROM" env-default:"Student Portfolios <noreply@localhost>"`

	LogLevel      string `yaml:"log_level" env:"BROCHURE_LOG_LEVEL" env-default:"info" env-description:"debug, info, warn or error"`
	SlowQueryMs   int    `yaml:"slow_query_ms" env:"BROCHURE_SLOW_QUERY_MS" env-default:"100"`
	SlowRequestMs int    `yaml:"slow_request_ms" env:"BROCHURE_SLOW_REQUEST_MS" env-default:"200" env-description:"requests at least this slow are logged at WARN"`
	FlagTTLDays   int    `yaml:"flag_ttl_days" env:"BROCHURE_FLAG_TTL_DAYS" env-default:"30" env-description:"days before an untouched browser flag is purged"`
}

// Errors
var (
	ErrInvalidEnv   = errors.New("BROCHURE_ENV must be development or production")
	ErrMissingCSRF  = errors.New("BROCHURE_CSRF_KEY is required in production")
	ErrInvalidLevel = errors.New("BROCHURE_LOG_LEVEL must be debug, info, warn or error")
)

// Load reads the named .env files (DefaultDotenv when none are given and it
// exists), then the YAML file at path if non-empty, then the environment.
// Variables already set in the process environment win over .env values.
// POST: the returned config has passed Validate
func Load(path string, dotenv ...string) (Config, error) {
	if err := loadDotenv(dotenv); err != nil {
		return Config{}, err
	}
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}

	var cfg Config
	var err error
	if path != "" {
		err = cleanenv.ReadConfig(path, &cfg)
	} else {
		err = cleanenv.ReadEnv(&cfg)
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg.PublicURL = strings.TrimRight(cfg.PublicURL, "/")
	cfg.APIURL = strings.TrimRight(cfg.APIURL, "/")
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadDotenv(files []string) error {
	if len(files) == 0 {
		if _, err := os.Stat(DefaultDotenv); err != nil {
			return nil
		}
		files = []string{DefaultDotenv}
	}
	if err := godotenv.Load(files...); err != nil {
		return fmt.Errorf("load env file: %w", err)
	}
	return nil
}

// Validate checks values cleanenv cannot express in tags.
func (c Config) Validate() error {
	if c.Env != EnvDevelopment && c.Env != EnvProduction {
		return fmt.Errorf("%w: got %q", ErrInvalidEnv, c.Env)
	}
	if c.Production() && c.CSRFKey == "" {
		return ErrMissingCSRF
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// Production reports whether the server runs in production mode.
func (c Config) Production() bool {
	return c.Env == EnvProduction
}

// SlogLevel returns the configured log level.
func (c Config) SlogLevel() slog.Level {
	l, _ := parseLevel(c.LogLevel)
	return l
}

func parseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("%w: got %q", ErrInvalidLevel, s)
	}
	return l, nil
}

// Usage returns a description of every environment variable.
func Usage() string {
	var cfg Config
	text, err := cleanenv.GetDescription(&cfg, nil)
	if err != nil {
		return err.Error()
	}
	return text
}
