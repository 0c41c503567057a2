package config

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"quiz-engine/internal/domain"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Quiz struct {
		QuestionLimitPerCategory int    `yaml:"questionLimitPerCategory"`
		Source                   string `yaml:"source"`
		Bank                     string `yaml:"bank"`
		TTL                      string `yaml:"ttl"`
	} `yaml:"quiz"`
	Profiles []Profile `yaml:"profiles"`
}

// Profile is an account registered at start-up.
type Profile struct {
	Username    string             `yaml:"username"`
	Email       string             `yaml:"email"`
	Password    string             `yaml:"password"`
	FirstName   string             `yaml:"firstName"`
	LastName    string             `yaml:"lastName"`
	AccountType domain.AccountType `yaml:"accountType"`
}

// Load reads YAML config from path.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Admin returns the first configured admin profile.
func (c Config) Admin() (Profile, bool) {
	for _, p := range c.Profiles {
		if p.AccountType == domain.AccountTypeAdmin {
			return p, true
		}
	}
	return Profile{}, false
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}

// LogLevel maps debug/info/warn/error to a slog level, defaulting to info.
func LogLevel(raw string) slog.Level {
	switch strings.ToLower(raw) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
