package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// Config is the client's runtime configuration.
type Config struct {
	ServerURL         string
	ReportURL         string
	Room              string
	UserName          string
	UserID            string
	AvatarURL         string
	FallbackAvatarURL string
	AIAvatarBase      string
	LocalSlot         int
	TeardownDelay     time.Duration
	ReportTimeout     time.Duration
	LogLevel          zerolog.Level
}

var ErrInvalidConfig = errors.New("INVALID_CONFIG: Configuration is invalid")

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		ServerURL:         "ws://localhost:8000/ws",
		Room:              "easy",
		UserName:          "Player",
		FallbackAvatarURL: "/avatars/default.png",
		AIAvatarBase:      "/avatars",
		LocalSlot:         1,
		TeardownDelay:     500 * time.Millisecond,
		ReportTimeout:     5 * time.Second,
		LogLevel:          zerolog.InfoLevel,
	}
}

// Load reads an optional .env file from the working directory and then
// builds the configuration from the process environment. Variables already
// set in the environment win over the file.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to read .env: %w", err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds the configuration from getenv. Unset or empty variables
// keep their defaults.
func FromEnv(getenv func(string) string) (Config, error) {
	c := Default()

	str := func(key string, dst *string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}
	str("LIARSDICE_SERVER_URL", &c.ServerURL)
	str("LIARSDICE_REPORT_URL", &c.ReportURL)
	str("LIARSDICE_ROOM", &c.Room)
	str("LIARSDICE_USERNAME", &c.UserName)
	str("LIARSDICE_USER_ID", &c.UserID)
	str("LIARSDICE_AVATAR_URL", &c.AvatarURL)
	str("LIARSDICE_FALLBACK_AVATAR_URL", &c.FallbackAvatarURL)
	str("LIARSDICE_AI_AVATAR_BASE", &c.AIAvatarBase)

	if v := strings.TrimSpace(getenv("LIARSDICE_LOCAL_SLOT")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("%w: LIARSDICE_LOCAL_SLOT: %v", ErrInvalidConfig, err)
		}
		c.LocalSlot = n
	}

	var err error
	if c.TeardownDelay, err = duration(getenv, "LIARSDICE_TEARDOWN_DELAY", c.TeardownDelay); err != nil {
		return Config{}, err
	}
	if c.ReportTimeout, err = duration(getenv, "LIARSDICE_REPORT_TIMEOUT", c.ReportTimeout); err != nil {
		return Config{}, err
	}

	if v := strings.TrimSpace(getenv("LOG_LEVEL")); v != "" {
		lvl, err := zerolog.ParseLevel(strings.ToLower(v))
		if err != nil {
			return Config{}, fmt.Errorf("%w: LOG_LEVEL: %v", ErrInvalidConfig, err)
		}
		c.LogLevel = lvl
	}

	c.Room = strings.ToLower(c.Room)
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func duration(getenv func(string) string, key string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(getenv(key))
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, key, err)
	}
	return d, nil
}

// Validate checks values that would otherwise fail late, at dial or report
// time.
func (c Config) Validate() error {
	u, err := url.Parse(c.ServerURL)
	if err != nil {
		return fmt.Errorf("%w: LIARSDICE_SERVER_URL: %v", ErrInvalidConfig, err)
	}
	switch u.Scheme {
	case "ws", "wss", "http", "https":
	default:
		return fmt.Errorf("%w: LIARSDICE_SERVER_URL: unsupported scheme %q", ErrInvalidConfig, u.Scheme)
	}

	if c.ReportURL != "" {
		r, err := url.Parse(c.ReportURL)
		if err != nil || (r.Scheme != "http" && r.Scheme != "https") {
			return fmt.Errorf("%w: LIARSDICE_REPORT_URL must be an http(s) URL", ErrInvalidConfig)
		}
	}

	if c.LocalSlot < 1 {
		return fmt.Errorf("%w: LIARSDICE_LOCAL_SLOT must be at least 1", ErrInvalidConfig)
	}
	if c.TeardownDelay < 0 {
		return fmt.Errorf("%w: LIARSDICE_TEARDOWN_DELAY must not be negative", ErrInvalidConfig)
	}
	if c.ReportTimeout <= 0 {
		return fmt.Errorf("%w: LIARSDICE_REPORT_TIMEOUT must be positive", ErrInvalidConfig)
	}
	return nil
}

// ReportingEnabled reports whether match results should be posted.
func (c Config) ReportingEnabled() bool {
	return c.ReportURL != ""
}
