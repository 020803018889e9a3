package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/x/twocaptcha"
)

type Config struct {
	APIKey      string        `yaml:"apiKey"`
	BaseURL     string        `yaml:"baseURL"`
	SoftID      string        `yaml:"softId"`
	CallbackURL string        `yaml:"callbackURL"`
	Browser     string        `yaml:"browser"`
	Polling     PollingConfig `yaml:"polling"`
	Limits      LimitsConfig  `yaml:"limits"`
	Ledger      LedgerConfig  `yaml:"ledger"`
}

type PollingConfig struct {
	IntervalMs     int `yaml:"intervalMs"`
	InitialDelayMs int `yaml:"initialDelayMs"`
	TimeoutMs      int `yaml:"timeoutMs"`
	MaxAttempts    int `yaml:"maxAttempts"`
	HTTPTimeoutMs  int `yaml:"httpTimeoutMs"`
}

func (c PollingConfig) Interval() time.Duration {
	if c.IntervalMs <= 0 {
		return twocaptcha.DefaultPollInterval
	}
	return time.Duration(c.IntervalMs) * time.Millisecond
}

func (c PollingConfig) InitialDelay() time.Duration {
	if c.InitialDelayMs <= 0 {
		return twocaptcha.DefaultInitialDelay
	}
	return time.Duration(c.InitialDelayMs) * time.Millisecond
}

func (c PollingConfig) Timeout() time.Duration {
	if c.TimeoutMs <= 0 {
		return twocaptcha.DefaultTimeout
	}
	return time.Duration(c.TimeoutMs) * time.Millisecond
}

func (c PollingConfig) HTTPTimeout() time.Duration {
	if c.HTTPTimeoutMs <= 0 {
		return twocaptcha.DefaultHTTPTimeout
	}
	return time.Duration(c.HTTPTimeoutMs) * time.Millisecond
}

type LimitsConfig struct {
	QPS   float64 `yaml:"qps"`
	Burst int     `yaml:"burst"`
	// MaxParallel caps concurrent solves when several tasks are given
	// on one command line.
	MaxParallel int `yaml:"maxParallel"`
}

type LedgerConfig struct {
	Path     string `yaml:"path"`
	Disabled bool   `yaml:"disabled"`
}

// DefaultPath returns ~/.captchactl/config.yaml.
func DefaultPath() string {
	return filepath.Join(homeDir(), ".captchactl", "config.yaml")
}

// DefaultLedgerPath returns ~/.captchactl/tasks.json.
func DefaultLedgerPath() string {
	return filepath.Join(homeDir(), ".captchactl", "tasks.json")
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return home
}

// Load reads the YAML file at path, then applies environment overrides
// and defaults. A missing file is not an error: the result is built from
// the environment alone.
func Load(path string) (Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return Config{}, err
	default:
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	cfg.applyEnv(os.Getenv)
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	if v := strings.TrimSpace(getenv("TWOCAPTCHA_API_KEY")); v != "" {
		c.APIKey = v
	}
	if v := strings.TrimSpace(getenv("TWOCAPTCHA_BASE_URL")); v != "" {
		c.BaseURL = v
	}
	if v := strings.TrimSpace(getenv("TWOCAPTCHA_BROWSER")); v != "" {
		c.Browser = v
	}
}

func (c *Config) applyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = twocaptcha.DefaultBaseURL
	}
	if c.SoftID == "" {
		c.SoftID = twocaptcha.DefaultSoftID
	}
	if c.Limits.MaxParallel <= 0 {
		c.Limits.MaxParallel = 5
	}
	if c.Limits.QPS > 0 && c.Limits.Burst <= 0 {
		c.Limits.Burst = 1
	}
	if c.Ledger.Path == "" {
		c.Ledger.Path = DefaultLedgerPath()
	}
}

func (c Config) validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("baseURL %q is not an absolute URL", c.BaseURL)
	}
	switch c.Browser {
	case "", "chrome", "firefox":
	default:
		return fmt.Errorf("browser %q is not supported (chrome, firefox)", c.Browser)
	}
	if c.Polling.MaxAttempts < 0 {
		return errors.New("polling.maxAttempts must not be negative")
	}
	return nil
}

// Client converts the file configuration into the library's.
func (c Config) Client(logger *slog.Logger) twocaptcha.Config {
	return twocaptcha.Config{
		APIKey:              c.APIKey,
		BaseURL:             c.BaseURL,
		SoftID:              c.SoftID,
		CallbackURL:         c.CallbackURL,
		PollInterval:        c.Polling.Interval(),
		DefaultInitialDelay: c.Polling.InitialDelay(),
		Timeout:             c.Polling.Timeout(),
		MaxAttempts:         c.Polling.MaxAttempts,
		HTTPTimeout:         c.Polling.HTTPTimeout(),
		Browser:             c.Browser,
		RequestsPerSecond:   c.Limits.QPS,
		Burst:               c.Limits.Burst,
		Logger:              logger,
	}
}
