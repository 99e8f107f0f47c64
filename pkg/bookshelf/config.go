package bookshelf

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"

	"github.com/minibooks/bookshelf_sdk_go/pkg/books"
)

const (
	envMode      = "BOOKSHELF_RUNTIME_MODE"
	envMockSeed  = "BOOKSHELF_MOCK_SEED"
	envLogLevel  = "BOOKSHELF_LOG_LEVEL"
	envTimeout   = "BOOKSHELF_TIMEOUT"
	envRateLimit = "BOOKSHELF_RATE_LIMIT"

	// ModeHTTP talks to the remote catalogue service.
	ModeHTTP = "http"
	// ModeMock uses an in-process catalogue.
	ModeMock = "mock"

	// DotEnvFile is loaded, when present, before reading the environment.
	DotEnvFile = ".env.local"
)

// Config selects how the client is built. New fills empty fields from
// DefaultConfig.
type Config struct {
	APIURL    string        `yaml:"api_url"`
	Mode      string        `yaml:"mode"`
	MockSeed  string        `yaml:"mock_seed"`
	LogLevel  string        `yaml:"log_level"`
	Timeout   time.Duration `yaml:"-"`
	RateLimit float64       `yaml:"rate_limit"`
}

// fileConfig mirrors Config with the timeout as text ("10s").
type fileConfig struct {
	Config  `yaml:",inline"`
	Timeout string `yaml:"timeout"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		APIURL:   books.DefaultBaseURL,
		Mode:     ModeHTTP,
		LogLevel: "info",
		Timeout:  10 * time.Second,
	}
}

// LoadConfig layers defaults, the optional YAML file at path, .env.local and
// the process environment, later sources winning.
func LoadConfig(path string) (Config, error) {
	return LoadConfigFrom(DefaultConfig(), path)
}

// LoadConfigFrom is LoadConfig starting from base instead of DefaultConfig,
// for callers with their own defaults.
func LoadConfigFrom(base Config, path string) (Config, error) {
	cfg := base.withDefaults()

	if strings.TrimSpace(path) != "" {
		if err := cfg.mergeFile(path); err != nil {
			return Config{}, err
		}
	}

	if err := godotenv.Load(DotEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("bookshelf: load %s: %w", DotEnvFile, err)
	}
	if err := cfg.mergeEnv(); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

// withDefaults fills empty fields from DefaultConfig. MockSeed and RateLimit
// have zero defaults and are left alone.
func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if strings.TrimSpace(c.APIURL) == "" {
		c.APIURL = def.APIURL
	}
	if strings.TrimSpace(c.Mode) == "" {
		c.Mode = def.Mode
	}
	if strings.TrimSpace(c.LogLevel) == "" {
		c.LogLevel = def.LogLevel
	}
	if c.Timeout == 0 {
		c.Timeout = def.Timeout
	}
	return c
}

// ConfigFromEnv is LoadConfig without a file.
func ConfigFromEnv() (Config, error) {
	return LoadConfig("")
}

// Validate checks mode, URL, level and limits.
func (c Config) Validate() error {
	switch c.Mode {
	case ModeHTTP:
		if strings.TrimSpace(c.APIURL) == "" {
			return fmt.Errorf("bookshelf: HTTP mode requires %s", books.EnvAPIURL)
		}
	case ModeMock:
	default:
		return fmt.Errorf("bookshelf: unsupported %s value %q", envMode, c.Mode)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("bookshelf: %w", err)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("bookshelf: timeout must not be negative")
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("bookshelf: rate limit must not be negative")
	}
	return nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("bookshelf: read config %s: %w", path, err)
	}
	var fc fileConfig
	if err := yaml.UnmarshalStrict(data, &fc); err != nil {
		return fmt.Errorf("bookshelf: decode config %s: %w", path, err)
	}

	if fc.APIURL != "" {
		c.APIURL = fc.APIURL
	}
	if fc.Mode != "" {
		c.Mode = normalizeMode(fc.Mode)
	}
	if fc.MockSeed != "" {
		c.MockSeed = fc.MockSeed
	}
	if fc.LogLevel != "" {
		c.LogLevel = fc.LogLevel
	}
	if fc.RateLimit != 0 {
		c.RateLimit = fc.RateLimit
	}
	if fc.Timeout != "" {
		d, err := time.ParseDuration(fc.Timeout)
		if err != nil {
			return fmt.Errorf("bookshelf: config %s: timeout: %w", path, err)
		}
		c.Timeout = d
	}
	return nil
}

func (c *Config) mergeEnv() error {
	if v := lookupEnv(books.EnvAPIURL); v != "" {
		c.APIURL = v
	}
	if v := lookupEnv(envMode); v != "" {
		c.Mode = normalizeMode(v)
	}
	if v := lookupEnv(envMockSeed); v != "" {
		c.MockSeed = v
	}
	if v := lookupEnv(envLogLevel); v != "" {
		c.LogLevel = v
	}
	if v := lookupEnv(envTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("bookshelf: %s: %w", envTimeout, err)
		}
		c.Timeout = d
	}
	if v := lookupEnv(envRateLimit); v != "" {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("bookshelf: %s: %w", envRateLimit, err)
		}
		c.RateLimit = rps
	}
	return nil
}

func normalizeMode(mode string) string {
	mode = strings.ToLower(strings.TrimSpace(mode))
	if mode == "auto" {
		return ModeHTTP
	}
	return mode
}

func lookupEnv(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}
