package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// Config keys.
const (
	KeyServer            = "server"
	KeyTimeout           = "timeout"
	KeyClickDelay        = "click_delay"
	KeyPinnedQuery       = "pinned_query"
	KeyDetailURL         = "detail_url"
	KeyStatePath         = "state_path"
	KeyLogFile           = "log_file"
	KeyLogLevel          = "log_level"
	KeyMaxParallel       = "max_parallel"
	KeyRequestsPerSecond = "requests_per_second"
)

// Config is the resolved client configuration.
type Config struct {
	Server            string        `json:"server"`
	Timeout           time.Duration `json:"timeout"`
	ClickDelay        time.Duration `json:"click_delay"`
	PinnedQuery       string        `json:"pinned_query"`
	DetailURL         string        `json:"detail_url"`
	StatePath         string        `json:"state_path"`
	LogFile           string        `json:"log_file,omitempty"`
	LogLevel          string        `json:"log_level"`
	MaxParallel       int           `json:"max_parallel"`
	RequestsPerSecond float64       `json:"requests_per_second"`
}

// BasePath is where persistent view state lives.
func (c Config) BasePath() string {
	return c.StatePath
}

// DetailLink expands the detail_url template for id. "{id}" is replaced; a
// template without it gets the id appended.
func (c Config) DetailLink(id string) string {
	if c.DetailURL == "" {
		return ""
	}
	if strings.Contains(c.DetailURL, "{id}") {
		return strings.ReplaceAll(c.DetailURL, "{id}", id)
	}
	return strings.TrimRight(c.DetailURL, "/") + "/" + id
}

// Defaults registers default values on v.
func Defaults(v *viper.Viper) {
	v.SetDefault(KeyServer, "http://localhost:8000")
	v.SetDefault(KeyTimeout, 10*time.Second)
	v.SetDefault(KeyClickDelay, 250*time.Millisecond)
	v.SetDefault(KeyPinnedQuery, "pinned")
	v.SetDefault(KeyDetailURL, "")
	v.SetDefault(KeyStatePath, "~/.stow.db")
	v.SetDefault(KeyLogFile, "")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyMaxParallel, 4)
	v.SetDefault(KeyRequestsPerSecond, 0.0)
}

// LoadConfig reads .stow.yaml from $STOW_CONFIG_PATH, the working directory,
// or the home directory, with STOW_* environment overrides. A missing file is
// not an error.
func LoadConfig() (*Config, error) {
	return LoadConfigFrom(viper.GetViper())
}

// LoadConfigFrom resolves configuration using v, which may already carry
// bound flags.
func LoadConfigFrom(v *viper.Viper) (*Config, error) {
	Defaults(v)
	v.SetConfigName(".stow") // .yaml is implicit
	v.SetEnvPrefix("STOW")
	v.AutomaticEnv()

	if override := os.Getenv("STOW_CONFIG_PATH"); override != "" {
		v.AddConfigPath(override)
	}
	v.AddConfigPath("./")
	if home, err := homedir.Dir(); err == nil {
		v.AddConfigPath(home)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("store: read config: %w", err)
		}
	}
	return decode(v)
}

func decode(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Server:            strings.TrimRight(strings.TrimSpace(v.GetString(KeyServer)), "/"),
		Timeout:           v.GetDuration(KeyTimeout),
		ClickDelay:        v.GetDuration(KeyClickDelay),
		PinnedQuery:       strings.TrimSpace(v.GetString(KeyPinnedQuery)),
		DetailURL:         strings.TrimSpace(v.GetString(KeyDetailURL)),
		LogLevel:          strings.ToLower(strings.TrimSpace(v.GetString(KeyLogLevel))),
		MaxParallel:       v.GetInt(KeyMaxParallel),
		RequestsPerSecond: v.GetFloat64(KeyRequestsPerSecond),
	}
	var err error
	if cfg.StatePath, err = expand(v.GetString(KeyStatePath)); err != nil {
		return nil, err
	}
	if cfg.LogFile, err = expand(v.GetString(KeyLogFile)); err != nil {
		return nil, err
	}
	if cfg.Server == "" {
		return nil, errors.New("store: server is required")
	}
	if cfg.ClickDelay <= 0 {
		return nil, fmt.Errorf("store: click_delay must be positive, got %s", cfg.ClickDelay)
	}
	if cfg.MaxParallel < 1 {
		cfg.MaxParallel = 1
	}
	if cfg.PinnedQuery == "" {
		cfg.PinnedQuery = "pinned"
	}
	return cfg, nil
}

func expand(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", nil
	}
	expanded, err := homedir.Expand(path)
	if err != nil {
		return "", fmt.Errorf("store: expand %q: %w", path, err)
	}
	return filepath.Clean(expanded), nil
}
