package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"imagefinder/internal/domain"
	"imagefinder/internal/search"
)

const (
	fileName  = "imagefinder"
	fileType  = "toml"
	envPrefix = "IMAGEFINDER"
)

// Config represents the application configuration
type Config struct {
	Endpoint         string        `mapstructure:"endpoint"`
	RequestTimeout   time.Duration `mapstructure:"request_timeout"` // 0 disables the timeout
	UserAgent        string        `mapstructure:"user_agent"`
	DefaultNeighbors int           `mapstructure:"default_neighbors"`
	StartDir         string        `mapstructure:"start_dir"` // file picker start directory
	LogFile          string        `mapstructure:"log_file"`
	Debug            bool          `mapstructure:"debug"`
	Notify           NotifyConfig  `mapstructure:"notify"`
}

// NotifyConfig controls the notification line
type NotifyConfig struct {
	// AlwaysSuccess shows the success notice even when the search failed
	AlwaysSuccess bool          `mapstructure:"always_success"`
	Duration      time.Duration `mapstructure:"duration"`
}

// document is the on-disk TOML shape; durations are written as text
type document struct {
	Endpoint         string         `toml:"endpoint"`
	RequestTimeout   string         `toml:"request_timeout"`
	UserAgent        string         `toml:"user_agent"`
	DefaultNeighbors int            `toml:"default_neighbors"`
	StartDir         string         `toml:"start_dir,omitempty"`
	LogFile          string         `toml:"log_file"`
	Debug            bool           `toml:"debug"`
	Notify           notifyDocument `toml:"notify"`
}

type notifyDocument struct {
	AlwaysSuccess bool   `toml:"always_success"`
	Duration      string `toml:"duration"`
}

// ConfigService handles configuration management
type ConfigService interface {
	Load() (*Config, error)
	Save(config *Config) error
	LoadFromPath(path string) (*Config, error)
	SaveToPath(config *Config, path string) error
	BindFlags(flags *pflag.FlagSet) error
	ConfigFileUsed() string
}

// configService is the concrete implementation
type configService struct {
	v        *viper.Viper
	filePath string
}

// flagKeys maps CLI flag names to config keys
var flagKeys = map[string]string{
	"endpoint":  "endpoint",
	"timeout":   "request_timeout",
	"neighbors": "default_neighbors",
	"log-file":  "log_file",
	"debug":     "debug",
	"start-dir": "start_dir",
}

// NewConfigService creates a new config service
func NewConfigService() ConfigService {
	configDir, err := os.UserConfigDir()
	if err != nil {
		// Fallback to home directory
		configDir, err = os.UserHomeDir()
		if err != nil {
			configDir = "."
		}
		configDir = filepath.Join(configDir, ".config")
	}

	return &configService{
		v:        newViper(),
		filePath: filepath.Join(configDir, fileName, fileName+"."+fileType),
	}
}

// DefaultPath returns the per-user config file location
func DefaultPath() string {
	return NewConfigService().(*configService).filePath
}

func newViper() *viper.Viper {
	v := viper.New()
	d := DefaultConfig()
	v.SetDefault("endpoint", d.Endpoint)
	v.SetDefault("request_timeout", d.RequestTimeout)
	v.SetDefault("user_agent", d.UserAgent)
	v.SetDefault("default_neighbors", d.DefaultNeighbors)
	v.SetDefault("start_dir", d.StartDir)
	v.SetDefault("log_file", d.LogFile)
	v.SetDefault("debug", d.Debug)
	v.SetDefault("notify.always_success", d.Notify.AlwaysSuccess)
	v.SetDefault("notify.duration", d.Notify.Duration)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// BindFlags lets explicitly set CLI flags override file and environment values
func (cs *configService) BindFlags(flags *pflag.FlagSet) error {
	for name, key := range flagKeys {
		f := flags.Lookup(name)
		if f == nil {
			continue
		}
		if err := cs.v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("binding flag %s: %w", name, err)
		}
	}
	return nil
}

// Load reads ./imagefinder.toml or the per-user file. A missing file is not
// an error: defaults, environment and flags still apply.
func (cs *configService) Load() (*Config, error) {
	cs.v.SetConfigName(fileName)
	cs.v.SetConfigType(fileType)
	cs.v.AddConfigPath(".")
	cs.v.AddConfigPath(filepath.Dir(cs.filePath))

	if err := cs.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}
	return cs.decode()
}

// LoadFromPath loads configuration from a specific path
func (cs *configService) LoadFromPath(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	cs.v.SetConfigFile(path)
	cs.v.SetConfigType(fileType)
	if err := cs.v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return cs.decode()
}

// ConfigFileUsed returns the file the last load read, if any
func (cs *configService) ConfigFileUsed() string {
	return cs.v.ConfigFileUsed()
}

func (cs *configService) decode() (*Config, error) {
	var cfg Config
	if err := cs.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := ApplyDefaults(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save saves the configuration to the per-user file
func (cs *configService) Save(config *Config) error {
	return cs.SaveToPath(config, cs.filePath)
}

// SaveToPath saves configuration to a specific path
func (cs *configService) SaveToPath(config *Config, path string) error {
	// Ensure config directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(toDocument(config))
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func toDocument(c *Config) document {
	return document{
		Endpoint:         c.Endpoint,
		RequestTimeout:   c.RequestTimeout.String(),
		UserAgent:        c.UserAgent,
		DefaultNeighbors: c.DefaultNeighbors,
		StartDir:         c.StartDir,
		LogFile:          c.LogFile,
		Debug:            c.Debug,
		Notify: notifyDocument{
			AlwaysSuccess: c.Notify.AlwaysSuccess,
			Duration:      c.Notify.Duration.String(),
		},
	}
}

// ApplyDefaults fills unset values and rejects unusable ones
func ApplyDefaults(cfg *Config) error {
	d := DefaultConfig()
	if cfg.Endpoint == "" {
		cfg.Endpoint = d.Endpoint
	}
	u, err := url.Parse(cfg.Endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid endpoint %q: must be an http(s) URL", cfg.Endpoint)
	}
	if cfg.RequestTimeout < 0 {
		return fmt.Errorf("invalid request_timeout %s", cfg.RequestTimeout)
	}
	if cfg.DefaultNeighbors < 1 || cfg.DefaultNeighbors > domain.MaxNeighbors {
		cfg.DefaultNeighbors = d.DefaultNeighbors
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = d.UserAgent
	}
	if cfg.Notify.Duration <= 0 {
		cfg.Notify.Duration = d.Notify.Duration
	}
	return nil
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Endpoint:         search.DefaultEndpoint,
		RequestTimeout:   30 * time.Second,
		UserAgent:        "imagefinder/dev",
		DefaultNeighbors: domain.DefaultNeighbors,
		LogFile:          "imagefinder.log",
		Notify: NotifyConfig{
			Duration: 4 * time.Second,
		},
	}
}
