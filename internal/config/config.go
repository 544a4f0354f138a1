package config

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/vango-dev/usekit/internal/errors"
	"github.com/vango-dev/usekit/pkg/use/swr"
)

const (
	// ConfigFileName is the name of the JSON configuration file.
	ConfigFileName = "usekit.json"

	// DefaultAddr is the default bridge server address.
	DefaultAddr = "localhost:7400"

	// DefaultMetricsPath is where the server exposes Prometheus metrics.
	DefaultMetricsPath = "/metrics"

	// DefaultStoragePath is the file driver's default storage file.
	DefaultStoragePath = ".usekit/storage.json"

	// DefaultTable is the postgres driver's default table.
	DefaultTable = "usekit_storage"
)

// ConfigFileNames are the file names Load looks for, in order.
var ConfigFileNames = []string{"usekit.json", "usekit.toml", "usekit.yaml", "usekit.yml"}

// Storage drivers.
const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverS3       = "s3"
	DriverPostgres = "postgres"
)

// Config is the complete usekit configuration.
type Config struct {
	// Name is the project name.
	Name string `json:"name,omitempty" toml:"name,omitempty" yaml:"name,omitempty"`

	// SWR holds the defaults applied to UseSWR.
	SWR SWRConfig `json:"swr" toml:"swr" yaml:"swr"`

	// Storage selects the backend behind UseLocalStorage.
	Storage StorageConfig `json:"storage" toml:"storage" yaml:"storage"`

	// Server configures the browser bridge.
	Server ServerConfig `json:"server" toml:"server" yaml:"server"`

	// Log configures the process logger.
	Log LogConfig `json:"log" toml:"log" yaml:"log"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// SWRConfig mirrors swr.Config. Unset fields keep the swr defaults.
type SWRConfig struct {
	MaxAge                Duration  `json:"maxAge,omitempty" toml:"maxAge,omitempty" yaml:"maxAge,omitempty"`
	SWR                   Duration  `json:"swr,omitempty" toml:"swr,omitempty" yaml:"swr,omitempty"`
	Initial               *bool     `json:"initial,omitempty" toml:"initial,omitempty" yaml:"initial,omitempty"`
	RevalidateOnFocus     *bool     `json:"revalidateOnFocus,omitempty" toml:"revalidateOnFocus,omitempty" yaml:"revalidateOnFocus,omitempty"`
	FocusThrottleInterval *Duration `json:"focusThrottleInterval,omitempty" toml:"focusThrottleInterval,omitempty" yaml:"focusThrottleInterval,omitempty"`
	Timeout               *Duration `json:"timeout,omitempty" toml:"timeout,omitempty" yaml:"timeout,omitempty"`
	ShouldTimeoutInvalid  bool      `json:"shouldTimeoutInvalid,omitempty" toml:"shouldTimeoutInvalid,omitempty" yaml:"shouldTimeoutInvalid,omitempty"`
}

// StorageConfig selects and configures a storage driver.
type StorageConfig struct {
	// Driver is one of memory, file, s3 or postgres (default: memory).
	Driver string `json:"driver,omitempty" toml:"driver,omitempty" yaml:"driver,omitempty"`

	// Path is the file driver's JSON file.
	Path string `json:"path,omitempty" toml:"path,omitempty" yaml:"path,omitempty"`

	// Bucket, Prefix, Region and Endpoint configure the s3 driver.
	// Credentials come from AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY.
	Bucket   string `json:"bucket,omitempty" toml:"bucket,omitempty" yaml:"bucket,omitempty"`
	Prefix   string `json:"prefix,omitempty" toml:"prefix,omitempty" yaml:"prefix,omitempty"`
	Region   string `json:"region,omitempty" toml:"region,omitempty" yaml:"region,omitempty"`
	Endpoint string `json:"endpoint,omitempty" toml:"endpoint,omitempty" yaml:"endpoint,omitempty"`

	// DSN and Table configure the postgres driver.
	DSN   string `json:"dsn,omitempty" toml:"dsn,omitempty" yaml:"dsn,omitempty"`
	Table string `json:"table,omitempty" toml:"table,omitempty" yaml:"table,omitempty"`
}

// ServerConfig configures the browser bridge server.
type ServerConfig struct {
	// Addr is the listen address.
	Addr string `json:"addr,omitempty" toml:"addr,omitempty" yaml:"addr,omitempty"`

	// Metrics exposes Prometheus metrics at MetricsPath.
	Metrics     bool   `json:"metrics,omitempty" toml:"metrics,omitempty" yaml:"metrics,omitempty"`
	MetricsPath string `json:"metricsPath,omitempty" toml:"metricsPath,omitempty" yaml:"metricsPath,omitempty"`

	// AllowedOrigins limits WebSocket origins. Empty allows same-origin only.
	AllowedOrigins []string `json:"allowedOrigins,omitempty" toml:"allowedOrigins,omitempty" yaml:"allowedOrigins,omitempty"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is debug, info, warn or error (default: info).
	Level string `json:"level,omitempty" toml:"level,omitempty" yaml:"level,omitempty"`

	// Format is text or json (default: text).
	Format string `json:"format,omitempty" toml:"format,omitempty" yaml:"format,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load reads the first configuration file found in dir. When there is
// none it returns the defaults.
func Load(dir string) (*Config, error) {
	for _, name := range ConfigFileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}
	return New(), nil
}

// LoadFile reads configuration from path. The format follows the file
// extension; anything other than .toml, .yaml and .yml is read as JSON.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("U010").
				WithDetail("No configuration file at " + path).
				WithSuggestion("Create " + ConfigFileName + " or omit --config to use the defaults")
		}
		return nil, errors.New("U011").Wrap(err)
	}

	cfg := &Config{}
	if err := unmarshal(path, data, cfg); err != nil {
		return nil, errors.New("U011").
			WithDetail("Failed to parse " + filepath.Base(path) + ": " + err.Error()).
			Wrap(err)
	}

	cfg.configPath = path
	cfg.applyDefaults()

	return cfg, nil
}

func unmarshal(path string, data []byte, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return toml.Unmarshal(data, cfg)
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, cfg)
	default:
		return json.Unmarshal(data, cfg)
	}
}

func marshal(path string, cfg *Config) ([]byte, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return toml.Marshal(cfg)
	case ".yaml", ".yml":
		return yaml.Marshal(cfg)
	default:
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	}
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to path in the format of its extension.
func (c *Config) SaveTo(path string) error {
	data, err := marshal(path, c)
	if err != nil {
		return errors.New("U011").Wrap(err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("U010").Wrap(err)
	}
	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Storage.Driver == "" {
		c.Storage.Driver = DriverMemory
	}
	if c.Storage.Driver == DriverFile && c.Storage.Path == "" {
		c.Storage.Path = DefaultStoragePath
	}
	if c.Storage.Driver == DriverPostgres && c.Storage.Table == "" {
		c.Storage.Table = DefaultTable
	}

	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.Server.MetricsPath == "" {
		c.Server.MetricsPath = DefaultMetricsPath
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	durations := map[string]Duration{
		"swr.maxAge": c.SWR.MaxAge,
		"swr.swr":    c.SWR.SWR,
	}
	if c.SWR.FocusThrottleInterval != nil {
		durations["swr.focusThrottleInterval"] = *c.SWR.FocusThrottleInterval
	}
	if c.SWR.Timeout != nil {
		durations["swr.timeout"] = *c.SWR.Timeout
	}
	for name, d := range durations {
		if d < 0 {
			return errors.New("U010").WithDetailf("%s must not be negative, got %s", name, d.Std())
		}
	}

	switch c.Storage.Driver {
	case DriverMemory:
	case DriverFile:
		if c.Storage.Path == "" {
			return errors.New("U010").WithDetail("storage.path is required for the file driver")
		}
	case DriverS3:
		if c.Storage.Bucket == "" {
			return errors.New("U010").WithDetail("storage.bucket is required for the s3 driver")
		}
	case DriverPostgres:
		if c.Storage.DSN == "" {
			return errors.New("U010").WithDetail("storage.dsn is required for the postgres driver")
		}
	default:
		return errors.New("U012").WithDetailf("storage.driver is %q", c.Storage.Driver)
	}

	if _, ok := parseLevel(c.Log.Level); !ok {
		return errors.New("U010").WithDetailf("log.level %q is not one of debug, info, warn, error", c.Log.Level)
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return errors.New("U010").WithDetailf("log.format %q is not text or json", c.Log.Format)
	}
	return nil
}

// Apply returns the swr defaults overridden by the configured values.
func (s SWRConfig) Apply() swr.Config {
	cfg := swr.DefaultConfig()
	cfg.MaxAge = s.MaxAge.Std()
	cfg.SWR = s.SWR.Std()
	cfg.ShouldTimeoutInvalid = s.ShouldTimeoutInvalid
	if s.Initial != nil {
		cfg.Initial = *s.Initial
	}
	if s.RevalidateOnFocus != nil {
		cfg.RevalidateOnFocus = *s.RevalidateOnFocus
	}
	if s.FocusThrottleInterval != nil {
		cfg.FocusThrottleInterval = s.FocusThrottleInterval.Std()
	}
	if s.Timeout != nil {
		cfg.Timeout = s.Timeout.Std()
	}
	return cfg
}

// SlogLevel returns the configured slog level.
func (l LogConfig) SlogLevel() slog.Level {
	level, _ := parseLevel(l.Level)
	return level
}

func parseLevel(s string) (slog.Level, bool) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, true
	case "info", "":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	}
	return slog.LevelInfo, false
}
