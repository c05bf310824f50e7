package config

import (
	"encoding/json"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/vango-dev/modelview/internal/errors"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "modelview.json"

	// DefaultPort is the default server port.
	DefaultPort = 8080

	// DefaultHost is the default server host.
	DefaultHost = "localhost"

	// DefaultPollInterval bounds how long the accept loop blocks before
	// checking for a stop request.
	DefaultPollInterval = 250 * time.Millisecond

	// DefaultStopTimeout bounds how long Stop waits for the accept loop to exit.
	DefaultStopTimeout = 5 * time.Second

	// DefaultBrowseDelay is the delay between starting the loop and opening the browser.
	DefaultBrowseDelay = time.Second

	// DefaultWaitInterval is the pruning interval used by Registry.Wait.
	DefaultWaitInterval = time.Second

	// DefaultWatchInterval is the polling interval of the model file watcher.
	DefaultWatchInterval = 500 * time.Millisecond

	// DefaultMetricsNamespace is the Prometheus namespace.
	DefaultMetricsNamespace = "modelview"
)

// Config represents the complete modelview.json configuration.
type Config struct {
	// Server contains server instance settings.
	Server ServerConfig `json:"server,omitempty"`

	// Log contains logging settings.
	Log LogConfig `json:"log,omitempty"`

	// Metrics contains the Prometheus endpoint settings.
	Metrics MetricsConfig `json:"metrics,omitempty"`

	// S3 contains settings for s3:// model sources.
	S3 S3Config `json:"s3,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// ServerConfig contains server instance settings.
type ServerConfig struct {
	// Host is the host to bind to. Empty binds all interfaces.
	Host string `json:"host,omitempty"`

	// Port is the port to bind to.
	Port int `json:"port,omitempty"`

	// Verbose logs one line per request.
	Verbose bool `json:"verbose,omitempty"`

	// NoBrowse keeps the browser closed. The browser opens by default.
	NoBrowse bool `json:"noBrowse,omitempty"`

	// Watch reloads open viewers when the model file changes.
	Watch bool `json:"watch,omitempty"`

	// Assets overrides the embedded viewer assets with a directory.
	Assets string `json:"assets,omitempty"`

	// PollInterval is the accept loop poll interval (e.g., "250ms").
	PollInterval string `json:"pollInterval,omitempty"`

	// StopTimeout is the maximum time Stop waits (e.g., "5s").
	StopTimeout string `json:"stopTimeout,omitempty"`

	// BrowseDelay is the delay before opening the browser (e.g., "1s").
	BrowseDelay string `json:"browseDelay,omitempty"`

	// WaitInterval is the Registry.Wait pruning interval (e.g., "1s").
	WaitInterval string `json:"waitInterval,omitempty"`

	// WatchInterval is the model file polling interval (e.g., "500ms").
	WatchInterval string `json:"watchInterval,omitempty"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level,omitempty"`

	// Format is text or json.
	Format string `json:"format,omitempty"`
}

// MetricsConfig contains the Prometheus endpoint settings.
type MetricsConfig struct {
	// Addr is the listen address of the metrics endpoint. Empty disables it.
	Addr string `json:"addr,omitempty"`

	// Namespace is the metrics namespace.
	Namespace string `json:"namespace,omitempty"`
}

// S3Config contains settings for s3:// model sources.
type S3Config struct {
	// Region is the bucket region.
	Region string `json:"region,omitempty"`

	// Endpoint overrides the S3 endpoint (for S3-compatible stores).
	Endpoint string `json:"endpoint,omitempty"`

	// PathStyle forces path-style bucket addressing.
	PathStyle bool `json:"pathStyle,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Server: ServerConfig{
			Host:          DefaultHost,
			Port:          DefaultPort,
			PollInterval:  DefaultPollInterval.String(),
			StopTimeout:   DefaultStopTimeout.String(),
			BrowseDelay:   DefaultBrowseDelay.String(),
			WaitInterval:  DefaultWaitInterval.String(),
			WatchInterval: DefaultWatchInterval.String(),
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Namespace: DefaultMetricsNamespace,
		},
	}
}

// Load reads configuration from the specified directory.
// It looks for modelview.json in the directory.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.CodeConfigNotFound).
				WithDetail("No " + ConfigFileName + " found at " + path)
		}
		return nil, errors.New(errors.CodeConfigInvalid).Wrap(err)
	}

	cfg := New()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New(errors.CodeConfigInvalid).
			WithDetail("Failed to parse " + path + ": " + err.Error()).
			WithSuggestion("Check that " + ConfigFileName + " is valid JSON")
	}

	cfg.configPath = path
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromWorkingDir loads modelview.json from the current working directory.
// A missing file yields the defaults.
func LoadFromWorkingDir() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	if !Exists(wd) {
		return New(), nil
	}
	return Load(wd)
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ConfigFileName))
	return err == nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Server.PollInterval == "" {
		c.Server.PollInterval = DefaultPollInterval.String()
	}
	if c.Server.StopTimeout == "" {
		c.Server.StopTimeout = DefaultStopTimeout.String()
	}
	if c.Server.BrowseDelay == "" {
		c.Server.BrowseDelay = DefaultBrowseDelay.String()
	}
	if c.Server.WaitInterval == "" {
		c.Server.WaitInterval = DefaultWaitInterval.String()
	}
	if c.Server.WatchInterval == "" {
		c.Server.WatchInterval = DefaultWatchInterval.String()
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = DefaultMetricsNamespace
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return errors.New(errors.CodeInvalidPort).
			WithDetail("Port " + strconv.Itoa(c.Server.Port) + " is outside 0-65535")
	}
	durations := map[string]string{
		"pollInterval":  c.Server.PollInterval,
		"stopTimeout":   c.Server.StopTimeout,
		"browseDelay":   c.Server.BrowseDelay,
		"waitInterval":  c.Server.WaitInterval,
		"watchInterval": c.Server.WatchInterval,
	}
	for name, value := range durations {
		if value == "" {
			continue
		}
		if d, err := time.ParseDuration(value); err != nil || d < 0 {
			return errors.New(errors.CodeConfigInvalid).
				WithDetail("server." + name + " must be a non-negative duration, got " + strconv.Quote(value))
		}
	}
	return nil
}

// Address returns the host:port the server binds to.
func (c *Config) Address() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}

// URL returns the browser URL for the configured address.
func (c *Config) URL() string {
	host := c.Server.Host
	if host == "" {
		host = DefaultHost
	}
	return "http://" + net.JoinHostPort(host, strconv.Itoa(c.Server.Port))
}

// PollInterval returns the parsed accept loop poll interval.
func (c *Config) PollInterval() time.Duration {
	return parseDuration(c.Server.PollInterval, DefaultPollInterval)
}

// StopTimeout returns the parsed stop timeout.
func (c *Config) StopTimeout() time.Duration {
	return parseDuration(c.Server.StopTimeout, DefaultStopTimeout)
}

// BrowseDelay returns the parsed browse delay.
func (c *Config) BrowseDelay() time.Duration {
	return parseDuration(c.Server.BrowseDelay, DefaultBrowseDelay)
}

// WaitInterval returns the parsed Registry.Wait interval.
func (c *Config) WaitInterval() time.Duration {
	return parseDuration(c.Server.WaitInterval, DefaultWaitInterval)
}

// WatchInterval returns the parsed model file polling interval.
func (c *Config) WatchInterval() time.Duration {
	return parseDuration(c.Server.WatchInterval, DefaultWatchInterval)
}

// AssetsPath returns the absolute path of the assets override, or "".
func (c *Config) AssetsPath() string {
	path := c.Server.Assets
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if c.configPath != "" {
		return filepath.Join(filepath.Dir(c.configPath), path)
	}
	return path
}

func parseDuration(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil || d < 0 {
		return fallback
	}
	return d
}
