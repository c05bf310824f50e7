package server

import (
	"io/fs"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/modelview/internal/browser"
	"github.com/vango-dev/modelview/pkg/middleware"
)

// ServeOptions are the per-call options of Registry.Serve.
type ServeOptions struct {
	// Host to bind. Empty binds all interfaces.
	Host string

	// Port to bind.
	Port int

	// Verbose logs one line per request.
	Verbose bool

	// Browse opens the viewer in the browser once the instance runs.
	Browse bool

	// Watch reloads open viewers when the model file changes.
	// Ignored for buffer-backed and detached sources.
	Watch bool
}

// Key returns the registry key for the options.
func (o ServeOptions) Key() Key {
	return Key{Host: o.Host, Port: o.Port}
}

// Config holds settings shared by every instance of a registry.
type Config struct {
	// PollInterval bounds how long the accept loop blocks before checking
	// for a stop request.
	// Default: 250ms.
	PollInterval time.Duration

	// StopTimeout bounds how long Stop waits for the loop to exit.
	// Default: 5 seconds.
	StopTimeout time.Duration

	// BrowseDelay is the wait between the loop starting and the browser
	// launch.
	// Default: 1 second.
	BrowseDelay time.Duration

	// WaitInterval is the polling period of Registry.Wait.
	// Default: 1 second.
	WaitInterval time.Duration

	// ConnTimeout bounds reading the request and writing the response of a
	// single connection. It is kept below StopTimeout.
	// Default: 2 seconds.
	ConnTimeout time.Duration

	// WatchInterval is the polling period of the model file watcher.
	// Default: 500ms.
	WatchInterval time.Duration

	// Assets overrides the embedded viewer assets.
	Assets fs.FS

	// Version is advertised to the viewer.
	Version string

	// Logger is the base logger. Default: slog.Default().
	Logger *slog.Logger

	// Metrics records requests and lifecycle transitions when non-nil.
	Metrics *middleware.Metrics

	// Tracing starts a server span per request.
	Tracing bool

	// TracerProvider receives request spans. Defaults to the global provider.
	TracerProvider trace.TracerProvider

	// Launcher opens URLs in the browser. Default: browser.Open.
	Launcher browser.Launcher
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		PollInterval:  250 * time.Millisecond,
		StopTimeout:   5 * time.Second,
		BrowseDelay:   1 * time.Second,
		WaitInterval:  1 * time.Second,
		ConnTimeout:   2 * time.Second,
		WatchInterval: 500 * time.Millisecond,
		Launcher:      browser.Open,
	}
}

// Clone returns a copy of the Config.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	clone := *c
	return &clone
}

// withDefaults fills zero fields from DefaultConfig.
func (c *Config) withDefaults() *Config {
	d := DefaultConfig()
	if c == nil {
		d.Logger = slog.Default()
		return d
	}
	out := c.Clone()
	if out.PollInterval <= 0 {
		out.PollInterval = d.PollInterval
	}
	if out.StopTimeout <= 0 {
		out.StopTimeout = d.StopTimeout
	}
	if out.BrowseDelay < 0 {
		out.BrowseDelay = d.BrowseDelay
	}
	if out.WaitInterval <= 0 {
		out.WaitInterval = d.WaitInterval
	}
	if out.ConnTimeout <= 0 {
		out.ConnTimeout = d.ConnTimeout
	}
	if out.ConnTimeout >= out.StopTimeout {
		out.ConnTimeout = out.StopTimeout / 2
	}
	if out.WatchInterval <= 0 {
		out.WatchInterval = d.WatchInterval
	}
	if out.Launcher == nil {
		out.Launcher = d.Launcher
	}
	if out.Logger == nil {
		out.Logger = slog.Default()
	}
	return out
}
