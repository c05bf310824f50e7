package server

import (
	"context"
	"sync"

	"github.com/vango-dev/modelview/pkg/source"
)

var (
	defaultRegistry     *Registry
	defaultRegistryOnce sync.Once
)

// DefaultRegistry returns the process-wide registry used by the package
// level helpers, creating it on first use.
func DefaultRegistry() *Registry {
	defaultRegistryOnce.Do(func() {
		defaultRegistry = NewRegistry(nil)
	})
	return defaultRegistry
}

// Serve calls Serve on the default registry.
func Serve(src source.Source, opts ServeOptions) (*Instance, error) {
	return DefaultRegistry().Serve(src, opts)
}

// Start serves the model file at path on the default registry and opens it
// in the browser.
func Start(path, host string, port int) (*Instance, error) {
	src, err := source.FromFile(path)
	if err != nil {
		return nil, err
	}
	return Serve(src, ServeOptions{Host: host, Port: port, Browse: true})
}

// Stop calls Stop on the default registry.
func Stop(host string, port int) {
	DefaultRegistry().Stop(host, port)
}

// Wait calls Wait on the default registry.
func Wait(ctx context.Context) error {
	return DefaultRegistry().Wait(ctx)
}
