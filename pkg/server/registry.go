package server

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vango-dev/modelview/internal/logging"
	"github.com/vango-dev/modelview/pkg/source"
)

// Registry tracks the live instances of a process, at most one per key.
type Registry struct {
	mu        sync.Mutex
	instances map[Key]*Instance
	cfg       *Config
	logger    *slog.Logger
}

// NewRegistry creates an empty registry. A nil cfg uses DefaultConfig.
func NewRegistry(cfg *Config) *Registry {
	cfg = cfg.withDefaults()
	return &Registry{
		instances: make(map[Key]*Instance),
		cfg:       cfg,
		logger:    logging.WithComponent(cfg.Logger, "registry"),
	}
}

// Serve starts serving src at opts.Host:opts.Port, replacing any instance
// already serving that key.
//
// A file-backed source without a buffer must exist (ModelNotFound); in that
// case nothing is stopped or started. A bind failure is returned as
// BindFailure after the previous instance at the key has been stopped.
func (r *Registry) Serve(src source.Source, opts ServeOptions) (*Instance, error) {
	if err := src.Validate(); err != nil {
		return nil, err
	}

	key := opts.Key()

	r.mu.Lock()
	defer r.mu.Unlock()

	if old, ok := r.instances[key]; ok {
		old.Stop()
		delete(r.instances, key)
	}

	inst := NewInstance(src, opts, r.cfg)
	if err := inst.Start(); err != nil {
		r.pruneLocked()
		return nil, err
	}
	r.instances[key] = inst
	r.pruneLocked()

	return inst, nil
}

// Stop stops the instance at host:port. An absent key is a no-op.
func (r *Registry) Stop(host string, port int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if inst, ok := r.instances[Key{Host: host, Port: port}]; ok {
		inst.Stop()
	}
	r.pruneLocked()
}

// StopAll stops every instance concurrently and waits for all of them.
func (r *Registry) StopAll() {
	r.mu.Lock()
	defer r.mu.Unlock()

	var g errgroup.Group
	for _, inst := range r.instances {
		inst := inst
		g.Go(func() error {
			inst.Stop()
			return nil
		})
	}
	_ = g.Wait()
	r.pruneLocked()
}

// Wait blocks while any instance is alive, pruning stopped ones every
// WaitInterval. On context cancellation, SIGINT or SIGTERM it stops all
// instances and returns.
func (r *Registry) Wait(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	ticker := time.NewTicker(r.cfg.WaitInterval)
	defer ticker.Stop()

	for {
		if r.Prune() == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			r.logger.Info("shutting down")
			r.StopAll()
			return nil
		case <-ticker.C:
		}
	}
}

// Prune removes instances that are no longer alive and returns how many
// remain.
func (r *Registry) Prune() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pruneLocked()
}

func (r *Registry) pruneLocked() int {
	for key, inst := range r.instances {
		if !inst.Alive() {
			delete(r.instances, key)
		}
	}
	return len(r.instances)
}

// Lookup returns the instance registered at host:port.
func (r *Registry) Lookup(host string, port int) (*Instance, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inst, ok := r.instances[Key{Host: host, Port: port}]
	return inst, ok
}

// Len returns the number of registered instances.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.instances)
}

// Instances returns the registered instances ordered by host, then port.
func (r *Registry) Instances() []*Instance {
	r.mu.Lock()
	out := make([]*Instance, 0, len(r.instances))
	for _, inst := range r.instances {
		out = append(out, inst)
	}
	r.mu.Unlock()

	sort.Slice(out, func(a, b int) bool {
		ka, kb := out[a].key, out[b].key
		if ka.Host != kb.Host {
			return ka.Host < kb.Host
		}
		return ka.Port < kb.Port
	})
	return out
}
