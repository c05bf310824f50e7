package server

import (
	"bufio"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vango-dev/modelview/internal/errors"
	"github.com/vango-dev/modelview/internal/logging"
	"github.com/vango-dev/modelview/internal/watch"
	"github.com/vango-dev/modelview/pkg/source"
	"github.com/vango-dev/modelview/pkg/viewer"
)

// Instance is one HTTP server bound to a single key and serving a single
// model source.
type Instance struct {
	key    Key
	src    source.Source
	opts   ServeOptions
	cfg    *Config
	logger *slog.Logger

	handler http.Handler
	hub     *watch.Hub
	watcher *watch.Watcher

	state  atomic.Int32
	browse atomic.Bool

	// mu serializes Start against Stop; it is never held while waiting.
	mu       sync.Mutex
	ln       *net.TCPListener
	conn     net.Conn
	ctx      context.Context
	cancel   context.CancelFunc
	stopCh   chan struct{}
	done     chan struct{}
	stopOnce sync.Once
	timer    *time.Timer
}

// NewInstance creates an instance in the created state. It does not bind.
func NewInstance(src source.Source, opts ServeOptions, cfg *Config) *Instance {
	cfg = cfg.withDefaults()
	key := opts.Key()

	inst := &Instance{
		key:    key,
		src:    src.Clone(),
		opts:   opts,
		cfg:    cfg,
		logger: logging.WithComponent(cfg.Logger, "instance").With("addr", key.Address()),
		stopCh: make(chan struct{}),
		done:   make(chan struct{}),
	}
	inst.ctx, inst.cancel = context.WithCancel(context.Background())
	inst.browse.Store(opts.Browse)

	if opts.Watch && inst.src.Data == nil && inst.src.Folder() != "" {
		inst.hub = watch.NewHub(cfg.Logger)
		inst.watcher = watch.NewWatcher(watch.WatcherConfig{
			Paths:    []string{inst.src.Path},
			Interval: cfg.WatchInterval,
		})
		inst.watcher.OnChange(inst.hub.HandleChange)
	}

	vcfg := viewer.Config{
		Source:         inst.src,
		Assets:         cfg.Assets,
		Version:        cfg.Version,
		Verbose:        opts.Verbose,
		Logger:         cfg.Logger,
		Metrics:        cfg.Metrics,
		Tracing:        cfg.Tracing,
		TracerProvider: cfg.TracerProvider,
	}
	if inst.hub != nil {
		vcfg.Reload = inst.hub
	}
	inst.handler = viewer.NewRouter(vcfg)

	return inst
}

// Key returns the key the instance was created for.
func (i *Instance) Key() Key {
	return i.key
}

// Source returns the model source the instance serves.
func (i *Instance) Source() source.Source {
	return i.src
}

// State returns the current lifecycle state.
func (i *Instance) State() RunState {
	return RunState(i.state.Load())
}

// Alive reports whether the instance is running or stopping.
func (i *Instance) Alive() bool {
	return i.State().Alive()
}

// Done is closed once the instance reaches the stopped state.
func (i *Instance) Done() <-chan struct{} {
	return i.done
}

// Addr returns the bound address, or nil before a successful Start.
func (i *Instance) Addr() net.Addr {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.ln == nil {
		return nil
	}
	return i.ln.Addr()
}

// URL returns the browser URL of the instance. When the key asked for port 0
// the bound port is used.
func (i *Instance) URL() string {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.urlLocked()
}

func (i *Instance) transition(from, to RunState) bool {
	if !i.state.CompareAndSwap(int32(from), int32(to)) {
		return false
	}
	i.cfg.Metrics.RecordTransition(from.String(), to.String())
	return true
}

// Start binds the listener and runs the accept loop on its own goroutine.
// A bind failure leaves the instance stopped and returns a BindFailure error.
func (i *Instance) Start() error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.State() != StateCreated {
		return fmt.Errorf("instance %s already started", i.key)
	}

	ln, err := net.Listen("tcp", i.key.Address())
	if err != nil {
		i.transition(StateCreated, StateStopped)
		i.cancel()
		close(i.done)
		return errors.New(errors.CodeBindFailure).
			WithDetail("Cannot listen on " + i.key.Address()).
			WithSuggestion("Stop the process using the port or pick another one with --port").
			Wrap(err)
	}
	i.ln = ln.(*net.TCPListener)

	i.transition(StateCreated, StateRunning)
	if i.watcher != nil {
		go i.watcher.Start(i.ctx)
	}

	i.logger.Info("serving", "file", i.src.Basename(), "url", i.urlLocked())
	go i.loop()
	return nil
}

func (i *Instance) urlLocked() string {
	if i.ln != nil && i.key.Port == 0 {
		if addr, ok := i.ln.Addr().(*net.TCPAddr); ok {
			return urlFor(i.key.Host, addr.Port)
		}
	}
	return i.key.URL()
}

// Stop requests shutdown and waits for the accept loop to exit, at most
// StopTimeout. It is idempotent and safe to call from any goroutine.
func (i *Instance) Stop() {
	i.stopOnce.Do(func() {
		i.mu.Lock()
		defer i.mu.Unlock()

		if i.transition(StateCreated, StateStopped) {
			i.cancel()
			close(i.done)
			return
		}
		if i.transition(StateRunning, StateStopRequested) {
			i.logger.Info("stopping", "url", i.urlLocked())
		}
		close(i.stopCh)
		if i.ln != nil {
			_ = i.ln.Close()
		}
		if i.conn != nil {
			_ = i.conn.SetDeadline(time.Now())
		}
	})

	select {
	case <-i.done:
	case <-time.After(i.cfg.StopTimeout):
		i.logger.Warn("accept loop did not exit in time", "timeout", i.cfg.StopTimeout)
	}
}

// loop accepts and serves connections one at a time until a stop request.
func (i *Instance) loop() {
	defer i.finish()

	if i.browse.CompareAndSwap(true, false) {
		url := i.URL()
		i.mu.Lock()
		i.timer = time.AfterFunc(i.cfg.BrowseDelay, func() {
			if !i.Alive() {
				return
			}
			if err := i.cfg.Launcher(url); err != nil {
				i.logger.Warn("cannot open browser", "url", url, "error", err)
			}
		})
		i.mu.Unlock()
	}

	for {
		select {
		case <-i.stopCh:
			return
		default:
		}

		_ = i.ln.SetDeadline(time.Now().Add(i.cfg.PollInterval))
		conn, err := i.ln.Accept()
		if err != nil {
			var ne net.Error
			if stderrors.As(err, &ne) && ne.Timeout() {
				continue
			}
			select {
			case <-i.stopCh:
			default:
				i.logger.Error("accept failed", "error", err)
			}
			return
		}

		i.serveConn(conn)
	}
}

// finish moves the instance to stopped and releases everything it owns.
func (i *Instance) finish() {
	i.mu.Lock()
	if i.timer != nil {
		i.timer.Stop()
	}
	i.mu.Unlock()

	_ = i.ln.Close()
	i.cancel()
	if i.watcher != nil {
		i.watcher.Stop()
	}
	if i.hub != nil {
		i.hub.Close()
	}

	if !i.transition(StateStopRequested, StateStopped) {
		i.transition(StateRunning, StateStopped)
	}
	i.logger.Info("stopped")
	close(i.done)
}

// track records conn as the connection being served so Stop can expire it.
// A connection accepted after the stop request is expired immediately.
func (i *Instance) track(conn net.Conn) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.conn = conn
	if conn == nil {
		return
	}
	select {
	case <-i.stopCh:
		_ = conn.SetDeadline(time.Now())
	default:
	}
}

// serveConn handles exactly one request on conn. Failures are logged as
// RequestHandlingFault and never reach the accept loop.
func (i *Instance) serveConn(conn net.Conn) {
	hijacked := false
	defer func() {
		if p := recover(); p != nil {
			i.logger.Error("request handling failed",
				"error", errors.New(errors.CodeRequestHandlingFault).
					WithDetail(fmt.Sprintf("panic: %v", p)),
				"remote", conn.RemoteAddr().String(),
			)
		}
		if !hijacked {
			_ = conn.Close()
		}
	}()

	_ = conn.SetDeadline(time.Now().Add(i.cfg.ConnTimeout))
	i.track(conn)
	defer i.track(nil)

	br := bufio.NewReader(conn)
	req, err := http.ReadRequest(br)
	if err != nil {
		if err != io.EOF {
			i.logger.Debug("request handling failed",
				"error", errors.New(errors.CodeRequestHandlingFault).Wrap(err),
				"remote", conn.RemoteAddr().String(),
			)
		}
		return
	}
	req.RemoteAddr = conn.RemoteAddr().String()
	req = req.WithContext(i.ctx)

	rw := newResponse(conn, br, req)
	i.handler.ServeHTTP(rw, req)
	if rw.hijacked {
		// The reload hub owns the connection from here on.
		hijacked = true
		return
	}

	if err := rw.finish(); err != nil {
		i.logger.Debug("request handling failed",
			"error", errors.New(errors.CodeRequestHandlingFault).Wrap(err),
			"remote", req.RemoteAddr,
		)
	}
}
