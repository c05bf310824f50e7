package viewer

import (
	"io/fs"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	clientdist "github.com/vango-dev/modelview/client/dist"
	"github.com/vango-dev/modelview/internal/logging"
	"github.com/vango-dev/modelview/pkg/middleware"
	"github.com/vango-dev/modelview/pkg/source"
)

// TypeMarker identifies the server implementation to the viewer shell.
const TypeMarker = "Go"

// Reloader is a live-reload endpoint mounted at middleware.ReloadPath.
// Script returns markup injected into the shell next to the meta markers.
type Reloader interface {
	http.Handler
	Script() string
}

// Config configures a router.
type Config struct {
	// Source is the model exposed under /data/.
	Source source.Source

	// Assets is the install directory. Defaults to the embedded viewer.
	Assets fs.FS

	// Version is advertised in the shell when non-empty.
	Version string

	// Verbose logs one line per request.
	Verbose bool

	// Logger receives request lines and per-request failures.
	Logger *slog.Logger

	// Metrics records request samples when non-nil.
	Metrics *middleware.Metrics

	// Tracing starts a server span per request.
	Tracing bool

	// TracerProvider receives the spans. Defaults to the global provider.
	TracerProvider trace.TracerProvider

	// Reload enables live reload when non-nil.
	Reload Reloader
}

// Router serves one model source. It is safe for concurrent use and never
// mutates its configuration after construction.
type Router struct {
	src     source.Source
	assets  fs.FS
	version string
	reload  Reloader
	logger  *slog.Logger
	mux     *chi.Mux
}

// NewRouter builds the route table for cfg.
func NewRouter(cfg Config) *Router {
	rt := &Router{
		src:     cfg.Source.Clone(),
		assets:  cfg.Assets,
		version: cfg.Version,
		reload:  cfg.Reload,
		logger:  cfg.Logger,
	}
	if rt.assets == nil {
		rt.assets = clientdist.FS()
	}
	rt.logger = logging.WithComponent(rt.logger, "viewer")

	r := chi.NewRouter()
	if cfg.Verbose {
		r.Use(middleware.RequestLog(rt.logger))
	}
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Handler)
	}
	if cfg.Tracing {
		r.Use(middleware.Tracing(
			middleware.WithTracerProvider(cfg.TracerProvider),
			middleware.WithRequestFilter(traced),
			middleware.WithAttributeExtractor(rt.spanAttributes),
		))
	}
	r.Use(chimw.Recoverer)

	r.NotFound(rt.notFound)
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusMethodNotAllowed)
	})

	getHead(r, "/", rt.serveShell)
	getHead(r, "/data/*", rt.serveData)
	if rt.reload != nil {
		r.Get(middleware.ReloadPath, rt.reload.ServeHTTP)
	}
	getHead(r, "/*", rt.serveAsset)

	rt.mux = r
	return rt
}

// ServeHTTP implements http.Handler.
func (rt *Router) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rt.mux.ServeHTTP(w, r)
}

// Source returns the model source the router serves.
func (rt *Router) Source() source.Source {
	return rt.src
}

// traced skips the reload socket, whose span would last as long as the page.
func traced(r *http.Request) bool {
	return r.URL.Path != middleware.ReloadPath
}

func (rt *Router) spanAttributes(*http.Request) []attribute.KeyValue {
	if base := rt.src.Basename(); base != "" {
		return []attribute.KeyValue{attribute.String("modelview.model", base)}
	}
	return nil
}

func getHead(r chi.Router, pattern string, h http.HandlerFunc) {
	r.Get(pattern, h)
	r.Head(pattern, h)
}

func (rt *Router) notFound(w http.ResponseWriter, r *http.Request) {
	writeStatus(w, http.StatusNotFound)
}

// writeBody sends a 200 response. HEAD gets the headers only.
func writeBody(w http.ResponseWriter, r *http.Request, contentType string, body []byte) {
	h := w.Header()
	h.Set("Content-Type", contentType)
	h.Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	_, _ = w.Write(body)
}

// writeStatus sends an empty response with code.
func writeStatus(w http.ResponseWriter, code int) {
	w.Header().Set("Content-Length", "0")
	w.WriteHeader(code)
}
