package viewer_test

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"testing/fstest"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/vango-dev/modelview/pkg/source"
	"github.com/vango-dev/modelview/pkg/viewer"
)

const shellTemplate = "<html><head>\n<!-- meta -->\n</head></html>"

func testAssets() fstest.MapFS {
	return fstest.MapFS{
		"index.html":       {Data: []byte(shellTemplate)},
		"viewer.js":        {Data: []byte("console.log(1)")},
		"style/viewer.css": {Data: []byte("body{}")},
		"notes.txt":        {Data: []byte("no type")},
		"onnx.pb":          {Data: []byte{0x08, 0x01}},
		"fonts/x.woff2":    {Data: []byte("font")},
	}
}

func do(t *testing.T, h http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func TestShell_NoModel(t *testing.T) {
	h := viewer.NewRouter(viewer.Config{Assets: testAssets(), Logger: quietLogger()})

	rec := do(t, h, http.MethodGet, "/")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/html" {
		t.Errorf("Content-Type = %q", ct)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "<meta name='type' content='Go' />") {
		t.Errorf("missing type marker in %q", body)
	}
	if strings.Contains(body, "name='file'") {
		t.Errorf("unexpected file marker in %q", body)
	}
	if strings.Contains(body, "name='version'") {
		t.Errorf("unexpected version marker in %q", body)
	}
	if strings.Contains(body, "<!-- meta -->") {
		t.Errorf("placeholder not replaced in %q", body)
	}
	if rec.Header().Get("Content-Length") != strconvLen(body) {
		t.Errorf("Content-Length = %q, want %d", rec.Header().Get("Content-Length"), len(body))
	}
}

func TestShell_WithModelAndVersion(t *testing.T) {
	h := viewer.NewRouter(viewer.Config{
		Source:  source.Source{Path: "/models/squeezenet.onnx"},
		Assets:  testAssets(),
		Version: "1.2.3",
		Logger:  quietLogger(),
	})

	body := do(t, h, http.MethodGet, "/").Body.String()
	want := "<meta name='type' content='Go' />\n" +
		"<meta name='version' content='1.2.3' />\n" +
		"<meta name='file' content='/data/squeezenet.onnx' />"
	if !strings.Contains(body, want) {
		t.Fatalf("body = %q, want it to contain %q", body, want)
	}
}

func TestShell_EscapesVersion(t *testing.T) {
	h := viewer.NewRouter(viewer.Config{
		Assets:  testAssets(),
		Version: "1.0'x<b>",
		Logger:  quietLogger(),
	})

	body := do(t, h, http.MethodGet, "/").Body.String()
	want := "<meta name='version' content='1.0&#39;x&lt;b&gt;' />"
	if !strings.Contains(body, want) {
		t.Fatalf("body = %q, want it to contain %q", body, want)
	}
}

func TestShell_BufferWithoutNameHasNoFileMarker(t *testing.T) {
	h := viewer.NewRouter(viewer.Config{
		Source: source.Source{Data: []byte("x")},
		Assets: testAssets(),
		Logger: quietLogger(),
	})

	if body := do(t, h, http.MethodGet, "/").Body.String(); strings.Contains(body, "name='file'") {
		t.Fatalf("unexpected file marker in %q", body)
	}
}

func TestShell_MissingTemplateIs500(t *testing.T) {
	var logs bytes.Buffer
	assets := testAssets()
	delete(assets, "index.html")
	h := viewer.NewRouter(viewer.Config{Assets: assets, Logger: slog.New(slog.NewTextHandler(&logs, nil))})

	rec := do(t, h, http.MethodGet, "/")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Errorf("body = %q, want empty", rec.Body.String())
	}
	if !strings.Contains(logs.String(), "E200") {
		t.Errorf("log %q does not mention E200", logs.String())
	}
}

func TestData_BufferTakesPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "m.onnx", []byte("from disk"))

	h := viewer.NewRouter(viewer.Config{
		Source: source.Source{Path: path, Data: []byte("from memory")},
		Assets: testAssets(),
		Logger: quietLogger(),
	})

	rec := do(t, h, http.MethodGet, "/data/m.onnx")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := rec.Body.String(); got != "from memory" {
		t.Fatalf("body = %q, want buffer contents", got)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/octet-stream" {
		t.Errorf("Content-Type = %q", ct)
	}
	if cl := rec.Header().Get("Content-Length"); cl != "11" {
		t.Errorf("Content-Length = %q, want 11", cl)
	}
}

func TestData_SiblingFiles(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "model.json", []byte("{}"))
	writeFile(t, dir, "group1-shard1of1.bin", []byte("weights"))
	writeFile(t, dir, "sub/extra.bin", []byte("nested"))
	writeFile(t, dir, "empty.bin", nil)

	h := viewer.NewRouter(viewer.Config{
		Source: source.Source{Path: path},
		Assets: testAssets(),
		Logger: quietLogger(),
	})

	tests := []struct {
		target string
		status int
		body   string
	}{
		{"/data/model.json", http.StatusOK, "{}"},
		{"/data/group1-shard1of1.bin", http.StatusOK, "weights"},
		{"/data/sub/extra.bin", http.StatusOK, "nested"},
		{"/data/empty.bin", http.StatusOK, ""},
		{"/data/missing.bin", http.StatusNotFound, ""},
		{"/data/", http.StatusNotFound, ""},
		{"/data/sub", http.StatusNotFound, ""},
		{"/data/..%2F..%2Fetc%2Fpasswd", http.StatusNotFound, ""},
		{"/data/sub/..%2F..%2Fmodel.json", http.StatusNotFound, ""},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			rec := do(t, h, http.MethodGet, tt.target)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d", rec.Code, tt.status)
			}
			if rec.Body.String() != tt.body {
				t.Fatalf("body = %q, want %q", rec.Body.String(), tt.body)
			}
		})
	}
}

func TestData_EmptyFileHasLengthZero(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "empty.onnx", nil)

	h := viewer.NewRouter(viewer.Config{Source: source.Source{Path: path}, Assets: testAssets(), Logger: quietLogger()})
	rec := do(t, h, http.MethodGet, "/data/empty.onnx")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if cl := rec.Header().Get("Content-Length"); cl != "0" {
		t.Fatalf("Content-Length = %q, want 0", cl)
	}
}

func TestData_NoModelIs404(t *testing.T) {
	h := viewer.NewRouter(viewer.Config{Assets: testAssets(), Logger: quietLogger()})

	rec := do(t, h, http.MethodGet, "/data/anything.onnx")
	if rec.Code != http.StatusNotFound || rec.Body.Len() != 0 {
		t.Fatalf("got %d %q, want 404 with empty body", rec.Code, rec.Body.String())
	}
}

func TestData_DetachedSourceNeverReadsDisk(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "other.bin", []byte("secret"))

	h := viewer.NewRouter(viewer.Config{
		Source: source.Source{Path: filepath.Join(dir, "m.onnx"), Data: []byte("m"), Detached: true},
		Assets: testAssets(),
		Logger: quietLogger(),
	})

	if rec := do(t, h, http.MethodGet, "/data/m.onnx"); rec.Code != http.StatusOK || rec.Body.String() != "m" {
		t.Fatalf("buffer: got %d %q", rec.Code, rec.Body.String())
	}
	if rec := do(t, h, http.MethodGet, "/data/other.bin"); rec.Code != http.StatusNotFound {
		t.Fatalf("sibling: status = %d, want 404", rec.Code)
	}
}

func TestAssets(t *testing.T) {
	var logs bytes.Buffer
	h := viewer.NewRouter(viewer.Config{Assets: testAssets(), Logger: slog.New(slog.NewTextHandler(&logs, nil))})

	tests := []struct {
		target string
		status int
		ct     string
	}{
		{"/viewer.js", http.StatusOK, "text/javascript"},
		{"/style/viewer.css", http.StatusOK, "text/css"},
		{"/onnx.pb", http.StatusOK, "application/octet-stream"},
		{"/fonts/x.woff2", http.StatusOK, "application/font-woff2"},
		{"/index.html", http.StatusOK, "text/html"},
		{"/missing.js", http.StatusNotFound, ""},
		{"/style", http.StatusNotFound, ""},
		{"/notes.txt", http.StatusInternalServerError, ""},
		{"/..%2Findex.html", http.StatusNotFound, ""},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			rec := do(t, h, http.MethodGet, tt.target)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d", rec.Code, tt.status)
			}
			if tt.status != http.StatusOK {
				if rec.Body.Len() != 0 {
					t.Fatalf("body = %q, want empty", rec.Body.String())
				}
				return
			}
			if ct := rec.Header().Get("Content-Type"); ct != tt.ct {
				t.Fatalf("Content-Type = %q, want %q", ct, tt.ct)
			}
			if rec.Header().Get("Content-Length") != strconvLen(rec.Body.String()) {
				t.Fatalf("Content-Length = %q, body %d bytes", rec.Header().Get("Content-Length"), rec.Body.Len())
			}
		})
	}

	if !strings.Contains(logs.String(), "E201") {
		t.Errorf("log %q does not mention E201", logs.String())
	}
}

func TestHead_SameHeadersNoBody(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "m.onnx", []byte("0123456789"))
	h := viewer.NewRouter(viewer.Config{Source: source.Source{Path: path}, Assets: testAssets(), Logger: quietLogger()})

	for _, target := range []string{"/", "/data/m.onnx", "/viewer.js", "/missing.js"} {
		t.Run(target, func(t *testing.T) {
			get := do(t, h, http.MethodGet, target)
			head := do(t, h, http.MethodHead, target)
			if head.Code != get.Code {
				t.Fatalf("HEAD status = %d, GET status = %d", head.Code, get.Code)
			}
			for _, k := range []string{"Content-Type", "Content-Length"} {
				if head.Header().Get(k) != get.Header().Get(k) {
					t.Errorf("%s: HEAD %q, GET %q", k, head.Header().Get(k), get.Header().Get(k))
				}
			}
			if head.Body.Len() != 0 {
				t.Errorf("HEAD body = %q, want empty", head.Body.String())
			}
		})
	}
}

func TestOtherMethodsNotAllowed(t *testing.T) {
	h := viewer.NewRouter(viewer.Config{Assets: testAssets(), Logger: quietLogger()})

	for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodDelete} {
		if rec := do(t, h, method, "/"); rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("%s / = %d, want 405", method, rec.Code)
		}
	}
}

func TestVerboseLogsEachRequest(t *testing.T) {
	var logs bytes.Buffer
	h := viewer.NewRouter(viewer.Config{
		Assets:  testAssets(),
		Verbose: true,
		Logger:  slog.New(slog.NewTextHandler(&logs, nil)),
	})

	do(t, h, http.MethodGet, "/missing.js")
	out := logs.String()
	for _, want := range []string{"status=404", "method=GET", "path=/missing.js"} {
		if !strings.Contains(out, want) {
			t.Errorf("log %q missing %q", out, want)
		}
	}
}

type fakeReloader struct{ hits int }

func (f *fakeReloader) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.hits++
	w.WriteHeader(http.StatusSwitchingProtocols)
}

func (f *fakeReloader) Script() string { return "<script>reload()</script>" }

func TestReloadEndpointAndScript(t *testing.T) {
	rl := &fakeReloader{}
	h := viewer.NewRouter(viewer.Config{Assets: testAssets(), Reload: rl, Logger: quietLogger()})

	if body := do(t, h, http.MethodGet, "/").Body.String(); !strings.Contains(body, "<script>reload()</script>") {
		t.Fatalf("reload script not injected: %q", body)
	}
	do(t, h, http.MethodGet, "/_modelview/reload")
	if rl.hits != 1 {
		t.Fatalf("reload handler hits = %d, want 1", rl.hits)
	}
}

// spanRecorder remembers the names and attributes of the spans it starts.
type spanRecorder struct {
	noop.TracerProvider

	mu    sync.Mutex
	names []string
	attrs []attribute.KeyValue
}

func (p *spanRecorder) Tracer(string, ...trace.TracerOption) trace.Tracer {
	return &spanRecorderTracer{p: p}
}

type spanRecorderTracer struct {
	noop.Tracer
	p *spanRecorder
}

func (t *spanRecorderTracer) Start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	cfg := trace.NewSpanStartConfig(opts...)
	t.p.mu.Lock()
	t.p.names = append(t.p.names, name)
	t.p.attrs = append(t.p.attrs, cfg.Attributes()...)
	t.p.mu.Unlock()
	return t.Tracer.Start(ctx, name, opts...)
}

func TestTracing_UsesProviderAndSkipsReloadSocket(t *testing.T) {
	tp := &spanRecorder{}
	h := viewer.NewRouter(viewer.Config{
		Source:         source.FromBytes("resnet.onnx", []byte("x")),
		Assets:         testAssets(),
		Logger:         quietLogger(),
		Tracing:        true,
		TracerProvider: tp,
		Reload:         &fakeReloader{},
	})

	do(t, h, http.MethodGet, "/")
	do(t, h, http.MethodGet, "/data/resnet.onnx")
	do(t, h, http.MethodGet, "/_modelview/reload")

	if len(tp.names) != 2 || tp.names[0] != "GET shell" || tp.names[1] != "GET data" {
		t.Fatalf("span names = %v", tp.names)
	}
	var models int
	for _, kv := range tp.attrs {
		if kv.Key == "modelview.model" && kv.Value.AsString() == "resnet.onnx" {
			models++
		}
	}
	if models != 2 {
		t.Fatalf("modelview.model attribute on %d spans, want 2", models)
	}
}
