package server

import (
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("net.Listen failed: %v", err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	_ = ln.Close()
	return port
}

type launchRecorder struct {
	mu   sync.Mutex
	urls []string
}

func (l *launchRecorder) launch(url string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.urls = append(l.urls, url)
	return nil
}

func (l *launchRecorder) launched() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.urls...)
}

func testConfig(l *launchRecorder) *Config {
	cfg := DefaultConfig()
	cfg.PollInterval = 20 * time.Millisecond
	cfg.StopTimeout = 2 * time.Second
	cfg.BrowseDelay = 10 * time.Millisecond
	cfg.WaitInterval = 20 * time.Millisecond
	cfg.ConnTimeout = 2 * time.Second
	cfg.WatchInterval = 20 * time.Millisecond
	cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	if l != nil {
		cfg.Launcher = l.launch
	} else {
		cfg.Launcher = func(string) error { return nil }
	}
	return cfg
}

func writeModel(t *testing.T, name string, data []byte) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

var testClient = &http.Client{
	Timeout:   5 * time.Second,
	Transport: &http.Transport{DisableKeepAlives: true},
}

func get(t *testing.T, method, url string) (int, http.Header, string) {
	t.Helper()
	req, err := http.NewRequest(method, url, nil)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := testClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, resp.Header, string(body)
}

func eventually(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timeout waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

// serving reports whether inst has accepted a connection it is still serving.
func serving(inst *Instance) bool {
	inst.mu.Lock()
	defer inst.mu.Unlock()
	return inst.conn != nil
}

// dialIdle opens a connection to addr and waits until inst is blocked
// serving it. partial is written first and may be empty.
func dialIdle(t *testing.T, inst *Instance, partial string) net.Conn {
	t.Helper()
	conn, err := net.DialTimeout("tcp", inst.Key().Address(), time.Second)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	if partial != "" {
		if _, err := io.WriteString(conn, partial); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	eventually(t, "connection accepted", func() bool { return serving(inst) })
	return conn
}
