package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRequestLog_WritesStatusMethodPath(t *testing.T) {
	var buf syncBuffer
	logger := newTestLogger(&buf)

	h := RequestLog(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodHead, "/data/x?y=1", nil))

	out := buf.String()
	for _, want := range []string{"status=404", "method=HEAD", "path=\"/data/x?y=1\""} {
		if !contains(out, want) {
			t.Errorf("log %q missing %q", out, want)
		}
	}
}
