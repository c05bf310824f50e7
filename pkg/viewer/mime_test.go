package viewer

import "testing"

func TestContentType(t *testing.T) {
	tests := map[string]string{
		".html":  "text/html",
		".js":    "text/javascript",
		".css":   "text/css",
		".png":   "image/png",
		".gif":   "image/gif",
		".jpg":   "image/jpeg",
		".ico":   "image/x-icon",
		".json":  "application/json",
		".pb":    "application/octet-stream",
		".ttf":   "font/truetype",
		".otf":   "font/opentype",
		".eot":   "application/vnd.ms-fontobject",
		".woff":  "font/woff",
		".woff2": "application/font-woff2",
		".svg":   "image/svg+xml",
	}
	for ext, want := range tests {
		got, ok := ContentType(ext)
		if !ok || got != want {
			t.Errorf("ContentType(%q) = (%q, %v), want %q", ext, got, ok, want)
		}
	}
	if len(Extensions()) != len(tests) {
		t.Errorf("Extensions() has %d entries, want %d", len(Extensions()), len(tests))
	}
	for _, ext := range []string{".txt", ".jpeg", ".JS", ""} {
		if _, ok := ContentType(ext); ok {
			t.Errorf("ContentType(%q) should be unknown", ext)
		}
	}
}
