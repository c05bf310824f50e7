package viewer

import (
	"path/filepath"
	"strings"
)

// underPrefix strips prefix from a request path and returns what is left as
// a slash-separated path relative to the lookup root. Repeated slashes
// collapse. A remainder that is empty or absolute is rejected, as are dot
// segments, backslashes, NUL bytes and drive letters.
func underPrefix(urlPath, prefix string) (string, bool) {
	rest, ok := strings.CutPrefix(urlPath, prefix)
	if !ok || rest == "" || rest[0] == '/' || strings.ContainsAny(rest, "\\\x00") {
		return "", false
	}

	segs := strings.FieldsFunc(rest, func(r rune) bool { return r == '/' })
	for _, seg := range segs {
		if seg == "." || seg == ".." {
			return "", false
		}
	}
	if len(segs) == 0 {
		return "", false
	}

	rel := strings.Join(segs, "/")
	if filepath.VolumeName(filepath.FromSlash(rel)) != "" {
		return "", false
	}
	return rel, true
}
