package middleware

import "strings"

// Route classes used as metric labels and span attributes. Request paths are
// never used directly to keep label cardinality bounded.
const (
	RouteShell  = "shell"
	RouteData   = "data"
	RouteReload = "reload"
	RouteAsset  = "asset"
)

// ReloadPath is the WebSocket endpoint open viewers use for live reload.
const ReloadPath = "/_modelview/reload"

// RouteClass maps a request path to its route class.
func RouteClass(path string) string {
	switch {
	case path == "" || path == "/":
		return RouteShell
	case strings.HasPrefix(path, "/data/"):
		return RouteData
	case path == ReloadPath:
		return RouteReload
	default:
		return RouteAsset
	}
}
