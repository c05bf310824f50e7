package viewer

// contentTypes is the fixed extension table for static assets. Extensions not
// listed here are refused with UnknownAssetType.
var contentTypes = map[string]string{
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

// ContentType returns the content type registered for ext (with the leading
// dot). Lookup is case-sensitive, matching the table exactly.
func ContentType(ext string) (string, bool) {
	ct, ok := contentTypes[ext]
	return ct, ok
}

// Extensions lists the registered extensions in no particular order.
func Extensions() []string {
	exts := make([]string, 0, len(contentTypes))
	for ext := range contentTypes {
		exts = append(exts, ext)
	}
	return exts
}

