package viewer

import (
	"net/http"
	"os"
	"path/filepath"
)

const dataPrefix = "/data/"

// serveData answers /data/<name>. The buffer wins over the file system when
// name equals the source basename.
func (rt *Router) serveData(w http.ResponseWriter, r *http.Request) {
	name, ok := underPrefix(r.URL.Path, dataPrefix)
	if !ok {
		writeStatus(w, http.StatusNotFound)
		return
	}

	if rt.src.Data != nil && name == rt.src.Basename() {
		writeBody(w, r, "application/octet-stream", rt.src.Data)
		return
	}

	body, ok := rt.readSibling(name)
	if !ok {
		writeStatus(w, http.StatusNotFound)
		return
	}
	writeBody(w, r, "application/octet-stream", body)
}

// readSibling reads the sanitized relative name from the source folder.
func (rt *Router) readSibling(name string) ([]byte, bool) {
	folder := rt.src.Folder()
	if folder == "" {
		return nil, false
	}

	full := filepath.Join(folder, filepath.FromSlash(name))
	info, err := os.Stat(full)
	if err != nil || info.IsDir() {
		return nil, false
	}
	body, err := os.ReadFile(full)
	if err != nil {
		rt.logger.Debug("data read failed", "file", full, "error", err)
		return nil, false
	}
	return body, true
}
