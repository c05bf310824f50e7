package viewer

import (
	"io/fs"
	"net/http"
	"path"

	"github.com/vango-dev/modelview/internal/errors"
)

func (rt *Router) serveAsset(w http.ResponseWriter, r *http.Request) {
	rel, ok := underPrefix(r.URL.Path, "/")
	if !ok {
		writeStatus(w, http.StatusNotFound)
		return
	}

	info, err := fs.Stat(rt.assets, rel)
	if err != nil || info.IsDir() {
		writeStatus(w, http.StatusNotFound)
		return
	}

	ct, ok := ContentType(path.Ext(rel))
	if !ok {
		rt.logger.Error("asset has no content type",
			"error", errors.New(errors.CodeUnknownAssetType).WithDetail(rel),
		)
		writeStatus(w, http.StatusInternalServerError)
		return
	}

	body, err := fs.ReadFile(rt.assets, rel)
	if err != nil {
		rt.logger.Error("asset read failed",
			"error", errors.New(errors.CodeAssetMissing).WithDetail(rel).Wrap(err),
		)
		writeStatus(w, http.StatusNotFound)
		return
	}
	writeBody(w, r, ct, body)
}
