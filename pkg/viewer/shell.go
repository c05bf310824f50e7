package viewer

import (
	"html"
	"io/fs"
	"net/http"
	"net/url"
	"strings"

	clientdist "github.com/vango-dev/modelview/client/dist"
	"github.com/vango-dev/modelview/internal/errors"
)

// Meta returns the markers injected into the shell, one per line.
func (rt *Router) Meta() string {
	meta := []string{"<meta name='type' content='" + TypeMarker + "' />"}
	if rt.version != "" {
		meta = append(meta, "<meta name='version' content='"+html.EscapeString(rt.version)+"' />")
	}
	if base := rt.src.Basename(); base != "" {
		meta = append(meta, "<meta name='file' content='/data/"+url.PathEscape(base)+"' />")
	}
	if rt.reload != nil {
		meta = append(meta, rt.reload.Script())
	}
	return strings.Join(meta, "\n")
}

func (rt *Router) serveShell(w http.ResponseWriter, r *http.Request) {
	tmpl, err := fs.ReadFile(rt.assets, clientdist.ShellName)
	if err != nil {
		rt.logger.Error("shell template unavailable",
			"error", errors.New(errors.CodeAssetMissing).
				WithDetail(clientdist.ShellName).
				Wrap(err),
		)
		writeStatus(w, http.StatusInternalServerError)
		return
	}

	body := strings.Replace(string(tmpl), clientdist.MetaPlaceholder, rt.Meta(), 1)
	writeBody(w, r, "text/html", []byte(body))
}
