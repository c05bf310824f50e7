// Package clientdist embeds the browser side of the model viewer.
//
// The directory doubles as the install directory the server resolves static
// asset requests against.
package clientdist

import (
	"embed"
	"io/fs"
)

// ShellName is the shell template served at "/".
const ShellName = "index.html"

// MetaPlaceholder is replaced in the shell with the server's meta markers.
const MetaPlaceholder = "<!-- meta -->"

//go:embed index.html viewer.js viewer.css favicon.svg
var files embed.FS

// FS returns the embedded viewer assets.
func FS() fs.FS {
	return files
}
