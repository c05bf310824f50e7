// Package viewer maps HTTP requests to the viewer shell, model payloads and
// static viewer assets.
//
// Routes:
//
//	/            shell template with meta markers injected
//	/data/<name> the model buffer or a file next to the model
//	/<asset>     static asset from the install directory
//
// Only GET and HEAD are routed. HEAD responses carry the same status and
// headers as GET and never a body.
package viewer
