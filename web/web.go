// Package web serves the hub's embedded landing page. The page is a single
// self-contained HTML file compiled into the binary, so the hub stays a
// one-file deploy with nothing to install next to it.
package web

import (
	"embed"
	"io/fs"
	"net/http"
)

//go:embed static
var content embed.FS

// Handler returns the landing page file server. Unknown paths fall through
// to the file server's own 404; the page itself lives at /.
func Handler() http.Handler {
	sub, err := fs.Sub(content, "static")
	if err != nil {
		// The static directory is embedded at compile time; failing to
		// open it means the binary is broken, not the request.
		panic(err)
	}
	return http.FileServer(http.FS(sub))
}
