// Package assets serves the embedded browser chat UI via go:embed.
// The UI is a single self-contained page that talks to the gateway's own
// HTTP endpoints; it carries no backend knowledge of its own.
package assets

import (
	"embed"
	"io/fs"
	"net/http"
)

//go:embed static
var staticFS embed.FS

// Handler returns an http.Handler serving the chat UI. The page is served
// uncached: it is tiny and changes with every gateway release.
func Handler() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		// The embed directive guarantees the directory exists.
		panic(err)
	}

	fileServer := http.FileServer(http.FS(sub))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		fileServer.ServeHTTP(w, r)
	})
}
