// Package site serves the embedded documentation pages.
package site

import (
	"context"
	"net/http"
)

// Register attaches the documentation routes to mux. The docs live under
// /docs/ and the bare root redirects there.
func Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}

	mux.Handle("GET /docs/", http.StripPrefix("/docs/", http.FileServer(FS())))
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/docs/", http.StatusFound)
	})
}
