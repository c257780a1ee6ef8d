package rest

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// NewFrontendHandler serves static files from dir. Paths that do not match a file fall back to index,
// so client-side routes of the single page app resolve.
func NewFrontendHandler(dir string, index string) http.Handler {
	fileServer := http.FileServer(http.Dir(dir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/") {
			http.NotFound(w, r)
			return
		}
		path := filepath.Join(dir, filepath.Clean("/"+r.URL.Path))
		if info, err := os.Stat(path); err != nil || info.IsDir() {
			http.ServeFile(w, r, filepath.Join(dir, index))
			return
		}
		fileServer.ServeHTTP(w, r)
	})
}
