package server

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// staticHandler serves the frontend build output for every path that no API
// route claimed. Unknown files fall back to index.html so client-side
// routing keeps working; unknown /api paths stay JSON 404s.
func (s *Server) staticHandler(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		respondWithError(w, http.StatusNotFound, "Not found")
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	// filepath.Clean plus a rooted join keeps traversal attempts inside the
	// static directory.
	relPath := filepath.Clean("/" + r.URL.Path)
	fullPath := filepath.Join(s.staticDir, relPath)

	info, err := os.Stat(fullPath)
	if err == nil && !info.IsDir() {
		http.ServeFile(w, r, fullPath)
		return
	}

	index := filepath.Join(s.staticDir, "index.html")
	if _, err := os.Stat(index); err != nil {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, index)
}
