package api

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/flycharts/flycharts/pkg/logger"
)

// StaticFileHandler serves the dashboard assets (index.html, airports.json,
// icons) from a directory on disk. Files are resolved on every request so
// asset edits show up without a restart, and responses are marked
// uncacheable to match.
type StaticFileHandler struct {
	root   string
	logger *logger.Logger
}

// NewStaticFileHandler creates a handler rooted at the given directory
func NewStaticFileHandler(root string, log *logger.Logger) *StaticFileHandler {
	return &StaticFileHandler{
		root:   root,
		logger: log.Named("static"),
	}
}

func (h *StaticFileHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path, status := h.resolve(r.URL.Path)
	if status != http.StatusOK {
		switch status {
		case http.StatusNotFound:
			respondError(w, http.StatusNotFound, "File not found")
		case http.StatusForbidden:
			http.Error(w, "Forbidden", http.StatusForbidden)
		default:
			http.Error(w, "Internal Server Error", status)
		}
		return
	}

	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("Expires", "0")

	h.logger.Debug("Serving asset", logger.String("path", path))
	http.ServeFile(w, r, path)
}

// resolve maps a request path to a file under the asset root. Requests
// that would escape the root are refused, and directories fall back to
// their index.html.
func (h *StaticFileHandler) resolve(urlPath string) (string, int) {
	rel := strings.TrimPrefix(filepath.Clean(urlPath), "/")
	if rel == "" || rel == "." {
		rel = "index.html"
	}
	full := filepath.Join(h.root, rel)

	absRoot, err := filepath.Abs(h.root)
	if err != nil {
		h.logger.Error("Failed to resolve asset root", logger.Error(err))
		return "", http.StatusInternalServerError
	}
	absFull, err := filepath.Abs(full)
	if err != nil {
		h.logger.Error("Failed to resolve asset path", logger.Error(err))
		return "", http.StatusInternalServerError
	}
	if absFull != absRoot && !strings.HasPrefix(absFull, absRoot+string(filepath.Separator)) {
		h.logger.Warn("Refused path outside asset root", logger.String("path", urlPath))
		return "", http.StatusForbidden
	}

	info, err := os.Stat(full)
	if os.IsNotExist(err) {
		return "", http.StatusNotFound
	}
	if err != nil {
		h.logger.Error("Failed to stat asset", logger.Error(err), logger.String("path", full))
		return "", http.StatusInternalServerError
	}

	if info.IsDir() {
		index := filepath.Join(full, "index.html")
		if _, err := os.Stat(index); err != nil {
			return "", http.StatusForbidden
		}
		full = index
	}

	return full, http.StatusOK
}
