package server

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
)

// mountStatic serves the compiled frontend. Unknown non-API paths fall back to
// index.html so client side routes such as /projects/:id/board survive a reload.
func (s *Server) mountStatic() {
	root, indexPath := s.staticRoot()

	s.engine.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.JSON(http.StatusNotFound, gin.H{"error": "endpoint not found"})
			return
		}
		if root == "" || (c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead) {
			c.Status(http.StatusNotFound)
			return
		}

		name := filepath.Join(root, filepath.FromSlash(path.Clean("/"+c.Request.URL.Path)))
		if fi, err := os.Stat(name); err == nil && !fi.IsDir() {
			c.File(name)
			return
		}
		c.File(indexPath)
	})
}

// staticRoot returns the frontend directory and its index.html, or empty
// strings when there is nothing to serve.
func (s *Server) staticRoot() (string, string) {
	if s.opts.StaticDir == "" {
		s.logger.Warn("static directory not configured; API only mode")
		return "", ""
	}

	info, err := os.Stat(s.opts.StaticDir)
	if err != nil || !info.IsDir() {
		s.logger.Warn("static directory missing", "path", s.opts.StaticDir, "error", err)
		return "", ""
	}

	indexPath := filepath.Join(s.opts.StaticDir, "index.html")
	if _, err := os.Stat(indexPath); err != nil {
		s.logger.Warn("index.html not found", "path", indexPath, "error", err)
		return "", ""
	}
	return s.opts.StaticDir, indexPath
}
