package assets

import (
	"errors"
	"io/fs"
	"net/http"
	"os"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/guestmap/internal/middleware"
)

// FileHandler serves assets over HTTP.
type FileHandler struct {
	store *Store
}

// NewFileHandler creates a new FileHandler.
func NewFileHandler(s *Store) *FileHandler {
	return &FileHandler{store: s}
}

// Serve handles GET /static/*.
func (h *FileHandler) Serve(c echo.Context) error {
	name := c.Param("*")
	f, info, err := h.store.Open(name)
	if err != nil {
		if errors.Is(err, ErrInvalidPath) || errors.Is(err, fs.ErrNotExist) || errors.Is(err, os.ErrNotExist) {
			return echo.NewHTTPError(http.StatusNotFound, "Not Found")
		}
		middleware.FromContext(c.Request().Context()).Error("Failed to open asset", "path", name, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to read asset").SetInternal(err)
	}
	defer f.Close()

	if c.QueryParam("v") != "" {
		c.Response().Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	} else {
		c.Response().Header().Set("Cache-Control", "no-cache")
	}
	http.ServeContent(c.Response(), c.Request(), info.Name(), info.ModTime(), f)
	return nil
}
