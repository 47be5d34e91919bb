package app

import (
	"io/fs"
	"log/slog"

	"github.com/nfrund/guestmap/internal/assets"
)

// AssetSource opens the static asset store.
type AssetSource interface {
	Open(overlayDir string, logger *slog.Logger) (*assets.Store, error)
}

// EmbeddedAssets opens the "static" directory of an embedded tree such as web.FS.
type EmbeddedAssets struct {
	FS fs.FS
}

// Open implements AssetSource.
func (e EmbeddedAssets) Open(overlayDir string, logger *slog.Logger) (*assets.Store, error) {
	return assets.NewEmbedded(e.FS, "static", overlayDir, logger)
}
