// Package assets serves the widget's static files from the embedded bundle,
// optionally overlaid by a directory on disk for development.
package assets

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/spf13/afero"
)

// ErrInvalidPath is returned for paths that escape the asset root.
var ErrInvalidPath = errors.New("invalid asset path")

// Store is a read-only view of the static assets.
type Store struct {
	fs      afero.Fs
	started int64
	rev     atomic.Int64
	logger  *slog.Logger
}

// New creates a Store reading base, with files in overlay taking precedence.
// overlay may be nil.
func New(base, overlay afero.Fs, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	ro := afero.NewReadOnlyFs(base)
	fsys := ro
	if overlay != nil {
		fsys = afero.NewCopyOnWriteFs(ro, overlay)
	}
	return &Store{
		fs:      fsys,
		started: time.Now().Unix(),
		logger:  logger.With("component", "assets"),
	}
}

// NewEmbedded creates a Store over an io/fs tree such as web.FS, rooted at
// dir, overlaid by overlayDir on disk when it is not empty.
func NewEmbedded(embedded fs.FS, dir, overlayDir string, logger *slog.Logger) (*Store, error) {
	sub, err := fs.Sub(embedded, dir)
	if err != nil {
		return nil, fmt.Errorf("open embedded assets: %w", err)
	}
	var overlay afero.Fs
	if overlayDir != "" {
		overlay = afero.NewBasePathFs(afero.NewOsFs(), overlayDir)
	}
	return New(afero.FromIOFS{FS: sub}, overlay, logger), nil
}

// Open opens the asset at name, which is a slash-separated path relative to
// the asset root.
func (s *Store) Open(name string) (afero.File, fs.FileInfo, error) {
	clean, err := cleanPath(name)
	if err != nil {
		return nil, nil, err
	}
	f, err := s.fs.Open(clean)
	if err != nil {
		return nil, nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	if info.IsDir() {
		f.Close()
		return nil, nil, fs.ErrNotExist
	}
	return f, info, nil
}

// Version identifies the current asset generation. It changes whenever the
// watcher sees an overlay file change.
func (s *Store) Version() string {
	return strconv.FormatInt(s.started, 36) + "." + strconv.FormatInt(s.rev.Load(), 10)
}

// Bump advances the asset version.
func (s *Store) Bump() {
	s.rev.Add(1)
}

func cleanPath(name string) (string, error) {
	name = strings.TrimPrefix(name, "/")
	if name == "" || strings.Contains(name, "\\") {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, name)
	}
	clean := path.Clean(name)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, name)
	}
	return clean, nil
}
