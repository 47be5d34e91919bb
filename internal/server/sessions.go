package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gorilla/sessions"
	"github.com/jonboulle/clockwork"
	"github.com/nfrund/guestmap/internal/config"
	"github.com/spf13/afero"
)

const (
	// sessionMaxAge is both the cookie lifetime and how long an idle session
	// file is kept on disk.
	sessionMaxAge = 24 * time.Hour
	// sessionSweepInterval is how often expired session files are removed.
	sessionSweepInterval = time.Hour
	sessionFilePrefix    = "session_"
)

func sessionDir(cfg config.Provider) string {
	if dir := cfg.GetSessionDir(); dir != "" {
		return dir
	}
	return filepath.Join(os.TempDir(), "guestmap-sessions")
}

func newSessionStore(cfg config.Provider, dir string) (*sessions.FilesystemStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create session directory: %w", err)
	}

	store := sessions.NewFilesystemStore(dir, []byte(cfg.GetSessionSecret()))
	// Widget drafts can exceed the default 4KB limit; only the ID goes in the cookie.
	store.MaxLength(0)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(sessionMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   cfg.GetAppEnv() == "production",
		SameSite: http.SameSiteLaxMode,
	}
	return store, nil
}

// sessionSweeper removes session files that have not been written for longer
// than maxAge. FilesystemStore rewrites the file on every save, so the
// modification time is the session's last activity.
type sessionSweeper struct {
	fs     afero.Fs
	dir    string
	maxAge time.Duration
	clock  clockwork.Clock
	logger *slog.Logger
}

func newSessionSweeper(fs afero.Fs, dir string, maxAge time.Duration, clock clockwork.Clock, logger *slog.Logger) *sessionSweeper {
	return &sessionSweeper{fs: fs, dir: dir, maxAge: maxAge, clock: clock, logger: logger}
}

// Sweep deletes expired session files and returns how many were removed.
// Files that do not carry the session prefix are left alone.
func (s *sessionSweeper) Sweep() (int, error) {
	entries, err := afero.ReadDir(s.fs, s.dir)
	if err != nil {
		return 0, fmt.Errorf("read session directory: %w", err)
	}

	cutoff := s.clock.Now().Add(-s.maxAge)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), sessionFilePrefix) {
			continue
		}
		if !entry.ModTime().Before(cutoff) {
			continue
		}
		if err := s.fs.Remove(filepath.Join(s.dir, entry.Name())); err != nil && !os.IsNotExist(err) {
			s.logger.Warn("Failed to remove expired session", "file", entry.Name(), "error", err)
			continue
		}
		removed++
	}
	return removed, nil
}

// Run sweeps once immediately and then on every interval until ctx is done.
func (s *sessionSweeper) Run(ctx context.Context, interval time.Duration) {
	ticker := s.clock.NewTicker(interval)
	defer ticker.Stop()

	for {
		if n, err := s.Sweep(); err != nil {
			s.logger.Warn("Session sweep failed", "error", err)
		} else if n > 0 {
			s.logger.Info("Removed expired sessions", "count", n)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
		}
	}
}
