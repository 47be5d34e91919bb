package server

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/nfrund/guestmap/internal/config"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sweepFixture struct {
	fs      afero.Fs
	clock   *clockwork.FakeClock
	sweeper *sessionSweeper
}

const sweepDir = "/sessions"

func newSweepFixture(t *testing.T) sweepFixture {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll(sweepDir, 0o700))
	clock := clockwork.NewFakeClockAt(time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC))
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return sweepFixture{
		fs:      fs,
		clock:   clock,
		sweeper: newSessionSweeper(fs, sweepDir, sessionMaxAge, clock, logger),
	}
}

func (f sweepFixture) write(t *testing.T, name string, age time.Duration) {
	t.Helper()
	path := filepath.Join(sweepDir, name)
	require.NoError(t, afero.WriteFile(f.fs, path, []byte("state"), 0o600))
	mod := f.clock.Now().Add(-age)
	require.NoError(t, f.fs.Chtimes(path, mod, mod))
}

func (f sweepFixture) exists(t *testing.T, name string) bool {
	t.Helper()
	ok, err := afero.Exists(f.fs, filepath.Join(sweepDir, name))
	require.NoError(t, err)
	return ok
}

func TestSessionSweeper_RemovesOnlyExpiredSessionFiles(t *testing.T) {
	f := newSweepFixture(t)
	f.write(t, "session_OLD", sessionMaxAge+time.Minute)
	f.write(t, "session_FRESH", time.Hour)
	f.write(t, "notes.txt", 30*24*time.Hour)

	removed, err := f.sweeper.Sweep()
	require.NoError(t, err)

	assert.Equal(t, 1, removed)
	assert.False(t, f.exists(t, "session_OLD"))
	assert.True(t, f.exists(t, "session_FRESH"))
	assert.True(t, f.exists(t, "notes.txt"), "files without the session prefix are not ours")
}

func TestSessionSweeper_MissingDirectory(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s := newSessionSweeper(afero.NewMemMapFs(), "/nowhere", sessionMaxAge, clockwork.NewFakeClock(), logger)

	_, err := s.Sweep()
	assert.ErrorContains(t, err, "read session directory")
}

func TestSessionSweeper_RunSweepsOnInterval(t *testing.T) {
	f := newSweepFixture(t)
	f.write(t, "session_A", time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		f.sweeper.Run(ctx, sessionSweepInterval)
		close(done)
	}()

	// The first sweep runs immediately and keeps the hour-old session.
	waitCtx, waitCancel := context.WithTimeout(context.Background(), time.Second)
	defer waitCancel()
	require.NoError(t, f.clock.BlockUntilContext(waitCtx, 1))
	assert.True(t, f.exists(t, "session_A"))

	// A day later the session has expired and the next tick removes it.
	f.clock.Advance(sessionMaxAge)
	assert.Eventually(t, func() bool {
		ok, err := afero.Exists(f.fs, filepath.Join(sweepDir, "session_A"))
		return err == nil && !ok
	}, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop after cancellation")
	}
}

func TestNewSessionStore_CreatesDirectoryWithMaxAge(t *testing.T) {
	cfg := &config.Config{AppEnv: "production", SessionSecret: "sweeper-secret-0123456789abcdef"}
	store, err := newSessionStore(cfg, filepath.Join(t.TempDir(), "nested"))
	require.NoError(t, err)
	assert.Equal(t, int(sessionMaxAge.Seconds()), store.Options.MaxAge)
	assert.True(t, store.Options.Secure)
}
