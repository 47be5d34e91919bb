package server_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/nfrund/guestmap/internal/app"
	"github.com/nfrund/guestmap/internal/assets"
	"github.com/nfrund/guestmap/internal/config"
	"github.com/nfrund/guestmap/internal/handlers"
	"github.com/nfrund/guestmap/internal/server"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupIntegrationTest wires the full application against fake upstream
// services and returns a running test server.
func setupIntegrationTest(t *testing.T, messagesAPI http.HandlerFunc) *httptest.Server {
	t.Helper()

	upstream := httptest.NewServer(messagesAPI)
	t.Cleanup(upstream.Close)

	ipapi := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"latitude":40.71,"longitude":-74.0}`))
	}))
	t.Cleanup(ipapi.Close)

	cfg := &config.Config{
		AppEnv:              "development",
		SessionSecret:       "integration-secret-0123456789abcdef",
		SessionDir:          t.TempDir(),
		MessagesAPIURL:      upstream.URL,
		MessagesAPILocalURL: "http://localhost:1/unused",
		IPAPIURL:            ipapi.URL,
		HTTPTimeout:         2 * time.Second,
		IPCacheSize:         8,
		SentDelay:           4 * time.Second,
		ServiceName:         "guestmap-test",
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "app.js", []byte("console.log('guestmap')"), 0o644))

	ctx := context.Background()
	core, err := app.NewCore(ctx, cfg, logger, nil, app.Options{Assets: assets.New(fs, nil, logger)})
	require.NoError(t, err)
	t.Cleanup(func() { _ = core.Close(ctx) })

	s, err := server.New(server.Dependencies{
		Config:   cfg,
		Logger:   logger,
		Injector: core.Injector,
		Registry: core.Registry,
		Renderer: core.Renderer,
		Assets:   core.Assets,
	})
	require.NoError(t, err)
	require.NoError(t, s.InitModules(ctx, app.NewModules()))
	t.Cleanup(func() { _ = s.Shutdown(ctx) })

	srv := httptest.NewServer(s.E)
	t.Cleanup(srv.Close)
	return srv
}

func get(t *testing.T, client *http.Client, url string, header http.Header) (*http.Response, string) {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	require.NoError(t, err)
	for k, v := range header {
		req.Header[k] = v
	}
	res, err := client.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return res, string(body)
}

func TestServer_Integration(t *testing.T) {
	srv := setupIntegrationTest(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"_id":"a","name":"Ada","message":"Hello","latitude":51.5,"longitude":-0.12},
			{"_id":"b","name":"Bo","message":"Hi","latitude":51.5,"longitude":-0.12}
		]`))
	})

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := &http.Client{Jar: jar}

	t.Run("health", func(t *testing.T) {
		res, body := get(t, client, srv.URL+"/health", nil)
		assert.Equal(t, http.StatusOK, res.StatusCode)
		assert.Equal(t, "OK", body)
	})

	t.Run("static assets", func(t *testing.T) {
		res, body := get(t, client, srv.URL+"/static/app.js", nil)
		assert.Equal(t, http.StatusOK, res.StatusCode)
		assert.Contains(t, body, "guestmap")
	})

	var instance string
	t.Run("page", func(t *testing.T) {
		res, body := get(t, client, srv.URL+"/", nil)
		require.Equal(t, http.StatusOK, res.StatusCode)
		assert.NotEmpty(t, res.Header.Get("X-Request-Id"))

		match := regexp.MustCompile(`data-instance="([^"]+)"`).FindStringSubmatch(body)
		require.Len(t, match, 2)
		instance = match[1]
	})

	t.Run("groups through the message API", func(t *testing.T) {
		res, body := get(t, client, srv.URL+"/widget/groups", http.Header{"X-Guestmap-Instance": {instance}})
		require.Equal(t, http.StatusOK, res.StatusCode)

		var resp handlers.GroupsResponse
		require.NoError(t, json.Unmarshal([]byte(body), &resp))
		require.Len(t, resp.Groups, 1)
		assert.Equal(t, 2, resp.Groups[0].Count)
	})

	t.Run("metrics", func(t *testing.T) {
		res, body := get(t, client, srv.URL+"/metrics", nil)
		assert.Equal(t, http.StatusOK, res.StatusCode)
		assert.Contains(t, body, `guestmap_upstream_requests_total{operation="list",outcome="success",service="messages"} 1`)
		assert.Contains(t, body, "guestmap_http_requests_total")
	})
}

func TestServer_UpstreamDown(t *testing.T) {
	srv := setupIntegrationTest(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	})

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := &http.Client{Jar: jar}

	_, body := get(t, client, srv.URL+"/", nil)
	instance := regexp.MustCompile(`data-instance="([^"]+)"`).FindStringSubmatch(body)[1]

	res, _ := get(t, client, srv.URL+"/widget/groups", http.Header{"X-Guestmap-Instance": {instance}})
	assert.Equal(t, http.StatusBadGateway, res.StatusCode)
}
