package web

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmeyer/hotpot/internal/activity"
	"github.com/mmeyer/hotpot/internal/config"
	"github.com/mmeyer/hotpot/internal/store"
)

func newTestServer(t *testing.T) (*echo.Echo, *store.Database) {
	t.Helper()
	db, err := store.Memory()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	srv := NewServer(Config{
		Routes: RouteConfig{Tiles: true, Render: true, Upload: true, StravaWebhook: true},
		UploadToken: "secret-token",
		AppConfig:   config.Default(),
		Store:       db,
		Parsers:     activity.ParserSet{},
	})
	return srv, db
}

func TestHandleTileEmptyReturns204(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/tile/10/0/0", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestHandleTileInvalidZRejected(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/tile/nope/0/0", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleUploadRequiresBearerToken(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/upload", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandleWebhookChallengeRejectsWrongToken(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/strava/webhook?hub.mode=subscribe&hub.verify_token=wrong&hub.challenge=abc", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestDetectUploadFormat(t *testing.T) {
	format, gzipped, ok := detectUploadFormat("ride.gpx.gz")
	require.True(t, ok)
	assert.True(t, gzipped)
	assert.Equal(t, activity.FormatGPX, format)

	_, _, ok = detectUploadFormat("ride.unknown")
	assert.False(t, ok)
}
