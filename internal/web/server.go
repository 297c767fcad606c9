// Package web wires the HTTP surface (§6) on top of labstack/echo, the
// router the teacher already uses (via pocketbase's embedded router in
// backend/main.go), driven directly here instead of through a BaaS
// framework.
package web

import (
	"bytes"
	"image"
	"image/png"
	"log"
	"net/http"

	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"

	"github.com/mmeyer/hotpot/internal/activity"
	"github.com/mmeyer/hotpot/internal/config"
	"github.com/mmeyer/hotpot/internal/herr"
	"github.com/mmeyer/hotpot/internal/store"
	"github.com/mmeyer/hotpot/internal/strava"
)

// RouteConfig toggles which optional route groups are mounted, mirroring
// the CLI's --upload/--render/--strava-webhook flags.
type RouteConfig struct {
	Tiles         bool
	Render        bool
	Upload        bool
	StravaWebhook bool
	StravaAuth    bool
}

// Config bundles everything a request handler needs.
type Config struct {
	Routes       RouteConfig
	CORS         bool
	UploadToken  string
	StravaEnv    config.StravaEnv
	AppConfig    config.Config
	Store        *store.Database
	Parsers      activity.ParserSet
	StravaClient *strava.Client
}

// NewServer builds an echo instance with every enabled route group mounted.
func NewServer(cfg Config) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	if cfg.CORS {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{AllowOrigins: []string{"*"}}))
	}

	h := &handlers{cfg: cfg}

	if cfg.Routes.Tiles {
		e.GET("/tile/:z/:x/:y", h.handleTile)
	}
	if cfg.Routes.Render {
		e.POST("/render", h.handleRender)
	}
	if cfg.Routes.Upload {
		e.POST("/upload", h.handleUpload)
	}
	if cfg.Routes.StravaWebhook {
		e.GET("/strava/webhook", h.handleWebhookChallenge)
		e.POST("/strava/webhook", h.handleWebhookEvent)
	}
	if cfg.Routes.StravaAuth {
		e.GET("/strava/auth", h.handleStravaAuthStart)
		e.GET("/strava/auth/callback", h.handleStravaAuthCallback)
	}

	return e
}

type handlers struct {
	cfg Config
}

func writeErr(c echo.Context, err error) error {
	status := http.StatusInternalServerError
	switch herr.KindOf(err) {
	case herr.BadInput:
		status = http.StatusBadRequest
	case herr.AuthFailure:
		status = http.StatusUnauthorized
	case herr.Upstream:
		status = http.StatusBadGateway
	case herr.NotFound:
		status = http.StatusNotFound
	}
	if status == http.StatusInternalServerError {
		log.Printf("internal error: %v", err)
	}
	return c.JSON(status, map[string]string{"error": err.Error()})
}

// writePNG encodes img as PNG and writes it with a one-hour cache header. A
// nil img means "no data for this tile/view" and responds 204 per §6.
func writePNG(c echo.Context, img *image.RGBA) error {
	if img == nil {
		return c.NoContent(http.StatusNoContent)
	}
	var buf bytes.Buffer
	enc := &png.Encoder{CompressionLevel: png.BestSpeed}
	if err := enc.Encode(&buf, img); err != nil {
		return writeErr(c, herr.Wrap(herr.Internal, err, "encode png"))
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "max-age=3600")
	return c.Blob(http.StatusOK, "image/png", buf.Bytes())
}
