package web

import (
	"compress/gzip"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v5"

	"github.com/mmeyer/hotpot/internal/activity"
	"github.com/mmeyer/hotpot/internal/codec"
	"github.com/mmeyer/hotpot/internal/filter"
	"github.com/mmeyer/hotpot/internal/geo"
	"github.com/mmeyer/hotpot/internal/herr"
	"github.com/mmeyer/hotpot/internal/raster"
	"github.com/mmeyer/hotpot/internal/simplify"
	"github.com/mmeyer/hotpot/internal/store"
	"github.com/mmeyer/hotpot/internal/strava"
)

const defaultTileWidth = 1024

const dateLayout = "2006-01-02"

// parseQueryCommon reads the before/after/filter/gradient query params
// shared by /tile and /render.
func parseQueryCommon(c echo.Context) (*store.ActivityFilter, raster.Gradient, error) {
	af := &store.ActivityFilter{}

	if before := c.QueryParam("before"); before != "" {
		t, err := time.Parse(dateLayout, before)
		if err != nil {
			return nil, raster.Gradient{}, herr.Wrap(herr.BadInput, err, "parse before")
		}
		af.Before = &t
	}
	if after := c.QueryParam("after"); after != "" {
		t, err := time.Parse(dateLayout, after)
		if err != nil {
			return nil, raster.Gradient{}, herr.Wrap(herr.BadInput, err, "parse after")
		}
		af.After = &t
	}
	if expr := c.QueryParam("filter"); expr != "" {
		f, err := filter.Parse(expr)
		if err != nil {
			return nil, raster.Gradient{}, herr.Wrap(herr.BadInput, err, "parse filter")
		}
		af.Prop = f
	}

	gradient := raster.Pinkish
	if g := c.QueryParam("gradient"); g != "" {
		parsed, err := raster.ParseGradient(g)
		if err != nil {
			return nil, raster.Gradient{}, herr.Wrap(herr.BadInput, err, "parse gradient")
		}
		gradient = parsed
	}
	return af, gradient, nil
}

// handleTile serves GET /tile/{z}/{x}/{y}.
func (h *handlers) handleTile(c echo.Context) error {
	z, err := strconv.ParseUint(c.PathParam("z"), 10, 8)
	if err != nil {
		return writeErr(c, herr.Wrap(herr.BadInput, err, "parse z"))
	}
	x, err := strconv.ParseUint(c.PathParam("x"), 10, 32)
	if err != nil {
		return writeErr(c, herr.Wrap(herr.BadInput, err, "parse x"))
	}
	y, err := strconv.ParseUint(c.PathParam("y"), 10, 32)
	if err != nil {
		return writeErr(c, herr.Wrap(herr.BadInput, err, "parse y"))
	}

	width := uint64(defaultTileWidth)
	if w := c.QueryParam("width"); w != "" {
		width, err = strconv.ParseUint(w, 10, 32)
		if err != nil {
			return writeErr(c, herr.Wrap(herr.BadInput, err, "parse width"))
		}
	}

	af, gradient, err := parseQueryCommon(c)
	if err != nil {
		return writeErr(c, err)
	}

	masks, err := h.cfg.Store.LoadMasks()
	if err != nil {
		return writeErr(c, err)
	}

	target := geo.Tile{X: uint32(x), Y: uint32(y), Z: uint8(z)}
	img, err := raster.RenderTile(target, gradient, uint32(width), h.cfg.AppConfig, af, h.cfg.Store, masks)
	if err != nil {
		return writeErr(c, err)
	}
	return writePNG(c, img)
}

// handleRender serves POST /render.
func (h *handlers) handleRender(c echo.Context) error {
	var body struct {
		Bounds  string `json:"bounds"`
		Width   uint32 `json:"width"`
		Height  uint32 `json:"height"`
		Before  string `json:"before"`
		After   string `json:"after"`
		Filter  string `json:"filter"`
		Gradient string `json:"gradient"`
	}
	if err := c.Bind(&body); err != nil {
		return writeErr(c, herr.Wrap(herr.BadInput, err, "decode render request"))
	}
	if body.Bounds == "" {
		return writeErr(c, herr.New(herr.BadInput, "bounds is required"))
	}
	if body.Width == 0 {
		body.Width = defaultTileWidth
	}
	if body.Height == 0 {
		body.Height = defaultTileWidth
	}

	viewport, err := geo.ParseViewport(body.Bounds)
	if err != nil {
		return writeErr(c, herr.Wrap(herr.BadInput, err, "parse bounds"))
	}

	af := &store.ActivityFilter{}
	if body.Before != "" {
		t, err := time.Parse(dateLayout, body.Before)
		if err != nil {
			return writeErr(c, herr.Wrap(herr.BadInput, err, "parse before"))
		}
		af.Before = &t
	}
	if body.After != "" {
		t, err := time.Parse(dateLayout, body.After)
		if err != nil {
			return writeErr(c, herr.Wrap(herr.BadInput, err, "parse after"))
		}
		af.After = &t
	}
	if body.Filter != "" {
		f, err := filter.Parse(body.Filter)
		if err != nil {
			return writeErr(c, herr.Wrap(herr.BadInput, err, "parse filter"))
		}
		af.Prop = f
	}
	gradient := raster.Pinkish
	if body.Gradient != "" {
		parsed, err := raster.ParseGradient(body.Gradient)
		if err != nil {
			return writeErr(c, herr.Wrap(herr.BadInput, err, "parse gradient"))
		}
		gradient = parsed
	}

	masks, err := h.cfg.Store.LoadMasks()
	if err != nil {
		return writeErr(c, err)
	}

	img, err := raster.RenderView(viewport, gradient, body.Width, body.Height, h.cfg.AppConfig, af, h.cfg.Store, masks)
	if err != nil {
		return writeErr(c, err)
	}
	return writePNG(c, img)
}

// handleUpload serves POST /upload: a bearer-token-gated multipart file
// import, for pushing a single track without shell access to the host.
func (h *handlers) handleUpload(c echo.Context) error {
	if h.cfg.UploadToken == "" {
		return writeErr(c, herr.New(herr.AuthFailure, "upload disabled: no token configured"))
	}
	authz := c.Request().Header.Get(echo.HeaderAuthorization)
	if authz != "Bearer "+h.cfg.UploadToken {
		return writeErr(c, herr.New(herr.AuthFailure, "invalid or missing bearer token"))
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return writeErr(c, herr.Wrap(herr.BadInput, err, "read uploaded file"))
	}
	format, gzipped, ok := detectUploadFormat(fh.Filename)
	if !ok {
		return writeErr(c, herr.Newf(herr.BadInput, "unsupported file extension: %s", fh.Filename))
	}
	parser, ok := h.cfg.Parsers[format]
	if !ok {
		return writeErr(c, herr.New(herr.Internal, "no parser registered for format"))
	}

	f, err := fh.Open()
	if err != nil {
		return writeErr(c, herr.Wrap(herr.IO, err, "open uploaded file"))
	}
	defer f.Close()

	var r io.Reader = f
	if gzipped {
		gz, err := gzipReader(f)
		if err != nil {
			return writeErr(c, herr.Wrap(herr.BadInput, err, "ungzip uploaded file"))
		}
		defer gz.Close()
		r = gz
	}

	raw, err := parser(r)
	if err != nil {
		return writeErr(c, herr.Wrap(herr.BadInput, err, "parse uploaded track"))
	}
	if raw == nil || raw.Empty() {
		return c.JSON(http.StatusOK, map[string]string{"status": "skipped", "reason": "no track data"})
	}

	for _, line := range raw.Tracks {
		stats := activity.ComputeStats(line)
		if raw.Properties == nil {
			raw.Properties = map[string]any{}
		}
		stats.MergeInto(raw.Properties)
	}

	tiles := raw.ClipToTiles(h.cfg.AppConfig)
	storeTiles := make([]store.TileRow, 0, len(tiles))
	for _, t := range tiles {
		storeTiles = append(storeTiles, store.TileRow{Tile: t.Tile, Coords: widenCoords(t.Line)})
	}

	key := "upload:" + fh.Filename
	err = h.cfg.Store.Upsert(store.UpsertInput{
		Key:        key,
		Title:      raw.Title,
		HasTitle:   raw.HasTitle,
		StartTime:  raw.StartTime,
		HasStart:   raw.HasStart,
		Properties: raw.Properties,
		Tiles:      storeTiles,
	})
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "imported", "key": key})
}

// handleWebhookChallenge serves GET /strava/webhook, Strava's subscription
// validation handshake.
func (h *handlers) handleWebhookChallenge(c echo.Context) error {
	mode := c.QueryParam("hub.mode")
	token := c.QueryParam("hub.verify_token")
	challenge := c.QueryParam("hub.challenge")
	if !strava.VerifyChallenge(mode, token, h.cfg.StravaEnv.WebhookSecret) {
		return writeErr(c, herr.New(herr.AuthFailure, "webhook verification failed"))
	}
	return c.JSON(http.StatusOK, map[string]string{"hub.challenge": challenge})
}

// handleWebhookEvent serves POST /strava/webhook: on an activity create or
// update event, fetches and upserts the activity.
func (h *handlers) handleWebhookEvent(c echo.Context) error {
	var event strava.WebhookEvent
	if err := json.NewDecoder(c.Request().Body).Decode(&event); err != nil {
		return writeErr(c, herr.Wrap(herr.BadInput, err, "decode webhook event"))
	}
	if !event.IsActivityEvent() || event.AspectType == "delete" {
		return c.NoContent(http.StatusOK)
	}

	ctx := c.Request().Context()
	act, err := h.cfg.StravaClient.GetActivity(ctx, event.OwnerID, event.ObjectID)
	if err != nil {
		return writeErr(c, err)
	}
	raw := strava.ToRawActivity(act)

	for _, line := range raw.Tracks {
		stats := activity.ComputeStats(line)
		if raw.Properties == nil {
			raw.Properties = map[string]any{}
		}
		stats.MergeInto(raw.Properties)
	}

	tiles := raw.ClipToTiles(h.cfg.AppConfig)
	storeTiles := make([]store.TileRow, 0, len(tiles))
	for _, t := range tiles {
		storeTiles = append(storeTiles, store.TileRow{Tile: t.Tile, Coords: widenCoords(t.Line)})
	}

	err = h.cfg.Store.Upsert(store.UpsertInput{
		Key:        strava.ActivityKey(event.ObjectID),
		Title:      raw.Title,
		HasTitle:   raw.HasTitle,
		StartTime:  raw.StartTime,
		HasStart:   raw.HasStart,
		Properties: raw.Properties,
		Tiles:      storeTiles,
	})
	if err != nil {
		return writeErr(c, err)
	}
	return c.NoContent(http.StatusOK)
}

// handleStravaAuthStart redirects the browser to Strava's OAuth consent
// screen.
func (h *handlers) handleStravaAuthStart(c echo.Context) error {
	return c.Redirect(http.StatusFound, strava.AuthCodeURL(h.cfg.StravaEnv, c.Scheme()+"://"+c.Request().Host+"/strava/auth/callback"))
}

// handleStravaAuthCallback completes the OAuth exchange after the user
// approves access.
func (h *handlers) handleStravaAuthCallback(c echo.Context) error {
	code := c.QueryParam("code")
	if code == "" {
		return writeErr(c, herr.New(herr.BadInput, "missing code"))
	}
	if err := h.cfg.StravaClient.ExchangeCode(c.Request().Context(), code); err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "linked"})
}

// widenCoords upgrades a simplified line's u16 tile-local coordinates to
// the u32 codec.Coord the store's TileRow expects.
func widenCoords(line []simplify.Coord) []codec.Coord {
	out := make([]codec.Coord, len(line))
	for i, c := range line {
		out[i] = codec.Coord{X: uint32(c.X), Y: uint32(c.Y)}
	}
	return out
}

func gzipReader(r io.Reader) (*gzip.Reader, error) {
	return gzip.NewReader(r)
}

func detectUploadFormat(filename string) (activity.Format, bool, bool) {
	lower := strings.ToLower(filename)
	gzipped := strings.HasSuffix(lower, ".gz")
	if gzipped {
		lower = strings.TrimSuffix(lower, ".gz")
	}
	switch {
	case strings.HasSuffix(lower, ".gpx"):
		return activity.FormatGPX, gzipped, true
	case strings.HasSuffix(lower, ".fit"):
		return activity.FormatFIT, gzipped, true
	case strings.HasSuffix(lower, ".tcx"):
		return activity.FormatTCX, gzipped, true
	default:
		return 0, false, false
	}
}
