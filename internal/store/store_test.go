package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmeyer/hotpot/internal/codec"
	"github.com/mmeyer/hotpot/internal/config"
	"github.com/mmeyer/hotpot/internal/filter"
	"github.com/mmeyer/hotpot/internal/geo"
)

func newTestDB(t *testing.T) *Database {
	t.Helper()
	db, err := Memory()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestConfigRoundTrip(t *testing.T) {
	db := newTestDB(t)
	cfg := config.Config{ZoomLevels: []uint8{1, 5, 9}, TileExtent: 1024, TrimDist: 50}
	require.NoError(t, db.SaveConfig(cfg))

	loaded, err := db.LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, cfg.ZoomLevels, loaded.ZoomLevels)
	assert.Equal(t, cfg.TileExtent, loaded.TileExtent)
	assert.Equal(t, cfg.TrimDist, loaded.TrimDist)
}

func TestConfigDefaultsWhenUnset(t *testing.T) {
	db := newTestDB(t)
	loaded, err := db.LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, config.DefaultZoomLevels, loaded.ZoomLevels)
	assert.Equal(t, uint32(config.DefaultTileExtent), loaded.TileExtent)
}

func TestUpsertReplacesTilesAtomically(t *testing.T) {
	db := newTestDB(t)

	in := UpsertInput{
		Key:        "track1.gpx",
		Properties: map[string]any{"sport": "run"},
		Tiles: []TileRow{
			{Tile: geo.Tile{X: 1, Y: 1, Z: 10}, Coords: []codec.Coord{{X: 0, Y: 0}, {X: 1, Y: 1}}},
		},
	}
	require.NoError(t, db.Upsert(in))

	bounds := geo.TileBounds{XMin: 0, YMin: 0, XMax: 2, YMax: 2, Z: 10}
	results, err := db.QueryTiles(bounds, &ActivityFilter{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, []codec.Coord{{X: 0, Y: 0}, {X: 1, Y: 1}}, results[0].Coords)

	// Re-import with a different tile set: old tiles must be gone.
	in.Tiles = []TileRow{
		{Tile: geo.Tile{X: 1, Y: 1, Z: 10}, Coords: []codec.Coord{{X: 5, Y: 5}}},
	}
	require.NoError(t, db.Upsert(in))

	results, err = db.QueryTiles(bounds, &ActivityFilter{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, []codec.Coord{{X: 5, Y: 5}}, results[0].Coords)
}

func TestHasActivityDedup(t *testing.T) {
	db := newTestDB(t)
	ok, err := db.HasActivity("missing.gpx")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, db.Upsert(UpsertInput{Key: "present.gpx"}))
	ok, err = db.HasActivity("present.gpx")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestQueryTilesAppliesPropertyFilter(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Upsert(UpsertInput{
		Key:        "run.gpx",
		Properties: map[string]any{"sport": "run"},
		Tiles:      []TileRow{{Tile: geo.Tile{X: 0, Y: 0, Z: 5}, Coords: []codec.Coord{{X: 1, Y: 1}}}},
	}))
	require.NoError(t, db.Upsert(UpsertInput{
		Key:        "ride.gpx",
		Properties: map[string]any{"sport": "ride"},
		Tiles:      []TileRow{{Tile: geo.Tile{X: 0, Y: 0, Z: 5}, Coords: []codec.Coord{{X: 2, Y: 2}}}},
	}))

	f, err := filter.Parse(`sport = "run"`)
	require.NoError(t, err)

	bounds := geo.TileBounds{XMin: 0, YMin: 0, XMax: 1, YMax: 1, Z: 5}
	results, err := db.QueryTiles(bounds, &ActivityFilter{Prop: f})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, []codec.Coord{{X: 1, Y: 1}}, results[0].Coords)
}

func TestMaskRoundTrip(t *testing.T) {
	db := newTestDB(t)
	m := geo.Mask{ID: "home", Center: geo.LngLat{Lng: 13.4, Lat: 52.5}, RadiusMeters: 500}
	require.NoError(t, db.SaveMask(m))

	loaded, err := db.LoadMasks()
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "home", loaded[0].ID)
}

func TestStravaTokenRoundTrip(t *testing.T) {
	db := newTestDB(t)
	tok := StravaToken{
		AthleteID:    42,
		AccessToken:  "access",
		RefreshToken: "refresh",
		ExpiresAt:    time.Now().Add(time.Hour).Truncate(time.Second).UTC(),
	}
	require.NoError(t, db.SaveStravaToken(tok))

	loaded, err := db.LoadStravaToken(42)
	require.NoError(t, err)
	assert.Equal(t, tok.AccessToken, loaded.AccessToken)
	assert.Equal(t, tok.ExpiresAt, loaded.ExpiresAt)
}
