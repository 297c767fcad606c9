package activity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmeyer/hotpot/internal/config"
	"github.com/mmeyer/hotpot/internal/geo"
)

func TestClipToTilesProducesTileBucketedLines(t *testing.T) {
	cfg := config.Config{ZoomLevels: []uint8{10}, TileExtent: 2048, TrimDist: 0}

	// Segments of well under 5000 m that cross the z10 tile boundary at
	// lng 13.359375.
	line := LineString{
		{LngLat: geo.LngLat{Lng: 13.355, Lat: 52.500}},
		{LngLat: geo.LngLat{Lng: 13.360, Lat: 52.502}},
		{LngLat: geo.LngLat{Lng: 13.365, Lat: 52.504}},
	}
	ra := &RawActivity{Tracks: []LineString{line}}

	tiles := ra.ClipToTiles(cfg)
	require.NotEmpty(t, tiles)
	for _, ct := range tiles {
		assert.Equal(t, uint8(10), ct.Tile.Z)
		assert.GreaterOrEqual(t, len(ct.Line), 2)
	}
}

func TestClipToTilesDropsShortLines(t *testing.T) {
	cfg := config.Config{ZoomLevels: []uint8{10}, TileExtent: 2048, TrimDist: 0}
	ra := &RawActivity{Tracks: []LineString{{{LngLat: geo.LngLat{Lng: 13.3, Lat: 52.5}}}}}
	tiles := ra.ClipToTiles(cfg)
	assert.Empty(t, tiles)
}

func TestClipToTilesAppliesTrim(t *testing.T) {
	cfg := config.Config{ZoomLevels: []uint8{14}, TileExtent: 2048, TrimDist: 1_000_000}
	line := LineString{
		{LngLat: geo.LngLat{Lng: 13.30, Lat: 52.50}},
		{LngLat: geo.LngLat{Lng: 13.31, Lat: 52.51}},
		{LngLat: geo.LngLat{Lng: 13.32, Lat: 52.52}},
	}
	ra := &RawActivity{Tracks: []LineString{line}}
	tiles := ra.ClipToTiles(cfg)
	assert.Empty(t, tiles, "trim distance larger than the whole track should drop it")
}
