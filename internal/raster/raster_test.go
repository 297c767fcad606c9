package raster

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mmeyer/hotpot/internal/codec"
)

func TestRasterStampsLine(t *testing.T) {
	r := NewRaster(256, 256, 10, 10)
	r.AddActivity(0, 0, []codec.Coord{{X: 10, Y: 10}, {X: 100, Y: 10}})
	assert.True(t, r.Touched())
}

func TestRasterSaturatesAt255(t *testing.T) {
	r := NewRaster(4, 4, 10, 10)
	for i := 0; i < 300; i++ {
		// stored y=4 (the tile's top edge) lands on row 0 after the Y-flip.
		r.AddActivity(0, 0, []codec.Coord{{X: 0, Y: 4}, {X: 3, Y: 4}})
	}
	assert.Equal(t, uint8(255), r.pixels[0])
}

func TestRasterUntouchedWithoutActivity(t *testing.T) {
	r := NewRaster(64, 64, 10, 10)
	assert.False(t, r.Touched())
}

func TestRasterDownscalesAcrossZoomSteps(t *testing.T) {
	// source zoom 12, target zoom 10: two zoom steps down, same width as
	// extent means widthSteps=0, so scale=2.
	r := NewRaster(2048, 2048, 12, 10)
	r.AddActivity(0, 0, []codec.Coord{{X: 0, Y: 2048}, {X: 2048, Y: 2048}})
	assert.True(t, r.Touched())
}
