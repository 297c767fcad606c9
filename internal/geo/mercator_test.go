package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBerlinTile(t *testing.T) {
	p := LngLat{Lng: 13.3643882, Lat: 52.528125}
	m, err := p.XY()
	require.NoError(t, err)

	tile := m.Tile(10)
	assert.Equal(t, uint8(10), tile.Z)
	// Within rounding of the Mercantile-derived reference tile.
	assert.InDelta(t, 549, int(tile.X), 1)
	assert.InDelta(t, 335, int(tile.Y), 1)

	bounds := tile.XYBounds()
	assert.True(t, m.X >= bounds.Left && m.X <= bounds.Right)
	assert.True(t, m.Y >= bounds.Bottom && m.Y <= bounds.Top)
}

func TestTileIndexInBounds(t *testing.T) {
	pts := []LngLat{
		{Lng: 0, Lat: 0},
		{Lng: -179.9, Lat: -89.9},
		{Lng: 179.9, Lat: 89.9},
		{Lng: 45, Lat: 45},
	}
	for _, p := range pts {
		m, err := p.XY()
		require.NoError(t, err)
		for z := uint8(0); z <= 16; z++ {
			tile := m.Tile(z)
			max := uint32(1) << z
			assert.Less(t, tile.X, max)
			assert.Less(t, tile.Y, max)
		}
	}
}

func TestLngLatOutOfBoundsRejected(t *testing.T) {
	_, err := LngLat{Lng: 0, Lat: 90}.XY()
	assert.Error(t, err)
	_, err = LngLat{Lng: 181, Lat: 0}.XY()
	assert.Error(t, err)
}

func TestTileBoundsFromParent(t *testing.T) {
	parent := Tile{X: 2, Y: 3, Z: 2}
	bounds, err := TileBoundsFromParent(4, parent)
	require.NoError(t, err)
	assert.Equal(t, uint32(8), bounds.XMin)
	assert.Equal(t, uint32(12), bounds.YMin)
	assert.Equal(t, uint32(12), bounds.XMax)
	assert.Equal(t, uint32(16), bounds.YMax)
}

func TestTileBoundsFromParentRejectsLowerSourceZoom(t *testing.T) {
	_, err := TileBoundsFromParent(1, Tile{X: 0, Y: 0, Z: 4})
	assert.Error(t, err)
}

func TestParseViewport(t *testing.T) {
	v, err := ParseViewport("13.0,52.4,13.6,52.6")
	require.NoError(t, err)
	assert.Equal(t, 13.0, v.SW.Lng)
	assert.Equal(t, 52.6, v.NE.Lat)

	_, err = ParseViewport("13.6,52.6,13.0,52.4")
	assert.Error(t, err, "southwest must precede northeast")
}
