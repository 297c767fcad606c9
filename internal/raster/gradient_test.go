package raster

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGradientLiteral(t *testing.T) {
	g, err := ParseGradient("1:001122;10:789;100:334455;200:ffffff33")
	require.NoError(t, err)

	assert.Equal(t, color.RGBA{}, g[0])
	assert.Equal(t, color.RGBA{R: 0x00, G: 0x11, B: 0x22, A: 0xFF}, g[1])
	assert.Equal(t, color.RGBA{R: 0x77, G: 0x88, B: 0x99, A: 0xFF}, g[10])
	assert.Equal(t, color.RGBA{R: 0x33, G: 0x44, B: 0x55, A: 0xFF}, g[100])
	assert.Equal(t, color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0x33}, g[255])
}

func TestParseGradientRejectsNonIncreasing(t *testing.T) {
	_, err := ParseGradient("10:ff0000;5:00ff00")
	assert.Error(t, err)
}

func TestParseGradientRejectsBadHex(t *testing.T) {
	_, err := ParseGradient("0:zz0000")
	assert.Error(t, err)
}
