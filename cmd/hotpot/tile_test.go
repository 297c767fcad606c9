package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmeyer/hotpot/internal/geo"
	"github.com/mmeyer/hotpot/internal/raster"
)

func TestParseZXY(t *testing.T) {
	tile, err := parseZXY("10/3/4")
	require.NoError(t, err)
	assert.Equal(t, geo.Tile{X: 3, Y: 4, Z: 10}, tile)

	_, err = parseZXY("10/3")
	assert.Error(t, err)

	_, err = parseZXY("z/3/4")
	assert.Error(t, err)
}

func TestParseFilterFlagsDefaults(t *testing.T) {
	af, gradient, err := parseFilterFlags("", "", "", "")
	require.NoError(t, err)
	assert.Nil(t, af.Before)
	assert.Nil(t, af.After)
	assert.Nil(t, af.Prop)
	assert.Equal(t, raster.Pinkish, gradient)
}

func TestParseFilterFlagsRejectsBadDate(t *testing.T) {
	_, _, err := parseFilterFlags("not-a-date", "", "", "")
	assert.Error(t, err)
}
