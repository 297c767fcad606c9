package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeLiteral(t *testing.T) {
	coords := []Coord{{X: 0, Y: 0}, {X: 1, Y: 2}, {X: 65535, Y: 65535}}
	b, err := Encode(coords)
	require.NoError(t, err)
	assert.Equal(t, []byte{
		0x00, 0x00, 0x00, 0x00,
		0x01, 0x00, 0x02, 0x00,
		0xFF, 0xFF, 0xFF, 0xFF,
	}, b)
}

func TestRoundTrip(t *testing.T) {
	coords := []Coord{{X: 0, Y: 0}, {X: 1000, Y: 2000}, {X: 65535, Y: 1}}
	b, err := Encode(coords)
	require.NoError(t, err)
	decoded, err := Decode(b)
	require.NoError(t, err)
	assert.Equal(t, coords, decoded)
}

func TestDecodeEmpty(t *testing.T) {
	decoded, err := Decode(nil)
	require.NoError(t, err)
	assert.Empty(t, decoded)
}

func TestDecodeOddLengthFails(t *testing.T) {
	_, err := Decode([]byte{0, 0, 0})
	assert.Error(t, err)
}

func TestEncodeRejectsOutOfRange(t *testing.T) {
	_, err := Encode([]Coord{{X: 70000, Y: 0}})
	assert.Error(t, err)
}
