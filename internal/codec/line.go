// Package codec implements the little-endian u16-pair binary polyline
// format used to persist tile-local coordinates in activity_tiles.coords.
package codec

import (
	"encoding/binary"
	"fmt"
)

// Coord is a decoded coordinate, widened to u32 so the raster engine can add
// tile offsets without overflow.
type Coord struct {
	X, Y uint32
}

// Encode serializes a polyline of u16-range coordinates as the little-endian
// concatenation of its (x,y) pairs. Returns an error if any coordinate
// exceeds the u16 range, rather than silently truncating it.
func Encode(coords []Coord) ([]byte, error) {
	buf := make([]byte, 0, len(coords)*4)
	for _, c := range coords {
		if c.X > 0xFFFF || c.Y > 0xFFFF {
			return nil, fmt.Errorf("coordinate (%d,%d) exceeds u16 range", c.X, c.Y)
		}
		var tmp [4]byte
		binary.LittleEndian.PutUint16(tmp[0:2], uint16(c.X))
		binary.LittleEndian.PutUint16(tmp[2:4], uint16(c.Y))
		buf = append(buf, tmp[:]...)
	}
	return buf, nil
}

// Decode parses the little-endian u16-pair format back into coordinates.
// Returns an error if the byte length is not a multiple of 4.
func Decode(b []byte) ([]Coord, error) {
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("coords blob length %d is not a multiple of 4", len(b))
	}
	n := len(b) / 4
	out := make([]Coord, n)
	for i := 0; i < n; i++ {
		x := binary.LittleEndian.Uint16(b[i*4 : i*4+2])
		y := binary.LittleEndian.Uint16(b[i*4+2 : i*4+4])
		out[i] = Coord{X: uint32(x), Y: uint32(y)}
	}
	return out, nil
}
