package raster

import (
	"image"
	"math/bits"

	"github.com/mmeyer/hotpot/internal/codec"
	"github.com/mmeyer/hotpot/internal/geo"
)

// Raster is a W*W byte intensity grid for a single rendered tile.
type Raster struct {
	width      uint32
	tileExtent uint32
	scale      uint32
	pixels     []uint8
}

// NewRaster allocates a width*width intensity buffer. width must be a
// power of two and <= tileExtent; sourceZoom/targetZoom determine the
// downscale shift applied to stored coordinates.
func NewRaster(width, tileExtent uint32, sourceZoom, targetZoom uint8) *Raster {
	if width > tileExtent {
		panic("raster: width must not exceed tile extent")
	}
	if bits.OnesCount32(width) != 1 {
		panic("raster: width must be a power of two")
	}
	widthSteps := log2(tileExtent) - log2(width)
	zoomSteps := uint32(sourceZoom) - uint32(targetZoom)
	return &Raster{
		width:      width,
		tileExtent: tileExtent,
		scale:      zoomSteps + widthSteps,
		pixels:     make([]uint8, width*width),
	}
}

func log2(v uint32) uint32 {
	return uint32(bits.Len32(v) - 1)
}

// AddActivity stamps one decoded, tile-local polyline (from a source tile
// at offset (sourceX,sourceY) within the query bounds) into the raster.
func (r *Raster) AddActivity(sourceOffsetX, sourceOffsetY uint32, coords []codec.Coord) {
	ox := r.tileExtent * sourceOffsetX
	oy := r.tileExtent * sourceOffsetY

	translated := make([][2]int64, len(coords))
	for i, c := range coords {
		x := int64(c.X) + int64(ox)
		// undo the storage-time Y-flip, then add the tile's y offset.
		y := int64(r.tileExtent-c.Y) + int64(oy)
		translated[i] = [2]int64{x >> r.scale, y >> r.scale}
	}

	bbox := geo.BBox{Left: 0, Bottom: 0, Right: float64(r.width - 1), Top: float64(r.width - 1)}
	for i := 0; i+1 < len(translated); i++ {
		p0 := translated[i]
		p1 := translated[i+1]
		if p0[0] == p1[0] && p0[1] == p1[1] {
			continue
		}
		cp0, cp1, ok := bbox.ClipLine(
			geo.Point{X: float64(p0[0]), Y: float64(p0[1])},
			geo.Point{X: float64(p1[0]), Y: float64(p1[1])},
		)
		if !ok {
			continue
		}
		r.bresenham(int(cp0.X), int(cp0.Y), int(cp1.X), int(cp1.Y))
	}
}

// bresenham draws a 4-connected line, incrementing each visited pixel with
// a saturating add (max 255).
func (r *Raster) bresenham(x0, y0, x1, y1 int) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 >= x1 {
		sx = -1
	}
	if y0 >= y1 {
		sy = -1
	}
	err := dx + dy

	for {
		r.increment(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
			if e2 <= dx {
				// diagonal step: visit the intermediate pixel so the line
				// stays 4-connected.
				r.increment(x0, y0)
			}
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func (r *Raster) increment(x, y int) {
	if x < 0 || y < 0 || x >= int(r.width) || y >= int(r.width) {
		return
	}
	idx := y*int(r.width) + x
	if r.pixels[idx] < 255 {
		r.pixels[idx]++
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Touched reports whether any pixel was stamped.
func (r *Raster) Touched() bool {
	for _, p := range r.pixels {
		if p > 0 {
			return true
		}
	}
	return false
}

// ApplyGradient maps the intensity buffer through the palette into an RGBA
// image.
func (r *Raster) ApplyGradient(g Gradient) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, int(r.width), int(r.width)))
	for y := 0; y < int(r.width); y++ {
		for x := 0; x < int(r.width); x++ {
			intensity := r.pixels[y*int(r.width)+x]
			c := g[intensity]
			img.Set(x, y, c)
		}
	}
	return img
}
