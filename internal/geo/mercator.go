// Package geo implements spherical web-mercator projection and tile math.
//
// Canonical over the two near-duplicate variants found during porting: this
// follows the f64-precision module with an inverted Y axis in tile-pixel
// space (the other variant used f32 and a different Y convention).
package geo

import (
	"fmt"
	"math"
)

const (
	earthRadiusMeters = 6_378_137.0
	earthCircumference = 2 * math.Pi * earthRadiusMeters
	originOffset       = earthCircumference / 2
)

// LatBounds is the valid latitude range for web mercator projection.
var LatBounds = [2]float64{-89.99999, 90.0}

// LngLat is a WGS84 coordinate pair in degrees.
type LngLat struct {
	Lng, Lat float64
}

// Valid reports whether the point is finite and within projectable bounds.
func (p LngLat) Valid() bool {
	if math.IsNaN(p.Lng) || math.IsNaN(p.Lat) || math.IsInf(p.Lng, 0) || math.IsInf(p.Lat, 0) {
		return false
	}
	if p.Lng <= -180 || p.Lng > 180 {
		return false
	}
	if p.Lat < LatBounds[0] || p.Lat >= LatBounds[1] {
		return false
	}
	return true
}

// WebMercator is a projected point in meters, origin at the map center.
type WebMercator struct {
	X, Y float64
}

// XY projects a LngLat into web mercator meters.
func (p LngLat) XY() (WebMercator, error) {
	if !p.Valid() {
		return WebMercator{}, fmt.Errorf("lnglat out of bounds: %+v", p)
	}
	lngRad := p.Lng * math.Pi / 180
	latRad := p.Lat * math.Pi / 180

	x := lngRad * earthRadiusMeters
	y := math.Log(math.Tan(math.Pi/4+latRad/2)) * earthRadiusMeters
	return WebMercator{X: x, Y: y}, nil
}

// Tile computes the tile index containing this point at the given zoom.
func (m WebMercator) Tile(z uint8) Tile {
	scale := math.Exp2(float64(z)) / earthCircumference
	x := int64(math.Floor(scale * (m.X + originOffset)))
	y := int64(math.Floor(scale * (originOffset - m.Y)))

	max := int64(1) << z
	if x < 0 {
		x = 0
	} else if x >= max {
		x = max - 1
	}
	if y < 0 {
		y = 0
	} else if y >= max {
		y = max - 1
	}
	return Tile{X: uint32(x), Y: uint32(y), Z: z}
}

// ToTilePixel maps a mercator point into tile-local pixel coordinates for
// the given tile bbox, with Y inverted so the axis grows upward in the
// stored representation.
func (m WebMercator) ToTilePixel(bbox BBox, extent float64) (float64, float64) {
	sx := (m.X - bbox.Left) / (bbox.Right - bbox.Left) * extent
	sy := (m.Y - bbox.Bottom) / (bbox.Top - bbox.Bottom) * extent
	return sx, extent - sy
}

// ToMercatorPixel projects directly into continuous pixel space spanning
// 2^z tiles of width tileSize, used by viewport math.
func (m WebMercator) ToMercatorPixel(z uint8, tileSize float64) (float64, float64) {
	scale := math.Exp2(float64(z)) * tileSize / earthCircumference
	px := scale * (m.X + originOffset)
	py := scale * (originOffset - m.Y)
	return px, py
}

// Tile is an integer-indexed square in the web-mercator pyramid.
type Tile struct {
	X, Y uint32
	Z    uint8
}

func (t Tile) String() string {
	return fmt.Sprintf("%d/%d/%d", t.Z, t.X, t.Y)
}

// XYBounds returns the inclusive mercator bbox covered by this tile.
func (t Tile) XYBounds() BBox {
	scale := earthCircumference / math.Exp2(float64(t.Z))
	left := float64(t.X)*scale - originOffset
	right := float64(t.X+1)*scale - originOffset
	top := originOffset - float64(t.Y)*scale
	bottom := originOffset - float64(t.Y+1)*scale
	return BBox{Left: left, Bottom: bottom, Right: right, Top: top}
}

// TileBounds is an axis-aligned range of tiles at a single zoom.
type TileBounds struct {
	XMin, YMin, XMax, YMax uint32
	Z                      uint8
}

// TileBoundsFromParent computes the child-tile range at sourceZoom that
// covers the given tile (sourceZoom must be >= tile.Z).
func TileBoundsFromParent(sourceZoom uint8, t Tile) (TileBounds, error) {
	if sourceZoom < t.Z {
		return TileBounds{}, fmt.Errorf("source zoom %d below target zoom %d", sourceZoom, t.Z)
	}
	steps := sourceZoom - t.Z
	xmin := t.X << steps
	ymin := t.Y << steps
	span := uint32(1) << steps
	return TileBounds{
		XMin: xmin, YMin: ymin,
		XMax: xmin + span, YMax: ymin + span,
		Z: sourceZoom,
	}, nil
}

// WebMercatorViewport is a bounding box given as lng/lat corners, as parsed
// from a "west,south,east,north" query string.
type WebMercatorViewport struct {
	SW, NE LngLat
}

// ParseViewport parses "west,south,east,north" into a viewport, validating
// that southwest precedes northeast.
func ParseViewport(s string) (WebMercatorViewport, error) {
	var w, s2, e, n float64
	if _, err := fmt.Sscanf(s, "%g,%g,%g,%g", &w, &s2, &e, &n); err != nil {
		return WebMercatorViewport{}, fmt.Errorf("invalid bounds %q: %w", s, err)
	}
	sw := LngLat{Lng: w, Lat: s2}
	ne := LngLat{Lng: e, Lat: n}
	if sw.Lng >= ne.Lng || sw.Lat >= ne.Lat {
		return WebMercatorViewport{}, fmt.Errorf("bounds %q: southwest must precede northeast", s)
	}
	return WebMercatorViewport{SW: sw, NE: ne}, nil
}

// TileBoundsFromViewport picks a zoom within [minZoom,maxZoom] that best
// fits the requested output size, then returns the covering tile range.
func TileBoundsFromViewport(v WebMercatorViewport, outW, outH float64, minZoom, maxZoom uint8) (TileBounds, uint8, error) {
	swM, err := v.SW.XY()
	if err != nil {
		return TileBounds{}, 0, err
	}
	neM, err := v.NE.XY()
	if err != nil {
		return TileBounds{}, 0, err
	}

	const tileSize = 256.0
	swPx, swPy := swM.ToMercatorPixel(maxZoom, tileSize)
	nePx, nePy := neM.ToMercatorPixel(maxZoom, tileSize)

	scale := math.Max((nePx-swPx)/outW, (swPy-nePy)/outH)
	zoom := float64(maxZoom) - math.Log2(math.Max(scale, 1e-9))
	z := int(math.Round(zoom))
	if z < int(minZoom) {
		z = int(minZoom)
	}
	if z > int(maxZoom) {
		z = int(maxZoom)
	}

	swTile := swM.Tile(uint8(z))
	neTile := neM.Tile(uint8(z))
	xmin, xmax := swTile.X, neTile.X
	if xmin > xmax {
		xmin, xmax = xmax, xmin
	}
	ymin, ymax := neTile.Y, swTile.Y
	if ymin > ymax {
		ymin, ymax = ymax, ymin
	}
	return TileBounds{XMin: xmin, YMin: ymin, XMax: xmax + 1, YMax: ymax + 1, Z: uint8(z)}, uint8(z), nil
}
