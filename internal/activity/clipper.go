package activity

import (
	"github.com/mmeyer/hotpot/internal/geo"
	"github.com/mmeyer/hotpot/internal/simplify"
)

// tileClipper owns one zoom level's walk: a "current tile" hint plus every
// tile's accumulated (possibly multiple) polylines.
type tileClipper struct {
	zoom       uint8
	tileExtent uint32
	current    *clipState
	tiles      map[geo.Tile][][]simplify.Coord
}

type clipState struct {
	tile geo.Tile
	bbox geo.BBox
	poly []simplify.Coord
}

func newTileClipper(zoom uint8, tileExtent uint32) *tileClipper {
	return &tileClipper{zoom: zoom, tileExtent: tileExtent, tiles: make(map[geo.Tile][][]simplify.Coord)}
}

func (c *tileClipper) setCurrent(t geo.Tile) {
	c.current = &clipState{tile: t, bbox: t.XYBounds()}
}

func (c *tileClipper) finishCurrent() {
	if c.current == nil {
		return
	}
	if len(c.current.poly) > 0 {
		c.tiles[c.current.tile] = append(c.tiles[c.current.tile], c.current.poly)
	}
	c.current = nil
}

func (c *tileClipper) toPixel(p geo.Point, bbox geo.BBox) simplify.Coord {
	m := geo.WebMercator{X: p.X, Y: p.Y}
	px, py := m.ToTilePixel(bbox, float64(c.tileExtent))
	return simplify.Coord{X: clampU16(px, c.tileExtent), Y: clampU16(py, c.tileExtent)}
}

func clampU16(v float64, extent uint32) uint16 {
	if v < 0 {
		return 0
	}
	if v > float64(extent) {
		return uint16(extent)
	}
	return uint16(v)
}

// addSegment walks (a,b) through however many tiles it crosses, per §4.2:
// clip against the current tile, append clipped points, and if the clip
// truncated the segment short of b, finish the polyline, step to tile(b),
// and continue with the post-clip end as the new start.
func (c *tileClipper) addSegment(a, b geo.WebMercator) {
	for {
		if c.current == nil {
			c.setCurrent(a.Tile(c.zoom))
		}

		p0 := geo.Point{X: a.X, Y: a.Y}
		p1 := geo.Point{X: b.X, Y: b.Y}
		cp0, cp1, ok := c.current.bbox.ClipLine(p0, p1)
		if !ok {
			c.finishCurrent()
			c.setCurrent(a.Tile(c.zoom))
			continue
		}

		if len(c.current.poly) == 0 {
			c.current.poly = append(c.current.poly, c.toPixel(cp0, c.current.bbox))
		}
		c.current.poly = append(c.current.poly, c.toPixel(cp1, c.current.bbox))

		if cp1.X == p1.X && cp1.Y == p1.Y {
			return
		}

		c.finishCurrent()
		c.setCurrent(b.Tile(c.zoom))
		a = geo.WebMercator{X: cp1.X, Y: cp1.Y}
	}
}

// finish finalizes any open polyline at end of input line or end of
// activity.
func (c *tileClipper) finish() {
	c.finishCurrent()
}

// simplifiedPolylines returns, per tile, every polyline simplified at
// epsilon=4.0 tile-pixels with fewer-than-2-point results dropped.
const simplifyEpsilon = 4.0

func (c *tileClipper) simplifiedPolylines() map[geo.Tile][][]simplify.Coord {
	out := make(map[geo.Tile][][]simplify.Coord, len(c.tiles))
	for t, polys := range c.tiles {
		for _, p := range polys {
			simplified := simplify.Line(p, simplifyEpsilon)
			if len(simplified) < 2 {
				continue
			}
			out[t] = append(out[t], simplified)
		}
	}
	return out
}

// MultiZoomClipper clips one RawActivity line string set across every
// configured zoom level at once.
type MultiZoomClipper struct {
	tileExtent uint32
	clippers   map[uint8]*tileClipper
}

// NewMultiZoomClipper builds one tileClipper per configured zoom.
func NewMultiZoomClipper(zoomLevels []uint8, tileExtent uint32) *MultiZoomClipper {
	m := &MultiZoomClipper{tileExtent: tileExtent, clippers: make(map[uint8]*tileClipper, len(zoomLevels))}
	for _, z := range zoomLevels {
		m.clippers[z] = newTileClipper(z, tileExtent)
	}
	return m
}

// AddSegment feeds one retained (a,b) mercator pair to every zoom's clipper.
func (m *MultiZoomClipper) AddSegment(a, b geo.WebMercator) {
	for _, c := range m.clippers {
		c.addSegment(a, b)
	}
}

// FinishLine finalizes every zoom's open polyline at the end of one input
// line string.
func (m *MultiZoomClipper) FinishLine() {
	for _, c := range m.clippers {
		c.finish()
	}
}

// ClippedTile is one flattened (tile, simplified polyline) pair.
type ClippedTile struct {
	Tile geo.Tile
	Line []simplify.Coord
}

// Flatten returns every zoom's simplified, tile-bucketed polylines as a flat
// stream ready for encoding and storage.
func (m *MultiZoomClipper) Flatten() []ClippedTile {
	var out []ClippedTile
	for _, c := range m.clippers {
		for t, polys := range c.simplifiedPolylines() {
			for _, p := range polys {
				out = append(out, ClippedTile{Tile: t, Line: p})
			}
		}
	}
	return out
}
