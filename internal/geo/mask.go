package geo

// Mask is a named circular privacy region that suppresses rendering of any
// tile whose bbox intersects it. Additive to the core tile pipeline: a
// render with no masks configured behaves exactly as if this file did not
// exist.
type Mask struct {
	ID          string
	Center      LngLat
	RadiusMeters float64
}

// MaskSet is a collection of masks consulted by the raster engine before
// rasterizing a tile.
type MaskSet []Mask

// Hidden reports whether any mask in the set intersects the tile's bbox.
func (ms MaskSet) Hidden(t Tile) (bool, error) {
	if len(ms) == 0 {
		return false, nil
	}
	bbox := t.XYBounds()
	for _, m := range ms {
		center, err := m.Center.XY()
		if err != nil {
			return false, err
		}
		if bbox.IntersectsCircle(center.X, center.Y, m.RadiusMeters) {
			return true, nil
		}
	}
	return false, nil
}
