package activity

import (
	"math"

	"github.com/mmeyer/hotpot/internal/config"
	"github.com/mmeyer/hotpot/internal/geo"
)

// ClipToTiles projects, trims, teleport-filters, and clips every line
// string into tile-bucketed, simplified polylines across all configured
// zoom levels.
func (r *RawActivity) ClipToTiles(cfg config.Config) []ClippedTile {
	clipper := NewMultiZoomClipper(cfg.ZoomLevels, cfg.TileExtent)

	for _, line := range r.Tracks {
		projected := projectLine(line)
		if len(projected) < 2 {
			continue
		}

		trimmed := trim(projected, cfg.TrimDist)
		if len(trimmed) < 2 {
			continue
		}

		for i := 0; i+1 < len(trimmed); i++ {
			a, b := trimmed[i], trimmed[i+1]
			if mercatorDistance(a, b) > MaxTeleportMeters {
				continue
			}
			clipper.AddSegment(a, b)
		}
		clipper.FinishLine()
	}

	return clipper.Flatten()
}

func projectLine(line LineString) []geo.WebMercator {
	out := make([]geo.WebMercator, 0, len(line))
	for _, p := range line {
		m, err := p.XY()
		if err != nil {
			continue
		}
		out = append(out, m)
	}
	return out
}

// trim drops points within trimDist meters (euclidean, in mercator) of the
// start and end of the line. If the two trim bounds cross, the whole line
// is dropped.
func trim(points []geo.WebMercator, trimDist float64) []geo.WebMercator {
	if trimDist <= 0 {
		return points
	}
	first := points[0]
	last := points[len(points)-1]

	startIdx := 0
	for startIdx < len(points) && euclid(points[startIdx], first) < trimDist {
		startIdx++
	}
	endIdx := len(points) - 1
	for endIdx >= 0 && euclid(points[endIdx], last) < trimDist {
		endIdx--
	}
	if startIdx > endIdx {
		return nil
	}
	return points[startIdx : endIdx+1]
}

func euclid(a, b geo.WebMercator) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return math.Hypot(dx, dy)
}

// mercatorDistance is the euclidean distance in mercator meters used for the
// teleport filter during clipping. Mercator meters exceed ground meters by a
// factor of 1/cos(latitude), so away from the equator this is larger than
// the haversine distance used by track statistics.
func mercatorDistance(a, b geo.WebMercator) float64 {
	return euclid(a, b)
}
