// Package activity implements RawActivity enrichment: trimming, the tile
// clipper, track statistics, and the parallel import driver.
package activity

import (
	"time"

	"github.com/mmeyer/hotpot/internal/geo"
)

// TrackPoint is one recorded sample along a line string.
type TrackPoint struct {
	geo.LngLat
	Elevation *float64
	Time      *time.Time
}

// LineString is one contiguous recorded line (one GPX segment, one TCX
// lap, ...).
type LineString []TrackPoint

// RawActivity is the transient record a format parser produces. Lives only
// during a single import call.
type RawActivity struct {
	Title      string
	HasTitle   bool
	StartTime  time.Time
	HasStart   bool
	Tracks     []LineString
	Properties map[string]any
}

// Empty reports whether the activity has no usable track data and should be
// discarded.
func (r *RawActivity) Empty() bool {
	for _, t := range r.Tracks {
		if len(t) > 0 {
			return false
		}
	}
	return true
}

// MaxTeleportMeters is the inter-point distance beyond which a segment is
// dropped as a GPS teleport, both during clipping and track-stat
// computation.
const MaxTeleportMeters = 5000.0
