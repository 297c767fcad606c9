// Package gpx parses GPX activity files via tkrajina/gpxgo into RawActivity
// records.
package gpx

import (
	"io"
	"strings"

	"github.com/tkrajina/gpxgo/gpx"

	"github.com/mmeyer/hotpot/internal/activity"
	"github.com/mmeyer/hotpot/internal/geo"
	"github.com/mmeyer/hotpot/internal/herr"
)

// Parse reads a GPX document and returns its first track as a RawActivity,
// or (nil, nil) if the file has no usable track or is a virtual/trainer
// activity.
func Parse(r io.Reader) (*activity.RawActivity, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, herr.Wrap(herr.IO, err, "read gpx")
	}

	g, err := gpx.ParseBytes(b)
	if err != nil {
		return nil, herr.Wrap(herr.Corruption, err, "parse gpx")
	}
	if len(g.Tracks) == 0 {
		return nil, nil
	}

	track := g.Tracks[0]
	if strings.HasPrefix(track.Type, "Virtual") {
		return nil, nil
	}

	ra := &activity.RawActivity{
		Properties: map[string]any{},
	}
	if track.Name != "" {
		ra.Title = track.Name
		ra.HasTitle = true
	} else if g.Name != "" {
		ra.Title = g.Name
		ra.HasTitle = true
	}
	if track.Type != "" {
		ra.Properties["activity_type"] = track.Type
	}

	for _, seg := range track.Segments {
		line := make(activity.LineString, 0, len(seg.Points))
		for _, pt := range seg.Points {
			tp := activity.TrackPoint{LngLat: geo.LngLat{Lng: pt.Longitude, Lat: pt.Latitude}}
			if pt.Elevation.NotNull() {
				e := pt.Elevation.Value()
				tp.Elevation = &e
			}
			if !pt.Timestamp.IsZero() {
				ts := pt.Timestamp
				tp.Time = &ts
			}
			line = append(line, tp)
		}
		ra.Tracks = append(ra.Tracks, line)

		if len(ra.Tracks) == 1 && !ra.HasStart {
			for _, pt := range seg.Points {
				if !pt.Timestamp.IsZero() {
					ra.StartTime = pt.Timestamp
					ra.HasStart = true
					break
				}
			}
		}
	}

	return ra, nil
}
