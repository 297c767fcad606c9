// Package fit parses FIT activity files via github.com/tormoder/fit, the
// standard Go FIT SDK decoder (not present in the retrieval pack; named
// explicitly as an out-of-pack dependency since no FIT library appears
// anywhere in the corpus).
package fit

import (
	"io"

	tormoderfit "github.com/tormoder/fit"

	"github.com/mmeyer/hotpot/internal/activity"
	"github.com/mmeyer/hotpot/internal/geo"
	"github.com/mmeyer/hotpot/internal/herr"
)

// semicircleScale converts FIT's int32 semicircle unit to degrees:
// scale factor is 2^32 / 360.
const semicircleScale = 4294967296.0 / 360.0

// Parse reads a FIT file and returns its activity as a RawActivity, or
// (nil, nil) if it is a virtual/trainer session (sub_sport in the virtual
// set) or has no usable records.
func Parse(r io.Reader) (*activity.RawActivity, error) {
	f, err := tormoderfit.Decode(r)
	if err != nil {
		return nil, herr.Wrap(herr.Corruption, err, "decode fit")
	}

	act, err := f.Activity()
	if err != nil {
		return nil, herr.Wrap(herr.Corruption, err, "fit file has no activity message")
	}

	ra := &activity.RawActivity{Properties: map[string]any{}}

	for _, session := range act.Sessions {
		subSport := session.SubSport.String()
		if activity.FITVirtualSports[subSport] {
			return nil, nil
		}
		ra.Properties["sub_sport"] = subSport
		ra.Properties["sport"] = session.Sport.String()
	}

	if act.FileId.Type.String() != "" {
		ra.Properties["file_type"] = act.FileId.Type.String()
	}

	var line activity.LineString
	for _, rec := range act.Records {
		if rec.PositionLat.Invalid() || rec.PositionLong.Invalid() {
			continue
		}
		lat := float64(rec.PositionLat.Semicircles()) / semicircleScale
		lng := float64(rec.PositionLong.Semicircles()) / semicircleScale
		tp := activity.TrackPoint{LngLat: geo.LngLat{Lng: lng, Lat: lat}}

		if !rec.EnhancedAltitudeInvalid() {
			e := rec.EnhancedAltitudeScaled()
			tp.Elevation = &e
		} else if !rec.AltitudeInvalid() {
			e := rec.AltitudeScaled()
			tp.Elevation = &e
		}

		if !rec.Timestamp.IsZero() {
			ts := rec.Timestamp
			tp.Time = &ts
			if !ra.HasStart {
				ra.StartTime = ts
				ra.HasStart = true
			}
		}
		line = append(line, tp)
	}
	if len(line) == 0 {
		return nil, nil
	}
	ra.Tracks = []activity.LineString{line}
	return ra, nil
}
