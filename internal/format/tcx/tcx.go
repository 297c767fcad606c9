// Package tcx hand-rolls a TCX (Training Center XML) parser via
// encoding/xml, matching the teacher's own precedent of hand-rolling GPX
// parsing rather than reaching for a dedicated TCX library (none exists in
// the retrieval pack).
package tcx

import (
	"bufio"
	"encoding/xml"
	"io"
	"time"

	"github.com/mmeyer/hotpot/internal/activity"
	"github.com/mmeyer/hotpot/internal/geo"
	"github.com/mmeyer/hotpot/internal/herr"
)

type tcxDocument struct {
	XMLName  xml.Name `xml:"TrainingCenterDatabase"`
	Activities struct {
		Activity []tcxActivity `xml:"Activity"`
	} `xml:"Activities"`
}

type tcxActivity struct {
	Sport string    `xml:"Sport,attr"`
	ID    string    `xml:"Id"`
	Laps  []tcxLap  `xml:"Lap"`
}

type tcxLap struct {
	Tracks []tcxTrack `xml:"Track"`
}

type tcxTrack struct {
	Trackpoints []tcxTrackpoint `xml:"Trackpoint"`
}

type tcxTrackpoint struct {
	Time     string `xml:"Time"`
	Position *struct {
		LatitudeDegrees  float64 `xml:"LatitudeDegrees"`
		LongitudeDegrees float64 `xml:"LongitudeDegrees"`
	} `xml:"Position"`
	AltitudeMeters *float64 `xml:"AltitudeMeters"`
}

// Parse reads a TCX document, tolerating leading ASCII spaces before
// the XML declaration, and concatenates every lap/track/trackpoint into a
// single RawActivity line string, skipping any trackpoint without a
// position.
func Parse(r io.Reader) (*activity.RawActivity, error) {
	br := bufio.NewReader(r)
	if err := skipLeadingSpace(br); err != nil {
		return nil, herr.Wrap(herr.IO, err, "skip leading whitespace")
	}

	var doc tcxDocument
	if err := xml.NewDecoder(br).Decode(&doc); err != nil {
		return nil, herr.Wrap(herr.Corruption, err, "parse tcx")
	}
	if len(doc.Activities.Activity) == 0 {
		return nil, nil
	}

	act := doc.Activities.Activity[0]
	ra := &activity.RawActivity{
		Properties: map[string]any{},
	}
	if act.Sport != "" {
		ra.Properties["activity_type"] = act.Sport
	}

	var line activity.LineString
	for _, lap := range act.Laps {
		for _, track := range lap.Tracks {
			for _, tp := range track.Trackpoints {
				if tp.Position == nil {
					continue
				}
				point := activity.TrackPoint{
					LngLat: geo.LngLat{Lng: tp.Position.LongitudeDegrees, Lat: tp.Position.LatitudeDegrees},
				}
				if tp.AltitudeMeters != nil {
					e := *tp.AltitudeMeters
					point.Elevation = &e
				}
				if tp.Time != "" {
					if ts, err := time.Parse(time.RFC3339, tp.Time); err == nil {
						point.Time = &ts
						if !ra.HasStart {
							ra.StartTime = ts
							ra.HasStart = true
						}
					}
				}
				line = append(line, point)
			}
		}
	}
	if len(line) == 0 {
		return nil, nil
	}
	ra.Tracks = []activity.LineString{line}
	return ra, nil
}

// skipLeadingSpace consumes leading ASCII spaces some TCX exports prepend
// before the XML declaration, without disturbing the decoder's position.
func skipLeadingSpace(br *bufio.Reader) error {
	for {
		b, err := br.Peek(1)
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		if b[0] != ' ' {
			return nil
		}
		if _, err := br.Discard(1); err != nil {
			return err
		}
	}
}
