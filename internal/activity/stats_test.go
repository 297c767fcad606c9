package activity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mmeyer/hotpot/internal/geo"
)

func elev(v float64) *float64 { return &v }
func at(t time.Time) *time.Time { return &t }

func TestDistanceTeleportFilter(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	// A, B ~100m apart; C ~100km from B.
	points := []TrackPoint{
		{LngLat: geo.LngLat{Lng: 13.0, Lat: 52.0}, Time: at(base)},
		{LngLat: geo.LngLat{Lng: 13.0015, Lat: 52.0}, Time: at(base.Add(30 * time.Second))},
		{LngLat: geo.LngLat{Lng: 14.5, Lat: 52.0}, Time: at(base.Add(60 * time.Second))},
	}
	s := ComputeStats(points)
	assert.True(t, s.HasTotalDistance)
	assert.InDelta(t, 100, s.TotalDistance, 20)
}

func TestElevationGainLossHysteresis(t *testing.T) {
	points := []TrackPoint{
		{Elevation: elev(100)},
		{Elevation: elev(100.5)}, // below threshold, no change
		{Elevation: elev(103)},   // +3 from ref 100 -> gain 3, new ref 103
		{Elevation: elev(100)},   // -3 from ref 103 -> loss 3
	}
	s := ComputeStats(points)
	assert.True(t, s.HasElevationGainLoss)
	assert.InDelta(t, 3.0, s.ElevationGain, 1e-9)
	assert.InDelta(t, 3.0, s.ElevationLoss, 1e-9)
}

func TestMergeIntoRespectsPrecedence(t *testing.T) {
	s := Stats{TotalDistance: 42, HasTotalDistance: true}
	props := map[string]any{"total_distance": "user-provided"}
	s.MergeInto(props)
	assert.Equal(t, "user-provided", props["total_distance"])
}

func TestMovingTimeExcludesLongGapsAndTeleports(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	points := []TrackPoint{
		{LngLat: geo.LngLat{Lng: 13.0, Lat: 52.0}, Time: at(base)},
		{LngLat: geo.LngLat{Lng: 13.001, Lat: 52.0}, Time: at(base.Add(10 * time.Second))},
		{LngLat: geo.LngLat{Lng: 13.002, Lat: 52.0}, Time: at(base.Add(200 * time.Second))}, // gap > 60s
		{LngLat: geo.LngLat{Lng: 14.5, Lat: 52.0}, Time: at(base.Add(210 * time.Second))},   // ~100km teleport
	}
	s := ComputeStats(points)
	assert.True(t, s.HasMovingTime)
	assert.InDelta(t, 10, s.MovingTime, 1e-9)
}
