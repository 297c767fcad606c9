package activity

import (
	"math"
	"time"

	"github.com/mmeyer/hotpot/internal/geo"
)

const (
	maxSegmentDistanceMeters = 5000.0
	maxTimeGapSeconds        = 60.0
	elevationThresholdMeters = 2.0
	earthRadiusMeters        = 6_371_000.0
)

// Stats holds derived track statistics, merged into an activity's
// properties without overwriting keys already present.
type Stats struct {
	TotalDistance        float64
	HasTotalDistance      bool
	ElapsedTime           float64
	HasElapsedTime        bool
	MovingTime            float64
	HasMovingTime         bool
	ElevationGain         float64
	ElevationLoss         float64
	HasElevationGainLoss  bool
	MinElevation          float64
	MaxElevation          float64
	HasElevationRange     bool
	AverageSpeedKmh       float64
	HasAverageSpeed       bool
	MaxSpeedKmh           float64
	HasMaxSpeed           bool
}

// ComputeStats derives every statistic §4.9 defines from an ordered list of
// track points.
func ComputeStats(points []TrackPoint) Stats {
	var s Stats

	dist, hasDist := computeDistance(points)
	s.TotalDistance, s.HasTotalDistance = dist, hasDist

	elapsed, hasElapsed := computeElapsedTime(points)
	s.ElapsedTime, s.HasElapsedTime = elapsed, hasElapsed

	moving, hasMoving := computeMovingTime(points)
	s.MovingTime, s.HasMovingTime = moving, hasMoving

	gain, loss, hasGL := computeElevationGainLoss(points)
	s.ElevationGain, s.ElevationLoss, s.HasElevationGainLoss = gain, loss, hasGL

	minE, maxE, hasRange := computeElevationRange(points)
	s.MinElevation, s.MaxElevation, s.HasElevationRange = minE, maxE, hasRange

	maxSpeed, hasMaxSpeed := computeMaxSpeed(points)
	s.MaxSpeedKmh, s.HasMaxSpeed = maxSpeed, hasMaxSpeed

	if hasDist && hasMoving && moving > 0 {
		s.AverageSpeedKmh = dist / moving * 3.6
		s.HasAverageSpeed = true
	}

	return s
}

func computeDistance(points []TrackPoint) (float64, bool) {
	if len(points) < 2 {
		return 0, false
	}
	total := 0.0
	any := false
	for i := 0; i+1 < len(points); i++ {
		d := haversine(points[i].LngLat, points[i+1].LngLat)
		if d > maxSegmentDistanceMeters {
			continue
		}
		total += d
		any = true
	}
	return total, any
}

func computeElapsedTime(points []TrackPoint) (float64, bool) {
	if len(points) < 2 {
		return 0, false
	}
	first, last := findFirstLastTime(points)
	if first == nil || last == nil {
		return 0, false
	}
	elapsed := last.Sub(*first).Seconds()
	if elapsed <= 0 {
		return 0, false
	}
	return elapsed, true
}

func findFirstLastTime(points []TrackPoint) (first, last *time.Time) {
	for i := range points {
		if points[i].Time != nil {
			first = points[i].Time
			break
		}
	}
	for i := len(points) - 1; i >= 0; i-- {
		if points[i].Time != nil {
			last = points[i].Time
			break
		}
	}
	return first, last
}

func computeMovingTime(points []TrackPoint) (float64, bool) {
	total := 0.0
	any := false
	for i := 0; i+1 < len(points); i++ {
		a, b := points[i], points[i+1]
		if a.Time == nil || b.Time == nil {
			continue
		}
		gap := b.Time.Sub(*a.Time).Seconds()
		if gap <= 0 || gap > maxTimeGapSeconds {
			continue
		}
		dist := haversine(a.LngLat, b.LngLat)
		if dist > maxSegmentDistanceMeters {
			continue
		}
		total += gap
		any = true
	}
	return total, any
}

func computeMaxSpeed(points []TrackPoint) (float64, bool) {
	max := 0.0
	any := false
	for i := 0; i+1 < len(points); i++ {
		a, b := points[i], points[i+1]
		if a.Time == nil || b.Time == nil {
			continue
		}
		gap := b.Time.Sub(*a.Time).Seconds()
		if gap <= 0 || gap > maxTimeGapSeconds {
			continue
		}
		dist := haversine(a.LngLat, b.LngLat)
		if dist > maxSegmentDistanceMeters {
			continue
		}
		speed := dist / gap * 3.6
		if speed > max {
			max = speed
		}
		any = true
	}
	return max, any
}

// computeElevationGainLoss is a single-pass accumulation with a 2m
// hysteresis: the reference elevation updates only once the current sample
// deviates from it by at least the threshold.
func computeElevationGainLoss(points []TrackPoint) (gain, loss float64, ok bool) {
	var ref *float64
	for _, p := range points {
		if p.Elevation == nil {
			continue
		}
		if ref == nil {
			v := *p.Elevation
			ref = &v
			continue
		}
		diff := *p.Elevation - *ref
		if math.Abs(diff) >= elevationThresholdMeters {
			if diff > 0 {
				gain += diff
			} else {
				loss += -diff
			}
			v := *p.Elevation
			ref = &v
			ok = true
		}
	}
	return gain, loss, ok
}

func computeElevationRange(points []TrackPoint) (min, max float64, ok bool) {
	for _, p := range points {
		if p.Elevation == nil {
			continue
		}
		if !ok {
			min, max = *p.Elevation, *p.Elevation
			ok = true
			continue
		}
		if *p.Elevation < min {
			min = *p.Elevation
		}
		if *p.Elevation > max {
			max = *p.Elevation
		}
	}
	return min, max, ok
}

// haversine computes great-circle distance in meters between two LngLat
// points.
func haversine(a, b geo.LngLat) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return earthRadiusMeters * c
}

// MergeInto writes every computed statistic into props, skipping any key
// that is already present (property precedence: imported/explicit metadata
// always wins over derived stats).
func (s Stats) MergeInto(props map[string]any) {
	setIfAbsent(props, "total_distance", s.HasTotalDistance, s.TotalDistance)
	setIfAbsent(props, "elapsed_time", s.HasElapsedTime, s.ElapsedTime)
	setIfAbsent(props, "moving_time", s.HasMovingTime, s.MovingTime)
	setIfAbsent(props, "elevation_gain", s.HasElevationGainLoss, s.ElevationGain)
	setIfAbsent(props, "elevation_loss", s.HasElevationGainLoss, s.ElevationLoss)
	setIfAbsent(props, "min_elevation", s.HasElevationRange, s.MinElevation)
	setIfAbsent(props, "max_elevation", s.HasElevationRange, s.MaxElevation)
	setIfAbsent(props, "average_speed", s.HasAverageSpeed, s.AverageSpeedKmh)
	setIfAbsent(props, "max_speed", s.HasMaxSpeed, s.MaxSpeedKmh)
}

func setIfAbsent(props map[string]any, key string, has bool, val float64) {
	if !has {
		return
	}
	if _, present := props[key]; present {
		return
	}
	props[key] = val
}
