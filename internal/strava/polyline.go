package strava

// DecodePolyline decodes a Google-encoded polyline string (the format
// Strava's activity summary map uses) into lng/lat pairs. No polyline
// library appears anywhere in the retrieval pack, so this is hand-rolled
// against the standard encoding (precision-5 by default, matching Strava's
// API), grounded on the well-known reference algorithm rather than any
// pack example.
func DecodePolyline(encoded string) [][2]float64 {
	var out [][2]float64
	index, lat, lng := 0, 0, 0

	for index < len(encoded) {
		lat += decodeValue(encoded, &index)
		lng += decodeValue(encoded, &index)
		out = append(out, [2]float64{float64(lng) / 1e5, float64(lat) / 1e5})
	}
	return out
}

func decodeValue(encoded string, index *int) int {
	shift, result := uint(0), 0
	for {
		b := int(encoded[*index]) - 63
		*index++
		result |= (b & 0x1f) << shift
		shift += 5
		if b < 0x20 {
			break
		}
	}
	if result&1 != 0 {
		return ^(result >> 1)
	}
	return result >> 1
}
