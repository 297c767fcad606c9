// Package raster composites stored activity tiles into an 8-bit intensity
// grid and maps it through a gradient palette to produce RGBA heatmap
// images.
package raster

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// Gradient is a 256-entry RGBA lookup table.
type Gradient [256]color.RGBA

type stop struct {
	threshold uint8
	color     color.RGBA
}

// ParseGradient parses the "T:RGB|RRGGBB|RRGGBBAA" stop syntax joined by
// ';'. Thresholds must be strictly increasing. Missing alpha defaults to
// 0xFF; 3-hex-digit colors duplicate each nibble.
func ParseGradient(s string) (Gradient, error) {
	parts := strings.Split(s, ";")
	stops := make([]stop, 0, len(parts))
	for _, part := range parts {
		idx := strings.Index(part, ":")
		if idx < 0 {
			return Gradient{}, fmt.Errorf("gradient stop %q: missing ':'", part)
		}
		thresholdStr, colorStr := part[:idx], part[idx+1:]
		n, err := strconv.ParseUint(strings.TrimSpace(thresholdStr), 10, 8)
		if err != nil {
			return Gradient{}, fmt.Errorf("gradient stop %q: invalid threshold: %w", part, err)
		}
		c, err := parseHexColor(strings.TrimSpace(colorStr))
		if err != nil {
			return Gradient{}, fmt.Errorf("gradient stop %q: %w", part, err)
		}
		stops = append(stops, stop{threshold: uint8(n), color: c})
	}
	if len(stops) == 0 {
		return Gradient{}, fmt.Errorf("gradient: no stops")
	}
	for i := 1; i < len(stops); i++ {
		if stops[i].threshold <= stops[i-1].threshold {
			return Gradient{}, fmt.Errorf("gradient: thresholds must be strictly increasing")
		}
	}
	return FromStops(stops), nil
}

// FromStops builds the 256-entry palette: entries before the first stop
// stay transparent black; entries between adjacent stops are linearly
// interpolated; entries past the last stop take its color.
func FromStops(stops []stop) Gradient {
	var g Gradient
	first := stops[0]
	for i := 0; i < int(first.threshold); i++ {
		g[i] = color.RGBA{}
	}
	for i := range stops[:len(stops)-1] {
		a, b := stops[i], stops[i+1]
		span := int(b.threshold) - int(a.threshold)
		for i2 := int(a.threshold); i2 <= int(b.threshold) && i2 < 256; i2++ {
			t := 0.0
			if span > 0 {
				t = float64(i2-int(a.threshold)) / float64(span)
			}
			g[i2] = lerpColor(a.color, b.color, t)
		}
	}
	last := stops[len(stops)-1]
	for i := int(last.threshold); i < 256; i++ {
		g[i] = last.color
	}
	return g
}

func lerpColor(a, b color.RGBA, t float64) color.RGBA {
	lerp := func(x, y uint8) uint8 {
		return uint8(float64(x) + t*(float64(y)-float64(x)))
	}
	return color.RGBA{R: lerp(a.R, b.R), G: lerp(a.G, b.G), B: lerp(a.B, b.B), A: lerp(a.A, b.A)}
}

func parseHexColor(s string) (color.RGBA, error) {
	s = strings.TrimPrefix(s, "#")
	switch len(s) {
	case 3:
		r, err := hexNibble(s[0])
		if err != nil {
			return color.RGBA{}, err
		}
		g, err := hexNibble(s[1])
		if err != nil {
			return color.RGBA{}, err
		}
		b, err := hexNibble(s[2])
		if err != nil {
			return color.RGBA{}, err
		}
		return color.RGBA{R: r*17, G: g*17, B: b*17, A: 0xFF}, nil
	case 6:
		n, err := strconv.ParseUint(s, 16, 32)
		if err != nil {
			return color.RGBA{}, fmt.Errorf("invalid hex color %q: %w", s, err)
		}
		return color.RGBA{R: uint8(n >> 16), G: uint8(n >> 8), B: uint8(n), A: 0xFF}, nil
	case 8:
		n, err := strconv.ParseUint(s, 16, 32)
		if err != nil {
			return color.RGBA{}, fmt.Errorf("invalid hex color %q: %w", s, err)
		}
		return color.RGBA{R: uint8(n >> 24), G: uint8(n >> 16), B: uint8(n >> 8), A: uint8(n)}, nil
	default:
		return color.RGBA{}, fmt.Errorf("invalid hex color %q: must be 3, 6, or 8 hex digits", s)
	}
}

func hexNibble(c byte) (uint8, error) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', nil
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, nil
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, nil
	default:
		return 0, fmt.Errorf("invalid hex digit %q", c)
	}
}

// Preset gradients, matching the original implementation's defaults.
var (
	Pinkish  = must(ParseGradient("1:ffc0cb19;64:ff69b4aa;128:ff1493dd;255:c71585ff"))
	BlueRed  = must(ParseGradient("1:0000ff19;128:ff00ffaa;255:ff0000ff"))
	Red      = must(ParseGradient("1:ff000019;255:ff0000ff"))
	Orange   = must(ParseGradient("1:ffa50019;128:ff8c00cc;255:ff4500ff"))
)

func must(g Gradient, err error) Gradient {
	if err != nil {
		panic(err)
	}
	return g
}
