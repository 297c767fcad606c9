package simplify

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSimplifyStraightLine(t *testing.T) {
	var line []Coord
	for i := uint16(0); i <= 9; i++ {
		line = append(line, Coord{X: i, Y: i})
	}
	out := Line(line, 0.5)
	assert.Equal(t, []Coord{{X: 0, Y: 0}, {X: 9, Y: 9}}, out)
}

func TestSimplifyRetainsPoints(t *testing.T) {
	line := []Coord{
		{X: 0, Y: 0},
		{X: 5, Y: 5},
		{X: 0, Y: 0},
		{X: 1, Y: 1},
		{X: 0, Y: 0},
	}
	out := Line(line, 2.0)
	assert.Equal(t, []Coord{{X: 0, Y: 0}, {X: 5, Y: 5}, {X: 0, Y: 0}}, out)
}

func TestPointToLineDist(t *testing.T) {
	start := Coord{X: 0, Y: 0}
	end := Coord{X: 10, Y: 10}

	assert.Equal(t, 0.0, pointToLineDist(Coord{X: 5, Y: 5}, start, end))
	assert.InDelta(t, 5.0*math.Sqrt2/2, pointToLineDist(Coord{X: 5, Y: 0}, start, end), 1e-9)
	assert.InDelta(t, 10.0*math.Sqrt2/2, pointToLineDist(Coord{X: 0, Y: 10}, start, end), 1e-9)
}

func TestPointToLineSamePoint(t *testing.T) {
	start := Coord{X: 0, Y: 0}
	end := Coord{X: 0, Y: 0}
	assert.Equal(t, 0.0, pointToLineDist(Coord{X: 0, Y: 0}, start, end))
	assert.InDelta(t, math.Sqrt2, pointToLineDist(Coord{X: 1, Y: 1}, start, end), 1e-9)
}
