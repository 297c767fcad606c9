package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClipLineThroughBox(t *testing.T) {
	b := BBox{Left: 0, Bottom: 0, Right: 10, Top: 10}

	p0, p1, ok := b.ClipLine(Point{X: -1, Y: 5}, Point{X: 11, Y: 5})
	assert.True(t, ok)
	assert.Equal(t, Point{X: 0, Y: 5}, p0)
	assert.Equal(t, Point{X: 10, Y: 5}, p1)
}

func TestClipLineFullyOutside(t *testing.T) {
	b := BBox{Left: 0, Bottom: 0, Right: 10, Top: 10}
	_, _, ok := b.ClipLine(Point{X: -1, Y: 0}, Point{X: -1, Y: 11})
	assert.False(t, ok)
}

func TestClipLineFullyInside(t *testing.T) {
	b := BBox{Left: 0, Bottom: 0, Right: 10, Top: 10}
	p0, p1, ok := b.ClipLine(Point{X: 1, Y: 1}, Point{X: 9, Y: 9})
	assert.True(t, ok)
	assert.Equal(t, Point{X: 1, Y: 1}, p0)
	assert.Equal(t, Point{X: 9, Y: 9}, p1)
}

func TestIntersectsCircle(t *testing.T) {
	b := BBox{Left: 0, Bottom: 0, Right: 10, Top: 10}
	assert.True(t, b.IntersectsCircle(5, 5, 1))
	assert.True(t, b.IntersectsCircle(15, 5, 6))
	assert.False(t, b.IntersectsCircle(100, 100, 1))
}
