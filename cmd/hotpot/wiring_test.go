package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mmeyer/hotpot/internal/codec"
	"github.com/mmeyer/hotpot/internal/simplify"
)

func TestWidenLine(t *testing.T) {
	in := []simplify.Coord{{X: 10, Y: 20}, {X: 65535, Y: 0}}
	out := widenLine(in)
	assert.Equal(t, []codec.Coord{{X: 10, Y: 20}, {X: 65535, Y: 0}}, out)
}
