package geo

import (
	"math"
	"testing"

	"github.com/courtplan/courtplan/pkg/core"
	"github.com/stretchr/testify/assert"
)

var square = []core.Point{{X: 0, Y: 0}, {X: 100, Y: 0}, {X: 100, Y: 100}, {X: 0, Y: 100}}

func TestContainsPoint(t *testing.T) {
	tests := []struct {
		name string
		p    core.Point
		want bool
	}{
		{"center", core.Point{X: 50, Y: 50}, true},
		{"outside right", core.Point{X: 150, Y: 50}, false},
		{"outside above", core.Point{X: 50, Y: -1}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ContainsPoint(square, tt.p))
		})
	}
}

func TestContainsPoint_Triangle(t *testing.T) {
	tri := []core.Point{{X: 0, Y: 0}, {X: 100, Y: 0}, {X: 0, Y: 100}}
	assert.True(t, ContainsPoint(tri, core.Point{X: 10, Y: 10}))
	assert.False(t, ContainsPoint(tri, core.Point{X: 90, Y: 90}))
}

func TestContainsPoint_Degenerate(t *testing.T) {
	assert.False(t, ContainsPoint(square[:2], core.Point{X: 50, Y: 0}))
}

func TestDistanceToPolyline(t *testing.T) {
	line := []core.Point{{X: 0, Y: 0}, {X: 100, Y: 0}}

	assert.InDelta(t, 10, DistanceToPolyline(line, core.Point{X: 50, Y: 10}), 1e-9)
	assert.InDelta(t, 5, DistanceToPolyline(line, core.Point{X: 104, Y: 3}), 1e-9)
}

func TestDistanceToPolyline_Degenerate(t *testing.T) {
	assert.True(t, math.IsInf(DistanceToPolyline(nil, core.Point{}), 1))
	assert.InDelta(t, 5, DistanceToPolyline([]core.Point{{X: 3, Y: 4}}, core.Point{}), 1e-9)
}

func TestContainsPoint_SelfIntersecting(t *testing.T) {
	bowtie := []core.Point{{X: 0, Y: 0}, {X: 100, Y: 100}, {X: 100, Y: 0}, {X: 0, Y: 100}}

	assert.True(t, ContainsPoint(bowtie, core.Point{X: 10, Y: 50}), "left lobe")
	assert.True(t, ContainsPoint(bowtie, core.Point{X: 90, Y: 50}), "right lobe")
	assert.False(t, ContainsPoint(bowtie, core.Point{X: 50, Y: 20}), "between lobes")
	assert.False(t, ContainsPoint(bowtie, core.Point{X: 150, Y: 50}))
}

func TestDistanceToPolyline_RepeatedSamples(t *testing.T) {
	stroke := []core.Point{{X: 0, Y: 0}, {X: 0, Y: 0}, {X: 50, Y: 0}, {X: 50, Y: 0}, {X: 100, Y: 0}}

	assert.InDelta(t, 7, DistanceToPolyline(stroke, core.Point{X: 75, Y: 7}), 1e-9)
}
