// Copyright 2025 The CafeForest Authors
// SPDX-License-Identifier: Apache-2.0

package spatial

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	seoul = Point{Lat: 37.5665, Lng: 126.9780}
	busan = Point{Lat: 35.1796, Lng: 129.0756}
)

func TestDistanceKnownFixture(t *testing.T) {
	d := seoul.HaversineDistance(&busan)
	assert.InDelta(t, 325_000, d, 5_000)
}

func TestDistanceSymmetry(t *testing.T) {
	pairs := []struct {
		name string
		a, b Point
	}{
		{"seoul-busan", seoul, busan},
		{"across antimeridian", Point{Lat: 10, Lng: 179.5}, Point{Lat: -10, Lng: -179.5}},
		{"poles", Point{Lat: 90, Lng: 0}, Point{Lat: -90, Lng: 45}},
		{"gangnam block", Point{Lat: 37.4979, Lng: 127.0276}, Point{Lat: 37.4981, Lng: 127.0279}},
	}

	for _, tc := range pairs {
		t.Run(tc.name, func(t *testing.T) {
			ab := Distance(tc.a.Lat, tc.a.Lng, tc.b.Lat, tc.b.Lng)
			ba := Distance(tc.b.Lat, tc.b.Lng, tc.a.Lat, tc.a.Lng)
			assert.InDelta(t, ab, ba, 1e-9)
		})
	}
}

func TestDistanceIdentity(t *testing.T) {
	for _, p := range []Point{seoul, busan, {Lat: 0, Lng: 0}, {Lat: -89.9, Lng: 179.9}} {
		assert.InDelta(t, 0, p.HaversineDistance(&p), 1e-6, "%s", p)
	}
}

func TestDistanceNaNPropagates(t *testing.T) {
	assert.True(t, math.IsNaN(Distance(math.NaN(), 0, 0, 0)))
}

func TestCentroid(t *testing.T) {
	assert.Equal(t, Point{}, Centroid(nil))

	c := Centroid([]*Point{{Lat: 1, Lng: 2}, {Lat: 3, Lng: 4}})
	assert.InDelta(t, 2, c.Lat, 1e-12)
	assert.InDelta(t, 3, c.Lng, 1e-12)
}

func TestH3Cell(t *testing.T) {
	cell, err := seoul.H3Cell(9)
	require.NoError(t, err)
	assert.True(t, cell.IsValid())
	assert.Equal(t, 9, cell.Resolution())

	parent, err := seoul.H3Cell(7)
	require.NoError(t, err)

	p, err := cell.Parent(7)
	require.NoError(t, err)
	assert.Equal(t, parent, p)

	_, err = seoul.H3Cell(16)
	assert.Error(t, err)
}
