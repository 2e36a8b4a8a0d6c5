// Copyright 2025 The CafeForest Authors
//
// SPDX-License-Identifier: Apache-2.0
package spatial

import (
	"fmt"
	"math"

	"github.com/uber/h3-go/v4"
)

const earthRadius = 6371e3 // meters

// Point represents a geographical point with latitude and longitude.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// String returns a string representation of the Point.
func (p Point) String() string {
	return fmt.Sprintf("POINT(%f %f)", p.Lng, p.Lat)
}

// HaversineDistance calculates the distance between two points on Earth in meters.
func (p *Point) HaversineDistance(other *Point) float64 {
	return Distance(p.Lat, p.Lng, other.Lat, other.Lng)
}

// Distance returns the great-circle distance in meters between (latA, lngA)
// and (latB, lngB), all in decimal degrees. Out of range or NaN inputs are
// not checked and propagate into the result.
func Distance(latA, lngA, latB, lngB float64) float64 {
	lat1 := latA * math.Pi / 180
	lat2 := latB * math.Pi / 180
	dLat := (latB - latA) * math.Pi / 180
	dLng := (lngB - lngA) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadius * c
}

// Centroid returns the arithmetic mean of the given points. It is a good
// enough approximation for groups spanning a few kilometers. Returns the zero
// Point for an empty slice.
func Centroid(points []*Point) Point {
	var c Point
	if len(points) == 0 {
		return c
	}

	for _, p := range points {
		c.Lat += p.Lat
		c.Lng += p.Lng
	}

	c.Lat /= float64(len(points))
	c.Lng /= float64(len(points))

	return c
}

// H3Cell returns the H3 cell containing the point at the given resolution.
func (p Point) H3Cell(res int) (h3.Cell, error) {
	cell, err := h3.LatLngToCell(h3.NewLatLng(p.Lat, p.Lng), res)
	if err != nil {
		return 0, fmt.Errorf("spatial: converting %s to h3 cell at res %d: %w", p, res, err)
	}

	return cell, nil
}
