// Copyright 2025 The CafeForest Authors
// SPDX-License-Identifier: Apache-2.0

package forest

import (
	"fmt"
	"math"
	"sort"

	"github.com/cafeforest/cafeforest/spatial"
)

// DefaultMinClusterSize is the smallest group of shops reported as a forest.
const DefaultMinClusterSize = 3

// Cluster is a group of shops connected by hops no longer than the threshold.
type Cluster struct {
	Shops []*Shop
}

// Size returns the number of shops in the cluster.
func (c *Cluster) Size() int {
	return len(c.Shops)
}

func (c *Cluster) points() []*spatial.Point {
	points := make([]*spatial.Point, len(c.Shops))
	for i, s := range c.Shops {
		points[i] = s.Point
	}

	return points
}

// Centroid returns the mean position of the cluster members.
func (c *Cluster) Centroid() spatial.Point {
	return spatial.Centroid(c.points())
}

// Center returns the member closest to the centroid. Ties go to the member
// discovered first. Returns nil for an empty cluster.
func (c *Cluster) Center() *Shop {
	centroid := c.Centroid()

	var (
		center *Shop
		best   = math.Inf(1)
	)

	for _, s := range c.Shops {
		if d := centroid.HaversineDistance(s.Point); d < best {
			center, best = s, d
		}
	}

	return center
}

// Radius returns the distance in meters from the centroid to the farthest member.
func (c *Cluster) Radius() float64 {
	centroid := c.Centroid()

	var radius float64

	for _, s := range c.Shops {
		radius = math.Max(radius, centroid.HaversineDistance(s.Point))
	}

	return radius
}

type options struct {
	minClusterSize int
}

// Option configures FindClusters.
type Option func(*options)

// WithMinClusterSize overrides DefaultMinClusterSize.
func WithMinClusterSize(n int) Option {
	return func(o *options) {
		o.minClusterSize = n
	}
}

// FindClusters partitions shops into connected components where two shops are
// adjacent when their haversine distance is at most thresholdMeters.
// Components smaller than the minimum size are dropped and the rest are
// returned largest first, keeping discovery order between equal sizes.
//
// Shop IDs must be unique. Shops without a point are ignored. Components are
// grown with an explicit stack so their size is not bounded by the goroutine
// stack.
func FindClusters(shops []*Shop, thresholdMeters float64, opts ...Option) ([]*Cluster, error) {
	o := options{minClusterSize: DefaultMinClusterSize}
	for _, opt := range opts {
		opt(&o)
	}

	if thresholdMeters < 0 || math.IsNaN(thresholdMeters) {
		return nil, &ClusterError{
			Type:    ErrorTypeNegativeThreshold,
			Message: fmt.Sprintf("invalid distance threshold %v", thresholdMeters),
		}
	}

	if o.minClusterSize < 1 {
		return nil, &ClusterError{
			Type:    ErrorTypeInvalidMinSize,
			Message: fmt.Sprintf("invalid minimum cluster size %d", o.minClusterSize),
		}
	}

	clusters := make([]*Cluster, 0)
	visited := make(map[int64]struct{}, len(shops))

	for _, seed := range shops {
		if seed.Point == nil {
			continue
		}

		if _, ok := visited[seed.ID]; ok {
			continue
		}

		visited[seed.ID] = struct{}{}

		var component []*Shop

		stack := []*Shop{seed}
		for len(stack) > 0 {
			current := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			component = append(component, current)

			for _, other := range shops {
				if other.Point == nil {
					continue
				}

				if _, ok := visited[other.ID]; ok {
					continue
				}

				if current.Point.HaversineDistance(other.Point) <= thresholdMeters {
					visited[other.ID] = struct{}{}
					stack = append(stack, other)
				}
			}
		}

		if len(component) >= o.minClusterSize {
			clusters = append(clusters, &Cluster{Shops: component})
		}
	}

	sort.SliceStable(clusters, func(i, j int) bool {
		return clusters[i].Size() > clusters[j].Size()
	})

	return clusters, nil
}
