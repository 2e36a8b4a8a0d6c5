// Copyright 2025 The CafeForest Authors
// SPDX-License-Identifier: Apache-2.0

package forest

import (
	"context"
	"fmt"

	"github.com/cafeforest/cafeforest/spatial"
)

// DefaultDistance is the clustering threshold in meters used when none is given.
const DefaultDistance = 50.0

// summaryH3Res is the resolution reported for cluster centroids.
const summaryH3Res = 9

// ShopSource supplies the full current set of shops.
type ShopSource interface {
	ListShops(ctx context.Context) ([]*Shop, error)
}

// StaticSource serves a fixed snapshot of shops.
type StaticSource []*Shop

// ListShops implements ShopSource.
func (s StaticSource) ListShops(_ context.Context) ([]*Shop, error) {
	return s, nil
}

// Service loads shop snapshots and finds the forests in them.
type Service struct {
	source         ShopSource
	minClusterSize int
}

// NewService creates a Service. minClusterSize is handed to FindClusters as
// is, so values below one make every analysis fail.
func NewService(source ShopSource, minClusterSize int) *Service {
	return &Service{source: source, minClusterSize: minClusterSize}
}

// AnalyzeClusters loads every shop and groups them using distanceMeters as threshold.
func (s *Service) AnalyzeClusters(ctx context.Context, distanceMeters float64) ([]*Cluster, error) {
	shops, err := s.source.ListShops(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading shops: %w", err)
	}

	return FindClusters(shops, distanceMeters, WithMinClusterSize(s.minClusterSize))
}

// ClusterSummary is the presentation of a cluster.
type ClusterSummary struct {
	Rank         int           `json:"rank"`
	Size         int           `json:"size"`
	Centroid     spatial.Point `json:"centroid"`
	RadiusMeters float64       `json:"radius_meters"`
	H3Cell       string        `json:"h3_cell"`
	Center       *Shop         `json:"center"`
	Shops        []*Shop       `json:"shops"`
}

// Summarize builds the presentation of the clusters, keeping their order.
func Summarize(clusters []*Cluster) ([]*ClusterSummary, error) {
	summaries := make([]*ClusterSummary, 0, len(clusters))

	for i, c := range clusters {
		centroid := c.Centroid()

		cell, err := centroid.H3Cell(summaryH3Res)
		if err != nil {
			return nil, fmt.Errorf("summarizing cluster %d: %w", i+1, err)
		}

		summaries = append(summaries, &ClusterSummary{
			Rank:         i + 1,
			Size:         c.Size(),
			Centroid:     centroid,
			RadiusMeters: c.Radius(),
			H3Cell:       cell.String(),
			Center:       c.Center(),
			Shops:        c.Shops,
		})
	}

	return summaries, nil
}
