// Copyright 2025 The CafeForest Authors
// SPDX-License-Identifier: Apache-2.0

package forest

import (
	"fmt"

	"github.com/cafeforest/cafeforest/spatial"
)

// H3 resolutions stored alongside every shop. Resolution 9 cells are roughly
// 170m across, about the size of a city block.
const (
	minH3Res = 7
	maxH3Res = 9
)

// Shop is a coffee shop loaded from the seed data.
type Shop struct {
	ID      int64          `json:"id"`
	Name    string         `json:"name"`
	Address string         `json:"address"`
	Point   *spatial.Point `json:"point"`
	H3Res7  int64          `json:"-"`
	H3Res8  int64          `json:"-"`
	H3Res9  int64          `json:"-"`
}

func (s *Shop) computeH3() error {
	if s.Point == nil {
		s.H3Res7, s.H3Res8, s.H3Res9 = 0, 0, 0

		return nil
	}

	for res := minH3Res; res <= maxH3Res; res++ {
		cell, err := s.Point.H3Cell(res)
		if err != nil {
			return fmt.Errorf("shop %d: %w", s.ID, err)
		}

		switch res {
		case 7:
			s.H3Res7 = int64(cell)
		case 8:
			s.H3Res8 = int64(cell)
		case 9:
			s.H3Res9 = int64(cell)
		}
	}

	return nil
}
