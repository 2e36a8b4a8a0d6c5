// Copyright 2025 The CafeForest Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cafeforest/cafeforest/forest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedAndAnalyze(t *testing.T) {
	rootOptions.DbPath = t.TempDir()
	forestOpts.Distance = forest.DefaultDistance
	forestOpts.MinClusterSize = forest.DefaultMinClusterSize

	err := seedDatabase(context.Background(), filepath.Join("..", "forest", "testdata", "cafes.csv"), &seedOptions{Timeout: time.Second})
	require.NoError(t, err)

	db, repo, err := openRepository()
	require.NoError(t, err)
	defer db.Close()

	count, err := repo.CountShops()
	require.NoError(t, err)
	assert.Equal(t, 5, count)

	var out bytes.Buffer
	require.NoError(t, analyze(context.Background(), &out, repo))

	assert.Contains(t, out.String(), "1 forests within 50 m")
	assert.Contains(t, out.String(), "│    1 │     4 │")
}

func TestAnalyzeRejectsNegativeDistance(t *testing.T) {
	forestOpts.Distance = -1
	forestOpts.MinClusterSize = forest.DefaultMinClusterSize

	t.Cleanup(func() { forestOpts.Distance = forest.DefaultDistance })

	err := analyze(context.Background(), &bytes.Buffer{}, forest.StaticSource(nil))
	require.Error(t, err)
	assert.True(t, forest.IsInvalidThresholdError(err))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "스타벅스", truncate("스타벅스", 4))
	assert.Equal(t, "스타벅…", truncate("스타벅스 강남", 4))
}

func TestForestOptionsValidate(t *testing.T) {
	tests := []struct {
		minSize int
		wantErr bool
	}{
		{-1, true},
		{0, true},
		{1, false},
		{forest.DefaultMinClusterSize, false},
	}

	for _, tc := range tests {
		opts := &forestOptions{MinClusterSize: tc.minSize}
		if tc.wantErr {
			assert.ErrorContains(t, opts.validate(), "--min-size must be at least 1", "min size %d", tc.minSize)
		} else {
			assert.NoError(t, opts.validate(), "min size %d", tc.minSize)
		}
	}
}

func TestForestCommandRejectsBadMinSize(t *testing.T) {
	t.Cleanup(func() { forestOpts.MinClusterSize = forest.DefaultMinClusterSize })

	rootCmd.SetArgs([]string{"forest", "analyze", "--min-size", "0", "--csv", filepath.Join("..", "forest", "testdata", "cafes.csv")})
	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	err := rootCmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--min-size must be at least 1")
}

func TestSeedSkipsNonFiniteCoordinates(t *testing.T) {
	rootOptions.DbPath = t.TempDir()

	seed := filepath.Join(t.TempDir(), "seed.csv")
	content := "name,address,lng,lat\na,x,127.0,37.5\nb,x,NaN,37.5\nc,x,127.0,Inf\n"
	require.NoError(t, os.WriteFile(seed, []byte(content), 0o600))

	require.NoError(t, seedDatabase(context.Background(), seed, &seedOptions{Timeout: time.Second}))

	db, repo, err := openRepository()
	require.NoError(t, err)
	defer db.Close()

	count, err := repo.CountShops()
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
