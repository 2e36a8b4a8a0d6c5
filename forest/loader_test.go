// Copyright 2025 The CafeForest Authors
// SPDX-License-Identifier: Apache-2.0

package forest

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cafeforest/cafeforest/spatial"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/korean"
)

func TestLoadCSV(t *testing.T) {
	f, err := os.Open(filepath.Join("testdata", "cafes.csv"))
	require.NoError(t, err)
	defer f.Close()

	shops, stats, err := LoadCSV(f, "")
	require.NoError(t, err)

	assert.Equal(t, LoadStats{Rows: 7, Loaded: 5, Skipped: 2}, stats)

	expected := []*Shop{
		{ID: 1, Name: "스타벅스 강남역점", Address: "서울특별시 강남구 강남대로 390", Point: &spatial.Point{Lat: 37.4979, Lng: 127.0276}},
		{ID: 2, Name: "투썸플레이스 강남역점", Address: "서울특별시 강남구 강남대로 396", Point: &spatial.Point{Lat: 37.4981, Lng: 127.0279}},
		{ID: 3, Name: "이디야커피 강남역점", Address: "서울특별시 강남구 테헤란로 101", Point: &spatial.Point{Lat: 37.4983, Lng: 127.0281}},
		{ID: 4, Name: `카페 "모퉁이"`, Address: "서울특별시 강남구 역삼로 1", Point: &spatial.Point{Lat: 37.4980, Lng: 127.0285}},
		{ID: 7, Name: "블루보틀 삼청점", Address: "서울특별시 종로구 북촌로5길 76", Point: &spatial.Point{Lat: 37.5824, Lng: 126.9816}},
	}

	if diff := cmp.Diff(expected, shops); diff != "" {
		t.Errorf("LoadCSV() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadCSVEucKR(t *testing.T) {
	content := "상호명,도로명주소,경도,위도\n커피빈 종각점,서울특별시 종로구 종로 51,126.9830,37.5703\n"

	encoded, err := korean.EUCKR.NewEncoder().String(content)
	require.NoError(t, err)

	shops, stats, err := LoadCSV(strings.NewReader(encoded), "euc-kr")
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Loaded)
	require.Len(t, shops, 1)
	assert.Equal(t, "커피빈 종각점", shops[0].Name)
	assert.Equal(t, "서울특별시 종로구 종로 51", shops[0].Address)
}

func TestLoadCSVEdgeCases(t *testing.T) {
	shops, stats, err := LoadCSV(strings.NewReader(""), "")
	require.NoError(t, err)
	assert.Empty(t, shops)
	assert.Equal(t, LoadStats{}, stats)

	shops, stats, err = LoadCSV(strings.NewReader("name,address,lng,lat\n"), "utf-8")
	require.NoError(t, err)
	assert.Empty(t, shops)
	assert.Equal(t, LoadStats{}, stats)

	_, _, err = LoadCSV(strings.NewReader("name,address,lng,lat\n"), "klingon")
	assert.ErrorContains(t, err, "unknown encoding")
}

func TestLoadCSVSkipsInvalidCoordinates(t *testing.T) {
	content := strings.Join([]string{
		"name,address,lng,lat",
		"ok,addr,127.0,37.5",
		"nan lng,addr,NaN,37.5",
		"inf lat,addr,127.0,Inf",
		"neg inf lng,addr,-Inf,37.5",
		"lat out of range,addr,127.0,91",
		"lng out of range,addr,180.5,37.5",
		"edge,addr,-180,-90",
	}, "\n")

	shops, stats, err := LoadCSV(strings.NewReader(content), "")
	require.NoError(t, err)
	assert.Equal(t, LoadStats{Rows: 7, Loaded: 2, Skipped: 5}, stats)

	require.Len(t, shops, 2)
	assert.Equal(t, "ok", shops[0].Name)
	assert.Equal(t, "edge", shops[1].Name)

	// every loaded shop must be storable
	for _, s := range shops {
		require.NoError(t, s.computeH3())
	}
}

func TestOpenSource(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/cafes.csv" {
			http.NotFound(w, r)

			return
		}

		w.Header().Set("Content-Type", "text/csv; charset=EUC-KR")
		_, _ = io.WriteString(w, "name,address,lng,lat\n")
	}))
	defer ts.Close()

	src, err := OpenSource(context.Background(), ts.Client(), ts.URL+"/cafes.csv")
	require.NoError(t, err)
	defer src.Close()

	assert.Equal(t, "EUC-KR", src.Charset)

	body, err := io.ReadAll(src)
	require.NoError(t, err)
	assert.Equal(t, "name,address,lng,lat\n", string(body))

	_, err = OpenSource(context.Background(), ts.Client(), ts.URL+"/missing.csv")
	assert.ErrorContains(t, err, "404")

	local, err := OpenSource(context.Background(), nil, filepath.Join("testdata", "cafes.csv"))
	require.NoError(t, err)
	assert.Empty(t, local.Charset)
	require.NoError(t, local.Close())

	_, err = OpenSource(context.Background(), nil, filepath.Join("testdata", "nope.csv"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
