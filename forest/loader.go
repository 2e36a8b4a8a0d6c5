// Copyright 2025 The CafeForest Authors
// SPDX-License-Identifier: Apache-2.0

package forest

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"mime"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/cafeforest/cafeforest/spatial"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Seed file columns.
const (
	colName = iota
	colAddress
	colLongitude
	colLatitude
	numColumns
)

// LoadStats summarizes a seed load.
type LoadStats struct {
	Rows    int `json:"rows"`
	Loaded  int `json:"loaded"`
	Skipped int `json:"skipped"`
}

// Source is an opened seed file.
type Source struct {
	io.ReadCloser
	// Charset declared by the server, if any.
	Charset string
}

// OpenSource opens a seed file from a local path or an http(s) URL.
func OpenSource(ctx context.Context, client *http.Client, location string) (*Source, error) {
	if !strings.HasPrefix(location, "http://") && !strings.HasPrefix(location, "https://") {
		f, err := os.Open(location) // #nosec G304 - location is provided by admin
		if err != nil {
			return nil, fmt.Errorf("opening seed file: %w", err)
		}

		return &Source{ReadCloser: f}, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("downloading seed file: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()

		return nil, fmt.Errorf("downloading seed file: unexpected status %s", resp.Status)
	}

	src := &Source{ReadCloser: resp.Body}

	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Type")); err == nil {
		src.Charset = params["charset"]
	}

	return src, nil
}

// lookupEncoding resolves a WHATWG encoding label such as "euc-kr" or "utf-8".
func lookupEncoding(label string) (encoding.Encoding, error) {
	label = strings.TrimSpace(strings.ToLower(label))
	if label == "" || label == "utf-8" || label == "utf8" {
		return unicode.UTF8BOM, nil
	}

	enc, name := charset.Lookup(label)
	if enc == nil {
		return nil, fmt.Errorf("unknown encoding %q", label)
	}

	if name == "utf-8" {
		return unicode.UTF8BOM, nil
	}

	return enc, nil
}

// LoadCSV reads shops from a seed file with the columns name, address,
// longitude and latitude. The first row is a header. Rows that can't be
// parsed are logged and skipped. Shops get their row number as ID.
func LoadCSV(r io.Reader, encodingLabel string) ([]*Shop, LoadStats, error) {
	var stats LoadStats

	enc, err := lookupEncoding(encodingLabel)
	if err != nil {
		return nil, stats, err
	}

	reader := csv.NewReader(transform.NewReader(r, enc.NewDecoder()))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	shops := make([]*Shop, 0)

	for row := 0; ; row++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		if row == 0 {
			// header
			if err != nil {
				return nil, stats, fmt.Errorf("reading header: %w", err)
			}

			continue
		}

		stats.Rows++

		var parseErr *csv.ParseError

		switch {
		case errors.As(err, &parseErr):
			log.Printf("⚠️  skipping row %d: %v", row, err)

			stats.Skipped++

			continue
		case err != nil:
			return nil, stats, fmt.Errorf("reading row %d: %w", row, err)
		}

		shop, err := parseShop(record)
		if err != nil {
			log.Printf("⚠️  skipping row %d: %v", row, err)

			stats.Skipped++

			continue
		}

		shop.ID = int64(row)
		shops = append(shops, shop)
		stats.Loaded++
	}

	return shops, stats, nil
}

func parseShop(record []string) (*Shop, error) {
	if len(record) < numColumns {
		return nil, fmt.Errorf("expected %d columns, got %d", numColumns, len(record))
	}

	lng, err := parseCoordinate(record[colLongitude], "longitude", 180)
	if err != nil {
		return nil, err
	}

	lat, err := parseCoordinate(record[colLatitude], "latitude", 90)
	if err != nil {
		return nil, err
	}

	return &Shop{
		Name:    strings.TrimSpace(record[colName]),
		Address: strings.TrimSpace(record[colAddress]),
		Point:   &spatial.Point{Lat: lat, Lng: lng},
	}, nil
}

// parseCoordinate parses a decimal degree value, rejecting non-finite values
// and anything outside [-limit, limit].
func parseCoordinate(field, name string, limit float64) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
	if err != nil {
		return 0, fmt.Errorf("parsing %s: %w", name, err)
	}

	if math.IsNaN(v) || math.IsInf(v, 0) || v < -limit || v > limit {
		return 0, fmt.Errorf("%s %v out of range [-%v, %v]", name, v, limit, limit)
	}

	return v, nil
}
