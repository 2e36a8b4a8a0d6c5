// Copyright 2025 The CafeForest Authors
// SPDX-License-Identifier: Apache-2.0

package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLowerAsciiFolding(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Hello World", "hello world"},
		{"  Spaces  ", "spaces"},
		{"Áéíóú", "aeiou"},
		{"Crème Brûlée", "creme brulee"},
		{"스타벅스 강남점", "스타벅스 강남점"},
		{"STARBUCKS 강남", "starbucks 강남"},
		{"", ""},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			assert.Equal(t, tc.expected, LowerASCIIFolding(tc.input))
		})
	}
}

func TestFormatInt(t *testing.T) {
	tests := []struct {
		input    int64
		expected string
	}{
		{0, "0"},
		{1, "1"},
		{123, "123"},
		{1234, "1,234"},
		{123456, "123,456"},
		{1234567, "1,234,567"},
		{-1, "-1"},
		{-1234, "-1,234"},
		{-1234567, "-1,234,567"},
	}

	for _, tc := range tests {
		t.Run(tc.expected, func(t *testing.T) {
			assert.Equal(t, tc.expected, FormatInt(tc.input))
		})
	}
}

func TestFormatMeters(t *testing.T) {
	tests := []struct {
		input    float64
		expected string
	}{
		{0, "0 m"},
		{49.6, "50 m"},
		{999, "999 m"},
		{1000, "1.0 km"},
		{325_412, "325.4 km"},
	}

	for _, tc := range tests {
		t.Run(tc.expected, func(t *testing.T) {
			assert.Equal(t, tc.expected, FormatMeters(tc.input))
		})
	}
}
