// Copyright 2025 The CafeForest Authors
// SPDX-License-Identifier: Apache-2.0

package forest

import (
	"errors"
	"fmt"
)

// ErrorType classifies the arguments FindClusters refuses to work with.
type ErrorType int

const (
	// ErrorTypeUnknown unclassified error.
	ErrorTypeUnknown ErrorType = iota
	// ErrorTypeNegativeThreshold the distance threshold is negative or NaN.
	ErrorTypeNegativeThreshold
	// ErrorTypeInvalidMinSize the minimum cluster size is lower than one.
	ErrorTypeInvalidMinSize
)

// ClusterError is returned when clustering arguments are rejected.
type ClusterError struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *ClusterError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}

	return e.Message
}

func (e *ClusterError) Unwrap() error {
	return e.Err
}

// IsInvalidThresholdError reports whether err was caused by a negative or NaN threshold.
func IsInvalidThresholdError(err error) bool {
	var cErr *ClusterError
	if errors.As(err, &cErr) {
		return cErr.Type == ErrorTypeNegativeThreshold
	}

	return false
}

// IsInvalidMinSizeError reports whether err was caused by a bad minimum cluster size.
func IsInvalidMinSizeError(err error) bool {
	var cErr *ClusterError
	if errors.As(err, &cErr) {
		return cErr.Type == ErrorTypeInvalidMinSize
	}

	return false
}
