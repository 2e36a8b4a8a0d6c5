// Copyright 2025 The CafeForest Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"github.com/cafeforest/cafeforest/cmd"
)

var Version = "development"

func main() {
	cmd.Execute(Version)
}
