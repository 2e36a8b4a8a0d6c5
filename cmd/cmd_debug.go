// Copyright 2025 The CafeForest Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/cafeforest/cafeforest/spatial"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

var debugCmd = &cobra.Command{
	Use:   "debug",
	Short: "Dev tools",
}

var debugDistanceCmd = &cobra.Command{
	Use:   "distance",
	Short: "Print the haversine distance between coordinate pairs",
	Long: `Reads one pair per line as "latA lngA latB lngB" and prints the distance
in meters.

$ echo 37.5665 126.9780 35.1796 129.0756 | cafeforest debug distance
37.5665 126.9780 35.1796 129.0756	325111.3
	`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if isatty.IsTerminal(os.Stdin.Fd()) {
			fmt.Fprintln(os.Stderr, "Enter coordinate pairs, one per line…")
		}

		return printDistances(cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

func printDistances(r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		d, err := parseDistance(line)
		if err != nil {
			fmt.Fprintf(w, "%s\t%q\n", line, err)

			continue
		}

		fmt.Fprintf(w, "%s\t%.1f\n", line, d)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	return nil
}

func parseDistance(line string) (float64, error) {
	fields := strings.Fields(strings.ReplaceAll(line, ",", " "))
	if len(fields) != 4 {
		return 0, fmt.Errorf("expected 4 numbers, got %d", len(fields))
	}

	var v [4]float64

	for i, f := range fields {
		n, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return 0, err
		}

		v[i] = n
	}

	return spatial.Distance(v[0], v[1], v[2], v[3]), nil
}

func init() {
	rootCmd.AddCommand(debugCmd)
	debugCmd.AddCommand(debugDistanceCmd)
}
