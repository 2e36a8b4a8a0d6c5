// Copyright 2025 The CafeForest Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cafeforest/cafeforest/forest"
	"github.com/cafeforest/cafeforest/forest/utils"
	"github.com/spf13/cobra"
)

type forestOptions struct {
	Distance       float64
	MinClusterSize int
	CSV            string
	Encoding       string
	Addr           string
}

var forestOpts = &forestOptions{}

var forestCmd = &cobra.Command{
	Use:   "forest",
	Short: "Find and serve coffee-shop forests",
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		return forestOpts.validate()
	},
}

func (o *forestOptions) validate() error {
	if o.MinClusterSize < 1 {
		return fmt.Errorf("--min-size must be at least 1, got %d", o.MinClusterSize)
	}

	return nil
}

var forestAnalyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Print the forests found with the given distance",
	Long: `Groups shops that are within --distance meters of each other, transitively,
and prints the groups of at least --min-size shops, largest first.
Shops come from the database unless --csv points to a seed file.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		var source forest.ShopSource

		if forestOpts.CSV != "" {
			f, err := os.Open(forestOpts.CSV)
			if err != nil {
				return fmt.Errorf("opening seed file: %w", err)
			}
			defer f.Close()

			shops, _, err := forest.LoadCSV(f, forestOpts.Encoding)
			if err != nil {
				return fmt.Errorf("loading %s: %w", forestOpts.CSV, err)
			}

			source = forest.StaticSource(shops)
		} else {
			db, repo, err := openRepository()
			if err != nil {
				return err
			}
			defer db.Close()

			source = repo
		}

		return analyze(cmd.Context(), cmd.OutOrStdout(), source)
	},
}

func analyze(ctx context.Context, w io.Writer, source forest.ShopSource) error {
	service := forest.NewService(source, forestOpts.MinClusterSize)

	clusters, err := service.AnalyzeClusters(ctx, forestOpts.Distance)
	if err != nil {
		return fmt.Errorf("analyzing clusters: %w", err)
	}

	summaries, err := forest.Summarize(clusters)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "%s forests within %s\n",
		utils.FormatInt(int64(len(summaries))),
		utils.FormatMeters(forestOpts.Distance))

	a, b, c := strings.Repeat("─", 4), strings.Repeat("─", 5), strings.Repeat("─", 50)

	fmt.Fprintf(w, "╭─%4s─┬─%5s─┬─%-50s╮\n", a, b, c)
	fmt.Fprintf(w, "│ %4s │ %5s │ %-50s│\n", "#", "Shops", "Center")
	fmt.Fprintf(w, "├─%4s─┼─%5s─┼─%-50s┤\n", a, b, c)

	for _, s := range summaries {
		fmt.Fprintf(w, "│ %4d │ %5d │ %-50s│\n", s.Rank, s.Size, truncate(s.Center.Name, 50))
	}

	fmt.Fprintf(w, "╰─%4s─┴─%5s─┴─%-50s╯\n", a, b, c)

	return nil
}

// truncate shortens s to at most n runes.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}

	return string(r[:n-1]) + "…"
}

var forestServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the forest web view",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		db, repo, err := openRepository()
		if err != nil {
			return err
		}
		defer db.Close()

		count, err := repo.CountShops()
		if err != nil {
			return fmt.Errorf("counting shops: %w", err)
		}

		if count == 0 {
			return fmt.Errorf("no shops found in %s - run 'seed' first", rootOptions.dbFile())
		}

		server := forest.NewServer(repo, forest.NewService(repo, forestOpts.MinClusterSize))

		fmt.Printf("☕ Serving %s shops\n", utils.FormatInt(int64(count)))
		fmt.Printf("📍 Open http://%s in your browser\n", forestOpts.Addr)

		return server.Run(forestOpts.Addr)
	},
}

func init() {
	rootCmd.AddCommand(forestCmd)
	forestCmd.AddCommand(forestAnalyzeCmd)
	forestCmd.AddCommand(forestServeCmd)

	forestCmd.PersistentFlags().IntVar(&forestOpts.MinClusterSize, "min-size", forest.DefaultMinClusterSize,
		"smallest number of shops reported as a forest")

	forestAnalyzeCmd.Flags().Float64Var(&forestOpts.Distance, "distance", forest.DefaultDistance,
		"maximum distance in meters between neighbouring shops")
	forestAnalyzeCmd.Flags().StringVar(&forestOpts.CSV, "csv", "", "read shops from a seed file instead of the database")
	forestAnalyzeCmd.Flags().StringVar(&forestOpts.Encoding, "encoding", "", "seed file encoding, e.g. euc-kr")

	forestServeCmd.Flags().StringVar(&forestOpts.Addr, "addr", "localhost:8080", "listen address")
}
