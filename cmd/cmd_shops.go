// Copyright 2025 The CafeForest Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"strings"

	"github.com/cafeforest/cafeforest/forest/utils"
	"github.com/spf13/cobra"
	"github.com/uber/h3-go/v4"
)

var shopsLimit int

var shopsCmd = &cobra.Command{
	Use:   "shops",
	Short: "Inspect the shops database",
}

var shopsListCmd = &cobra.Command{
	Use:   "list [query]",
	Short: "Lists shops, optionally filtered by name",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, repo, err := openRepository()
		if err != nil {
			return err
		}
		defer db.Close()

		query := strings.Join(args, " ")

		shops, err := repo.SearchShops(query, shopsLimit, 0)
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		for _, s := range shops {
			fmt.Fprintf(w, "%8d  %-30s  %10.6f %11.6f  %s\n", s.ID, truncate(s.Name, 30), s.Point.Lat, s.Point.Lng, s.Address)
		}

		total, err := repo.CountShops()
		if err != nil {
			return err
		}

		fmt.Fprintf(w, "%s of %s shops\n", utils.FormatInt(int64(len(shops))), utils.FormatInt(int64(total)))

		return nil
	},
}

var shopsCellCmd = &cobra.Command{
	Use:   "cell <h3-index>",
	Short: "Lists the shops inside an H3 cell of resolution 7 to 9",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cell := h3.Cell(h3.IndexFromString(args[0]))
		if !cell.IsValid() {
			return fmt.Errorf("invalid h3 cell %q", args[0])
		}

		db, repo, err := openRepository()
		if err != nil {
			return err
		}
		defer db.Close()

		shops, err := repo.ListShopsInCell(cell)
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		for _, s := range shops {
			fmt.Fprintf(w, "%8d  %-30s  %s\n", s.ID, truncate(s.Name, 30), s.Address)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(shopsCmd)
	shopsCmd.AddCommand(shopsListCmd)
	shopsCmd.AddCommand(shopsCellCmd)

	shopsListCmd.Flags().IntVar(&shopsLimit, "limit", 50, "maximum number of shops to list (0 for all)")
}
