// Copyright 2025 The CafeForest Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/cafeforest/cafeforest/forest"
	"github.com/cafeforest/cafeforest/forest/utils"
	"github.com/cafeforest/cafeforest/utils/httputils"
	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

const seedProgressStep = 500

type seedOptions struct {
	Encoding string
	Trace    bool
	Timeout  time.Duration
}

func newSeedCmd() *cobra.Command {
	opts := &seedOptions{}

	cmd := &cobra.Command{
		Use:   "seed <file|url>",
		Short: "Replaces the shops database with the content of a CSV seed file",
		Long: `Loads a CSV with the columns name, address, longitude and latitude.
The first row is a header. Rows that can't be parsed are logged and skipped.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return seedDatabase(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.Encoding, "encoding", "",
		"seed file encoding, e.g. euc-kr (default: charset sent by the server, else utf-8)")
	cmd.Flags().BoolVar(&opts.Trace, "trace", false, "dump HTTP traffic to stderr")
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", 5*time.Minute, "download timeout")

	return cmd
}

func init() {
	rootCmd.AddCommand(newSeedCmd())
}

func seedDatabase(ctx context.Context, location string, opts *seedOptions) error {
	var trace io.Writer
	if opts.Trace {
		trace = os.Stderr
	}

	client := httputils.NewClient(
		fmt.Sprintf("cafeforest/%s", Version),
		trace,
		opts.Timeout,
	)

	src, err := forest.OpenSource(ctx, client, location)
	if err != nil {
		return err
	}
	defer src.Close()

	encoding := opts.Encoding
	if encoding == "" {
		encoding = src.Charset
	}

	shops, stats, err := forest.LoadCSV(src, encoding)
	if err != nil {
		return fmt.Errorf("loading %s: %w", location, err)
	}

	db, repo, err := openRepository()
	if err != nil {
		return err
	}
	defer db.Close()

	var bar *progressbar.ProgressBar
	if isatty.IsTerminal(os.Stderr.Fd()) {
		bar = progressbar.NewOptions(len(shops),
			progressbar.OptionSetDescription("Saving shops"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
	}

	var onSaved func(n int)
	if bar != nil {
		onSaved = func(n int) {
			if n%seedProgressStep == 0 || n == len(shops) {
				_ = bar.Set(n)
			}
		}
	}

	// Existing shops are kept if anything fails.
	if err := repo.ReplaceShops(shops, onSaved); err != nil {
		return fmt.Errorf("saving shops: %w", err)
	}

	if bar != nil {
		_ = bar.Finish()
	}

	log.Printf("✅ Loaded %s shops from %s (%s rows, %s skipped)\n",
		utils.FormatInt(int64(stats.Loaded)),
		location,
		utils.FormatInt(int64(stats.Rows)),
		utils.FormatInt(int64(stats.Skipped)))

	return nil
}
