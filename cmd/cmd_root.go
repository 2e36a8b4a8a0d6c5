// Copyright 2025 The CafeForest Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"database/sql"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/cafeforest/cafeforest/forest"
	_ "github.com/duckdb/duckdb-go/v2" // register duckdb driver
	"github.com/spf13/cobra"
)

type logWriter struct {
	writer io.Writer
}

func (w *logWriter) Write(bytes []byte) (int, error) {
	return fmt.Fprintf(w.writer, "%s %s", time.Now().Format("2006-01-02 15:04:05"), string(bytes))
}

func init() {
	log.SetFlags(0)
	log.SetOutput(&logWriter{writer: os.Stderr})

	rootCmd.PersistentFlags().StringVar(&rootOptions.DbPath, "db-path", defaultDbPath(),
		"directory holding the shops database (env CAFEFOREST_DB_PATH)")
}

// RootOptions are the flags shared by every command.
type RootOptions struct {
	DbPath string
}

var rootOptions = &RootOptions{}

func defaultDbPath() string {
	if p := os.Getenv("CAFEFOREST_DB_PATH"); p != "" {
		return p
	}

	return "db"
}

func (o *RootOptions) dbFile() string {
	return filepath.Join(o.DbPath, "cafeforest.duckdb")
}

// openRepository opens the shops database, creating the schema if needed.
func openRepository() (*sql.DB, forest.ShopRepository, error) {
	if err := os.MkdirAll(rootOptions.DbPath, 0o750); err != nil {
		return nil, nil, fmt.Errorf("creating db directory: %w", err)
	}

	db, err := sql.Open("duckdb", rootOptions.dbFile())
	if err != nil {
		return nil, nil, fmt.Errorf("opening database: %w", err)
	}

	repo := forest.NewShopRepository(db)
	if err := repo.CreateSchema(); err != nil {
		db.Close()

		return nil, nil, fmt.Errorf("creating shops schema: %w", err)
	}

	return db, repo, nil
}

var rootCmd = &cobra.Command{
	Use:   "cafeforest",
	Short: "find coffee-shop forests",
	Long: `
cafeforest groups coffee shops into "forests": sets of shops where every shop
is within walking distance of at least one other shop of the same forest.
`,
	SilenceUsage: true,
}

var Version = "dev"

func Execute(version string) {
	Version = version

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
