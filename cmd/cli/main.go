// Command portfolio-cli manages the local content store: seeding it,
// dumping it and reading the analytics it collected.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/giftportfolio/portfolio/pkg/adapters/repository/sqlite"
	"github.com/giftportfolio/portfolio/pkg/config"
	"github.com/giftportfolio/portfolio/pkg/logging"
)

var dbURL string

var rootCmd = &cobra.Command{
	Use:   "portfolio-cli",
	Short: "Manage the local portfolio content store",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// stdout carries command output, keep logs on stderr.
		logging.Init(logging.Config{Level: "info", Format: "console", Output: os.Stderr})
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&dbURL, "db", "d", "", "Database URL (default: $DATABASE_URL)")
}

func openRepo() (*sqlite.SQLiteRepository, error) {
	url := dbURL
	if url == "" {
		cfg, err := config.Load()
		if err != nil {
			return nil, err
		}
		url = cfg.DatabaseURL
	}
	return sqlite.NewSQLiteRepository(url)
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
