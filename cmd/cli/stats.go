package main

import (
	"fmt"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show the analytics summary of locally stored events",
		Run:   runStats,
	}
	cmd.Flags().IntP("limit", "n", 10, "Number of top paths to show")

	rootCmd.AddCommand(cmd)
}

func runStats(cmd *cobra.Command, args []string) {
	limit, _ := cmd.Flags().GetInt("limit")

	repo, err := openRepo()
	if err != nil {
		exitErr("open store", err)
	}
	defer repo.Close()

	summary, err := repo.GetAnalyticsSummary(cmd.Context(), limit)
	if err != nil {
		exitErr("stats", err)
	}

	b, _ := json.MarshalIndent(summary, "", "  ")
	fmt.Println(string(b))
}
