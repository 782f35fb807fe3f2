package main

import (
	"os"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/giftportfolio/portfolio/pkg/adapters/repository/sqlite"
	"github.com/giftportfolio/portfolio/pkg/logging"
)

func init() {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Load seed JSON into the local content store",
		Long:  "Load seed JSON into the local content store. Rows with an existing id are replaced.",
		Run:   runImport,
	}
	cmd.Flags().String("file", "", "Seed JSON file to import")
	_ = cmd.MarkFlagRequired("file")

	rootCmd.AddCommand(cmd)
}

func runImport(cmd *cobra.Command, args []string) {
	filename, _ := cmd.Flags().GetString("file")

	file, err := os.Open(filename)
	if err != nil {
		exitErr("open file", err)
	}
	defer file.Close()

	var seed sqlite.Seed
	if err := json.NewDecoder(file).Decode(&seed); err != nil {
		exitErr("decode", err)
	}

	repo, err := openRepo()
	if err != nil {
		exitErr("open store", err)
	}
	defer repo.Close()

	if err := repo.Import(cmd.Context(), seed); err != nil {
		exitErr("import", err)
	}
	logging.Info().
		Int("categories", len(seed.Categories)).
		Int("skills", len(seed.Skills)).
		Int("projects", len(seed.Projects)).
		Msg("seed imported")
}
