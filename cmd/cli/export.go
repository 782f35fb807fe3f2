package main

import (
	"fmt"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "export",
		Short: "Dump the local content store as seed JSON",
		Run:   runExport,
	})
}

func runExport(cmd *cobra.Command, args []string) {
	repo, err := openRepo()
	if err != nil {
		exitErr("open store", err)
	}
	defer repo.Close()

	seed, err := repo.Export(cmd.Context())
	if err != nil {
		exitErr("export", err)
	}

	b, err := json.MarshalIndent(seed, "", "  ")
	if err != nil {
		exitErr("encode", err)
	}
	fmt.Println(string(b))
}
