package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/norgeo/kvsok/internal/search"
)

var searchCmd = &cobra.Command{
	Use:   "search <text>",
	Short: "Free-text search across the address and place-name registries",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv(cfg)
		if err != nil {
			return err
		}
		defer e.Close()

		sets, err := e.orchestrator.SearchAll(cmd.Context(), args[0])
		for _, cat := range search.Categories() {
			set, ok := sets[cat]
			if !ok {
				continue
			}
			fmt.Printf("\n%s (%d results)\n", cat, len(set.Results))
			printResultSet(set)
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)
}
