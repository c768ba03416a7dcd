package main

import (
	"github.com/spf13/cobra"

	"github.com/norgeo/kvsok/pkg/kartverket"
)

var (
	placePage int
	placeSave bool
)

var placeCmd = &cobra.Command{
	Use:   "place <name>",
	Short: "Search the place-name registry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv(cfg)
		if err != nil {
			return err
		}
		defer e.Close()

		set, err := e.orchestrator.SearchPlaceNames(cmd.Context(), kartverket.PlaceQuery{
			Name:     args[0],
			PageSize: cfg.PlaceName.PageSize,
		}, placePage)
		if err != nil {
			return err
		}
		printResultSet(set)
		return saveSet(cmd.Context(), e, set, placeSave)
	},
}

func init() {
	placeCmd.Flags().IntVar(&placePage, "page", 1, "result page (one-based)")
	placeCmd.Flags().BoolVar(&placeSave, "save", false, "save complete results to the place-name layer")
	rootCmd.AddCommand(placeCmd)
}
