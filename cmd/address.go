package main

import (
	"github.com/spf13/cobra"

	"github.com/norgeo/kvsok/pkg/kartverket"
)

var (
	addressNumber string
	addressLetter string
	addressPage   int
	addressSave   bool
)

var addressCmd = &cobra.Command{
	Use:   "address [street]",
	Short: "Search the road-address registry",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv(cfg)
		if err != nil {
			return err
		}
		defer e.Close()

		q := kartverket.AddressQuery{
			Number:   addressNumber,
			Letter:   addressLetter,
			PageSize: cfg.Address.PageSize,
		}
		if len(args) > 0 {
			q.Street = args[0]
		}

		set, err := e.orchestrator.SearchAddresses(cmd.Context(), q, addressPage)
		if err != nil {
			return err
		}
		printResultSet(set)
		return saveSet(cmd.Context(), e, set, addressSave)
	},
}

func init() {
	addressCmd.Flags().StringVar(&addressNumber, "number", "", "house number")
	addressCmd.Flags().StringVar(&addressLetter, "letter", "", "house letter")
	addressCmd.Flags().IntVar(&addressPage, "page", 0, "result page (zero-based)")
	addressCmd.Flags().BoolVar(&addressSave, "save", false, "save complete results to the address layer")
	rootCmd.AddCommand(addressCmd)
}
