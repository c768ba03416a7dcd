package main

import (
	"github.com/spf13/cobra"

	"github.com/norgeo/kvsok/pkg/kartverket"
)

var (
	propertyMunicipality string
	propertyGnr          int
	propertyBnr          int
	propertyFnr          int
	propertySnr          int
	propertySave         bool
)

var propertyCmd = &cobra.Command{
	Use:   "property",
	Short: "Geocode a cadastral property",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv(cfg)
		if err != nil {
			return err
		}
		defer e.Close()

		set, err := e.orchestrator.SearchProperty(cmd.Context(), kartverket.PropertyQuery{
			MunicipalityNumber: propertyMunicipality,
			Gnr:                propertyGnr,
			Bnr:                propertyBnr,
			Fnr:                propertyFnr,
			Snr:                propertySnr,
		})
		if err != nil {
			return err
		}
		printResultSet(set)
		return saveSet(cmd.Context(), e, set, propertySave)
	},
}

func init() {
	propertyCmd.Flags().StringVar(&propertyMunicipality, "municipality", "", "four-digit municipality number")
	propertyCmd.Flags().IntVar(&propertyGnr, "gnr", 0, "cadastral unit number")
	propertyCmd.Flags().IntVar(&propertyBnr, "bnr", 0, "property unit number")
	propertyCmd.Flags().IntVar(&propertyFnr, "fnr", 0, "leasehold number")
	propertyCmd.Flags().IntVar(&propertySnr, "snr", 0, "section number")
	propertyCmd.Flags().BoolVar(&propertySave, "save", false, "save complete results to the property layer")
	_ = propertyCmd.MarkFlagRequired("municipality")
	_ = propertyCmd.MarkFlagRequired("gnr")
	_ = propertyCmd.MarkFlagRequired("bnr")
	rootCmd.AddCommand(propertyCmd)
}
