package main

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/norgeo/kvsok/internal/search"
	"github.com/norgeo/kvsok/pkg/kartverket"
)

var (
	countySave       bool
	municipalitySave bool
)

// resolveUnit finds a unit in the pick list by number or case-insensitive
// name.
func resolveUnit(units []kartverket.AdminUnit, arg string) (kartverket.AdminUnit, error) {
	for _, u := range units {
		if u.Number == arg || strings.EqualFold(u.Name, arg) {
			return u, nil
		}
	}
	return kartverket.AdminUnit{}, eris.Errorf("no administrative unit matches %q", arg)
}

var countyCmd = &cobra.Command{
	Use:   "county <number-or-name>",
	Short: "Fetch a county boundary",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv(cfg)
		if err != nil {
			return err
		}
		defer e.Close()

		return runAreaSearch(cmd.Context(), e, args[0], countySave,
			e.client.ListCounties, e.orchestrator.SearchCounty)
	},
}

var municipalityCmd = &cobra.Command{
	Use:   "municipality <number-or-name>",
	Short: "Fetch a municipality boundary",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv(cfg)
		if err != nil {
			return err
		}
		defer e.Close()

		return runAreaSearch(cmd.Context(), e, args[0], municipalitySave,
			e.client.ListMunicipalities, e.orchestrator.SearchMunicipality)
	},
}

func runAreaSearch(
	ctx context.Context,
	e *env,
	arg string,
	save bool,
	list func(context.Context) ([]kartverket.AdminUnit, error),
	fetch func(context.Context, kartverket.AdminUnit) (*search.ResultSet, error),
) error {
	units, err := list(ctx)
	if err != nil {
		return err
	}
	unit, err := resolveUnit(units, arg)
	if err != nil {
		return err
	}

	set, err := fetch(ctx, unit)
	if err != nil {
		return err
	}
	printResultSet(set)
	return saveSet(ctx, e, set, save)
}

func init() {
	countyCmd.Flags().BoolVar(&countySave, "save", false, "save the boundary to the county layer")
	municipalityCmd.Flags().BoolVar(&municipalitySave, "save", false, "save the boundary to the municipality layer")
	rootCmd.AddCommand(countyCmd)
	rootCmd.AddCommand(municipalityCmd)
}
