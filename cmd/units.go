package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/norgeo/kvsok/pkg/kartverket"
)

var unitsCmd = &cobra.Command{
	Use:   "units",
	Short: "List administrative units",
}

var countiesCmd = &cobra.Command{
	Use:   "counties",
	Short: "List counties",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv(cfg)
		if err != nil {
			return err
		}
		defer e.Close()
		return printUnits(cmd.Context(), e.client.ListCounties)
	},
}

var municipalitiesCmd = &cobra.Command{
	Use:   "municipalities",
	Short: "List municipalities",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv(cfg)
		if err != nil {
			return err
		}
		defer e.Close()
		return printUnits(cmd.Context(), e.client.ListMunicipalities)
	},
}

func printUnits(ctx context.Context, list func(context.Context) ([]kartverket.AdminUnit, error)) error {
	units, err := list(ctx)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NUMBER\tNAME")
	for _, u := range units {
		fmt.Fprintf(w, "%s\t%s\n", u.Number, u.Name)
	}
	return w.Flush()
}

func init() {
	unitsCmd.AddCommand(countiesCmd)
	unitsCmd.AddCommand(municipalitiesCmd)
	rootCmd.AddCommand(unitsCmd)
}
