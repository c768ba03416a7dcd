package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/norgeo/kvsok/internal/layers"
)

var layersCmd = &cobra.Command{
	Use:   "layers",
	Short: "Inspect and export saved layers",
}

var layersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved layers",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv(cfg)
		if err != nil {
			return err
		}
		defer e.Close()

		all, err := e.store.Layers(cmd.Context())
		if err != nil {
			return err
		}
		scheme := e.materializer.Scheme()

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tKIND\tEPSG\tFIELDS")
		for _, l := range all {
			records, err := e.store.Records(cmd.Context(), l.Name)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "%s\t%s\t%d\t%d fields, %d records\n",
				l.Name, l.Kind, l.EPSG, len(l.Fields), len(records))
			for _, f := range l.Fields {
				// Layers declared before type names were persisted fall
				// back to the active scheme.
				name := f.TypeName
				if name == "" {
					name = scheme.TypeName(f.Type)
				}
				fmt.Fprintf(w, "\t  %s\t%s\t\n", f.Name, name)
			}
		}
		return w.Flush()
	},
}

var layersExportCmd = &cobra.Command{
	Use:   "export <layer> <path.shp>",
	Short: "Export a layer to a shapefile",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv(cfg)
		if err != nil {
			return err
		}
		defer e.Close()

		if err := layers.ExportShapefile(cmd.Context(), e.store, args[0], args[1]); err != nil {
			return err
		}
		fmt.Printf("exported %s to %s\n", args[0], args[1])
		return nil
	},
}

func init() {
	layersCmd.AddCommand(layersListCmd)
	layersCmd.AddCommand(layersExportCmd)
	rootCmd.AddCommand(layersCmd)
}
