package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/norgeo/kvsok/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "kvsok",
	Short: "Search Norwegian Kartverket registries",
	Long:  "Searches the Kartverket address, property, county, municipality and place-name registries, reconciles geometry into the project reference system and saves results as persistent layers.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
