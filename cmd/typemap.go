package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Lumos-Labs-HQ/starseed/internal/typemap"
)

var (
	typemapAdapter string
	typemapOut     string
)

var typemapCmd = &cobra.Command{
	Use:   "typemap",
	Short: "Show or write the warehouse type map",
	Long: `
Print how logical column types map to warehouse types for an adapter,
with the overrides of the config file applied.

Adapters: postgres, bigquery, snowflake, redshift, mysql, sqlite`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}
		defer logger.Sync()

		if cmd.Flags().Changed("adapter") {
			cfg.Warehouse.Adapter = typemapAdapter
		}
		tm, err := cfg.TypeMap()
		if err != nil {
			return err
		}

		if typemapOut != "" {
			if err := tm.WriteYAML(typemapOut); err != nil {
				return err
			}
			color.Green("✅ Type map written to %s", typemapOut)
			return nil
		}

		color.New(color.FgCyan, color.Bold).Printf("Type map for %s\n", tm.Adapter)
		for _, t := range tm.SortedTypes() {
			marker := ""
			if tm.IsOverridden(t) {
				marker = color.YellowString(" (override)")
			}
			fmt.Printf("  %-10s -> %s%s\n", t, tm.Resolve(t), marker)
		}
		return nil
	},
}

func init() {
	typemapCmd.Flags().StringVar(&typemapAdapter, "adapter", "", fmt.Sprintf("warehouse adapter %v", typemap.Adapters()))
	typemapCmd.Flags().StringVarP(&typemapOut, "out", "o", "", "write the type map as YAML to this file")
}
