package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Lumos-Labs-HQ/starseed/internal/apperrors"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the model file and print the generation order",
	Long: `
Build every entity of the model file and resolve their dependency graph
without generating any data. Unknown relation targets and dependency
cycles are reported.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}
		defer logger.Sync()

		if cmd.Flags().Changed("model") {
			cfg.ModelPath, _ = cmd.Flags().GetString("model")
		}

		model, err := buildModel(cfg, logger)
		if err != nil {
			return err
		}
		defer model.Close()

		order, err := model.BuildGraph()
		if err != nil {
			var cycle *apperrors.CycleError
			if errors.As(err, &cycle) {
				return fmt.Errorf("dependency cycle: %s", strings.Join(cycle.Path, " -> "))
			}
			return err
		}

		color.Green("✅ Model %s is valid", cfg.ModelPath)
		fmt.Println()
		fmt.Println("📋 Generation order:")
		for i, name := range order {
			e, _ := model.Entity(name)
			fmt.Printf("  %2d. ", i+1)
			color.New(color.FgCyan, color.Bold).Print(name)
			if deps := model.Graph().Dependencies(name); len(deps) > 0 {
				fmt.Printf(" <- %s", strings.Join(deps, ", "))
			}
			if e.PreservesID() {
				color.New(color.FgYellow).Print(" [scd2]")
			}
			fmt.Println()
		}
		return nil
	},
}

func init() {
	validateCmd.Flags().StringP("model", "m", "", "model file (default from config, ./starseed.model.yml)")
}
