package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Lumos-Labs-HQ/starseed/internal/config"
	"github.com/Lumos-Labs-HQ/starseed/internal/database"
	"github.com/Lumos-Labs-HQ/starseed/internal/database/mongodb"
	"github.com/Lumos-Labs-HQ/starseed/internal/export"
	"github.com/Lumos-Labs-HQ/starseed/internal/seeder"
	"github.com/Lumos-Labs-HQ/starseed/internal/types"
)

var (
	genModel    string
	genOut      string
	genFormats  []string
	genSeed     int64
	genProgress bool
	genLoad     bool
	genDrop     bool
	genMore     map[string]int
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a dataset from the model file",
	Long: `
Generate every entity of the model file in dependency order and write the
dataset to the output directory.

Supported formats: csv (default), json, schema, dbt

Examples:
  starseed generate
  starseed generate --seed 42 --format csv,dbt
  starseed generate --load --drop
  starseed generate --more sale=1000`,
	Aliases: []string{"gen"},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}
		defer logger.Sync()

		applyGenerateFlags(cmd, cfg)
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}

		model, err := buildModel(cfg, logger)
		if err != nil {
			return err
		}
		defer model.Close()

		start := time.Now()
		ds, err := model.GenerateAll()
		if err != nil {
			return err
		}
		logger.Info("generated dataset", zap.Int("entities", ds.Len()), zap.Duration("took", time.Since(start)))

		if err := writeDataset(cfg, ds, cfg.OutputDir); err != nil {
			return err
		}

		if len(genMore) > 0 {
			more, err := model.GenerateMore(genMore)
			if err != nil {
				return err
			}
			if err := writeDataset(cfg, more, filepath.Join(cfg.OutputDir, "more")); err != nil {
				return err
			}
		}

		if genLoad {
			if err := loadDataset(cmd.Context(), cfg, ds, logger); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	generateCmd.Flags().StringVarP(&genModel, "model", "m", "", "model file (default from config, ./starseed.model.yml)")
	generateCmd.Flags().StringVarP(&genOut, "out", "o", "", "output directory")
	generateCmd.Flags().StringSliceVar(&genFormats, "format", nil, "output formats: csv, json, schema, dbt")
	generateCmd.Flags().Int64Var(&genSeed, "seed", 0, "random seed for reproducible datasets")
	generateCmd.Flags().BoolVar(&genProgress, "progress", false, "show per-entity progress")
	generateCmd.Flags().BoolVar(&genLoad, "load", false, "load the dataset into the configured database")
	generateCmd.Flags().BoolVar(&genDrop, "drop", false, "drop existing tables before loading")
	generateCmd.Flags().StringToIntVar(&genMore, "more", nil, "generate additional rows per entity after the dataset (entity=iterations)")
}

func applyGenerateFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("model") {
		cfg.ModelPath = genModel
	}
	if flags.Changed("out") {
		cfg.OutputDir = genOut
	}
	if flags.Changed("format") {
		cfg.Formats = genFormats
	}
	if flags.Changed("seed") {
		cfg.Seed = genSeed
		cfg.Seeded = true
	}
	if flags.Changed("progress") {
		cfg.Progress = genProgress
	}
	if flags.Changed("drop") {
		cfg.Database.DropExisting = genDrop
	}
}

func buildModel(cfg *config.Config, logger *zap.Logger) (*seeder.Model, error) {
	mf, err := config.LoadModel(cfg.ModelPath)
	if err != nil {
		return nil, err
	}

	opts := []seeder.Option{seeder.WithLogger(logger)}
	if cfg.Seeded {
		opts = append(opts, seeder.WithSeed(cfg.Seed))
	}
	if cfg.Progress {
		opts = append(opts, seeder.WithProgress(os.Stdout))
	}
	return seeder.FromList(mf.Specs(), opts...)
}

func writeDataset(cfg *config.Config, ds *types.Dataset, dir string) error {
	tm, err := cfg.TypeMap()
	if err != nil {
		return err
	}
	files, err := export.Write(ds, dir, cfg.Formats, tm, cfg.Warehouse.Name)
	if err != nil {
		return err
	}

	fmt.Println()
	for _, name := range ds.Names() {
		in, _ := ds.Get(name)
		color.New(color.FgCyan).Printf("  %-24s", name)
		fmt.Printf("%6d instances  %7d rows\n", in.Len(), in.RowCount())
	}
	fmt.Println()
	color.Green("✅ Wrote %d files to %s", len(files), dir)
	return nil
}

func loadDataset(ctx context.Context, cfg *config.Config, ds *types.Dataset, logger *zap.Logger) error {
	if ctx == nil {
		ctx = context.Background()
	}

	dbURL, err := cfg.GetDatabaseURL()
	if err != nil {
		return err
	}

	if mongodb.IsProvider(cfg.Database.Provider) {
		return loadDocuments(ctx, cfg, ds, dbURL, logger)
	}

	adapter, err := database.NewAdapter(cfg.Database.Provider)
	if err != nil {
		return err
	}

	if err := adapter.Connect(ctx, dbURL); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer adapter.Close()

	if err := adapter.Ping(ctx); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	result, err := database.Load(ctx, adapter, ds, database.LoadOptions{
		BatchSize:    cfg.Database.BatchSize,
		DropExisting: cfg.Database.DropExisting,
		Logger:       logger,
	})
	if err != nil {
		return err
	}

	total := 0
	for _, n := range result.Rows {
		total += n
	}
	color.Green("✅ Loaded %d rows into %d tables (%s)", total, len(result.Tables), adapter.Provider())
	return nil
}

func loadDocuments(ctx context.Context, cfg *config.Config, ds *types.Dataset, dbURL string, logger *zap.Logger) error {
	loader, err := mongodb.Connect(ctx, dbURL)
	if err != nil {
		return err
	}
	defer loader.Close(ctx)

	counts, err := loader.Load(ctx, ds, mongodb.Options{
		BatchSize:    cfg.Database.BatchSize,
		DropExisting: cfg.Database.DropExisting,
		Logger:       logger,
	})
	if err != nil {
		return err
	}

	total := 0
	for _, n := range counts {
		total += n
	}
	color.Green("✅ Loaded %d documents into %d collections (%s)", total, len(counts), loader.Database())
	return nil
}
