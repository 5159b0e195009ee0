package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/Lumos-Labs-HQ/starseed/internal/config"
	"github.com/Lumos-Labs-HQ/starseed/internal/logging"
)

var (
	cfgFile  string
	logLevel string
	Version  = "0.4.0"
)

func showBanner() {
	greenColor := color.New(color.FgGreen, color.Bold)

	banner := []string{
		"╔══════════════════════════════════════════════════════════════╗",
		"║    ███████╗████████╗ █████╗ ██████╗ ███████╗███████╗██████╗  ║",
		"║    ██╔════╝╚══██╔══╝██╔══██╗██╔══██╗██╔════╝██╔════╝██╔══██╗ ║",
		"║    ███████╗   ██║   ███████║██████╔╝███████╗█████╗  ██║  ██║ ║",
		"║    ╚════██║   ██║   ██╔══██║██╔══██╗╚════██║██╔══╝  ██║  ██║ ║",
		"║    ███████║   ██║   ██║  ██║██║  ██║███████║███████╗██████╔╝ ║",
		"║    ╚══════╝   ╚═╝   ╚═╝  ╚═╝╚═╝  ╚═╝╚══════╝╚══════╝╚═════╝  ║",
		"║                                                              ║",
		"║          ✦ Synthetic Star Schema Data Generator ✦            ║",
		"║                                                              ║",
		"║       Dimensions • Facts • SCD Type 2 • CSV • dbt • SQL      ║",
		"╚══════════════════════════════════════════════════════════════╝",
	}

	for _, line := range banner {
		greenColor.Println(line)
	}

	fmt.Print("                        ")
	color.New(color.FgCyan, color.Bold).Print("Version: ")
	color.New(color.FgYellow, color.Bold).Printf("%s\n", Version)
}

var rootCmd = &cobra.Command{
	Use:   "starseed",
	Short: "Generate synthetic star schema datasets",
	Long: `
Starseed generates synthetic datasets for star schemas: dimension and fact
tables whose rows reference each other through foreign keys, including
slowly changing dimensions with versioned history.

Entities are declared in a model file (starseed.model.yml) and generated in
dependency order. Datasets can be written as CSV, JSON, schema snapshots or
a dbt seed schema, and loaded into a database.

Database Support:
- PostgreSQL (pgx or lib/pq)
- MySQL
- SQLite`,
	SilenceUsage:  true,
	SilenceErrors: true,

	Run: func(cmd *cobra.Command, args []string) {
		showVersion, _ := cmd.Flags().GetBool("version")
		if showVersion {
			fmt.Printf("Starseed CLI version %s\n", Version)
			os.Exit(0)
		}

		if len(args) == 0 {
			showBanner()
			fmt.Println()
			cmd.Help()
		}
	},
}

func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		color.Red("❌ %v", err)
	}
	return err
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./starseed.config.json)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")

	rootCmd.Flags().BoolP("version", "v", false, "Show CLI version")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(typemapCmd)
}

func initConfig() {
	if err := godotenv.Load(); err != nil {
		godotenv.Load(".env")
		godotenv.Load(".env.local")
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("json")
		viper.SetConfigName("starseed.config")
	}

	viper.SetEnvPrefix("starseed")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		// fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadConfig reads and validates the config, and builds the logger it asks for.
// --log-level wins over the config file.
func loadConfig() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid config: %w", err)
	}

	level := cfg.Logging.Level
	if logLevel != "" {
		level = logLevel
	}
	logger, err := logging.New(level)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}
