package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Lumos-Labs-HQ/starseed/template"
)

var (
	sqliteFlag     bool
	postgresqlFlag bool
	mysqlFlag      bool
	mongodbFlag    bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new Starseed project",
	Long:  `Initialize a new Starseed project with a config file, a sample star schema model and a .env file.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dbType := template.PostgreSQL
		flagCount := 0

		if sqliteFlag {
			dbType = template.SQLite
			flagCount++
		}
		if postgresqlFlag {
			dbType = template.PostgreSQL
			flagCount++
		}
		if mysqlFlag {
			dbType = template.MySQL
			flagCount++
		}
		if mongodbFlag {
			dbType = template.MongoDB
			flagCount++
		}

		if flagCount > 1 {
			return fmt.Errorf("please specify only one database type (--sqlite, --postgresql, --mysql or --mongodb)")
		}

		return initializeProject(dbType)
	},
}

func init() {
	initCmd.Flags().BoolVar(&sqliteFlag, "sqlite", false, "Initialize project for SQLite database")
	initCmd.Flags().BoolVar(&postgresqlFlag, "postgresql", false, "Initialize project for PostgreSQL database")
	initCmd.Flags().BoolVar(&mysqlFlag, "mysql", false, "Initialize project for MySQL database")
	initCmd.Flags().BoolVar(&mongodbFlag, "mongodb", false, "Initialize project for MongoDB")
}

func initializeProject(dbType template.DatabaseType) error {
	tmpl := template.NewProjectTemplate(dbType)

	directories := tmpl.GetDirectoryStructure()
	for _, dir := range directories {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	files := map[string]string{
		"starseed.config.json": tmpl.GetConfig(),
	}

	modelExists := false
	if _, err := os.Stat("starseed.model.yml"); err == nil {
		modelExists = true
	} else {
		files["starseed.model.yml"] = tmpl.GetModel()
	}

	for filePath, content := range files {
		if err := os.WriteFile(filePath, []byte(content), 0644); err != nil {
			return fmt.Errorf("failed to create file %s: %w", filePath, err)
		}
	}

	if err := handleEnvFile(tmpl.GetEnvTemplate()); err != nil {
		return fmt.Errorf("failed to handle .env file: %w", err)
	}

	fmt.Printf("✅ Successfully initialized Starseed project with %s database support\n", dbType)
	fmt.Println()
	fmt.Println("📝 Files created:")
	fmt.Println("   starseed.config.json")
	if modelExists {
		fmt.Println("ℹ️  Skipped starseed.model.yml (already exists)")
	} else {
		fmt.Println("   starseed.model.yml")
	}

	if os.Getenv("DATABASE_URL") != "" {
		fmt.Println()
		fmt.Println("ℹ️  Using existing DATABASE_URL from environment")
	}

	fmt.Println()
	fmt.Printf("🚀 Next steps:\n")
	fmt.Printf("   starseed validate          # Check the model's dependency order\n")
	fmt.Printf("   starseed generate          # Write the dataset to ./data\n")
	fmt.Printf("   starseed generate --load   # Also load it into DATABASE_URL\n")

	return nil
}

func handleEnvFile(defaultEnvContent string) error {
	envPath := ".env"

	existingContent, err := os.ReadFile(envPath)
	if err != nil {
		if os.IsNotExist(err) {
			return os.WriteFile(envPath, []byte(defaultEnvContent), 0644)
		}
		return err
	}

	existingStr := string(existingContent)
	if strings.Contains(existingStr, "DATABASE_URL") {
		return nil
	}

	if len(existingStr) > 0 && !strings.HasSuffix(existingStr, "\n") {
		existingStr += "\n"
	}

	existingStr += "\n# Added by Starseed\n" + defaultEnvContent

	return os.WriteFile(envPath, []byte(existingStr), 0644)
}
