package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Lumos-Labs-HQ/starseed/internal/config"
	"github.com/Lumos-Labs-HQ/starseed/template"
)

func TestInitializeProjectModelGenerates(t *testing.T) {
	t.Chdir(t.TempDir())
	require.NoError(t, initializeProject(template.SQLite))

	for _, f := range []string{"starseed.config.json", "starseed.model.yml", ".env"} {
		assert.FileExists(t, f)
	}
	env, err := os.ReadFile(".env")
	require.NoError(t, err)
	assert.Contains(t, string(env), "sqlite://")

	cfg := &config.Config{ModelPath: "starseed.model.yml", OutputDir: "data", Formats: []string{"csv", "dbt"},
		Seed: 7, Seeded: true, Warehouse: config.Warehouse{Adapter: "sqlite", Name: "seeds"}}
	model, err := buildModel(cfg, zap.NewNop())
	require.NoError(t, err)
	defer model.Close()

	ds, err := model.GenerateAll()
	require.NoError(t, err)
	assert.Equal(t, []string{"customer", "product", "sale"}, ds.Names())

	sales, _ := ds.Get("sale")
	assert.Equal(t, 1500, sales.RowCount())

	require.NoError(t, writeDataset(cfg, ds, cfg.OutputDir))
	assert.FileExists(t, filepath.Join("data", "sale.csv"))
	assert.FileExists(t, filepath.Join("data", "seeds.yml"))
}

func TestHandleEnvFileKeepsExistingURL(t *testing.T) {
	t.Chdir(t.TempDir())
	require.NoError(t, os.WriteFile(".env", []byte("DATABASE_URL=postgres://x"), 0644))
	require.NoError(t, handleEnvFile("DATABASE_URL=sqlite://y\n"))

	data, err := os.ReadFile(".env")
	require.NoError(t, err)
	assert.Equal(t, "DATABASE_URL=postgres://x", string(data))

	require.NoError(t, os.WriteFile(".env", []byte("OTHER=1"), 0644))
	require.NoError(t, handleEnvFile("DATABASE_URL=sqlite://y\n"))
	data, err = os.ReadFile(".env")
	require.NoError(t, err)
	assert.Contains(t, string(data), "OTHER=1\n")
	assert.Contains(t, string(data), "DATABASE_URL=sqlite://y")
}

func TestApplyGenerateFlags(t *testing.T) {
	cmd := &cobra.Command{}
	cmd.Flags().AddFlagSet(generateCmd.Flags())
	require.NoError(t, cmd.Flags().Parse([]string{"--seed", "9", "--format", "json,schema", "--out", "tmp"}))

	cfg := &config.Config{OutputDir: "data", Formats: []string{"csv"}}
	applyGenerateFlags(cmd, cfg)

	assert.True(t, cfg.Seeded)
	assert.Equal(t, int64(9), cfg.Seed)
	assert.Equal(t, []string{"json", "schema"}, cfg.Formats)
	assert.Equal(t, "tmp", cfg.OutputDir)
	assert.False(t, cfg.Progress)
}
