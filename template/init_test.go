package template

import (
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lumos-Labs-HQ/starseed/internal/config"
)

func TestValidateDatabaseType(t *testing.T) {
	assert.Equal(t, SQLite, ValidateDatabaseType("sqlite3"))
	assert.Equal(t, MongoDB, ValidateDatabaseType("mongo"))
	assert.Equal(t, PostgreSQL, ValidateDatabaseType("postgres"))
	assert.Equal(t, PostgreSQL, ValidateDatabaseType("oracle"))
}

func TestGetConfigIsValid(t *testing.T) {
	for _, dbType := range []DatabaseType{SQLite, MySQL, PostgreSQL, MongoDB} {
		t.Run(string(dbType), func(t *testing.T) {
			tmpl := NewProjectTemplate(dbType)

			v := viper.New()
			v.SetConfigType("json")
			require.NoError(t, v.ReadConfig(strings.NewReader(tmpl.GetConfig())))
			cfg, err := config.LoadFrom(v)
			require.NoError(t, err)
			require.NoError(t, cfg.Validate())

			assert.Equal(t, string(dbType), cfg.Database.Provider)
			assert.Equal(t, []string{"csv", "dbt"}, cfg.Formats)
			assert.True(t, strings.HasPrefix(tmpl.GetEnvTemplate(), "DATABASE_URL="))
		})
	}
}
