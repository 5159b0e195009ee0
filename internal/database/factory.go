package database

import (
	"strings"

	"github.com/Lumos-Labs-HQ/starseed/internal/apperrors"
	"github.com/Lumos-Labs-HQ/starseed/internal/database/mysql"
	"github.com/Lumos-Labs-HQ/starseed/internal/database/postgres"
	"github.com/Lumos-Labs-HQ/starseed/internal/database/sqlite"
)

var Providers = []string{"postgresql", "postgres", "pgx", "pq", "libpq", "mysql", "sqlite", "sqlite3"}

func NewAdapter(provider string) (DatabaseAdapter, error) {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "postgresql", "postgres", "pgx":
		return postgres.New(), nil
	case "pq", "libpq":
		return postgres.NewPQ(), nil
	case "mysql":
		return mysql.New(), nil
	case "sqlite", "sqlite3":
		return sqlite.New(), nil
	default:
		return nil, apperrors.Configf("unsupported database provider %q (supported: %s)",
			provider, strings.Join(Providers, ", "))
	}
}
