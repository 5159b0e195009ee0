package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"

	"github.com/Lumos-Labs-HQ/starseed/internal/database/common"
)

type Adapter struct {
	common.Base
}

func New() *Adapter {
	return &Adapter{
		Base: common.Base{
			QB:        squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
			Quote:     common.DoubleQuote,
			MaxParams: 32766,
		},
	}
}

func (s *Adapter) Provider() string { return "sqlite" }

func (s *Adapter) Connect(ctx context.Context, url string) error {
	// Remove sqlite:// prefix if present
	dbPath := strings.TrimPrefix(url, "sqlite://")

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return fmt.Errorf("failed to open SQLite connection: %w", err)
	}
	// One writer at a time; a single connection also keeps :memory: databases alive.
	db.SetMaxOpenConns(1)
	s.DB = db
	return nil
}
