package database

import (
	"context"
	"database/sql"

	"github.com/Lumos-Labs-HQ/starseed/internal/database/common"
)

type (
	Execer = common.Execer
	Column = common.Column
)

// DatabaseAdapter is the write side of a SQL database a dataset is loaded into.
type DatabaseAdapter interface {
	Connect(ctx context.Context, url string) error
	Close() error
	Ping(ctx context.Context) error

	// Provider is the canonical provider name, also used as the type map adapter.
	Provider() string
	Begin(ctx context.Context) (*sql.Tx, error)

	CreateTable(ctx context.Context, ex Execer, table string, columns []Column) error
	DropTable(ctx context.Context, ex Execer, table string) error
	InsertRows(ctx context.Context, ex Execer, table string, columns []string, rows [][]any) error
}
