package common

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
)

// Execer is satisfied by *sql.DB and *sql.Tx.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Column is one column of a table to create.
type Column struct {
	Name string
	Type string
}

// Base implements the table and insert operations shared by every
// database/sql backed adapter.
type Base struct {
	DB *sql.DB
	QB squirrel.StatementBuilderType
	// Quote quotes one identifier.
	Quote func(string) string
	// MaxParams is the bound parameter limit of one statement.
	MaxParams int
}

func (b *Base) Close() error {
	if b.DB != nil {
		return b.DB.Close()
	}
	return nil
}

func (b *Base) Ping(ctx context.Context) error {
	if b.DB == nil {
		return fmt.Errorf("not connected")
	}
	return b.DB.PingContext(ctx)
}

func (b *Base) Begin(ctx context.Context) (*sql.Tx, error) {
	if b.DB == nil {
		return nil, fmt.Errorf("not connected")
	}
	return b.DB.BeginTx(ctx, nil)
}

func (b *Base) CreateTable(ctx context.Context, ex Execer, table string, columns []Column) error {
	if len(columns) == 0 {
		return fmt.Errorf("table %s has no columns", table)
	}
	defs := make([]string, len(columns))
	for i, c := range columns {
		defs[i] = fmt.Sprintf("%s %s", b.Quote(c.Name), c.Type)
	}
	query := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", b.Quote(table), strings.Join(defs, ", "))
	if _, err := ex.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create table %s: %w", table, err)
	}
	return nil
}

func (b *Base) DropTable(ctx context.Context, ex Execer, table string) error {
	if _, err := ex.ExecContext(ctx, "DROP TABLE IF EXISTS "+b.Quote(table)); err != nil {
		return fmt.Errorf("failed to drop table %s: %w", table, err)
	}
	return nil
}

// InsertRows inserts rows with one multi-row INSERT per chunk, keeping every
// statement under MaxParams bound parameters.
func (b *Base) InsertRows(ctx context.Context, ex Execer, table string, columns []string, rows [][]any) error {
	if len(rows) == 0 {
		return nil
	}
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = b.Quote(c)
	}

	chunk := len(rows)
	if b.MaxParams > 0 && len(columns) > 0 {
		chunk = min(chunk, max(1, b.MaxParams/len(columns)))
	}

	for start := 0; start < len(rows); start += chunk {
		end := min(start+chunk, len(rows))
		insert := b.QB.Insert(b.Quote(table)).Columns(quoted...)
		for _, row := range rows[start:end] {
			insert = insert.Values(row...)
		}
		query, args, err := insert.ToSql()
		if err != nil {
			return fmt.Errorf("failed to build insert for %s: %w", table, err)
		}
		if _, err := ex.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to insert into %s: %w", table, err)
		}
	}
	return nil
}

// DoubleQuote quotes an identifier the ANSI way.
func DoubleQuote(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
