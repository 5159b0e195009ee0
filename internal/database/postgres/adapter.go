package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/lib/pq"

	"github.com/Lumos-Labs-HQ/starseed/internal/database/common"
)

const (
	DriverPGX = "pgx"
	DriverPQ  = "postgres"
)

type Adapter struct {
	common.Base
	driver string
}

// New returns an adapter on the pgx database/sql driver.
func New() *Adapter {
	return &Adapter{
		Base: common.Base{
			QB:        squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
			Quote:     func(name string) string { return pgx.Identifier{name}.Sanitize() },
			MaxParams: 65535,
		},
		driver: DriverPGX,
	}
}

// NewPQ returns an adapter on the lib/pq driver.
func NewPQ() *Adapter {
	a := New()
	a.driver = DriverPQ
	a.Quote = pq.QuoteIdentifier
	return a
}

func (p *Adapter) Provider() string { return "postgres" }

func (p *Adapter) Driver() string { return p.driver }

func (p *Adapter) Connect(ctx context.Context, url string) error {
	db, err := sql.Open(p.driver, url)
	if err != nil {
		return fmt.Errorf("failed to open PostgreSQL connection: %w", err)
	}
	db.SetMaxOpenConns(2)
	db.SetConnMaxLifetime(15 * time.Minute)
	db.SetConnMaxIdleTime(3 * time.Minute)

	p.DB = db
	return nil
}
