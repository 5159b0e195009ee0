package database

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Lumos-Labs-HQ/starseed/internal/typemap"
	"github.com/Lumos-Labs-HQ/starseed/internal/types"
)

const DefaultBatchSize = 500

type LoadOptions struct {
	BatchSize    int
	DropExisting bool
	// TypeMap defaults to the map of the adapter's provider.
	TypeMap *typemap.TypeMap
	Logger  *zap.Logger
}

// LoadResult counts the rows inserted per entity, in load order.
type LoadResult struct {
	Tables []string
	Rows   map[string]int
}

// Load creates one table per entity and inserts every row of ds inside a
// single transaction. Any failure rolls the whole load back.
func Load(ctx context.Context, adapter DatabaseAdapter, ds *types.Dataset, opts LoadOptions) (*LoadResult, error) {
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	tm := opts.TypeMap
	if tm == nil {
		var err error
		if tm, err = typemap.ForAdapter(adapter.Provider()); err != nil {
			return nil, err
		}
	}

	tx, err := adapter.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	result := &LoadResult{Rows: make(map[string]int)}
	for name, in := range ds.All() {
		n, err := loadEntity(ctx, adapter, tx, in, tm, opts)
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				return nil, fmt.Errorf("load failed and rollback failed: %v (original: %w)", rbErr, err)
			}
			return nil, err
		}
		result.Tables = append(result.Tables, name)
		result.Rows[name] = n
		logger.Debug("loaded entity", zap.String("entity", name), zap.Int("rows", n))
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return result, nil
}

func loadEntity(ctx context.Context, adapter DatabaseAdapter, ex Execer, in *types.Instances, tm *typemap.TypeMap, opts LoadOptions) (int, error) {
	cols := in.Columns()
	if len(cols) == 0 {
		return 0, nil
	}

	if opts.DropExisting {
		if err := adapter.DropTable(ctx, ex, in.Name()); err != nil {
			return 0, err
		}
	}

	first, _ := in.First()
	defs := make([]Column, len(cols))
	for i, c := range cols {
		defs[i] = Column{Name: c, Type: tm.ResolveValue(first[c])}
	}
	if err := adapter.CreateTable(ctx, ex, in.Name(), defs); err != nil {
		return 0, err
	}

	inserted := 0
	batch := make([][]any, 0, opts.BatchSize)
	flush := func() error {
		if err := adapter.InsertRows(ctx, ex, in.Name(), cols, batch); err != nil {
			return err
		}
		inserted += len(batch)
		batch = batch[:0]
		return nil
	}

	for row := range in.Rows() {
		values := make([]any, len(cols))
		for i, c := range cols {
			values[i] = sqlValue(row[c])
		}
		batch = append(batch, values)
		if len(batch) >= opts.BatchSize {
			if err := flush(); err != nil {
				return inserted, err
			}
		}
	}
	if len(batch) > 0 {
		if err := flush(); err != nil {
			return inserted, err
		}
	}
	return inserted, nil
}

// sqlValue passes driver-native values through and stringifies the rest.
func sqlValue(v any) any {
	switch t := v.(type) {
	case nil, string, bool, int, int32, int64, float32, float64, time.Time, []byte:
		return t
	case int8:
		return int64(t)
	case int16:
		return int64(t)
	case uint8:
		return int64(t)
	case uint16:
		return int64(t)
	case uint32:
		return int64(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}
