// Package generator implements the row generator capability used by entities:
// naive (callables and row sequences), sampling (records drawn from a file)
// and the SCD Type 2 decorator, plus the fan-out producers that decide how
// many rows an iteration emits.
package generator

import (
	"math/rand"

	"github.com/Lumos-Labs-HQ/starseed/internal/types"
)

// Kind identifies a row generator variant.
type Kind int

const (
	KindNaive Kind = iota
	KindSampling
	KindSCD
)

func (k Kind) String() string {
	switch k {
	case KindSampling:
		return "sampling"
	case KindSCD:
		return "scd"
	default:
		return "naive"
	}
}

// RowContext is what a generator sees when producing one row.
type RowContext struct {
	// Entity is the name of the entity being generated.
	Entity string
	// Dataset holds every entity generated so far. Read only.
	Dataset *types.Dataset
	// Row is a copy of the columns assembled so far for this row: the id
	// column, relation keys and pulled-through parent columns.
	Row types.Row
	// Rand is the model's random source.
	Rand *rand.Rand
}

// RowGenerator produces the content of one row.
type RowGenerator interface {
	Kind() Kind
	Generate(rc *RowContext) (types.Row, error)
}

// Versioned is a generator that also decides the fan-out of each iteration
// and keeps the same instance id across that fan-out.
type Versioned interface {
	RowGenerator
	Fanout
	// MarkMutating adds columns whose values may change between versions.
	MarkMutating(cols ...string)
}

// Closer is implemented by generators holding pull-based sequences.
type Closer interface {
	Close() error
}
