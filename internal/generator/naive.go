package generator

import (
	"errors"
	"fmt"
	"iter"

	"github.com/Lumos-Labs-HQ/starseed/internal/apperrors"
	"github.com/Lumos-Labs-HQ/starseed/internal/types"
)

// Naive wraps a user function or row sequence. The calling convention is
// resolved once, when the generator is built.
type Naive struct {
	call     func(rc *RowContext) (types.Row, error)
	producer RowProducer
}

// NewNaive accepts one of:
//
//	func() types.Row
//	func() map[string]any
//	func() (types.Row, error)
//	func(*RowContext) types.Row
//	func(*RowContext) (types.Row, error)
//	RowProducer
//	iter.Seq[types.Row] (treated as infinite)
//	[]types.Row (finite)
func NewNaive(source any) (*Naive, error) {
	n := &Naive{}
	switch src := source.(type) {
	case nil:
		return nil, apperrors.Configf("entity_generator is required")
	case func() types.Row:
		n.call = func(*RowContext) (types.Row, error) { return src(), nil }
	case func() map[string]any:
		n.call = func(*RowContext) (types.Row, error) { return types.Row(src()), nil }
	case func() (types.Row, error):
		n.call = func(*RowContext) (types.Row, error) { return src() }
	case func(*RowContext) types.Row:
		n.call = func(rc *RowContext) (types.Row, error) { return src(rc), nil }
	case func(*RowContext) (types.Row, error):
		n.call = src
	case RowProducer:
		n.producer = src
	case iter.Seq[types.Row]:
		n.producer = FromSeq(src, false)
	case func(func(types.Row) bool):
		n.producer = FromSeq(src, false)
	case []types.Row:
		n.producer = Rows(src...)
	default:
		return nil, apperrors.Configf("unsupported entity_generator %T", source)
	}

	if n.producer != nil {
		p := n.producer
		n.call = func(*RowContext) (types.Row, error) {
			row, err := p.Next()
			if errors.Is(err, apperrors.ErrSequenceExhausted) && p.Finite() {
				return nil, fmt.Errorf("finite entity_generator ran out of rows: %w", err)
			}
			return row, err
		}
	}
	return n, nil
}

func (n *Naive) Kind() Kind { return KindNaive }

func (n *Naive) Generate(rc *RowContext) (types.Row, error) {
	return n.call(rc)
}

func (n *Naive) Close() error {
	if c, ok := n.producer.(Closer); ok {
		return c.Close()
	}
	return nil
}
