package generator

import (
	"iter"

	"github.com/Lumos-Labs-HQ/starseed/internal/apperrors"
	"github.com/Lumos-Labs-HQ/starseed/internal/types"
)

// RowProducer is a lazy, possibly infinite sequence of rows consumed one row
// per call. Finite producers return apperrors.ErrSequenceExhausted once drained.
type RowProducer interface {
	Next() (types.Row, error)
	Finite() bool
}

type sliceProducer struct {
	rows []types.Row
	pos  int
}

// Rows returns a finite producer over rows.
func Rows(rows ...types.Row) RowProducer {
	return &sliceProducer{rows: rows}
}

func (p *sliceProducer) Next() (types.Row, error) {
	if p.pos >= len(p.rows) {
		return nil, apperrors.ErrSequenceExhausted
	}
	row := p.rows[p.pos]
	p.pos++
	return row, nil
}

func (p *sliceProducer) Finite() bool { return true }

type funcProducer struct {
	fn func(i int) types.Row
	i  int
}

// RowsFunc returns an infinite producer calling fn with 0, 1, 2, ...
func RowsFunc(fn func(i int) types.Row) RowProducer {
	return &funcProducer{fn: fn}
}

func (p *funcProducer) Next() (types.Row, error) {
	row := p.fn(p.i)
	p.i++
	return row, nil
}

func (p *funcProducer) Finite() bool { return false }

// SeqProducer pulls rows from an iterator. Close releases the iterator.
type SeqProducer struct {
	next   func() (types.Row, bool)
	stop   func()
	finite bool
}

// FromSeq wraps seq. finite declares whether seq is expected to end.
func FromSeq(seq iter.Seq[types.Row], finite bool) *SeqProducer {
	next, stop := iter.Pull(seq)
	return &SeqProducer{next: next, stop: stop, finite: finite}
}

func (p *SeqProducer) Next() (types.Row, error) {
	row, ok := p.next()
	if !ok {
		return nil, apperrors.ErrSequenceExhausted
	}
	return row, nil
}

func (p *SeqProducer) Finite() bool { return p.finite }

func (p *SeqProducer) Close() error {
	p.stop()
	return nil
}
