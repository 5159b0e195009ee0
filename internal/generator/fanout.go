package generator

import (
	"iter"
	"math/rand"
	"strconv"
	"strings"

	"github.com/Lumos-Labs-HQ/starseed/internal/apperrors"
)

// Fanout decides how many rows one iteration of an entity emits.
type Fanout interface {
	Next(rng *rand.Rand) (int, error)
}

// Constant emits the same fan-out every iteration.
type Constant int

func (c Constant) Next(*rand.Rand) (int, error) { return int(c), nil }

// FanoutFunc calls a user function every iteration.
type FanoutFunc func() (int, error)

func (f FanoutFunc) Next(*rand.Rand) (int, error) {
	n, err := f()
	if err != nil {
		return 0, err
	}
	return checkFanout(n)
}

// RandFanout draws the fan-out from the model's random source.
type RandFanout func(rng *rand.Rand) int

func (f RandFanout) Next(rng *rand.Rand) (int, error) {
	return checkFanout(f(rng))
}

// SeqFanout pulls fan-out counts from a stream.
type SeqFanout struct {
	next func() (int, bool)
	stop func()
}

func FanoutFromSeq(seq iter.Seq[int]) *SeqFanout {
	next, stop := iter.Pull(seq)
	return &SeqFanout{next: next, stop: stop}
}

func (s *SeqFanout) Next(*rand.Rand) (int, error) {
	n, ok := s.next()
	if !ok {
		return 0, apperrors.ErrSequenceExhausted
	}
	return checkFanout(n)
}

func (s *SeqFanout) Close() error {
	s.stop()
	return nil
}

// ParseFanout resolves the num_entities_per_iteration option. nil means a
// constant 1; integers and digit strings are constants; functions and
// sequences are called once per iteration. Anything else, floats included,
// is a configuration error.
func ParseFanout(v any) (Fanout, error) {
	switch t := v.(type) {
	case nil:
		return Constant(1), nil
	case Fanout:
		return t, nil
	case int:
		return constant(t)
	case int32:
		return constant(int(t))
	case int64:
		return constant(int(t))
	case uint:
		return constant(int(t))
	case string:
		s := strings.TrimSpace(t)
		if s == "" || strings.TrimLeft(s, "0123456789") != "" {
			return nil, apperrors.Configf("num_entities_per_iteration %q is not numeric", t)
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return nil, apperrors.Configf("num_entities_per_iteration %q: %v", t, err)
		}
		return Constant(n), nil
	case func() int:
		return FanoutFunc(func() (int, error) { return t(), nil }), nil
	case func() (int, error):
		return FanoutFunc(t), nil
	case func(*rand.Rand) int:
		return RandFanout(t), nil
	case iter.Seq[int]:
		return FanoutFromSeq(t), nil
	case func(func(int) bool):
		return FanoutFromSeq(t), nil
	default:
		return nil, apperrors.Configf("num_entities_per_iteration must be an integer or a function, got %T", v)
	}
}

func constant(n int) (Fanout, error) {
	if _, err := checkFanout(n); err != nil {
		return nil, err
	}
	return Constant(n), nil
}

func checkFanout(n int) (int, error) {
	if n < 0 {
		return 0, apperrors.Configf("fan-out must not be negative, got %d", n)
	}
	return n, nil
}
