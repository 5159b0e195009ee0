package generator

import (
	"math"
	"math/rand"
	"slices"
	"time"

	"github.com/Lumos-Labs-HQ/starseed/internal/apperrors"
	"github.com/Lumos-Labs-HQ/starseed/internal/types"
)

const (
	ValidFromColumn = "valid_from_timestamp"
	ValidToColumn   = "valid_to_timestamp"
)

var (
	DefaultMinValidFrom = time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC)
	DefaultMaxValidFrom = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	DefaultHighDate     = time.Date(9999, 12, 31, 23, 59, 59, 0, time.UTC)
)

// SCDConfig configures the Type 2 versioning of a wrapped generator.
type SCDConfig struct {
	// MutationRate in (0,1). The version count of an instance is geometric
	// with success probability 1-MutationRate, so its mean is 1/(1-MutationRate).
	MutationRate float64
	// MutatingColumns may change between versions. Empty means every column.
	MutatingColumns []string
	// Zero values fall back to the package defaults.
	MinValidFrom time.Time
	MaxValidFrom time.Time
	HighDate     time.Time
}

type window struct {
	from, to time.Time
}

// SCD decorates a generator with slowly changing dimension Type 2 history.
// Each logical instance is emitted as several versions sharing one id; the
// first version is generated in full, later versions copy forward every
// non-mutating column from the previous version.
type SCD struct {
	base     RowGenerator
	rate     float64
	mutating []string

	minFrom time.Time
	maxFrom time.Time
	high    time.Time

	windows []window
	step    int
	last    types.Row
}

func NewSCD(base RowGenerator, cfg SCDConfig) (*SCD, error) {
	if base == nil {
		return nil, apperrors.Configf("scd generator requires a base generator")
	}
	if math.IsNaN(cfg.MutationRate) || cfg.MutationRate <= 0 || cfg.MutationRate >= 1 {
		return nil, apperrors.Configf("mutation_rate must be between 0 and 1 exclusive, got %v", cfg.MutationRate)
	}

	s := &SCD{
		base:    base,
		rate:    cfg.MutationRate,
		minFrom: cfg.MinValidFrom,
		maxFrom: cfg.MaxValidFrom,
		high:    cfg.HighDate,
	}
	if s.minFrom.IsZero() {
		s.minFrom = DefaultMinValidFrom
	}
	if s.maxFrom.IsZero() {
		s.maxFrom = DefaultMaxValidFrom
	}
	if s.high.IsZero() {
		s.high = DefaultHighDate
	}
	if !s.minFrom.Before(s.maxFrom) {
		return nil, apperrors.Configf("min_valid_from %s must be before max_valid_from %s",
			s.minFrom.Format(time.RFC3339), s.maxFrom.Format(time.RFC3339))
	}
	s.MarkMutating(cfg.MutatingColumns...)
	return s, nil
}

func (s *SCD) Kind() Kind { return KindSCD }

// Base returns the wrapped generator.
func (s *SCD) Base() RowGenerator { return s.base }

func (s *SCD) MutationRate() float64 { return s.rate }

// MutatingColumns returns the configured mutating columns; empty means all.
func (s *SCD) MutatingColumns() []string { return s.mutating }

func (s *SCD) MarkMutating(cols ...string) {
	for _, c := range cols {
		if !slices.Contains(s.mutating, c) {
			s.mutating = append(s.mutating, c)
		}
	}
}

// Next starts a new logical instance: it draws the instance's version count,
// lays out its validity windows and resets the generator to its first version.
func (s *SCD) Next(rng *rand.Rand) (int, error) {
	n := Geometric(rng, 1-s.rate)
	s.windows = s.layoutWindows(rng, n)
	s.step = 0
	s.last = nil
	return n, nil
}

func (s *SCD) Generate(rc *RowContext) (types.Row, error) {
	if s.step >= len(s.windows) {
		if _, err := s.Next(rc.Rand); err != nil {
			return nil, err
		}
	}

	fresh, err := s.base.Generate(rc)
	if err != nil {
		return nil, err
	}

	var row types.Row
	if s.step == 0 || s.last == nil {
		row = fresh.Clone()
	} else {
		row = make(types.Row, len(s.last))
		for col, prev := range s.last {
			row[col] = prev
			if s.mutates(col) {
				if v, ok := fresh[col]; ok {
					row[col] = v
				}
			}
		}
	}
	s.last = row

	out := row.Clone()
	w := s.windows[s.step]
	out[ValidFromColumn] = w.from
	out[ValidToColumn] = w.to
	s.step++
	return out, nil
}

func (s *SCD) Close() error {
	if c, ok := s.base.(Closer); ok {
		return c.Close()
	}
	return nil
}

func (s *SCD) mutates(col string) bool {
	return len(s.mutating) == 0 || slices.Contains(s.mutating, col)
}

// layoutWindows splits [minFrom, maxFrom) into n consecutive windows starting
// at sorted uniform instants. The last window stays open until the high date.
func (s *SCD) layoutWindows(rng *rand.Rand, n int) []window {
	span := s.maxFrom.Sub(s.minFrom)
	starts := make([]time.Time, n)
	for i := range starts {
		starts[i] = s.minFrom.Add(time.Duration(rng.Int63n(int64(span))))
	}
	slices.SortFunc(starts, func(a, b time.Time) int { return a.Compare(b) })

	windows := make([]window, n)
	for i := range windows {
		windows[i].from = starts[i]
		if i+1 < n {
			windows[i].to = starts[i+1]
		} else {
			windows[i].to = s.high
		}
	}
	return windows
}

// Geometric draws the number of Bernoulli(p) trials up to and including the
// first success. The result is at least 1 and has mean 1/p.
func Geometric(rng *rand.Rand, p float64) int {
	if p >= 1 {
		return 1
	}
	u := 1 - rng.Float64() // (0, 1]
	return 1 + int(math.Floor(math.Log(u)/math.Log(1-p)))
}
