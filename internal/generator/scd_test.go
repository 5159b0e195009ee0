package generator

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lumos-Labs-HQ/starseed/internal/apperrors"
	"github.com/Lumos-Labs-HQ/starseed/internal/types"
)

func counterBase(t *testing.T) RowGenerator {
	t.Helper()
	gen, err := NewNaive(RowsFunc(func(i int) types.Row {
		return types.Row{"city": i, "name": i}
	}))
	require.NoError(t, err)
	return gen
}

func TestNewSCDValidation(t *testing.T) {
	base := counterBase(t)

	tests := []struct {
		name string
		cfg  SCDConfig
	}{
		{"missing rate", SCDConfig{}},
		{"rate one", SCDConfig{MutationRate: 1}},
		{"negative rate", SCDConfig{MutationRate: -0.2}},
		{"nan rate", SCDConfig{MutationRate: math.NaN()}},
		{"inverted window", SCDConfig{
			MutationRate: 0.5,
			MinValidFrom: time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC),
			MaxValidFrom: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSCD(base, tt.cfg)
			assert.ErrorIs(t, err, apperrors.ErrConfiguration)
		})
	}

	_, err := NewSCD(nil, SCDConfig{MutationRate: 0.5})
	assert.ErrorIs(t, err, apperrors.ErrConfiguration)
}

func TestSCDMeanVersionCount(t *testing.T) {
	scd, err := NewSCD(counterBase(t), SCDConfig{MutationRate: 0.5})
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(42))
	const instances = 10000
	total := 0
	for range instances {
		n, err := scd.Next(rng)
		require.NoError(t, err)
		require.GreaterOrEqual(t, n, 1)
		total += n
	}

	mean := float64(total) / instances
	assert.InDelta(t, 2.0, mean, 0.1)
}

func TestSCDVersions(t *testing.T) {
	scd, err := NewSCD(counterBase(t), SCDConfig{
		MutationRate:    0.9,
		MutatingColumns: []string{"city"},
	})
	require.NoError(t, err)
	assert.Equal(t, KindSCD, scd.Kind())

	rc := newContext(5)
	var n int
	for n < 3 {
		n, err = scd.Next(rc.Rand)
		require.NoError(t, err)
	}

	rows := make([]types.Row, n)
	for i := range rows {
		rows[i], err = scd.Generate(rc)
		require.NoError(t, err)
	}

	for i, row := range rows {
		assert.Equal(t, rows[0]["name"], row["name"], "non-mutating column must not change")
		assert.Equal(t, i, row["city"])

		from := row[ValidFromColumn].(time.Time)
		to := row[ValidToColumn].(time.Time)
		assert.False(t, from.Before(DefaultMinValidFrom))
		assert.True(t, from.Before(DefaultMaxValidFrom))
		assert.False(t, to.Before(from))
		if i+1 < n {
			assert.Equal(t, rows[i+1][ValidFromColumn], to)
		} else {
			assert.Equal(t, DefaultHighDate, to)
		}
	}
}

func TestSCDEmptyMutatingSetMeansAll(t *testing.T) {
	scd, err := NewSCD(counterBase(t), SCDConfig{MutationRate: 0.9})
	require.NoError(t, err)

	rc := newContext(9)
	var n int
	for n < 2 {
		n, err = scd.Next(rc.Rand)
		require.NoError(t, err)
	}

	first, err := scd.Generate(rc)
	require.NoError(t, err)
	second, err := scd.Generate(rc)
	require.NoError(t, err)
	assert.NotEqual(t, first["name"], second["name"])
	assert.NotEqual(t, first["city"], second["city"])
}

func TestSCDMarkMutating(t *testing.T) {
	scd, err := NewSCD(counterBase(t), SCDConfig{MutationRate: 0.3, MutatingColumns: []string{"city"}})
	require.NoError(t, err)

	scd.MarkMutating("city", "name")
	assert.Equal(t, []string{"city", "name"}, scd.MutatingColumns())
}

func TestGeometric(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	assert.Equal(t, 1, Geometric(rng, 1))
	for range 1000 {
		assert.GreaterOrEqual(t, Geometric(rng, 0.2), 1)
	}
}
