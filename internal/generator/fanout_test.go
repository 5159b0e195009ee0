package generator

import (
	"math/rand"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lumos-Labs-HQ/starseed/internal/apperrors"
)

func TestParseFanout(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	tests := []struct {
		name  string
		value any
		want  int
	}{
		{"default", nil, 1},
		{"int", 10, 10},
		{"int64", int64(3), 3},
		{"digit string", "12", 12},
		{"padded digit string", " 4 ", 4},
		{"zero", 0, 0},
		{"func", func() int { return 5 }, 5},
		{"func with error", func() (int, error) { return 6, nil }, 6},
		{"rand func", func(r *rand.Rand) int { return 2 + r.Intn(1) }, 2},
		{"sequence", slices.Values([]int{9, 8}), 9},
		{"fanout", Constant(11), 11},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := ParseFanout(tt.value)
			require.NoError(t, err)
			n, err := f.Next(rng)
			require.NoError(t, err)
			assert.Equal(t, tt.want, n)
		})
	}
}

func TestParseFanoutRejects(t *testing.T) {
	for _, v := range []any{2.5, float32(1), "1.5", "-3", "", -1, true, []int{1}} {
		_, err := ParseFanout(v)
		assert.ErrorIs(t, err, apperrors.ErrConfiguration, "%#v", v)
	}
}

func TestFanoutNegativeAtRuntime(t *testing.T) {
	f, err := ParseFanout(func() int { return -2 })
	require.NoError(t, err)

	_, err = f.Next(nil)
	assert.ErrorIs(t, err, apperrors.ErrConfiguration)
}

func TestSeqFanoutExhausted(t *testing.T) {
	f := FanoutFromSeq(slices.Values([]int{1}))
	defer f.Close()

	n, err := f.Next(nil)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = f.Next(nil)
	assert.ErrorIs(t, err, apperrors.ErrSequenceExhausted)
}
