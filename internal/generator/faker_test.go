package generator

import (
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lumos-Labs-HQ/starseed/internal/apperrors"
)

func ptr(f float64) *float64 { return &f }

func TestFakerRow(t *testing.T) {
	f, err := NewFaker([]ColumnSpec{
		{Name: "email"},
		{Name: "full_name"},
		{Name: "age", Type: "int", Min: ptr(18), Max: ptr(65)},
		{Name: "signup", Type: "timestamp"},
		{Name: "tier", Values: []any{"gold", "silver"}},
		{Name: "active", Type: "boolean"},
		{Name: "ref", Faker: "uuid"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"email", "full_name", "age", "signup", "tier", "active", "ref"}, f.Columns())

	rc := newContext(11)
	for range 50 {
		row, err := f.Row(rc)
		require.NoError(t, err)

		assert.Contains(t, row["email"], "@")
		assert.Contains(t, row["full_name"], " ")
		age := row["age"].(int)
		assert.True(t, age >= 18 && age <= 65)
		assert.IsType(t, time.Time{}, row["signup"])
		assert.Contains(t, []any{"gold", "silver"}, row["tier"])
		assert.IsType(t, true, row["active"])
		assert.Len(t, strings.Split(row["ref"].(string), "-"), 5)
	}
}

var uuidV4 = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-4[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)

func TestFakerUUIDIsVersion4(t *testing.T) {
	f, err := NewFaker([]ColumnSpec{
		{Name: "ref", Faker: "uuid"},
		{Name: "key", Type: "UUID"},
	})
	require.NoError(t, err)

	rc := newContext(7)
	for i := 0; i < 100; i++ {
		row, err := f.Row(rc)
		require.NoError(t, err)
		for _, col := range []string{"ref", "key"} {
			s := row[col].(string)
			assert.Regexp(t, uuidV4, s)
			id, err := uuid.Parse(s)
			require.NoError(t, err)
			assert.Equal(t, uuid.Version(4), id.Version())
			assert.Equal(t, uuid.RFC4122, id.Variant())
		}
	}
}

func TestFakerUUIDRepeatsForSeed(t *testing.T) {
	f, err := NewFaker([]ColumnSpec{{Name: "ref", Faker: "uuid"}})
	require.NoError(t, err)

	a, err := f.Row(newContext(3))
	require.NoError(t, err)
	b, err := f.Row(newContext(3))
	require.NoError(t, err)
	assert.Equal(t, a["ref"], b["ref"])
}

func TestFakerAsNaive(t *testing.T) {
	f, err := NewFaker([]ColumnSpec{{Name: "title"}})
	require.NoError(t, err)

	gen, err := NewNaive(f.Row)
	require.NoError(t, err)
	row, err := gen.Generate(newContext(1))
	require.NoError(t, err)
	assert.Contains(t, titles, row["title"])
}

func TestNewFakerErrors(t *testing.T) {
	tests := [][]ColumnSpec{
		nil,
		{{Name: ""}},
		{{Name: "a"}, {Name: "a"}},
		{{Name: "a", Faker: "ssn"}},
		{{Name: "a", Min: ptr(5), Max: ptr(1)}},
	}
	for _, cols := range tests {
		_, err := NewFaker(cols)
		assert.ErrorIs(t, err, apperrors.ErrConfiguration)
	}
}
