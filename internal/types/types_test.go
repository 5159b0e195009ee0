package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstancesAppend(t *testing.T) {
	in := NewInstances("customer", "customer_id")

	in.Append("a", Row{"customer_id": "a", "name": "x"}, []string{"customer_id", "name"})
	in.Append("a", Row{"customer_id": "a", "name": "y"}, []string{"customer_id", "name"})
	in.Append("b", Row{"customer_id": "b", "name": "z", "extra": 1}, []string{"customer_id", "name", "extra"})

	assert.Equal(t, []string{"a", "b"}, in.IDs())
	assert.Equal(t, 2, in.Len())
	assert.Equal(t, 3, in.RowCount())
	assert.Len(t, in.Versions("a"), 2)
	assert.Equal(t, []string{"customer_id", "name", "extra"}, in.Columns())
	assert.True(t, in.Has("b"))
	assert.False(t, in.Has("c"))

	first, ok := in.First()
	require.True(t, ok)
	assert.Equal(t, "x", first["name"])

	var names []any
	for row := range in.Rows() {
		names = append(names, row["name"])
	}
	assert.Equal(t, []any{"x", "y", "z"}, names)
}

func TestInstancesFirstEmpty(t *testing.T) {
	_, ok := NewInstances("e", "e_id").First()
	assert.False(t, ok)
}

func TestDatasetOrder(t *testing.T) {
	ds := NewDataset()
	ds.Add(NewInstances("customer", "customer_id"))
	ds.Add(NewInstances("order", "order_id"))
	ds.Add(NewInstances("customer", "customer_id"))

	assert.Equal(t, []string{"customer", "order"}, ds.Names())
	assert.Equal(t, 2, ds.Len())

	var seen []string
	for name := range ds.All() {
		seen = append(seen, name)
	}
	assert.Equal(t, []string{"customer", "order"}, seen)

	_, ok := ds.Get("missing")
	assert.False(t, ok)
}

func TestRowClone(t *testing.T) {
	r := Row{"a": 1}
	c := r.Clone()
	c["a"] = 2
	assert.Equal(t, 1, r["a"])
	assert.NotNil(t, Row(nil).Clone())
}
