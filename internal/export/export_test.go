package export

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/Lumos-Labs-HQ/starseed/internal/apperrors"
	"github.com/Lumos-Labs-HQ/starseed/internal/typemap"
	"github.com/Lumos-Labs-HQ/starseed/internal/types"
)

func sampleDataset() *types.Dataset {
	from := time.Date(2016, 3, 4, 5, 6, 7, 0, time.UTC)
	to := time.Date(2017, 1, 1, 0, 0, 0, 0, time.UTC)

	cust := types.NewInstances("customer", "customer_id")
	cols := []string{"customer_id", "name", "score", "valid_from_timestamp"}
	cust.Append("a1", types.Row{"customer_id": "a1", "name": "Ann", "score": 1.5, "valid_from_timestamp": from}, cols)
	cust.Append("a1", types.Row{"customer_id": "a1", "name": "Ann", "score": 2.5, "valid_from_timestamp": to}, cols)
	cust.Append("b2", types.Row{"customer_id": "b2", "name": nil, "score": 3.0, "valid_from_timestamp": from}, cols)

	order := types.NewInstances("order", "order_id")
	order.Append("o1", types.Row{"order_id": "o1", "customer_id": "a1", "qty": 2, "paid": true},
		[]string{"order_id", "customer_id", "qty", "paid"})

	ds := types.NewDataset()
	ds.Add(cust)
	ds.Add(order)
	return ds
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return records
}

func TestToCSV(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	paths, err := ToCSV(sampleDataset(), dir)
	require.NoError(t, err)
	require.Len(t, paths, 2)

	records := readCSV(t, filepath.Join(dir, "customer.csv"))
	require.Len(t, records, 4, "header plus one line per version")
	assert.Equal(t, []string{"customer_id", "name", "score", "valid_from_timestamp"}, records[0])
	assert.Equal(t, []string{"a1", "Ann", "1.5", "2016-03-04 05:06:07"}, records[1])
	assert.Equal(t, []string{"b2", "", "3", "2016-03-04 05:06:07"}, records[3])
}

func TestToJSON(t *testing.T) {
	dir := t.TempDir()
	_, err := ToJSON(sampleDataset(), dir)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "customer.json"))
	require.NoError(t, err)
	var rows []map[string]any
	require.NoError(t, json.Unmarshal(data, &rows))
	require.Len(t, rows, 3)
	assert.Equal(t, "2016-03-04T05:06:07Z", rows[0]["valid_from_timestamp"])
}

func TestToSchemaSnapshot(t *testing.T) {
	dir := t.TempDir()
	_, err := ToSchemaSnapshot(sampleDataset(), dir)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "order.schema.yml"))
	require.NoError(t, err)
	var snap Snapshot
	require.NoError(t, yaml.Unmarshal(data, &snap))

	assert.Equal(t, "order", snap.Entity)
	assert.Equal(t, "order_id", snap.IDColumn)
	assert.Equal(t, 1, snap.Rows)
	assert.Equal(t, []ColumnType{
		{Name: "order_id", Type: typemap.String},
		{Name: "customer_id", Type: typemap.String},
		{Name: "qty", Type: typemap.Int},
		{Name: "paid", Type: typemap.Bool},
	}, snap.Columns)
}

func TestToDBTSchema(t *testing.T) {
	tm, err := typemap.ForAdapter("bigquery")
	require.NoError(t, err)

	dir := t.TempDir()
	path, err := ToDBTSchema(sampleDataset(), tm, dir, "star")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "star.yml"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc map[string]map[string]map[string]string
	require.NoError(t, yaml.Unmarshal(data, &doc))

	assert.Equal(t, map[string]string{
		"customer_id":          "string",
		"name":                 "string",
		"score":                "float",
		"valid_from_timestamp": "timestamp",
	}, doc["customer"]["column_types"])
	assert.Equal(t, "integer", doc["order"]["column_types"]["qty"])
}

func TestWrite(t *testing.T) {
	dir := t.TempDir()
	paths, err := Write(sampleDataset(), dir, []string{"csv", "JSON", "schema", "dbt"}, nil, "")
	require.NoError(t, err)
	assert.Len(t, paths, 7)
	assert.FileExists(t, filepath.Join(dir, "seeds.yml"))

	_, err = Write(sampleDataset(), dir, []string{"parquet"}, nil, "")
	assert.ErrorIs(t, err, apperrors.ErrConfiguration)
}
