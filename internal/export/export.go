// Package export writes generated datasets to disk.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Lumos-Labs-HQ/starseed/internal/apperrors"
	"github.com/Lumos-Labs-HQ/starseed/internal/typemap"
	"github.com/Lumos-Labs-HQ/starseed/internal/types"
)

const (
	FormatCSV    = "csv"
	FormatJSON   = "json"
	FormatSchema = "schema"
	FormatDBT    = "dbt"
)

var Formats = []string{FormatCSV, FormatJSON, FormatSchema, FormatDBT}

const csvTimeLayout = "2006-01-02 15:04:05"

// Write exports ds in every requested format and returns the written paths.
// name is the dbt schema file name, without extension.
func Write(ds *types.Dataset, dir string, formats []string, tm *typemap.TypeMap, name string) ([]string, error) {
	var paths []string
	for _, f := range formats {
		var (
			written []string
			err     error
		)
		switch strings.ToLower(strings.TrimSpace(f)) {
		case FormatCSV:
			written, err = ToCSV(ds, dir)
		case FormatJSON:
			written, err = ToJSON(ds, dir)
		case FormatSchema:
			written, err = ToSchemaSnapshot(ds, dir)
		case FormatDBT:
			var path string
			path, err = ToDBTSchema(ds, tm, dir, name)
			written = []string{path}
		default:
			return paths, apperrors.Configf("unknown export format %q (supported: %s)", f, strings.Join(Formats, ", "))
		}
		if err != nil {
			return paths, err
		}
		paths = append(paths, written...)
	}
	return paths, nil
}

// ToCSV writes <entity>.csv per entity: one line per version of every
// instance, with the entity's columns as header.
func ToCSV(ds *types.Dataset, dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create export directory: %w", err)
	}

	var paths []string
	for name, in := range ds.All() {
		path := filepath.Join(dir, name+".csv")
		if err := writeCSV(path, in); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeCSV(path string, in *types.Instances) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create CSV file for %s: %w", in.Name(), err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	headers := in.Columns()
	if err := writer.Write(headers); err != nil {
		return fmt.Errorf("failed to write CSV header for %s: %w", in.Name(), err)
	}

	values := make([]string, len(headers))
	for row := range in.Rows() {
		for i, header := range headers {
			values[i] = csvValue(row[header])
		}
		if err := writer.Write(values); err != nil {
			return fmt.Errorf("failed to write CSV row for %s: %w", in.Name(), err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV for %s: %w", in.Name(), err)
	}
	return file.Close()
}

func csvValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case time.Time:
		return t.Format(csvTimeLayout)
	default:
		return fmt.Sprintf("%v", t)
	}
}

// ToJSON writes <entity>.json per entity: an array of every row.
func ToJSON(ds *types.Dataset, dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create export directory: %w", err)
	}

	var paths []string
	for name, in := range ds.All() {
		rows := make([]types.Row, 0, in.RowCount())
		for row := range in.Rows() {
			rows = append(rows, row)
		}
		if rows == nil {
			rows = []types.Row{}
		}

		jsonData, err := json.MarshalIndent(rows, "", "  ")
		if err != nil {
			return paths, fmt.Errorf("failed to marshal %s: %w", name, err)
		}
		path := filepath.Join(dir, name+".json")
		if err := os.WriteFile(path, jsonData, 0644); err != nil {
			return paths, fmt.Errorf("failed to write file: %w", err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// ColumnType is one entry of a schema snapshot.
type ColumnType struct {
	Name string              `yaml:"name"`
	Type typemap.LogicalType `yaml:"type"`
}

// Snapshot describes the columns of one generated entity.
type Snapshot struct {
	Entity   string       `yaml:"entity"`
	IDColumn string       `yaml:"id_column"`
	Rows     int          `yaml:"rows"`
	Columns  []ColumnType `yaml:"columns"`
}

// SnapshotOf detects column types from the first row of the entity.
func SnapshotOf(in *types.Instances) Snapshot {
	s := Snapshot{Entity: in.Name(), IDColumn: in.IDColumn(), Rows: in.RowCount()}
	first, _ := in.First()
	for _, col := range in.Columns() {
		s.Columns = append(s.Columns, ColumnType{Name: col, Type: typemap.Detect(first[col])})
	}
	return s
}

// ToSchemaSnapshot writes <entity>.schema.yml per entity.
func ToSchemaSnapshot(ds *types.Dataset, dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create export directory: %w", err)
	}

	var paths []string
	for name, in := range ds.All() {
		data, err := yaml.Marshal(SnapshotOf(in))
		if err != nil {
			return paths, fmt.Errorf("failed to marshal schema of %s: %w", name, err)
		}
		path := filepath.Join(dir, name+".schema.yml")
		if err := os.WriteFile(path, data, 0644); err != nil {
			return paths, fmt.Errorf("failed to write file: %w", err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// ToDBTSchema writes <name>.yml mapping every entity's columns to warehouse
// types, for dbt seed column_types.
func ToDBTSchema(ds *types.Dataset, tm *typemap.TypeMap, dir, name string) (string, error) {
	if tm == nil {
		var err error
		if tm, err = typemap.ForAdapter(""); err != nil {
			return "", err
		}
	}
	if name == "" {
		name = "seeds"
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}

	doc := &yaml.Node{Kind: yaml.MappingNode}
	for entity, in := range ds.All() {
		first, _ := in.First()
		colTypes := &yaml.Node{Kind: yaml.MappingNode}
		for _, col := range in.Columns() {
			colTypes.Content = append(colTypes.Content,
				scalar(col), scalar(tm.ResolveValue(first[col])))
		}
		entry := &yaml.Node{Kind: yaml.MappingNode, Content: []*yaml.Node{scalar("column_types"), colTypes}}
		doc.Content = append(doc.Content, scalar(entity), entry)
	}

	data, err := yaml.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("failed to marshal dbt schema: %w", err)
	}
	path := filepath.Join(dir, name+".yml")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	return path, nil
}

func scalar(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
}
