package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/Lumos-Labs-HQ/starseed/internal/apperrors"
	"github.com/Lumos-Labs-HQ/starseed/internal/generator"
	"github.com/Lumos-Labs-HQ/starseed/internal/seeder"
)

// ModelFile is the YAML description of a star schema.
type ModelFile struct {
	Entities []EntityDef `yaml:"entities"`

	dir string
}

// EntityDef mirrors the options of seeder.BuildEntity. Generated columns are
// declared with Columns since a file cannot hold a Go function.
type EntityDef struct {
	Kind                    string                 `yaml:"kind"`
	Name                    string                 `yaml:"name"`
	NumIterations           any                    `yaml:"num_iterations"`
	NumEntitiesPerIteration any                    `yaml:"num_entities_per_iteration"`
	Relations               []map[string]any       `yaml:"relations"`
	Schema                  []map[string]any       `yaml:"schema"`
	Columns                 []generator.ColumnSpec `yaml:"columns"`

	MutationRate any      `yaml:"mutation_rate"`
	MutatingCols []string `yaml:"mutating_cols"`
	MinValidFrom string   `yaml:"min_valid_from"`
	MaxValidFrom string   `yaml:"max_valid_from"`
	HighDate     string   `yaml:"high_date"`

	FilePath   string   `yaml:"file_path"`
	FileType   string   `yaml:"file_type"`
	SampleCols []string `yaml:"sample_cols"`
	HasHeader  *bool    `yaml:"has_header"`
}

func LoadModel(path string) (*ModelFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model file: %w", err)
	}
	var m ModelFile
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, apperrors.Configf("failed to parse model file %s: %v", path, err)
	}
	if len(m.Entities) == 0 {
		return nil, apperrors.Configf("model file %s declares no entities", path)
	}
	m.dir = filepath.Dir(path)
	return &m, nil
}

// Specs converts the file into entity specs. Relative file paths are resolved
// against the model file's directory.
func (m *ModelFile) Specs() []seeder.Spec {
	specs := make([]seeder.Spec, 0, len(m.Entities))
	for _, e := range m.Entities {
		kind := e.Kind
		if kind == "" {
			kind = "naive"
		}
		o := map[string]any{
			"name":           e.Name,
			"num_iterations": e.NumIterations,
		}
		setIf(o, "num_entities_per_iteration", e.NumEntitiesPerIteration, e.NumEntitiesPerIteration != nil)
		setIf(o, "relations", e.Relations, len(e.Relations) > 0)
		setIf(o, "schema", e.Schema, len(e.Schema) > 0)
		setIf(o, "columns", e.Columns, len(e.Columns) > 0)
		setIf(o, "mutation_rate", e.MutationRate, e.MutationRate != nil)
		setIf(o, "mutating_cols", e.MutatingCols, len(e.MutatingCols) > 0)
		setIf(o, "min_valid_from", e.MinValidFrom, e.MinValidFrom != "")
		setIf(o, "max_valid_from", e.MaxValidFrom, e.MaxValidFrom != "")
		setIf(o, "high_date", e.HighDate, e.HighDate != "")
		setIf(o, "file_type", e.FileType, e.FileType != "")
		setIf(o, "sample_cols", e.SampleCols, len(e.SampleCols) > 0)
		setIf(o, "has_header", derefBool(e.HasHeader), e.HasHeader != nil)
		if e.FilePath != "" {
			path := e.FilePath
			if !filepath.IsAbs(path) && m.dir != "" {
				path = filepath.Join(m.dir, path)
			}
			o["file_path"] = path
		}
		specs = append(specs, seeder.Spec{Kind: kind, Options: o})
	}
	return specs
}

func setIf(o map[string]any, key string, v any, ok bool) {
	if ok {
		o[key] = v
	}
}

func derefBool(b *bool) bool {
	return b != nil && *b
}
