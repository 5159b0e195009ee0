package seeder

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Lumos-Labs-HQ/starseed/internal/apperrors"
	"github.com/Lumos-Labs-HQ/starseed/internal/generator"
	"github.com/Lumos-Labs-HQ/starseed/internal/schema"
)

// Spec is the config form of one entity: a generator kind plus its options.
type Spec struct {
	Kind    string
	Options map[string]any
}

var baseKinds = map[string]generator.Kind{
	"naive":    generator.KindNaive,
	"sampling": generator.KindSampling,
	"sample":   generator.KindSampling,
}

var (
	scdMarkers   = []string{"type2_scd", "scd_type2", "scd2"}
	kindSuffixes = []string{"_profiler", "profiler", "_generator", "generator"}
)

// ResolveKind maps a kind name such as "naive", "sampling_generator" or
// "scd2_naive" to its base generator kind, reporting whether it is wrapped
// in the SCD decorator.
func ResolveKind(kind string) (generator.Kind, bool, error) {
	norm := strings.ToLower(strings.TrimSpace(kind))

	scd := false
	for _, marker := range scdMarkers {
		if rest, ok := strings.CutPrefix(norm, marker+"_"); ok {
			norm, scd = rest, true
			break
		}
		if rest, ok := strings.CutSuffix(norm, "_"+marker); ok {
			norm, scd = rest, true
			break
		}
	}
	for _, suffix := range kindSuffixes {
		if rest, ok := strings.CutSuffix(norm, suffix); ok && rest != "" {
			norm = rest
			break
		}
	}

	k, ok := baseKinds[norm]
	if !ok {
		return 0, false, fmt.Errorf("%w: %q", apperrors.ErrUnsupportedGeneratorKind, kind)
	}
	return k, scd, nil
}

// FromList builds a model from entity specs, in order.
func FromList(specs []Spec, opts ...Option) (*Model, error) {
	entities := make([]*Entity, 0, len(specs))
	for i, s := range specs {
		e, err := BuildEntity(s)
		if err != nil {
			return nil, fmt.Errorf("entity %d: %w", i, err)
		}
		entities = append(entities, e)
	}
	return NewModel(entities, opts...)
}

// BuildEntity builds one entity and its generator from a spec.
func BuildEntity(s Spec) (*Entity, error) {
	kind, scd, err := ResolveKind(s.Kind)
	if err != nil {
		return nil, err
	}
	o := s.Options

	name, ok := o["name"].(string)
	if !ok || strings.TrimSpace(name) == "" {
		return nil, apperrors.Configf("name is required")
	}
	iterations, err := intOption(o, "num_iterations")
	if err != nil {
		return nil, fmt.Errorf("entity %s: %w", name, err)
	}
	rels, err := schema.RelationsFrom(o["relations"])
	if err != nil {
		return nil, fmt.Errorf("entity %s: %w", name, err)
	}
	sch, err := schema.FromList(o["schema"])
	if err != nil {
		return nil, fmt.Errorf("entity %s: %w", name, err)
	}
	fanout, err := generator.ParseFanout(o["num_entities_per_iteration"])
	if err != nil {
		return nil, fmt.Errorf("entity %s: %w", name, err)
	}

	var gen generator.RowGenerator
	switch kind {
	case generator.KindSampling:
		gen, err = samplingFrom(o)
	default:
		gen, err = naiveFrom(o)
	}
	if err != nil {
		return nil, fmt.Errorf("entity %s: %w", name, err)
	}

	if scd {
		gen, err = scdFrom(gen, o)
		if err != nil {
			return nil, fmt.Errorf("entity %s: %w", name, err)
		}
	}

	return NewEntity(name, iterations, gen,
		WithRelations(rels...),
		WithSchema(sch),
		WithFanout(fanout),
	)
}

func naiveFrom(o map[string]any) (generator.RowGenerator, error) {
	src, ok := o["entity_generator"]
	if !ok || src == nil {
		if cols, ok := o["columns"].([]generator.ColumnSpec); ok {
			f, err := generator.NewFaker(cols)
			if err != nil {
				return nil, err
			}
			return generator.NewNaive(f.Row)
		}
		return nil, apperrors.Configf("entity_generator is required")
	}
	return generator.NewNaive(src)
}

func samplingFrom(o map[string]any) (generator.RowGenerator, error) {
	cfg := generator.SamplingConfig{}
	var err error
	if cfg.FilePath, err = stringOption(o, "file_path"); err != nil {
		return nil, err
	}
	if cfg.FileType, err = stringOption(o, "file_type"); err != nil {
		return nil, err
	}
	if cfg.SampleCols, err = stringsOption(o, "sample_cols"); err != nil {
		return nil, err
	}
	if v, ok := o["has_header"]; ok && v != nil {
		b, ok := v.(bool)
		if !ok {
			return nil, apperrors.Configf("has_header must be a boolean, got %T", v)
		}
		cfg.HasHeader = &b
	}
	return generator.NewSampling(cfg)
}

func scdFrom(base generator.RowGenerator, o map[string]any) (generator.RowGenerator, error) {
	cfg := generator.SCDConfig{}
	switch r := o["mutation_rate"].(type) {
	case nil:
		return nil, apperrors.Configf("mutation_rate is required for scd generators")
	case float64:
		cfg.MutationRate = r
	case float32:
		cfg.MutationRate = float64(r)
	case int:
		cfg.MutationRate = float64(r)
	default:
		return nil, apperrors.Configf("mutation_rate must be a number, got %T", r)
	}

	var err error
	if cfg.MutatingColumns, err = stringsOption(o, "mutating_cols"); err != nil {
		return nil, err
	}
	if cfg.MinValidFrom, err = timeOption(o, "min_valid_from"); err != nil {
		return nil, err
	}
	if cfg.MaxValidFrom, err = timeOption(o, "max_valid_from"); err != nil {
		return nil, err
	}
	if cfg.HighDate, err = timeOption(o, "high_date"); err != nil {
		return nil, err
	}
	return generator.NewSCD(base, cfg)
}

func intOption(o map[string]any, key string) (int, error) {
	switch v := o[key].(type) {
	case nil:
		return 0, apperrors.Configf("%s is required", key)
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil || n < 0 {
			return 0, apperrors.Configf("%s %q is not a non-negative integer", key, v)
		}
		return n, nil
	default:
		return 0, apperrors.Configf("%s must be an integer, got %T", key, v)
	}
}

func stringOption(o map[string]any, key string) (string, error) {
	switch v := o[key].(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	default:
		return "", apperrors.Configf("%s must be a string, got %T", key, v)
	}
}

func stringsOption(o map[string]any, key string) ([]string, error) {
	switch v := o[key].(type) {
	case nil:
		return nil, nil
	case []string:
		return v, nil
	case string:
		return []string{v}, nil
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, apperrors.Configf("%s entries must be strings, got %T", key, item)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, apperrors.Configf("%s must be a list of strings, got %T", key, v)
	}
}

func timeOption(o map[string]any, key string) (time.Time, error) {
	switch v := o[key].(type) {
	case nil:
		return time.Time{}, nil
	case time.Time:
		return v, nil
	case string:
		t, err := schema.ParseTime(v)
		if err != nil {
			return time.Time{}, apperrors.Configf("%s: %v", key, err)
		}
		return t, nil
	default:
		return time.Time{}, apperrors.Configf("%s must be a time, got %T", key, v)
	}
}
