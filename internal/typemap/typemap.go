package typemap

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Lumos-Labs-HQ/starseed/internal/apperrors"
)

// LogicalType is the warehouse-independent type of a generated column.
type LogicalType string

const (
	String    LogicalType = "string"
	Real      LogicalType = "real"
	Int       LogicalType = "int"
	Timestamp LogicalType = "timestamp"
	Bool      LogicalType = "bool"
)

var AllLogicalTypes = []LogicalType{String, Real, Int, Timestamp, Bool}

// Detect returns the logical type of a generated value. nil and anything
// unrecognised map to String.
func Detect(v any) LogicalType {
	switch v.(type) {
	case bool:
		return Bool
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return Int
	case float32, float64:
		return Real
	case time.Time, *time.Time:
		return Timestamp
	default:
		return String
	}
}

var adapters = map[string]map[LogicalType]string{
	"postgres": {
		String: "text", Real: "real", Int: "int", Timestamp: "timestamp", Bool: "boolean",
	},
	"bigquery": {
		String: "string", Real: "float", Int: "integer", Timestamp: "timestamp", Bool: "bool",
	},
	"snowflake": {
		String: "varchar", Real: "float", Int: "number", Timestamp: "timestamp_ntz", Bool: "boolean",
	},
	"redshift": {
		String: "varchar(65535)", Real: "double precision", Int: "bigint", Timestamp: "timestamp", Bool: "boolean",
	},
	"mysql": {
		String: "text", Real: "double", Int: "bigint", Timestamp: "datetime", Bool: "boolean",
	},
	"sqlite": {
		String: "text", Real: "real", Int: "integer", Timestamp: "datetime", Bool: "integer",
	},
}

var adapterAliases = map[string]string{
	"postgresql": "postgres",
	"pq":         "postgres",
	"pgx":        "postgres",
	"libpq":      "postgres",
	"sqlite3":    "sqlite",
	"bq":         "bigquery",
}

// Adapters returns the supported adapter names, sorted.
func Adapters() []string {
	names := make([]string, 0, len(adapters))
	for k := range adapters {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// TypeMap maps logical types to the column types of one warehouse.
type TypeMap struct {
	Adapter   string                 `yaml:"adapter"`
	Mappings  map[LogicalType]string `yaml:"mappings"`
	Overrides map[LogicalType]string `yaml:"overrides,omitempty"`
	defaults  map[LogicalType]string
}

// ForAdapter returns the default map of adapter. An empty name means postgres.
func ForAdapter(adapter string) (*TypeMap, error) {
	name := strings.ToLower(strings.TrimSpace(adapter))
	if name == "" {
		name = "postgres"
	}
	if canonical, ok := adapterAliases[name]; ok {
		name = canonical
	}
	defaults, ok := adapters[name]
	if !ok {
		return nil, apperrors.Configf("unknown warehouse adapter %q (supported: %s)",
			adapter, strings.Join(Adapters(), ", "))
	}

	tm := &TypeMap{
		Adapter:   name,
		Mappings:  make(map[LogicalType]string, len(defaults)),
		Overrides: make(map[LogicalType]string),
		defaults:  defaults,
	}
	for k, v := range defaults {
		tm.Mappings[k] = v
	}
	return tm, nil
}

// Resolve returns the warehouse type of a logical type, falling back to the
// string mapping.
func (tm *TypeMap) Resolve(t LogicalType) string {
	if wt, ok := tm.Mappings[t]; ok {
		return wt
	}
	return tm.Mappings[String]
}

// ResolveValue returns the warehouse type for a generated value.
func (tm *TypeMap) ResolveValue(v any) string {
	return tm.Resolve(Detect(v))
}

func (tm *TypeMap) Override(t LogicalType, warehouseType string) {
	tm.Mappings[t] = warehouseType
	if tm.Overrides == nil {
		tm.Overrides = make(map[LogicalType]string)
	}
	// Track override only if different from default
	if def, ok := tm.defaults[t]; ok && def == warehouseType {
		delete(tm.Overrides, t)
		return
	}
	tm.Overrides[t] = warehouseType
}

// ApplyOverrides overrides every entry of m; keys must be logical type names.
func (tm *TypeMap) ApplyOverrides(m map[string]string) error {
	for k, v := range m {
		t := LogicalType(strings.ToLower(k))
		if !isLogical(t) {
			return apperrors.Configf("unknown logical type %q in overrides", k)
		}
		tm.Override(t, v)
	}
	return nil
}

func (tm *TypeMap) RestoreDefault(t LogicalType) {
	if def, ok := tm.defaults[t]; ok {
		tm.Mappings[t] = def
		delete(tm.Overrides, t)
	}
}

func (tm *TypeMap) IsOverridden(t LogicalType) bool {
	_, ok := tm.Overrides[t]
	return ok
}

// SortedTypes returns the mapped logical types sorted alphabetically.
func (tm *TypeMap) SortedTypes() []LogicalType {
	types := make([]LogicalType, 0, len(tm.Mappings))
	for k := range tm.Mappings {
		types = append(types, k)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

func (tm *TypeMap) WriteYAML(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	data, err := yaml.Marshal(tm)
	if err != nil {
		return fmt.Errorf("marshaling type map: %w", err)
	}

	return os.WriteFile(path, data, 0o644)
}

// LoadYAML reads a type map written by WriteYAML. Logical types missing from
// the file keep the adapter defaults.
func LoadYAML(path string) (*TypeMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading type map file: %w", err)
	}
	var raw TypeMap
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing type map: %w", err)
	}

	tm, err := ForAdapter(raw.Adapter)
	if err != nil {
		return nil, err
	}
	for k, v := range raw.Mappings {
		if !isLogical(k) {
			return nil, apperrors.Configf("unknown logical type %q in %s", k, path)
		}
		tm.Override(k, v)
	}
	return tm, nil
}

func isLogical(t LogicalType) bool {
	for _, lt := range AllLogicalTypes {
		if lt == t {
			return true
		}
	}
	return false
}
