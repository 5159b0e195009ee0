package schema

import (
	"fmt"
	"strings"

	"github.com/Lumos-Labs-HQ/starseed/internal/apperrors"
	"github.com/Lumos-Labs-HQ/starseed/internal/types"
)

// Field is the metadata of one entity column.
type Field struct {
	Name string
	// Type is the declared coercer name, empty when Coerce was supplied directly
	// or the column is passed through untouched.
	Type         string
	Coerce       Coercer
	PrimaryKey   bool
	ParentEntity string
	Mutating     bool
}

// Schema is the ordered column metadata of an entity.
type Schema struct {
	Fields []Field
}

// New validates fields and returns a schema. At most one field may be the
// primary key.
func New(fields ...Field) (Schema, error) {
	seen := make(map[string]bool, len(fields))
	var pk []string
	for i, f := range fields {
		if strings.TrimSpace(f.Name) == "" {
			return Schema{}, apperrors.Configf("schema field %d has no name", i)
		}
		if seen[f.Name] {
			return Schema{}, apperrors.Configf("schema field %s declared twice", f.Name)
		}
		seen[f.Name] = true
		if f.PrimaryKey {
			pk = append(pk, f.Name)
		}
	}
	if len(pk) > 1 {
		return Schema{}, apperrors.Configf("more than one primary key: %s", strings.Join(pk, ", "))
	}
	return Schema{Fields: fields}, nil
}

// FieldFromMap builds a field from {name, type?, primary_key?, parent_entity?, mutating?}.
// type may be a coercer name or a coercion function.
func FieldFromMap(m map[string]any) (Field, error) {
	name, ok := m["name"].(string)
	if !ok || strings.TrimSpace(name) == "" {
		return Field{}, apperrors.Configf("schema field requires a name")
	}
	f := Field{Name: name}

	switch t := m["type"].(type) {
	case nil:
	case string:
		c, err := LookupCoercer(t)
		if err != nil {
			return Field{}, fmt.Errorf("field %s: %w", name, err)
		}
		f.Type = t
		f.Coerce = c
	case Coercer:
		f.Coerce = t
	case func(any) (any, error):
		f.Coerce = t
	case func(any) any:
		f.Coerce = func(v any) (any, error) { return t(v), nil }
	default:
		return Field{}, apperrors.Configf("field %s: unsupported type %T", name, t)
	}

	var err error
	if f.PrimaryKey, err = optionalBool(m, "primary_key"); err != nil {
		return Field{}, fmt.Errorf("field %s: %w", name, err)
	}
	if f.Mutating, err = optionalBool(m, "mutating"); err != nil {
		return Field{}, fmt.Errorf("field %s: %w", name, err)
	}
	if v, ok := m["parent_entity"]; ok && v != nil {
		parent, ok := v.(string)
		if !ok {
			return Field{}, apperrors.Configf("field %s: parent_entity must be a string", name)
		}
		f.ParentEntity = parent
	}
	return f, nil
}

// FromList builds a schema from its config form. It accepts nil, Schema,
// []Field, []map[string]any and []any of maps or Field values.
func FromList(v any) (Schema, error) {
	var fields []Field
	switch list := v.(type) {
	case nil:
		return Schema{}, nil
	case Schema:
		return New(list.Fields...)
	case []Field:
		fields = list
	case []map[string]any:
		for _, m := range list {
			f, err := FieldFromMap(m)
			if err != nil {
				return Schema{}, err
			}
			fields = append(fields, f)
		}
	case []any:
		for _, item := range list {
			switch it := item.(type) {
			case Field:
				fields = append(fields, it)
			case map[string]any:
				f, err := FieldFromMap(it)
				if err != nil {
					return Schema{}, err
				}
				fields = append(fields, f)
			default:
				return Schema{}, apperrors.Configf("schema entry must be a map, got %T", item)
			}
		}
	default:
		return Schema{}, apperrors.Configf("schema must be a list, got %T", v)
	}
	return New(fields...)
}

// PrimaryKey returns the name of the primary key field, or "" when none is declared.
func (s Schema) PrimaryKey() string {
	for _, f := range s.Fields {
		if f.PrimaryKey {
			return f.Name
		}
	}
	return ""
}

// FieldsForParent returns the columns pulled through from the parent entity.
func (s Schema) FieldsForParent(parent string) []Field {
	var out []Field
	for _, f := range s.Fields {
		if f.ParentEntity == parent {
			out = append(out, f)
		}
	}
	return out
}

func (s Schema) MutatingColumns() []string {
	var out []string
	for _, f := range s.Fields {
		if f.Mutating {
			out = append(out, f.Name)
		}
	}
	return out
}

// Names returns the field names in declaration order.
func (s Schema) Names() []string {
	out := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		out[i] = f.Name
	}
	return out
}

// Apply coerces every declared column present in row, in place.
func (s Schema) Apply(row types.Row) error {
	for _, f := range s.Fields {
		if f.Coerce == nil {
			continue
		}
		v, ok := row[f.Name]
		if !ok {
			continue
		}
		cv, err := f.Coerce(v)
		if err != nil {
			return apperrors.Configf("column %s: %v", f.Name, err)
		}
		row[f.Name] = cv
	}
	return nil
}
