package schema

import (
	"fmt"
	"strings"

	"github.com/Lumos-Labs-HQ/starseed/internal/apperrors"
)

// Cardinality is the kind of link a relation draws from its target.
type Cardinality int

const (
	// OneToMany links every fan-out row of an iteration to the same target key.
	OneToMany Cardinality = iota
	// ManyToMany draws a separate target key for every fan-out row.
	ManyToMany
)

func (c Cardinality) String() string {
	switch c {
	case ManyToMany:
		return "many_to_many"
	default:
		return "one_to_many"
	}
}

// ParseCardinality accepts "one_to_many" and "many_to_many" (case and
// dash-insensitive). An empty string means OneToMany.
func ParseCardinality(s string) (Cardinality, error) {
	norm := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	switch norm {
	case "", "one_to_many":
		return OneToMany, nil
	case "many_to_many":
		return ManyToMany, nil
	default:
		return OneToMany, apperrors.Configf("unknown relation type %q", s)
	}
}

// Relation declares that the owning entity draws keys from Target.
type Relation struct {
	Target      string
	Cardinality Cardinality
	Unique      bool
}

func (r Relation) String() string {
	s := fmt.Sprintf("%s(%s)", r.Cardinality, r.Target)
	if r.Unique {
		s += " unique"
	}
	return s
}

// RelationFromMap builds a relation from its config form {name, type?, unique?}.
func RelationFromMap(m map[string]any) (Relation, error) {
	name, ok := m["name"].(string)
	if !ok || strings.TrimSpace(name) == "" {
		return Relation{}, apperrors.Configf("relation requires a name")
	}

	var kind string
	if v, exists := m["type"]; exists && v != nil {
		s, ok := v.(string)
		if !ok {
			return Relation{}, apperrors.Configf("relation %s: type must be a string, got %T", name, v)
		}
		kind = s
	}
	card, err := ParseCardinality(kind)
	if err != nil {
		return Relation{}, fmt.Errorf("relation %s: %w", name, err)
	}

	unique, err := optionalBool(m, "unique")
	if err != nil {
		return Relation{}, fmt.Errorf("relation %s: %w", name, err)
	}

	return Relation{Target: name, Cardinality: card, Unique: unique}, nil
}

// RelationsFrom converts a relations option into relations. It accepts nil,
// []Relation, []map[string]any and []any mixing maps and Relation values.
func RelationsFrom(v any) ([]Relation, error) {
	switch rels := v.(type) {
	case nil:
		return nil, nil
	case []Relation:
		return rels, nil
	case []map[string]any:
		out := make([]Relation, 0, len(rels))
		for _, m := range rels {
			r, err := RelationFromMap(m)
			if err != nil {
				return nil, err
			}
			out = append(out, r)
		}
		return out, nil
	case []any:
		out := make([]Relation, 0, len(rels))
		for _, item := range rels {
			switch it := item.(type) {
			case Relation:
				out = append(out, it)
			case map[string]any:
				r, err := RelationFromMap(it)
				if err != nil {
					return nil, err
				}
				out = append(out, r)
			default:
				return nil, apperrors.Configf("relation entry must be a map, got %T", item)
			}
		}
		return out, nil
	default:
		return nil, apperrors.Configf("relations must be a list, got %T", v)
	}
}

func optionalBool(m map[string]any, key string) (bool, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return false, nil
	}
	b, ok := v.(bool)
	if !ok {
		return false, apperrors.Configf("%s must be a bool, got %T", key, v)
	}
	return b, nil
}
