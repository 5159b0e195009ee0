package seeder

import (
	"fmt"

	"github.com/Lumos-Labs-HQ/starseed/internal/apperrors"
	"github.com/Lumos-Labs-HQ/starseed/internal/generator"
	"github.com/Lumos-Labs-HQ/starseed/internal/schema"
)

// Entity is one node of the star schema: a table to generate, the rows it
// draws keys from, and the generator producing its content.
type Entity struct {
	Name       string
	Iterations int
	Fanout     generator.Fanout
	Relations  []schema.Relation
	Schema     schema.Schema
	Generator  generator.RowGenerator

	preserveID bool
}

type EntityOption func(*Entity) error

func WithRelations(rels ...schema.Relation) EntityOption {
	return func(e *Entity) error {
		e.Relations = append(e.Relations, rels...)
		return nil
	}
}

func WithSchema(s schema.Schema) EntityOption {
	return func(e *Entity) error {
		e.Schema = s
		return nil
	}
}

// WithFanout sets the rows emitted per iteration. It is ignored for versioned
// generators, which decide their own fan-out.
func WithFanout(f generator.Fanout) EntityOption {
	return func(e *Entity) error {
		e.Fanout = f
		return nil
	}
}

func NewEntity(name string, iterations int, gen generator.RowGenerator, opts ...EntityOption) (*Entity, error) {
	if name == "" {
		return nil, apperrors.Configf("entity name is required")
	}
	if iterations < 0 {
		return nil, apperrors.Configf("entity %s: num_iterations must not be negative, got %d", name, iterations)
	}
	if gen == nil {
		return nil, apperrors.Configf("entity %s: generator is required", name)
	}

	e := &Entity{
		Name:       name,
		Iterations: iterations,
		Fanout:     generator.Constant(1),
		Generator:  gen,
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}

	if v, ok := gen.(generator.Versioned); ok {
		// The version count replaces any configured fan-out.
		if err := closeReplaced(e.Fanout, v); err != nil {
			return nil, fmt.Errorf("entity %s: close fan-out: %w", name, err)
		}
		e.Fanout = v
		e.preserveID = true
		v.MarkMutating(e.Schema.MutatingColumns()...)
	}
	if e.Fanout == nil {
		e.Fanout = generator.Constant(1)
	}
	return e, nil
}

func closeReplaced(old generator.Fanout, v generator.Versioned) error {
	c, ok := old.(generator.Closer)
	if !ok {
		return nil
	}
	if same, ok := old.(generator.Versioned); ok && same == v {
		return nil
	}
	return c.Close()
}

// IDColumn is the declared primary key, or <name>_id.
func (e *Entity) IDColumn() string {
	if pk := e.Schema.PrimaryKey(); pk != "" {
		return pk
	}
	return e.Name + "_id"
}

// PreservesID reports whether every row of one iteration shares an id.
func (e *Entity) PreservesID() bool { return e.preserveID }

func (e *Entity) OneToMany() []schema.Relation {
	return e.relationsOf(schema.OneToMany)
}

func (e *Entity) ManyToMany() []schema.Relation {
	return e.relationsOf(schema.ManyToMany)
}

func (e *Entity) relationsOf(c schema.Cardinality) []schema.Relation {
	var out []schema.Relation
	for _, r := range e.Relations {
		if r.Cardinality == c {
			out = append(out, r)
		}
	}
	return out
}

func (e *Entity) close() error {
	var first error
	for _, c := range []any{e.Generator, e.Fanout} {
		if cl, ok := c.(generator.Closer); ok {
			if err := cl.Close(); err != nil && first == nil {
				first = err
			}
		}
	}
	return first
}
