package seeder

import (
	"fmt"
	"slices"

	"github.com/Lumos-Labs-HQ/starseed/internal/apperrors"
)

// DependencyGraph orders entities so every relation target is generated
// before the entities drawing keys from it.
type DependencyGraph struct {
	names      []string
	deps       map[string][]string
	dependents map[string][]string
	order      []string
}

func NewDependencyGraph() *DependencyGraph {
	return &DependencyGraph{
		deps:       make(map[string][]string),
		dependents: make(map[string][]string),
	}
}

// AddEntity registers an entity and the targets it depends on. Entities are
// visited in the order they are added.
func (g *DependencyGraph) AddEntity(name string, dependsOn ...string) {
	if _, ok := g.deps[name]; !ok {
		g.names = append(g.names, name)
	}
	g.deps[name] = nil
	for _, dep := range dependsOn {
		if !slices.Contains(g.deps[name], dep) {
			g.deps[name] = append(g.deps[name], dep)
		}
	}
	g.order = nil
}

// Build checks every dependency resolves, then computes a topological order.
func (g *DependencyGraph) Build() ([]string, error) {
	g.dependents = make(map[string][]string)
	for _, name := range g.names {
		for _, dep := range g.deps[name] {
			if _, ok := g.deps[dep]; !ok {
				return nil, fmt.Errorf("%w: entity %s references undeclared entity %s",
					apperrors.ErrUnresolvedRelation, name, dep)
			}
			g.dependents[dep] = append(g.dependents[dep], name)
		}
	}

	visited := make(map[string]bool)
	temp := make(map[string]bool)
	var stack []string
	var order []string

	var visit func(string) error
	visit = func(name string) error {
		if temp[name] {
			start := slices.Index(stack, name)
			path := append(slices.Clone(stack[start:]), name)
			return &apperrors.CycleError{Path: path}
		}
		if visited[name] {
			return nil
		}

		temp[name] = true
		stack = append(stack, name)
		for _, dep := range g.deps[name] {
			if err := visit(dep); err != nil {
				return err
			}
		}
		stack = stack[:len(stack)-1]
		temp[name] = false
		visited[name] = true
		order = append(order, name)
		return nil
	}

	for _, name := range g.names {
		if !visited[name] {
			if err := visit(name); err != nil {
				return nil, err
			}
		}
	}

	g.order = order
	return order, nil
}

func (g *DependencyGraph) Order() []string {
	return g.order
}

// Dependencies returns the entities name draws keys from.
func (g *DependencyGraph) Dependencies(name string) []string {
	return g.deps[name]
}

// Dependents returns the entities drawing keys from name.
func (g *DependencyGraph) Dependents(name string) []string {
	return g.dependents[name]
}
