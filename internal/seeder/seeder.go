// Package seeder turns a set of related entities into a generated star
// schema dataset: it orders entities by their relations, then generates each
// one, drawing foreign keys from the entities generated before it.
package seeder

import (
	"fmt"
	"io"
	"math/rand"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Lumos-Labs-HQ/starseed/internal/apperrors"
	"github.com/Lumos-Labs-HQ/starseed/internal/generator"
	"github.com/Lumos-Labs-HQ/starseed/internal/schema"
	"github.com/Lumos-Labs-HQ/starseed/internal/types"
)

// Model owns the entities, their dependency graph, the random source and the
// last generated dataset.
type Model struct {
	entities []*Entity
	byName   map[string]*Entity
	graph    *DependencyGraph
	stale    bool

	rng      *rand.Rand
	logger   *zap.Logger
	progress io.Writer

	dataset *types.Dataset
}

type Option func(*Model)

// WithSeed makes generation reproducible.
func WithSeed(seed int64) Option {
	return func(m *Model) {
		m.rng = rand.New(rand.NewSource(seed))
	}
}

func WithRand(rng *rand.Rand) Option {
	return func(m *Model) {
		if rng != nil {
			m.rng = rng
		}
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(m *Model) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithProgress prints one progress line per entity to w.
func WithProgress(w io.Writer) Option {
	return func(m *Model) {
		m.progress = w
	}
}

func NewModel(entities []*Entity, opts ...Option) (*Model, error) {
	m := &Model{
		byName: make(map[string]*Entity),
		graph:  NewDependencyGraph(),
		stale:  true,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.rng == nil {
		m.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	for _, e := range entities {
		if e == nil {
			return nil, apperrors.Configf("nil entity")
		}
		if _, dup := m.byName[e.Name]; dup {
			return nil, apperrors.Configf("duplicate entity name %s", e.Name)
		}
		m.entities = append(m.entities, e)
		m.byName[e.Name] = e
	}
	return m, nil
}

// AddEntity adds e, replacing any entity with the same name, and marks the
// graph for rebuilding.
func (m *Model) AddEntity(e *Entity) {
	if old, ok := m.byName[e.Name]; ok {
		i := slices.Index(m.entities, old)
		m.entities[i] = e
	} else {
		m.entities = append(m.entities, e)
	}
	m.byName[e.Name] = e
	m.stale = true
}

func (m *Model) Entity(name string) (*Entity, bool) {
	e, ok := m.byName[name]
	return e, ok
}

// Entities returns entities in declaration order.
func (m *Model) Entities() []*Entity { return m.entities }

// BuildGraph rebuilds the dependency graph and returns the generation order.
func (m *Model) BuildGraph() ([]string, error) {
	g := NewDependencyGraph()
	for _, e := range m.entities {
		targets := make([]string, 0, len(e.Relations))
		for _, r := range e.Relations {
			targets = append(targets, r.Target)
		}
		g.AddEntity(e.Name, targets...)
	}
	order, err := g.Build()
	if err != nil {
		return nil, err
	}
	m.graph = g
	m.stale = false
	m.logger.Debug("built dependency graph", zap.Strings("order", order))
	return order, nil
}

// Order returns the generation order, building the graph when needed.
func (m *Model) Order() ([]string, error) {
	if m.stale {
		return m.BuildGraph()
	}
	return m.graph.Order(), nil
}

func (m *Model) Graph() *DependencyGraph { return m.graph }

// Dataset returns the dataset of the last GenerateAll, or nil.
func (m *Model) Dataset() *types.Dataset { return m.dataset }

// GenerateAll generates every entity in dependency order into a fresh dataset.
func (m *Model) GenerateAll() (*types.Dataset, error) {
	order, err := m.Order()
	if err != nil {
		return nil, err
	}

	ds := types.NewDataset()
	width := longestName(order)
	for _, name := range order {
		e := m.byName[name]
		in, err := m.generateEntity(e, ds, e.Iterations, nil, width)
		if err != nil {
			return nil, fmt.Errorf("generating entity %s: %w", name, err)
		}
		ds.Add(in)
	}

	m.dataset = ds
	return ds, nil
}

// GenerateMore generates counts[name] additional instances for the named
// entities against the stored dataset. The result holds only the new
// instances; the stored dataset is not changed.
func (m *Model) GenerateMore(counts map[string]int) (*types.Dataset, error) {
	if m.dataset == nil {
		return nil, apperrors.Configf("GenerateAll must run before GenerateMore")
	}
	for name := range counts {
		if _, ok := m.byName[name]; !ok {
			return nil, apperrors.Configf("unknown entity %s", name)
		}
	}
	order, err := m.Order()
	if err != nil {
		return nil, err
	}

	out := types.NewDataset()
	width := longestName(order)
	for _, name := range order {
		n, ok := counts[name]
		if !ok {
			continue
		}
		var existing []string
		if prev, ok := m.dataset.Get(name); ok {
			existing = prev.IDs()
		}
		in, err := m.generateEntity(m.byName[name], m.dataset, n, existing, width)
		if err != nil {
			return nil, fmt.Errorf("generating entity %s: %w", name, err)
		}
		out.Add(in)
	}
	return out, nil
}

// Close releases pull-based row and fan-out sequences held by generators.
func (m *Model) Close() error {
	var first error
	for _, e := range m.entities {
		if err := e.close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

type relationPlan struct {
	rel      schema.Relation
	keyCol   string
	target   *types.Instances
	pull     []schema.Field
	prepared []string // unique one-to-many keys, one per iteration
}

func (m *Model) generateEntity(e *Entity, ds *types.Dataset, iterations int, existingIDs []string, width int) (*types.Instances, error) {
	in := types.NewInstances(e.Name, e.IDColumn())
	minted := make(map[string]bool, len(existingIDs)+iterations)
	for _, id := range existingIDs {
		minted[id] = true
	}

	plans, err := m.planRelations(e, ds, iterations)
	if err != nil {
		return nil, err
	}

	bar := m.startProgress(e.Name, width)
	for i := range iterations {
		base := types.Row{}
		var baseCols []string
		for _, p := range plans {
			if p.rel.Cardinality != schema.OneToMany {
				continue
			}
			var key string
			if p.prepared != nil {
				key = p.prepared[i]
			} else {
				key = m.drawKey(p)
			}
			cols, err := m.fillRelation(base, p, key)
			if err != nil {
				return nil, err
			}
			baseCols = append(baseCols, cols...)
		}

		fanout, err := e.Fanout.Next(m.rng)
		if err != nil {
			return nil, fmt.Errorf("fan-out at iteration %d: %w", i, err)
		}

		m2mKeys := make([][]string, len(plans))
		for pi, p := range plans {
			if p.rel.Cardinality != schema.ManyToMany {
				continue
			}
			if p.rel.Unique {
				m2mKeys[pi], err = m.drawUnique(e.Name, p, fanout)
				if err != nil {
					return nil, err
				}
			} else {
				keys := make([]string, fanout)
				for j := range keys {
					keys[j] = m.drawKey(p)
				}
				m2mKeys[pi] = keys
			}
		}

		var id string
		for j := range fanout {
			if j == 0 || !e.PreservesID() {
				if id, err = m.mintID(minted); err != nil {
					return nil, err
				}
			}

			row := types.Row{in.IDColumn(): id}
			cols := []string{in.IDColumn()}
			for _, c := range baseCols {
				row[c] = base[c]
			}
			cols = append(cols, baseCols...)
			for pi, p := range plans {
				if p.rel.Cardinality != schema.ManyToMany {
					continue
				}
				rc, err := m.fillRelation(row, p, m2mKeys[pi][j])
				if err != nil {
					return nil, err
				}
				cols = append(cols, rc...)
			}

			generated, err := e.Generator.Generate(&generator.RowContext{
				Entity:  e.Name,
				Dataset: ds,
				Row:     row.Clone(),
				Rand:    m.rng,
			})
			if err != nil {
				return nil, err
			}
			for k, v := range generated {
				if k == in.IDColumn() {
					continue
				}
				row[k] = v
			}
			if err := e.Schema.Apply(row); err != nil {
				return nil, fmt.Errorf("instance %s: %w", id, err)
			}

			in.Append(id, row, columnOrder(row, cols, e.Schema))
		}
		bar.step(i+1, iterations)
	}
	bar.done()

	m.logger.Debug("generated entity",
		zap.String("entity", e.Name),
		zap.Int("instances", in.Len()),
		zap.Int("rows", in.RowCount()))
	return in, nil
}

func (m *Model) planRelations(e *Entity, ds *types.Dataset, iterations int) ([]relationPlan, error) {
	plans := make([]relationPlan, 0, len(e.Relations))
	for _, rel := range e.Relations {
		target, ok := m.byName[rel.Target]
		if !ok {
			return nil, fmt.Errorf("%w: entity %s references undeclared entity %s",
				apperrors.ErrUnresolvedRelation, e.Name, rel.Target)
		}
		tin, ok := ds.Get(rel.Target)
		if !ok {
			return nil, fmt.Errorf("%w: entity %s must be generated before %s",
				apperrors.ErrUnresolvedRelation, rel.Target, e.Name)
		}

		p := relationPlan{
			rel:    rel,
			keyCol: target.IDColumn(),
			target: tin,
			pull:   e.Schema.FieldsForParent(rel.Target),
		}
		if rel.Cardinality == schema.OneToMany && rel.Unique {
			keys, err := m.drawUnique(e.Name, p, iterations)
			if err != nil {
				return nil, err
			}
			p.prepared = keys
		} else if tin.Len() == 0 && iterations > 0 {
			return nil, &apperrors.InsufficientPoolError{
				Entity: e.Name, Target: rel.Target, Requested: 1, Available: 0,
			}
		}
		plans = append(plans, p)
	}
	return plans, nil
}

func (m *Model) drawKey(p relationPlan) string {
	ids := p.target.IDs()
	return ids[m.rng.Intn(len(ids))]
}

// drawUnique draws n distinct keys with a partial Fisher-Yates shuffle.
func (m *Model) drawUnique(entity string, p relationPlan, n int) ([]string, error) {
	ids := p.target.IDs()
	if n > len(ids) {
		return nil, &apperrors.InsufficientPoolError{
			Entity: entity, Target: p.rel.Target, Requested: n, Available: len(ids),
		}
	}
	pool := slices.Clone(ids)
	for i := range n {
		j := i + m.rng.Intn(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:n], nil
}

// fillRelation writes the relation key and the pulled-through parent columns
// into row and returns the columns written. All parent columns come from one
// randomly chosen version of the parent instance.
func (m *Model) fillRelation(row types.Row, p relationPlan, key string) ([]string, error) {
	row[p.keyCol] = key
	cols := []string{p.keyCol}
	if len(p.pull) == 0 {
		return cols, nil
	}

	versions := p.target.Versions(key)
	version := versions[m.rng.Intn(len(versions))]
	for _, f := range p.pull {
		v, ok := version[f.Name]
		if !ok {
			return nil, apperrors.Configf("column %s not found in parent entity %s", f.Name, p.rel.Target)
		}
		row[f.Name] = v
		cols = append(cols, f.Name)
	}
	return cols, nil
}

// mintID returns the last 12 hex digits of a random UUID drawn from the
// model's source, unique among minted.
func (m *Model) mintID(minted map[string]bool) (string, error) {
	for {
		u, err := uuid.NewRandomFromReader(m.rng)
		if err != nil {
			return "", fmt.Errorf("minting id: %w", err)
		}
		s := u.String()
		id := s[len(s)-12:]
		if !minted[id] {
			minted[id] = true
			return id, nil
		}
	}
}

// columnOrder lists assembled columns first, then schema columns, then the
// rest alphabetically.
func columnOrder(row types.Row, assembled []string, s schema.Schema) []string {
	seen := make(map[string]bool, len(row))
	out := make([]string, 0, len(row))
	add := func(c string) {
		if _, ok := row[c]; ok && !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	for _, c := range assembled {
		add(c)
	}
	for _, c := range s.Names() {
		add(c)
	}
	var rest []string
	for c := range row {
		if !seen[c] {
			rest = append(rest, c)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}

func longestName(names []string) int {
	width := 0
	for _, n := range names {
		width = max(width, len(n))
	}
	return width
}

type progressBar struct {
	w       io.Writer
	printed int
}

const progressSteps = 20

func (m *Model) startProgress(name string, width int) *progressBar {
	if m.progress == nil {
		return &progressBar{}
	}
	color.New(color.FgCyan).Fprintf(m.progress, "Generating entity %s ", name+strings.Repeat(" ", width-len(name)))
	return &progressBar{w: m.progress}
}

func (b *progressBar) step(done, total int) {
	if b.w == nil || total == 0 {
		return
	}
	for target := done * progressSteps / total; b.printed < target; b.printed++ {
		fmt.Fprint(b.w, ".")
	}
}

func (b *progressBar) done() {
	if b.w == nil {
		return
	}
	for ; b.printed < progressSteps; b.printed++ {
		fmt.Fprint(b.w, ".")
	}
	color.New(color.FgGreen).Fprintln(b.w, " DONE")
}
