package types

import (
	"iter"
	"maps"
)

// Row is one generated record: column name to value.
type Row map[string]any

// Clone returns a shallow copy of the row.
func (r Row) Clone() Row {
	if r == nil {
		return Row{}
	}
	return maps.Clone(r)
}

// Instances holds the generated rows of one entity, keyed by instance id.
// Each id maps to its version history; non-versioned entities have exactly
// one version per id. Ids and columns keep their insertion order.
type Instances struct {
	name     string
	idColumn string
	ids      []string
	versions map[string][]Row
	columns  []string
	seenCols map[string]bool
}

func NewInstances(name, idColumn string) *Instances {
	return &Instances{
		name:     name,
		idColumn: idColumn,
		versions: make(map[string][]Row),
		seenCols: make(map[string]bool),
	}
}

func (in *Instances) Name() string     { return in.name }
func (in *Instances) IDColumn() string { return in.idColumn }

// Has reports whether id has at least one version.
func (in *Instances) Has(id string) bool {
	_, ok := in.versions[id]
	return ok
}

// Append adds row as the newest version of id. columns is the row's column
// order; columns not seen before are appended to the entity's column list.
func (in *Instances) Append(id string, row Row, columns []string) {
	if _, ok := in.versions[id]; !ok {
		in.ids = append(in.ids, id)
	}
	in.versions[id] = append(in.versions[id], row)

	for _, col := range columns {
		if !in.seenCols[col] {
			in.seenCols[col] = true
			in.columns = append(in.columns, col)
		}
	}
}

// IDs returns instance ids in mint order. The slice must not be modified.
func (in *Instances) IDs() []string { return in.ids }

// Versions returns the version history of id, oldest first.
func (in *Instances) Versions(id string) []Row { return in.versions[id] }

// Len returns the number of distinct instances.
func (in *Instances) Len() int { return len(in.ids) }

// RowCount returns the number of rows across all versions.
func (in *Instances) RowCount() int {
	n := 0
	for _, v := range in.versions {
		n += len(v)
	}
	return n
}

// Columns returns the entity's columns in first-seen order.
func (in *Instances) Columns() []string { return in.columns }

// First returns the first version of the first instance.
func (in *Instances) First() (Row, bool) {
	if len(in.ids) == 0 {
		return nil, false
	}
	return in.versions[in.ids[0]][0], true
}

// Rows yields every version of every instance, instance by instance.
func (in *Instances) Rows() iter.Seq[Row] {
	return func(yield func(Row) bool) {
		for _, id := range in.ids {
			for _, row := range in.versions[id] {
				if !yield(row) {
					return
				}
			}
		}
	}
}

// Dataset maps entity names to their generated instances, in generation order.
type Dataset struct {
	order    []string
	entities map[string]*Instances
}

func NewDataset() *Dataset {
	return &Dataset{entities: make(map[string]*Instances)}
}

// Add stores instances under their entity name, replacing any previous set.
func (d *Dataset) Add(in *Instances) {
	if _, ok := d.entities[in.Name()]; !ok {
		d.order = append(d.order, in.Name())
	}
	d.entities[in.Name()] = in
}

func (d *Dataset) Get(name string) (*Instances, bool) {
	in, ok := d.entities[name]
	return in, ok
}

// Names returns entity names in the order they were added.
func (d *Dataset) Names() []string { return d.order }

func (d *Dataset) Len() int { return len(d.order) }

// All yields entities in the order they were added.
func (d *Dataset) All() iter.Seq2[string, *Instances] {
	return func(yield func(string, *Instances) bool) {
		for _, name := range d.order {
			if !yield(name, d.entities[name]) {
				return
			}
		}
	}
}
