package distmat

import (
	"sync"

	"github.com/bionetslab/digest-go/internal/registry"
)

// directoryKey identifies one shared index directory: all categories
// within a (domain, coefficient) share one directory, so a single row
// insertion extends every category's matrix consistently.
type directoryKey struct {
	domain registry.Domain
	coef   Coefficient
}

// directory maps entity-index -> matrix-row for one (domain, coefficient).
// Append-only: previously assigned rows are never renumbered.
type directory struct {
	mu        sync.RWMutex
	rowOf     map[registry.EntityIndex]uint32
	entityOf  []registry.EntityIndex // rowOf inverse, indexed by row
}

func newDirectory() *directory {
	return &directory{rowOf: make(map[registry.EntityIndex]uint32)}
}

// rowFor returns the existing row for an entity, if any.
func (d *directory) rowFor(e registry.EntityIndex) (uint32, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	r, ok := d.rowOf[e]
	return r, ok
}

// append assigns fresh rows to entities not yet indexed, in input order,
// and returns the row assigned to each input entity (existing or new).
func (d *directory) append(entities []registry.EntityIndex) []uint32 {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make([]uint32, len(entities))
	for i, e := range entities {
		if r, ok := d.rowOf[e]; ok {
			out[i] = r
			continue
		}
		r := uint32(len(d.entityOf))
		d.rowOf[e] = r
		d.entityOf = append(d.entityOf, e)
		out[i] = r
	}
	return out
}

// len returns the number of entities currently indexed.
func (d *directory) len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.entityOf)
}

// entities returns every indexed entity, in row order.
func (d *directory) entities() []registry.EntityIndex {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]registry.EntityIndex, len(d.entityOf))
	copy(out, d.entityOf)
	return out
}

// entityAt returns the entity assigned to a given row.
func (d *directory) entityAt(row uint32) (registry.EntityIndex, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if int(row) >= len(d.entityOf) {
		return 0, false
	}
	return d.entityOf[row], true
}
