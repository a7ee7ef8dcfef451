// Package distmat implements the sparse pairwise-distance store: a
// per-(domain,category,coefficient) upper-triangular sparse matrix of
// similarity coefficients, plus a shared per-(domain,coefficient) index
// directory, and the incremental extender that fills in new rows/columns
// on demand.
//
// Storage is sorted parallel arrays (rows, cols, values) ordered by
// (row, col), queried with binary search and merge-style intersection.
package distmat

import (
	"sort"
	"sync"

	"github.com/bionetslab/digest-go/internal/coefficient"
	"github.com/bionetslab/digest-go/internal/digesterr"
	"github.com/bionetslab/digest-go/internal/registry"
)

// Coefficient identifies which similarity function populated a matrix.
type Coefficient = coefficient.Coefficient

const (
	Jaccard = coefficient.Jaccard
	Overlap = coefficient.Overlap
)

type matrixKey struct {
	domain   registry.Domain
	category string
	coef     Coefficient
}

// triples holds one matrix's (row, col, value) entries sorted by (row, col).
// row < col always holds; identity pairs and zero entries are never stored.
type triples struct {
	rows   []uint32
	cols   []uint32
	values []float32
}

// Store is the sparse distance store: many matrices, sharing directories
// per (domain, coefficient).
type Store struct {
	mu          sync.RWMutex
	matrices    map[matrixKey]*triples
	directories map[directoryKey]*directory
}

// New creates an empty sparse distance store.
func New() *Store {
	return &Store{
		matrices:    make(map[matrixKey]*triples),
		directories: make(map[directoryKey]*directory),
	}
}

func (s *Store) directoryFor(domain registry.Domain, coef Coefficient) *directory {
	s.mu.Lock()
	defer s.mu.Unlock()
	dk := directoryKey{domain, coef}
	d, ok := s.directories[dk]
	if !ok {
		d = newDirectory()
		s.directories[dk] = d
	}
	return d
}

func (s *Store) matrixFor(domain registry.Domain, category string, coef Coefficient) *triples {
	s.mu.Lock()
	defer s.mu.Unlock()
	mk := matrixKey{domain, category, coef}
	m, ok := s.matrices[mk]
	if !ok {
		m = &triples{}
		s.matrices[mk] = m
	}
	return m
}

// DirectoryLen returns the number of entities indexed for (domain, coef).
func (s *Store) DirectoryLen(domain registry.Domain, coef Coefficient) int {
	return s.directoryFor(domain, coef).len()
}

// RowOf returns the matrix row assigned to an entity, if indexed.
func (s *Store) RowOf(domain registry.Domain, coef Coefficient, e registry.EntityIndex) (uint32, bool) {
	return s.directoryFor(domain, coef).rowFor(e)
}

// AppendEntities extends the shared directory for (domain, coef) with any
// entities not yet indexed, returning the matrix-row assigned to each
// input entity in input order. Already-indexed entities keep their row
// (rows are never renumbered).
func (s *Store) AppendEntities(domain registry.Domain, coef Coefficient, entities []registry.EntityIndex) []uint32 {
	return s.directoryFor(domain, coef).append(entities)
}

// Entities returns the entities indexed for (domain, coef), ordered by row.
func (s *Store) Entities(domain registry.Domain, coef Coefficient) []registry.EntityIndex {
	return s.directoryFor(domain, coef).entities()
}

// InsertTriples inserts (row, col, value) entries into a matrix. row < col
// and 0 < value <= 1 are required. Duplicate inserts tie-break to the
// first-seen value.
func (s *Store) InsertTriples(domain registry.Domain, category string, coef Coefficient, rows, cols []uint32, values []float32) error {
	if len(rows) != len(cols) || len(rows) != len(values) {
		return digesterr.New(digesterr.InvalidRequest, "insert_triples: mismatched slice lengths")
	}
	for i := range rows {
		if rows[i] >= cols[i] {
			return digesterr.New(digesterr.InvalidRequest, "insert_triples: row %d >= col %d, require row < col", rows[i], cols[i])
		}
		if values[i] <= 0 || values[i] > 1 {
			return digesterr.New(digesterr.InvalidRequest, "insert_triples: value %f out of (0,1]", values[i])
		}
	}

	m := s.matrixFor(domain, category, coef)
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range rows {
		insertOne(m, rows[i], cols[i], values[i])
	}
	return nil
}

// insertOne inserts a single triple keeping (rows, cols, values) sorted by
// (row, col). If the pair already exists, the existing value is kept
// (first-seen wins).
func insertOne(m *triples, row, col uint32, value float32) {
	idx, found := searchTriple(m, row, col)
	if found {
		return
	}
	m.rows = append(m.rows, 0)
	m.cols = append(m.cols, 0)
	m.values = append(m.values, 0)
	copy(m.rows[idx+1:], m.rows[idx:len(m.rows)-1])
	copy(m.cols[idx+1:], m.cols[idx:len(m.cols)-1])
	copy(m.values[idx+1:], m.values[idx:len(m.values)-1])
	m.rows[idx] = row
	m.cols[idx] = col
	m.values[idx] = value
}

// searchTriple returns the insertion index for (row,col) in sorted order,
// and whether the pair is already present.
func searchTriple(m *triples, row, col uint32) (int, bool) {
	n := len(m.rows)
	i := sort.Search(n, func(i int) bool {
		if m.rows[i] != row {
			return m.rows[i] > row
		}
		return m.cols[i] >= col
	})
	if i < n && m.rows[i] == row && m.cols[i] == col {
		return i, true
	}
	return i, false
}

// Get returns the stored distance for (i,j), or 0.0 if either index is
// missing from the directory, if (i,j) is not stored, or if i == j.
func (s *Store) Get(domain registry.Domain, category string, coef Coefficient, i, j registry.EntityIndex) float64 {
	if i == j {
		return 0
	}
	d := s.directoryFor(domain, coef)
	ri, ok1 := d.rowFor(i)
	rj, ok2 := d.rowFor(j)
	if !ok1 || !ok2 {
		return 0
	}
	row, col := ri, rj
	if row > col {
		row, col = col, row
	}

	m := s.matrixFor(domain, category, coef)
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx, found := searchTriple(m, row, col)
	if !found {
		return 0
	}
	return float64(m.values[idx])
}

// Triple is a single stored (row, col, value) entry with values resolved
// back to entity indices.
type Triple struct {
	I, J  registry.EntityIndex
	Value float64
}

// SparseView is a restriction of a matrix to a supplied set of rows
// (entity indices). The view materializes the matching triples rather
// than aliasing backing storage, since Go slices
// offer no safe const-view primitive, but GetSubmatrix never walks the
// matrix's full triple list to build it: both the queried rows and the
// matrix's (row,col) arrays are sorted, so the lookup is a merge-style
// intersection (binary-search the row range, then binary-search each
// candidate column against the queried rows) rather than a linear scan
// over every stored entry: cost is O(|rows|*log|matrix|) plus one
// O(log|rows|) membership check per stored entry in the queried rows'
// ranges, not O(|matrix|).
type SparseView struct {
	Triples []Triple
}

// GetSubmatrix returns every stored triple whose both endpoints are in
// rows, canonicalized to row < col.
func (s *Store) GetSubmatrix(domain registry.Domain, category string, coef Coefficient, rows []registry.EntityIndex) SparseView {
	d := s.directoryFor(domain, coef)

	matrixRows := make([]uint32, 0, len(rows))
	rowToEntity := make(map[uint32]registry.EntityIndex, len(rows))
	for _, e := range rows {
		if r, ok := d.rowFor(e); ok {
			matrixRows = append(matrixRows, r)
			rowToEntity[r] = e
		}
	}
	sort.Slice(matrixRows, func(i, j int) bool { return matrixRows[i] < matrixRows[j] })

	m := s.matrixFor(domain, category, coef)
	s.mu.RLock()
	defer s.mu.RUnlock()

	// isWanted binary-searches the sorted matrixRows slice for membership.
	isWanted := func(r uint32) bool {
		n := len(matrixRows)
		i := sort.Search(n, func(i int) bool { return matrixRows[i] >= r })
		return i < n && matrixRows[i] == r
	}

	var view SparseView
	n := len(m.rows)
	for _, r := range matrixRows {
		// m.rows is sorted ascending, so the entries with row == r form a
		// contiguous range; binary-search its lower and upper bound instead
		// of scanning from the start.
		lo := sort.Search(n, func(i int) bool { return m.rows[i] >= r })
		hi := sort.Search(n, func(i int) bool { return m.rows[i] > r })
		for idx := lo; idx < hi; idx++ {
			c := m.cols[idx]
			if isWanted(c) {
				view.Triples = append(view.Triples, Triple{
					I:     rowToEntity[r],
					J:     rowToEntity[c],
					Value: float64(m.values[idx]),
				})
			}
		}
	}
	return view
}

// StoredCount returns how many of the m(m-1)/2 possible pairs among rows
// are actually present in the matrix — used by SetSelf's cohesion formula.
func (v SparseView) StoredCount() int { return len(v.Triples) }

// Sum returns the sum of stored values in the view.
func (v SparseView) Sum() float64 {
	var sum float64
	for _, t := range v.Triples {
		sum += t.Value
	}
	return sum
}
