package distmat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bionetslab/digest-go/internal/registry"
)

func TestAppendEntitiesNeverRenumbers(t *testing.T) {
	s := New()
	rows1 := s.AppendEntities(registry.Gene, Jaccard, []registry.EntityIndex{1, 2, 3})
	rows2 := s.AppendEntities(registry.Gene, Jaccard, []registry.EntityIndex{3, 4})

	assert.Equal(t, rows1[2], rows2[0]) // entity 3 keeps its row
	assert.Equal(t, 4, s.DirectoryLen(registry.Gene, Jaccard))
}

func TestInsertTriplesRejectsBadOrdering(t *testing.T) {
	s := New()
	s.AppendEntities(registry.Gene, Jaccard, []registry.EntityIndex{1, 2})
	err := s.InsertTriples(registry.Gene, "go.BP", Jaccard, []uint32{1}, []uint32{0}, []float32{0.5})
	require.Error(t, err)
}

func TestInsertTriplesRejectsOutOfRangeValue(t *testing.T) {
	s := New()
	s.AppendEntities(registry.Gene, Jaccard, []registry.EntityIndex{1, 2})
	err := s.InsertTriples(registry.Gene, "go.BP", Jaccard, []uint32{0}, []uint32{1}, []float32{0})
	require.Error(t, err)
}

func TestInsertTriplesDuplicateFirstWins(t *testing.T) {
	s := New()
	s.AppendEntities(registry.Gene, Jaccard, []registry.EntityIndex{1, 2})
	require.NoError(t, s.InsertTriples(registry.Gene, "go.BP", Jaccard, []uint32{0}, []uint32{1}, []float32{0.5}))
	require.NoError(t, s.InsertTriples(registry.Gene, "go.BP", Jaccard, []uint32{0}, []uint32{1}, []float32{0.9}))

	got := s.Get(registry.Gene, "go.BP", Jaccard, 1, 2)
	assert.Equal(t, 0.5, got)
}

func TestGetReturnsZeroForMissingOrSelf(t *testing.T) {
	s := New()
	s.AppendEntities(registry.Gene, Jaccard, []registry.EntityIndex{1, 2})

	assert.Equal(t, 0.0, s.Get(registry.Gene, "go.BP", Jaccard, 1, 2)) // not stored
	assert.Equal(t, 0.0, s.Get(registry.Gene, "go.BP", Jaccard, 1, 1)) // i==j
	assert.Equal(t, 0.0, s.Get(registry.Gene, "go.BP", Jaccard, 1, 99)) // 99 not indexed
}

func TestGetSubmatrixReturnsOnlyRequestedRows(t *testing.T) {
	// Genes A={x,y,z}, B={x,y}, C={w} under go.BP.
	// Directory order A,B,C; only (A,B) stored.
	s := New()
	s.AppendEntities(registry.Gene, Jaccard, []registry.EntityIndex{10, 11, 12}) // A,B,C
	require.NoError(t, s.InsertTriples(registry.Gene, "go.BP", Jaccard, []uint32{0}, []uint32{1}, []float32{0.667}))

	view := s.GetSubmatrix(registry.Gene, "go.BP", Jaccard, []registry.EntityIndex{10, 11})
	require.Len(t, view.Triples, 1)
	assert.InDelta(t, 0.667, view.Triples[0].Value, 1e-6)

	viewAC := s.GetSubmatrix(registry.Gene, "go.BP", Jaccard, []registry.EntityIndex{10, 12})
	assert.Empty(t, viewAC.Triples)
}

func TestInvariantStoredTripleBounds(t *testing.T) {
	s := New()
	s.AppendEntities(registry.Gene, Jaccard, []registry.EntityIndex{1, 2, 3})
	require.NoError(t, s.InsertTriples(registry.Gene, "go.BP", Jaccard, []uint32{0, 1}, []uint32{1, 2}, []float32{0.3, 0.8}))

	m := s.matrixFor(registry.Gene, "go.BP", Jaccard)
	for i := range m.rows {
		assert.Less(t, m.rows[i], m.cols[i])
		assert.Greater(t, m.values[i], float32(0))
		assert.LessOrEqual(t, m.values[i], float32(1))
		assert.Less(t, int(m.cols[i]), s.DirectoryLen(registry.Gene, Jaccard))
	}
}
