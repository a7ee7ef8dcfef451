package duckstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bionetslab/digest-go/internal/coefficient"
	"github.com/bionetslab/digest-go/internal/distmat"
	"github.com/bionetslab/digest-go/internal/registry"
)

func TestPersistDirectoryThenLoadPreservesOrder(t *testing.T) {
	ds, err := Open("")
	require.NoError(t, err)
	defer ds.Close()

	entities := []registry.EntityIndex{10, 11, 12}
	require.NoError(t, ds.PersistDirectory(registry.Gene, coefficient.Jaccard, entities))

	loaded, err := ds.LoadDirectory(registry.Gene, coefficient.Jaccard)
	require.NoError(t, err)
	assert.Equal(t, entities, loaded)
}

func TestPersistTriplesThenLoadPreservesEveryTriple(t *testing.T) {
	s := distmat.New()
	s.AppendEntities(registry.Gene, coefficient.Jaccard, []registry.EntityIndex{10, 11, 12})
	require.NoError(t, s.InsertTriples(registry.Gene, "go.BP", coefficient.Jaccard,
		[]uint32{0, 1}, []uint32{1, 2}, []float32{0.5, 0.8}))

	ds, err := Open("")
	require.NoError(t, err)
	defer ds.Close()

	require.NoError(t, ds.PersistDirectory(registry.Gene, coefficient.Jaccard, s.Entities(registry.Gene, coefficient.Jaccard)))
	view := s.GetSubmatrix(registry.Gene, "go.BP", coefficient.Jaccard, []registry.EntityIndex{10, 11, 12})

	rowOf := make(map[registry.EntityIndex]uint32)
	for _, e := range []registry.EntityIndex{10, 11, 12} {
		r, ok := s.RowOf(registry.Gene, coefficient.Jaccard, e)
		require.True(t, ok)
		rowOf[e] = r
	}
	require.NoError(t, ds.PersistTriples(registry.Gene, "go.BP", coefficient.Jaccard, view, rowOf))

	entityAt, err := ds.LoadDirectory(registry.Gene, coefficient.Jaccard)
	require.NoError(t, err)
	triples, err := ds.LoadTriples(registry.Gene, "go.BP", coefficient.Jaccard, entityAt)
	require.NoError(t, err)

	assert.Len(t, triples, 2)
	var sum float64
	for _, tr := range triples {
		sum += tr.Value
	}
	assert.InDelta(t, 1.3, sum, 1e-6)
}
