package duckstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bionetslab/digest-go/internal/annotstore"
	"github.com/bionetslab/digest-go/internal/coefficient"
	"github.com/bionetslab/digest-go/internal/registry"
)

func TestSnapshotThenLoadRoundTrips(t *testing.T) {
	store, err := Open("")
	require.NoError(t, err)
	defer store.Close()

	src := annotstore.New()
	src.Extend(registry.Gene, []annotstore.Row{
		{Entity: 1, Category: annotstore.CategoryGOBiologicalProcess, Terms: coefficient.NewTermSet(1, 2, 3)},
		{Entity: 2, Category: annotstore.CategoryGOBiologicalProcess, Terms: coefficient.TermSet{}},
	})

	require.NoError(t, store.Snapshot(registry.Gene, annotstore.CategoryGOBiologicalProcess, src))

	dst := annotstore.New()
	require.NoError(t, store.Load(registry.Gene, annotstore.CategoryGOBiologicalProcess, dst))

	assert.Equal(t, src.GetTerms(registry.Gene, 1, annotstore.CategoryGOBiologicalProcess),
		dst.GetTerms(registry.Gene, 1, annotstore.CategoryGOBiologicalProcess))
	assert.True(t, dst.HasAnnotation(registry.Gene, 2, annotstore.CategoryGOBiologicalProcess))
	assert.Empty(t, dst.GetTerms(registry.Gene, 2, annotstore.CategoryGOBiologicalProcess))
	assert.False(t, dst.HasAnnotation(registry.Gene, 3, annotstore.CategoryGOBiologicalProcess))
}

func TestLoadIsIdempotent(t *testing.T) {
	store, err := Open("")
	require.NoError(t, err)
	defer store.Close()

	src := annotstore.New()
	src.Extend(registry.Gene, []annotstore.Row{
		{Entity: 1, Category: annotstore.CategoryGOBiologicalProcess, Terms: coefficient.NewTermSet(5)},
	})
	require.NoError(t, store.Snapshot(registry.Gene, annotstore.CategoryGOBiologicalProcess, src))

	dst := annotstore.New()
	require.NoError(t, store.Load(registry.Gene, annotstore.CategoryGOBiologicalProcess, dst))
	require.NoError(t, store.Load(registry.Gene, annotstore.CategoryGOBiologicalProcess, dst))

	assert.Equal(t, coefficient.NewTermSet(5), dst.GetTerms(registry.Gene, 1, annotstore.CategoryGOBiologicalProcess))
}
