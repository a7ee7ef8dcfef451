package sampler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bionetslab/digest-go/internal/registry"
)

type fakeRegistry struct {
	entities map[registry.Domain][]registry.EntityIndex
	external map[registry.EntityIndex][]string
}

func (f *fakeRegistry) EntitiesInDomain(domain registry.Domain) []registry.EntityIndex {
	return f.entities[domain]
}

func (f *fakeRegistry) ExternalOf(idx registry.EntityIndex, ns registry.Namespace) []string {
	return f.external[idx]
}

func TestUniformSampleReplacesOnlyNonKeptEntities(t *testing.T) {
	reg := &fakeRegistry{
		entities: map[registry.Domain][]registry.EntityIndex{
			registry.Gene: {1, 2, 3, 4, 5, 6, 7, 8},
		},
		external: map[registry.EntityIndex][]string{
			1: {"A"}, 2: {"B"}, 3: {"C"}, 4: {"D"}, 5: {"E"}, 6: {"F"}, 7: {"G"}, 8: {"H"},
		},
	}

	u := NewUniform()
	original := []registry.EntityIndex{1, 2, 3, 4}
	require.NoError(t, u.Prepare(registry.Gene, registry.NamespaceEntrez, original, 1, reg, NewRng(7)))

	draw, err := u.Sample(original, 50, 0, NewRng(7))
	require.NoError(t, err)
	assert.Len(t, draw.Entities, 4)
	assert.Len(t, draw.Origin, 4)
}

func TestUniformSampleFailsWhenPoolSmallerThanReplacementCount(t *testing.T) {
	reg := &fakeRegistry{
		entities: map[registry.Domain][]registry.EntityIndex{
			registry.Gene: {1, 2},
		},
		external: map[registry.EntityIndex][]string{
			1: {"A"}, 2: {"B"},
		},
	}

	u := NewUniform()
	original := []registry.EntityIndex{1, 2, 3, 4}
	require.NoError(t, u.Prepare(registry.Gene, registry.NamespaceEntrez, original, 1, reg, NewRng(1)))

	_, err := u.Sample(original, 100, 0, NewRng(1))
	assert.Error(t, err)
}

func TestUniformSampleZeroReplacementReturnsOriginalUnchanged(t *testing.T) {
	reg := &fakeRegistry{
		entities: map[registry.Domain][]registry.EntityIndex{registry.Gene: {1, 2, 3}},
		external: map[registry.EntityIndex][]string{1: {"A"}, 2: {"B"}, 3: {"C"}},
	}
	u := NewUniform()
	original := []registry.EntityIndex{1, 2, 3}
	require.NoError(t, u.Prepare(registry.Gene, registry.NamespaceEntrez, original, 1, reg, NewRng(1)))

	draw, err := u.Sample(original, 0, 0, NewRng(1))
	require.NoError(t, err)
	assert.ElementsMatch(t, original, draw.Entities)
}
