package sampler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bionetslab/digest-go/internal/network"
	"github.com/bionetslab/digest-go/internal/registry"
)

func buildChainGraph() *network.AdjacencyList {
	g := network.NewAdjacencyList()
	g.AddEdge(1, 2)
	g.AddEdge(2, 3)
	g.AddEdge(3, 4)
	g.AddEdge(4, 5)
	g.AddEdge(10, 11)
	g.AddEdge(11, 12)
	return g
}

func TestNetworkPreservingGeneratesOneModulePerRun(t *testing.T) {
	g := buildChainGraph()
	np := NewNetworkPreserving(g)
	original := []registry.EntityIndex{1, 2, 3}

	require.NoError(t, np.Prepare(registry.Gene, registry.NamespaceEntrez, original, 3, nil, NewRng(5)))

	for r := 0; r < 3; r++ {
		draw, err := np.Sample(original, 50, r, NewRng(5))
		require.NoError(t, err)
		assert.Len(t, draw.Entities, len(original))
		assert.Len(t, draw.Origin, len(original))
	}
}

func TestNetworkPreservingSampleRejectsOutOfRangeRun(t *testing.T) {
	g := buildChainGraph()
	np := NewNetworkPreserving(g)
	original := []registry.EntityIndex{1, 2}
	require.NoError(t, np.Prepare(registry.Gene, registry.NamespaceEntrez, original, 2, nil, NewRng(1)))

	_, err := np.Sample(original, 50, 9, NewRng(1))
	assert.Error(t, err)
}
