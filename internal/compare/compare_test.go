package compare

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bionetslab/digest-go/internal/annotstore"
	"github.com/bionetslab/digest-go/internal/coefficient"
	"github.com/bionetslab/digest-go/internal/distmat"
	"github.com/bionetslab/digest-go/internal/registry"
)

// buildEngine sets up genes A={x,y,z}, B={x,y}, C={w} under go.BP.
func buildEngine(t *testing.T) (*Engine, registry.EntityIndex, registry.EntityIndex, registry.EntityIndex) {
	t.Helper()
	reg := registry.New()
	annot := annotstore.New()
	dist := distmat.New()

	a, err := reg.Intern(registry.NamespaceEntrez, registry.Gene, "A")
	require.NoError(t, err)
	b, err := reg.Intern(registry.NamespaceEntrez, registry.Gene, "B")
	require.NoError(t, err)
	c, err := reg.Intern(registry.NamespaceEntrez, registry.Gene, "C")
	require.NoError(t, err)

	annot.Extend(registry.Gene, []annotstore.Row{
		{Entity: a, Category: annotstore.CategoryGOBiologicalProcess, Terms: coefficient.NewTermSet(1, 2, 3)},
		{Entity: b, Category: annotstore.CategoryGOBiologicalProcess, Terms: coefficient.NewTermSet(1, 2)},
		{Entity: c, Category: annotstore.CategoryGOBiologicalProcess, Terms: coefficient.NewTermSet(4)},
	})

	return NewEngine(dist, annot, reg, coefficient.Jaccard), a, b, c
}

func TestSetSelfMatchesSpecScenario2(t *testing.T) {
	eng, _, _, _ := buildEngine(t)

	res, err := eng.SetSelf(registry.Gene, registry.NamespaceEntrez, []string{"A", "B", "C"})
	require.NoError(t, err)

	assert.InDelta(t, 0.778, res.Scores[annotstore.CategoryGOBiologicalProcess], 1e-3)
	assert.Equal(t, 0, res.Missing[annotstore.CategoryGOBiologicalProcess])
}

func TestSetSelfSingletonIsZero(t *testing.T) {
	eng, _, _, _ := buildEngine(t)

	res, err := eng.SetSelf(registry.Gene, registry.NamespaceEntrez, []string{"A"})
	require.NoError(t, err)
	assert.Equal(t, 0.0, res.Scores[annotstore.CategoryGOBiologicalProcess])
}

func TestSetSelfAllMissingAnnotationScoresOne(t *testing.T) {
	reg := registry.New()
	annot := annotstore.New()
	dist := distmat.New()
	reg.Intern(registry.NamespaceEntrez, registry.Gene, "X")
	reg.Intern(registry.NamespaceEntrez, registry.Gene, "Y")
	eng := NewEngine(dist, annot, reg, coefficient.Jaccard)

	res, err := eng.SetSelf(registry.Gene, registry.NamespaceEntrez, []string{"X", "Y"})
	require.NoError(t, err)
	assert.Equal(t, 1.0, res.Scores[annotstore.CategoryGOBiologicalProcess])
	assert.Empty(t, res.MappedIDs[annotstore.CategoryGOBiologicalProcess])
}

func TestSetRefFractionAboveThreshold(t *testing.T) {
	eng, _, _, _ := buildEngine(t)

	res, err := eng.SetRef(registry.Gene, []string{"A"}, registry.NamespaceEntrez, []string{"B", "C"}, registry.NamespaceEntrez, 0.5, false)
	require.NoError(t, err)

	// jaccard(B,A)=2/3>0.5 matches; jaccard(C,A)=0 does not.
	assert.InDelta(t, 0.5, res.Scores[annotstore.CategoryGOBiologicalProcess], 1e-6)
}

func TestIdRefCrossDomainPathwaySubstitution(t *testing.T) {
	reg := registry.New()
	annot := annotstore.New()
	dist := distmat.New()

	disease, err := reg.Intern(registry.NamespaceMondo, registry.Disease, "D1")
	require.NoError(t, err)
	gene, err := reg.Intern(registry.NamespaceEntrez, registry.Gene, "G1")
	require.NoError(t, err)

	annot.Extend(registry.Disease, []annotstore.Row{
		{Entity: disease, Category: annotstore.CategoryRelatedPathways, Terms: coefficient.NewTermSet(10, 11)},
	})
	annot.Extend(registry.Gene, []annotstore.Row{
		{Entity: gene, Category: annotstore.CategoryPathwayKEGG, Terms: coefficient.NewTermSet(10)},
	})

	eng := NewEngine(dist, annot, reg, coefficient.Jaccard)
	res, err := eng.IdRef("D1", registry.NamespaceMondo, registry.Disease, []string{"G1"}, registry.NamespaceEntrez, registry.Gene, 0.0)
	require.NoError(t, err)

	assert.InDelta(t, 1.0, res.Scores[annotstore.CategoryPathwayKEGG], 1e-6)
}

func TestIdRefSameDomainBehavesLikeSetRefWithSingletonRef(t *testing.T) {
	reg := registry.New()
	annot := annotstore.New()
	dist := distmat.New()
	d1, _ := reg.Intern(registry.NamespaceMondo, registry.Disease, "D1")
	d2, _ := reg.Intern(registry.NamespaceMondo, registry.Disease, "D2")
	annot.Extend(registry.Disease, []annotstore.Row{
		{Entity: d1, Category: annotstore.CategoryRelatedGenes, Terms: coefficient.NewTermSet(1, 2)},
		{Entity: d2, Category: annotstore.CategoryRelatedGenes, Terms: coefficient.NewTermSet(1)},
	})

	eng := NewEngine(dist, annot, reg, coefficient.Jaccard)
	res, err := eng.IdRef("D1", registry.NamespaceMondo, registry.Disease, []string{"D2"}, registry.NamespaceMondo, registry.Disease, 0.0)
	require.NoError(t, err)
	assert.Equal(t, 1.0, res.Scores[annotstore.CategoryRelatedGenes])
}

func TestClusteringScenarioFromSpec(t *testing.T) {
	reg := registry.New()
	annot := annotstore.New()
	dist := distmat.New()

	// Seed the distance store directly to pin the pairwise distances
	// instead of deriving them from term overlap.
	a, _ := reg.Intern(registry.NamespaceEntrez, registry.Gene, "A")
	b, _ := reg.Intern(registry.NamespaceEntrez, registry.Gene, "B")
	c, _ := reg.Intern(registry.NamespaceEntrez, registry.Gene, "C")
	d, _ := reg.Intern(registry.NamespaceEntrez, registry.Gene, "D")

	annot.Extend(registry.Gene, []annotstore.Row{
		{Entity: a, Category: annotstore.CategoryGOBiologicalProcess, Terms: coefficient.NewTermSet(1)},
		{Entity: b, Category: annotstore.CategoryGOBiologicalProcess, Terms: coefficient.NewTermSet(1)},
		{Entity: c, Category: annotstore.CategoryGOBiologicalProcess, Terms: coefficient.NewTermSet(1)},
		{Entity: d, Category: annotstore.CategoryGOBiologicalProcess, Terms: coefficient.NewTermSet(1)},
	})

	dist.AppendEntities(registry.Gene, coefficient.Jaccard, []registry.EntityIndex{a, b, c, d})
	// similarity = 1-distance: d(A,B)=0.2 -> sim 0.8; all cross-pair
	// distances 0.9 -> sim 0.1; d(C,D)=0.9 -> sim 0.1.
	require.NoError(t, dist.InsertTriples(registry.Gene, string(annotstore.CategoryGOBiologicalProcess), coefficient.Jaccard,
		[]uint32{0, 0, 0, 1, 1, 2}, []uint32{1, 2, 3, 2, 3, 3}, []float32{0.8, 0.1, 0.1, 0.1, 0.1, 0.1}))

	eng := NewEngine(dist, annot, reg, coefficient.Jaccard)
	res, err := eng.Clustering(registry.Gene, registry.NamespaceEntrez, []ClusterMember{
		{ID: "A", Cluster: "cl1"}, {ID: "B", Cluster: "cl1"},
		{ID: "C", Cluster: "cl2"}, {ID: "D", Cluster: "cl3"},
	})
	require.NoError(t, err)

	assert.InDelta(t, 0.389, res.Silhouette[annotstore.CategoryGOBiologicalProcess], 1e-3)
	assert.InDelta(t, 4.5, res.Dunn[annotstore.CategoryGOBiologicalProcess], 1e-6)
}
