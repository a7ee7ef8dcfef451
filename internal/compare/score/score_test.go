package score

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bionetslab/digest-go/internal/registry"
)

// clusters {A,B}, {C}, {D}; d(A,B)=0.2, all cross-pair distances=0.9,
// d(C,D)=0.9.
func buildScenario() ([]Pair, ClusterAssignment) {
	A, B, C, D := registry.EntityIndex(1), registry.EntityIndex(2), registry.EntityIndex(3), registry.EntityIndex(4)
	pairs := []Pair{
		{A, B, 0.2},
		{A, C, 0.9}, {A, D, 0.9},
		{B, C, 0.9}, {B, D, 0.9},
		{C, D, 0.9},
	}
	assign := ClusterAssignment{
		ClusterOf: map[registry.EntityIndex]string{A: "cl1", B: "cl1", C: "cl2", D: "cl3"},
		Sizes:     map[string]int{"cl1": 2, "cl2": 1, "cl3": 1},
	}
	return pairs, assign
}

func TestSilhouetteMatchesSpecScenario(t *testing.T) {
	pairs, assign := buildScenario()
	d := Precalc(pairs, assign.ClusterOf)

	global, _ := SilhouetteScore(assign, d, Average)
	assert.InDelta(t, 0.389, global, 1e-3)
}

func TestDunnMatchesSpecScenario(t *testing.T) {
	pairs, assign := buildScenario()
	d := Precalc(pairs, assign.ClusterOf)

	di := DunnIndex(assign, d, Average)
	assert.InDelta(t, 4.5, di, 1e-6)
}

func TestSilhouetteSingletonsScoreZero(t *testing.T) {
	pairs, assign := buildScenario()
	d := Precalc(pairs, assign.ClusterOf)
	_, partial := SilhouetteScore(assign, d, Average)

	assert.Equal(t, 0.0, partial["cl2"])
	assert.Equal(t, 0.0, partial["cl3"])
	assert.InDelta(t, 0.778, partial["cl1"], 1e-3)
}

func TestDaviesBouldinInfWhenInterDistanceZero(t *testing.T) {
	A, B, C := registry.EntityIndex(1), registry.EntityIndex(2), registry.EntityIndex(3)
	assign := ClusterAssignment{
		ClusterOf: map[registry.EntityIndex]string{A: "cl1", B: "cl1", C: "cl2"},
		Sizes:     map[string]int{"cl1": 2, "cl2": 1},
	}
	// No inter pairs at all: cluster_inter is empty, M=0 for every pair.
	d := Precalc([]Pair{{A, B, 0.2}}, assign.ClusterOf)

	dbi := DaviesBouldinIndex(assign, d, Average)
	assert.True(t, math.IsInf(dbi, 1))
}

func TestDunnZeroWhenClusterMissingInterDistance(t *testing.T) {
	A, B, C := registry.EntityIndex(1), registry.EntityIndex(2), registry.EntityIndex(3)
	assign := ClusterAssignment{
		ClusterOf: map[registry.EntityIndex]string{A: "cl1", B: "cl2", C: "cl3"},
		Sizes:     map[string]int{"cl1": 1, "cl2": 1, "cl3": 1},
	}
	// cl3 has no recorded inter-distance to either other cluster.
	d := Precalc([]Pair{{A, B, 0.5}}, assign.ClusterOf)

	di := DunnIndex(assign, d, Average)
	assert.Equal(t, 0.0, di)
}

func TestSingleClusterCollapsesToDefinedZeros(t *testing.T) {
	A, B := registry.EntityIndex(1), registry.EntityIndex(2)
	assign := ClusterAssignment{
		ClusterOf: map[registry.EntityIndex]string{A: "only", B: "only"},
		Sizes:     map[string]int{"only": 2},
	}
	d := Precalc([]Pair{{A, B, 0.4}}, assign.ClusterOf)

	ss, partial := SilhouetteScore(assign, d, Average)
	assert.Equal(t, 0.0, ss)
	assert.Equal(t, 0.0, partial["only"])
	assert.Equal(t, 0.0, DunnIndex(assign, d, Average))
	assert.Equal(t, 0.0, DaviesBouldinIndex(assign, d, Average))
}
