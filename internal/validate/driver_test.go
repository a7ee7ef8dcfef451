package validate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bionetslab/digest-go/internal/annotstore"
	"github.com/bionetslab/digest-go/internal/coefficient"
	"github.com/bionetslab/digest-go/internal/compare"
	"github.com/bionetslab/digest-go/internal/distmat"
	"github.com/bionetslab/digest-go/internal/registry"
	"github.com/bionetslab/digest-go/internal/sampler"
)

// buildDriver sets up genes A={x,y,z}, B={x,y}, C={w} under go.BP, the
// same fixture compare_test.go uses, wired into a Driver via a fresh
// Engine.
func buildDriver(t *testing.T) *Driver {
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

	eng := compare.NewEngine(dist, annot, reg, coefficient.Jaccard)
	return NewDriver(eng, reg)
}

func TestRunSingleSetZeroReplacePercentYieldsPValueOne(t *testing.T) {
	driver := buildDriver(t)

	req := Request{
		Kind:       SingleSet,
		Domain:     registry.Gene,
		Namespace:  registry.NamespaceEntrez,
		Ids:        []string{"A", "B", "C"},
		NRandom:    20,
		Sampler:    Uniform,
		ReplacePct: 0,
		Seed:       1,
	}

	report, err := driver.Run(context.Background(), req, sampler.NewUniform())
	require.NoError(t, err)
	assert.Equal(t, StatusOK, report.Status)
	assert.Equal(t, 20, report.RunsCompleted)

	// replace_pct=0 keeps the original set every run, so every
	// randomized score equals the observed score and the add-one
	// estimator lands at exactly 1.0.
	assert.InDelta(t, 1.0, report.PValues[MetricSelfCohesion][annotstore.CategoryGOBiologicalProcess], 1e-9)
}

func TestRunNoMappingWhenCanonicalizationFindsNothing(t *testing.T) {
	driver := buildDriver(t)

	req := Request{
		Kind:      SingleSet,
		Domain:    registry.Gene,
		Namespace: registry.NamespaceEntrez,
		Ids:       []string{"unknown-1", "unknown-2"},
		NRandom:   5,
		Sampler:   Uniform,
		Seed:      1,
	}

	report, err := driver.Run(context.Background(), req, sampler.NewUniform())
	require.NoError(t, err)
	assert.Equal(t, StatusNoMapping, report.Status)
}

func TestRunIsIdempotentForIdenticalSeed(t *testing.T) {
	driver := buildDriver(t)

	req := Request{
		Kind:       SingleSet,
		Domain:     registry.Gene,
		Namespace:  registry.NamespaceEntrez,
		Ids:        []string{"A", "B", "C"},
		NRandom:    10,
		Sampler:    Uniform,
		ReplacePct: 50,
		Seed:       42,
	}

	r1, err := driver.Run(context.Background(), req, sampler.NewUniform())
	require.NoError(t, err)
	r2, err := driver.Run(context.Background(), req, sampler.NewUniform())
	require.NoError(t, err)

	assert.Equal(t, r1.RandomScores, r2.RandomScores)
	assert.Equal(t, r1.PValues, r2.PValues)
}

func TestRunHonorsCancellationBeforeDispatch(t *testing.T) {
	driver := buildDriver(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	req := Request{
		Kind:      SingleSet,
		Domain:    registry.Gene,
		Namespace: registry.NamespaceEntrez,
		Ids:       []string{"A", "B", "C"},
		NRandom:   5,
		Sampler:   Uniform,
		Seed:      1,
	}

	report, err := driver.Run(ctx, req, sampler.NewUniform())
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, report.Status)
	assert.Equal(t, 0, report.RunsCompleted)
}

func TestRunClusteringReportsThreeMetrics(t *testing.T) {
	driver := buildDriver(t)

	req := Request{
		Kind:      Clustering,
		Domain:    registry.Gene,
		Namespace: registry.NamespaceEntrez,
		Members: []compare.ClusterMember{
			{ID: "A", Cluster: "cl1"},
			{ID: "B", Cluster: "cl1"},
			{ID: "C", Cluster: "cl2"},
		},
		NRandom: 3,
		Sampler: Uniform,
		Seed:    7,
	}

	report, err := driver.Run(context.Background(), req, sampler.NewUniform())
	require.NoError(t, err)
	assert.Equal(t, StatusOK, report.Status)
	assert.Contains(t, report.InputScores, MetricSilhouette)
	assert.Contains(t, report.InputScores, MetricDunn)
	assert.Contains(t, report.InputScores, MetricDaviesBouldin)
}
