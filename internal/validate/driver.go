package validate

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/bionetslab/digest-go/internal/annotstore"
	"github.com/bionetslab/digest-go/internal/compare"
	"github.com/bionetslab/digest-go/internal/digesterr"
	"github.com/bionetslab/digest-go/internal/registry"
	"github.com/bionetslab/digest-go/internal/sampler"
)

// Driver composes a comparator Engine with a background Sampler: it
// scores the observed target, draws and scores N randomized repetitions
// through the sampler, and derives an empirical p-value per
// metric/category. Randomized runs fan out through
// golang.org/x/sync/errgroup so a failing or cancelled run aborts the
// remaining work cleanly.
type Driver struct {
	Engine *compare.Engine
	Reg    *registry.Registry

	// Progress, if non-nil, is called after each completed randomized
	// run with its 0-based index and the total run count, the driver's
	// only suspension point between repetitions.
	Progress func(run, total int)

	// Concurrency bounds how many randomized runs are scored at once.
	// Zero means errgroup's default (unbounded).
	Concurrency int
}

// NewDriver builds a Driver bound to one comparator engine and registry.
func NewDriver(engine *compare.Engine, reg *registry.Registry) *Driver {
	return &Driver{Engine: engine, Reg: reg}
}

// target is the per-Kind scoring strategy Run dispatches to: one entity
// set to extend/score, reused for both the observed input and every
// randomized repetition drawn from it.
type target struct {
	domain    registry.Domain
	namespace registry.Namespace
	entities  []registry.EntityIndex

	// clusterOf is non-nil only for Clustering requests: it maps each
	// entity in entities to its assigned cluster label, so a randomized
	// repetition's replacement entities can inherit the label of the
	// original they stand in for via sampler.Draw.Origin.
	clusterOf map[registry.EntityIndex]string

	score func(entities []registry.EntityIndex, clusterOf map[registry.EntityIndex]string) (scoreOutput, error)
}

// scoreOutput is one comparator invocation's result, carrying the two
// auxiliary fields the CLI surfaces under -verbose alongside the
// per-category scores: SetSelf's missing-annotation count and
// Clustering's per-cluster partial silhouette breakdown. Comparators
// that don't produce one leave it nil.
type scoreOutput struct {
	scores            map[Metric]map[annotstore.Category]float64
	mappedIDs         map[annotstore.Category][]string
	missingCount      map[annotstore.Category]int
	partialSilhouette map[annotstore.Category]map[string]float64
}

func (d *Driver) buildTarget(req Request) (*target, error) {
	switch req.Kind {
	case SingleSet:
		entities, _, err := d.Reg.CanonicalizeAll(req.Namespace, req.Ids)
		if err != nil {
			return nil, err
		}
		ns := req.Namespace
		return &target{
			domain: req.Domain, namespace: ns, entities: entities,
			score: func(e []registry.EntityIndex, _ map[registry.EntityIndex]string) (scoreOutput, error) {
				res, err := d.Engine.SetSelf(req.Domain, ns, d.externalIDs(e, ns))
				if err != nil {
					return scoreOutput{}, err
				}
				return scoreOutput{
					scores:       map[Metric]map[annotstore.Category]float64{MetricSelfCohesion: res.Scores},
					mappedIDs:    res.MappedIDs,
					missingCount: res.Missing,
				}, nil
			},
		}, nil

	case RefSet:
		entities, _, err := d.Reg.CanonicalizeAll(req.Namespace, req.TarIds)
		if err != nil {
			return nil, err
		}
		ns := req.Namespace
		return &target{
			domain: req.Domain, namespace: ns, entities: entities,
			score: func(e []registry.EntityIndex, _ map[registry.EntityIndex]string) (scoreOutput, error) {
				res, err := d.Engine.SetRef(req.Domain, req.RefIds, req.RefNamespace, d.externalIDs(e, ns), ns, req.Threshold, req.Enriched)
				if err != nil {
					return scoreOutput{}, err
				}
				return scoreOutput{
					scores:    map[Metric]map[annotstore.Category]float64{MetricSetMatch: res.Scores},
					mappedIDs: res.MappedIDs,
				}, nil
			},
		}, nil

	case IdRef:
		entities, _, err := d.Reg.CanonicalizeAll(req.Namespace, req.TarIds)
		if err != nil {
			return nil, err
		}
		refID := ""
		if len(req.RefIds) > 0 {
			refID = req.RefIds[0]
		}
		ns := req.Namespace
		return &target{
			domain: req.Domain, namespace: ns, entities: entities,
			score: func(e []registry.EntityIndex, _ map[registry.EntityIndex]string) (scoreOutput, error) {
				res, err := d.Engine.IdRef(refID, req.RefNamespace, req.RefDomain, d.externalIDs(e, ns), ns, req.Domain, req.Threshold)
				if err != nil {
					return scoreOutput{}, err
				}
				return scoreOutput{
					scores:    map[Metric]map[annotstore.Category]float64{MetricIdMatch: res.Scores},
					mappedIDs: res.MappedIDs,
				}, nil
			},
		}, nil

	case Clustering:
		clusterOf := make(map[registry.EntityIndex]string, len(req.Members))
		entities := make([]registry.EntityIndex, 0, len(req.Members))
		for _, m := range req.Members {
			resolved, err := d.Reg.Canonicalize(req.Namespace, m.ID)
			if err != nil {
				return nil, err
			}
			for _, ent := range resolved {
				if _, seen := clusterOf[ent]; seen {
					continue
				}
				clusterOf[ent] = m.Cluster
				entities = append(entities, ent)
			}
		}
		ns := req.Namespace
		return &target{
			domain: req.Domain, namespace: ns, entities: entities, clusterOf: clusterOf,
			score: func(e []registry.EntityIndex, clusterOf map[registry.EntityIndex]string) (scoreOutput, error) {
				members := make([]compare.ClusterMember, 0, len(e))
				for _, ent := range e {
					ids := d.Reg.ExternalOf(ent, ns)
					if len(ids) == 0 {
						continue
					}
					members = append(members, compare.ClusterMember{ID: ids[0], Cluster: clusterOf[ent]})
				}
				res, err := d.Engine.Clustering(req.Domain, ns, members)
				if err != nil {
					return scoreOutput{}, err
				}
				return scoreOutput{
					scores: map[Metric]map[annotstore.Category]float64{
						MetricSilhouette:    res.Silhouette,
						MetricDunn:          res.Dunn,
						MetricDaviesBouldin: res.DaviesBouldin,
					},
					mappedIDs:         res.MappedIDs,
					partialSilhouette: res.PartialSilhouette,
				}, nil
			},
		}, nil
	}
	return nil, digesterr.New(digesterr.InvalidRequest, "unknown target kind %d", req.Kind)
}

// externalIDs resolves each entity to one external id in ns, picking the
// first alias when ns maps several (the precise alias choice does not
// matter: CanonicalizeAll maps any of them straight back to the same
// entity index).
func (d *Driver) externalIDs(entities []registry.EntityIndex, ns registry.Namespace) []string {
	ids := make([]string, 0, len(entities))
	for _, e := range entities {
		if ext := d.Reg.ExternalOf(e, ns); len(ext) > 0 {
			ids = append(ids, ext[0])
		}
	}
	return ids
}

func allEmpty(mappedIDs map[annotstore.Category][]string) bool {
	for _, ids := range mappedIDs {
		if len(ids) > 0 {
			return false
		}
	}
	return true
}

// deriveSeed produces a per-run seed from the request seed and run index
// via a splitmix64-style mix, so each run gets an independent child RNG
// and repeated validations with an identical seed are bit-identical
// regardless of the order randomized runs complete in.
func deriveSeed(seed uint64, run int) uint64 {
	z := seed + uint64(run+1)*0x9E3779B97F4A7C15
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	return z ^ (z >> 31)
}

// Run canonicalizes and scores the observed target, draws and scores N
// randomized repetitions through samp, and derives empirical p-values.
// Cancellation is checked before dispatch and before each randomized run
// completes; on cancellation Run returns the partial report built from
// whatever runs finished first.
func (d *Driver) Run(ctx context.Context, req Request, samp sampler.Sampler) (Report, error) {
	report := newReport()

	tgt, err := d.buildTarget(req)
	if err != nil {
		return Report{}, err
	}

	obs, err := tgt.score(tgt.entities, tgt.clusterOf)
	if err != nil {
		return Report{}, err
	}
	report.InputScores = obs.scores
	report.MappedIDs = obs.mappedIDs
	report.MissingCount = obs.missingCount
	report.PartialSilhouette = obs.partialSilhouette
	report.State = InputScored

	if allEmpty(obs.mappedIDs) {
		report.Status = StatusNoMapping
		return report, nil
	}

	for metric := range obs.scores {
		report.RandomScores[metric] = make([]map[annotstore.Category]float64, req.NRandom)
	}

	if ctx.Err() != nil {
		report.Status = StatusCancelled
		return report, nil
	}

	prepRng := sampler.NewRng(req.Seed)
	if err := samp.Prepare(tgt.domain, tgt.namespace, tgt.entities, int(req.NRandom), d.Reg, prepRng); err != nil {
		return Report{}, err
	}

	g, gctx := errgroup.WithContext(ctx)
	if d.Concurrency > 0 {
		g.SetLimit(d.Concurrency)
	}

	var mu sync.Mutex
	completed := make([]bool, req.NRandom)
	cancelled := false

	for r := 0; r < int(req.NRandom); r++ {
		r := r
		g.Go(func() error {
			if gctx.Err() != nil {
				mu.Lock()
				cancelled = true
				mu.Unlock()
				return nil
			}

			runRng := sampler.NewRng(deriveSeed(req.Seed, r))
			draw, err := samp.Sample(tgt.entities, req.ReplacePct, r, runRng)
			if err != nil {
				return err
			}

			var clusterOf map[registry.EntityIndex]string
			if tgt.clusterOf != nil {
				clusterOf = make(map[registry.EntityIndex]string, len(draw.Entities))
				for i, ent := range draw.Entities {
					clusterOf[ent] = tgt.clusterOf[draw.Origin[i]]
				}
			}

			out, err := tgt.score(draw.Entities, clusterOf)
			if err != nil {
				return err
			}

			mu.Lock()
			for metric, catScores := range out.scores {
				report.RandomScores[metric][r] = catScores
			}
			completed[r] = true
			mu.Unlock()

			if d.Progress != nil {
				d.Progress(r, int(req.NRandom))
			}
			return nil
		})
	}

	report.State = RandomScored
	runErr := g.Wait()

	runsCompleted := 0
	for _, c := range completed {
		if c {
			runsCompleted++
		}
	}
	report.RunsCompleted = runsCompleted

	if runErr != nil {
		return Report{}, runErr
	}
	if cancelled || ctx.Err() != nil {
		report.Status = StatusCancelled
		return report, nil
	}

	report.PValues = make(map[Metric]map[annotstore.Category]float64)
	for metric, obsByCat := range obs.scores {
		pvals := make(map[annotstore.Category]float64)
		for cat, obs := range obsByCat {
			var randomValues []float64
			for _, rs := range report.RandomScores[metric] {
				if rs == nil {
					continue
				}
				if v, ok := rs[cat]; ok {
					randomValues = append(randomValues, v)
				}
			}
			if len(randomValues) == 0 {
				continue
			}
			pvals[cat] = empiricalPValue(obs, randomValues, metric.IsMaximizing())
		}
		report.PValues[metric] = pvals
	}

	report.Status = StatusOK
	report.State = Reported
	return report, nil
}
