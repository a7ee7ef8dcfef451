package compare

import (
	"github.com/bionetslab/digest-go/internal/annotstore"
	"github.com/bionetslab/digest-go/internal/compare/score"
	"github.com/bionetslab/digest-go/internal/registry"
)

// ClusterMember pairs an external id with its assigned cluster label.
type ClusterMember struct {
	ID      string
	Cluster string
}

// ClusterResult is Clustering's per-category output: three cluster-validity
// indices plus per-cluster partial silhouette scores as auxiliary output.
type ClusterResult struct {
	Silhouette        map[annotstore.Category]float64
	Dunn              map[annotstore.Category]float64
	DaviesBouldin     map[annotstore.Category]float64
	PartialSilhouette map[annotstore.Category]map[string]float64
	MappedIDs         map[annotstore.Category][]string
}

// Clustering evaluates cluster-validity of a pre-assigned clustering:
// for each category, it extends the distance store over the
// target ids, then computes Silhouette, Dunn, and Davies-Bouldin from
// pairwise distances restricted to the mapped ids. Absent pairs are
// treated as maximally dissimilar (distance 1), consistent with SetSelf's
// convention.
func (e *Engine) Clustering(domain registry.Domain, ns registry.Namespace, members []ClusterMember) (ClusterResult, error) {
	clusterOf := make(map[registry.EntityIndex]string, len(members))
	sizes := make(map[string]int)
	var mapped []registry.EntityIndex

	// Canonicalize each member individually and attach it to its own
	// cluster label. CanonicalizeAll's batch dedup/unmapped-skipping
	// breaks positional alignment with members, so each id is resolved
	// on its own rather than via a single batched call.
	for _, m := range members {
		entities, err := e.Reg.Canonicalize(ns, m.ID)
		if err != nil {
			return ClusterResult{}, err
		}
		for _, ent := range entities {
			if _, seen := clusterOf[ent]; seen {
				continue
			}
			clusterOf[ent] = m.Cluster
			sizes[m.Cluster]++
			mapped = append(mapped, ent)
		}
	}
	assign := score.ClusterAssignment{ClusterOf: clusterOf, Sizes: sizes}

	res := ClusterResult{
		Silhouette:        make(map[annotstore.Category]float64),
		Dunn:              make(map[annotstore.Category]float64),
		DaviesBouldin:     make(map[annotstore.Category]float64),
		PartialSilhouette: make(map[annotstore.Category]map[string]float64),
		MappedIDs:         make(map[annotstore.Category][]string),
	}

	ext := e.extenderFor(domain)

	for _, k := range annotstore.CategoriesFor(domain) {
		if err := ext.Extend(k, mapped); err != nil {
			return ClusterResult{}, err
		}

		var pairs []score.Pair
		for i := 0; i < len(mapped); i++ {
			for j := i + 1; j < len(mapped); j++ {
				sim := e.Dist.Get(domain, string(k), e.Coef, mapped[i], mapped[j])
				d := 1 - sim
				if d > 0 {
					pairs = append(pairs, score.Pair{I: mapped[i], J: mapped[j], D: d})
				}
			}
		}

		dist := score.Precalc(pairs, clusterOf)
		ss, partial := score.SilhouetteScore(assign, dist, score.Average)
		res.Silhouette[k] = ss
		res.PartialSilhouette[k] = partial
		res.Dunn[k] = score.DunnIndex(assign, dist, score.Average)
		res.DaviesBouldin[k] = score.DaviesBouldinIndex(assign, dist, score.Average)
		res.MappedIDs[k] = externalOf(e.Reg, mapped, ns)
	}
	return res, nil
}
