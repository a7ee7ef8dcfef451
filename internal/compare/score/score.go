// Package score computes cluster-validity indices from a precomputed set
// of pairwise distances restricted to a subset of interest: Silhouette
// Score, Dunn Index, and Davies-Bouldin Index, each reduced through a
// configurable linkage. All three read the same four accumulators
// (entity intra/inter, cluster intra/inter) built once by Precalc.
package score

import (
	"math"
	"sort"

	"github.com/bionetslab/digest-go/internal/registry"
)

// Linkage selects how a list of distances reduces to a scalar.
type Linkage int

const (
	Average Linkage = iota
	Complete
	Single
)

func (l Linkage) reduce(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	switch l {
	case Complete:
		max := values[0]
		for _, v := range values[1:] {
			if v > max {
				max = v
			}
		}
		return max
	case Single:
		min := values[0]
		for _, v := range values[1:] {
			if v < min {
				min = v
			}
		}
		return min
	default:
		sum := 0.0
		for _, v := range values {
			sum += v
		}
		return sum / float64(len(values))
	}
}

// Pair is one non-zero, non-identity distance between two entities,
// exactly the filtered (i,j,d) input the precomputation expects.
type Pair struct {
	I, J registry.EntityIndex
	D    float64
}

// Distances holds the four accumulators built by Precalc.
type Distances struct {
	EntityIntra  map[registry.EntityIndex][]float64
	EntityInter  map[registry.EntityIndex]map[string][]float64
	ClusterIntra map[string][]float64
	ClusterInter map[string]map[string][]float64
}

// Precalc buckets every pair into intra- or inter-cluster accumulators,
// both at the entity level and the cluster level, according to the
// cluster label assigned to each entity.
func Precalc(pairs []Pair, clusterOf map[registry.EntityIndex]string) Distances {
	d := Distances{
		EntityIntra:  make(map[registry.EntityIndex][]float64),
		EntityInter:  make(map[registry.EntityIndex]map[string][]float64),
		ClusterIntra: make(map[string][]float64),
		ClusterInter: make(map[string]map[string][]float64),
	}
	for _, p := range pairs {
		c1, ok1 := clusterOf[p.I]
		c2, ok2 := clusterOf[p.J]
		if !ok1 || !ok2 {
			continue
		}
		if c1 == c2 {
			d.EntityIntra[p.I] = append(d.EntityIntra[p.I], p.D)
			d.EntityIntra[p.J] = append(d.EntityIntra[p.J], p.D)
			d.ClusterIntra[c1] = append(d.ClusterIntra[c1], p.D)
			continue
		}
		if d.EntityInter[p.I] == nil {
			d.EntityInter[p.I] = make(map[string][]float64)
		}
		if d.EntityInter[p.J] == nil {
			d.EntityInter[p.J] = make(map[string][]float64)
		}
		d.EntityInter[p.I][c2] = append(d.EntityInter[p.I][c2], p.D)
		d.EntityInter[p.J][c1] = append(d.EntityInter[p.J][c1], p.D)

		if d.ClusterInter[c1] == nil {
			d.ClusterInter[c1] = make(map[string][]float64)
		}
		if d.ClusterInter[c2] == nil {
			d.ClusterInter[c2] = make(map[string][]float64)
		}
		d.ClusterInter[c1][c2] = append(d.ClusterInter[c1][c2], p.D)
		d.ClusterInter[c2][c1] = append(d.ClusterInter[c2][c1], p.D)
	}
	return d
}

// ClusterAssignment is the cluster-membership information Silhouette,
// Dunn and Davies-Bouldin need that a bare Distances value doesn't retain
// on its own: which cluster each entity belongs to, and each cluster's
// size. Comparator callers build this alongside Distances from the same
// cluster-label map, so the two are always computed together.
type ClusterAssignment struct {
	ClusterOf map[registry.EntityIndex]string
	Sizes     map[string]int
}

// SilhouetteScore computes the global silhouette score and per-cluster
// partial scores.
func SilhouetteScore(assign ClusterAssignment, d Distances, linkage Linkage) (float64, map[string]float64) {
	partial := make(map[string]float64)
	total := 0.0
	n := 0

	// Summation order is fixed by sorting the entities; float addition is
	// not associative, and an identically-seeded validation must reproduce
	// its report bit for bit.
	entities := make([]registry.EntityIndex, 0, len(assign.ClusterOf))
	for e := range assign.ClusterOf {
		entities = append(entities, e)
	}
	sort.Slice(entities, func(i, j int) bool { return entities[i] < entities[j] })

	for _, e := range entities {
		c := assign.ClusterOf[e]
		n++

		a := 0.0
		if list, ok := d.EntityIntra[e]; ok {
			a = linkage.reduce(list)
		}

		numOtherClusters := len(assign.Sizes) - 1
		b := 0.0
		if inter, ok := d.EntityInter[e]; ok && len(inter) >= numOtherClusters && numOtherClusters > 0 {
			first := true
			for _, list := range inter {
				v := linkage.reduce(list)
				if first || v < b {
					b = v
					first = false
				}
			}
		}

		s := 0.0
		if numOtherClusters > 0 && assign.Sizes[c] > 1 && math.Max(a, b) > 0 {
			s = (b - a) / math.Max(a, b)
		}
		partial[c] += s
		total += s
	}

	for c, size := range assign.Sizes {
		if size > 0 {
			partial[c] = partial[c] / float64(size)
		}
	}
	if n == 0 {
		return 0, partial
	}
	return total / float64(n), partial
}

// DunnIndex computes min inter-cluster linkage over max intra-cluster
// linkage. If any cluster lacks an inter-cluster
// distance to at least one other cluster, the numerator is 0.
func DunnIndex(assign ClusterAssignment, d Distances, linkage Linkage) float64 {
	maxIntra := 0.0
	minInter := math.Inf(1)
	haveMinInter := false

	numClusters := len(assign.Sizes)
	for c := range assign.Sizes {
		if list, ok := d.ClusterIntra[c]; ok {
			v := linkage.reduce(list)
			if v > maxIntra {
				maxIntra = v
			}
		}

		inter, ok := d.ClusterInter[c]
		if !ok || len(inter) < numClusters-1 {
			minInter = 0
			haveMinInter = true
			continue
		}
		for _, list := range inter {
			v := linkage.reduce(list)
			if v < minInter {
				minInter = v
			}
		}
		haveMinInter = true
	}

	if !haveMinInter || maxIntra == 0 {
		return 0
	}
	return minInter / maxIntra
}

// DaviesBouldinIndex computes the average, over clusters, of the
// worst-case ratio of combined intra-cluster spread to inter-cluster
// separation. A pair whose inter-cluster linkage is 0 (undefined
// separation) contributes +Inf for that cluster's worst case.
func DaviesBouldinIndex(assign ClusterAssignment, d Distances, linkage Linkage) float64 {
	s := make(map[string]float64, len(assign.Sizes))
	for c := range assign.Sizes {
		if list, ok := d.ClusterIntra[c]; ok {
			s[c] = linkage.reduce(list)
		}
	}

	total := 0.0
	k := 0
	for _, c := range sortedClusters(assign.Sizes) {
		k++
		worst := 0.0
		found := false
		for cp := range assign.Sizes {
			if cp == c {
				continue
			}
			m := 0.0
			if inter, ok := d.ClusterInter[c][cp]; ok {
				m = linkage.reduce(inter)
			}
			var ratio float64
			if m == 0 {
				ratio = math.Inf(1)
			} else {
				ratio = (s[c] + s[cp]) / m
			}
			if !found || ratio > worst {
				worst = ratio
				found = true
			}
		}
		total += worst
	}
	if k == 0 {
		return 0
	}
	return total / float64(k)
}

// sortedClusters fixes the summation order over cluster labels, for the
// same bit-reproducibility reason SilhouetteScore sorts its entities.
func sortedClusters(sizes map[string]int) []string {
	out := make([]string, 0, len(sizes))
	for c := range sizes {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}
