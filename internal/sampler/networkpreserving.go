package sampler

import (
	"github.com/bionetslab/digest-go/internal/network"
	"github.com/bionetslab/digest-go/internal/registry"
)

// NetworkPreserving generates all N replacement modules in one
// precomputation phase by degree-matched random walks seeded at
// |connected_components(G[O])| non-adjacent vertices, expanding each walk
// until the module reaches the original's size. Sample applies the shared
// keep/replace split and fills the replaced slots from the run's
// pre-generated module, so replace_pct still governs how much of the
// original survives even though the module itself is sized to the full
// target.
type NetworkPreserving struct {
	graph   network.EntityNetwork
	modules [][]registry.EntityIndex
}

// NewNetworkPreserving constructs a sampler backed by an entity network.
func NewNetworkPreserving(graph network.EntityNetwork) *NetworkPreserving {
	return &NetworkPreserving{graph: graph}
}

// Prepare generates all N replacement modules up front, each grown by
// degree-matched random walks from randomly chosen, mutually non-adjacent
// seed vertices of G, one seed per connected component of the original
// within G.
func (np *NetworkPreserving) Prepare(domain registry.Domain, ns registry.Namespace, original []registry.EntityIndex, n int, reg CandidateSource, rng Rng) error {
	components := network.ConnectedComponents(np.graph, original)
	np.modules = make([][]registry.EntityIndex, n)
	for r := 0; r < n; r++ {
		module, err := np.generateModule(components, len(original), rng)
		if err != nil {
			return err
		}
		np.modules[r] = module
	}
	return nil
}

// Sample keeps `m - floor(m*p/100)` elements of original and fills the
// remaining slots from the run's pre-generated module, skipping any
// module entity already kept.
func (np *NetworkPreserving) Sample(original []registry.EntityIndex, replacePct int, run int, rng Rng) (Draw, error) {
	if run < 0 || run >= len(np.modules) {
		return Draw{}, errInsufficientPool(len(np.modules), run+1)
	}

	keepers, replaced := splitKeepReplace(original, replacePct, rng)
	replaceCount := len(replaced)
	if replaceCount == 0 {
		return Draw{Entities: keepers, Origin: keepers}, nil
	}

	keptSet := make(map[registry.EntityIndex]bool, len(keepers))
	for _, k := range keepers {
		keptSet[k] = true
	}

	entities := make([]registry.EntityIndex, 0, len(keepers)+replaceCount)
	origin := make([]registry.EntityIndex, 0, len(keepers)+replaceCount)
	entities = append(entities, keepers...)
	origin = append(origin, keepers...)

	i := 0
	for _, candidate := range np.modules[run] {
		if i >= replaceCount {
			break
		}
		if keptSet[candidate] {
			continue
		}
		entities = append(entities, candidate)
		origin = append(origin, replaced[i])
		i++
	}
	if i < replaceCount {
		return Draw{}, errInsufficientPool(i, replaceCount)
	}
	return Draw{Entities: entities, Origin: origin}, nil
}

// generateModule seeds one random walk per connected component of G[O] at
// a non-adjacent vertex, then expands every walk in round-robin fashion,
// preferring degree-matched neighbors, until the module reaches size m.
func (np *NetworkPreserving) generateModule(components [][]registry.EntityIndex, m int, rng Rng) ([]registry.EntityIndex, error) {
	nodes := np.graph.Nodes()
	if len(nodes) == 0 {
		return nil, errInsufficientPool(0, m)
	}

	numSeeds := len(components)
	if numSeeds == 0 {
		numSeeds = 1
	}
	seeds := np.pickNonAdjacentSeeds(nodes, numSeeds, rng)

	module := make(map[registry.EntityIndex]bool, m)
	order := make([]registry.EntityIndex, 0, m)
	for _, s := range seeds {
		if len(order) >= m {
			break
		}
		if !module[s] {
			module[s] = true
			order = append(order, s)
		}
	}

	frontier := append([]registry.EntityIndex{}, order...)
	for len(order) < m {
		grew := false
		nextFrontier := make([]registry.EntityIndex, 0, len(frontier))
		for _, v := range frontier {
			if len(order) >= m {
				break
			}
			neighbors := np.graph.Neighbors(v)
			bestDegreeDelta := -1
			var best registry.EntityIndex
			found := false
			targetDegree := np.graph.Degree(v)
			for _, n := range neighbors {
				if module[n] {
					continue
				}
				delta := abs(np.graph.Degree(n) - targetDegree)
				if !found || delta < bestDegreeDelta {
					bestDegreeDelta = delta
					best = n
					found = true
				}
			}
			if found {
				module[best] = true
				order = append(order, best)
				nextFrontier = append(nextFrontier, best)
				grew = true
			}
			nextFrontier = append(nextFrontier, v)
		}
		frontier = nextFrontier
		if !grew {
			break
		}
	}

	if len(order) < m {
		for _, v := range nodes {
			if len(order) >= m {
				break
			}
			if !module[v] {
				module[v] = true
				order = append(order, v)
			}
		}
	}
	if len(order) < m {
		return nil, errInsufficientPool(len(order), m)
	}
	return order[:m], nil
}

// pickNonAdjacentSeeds draws up to numSeeds mutually non-adjacent vertices
// at random, falling back to whatever distinct vertices it has found once
// the candidate pool is exhausted or over-constrained (a fully connected
// graph cannot offer numSeeds pairwise non-adjacent vertices).
func (np *NetworkPreserving) pickNonAdjacentSeeds(nodes []registry.EntityIndex, numSeeds int, rng Rng) []registry.EntityIndex {
	tried := make(map[registry.EntityIndex]bool, len(nodes))
	var seeds []registry.EntityIndex
	maxAttempts := len(nodes) * 4
	for attempt := 0; attempt < maxAttempts && len(seeds) < numSeeds && len(tried) < len(nodes); attempt++ {
		candidate := nodes[rng.Intn(len(nodes))]
		if tried[candidate] {
			continue
		}
		tried[candidate] = true
		nonAdjacent := true
		for _, s := range seeds {
			if np.graph.HasEdge(candidate, s) {
				nonAdjacent = false
				break
			}
		}
		if nonAdjacent {
			seeds = append(seeds, candidate)
		}
	}
	for _, v := range nodes {
		if len(seeds) >= numSeeds {
			break
		}
		alreadySeed := false
		for _, s := range seeds {
			if s == v {
				alreadySeed = true
				break
			}
		}
		if !alreadySeed {
			seeds = append(seeds, v)
		}
	}
	return seeds
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
