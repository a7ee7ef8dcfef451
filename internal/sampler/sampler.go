// Package sampler implements the three background-sampling strategies the
// Validation Driver draws randomized repetitions from: Uniform,
// TermPreserving, and NetworkPreserving. All three keep
// `m - floor(m*p/100)` original elements and draw the remainder from a
// strategy-specific candidate distribution, so the shared keep/replace
// split lives here and each strategy only implements candidate selection.
package sampler

import (
	"math/rand"
	"sort"

	"github.com/bionetslab/digest-go/internal/digesterr"
	"github.com/bionetslab/digest-go/internal/registry"
)

// Rng is the randomness source threaded through every sampler call so
// that validate(request) with an identical seed reproduces bit-identical
// reports. *rand.Rand satisfies it directly.
type Rng interface {
	Intn(n int) int
	Float64() float64
}

// NewRng builds a deterministic randomness source from a seed.
func NewRng(seed uint64) Rng {
	return rand.New(rand.NewSource(int64(seed)))
}

// CandidateSource resolves the candidate pool a sampler draws replacements
// from: every entity in a domain that carries a non-empty id in the
// requested namespace.
type CandidateSource interface {
	EntitiesInDomain(domain registry.Domain) []registry.EntityIndex
	ExternalOf(idx registry.EntityIndex, ns registry.Namespace) []string
}

// CandidatePool filters a domain's entities down to those with at least
// one external id in ns. The pool is sorted by entity index so that draws
// made from it with an identical seed are reproducible; EntitiesInDomain
// iterates a map and gives no stable order on its own.
func CandidatePool(reg CandidateSource, domain registry.Domain, ns registry.Namespace) []registry.EntityIndex {
	all := reg.EntitiesInDomain(domain)
	out := make([]registry.EntityIndex, 0, len(all))
	for _, e := range all {
		if len(reg.ExternalOf(e, ns)) > 0 {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Draw is one sampler output: Entities is the size-preserving replacement
// id-set, and Origin pairs each entry with the original entity it stands
// in for (itself, for a kept entry). Callers that need to carry
// position-specific provenance across a substitution — the Validation
// Driver's Clustering path re-attaches the replaced original's cluster
// label to its replacement — use Origin instead of re-deriving the
// keep/replace split themselves, which the RNG draw makes otherwise
// unrecoverable from Entities alone.
type Draw struct {
	Entities []registry.EntityIndex
	Origin   []registry.EntityIndex
}

// Sampler draws replacement id-sets of a requested size.
// Prepare is called once per validation run, before any Sample call, so
// implementations that need batch precomputation (NetworkPreserving) do
// their heavy lifting there; Uniform and TermPreserving can no-op it or
// use it to build a reusable candidate index.
type Sampler interface {
	Prepare(domain registry.Domain, ns registry.Namespace, original []registry.EntityIndex, n int, reg CandidateSource, rng Rng) error
	Sample(original []registry.EntityIndex, replacePct int, run int, rng Rng) (Draw, error)
}

// splitKeepReplace partitions original into keepers and replaced, both in
// original relative order: keep `m - floor(m*p/100)`
// elements, uniformly sampled without replacement. Preserving relative
// order lets callers (the Validation Driver, for Clustering) pair each
// drawn replacement at output position i with replaced[i]'s provenance
// (e.g. its cluster label) without a separate bookkeeping pass.
func splitKeepReplace(original []registry.EntityIndex, replacePct int, rng Rng) (keepers, replaced []registry.EntityIndex) {
	m := len(original)
	replaceCount := (m * replacePct) / 100

	order := make([]int, m)
	for i := range order {
		order[i] = i
	}
	for i := m - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		order[i], order[j] = order[j], order[i]
	}

	isReplaced := make(map[int]bool, replaceCount)
	for _, i := range order[:replaceCount] {
		isReplaced[i] = true
	}

	for i, e := range original {
		if isReplaced[i] {
			replaced = append(replaced, e)
		} else {
			keepers = append(keepers, e)
		}
	}
	return keepers, replaced
}

func errInsufficientPool(have, need int) error {
	return digesterr.New(digesterr.InsufficientBackground,
		"background candidate pool has %d entities, need %d replacements", have, need)
}
