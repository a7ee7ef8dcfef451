package sampler

import (
	"sort"

	"github.com/bionetslab/digest-go/internal/annotstore"
	"github.com/bionetslab/digest-go/internal/registry"
)

// DefaultBucketThreshold is the minimum cumulative candidate population a
// widened bucket window must reach before TermPreserving draws from it.
const DefaultBucketThreshold = 100

// sizedEntity pairs a candidate with its total annotation size, used to
// build the sorted bucket table.
type sizedEntity struct {
	entity registry.EntityIndex
	size   int
}

// TermPreserving replaces each original entity with one drawn from the
// smallest window of annotation-size buckets around the original's size
// whose cumulative population clears a threshold, so the replacement
// set's annotation-size distribution approximates the original's.
type TermPreserving struct {
	Threshold int

	annot  *annotstore.Store
	domain registry.Domain
	table  []sizedEntity // sorted by size
}

// NewTermPreserving constructs a sampler backed by an annotation store, with
// the default bucket-population threshold.
func NewTermPreserving(annot *annotstore.Store) *TermPreserving {
	return &TermPreserving{Threshold: DefaultBucketThreshold, annot: annot}
}

// Prepare builds the candidate table mapping each entity in the domain's
// candidate pool to its total annotation size, sorted once per run batch.
func (t *TermPreserving) Prepare(domain registry.Domain, ns registry.Namespace, original []registry.EntityIndex, n int, reg CandidateSource, rng Rng) error {
	t.domain = domain
	pool := CandidatePool(reg, domain, ns)
	t.table = make([]sizedEntity, 0, len(pool))
	for _, e := range pool {
		t.table = append(t.table, sizedEntity{entity: e, size: t.annot.AnnotationSize(domain, e)})
	}
	sort.Slice(t.table, func(i, j int) bool {
		if t.table[i].size != t.table[j].size {
			return t.table[i].size < t.table[j].size
		}
		return t.table[i].entity < t.table[j].entity
	})
	return nil
}

// Sample keeps `m - floor(m*p/100)` elements of original and, for each
// replaced position, draws a candidate whose annotation size falls within
// the narrowest bucket window around the replaced original's size that
// clears the threshold.
func (t *TermPreserving) Sample(original []registry.EntityIndex, replacePct int, run int, rng Rng) (Draw, error) {
	keepers, replaced := splitKeepReplace(original, replacePct, rng)
	replaceCount := len(replaced)
	if replaceCount == 0 {
		return Draw{Entities: keepers, Origin: keepers}, nil
	}

	keptSet := make(map[registry.EntityIndex]bool, len(keepers))
	for _, k := range keepers {
		keptSet[k] = true
	}

	chosen := make(map[registry.EntityIndex]bool, replaceCount)
	entities := make([]registry.EntityIndex, 0, len(keepers)+replaceCount)
	origin := make([]registry.EntityIndex, 0, len(keepers)+replaceCount)
	entities = append(entities, keepers...)
	origin = append(origin, keepers...)

	for i := 0; i < replaceCount; i++ {
		o := replaced[i]
		size := t.annot.AnnotationSize(t.domain, o)
		candidates := t.window(size, keptSet, chosen)
		if len(candidates) == 0 {
			return Draw{}, errInsufficientPool(0, 1)
		}
		pick := candidates[rng.Intn(len(candidates))]
		chosen[pick] = true
		entities = append(entities, pick)
		origin = append(origin, o)
	}
	return Draw{Entities: entities, Origin: origin}, nil
}

// window widens the size range [size-radius, size+radius] one size step
// per side at a time, starting with the bucket of exactly size, until
// either the whole table is covered or the eligible population (excluding
// keepers and already-chosen picks) clears the threshold.
func (t *TermPreserving) window(size int, exclude, chosen map[registry.EntityIndex]bool) []registry.EntityIndex {
	n := len(t.table)
	var eligible []registry.EntityIndex
	for radius := 0; ; radius++ {
		windowLo := sort.Search(n, func(i int) bool { return t.table[i].size >= size-radius })
		windowHi := sort.Search(n, func(i int) bool { return t.table[i].size > size+radius })
		eligible = eligible[:0]
		for i := windowLo; i < windowHi; i++ {
			e := t.table[i].entity
			if exclude[e] || chosen[e] {
				continue
			}
			eligible = append(eligible, e)
		}
		if len(eligible) >= t.Threshold || (windowLo == 0 && windowHi == len(t.table)) {
			out := make([]registry.EntityIndex, len(eligible))
			copy(out, eligible)
			return out
		}
	}
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i > n {
		return n
	}
	return i
}
