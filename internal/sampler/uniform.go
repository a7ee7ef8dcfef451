package sampler

import "github.com/bionetslab/digest-go/internal/registry"

// Uniform draws replacements uniformly, without replacement, from the
// domain's candidate pool for the namespace minus the keepers.
type Uniform struct {
	pool []registry.EntityIndex
}

// NewUniform constructs an unprepared Uniform sampler.
func NewUniform() *Uniform {
	return &Uniform{}
}

// Prepare builds the static candidate pool for the domain/namespace. The
// pool does not depend on the original set or the run index, so it is
// computed once and reused by every Sample call.
func (u *Uniform) Prepare(domain registry.Domain, ns registry.Namespace, original []registry.EntityIndex, n int, reg CandidateSource, rng Rng) error {
	u.pool = CandidatePool(reg, domain, ns)
	return nil
}

// Sample keeps `m - floor(m*p/100)` elements of original and draws the
// remainder uniformly without replacement from the pool minus the keepers,
// so a draw contains no duplicate entity.
func (u *Uniform) Sample(original []registry.EntityIndex, replacePct int, run int, rng Rng) (Draw, error) {
	keepers, replaced := splitKeepReplace(original, replacePct, rng)
	replaceCount := len(replaced)
	if replaceCount == 0 {
		return Draw{Entities: keepers, Origin: keepers}, nil
	}

	keptSet := make(map[registry.EntityIndex]bool, len(keepers))
	for _, k := range keepers {
		keptSet[k] = true
	}

	available := make([]registry.EntityIndex, 0, len(u.pool))
	for _, e := range u.pool {
		if !keptSet[e] {
			available = append(available, e)
		}
	}
	if len(available) < replaceCount {
		return Draw{}, errInsufficientPool(len(available), replaceCount)
	}

	entities := make([]registry.EntityIndex, 0, len(keepers)+replaceCount)
	origin := make([]registry.EntityIndex, 0, len(keepers)+replaceCount)
	entities = append(entities, keepers...)
	origin = append(origin, keepers...)
	for i := 0; i < replaceCount; i++ {
		j := rng.Intn(len(available))
		entities = append(entities, available[j])
		origin = append(origin, replaced[i])
		available[j] = available[len(available)-1]
		available = available[:len(available)-1]
	}
	return Draw{Entities: entities, Origin: origin}, nil
}
