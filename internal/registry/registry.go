// Package registry interns external biomedical identifiers into dense,
// monotonic integer indices per id-namespace. It is append-only: once an
// id is assigned an index, that index is never reused or reassigned,
// which the distance-store index directories and the annotation store
// rely on for stability across a validation run.
package registry

import (
	"fmt"
	"sync"

	"github.com/bionetslab/digest-go/internal/digesterr"
)

// Domain separates namespaces and stores: every entity belongs to exactly one.
type Domain int

const (
	Gene Domain = iota
	Disease
)

func (d Domain) String() string {
	if d == Gene {
		return "gene"
	}
	return "disease"
}

// Namespace is an id-namespace such as "entrez", "mondo", or an alias
// namespace like "symbol" or "ICD-10".
type Namespace string

const (
	NamespaceEntrez Namespace = "entrez"
	NamespaceMondo  Namespace = "mondo"
	NamespaceICD10  Namespace = "ICD-10"
)

// KnownNamespaces enumerates namespaces this registry accepts without error.
// Canonical namespaces are entrez (gene) and mondo (disease); the rest are
// alias namespaces that may map many-to-many onto canonical entities.
var KnownNamespaces = map[Namespace]Domain{
	NamespaceEntrez: Gene,
	"symbol":        Gene,
	"ensembl":       Gene,
	"uniprot":       Gene,
	NamespaceMondo:  Disease,
	"omim":          Disease,
	"snomedct":      Disease,
	"umls":          Disease,
	"orpha":         Disease,
	"mesh":          Disease,
	"doid":          Disease,
	NamespaceICD10:  Disease,
}

// EntityIndex is a dense, monotonically assigned entity identifier.
type EntityIndex uint32

// Registry interns (namespace, external-id) pairs into EntityIndex values.
// Aliases are many-to-many: one external id may canonicalize to several
// entities, and one entity may have several external ids per namespace.
type Registry struct {
	mu sync.RWMutex

	// byNamespace[namespace][externalID] -> set of entity indices
	byNamespace map[Namespace]map[string][]EntityIndex
	// external[entityIndex][namespace] -> set of external ids
	external map[EntityIndex]map[Namespace][]string
	domain   map[EntityIndex]Domain
	next     EntityIndex
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		byNamespace: make(map[Namespace]map[string][]EntityIndex),
		external:    make(map[EntityIndex]map[Namespace][]string),
		domain:      make(map[EntityIndex]Domain),
	}
}

// Intern assigns (or returns the existing) entity index for an external id
// in a given namespace. A brand-new external id always allocates a fresh
// entity index; to alias an id onto an existing entity, use Alias.
func (r *Registry) Intern(ns Namespace, domain Domain, externalID string) (EntityIndex, error) {
	if _, ok := KnownNamespaces[ns]; !ok {
		return 0, digesterr.New(digesterr.UnknownIdType, "unknown id namespace %q", ns)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.lookupLocked(ns, externalID); ok && len(existing) > 0 {
		return existing[0], nil
	}

	idx := r.next
	r.next++
	r.addMappingLocked(ns, externalID, idx)
	r.domain[idx] = domain
	return idx, nil
}

// Alias records an additional (namespace, external-id) pair that resolves
// to an already-interned entity. Used for many-to-many alias expansion
// (e.g. ICD-10 ranges mapping several codes onto the same MONDO disease).
func (r *Registry) Alias(ns Namespace, externalID string, idx EntityIndex) error {
	if _, ok := KnownNamespaces[ns]; !ok {
		return digesterr.New(digesterr.UnknownIdType, "unknown id namespace %q", ns)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.addMappingLocked(ns, externalID, idx)
	return nil
}

func (r *Registry) addMappingLocked(ns Namespace, externalID string, idx EntityIndex) {
	if r.byNamespace[ns] == nil {
		r.byNamespace[ns] = make(map[string][]EntityIndex)
	}
	for _, existing := range r.byNamespace[ns][externalID] {
		if existing == idx {
			goto externalSide
		}
	}
	r.byNamespace[ns][externalID] = append(r.byNamespace[ns][externalID], idx)

externalSide:
	if r.external[idx] == nil {
		r.external[idx] = make(map[Namespace][]string)
	}
	for _, existing := range r.external[idx][ns] {
		if existing == externalID {
			return
		}
	}
	r.external[idx][ns] = append(r.external[idx][ns], externalID)
}

// Lookup returns the entity index for an external id, if exactly the
// literal string has been interned (no range expansion).
func (r *Registry) Lookup(ns Namespace, externalID string) (EntityIndex, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids, ok := r.lookupLocked(ns, externalID)
	if !ok || len(ids) == 0 {
		return 0, false
	}
	return ids[0], true
}

func (r *Registry) lookupLocked(ns Namespace, externalID string) ([]EntityIndex, bool) {
	m, ok := r.byNamespace[ns]
	if !ok {
		return nil, false
	}
	ids, ok := m[externalID]
	return ids, ok
}

// Canonicalize resolves an external id to every entity it denotes. It may
// yield more than one entity index when an alias namespace maps
// non-uniquely (e.g. expanded ICD-10 ranges).
func (r *Registry) Canonicalize(ns Namespace, externalID string) ([]EntityIndex, error) {
	if _, ok := KnownNamespaces[ns]; !ok {
		return nil, digesterr.New(digesterr.UnknownIdType, "unknown id namespace %q", ns)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids, _ := r.lookupLocked(ns, externalID)
	out := make([]EntityIndex, len(ids))
	copy(out, ids)
	return out, nil
}

// ExternalOf returns every external id known for an entity in a given
// namespace (reverse lookup).
func (r *Registry) ExternalOf(idx EntityIndex, ns Namespace) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	byNS, ok := r.external[idx]
	if !ok {
		return nil
	}
	ids := byNS[ns]
	out := make([]string, len(ids))
	copy(out, ids)
	return out
}

// DomainOf returns the domain an entity index belongs to.
func (r *Registry) DomainOf(idx EntityIndex) (Domain, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.domain[idx]
	return d, ok
}

// Len returns the number of distinct entities interned so far.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int(r.next)
}

// CanonicalizeAll resolves a batch of external ids, collecting every
// mapped entity index (deduplicated) and reporting ids that failed to map.
func (r *Registry) CanonicalizeAll(ns Namespace, externalIDs []string) (mapped []EntityIndex, unmapped []string, err error) {
	seen := make(map[EntityIndex]bool)
	for _, id := range externalIDs {
		ids, cErr := r.Canonicalize(ns, id)
		if cErr != nil {
			return nil, nil, cErr
		}
		if len(ids) == 0 {
			unmapped = append(unmapped, id)
			continue
		}
		for _, e := range ids {
			if !seen[e] {
				seen[e] = true
				mapped = append(mapped, e)
			}
		}
	}
	return mapped, unmapped, nil
}

// EntitiesInDomain returns every entity index interned under a domain, in
// unspecified order. Used by the Uniform background sampler to build its
// candidate pool.
func (r *Registry) EntitiesInDomain(domain Domain) []EntityIndex {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]EntityIndex, 0)
	for e, d := range r.domain {
		if d == domain {
			out = append(out, e)
		}
	}
	return out
}

// String formats an entity index for diagnostics.
func (idx EntityIndex) String() string {
	return fmt.Sprintf("e%d", uint32(idx))
}
