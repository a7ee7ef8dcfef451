// Package annotstore holds per-domain annotation data: for every entity,
// the set of term ids it carries in each attribute category. It is
// append-only and safe for concurrent readers under a single writer.
package annotstore

import (
	"sync"

	"github.com/bionetslab/digest-go/internal/coefficient"
	"github.com/bionetslab/digest-go/internal/registry"
)

// Category is one annotation axis. The set is closed per domain:
// gene categories are go.BP/go.CC/go.MF/pathway.kegg, disease
// categories are related_genes/related_variants/related_pathways.
type Category string

const (
	CategoryGOBiologicalProcess Category = "go.BP"
	CategoryGOCellularComponent Category = "go.CC"
	CategoryGOMolecularFunction Category = "go.MF"
	CategoryPathwayKEGG         Category = "pathway.kegg"

	CategoryRelatedGenes     Category = "related_genes"
	CategoryRelatedVariants  Category = "related_variants"
	CategoryRelatedPathways  Category = "related_pathways"
)

// CategoriesFor returns the closed set of categories valid for a domain.
func CategoriesFor(domain registry.Domain) []Category {
	if domain == registry.Gene {
		return []Category{CategoryGOBiologicalProcess, CategoryGOCellularComponent, CategoryGOMolecularFunction, CategoryPathwayKEGG}
	}
	return []Category{CategoryRelatedGenes, CategoryRelatedVariants, CategoryRelatedPathways}
}

type key struct {
	domain   registry.Domain
	category Category
	entity   registry.EntityIndex
}

// Store holds entity-index -> term-set per (domain, category).
type Store struct {
	mu    sync.RWMutex
	terms map[key]coefficient.TermSet
	// present distinguishes "never extended" from "extended with an empty set".
	present map[key]bool
	known   map[registry.Domain]map[registry.EntityIndex]bool
}

// New creates an empty annotation store.
func New() *Store {
	return &Store{
		terms:   make(map[key]coefficient.TermSet),
		present: make(map[key]bool),
		known:   make(map[registry.Domain]map[registry.EntityIndex]bool),
	}
}

// GetTerms returns the term set for (entity, category), or an empty set if
// never annotated. The returned set must not be mutated by the caller.
func (s *Store) GetTerms(domain registry.Domain, entity registry.EntityIndex, category Category) coefficient.TermSet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	k := key{domain, category, entity}
	if ts, ok := s.terms[k]; ok {
		return ts
	}
	return coefficient.TermSet{}
}

// HasAnnotation distinguishes "empty but present" from "never annotated".
func (s *Store) HasAnnotation(domain registry.Domain, entity registry.EntityIndex, category Category) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.present[key{domain, category, entity}]
}

// Row is a single (entity, category, term-set) update applied by Extend.
type Row struct {
	Entity   registry.EntityIndex
	Category Category
	Terms    coefficient.TermSet
}

// Extend idempotently unions new term-set rows into the store. Calling
// Extend twice with the same rows is a no-op on the second call.
func (s *Store) Extend(domain registry.Domain, rows []Row) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.known[domain] == nil {
		s.known[domain] = make(map[registry.EntityIndex]bool)
	}

	for _, r := range rows {
		k := key{domain, r.Category, r.Entity}
		existing, ok := s.terms[k]
		if !ok {
			existing = coefficient.TermSet{}
		}
		merged := make(coefficient.TermSet, len(existing)+len(r.Terms))
		for id := range existing {
			merged[id] = struct{}{}
		}
		for id := range r.Terms {
			merged[id] = struct{}{}
		}
		s.terms[k] = merged
		s.present[k] = true
		s.known[domain][r.Entity] = true
	}
}

// KnownEntities returns every entity index that has ever been extended
// (in any category) for a domain.
func (s *Store) KnownEntities(domain registry.Domain) []registry.EntityIndex {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]registry.EntityIndex, 0, len(s.known[domain]))
	for e := range s.known[domain] {
		out = append(out, e)
	}
	return out
}

// IterAll calls fn for every (entity, term-set) pair present for a
// (domain, category), in unspecified order.
func (s *Store) IterAll(domain registry.Domain, category Category, fn func(registry.EntityIndex, coefficient.TermSet)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for k, ts := range s.terms {
		if k.domain == domain && k.category == category {
			fn(k.entity, ts)
		}
	}
}

// AnnotationSize returns |⋃_k terms(entity,k)| across all categories valid
// for the domain — used by the term-preserving sampler to bucket entities
// by total annotation size.
func (s *Store) AnnotationSize(domain registry.Domain, entity registry.EntityIndex) int {
	union := coefficient.TermSet{}
	for _, cat := range CategoriesFor(domain) {
		for id := range s.GetTerms(domain, entity, cat) {
			union[id] = struct{}{}
		}
	}
	return len(union)
}
