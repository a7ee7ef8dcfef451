package distmat

import (
	"sync"

	"github.com/bionetslab/digest-go/internal/annotstore"
	"github.com/bionetslab/digest-go/internal/coefficient"
	"github.com/bionetslab/digest-go/internal/registry"
)

// Extender computes and inserts new rows/columns into the sparse distance
// store on demand. Given a domain, coefficient, category, and a set of
// entity-indices drawn from a target, it is the performance-critical
// inner loop of the validation engine: it must skip
// entities with empty term sets for the category, avoid recomputing
// previously-stored pairs, and run independently per category so a newly
// added entity that was only extended under one category still triggers
// extension when later queried under another.
//
// The shared (domain, coefficient) directory (internal/distmat.directory)
// tracks row assignment, which is category-independent; this type
// additionally tracks, per category, which entities have already had their
// rows computed against the rest of the directory, since an entity can be
// indexed (have a row) for one category's query and still be "new" from
// the perspective of a different category's extension pass.
type Extender struct {
	Store  *Store
	Annot  *annotstore.Store
	Domain registry.Domain
	Coef   coefficient.Coefficient

	mu        sync.Mutex
	extended  map[annotstore.Category]map[registry.EntityIndex]bool
}

// NewExtender builds an extender bound to a store/annotation-store pair.
func NewExtender(store *Store, annot *annotstore.Store, domain registry.Domain, coef coefficient.Coefficient) *Extender {
	return &Extender{
		Store:    store,
		Annot:    annot,
		Domain:   domain,
		Coef:     coef,
		extended: make(map[annotstore.Category]map[registry.EntityIndex]bool),
	}
}

// Extend fills in every missing pairwise distance for category k among the
// supplied entity-indices (against each other and against all previously
// known indices for this domain/coefficient). Calling Extend twice with
// the same entity set makes no further changes on the second call; calling
// it for a second category on entities already extended under a first
// category still computes that category's rows, since extension state is
// tracked per category.
func (x *Extender) Extend(category annotstore.Category, entities []registry.EntityIndex) error {
	dir := x.Store.directoryFor(x.Domain, x.Coef)

	// Step 1: new (for the *directory*) = S \ directory(D,c).
	var newToDirectory []registry.EntityIndex
	for _, e := range entities {
		if _, ok := dir.rowFor(e); !ok {
			newToDirectory = append(newToDirectory, e)
		}
	}
	// Step 2: append_entities assigns matrix-rows to entities not yet indexed.
	x.Store.AppendEntities(x.Domain, x.Coef, newToDirectory)

	// New *for this category's extension pass*: entities in S that have
	// never had their category-k distances computed, regardless of
	// whether they already hold a directory row from another category.
	x.mu.Lock()
	done := x.extended[category]
	if done == nil {
		done = make(map[registry.EntityIndex]bool)
		x.extended[category] = done
	}
	var newForCategory []registry.EntityIndex
	for _, e := range entities {
		if !done[e] {
			newForCategory = append(newForCategory, e)
		}
	}
	x.mu.Unlock()

	if len(newForCategory) == 0 {
		return nil
	}

	// Step 3+4: for every e in new, compute coefficient against every
	// e' in directory(D,c), e' != e, skipping empty-term pairs and
	// zero-valued pairs, then insert triples (min(row),max(row),value).
	allKnown := dir.entities() // includes rows just appended above

	var rows, cols []uint32
	var values []float32

	for _, e := range newForCategory {
		// Entities with empty term sets for this category contribute no
		// non-zero rows — skip them outright.
		eTerms := x.Annot.GetTerms(x.Domain, e, category)
		if len(eTerms) > 0 {
			eRow, _ := dir.rowFor(e)

			for _, other := range allKnown {
				if other == e {
					continue
				}
				otherTerms := x.Annot.GetTerms(x.Domain, other, category)
				if len(otherTerms) == 0 {
					continue
				}
				value := coefficient.Score(x.Coef, eTerms, otherTerms)
				if value == 0 {
					continue
				}
				otherRow, _ := dir.rowFor(other)
				row, col := eRow, otherRow
				if row == col {
					continue
				}
				if row > col {
					row, col = col, row
				}
				rows = append(rows, row)
				cols = append(cols, col)
				values = append(values, float32(value))
			}
		}

		x.mu.Lock()
		done[e] = true
		x.mu.Unlock()
	}

	if len(rows) == 0 {
		return nil
	}
	return x.Store.InsertTriples(x.Domain, string(category), x.Coef, rows, cols, values)
}
