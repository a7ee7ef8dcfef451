// Package compare implements the four comparison strategies the
// validation engine runs over the sparse distance store: SetSelf (self-set
// cohesion), SetRef (set-vs-set match), IdRef (id-vs-set match), and
// Clustering (cluster-quality via the score package). Each strategy reads
// from the Annotation Store and Sparse Distance Store and returns a
// per-category Result. Engine holds references to its collaborators
// rather than owning data of its own, so strategies stay request-scoped
// and side-effect-free apart from distance extension.
package compare

import (
	"sort"

	"github.com/bionetslab/digest-go/internal/annotstore"
	"github.com/bionetslab/digest-go/internal/coefficient"
	"github.com/bionetslab/digest-go/internal/distmat"
	"github.com/bionetslab/digest-go/internal/registry"
)

// Result is one comparator strategy's per-category output, the
// comparator-level slice of the overall Report.
type Result struct {
	Scores    map[annotstore.Category]float64
	Missing   map[annotstore.Category]int
	MappedIDs map[annotstore.Category][]string
}

func newResult() Result {
	return Result{
		Scores:    make(map[annotstore.Category]float64),
		Missing:   make(map[annotstore.Category]int),
		MappedIDs: make(map[annotstore.Category][]string),
	}
}

// Engine holds the collaborators every strategy needs: the distance
// store (extended on demand), the annotation store, and the identifier
// registry, bound to one similarity coefficient.
type Engine struct {
	Dist  *distmat.Store
	Annot *annotstore.Store
	Reg   *registry.Registry
	Coef  coefficient.Coefficient

	extenders map[registry.Domain]*distmat.Extender
}

// NewEngine builds a comparator engine bound to one coefficient.
// Separate Engines are needed to compare under Jaccard vs Overlap.
func NewEngine(dist *distmat.Store, annot *annotstore.Store, reg *registry.Registry, coef coefficient.Coefficient) *Engine {
	return &Engine{
		Dist:      dist,
		Annot:     annot,
		Reg:       reg,
		Coef:      coef,
		extenders: make(map[registry.Domain]*distmat.Extender),
	}
}

func (e *Engine) extenderFor(domain registry.Domain) *distmat.Extender {
	if ext, ok := e.extenders[domain]; ok {
		return ext
	}
	ext := distmat.NewExtender(e.Dist, e.Annot, domain, e.Coef)
	e.extenders[domain] = ext
	return ext
}

func externalOf(reg *registry.Registry, entities []registry.EntityIndex, ns registry.Namespace) []string {
	out := make([]string, 0, len(entities))
	seen := make(map[string]bool)
	for _, e := range entities {
		for _, id := range reg.ExternalOf(e, ns) {
			if !seen[id] {
				seen[id] = true
				out = append(out, id)
			}
		}
	}
	sort.Strings(out)
	return out
}
