package compare

import (
	"github.com/bionetslab/digest-go/internal/annotstore"
	"github.com/bionetslab/digest-go/internal/registry"
)

// SetSelf computes, per category, how cohesive the target set is with
// itself — lower is more cohesive. m is |I|, the number of target ids
// that canonicalize to an entity, not the annotated subset; poorly annotated targets are
// deliberately penalized by scoring every pair outside I_k as maximally
// dissimilar.
func (e *Engine) SetSelf(domain registry.Domain, ns registry.Namespace, ids []string) (Result, error) {
	mapped, _, err := e.Reg.CanonicalizeAll(ns, ids)
	if err != nil {
		return Result{}, err
	}

	res := newResult()
	ext := e.extenderFor(domain)

	for _, k := range annotstore.CategoriesFor(domain) {
		if err := ext.Extend(k, mapped); err != nil {
			return Result{}, err
		}

		var ik []registry.EntityIndex
		for _, i := range mapped {
			if e.Annot.HasAnnotation(domain, i, k) {
				ik = append(ik, i)
			}
		}
		res.Missing[k] = len(mapped) - len(ik)
		res.MappedIDs[k] = externalOf(e.Reg, ik, ns)

		m := len(mapped)
		if m < 2 {
			res.Scores[k] = 0
			continue
		}
		totalPairs := float64(m) * float64(m-1) / 2

		view := e.Dist.GetSubmatrix(domain, string(k), e.Coef, ik)
		storedCount := float64(view.StoredCount())
		sumStored := view.Sum()

		res.Scores[k] = (storedCount - sumStored + (totalPairs - storedCount)) / totalPairs
	}
	return res, nil
}
