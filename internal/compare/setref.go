package compare

import (
	"github.com/bionetslab/digest-go/internal/annotstore"
	"github.com/bionetslab/digest-go/internal/coefficient"
	"github.com/bionetslab/digest-go/internal/registry"
)

// SetRef computes, per category, the fraction of the target set whose
// similarity to the reference set's aggregate term set exceeds theta.
// Higher is better: more of the target resembles the reference.
func (e *Engine) SetRef(domain registry.Domain, refIDs []string, refNS registry.Namespace, tarIDs []string, tarNS registry.Namespace, theta float64, enriched bool) (Result, error) {
	refEntities, _, err := e.Reg.CanonicalizeAll(refNS, refIDs)
	if err != nil {
		return Result{}, err
	}
	tarEntities, _, err := e.Reg.CanonicalizeAll(tarNS, tarIDs)
	if err != nil {
		return Result{}, err
	}

	res := newResult()
	for _, k := range annotstore.CategoriesFor(domain) {
		refTerms := e.referenceTerms(domain, refEntities, k, enriched)

		matches := 0
		for _, t := range tarEntities {
			tTerms := e.Annot.GetTerms(domain, t, k)
			s := 0.0
			if len(tTerms) > 0 {
				s = coefficient.Score(e.Coef, tTerms, refTerms)
			}
			if s > theta {
				matches++
			}
		}

		if len(tarEntities) == 0 {
			res.Scores[k] = 0
		} else {
			res.Scores[k] = float64(matches) / float64(len(tarEntities))
		}
		res.MappedIDs[k] = externalOf(e.Reg, tarEntities, tarNS)
	}
	return res, nil
}

// referenceTerms builds the reference set's aggregate term set for a
// category, optionally restricted to terms significantly over-represented
// in the reference. Over-representation
// is judged by frequency: a term counts only if at least half the
// reference entities carry it. With a singleton reference the notion of
// over-representation is vacuous, so the full union is used instead.
func (e *Engine) referenceTerms(domain registry.Domain, refEntities []registry.EntityIndex, k annotstore.Category, enriched bool) coefficient.TermSet {
	sets := make([]coefficient.TermSet, 0, len(refEntities))
	for _, r := range refEntities {
		sets = append(sets, e.Annot.GetTerms(domain, r, k))
	}
	union := coefficient.Union(sets...)
	if !enriched || len(refEntities) <= 1 {
		return union
	}

	counts := make(map[uint32]int, len(union))
	for _, s := range sets {
		for term := range s {
			counts[term]++
		}
	}
	threshold := (len(refEntities) + 1) / 2
	enrichedTerms := make(coefficient.TermSet)
	for term, n := range counts {
		if n >= threshold {
			enrichedTerms[term] = struct{}{}
		}
	}
	return enrichedTerms
}
