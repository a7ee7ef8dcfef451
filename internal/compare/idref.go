package compare

import (
	"github.com/bionetslab/digest-go/internal/annotstore"
	"github.com/bionetslab/digest-go/internal/coefficient"
	"github.com/bionetslab/digest-go/internal/digesterr"
	"github.com/bionetslab/digest-go/internal/registry"
)

// IdRef compares a single reference id against a target set.
// Same-domain pairs behave exactly as SetRef with R={ref}.
// Cross-domain pairs are supported only for disease-ref/gene-target and
// gene-ref/disease-target, via the pathway substitution: a disease's
// related_pathways term set stands in for pathway.kegg on the gene side.
// Any other cross-domain pairing fails with UnsupportedCrossDomain.
func (e *Engine) IdRef(refID string, refNS registry.Namespace, refDomain registry.Domain, tarIDs []string, tarNS registry.Namespace, tarDomain registry.Domain, theta float64) (Result, error) {
	refEntities, err := e.Reg.Canonicalize(refNS, refID)
	if err != nil {
		return Result{}, err
	}
	tarEntities, _, err := e.Reg.CanonicalizeAll(tarNS, tarIDs)
	if err != nil {
		return Result{}, err
	}

	if refDomain == tarDomain {
		return e.idRefSameDomain(refDomain, refEntities, tarEntities, tarNS, theta)
	}

	var refCategory, tarCategory annotstore.Category
	switch {
	case refDomain == registry.Disease && tarDomain == registry.Gene:
		refCategory, tarCategory = annotstore.CategoryRelatedPathways, annotstore.CategoryPathwayKEGG
	case refDomain == registry.Gene && tarDomain == registry.Disease:
		refCategory, tarCategory = annotstore.CategoryPathwayKEGG, annotstore.CategoryRelatedPathways
	default:
		return Result{}, digesterr.New(digesterr.UnsupportedCrossDomain,
			"id_ref: no substitution defined for ref domain %s, target domain %s", refDomain, tarDomain)
	}

	sets := make([]coefficient.TermSet, 0, len(refEntities))
	for _, r := range refEntities {
		sets = append(sets, e.Annot.GetTerms(refDomain, r, refCategory))
	}
	refTerms := coefficient.Union(sets...)

	matches := 0
	for _, t := range tarEntities {
		tTerms := e.Annot.GetTerms(tarDomain, t, tarCategory)
		s := 0.0
		if len(tTerms) > 0 {
			s = coefficient.Score(e.Coef, tTerms, refTerms)
		}
		if s > theta {
			matches++
		}
	}

	res := newResult()
	score := 0.0
	if len(tarEntities) > 0 {
		score = float64(matches) / float64(len(tarEntities))
	}
	res.Scores[tarCategory] = score
	res.MappedIDs[tarCategory] = externalOf(e.Reg, tarEntities, tarNS)
	return res, nil
}

func (e *Engine) idRefSameDomain(domain registry.Domain, refEntities, tarEntities []registry.EntityIndex, tarNS registry.Namespace, theta float64) (Result, error) {
	res := newResult()
	for _, k := range annotstore.CategoriesFor(domain) {
		sets := make([]coefficient.TermSet, 0, len(refEntities))
		for _, r := range refEntities {
			sets = append(sets, e.Annot.GetTerms(domain, r, k))
		}
		refTerms := coefficient.Union(sets...)

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
