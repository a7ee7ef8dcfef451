package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/bionetslab/digest-go/internal/coefficient"
	"github.com/bionetslab/digest-go/internal/compare"
	"github.com/bionetslab/digest-go/internal/registry"
	"github.com/bionetslab/digest-go/internal/validate"
)

// clusterMemberJSON is the on-disk shape of one Clustering assignment.
type clusterMemberJSON struct {
	ID      string `json:"id"`
	Cluster string `json:"cluster"`
}

// requestJSON is the on-disk shape of a validation request, the format
// `digest validate -input` reads: one target-input variant plus the
// driver-level run parameters.
type requestJSON struct {
	Kind string `json:"kind"` // "single_set" | "ref_set" | "id_ref" | "clustering"

	Domain    string `json:"domain"`    // "gene" | "disease"
	Namespace string `json:"namespace"` // e.g. "entrez", "symbol", "mondo"

	Ids []string `json:"ids,omitempty"` // single_set

	RefIds       []string `json:"ref_ids,omitempty"`
	RefNamespace string   `json:"ref_namespace,omitempty"`
	RefDomain    string   `json:"ref_domain,omitempty"` // id_ref only
	TarIds       []string `json:"tar_ids,omitempty"`
	Enriched     bool     `json:"enriched,omitempty"`

	Members []clusterMemberJSON `json:"members,omitempty"`

	NRandom     uint32  `json:"n_random"`
	Coefficient string  `json:"coefficient"` // "jaccard" | "overlap"
	Sampler     string  `json:"sampler"`     // "uniform" | "term_preserving" | "network_preserving"
	ReplacePct  int     `json:"replace_pct"`
	Threshold   float64 `json:"threshold"`
	Seed        uint64  `json:"seed"`
}

// loadRequest reads and decodes a requestJSON file into a validate.Request.
func loadRequest(path string) (validate.Request, error) {
	f, err := os.Open(path)
	if err != nil {
		return validate.Request{}, fmt.Errorf("open request file: %w", err)
	}
	defer f.Close()

	var raw requestJSON
	if err := json.NewDecoder(f).Decode(&raw); err != nil {
		return validate.Request{}, fmt.Errorf("decode request file: %w", err)
	}
	return raw.toRequest()
}

func (raw requestJSON) toRequest() (validate.Request, error) {
	domain, err := registry.ParseDomain(raw.Domain)
	if err != nil {
		return validate.Request{}, fmt.Errorf("request.domain: %w", err)
	}

	req := validate.Request{
		Domain:       domain,
		Namespace:    registry.Namespace(raw.Namespace),
		Ids:          raw.Ids,
		RefIds:       raw.RefIds,
		RefNamespace: registry.Namespace(raw.RefNamespace),
		TarIds:       raw.TarIds,
		Enriched:     raw.Enriched,
		NRandom:      raw.NRandom,
		ReplacePct:   raw.ReplacePct,
		Threshold:    raw.Threshold,
		Seed:         raw.Seed,
	}

	switch raw.Kind {
	case "single_set":
		req.Kind = validate.SingleSet
	case "ref_set":
		req.Kind = validate.RefSet
		req.RefDomain = domain
	case "id_ref":
		req.Kind = validate.IdRef
		refDomain := domain
		if raw.RefDomain != "" {
			d, err := registry.ParseDomain(raw.RefDomain)
			if err != nil {
				return validate.Request{}, fmt.Errorf("request.ref_domain: %w", err)
			}
			refDomain = d
		}
		req.RefDomain = refDomain
	case "clustering":
		req.Kind = validate.Clustering
		members := make([]compare.ClusterMember, 0, len(raw.Members))
		for _, m := range raw.Members {
			members = append(members, compare.ClusterMember{ID: m.ID, Cluster: m.Cluster})
		}
		req.Members = members
	default:
		return validate.Request{}, fmt.Errorf("request.kind: unknown kind %q", raw.Kind)
	}

	switch raw.Coefficient {
	case "", "jaccard":
		req.Coefficient = coefficient.Jaccard
	case "overlap":
		req.Coefficient = coefficient.Overlap
	default:
		return validate.Request{}, fmt.Errorf("request.coefficient: unknown coefficient %q", raw.Coefficient)
	}

	switch raw.Sampler {
	case "", "uniform":
		req.Sampler = validate.Uniform
	case "term_preserving":
		req.Sampler = validate.TermPreserving
	case "network_preserving":
		req.Sampler = validate.NetworkPreserving
	default:
		return validate.Request{}, fmt.Errorf("request.sampler: unknown sampler %q", raw.Sampler)
	}

	return req, nil
}
