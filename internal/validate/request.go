package validate

import (
	"github.com/bionetslab/digest-go/internal/coefficient"
	"github.com/bionetslab/digest-go/internal/compare"
	"github.com/bionetslab/digest-go/internal/registry"
)

// Kind selects which target-input variant a Request carries.
type Kind int

const (
	SingleSet Kind = iota
	RefSet
	IdRef
	Clustering
)

// SamplerKind selects which background-sampling strategy a Request uses.
type SamplerKind int

const (
	Uniform SamplerKind = iota
	TermPreserving
	NetworkPreserving
)

// Request is a validation request: one target-input variant plus the
// driver-level run parameters. Exactly one of the per-Kind field groups
// is meaningful for a given Kind; the zero value of the others is
// ignored.
type Request struct {
	Kind Kind

	// Domain and Namespace describe the id-type of the primary target set:
	// Ids for SingleSet, TarIds for RefSet/IdRef, and the members' ids for
	// Clustering.
	Domain    registry.Domain
	Namespace registry.Namespace

	// SingleSet
	Ids []string

	// RefSet / IdRef
	RefIds       []string
	RefNamespace registry.Namespace
	RefDomain    registry.Domain // IdRef only; defaults to Domain for RefSet
	TarIds       []string
	Enriched     bool

	// Clustering
	Members []compare.ClusterMember

	NRandom     uint32
	Coefficient coefficient.Coefficient
	Sampler     SamplerKind
	ReplacePct  int
	Threshold   float64
	Seed        uint64
}
