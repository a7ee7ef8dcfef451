package validate

import "github.com/bionetslab/digest-go/internal/annotstore"

// Status records a validation run's terminal disposition.
type Status string

const (
	StatusOK        Status = "ok"
	StatusNoMapping Status = "NoMapping"
	StatusCancelled Status = "Cancelled"
)

// Report is the structured record a validation run returns: the observed
// score per metric/category, every randomized run's score, the resulting
// empirical p-values, the external ids each category actually scored
// against, and the run's terminal status.
type Report struct {
	InputScores   map[Metric]map[annotstore.Category]float64   `json:"input_scores"`
	RandomScores  map[Metric][]map[annotstore.Category]float64 `json:"random_scores"`
	PValues       map[Metric]map[annotstore.Category]float64   `json:"p_values"`
	MappedIDs     map[annotstore.Category][]string             `json:"mapped_ids"`
	Status        Status                                       `json:"status"`
	RunsCompleted int                                          `json:"runs_completed"`

	// MissingCount and PartialSilhouette are the observed target's
	// auxiliary comparator output, surfaced by the CLI under -verbose:
	// SetSelf's per-category missing-annotation count and Clustering's
	// per-cluster partial silhouette breakdown. Both are nil for
	// comparators that don't produce them (SetRef, IdRef, and
	// MissingCount under Clustering, PartialSilhouette under SetSelf).
	MissingCount      map[annotstore.Category]int                `json:"missing_count,omitempty"`
	PartialSilhouette map[annotstore.Category]map[string]float64 `json:"partial_silhouette,omitempty"`

	// State is the lifecycle stage Run last completed
	// when it returned, regardless of Status: Prepared if no target could
	// be scored, InputScored if NoMapping or cancelled before dispatch,
	// RandomScored if cancelled mid-fan-out, Reported once p-values were
	// computed.
	State State `json:"state"`
}

func newReport() Report {
	return Report{
		InputScores:  make(map[Metric]map[annotstore.Category]float64),
		RandomScores: make(map[Metric][]map[annotstore.Category]float64),
		PValues:      make(map[Metric]map[annotstore.Category]float64),
		MappedIDs:    make(map[annotstore.Category][]string),
	}
}

// empiricalPValue implements the add-one estimator:
// `p = (1 + |{r : x_r ≥ x_obs}|) / (N + 1)` when the metric is maximizing,
// with the comparison flipped to `≤` otherwise. It never emits 0.
func empiricalPValue(obs float64, randomValues []float64, maximizing bool) float64 {
	count := 0
	for _, x := range randomValues {
		if maximizing {
			if x >= obs {
				count++
			}
		} else if x <= obs {
			count++
		}
	}
	return float64(1+count) / float64(len(randomValues)+1)
}
