// Package validate implements the validation driver: it composes a
// comparator with a background sampler, runs N randomized repetitions,
// and reports an empirical p-value per metric/category. The fan-out
// over repetitions uses golang.org/x/sync/errgroup so a failing or
// cancelled run can abort the remaining work cleanly.
package validate

// Metric identifies one scalar statistic the driver scores, per category,
// for both the observed input and every randomized repetition.
type Metric string

const (
	MetricSelfCohesion  Metric = "self_cohesion"
	MetricSetMatch      Metric = "set_match"
	MetricIdMatch       Metric = "id_match"
	MetricSilhouette    Metric = "silhouette"
	MetricDunn          Metric = "dunn"
	MetricDaviesBouldin Metric = "davies_bouldin"
)

// IsMaximizing reports whether larger values of the metric are "better",
// which determines the direction of the empirical p-value comparison.
// SelfCohesion (a distance: lower is more cohesive) and
// Davies-Bouldin (lower is better-separated) are the two minimizing
// metrics; every other metric is maximizing.
func (m Metric) IsMaximizing() bool {
	return m != MetricSelfCohesion && m != MetricDaviesBouldin
}
