// Package scoring computes composite channel health scores from weighted
// Z-normalized metrics and classifies them against configured thresholds.
package scoring

import (
	"math"

	"ChannelGovernor/internal/domain"
)

// Thresholds holds the two classification cut-offs. Either may be absent, in
// which case that class is never assigned. When both are present the loader
// guarantees Promote > Retire.
type Thresholds struct {
	Promote *float64
	Retire  *float64
}

// ComputeScores returns one composite score per channel: for every weighted
// metric the population Z-score is taken across the batch and summed by
// weight. A metric with zero variance uses a standard deviation of 1, which
// correctly makes every channel's contribution 0. Missing metric values count
// as 0 before normalization. Empty input on either side yields an empty map.
func ComputeScores(channels []domain.ChannelMetrics, weights map[string]float64) map[string]float64 {
	if len(channels) == 0 || len(weights) == 0 {
		return map[string]float64{}
	}

	n := float64(len(channels))

	means := make(map[string]float64, len(weights))
	stds := make(map[string]float64, len(weights))

	for metric := range weights {
		var total float64
		for _, ch := range channels {
			total += ch.Metric(metric)
		}
		means[metric] = total / n
	}

	for metric := range weights {
		var variance float64
		for _, ch := range channels {
			diff := ch.Metric(metric) - means[metric]
			variance += diff * diff
		}
		std := math.Sqrt(variance / n)
		if std == 0 {
			std = 1.0
		}
		stds[metric] = std
	}

	scores := make(map[string]float64, len(channels))
	for _, ch := range channels {
		var composite float64
		for metric, weight := range weights {
			z := (ch.Metric(metric) - means[metric]) / stds[metric]
			composite += weight * z
		}
		scores[ch.Name] = composite
	}

	return scores
}

// Classify buckets a score: promote when it reaches the promote threshold,
// retire when it falls to the retire threshold, watch otherwise. The function
// is pure and idempotent; a recommendation's status is always reproducible by
// re-applying it.
func Classify(score float64, t Thresholds) domain.Classification {
	if t.Promote != nil && score >= *t.Promote {
		return domain.StatusPromote
	}
	if t.Retire != nil && score <= *t.Retire {
		return domain.StatusRetire
	}
	return domain.StatusWatch
}
