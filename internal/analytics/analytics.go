package analytics

import (
	"time"

	"github.com/August26/proxytrial/internal/model"
)

// Compute summarises a finished batch.
func Compute(results []model.UnitResult, duration time.Duration) model.BatchStats {
	stats := model.BatchStats{
		TotalCandidates:       len(results),
		TotalProcessingTimeMs: duration.Milliseconds(),
	}

	var latencySum int64
	var latencyCount int64

	for _, r := range results {
		if r.Err != "" {
			stats.AbortedUnits++
		}

		for _, v := range r.Verdicts {
			stats.TotalURIs++
			stats.Trials += v.RepeatTotal
			stats.Timeouts += v.Count(model.OutcomeTimeout)
			stats.Failures += v.Count(model.OutcomeFailure)
			stats.ContentMismatches += v.Count(model.OutcomeContentMismatch)

			switch v.Classification() {
			case model.AllSucceeded:
				stats.AllSucceeded++
			case model.PartialSuccess:
				stats.PartialSuccess++
			case model.NeverSucceeded:
				stats.NeverSucceeded++
			}
			if v.SuccessCount > 0 {
				stats.WorkingURIs++
			}

			for _, o := range v.Outcomes {
				if o.Kind == model.OutcomeSuccess && o.LatencyMs > 0 {
					latencySum += o.LatencyMs
					latencyCount++
				}
			}
		}
	}

	if latencyCount > 0 {
		stats.AvgLatencyMs = float64(latencySum) / float64(latencyCount)
	}
	if stats.TotalURIs > 0 {
		stats.SuccessRatePct = float64(stats.WorkingURIs) / float64(stats.TotalURIs) * 100.0
	}

	return stats
}
