package checker

import (
	"context"
	"log/slog"

	"github.com/August26/proxytrial/internal/model"
)

// Evaluate checks uri exactly repeat times, one after another, and
// aggregates every outcome. It never stops early: a failed trial does
// not skip the remaining ones.
func Evaluate(ctx context.Context, p Checker, uri model.ProxyURI, repeat int, log *slog.Logger) model.Verdict {
	if repeat < 1 {
		repeat = 1
	}

	outcomes := make([]model.TrialOutcome, 0, repeat)
	for attempt := 1; attempt <= repeat; attempt++ {
		o := p.Check(ctx, uri)
		outcomes = append(outcomes, o)

		if o.Kind != model.OutcomeSuccess {
			log.Debug("trial failed",
				"uri", uri.String(),
				"attempt", attempt,
				"outcome", o.Kind.String(),
				"reason", o.Reason,
			)
		}
	}

	return model.NewVerdict(uri, outcomes)
}
