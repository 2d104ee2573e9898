package checker

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	"golang.org/x/sync/errgroup"

	"github.com/August26/proxytrial/internal/model"
)

// RunBatch evaluates every unit concurrently and returns once all of
// them have finished. emit, when non-nil, is called as each unit
// completes; calls may come from several goroutines at once.
//
// cfg.Concurrency caps the number of units in flight; zero or less
// launches every unit immediately.
func RunBatch(ctx context.Context, units []model.Unit, cfg model.Config, p Checker, log *slog.Logger, emit func(model.UnitResult)) []model.UnitResult {
	resultsCh := make(chan model.UnitResult, len(units))

	var g errgroup.Group
	if cfg.Concurrency > 0 {
		g.SetLimit(cfg.Concurrency)
	}

	for _, u := range units {
		g.Go(func() error {
			res := runUnit(ctx, u, cfg, p, log)
			if emit != nil {
				emit(res)
			}
			resultsCh <- res
			return nil
		})
	}

	_ = g.Wait()
	close(resultsCh)

	out := make([]model.UnitResult, 0, len(units))
	for r := range resultsCh {
		out = append(out, r)
	}
	return out
}

// runUnit evaluates each URI of u in order, then looks up the location
// once if anything worked. A panic is confined to the unit.
func runUnit(ctx context.Context, u model.Unit, cfg model.Config, p Checker, log *slog.Logger) (res model.UnitResult) {
	res.Candidate = u.Candidate

	defer func() {
		if r := recover(); r != nil {
			res.Err = fmt.Sprint(r)
			log.Error("unit aborted",
				"candidate", u.Candidate,
				"panic", res.Err,
				"stack", string(debug.Stack()),
			)
		}
	}()

	for _, uri := range u.URIs {
		res.Verdicts = append(res.Verdicts, Evaluate(ctx, p, uri, cfg.Repeat, log))
	}

	if cfg.Location && cfg.Resolver != nil && res.AnySucceeded() {
		res.Location = locate(ctx, cfg.Resolver, u.Host(), log)
	}
	return res
}

func locate(ctx context.Context, r model.IPResolver, host string, log *slog.Logger) *model.GeoInfo {
	info, err := r.Lookup(ctx, host)
	if err != nil {
		log.Debug("location lookup failed", "host", host, "err", err)
		return nil
	}
	if info.Empty() {
		return nil
	}
	return &info
}
