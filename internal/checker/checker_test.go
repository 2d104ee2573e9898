package checker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/August26/proxytrial/internal/model"
	"github.com/August26/proxytrial/internal/parser"
)

type countingResolver struct {
	mu    sync.Mutex
	hosts []string
	fail  bool
}

func (r *countingResolver) Lookup(_ context.Context, host string) (model.GeoInfo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hosts = append(r.hosts, host)
	if r.fail {
		return model.GeoInfo{}, errors.New("lookup failed")
	}
	return model.GeoInfo{Country: "Germany", City: "Berlin"}, nil
}

func byCandidate(results []model.UnitResult) map[string]model.UnitResult {
	m := make(map[string]model.UnitResult, len(results))
	for _, r := range results {
		m[r.Candidate] = r
	}
	return m
}

func TestRunBatch_UnitsAndLocation(t *testing.T) {
	units := parser.BuildUnits([]string{"1.1.1.1:8080", "socks5://2.2.2.2:1080", "3.3.3.3:3128"})
	p := newScriptedChecker(map[string][]model.OutcomeKind{
		"https://1.1.1.1:8080":  {model.OutcomeSuccess},
		"socks4://1.1.1.1:8080": {model.OutcomeSuccess, model.OutcomeTimeout},
		"socks5://2.2.2.2:1080": {model.OutcomeTimeout},
	})
	resolver := &countingResolver{}
	cfg := model.Config{Repeat: 3, Location: true, Resolver: resolver}

	var emitted atomic.Int32
	results := RunBatch(context.Background(), units, cfg, p, discard, func(model.UnitResult) {
		emitted.Add(1)
	})

	require.Len(t, results, 3)
	assert.EqualValues(t, 3, emitted.Load())

	got := byCandidate(results)

	first := got["1.1.1.1:8080"]
	require.Len(t, first.Verdicts, 4)
	var schemes []model.Scheme
	for _, v := range first.Verdicts {
		schemes = append(schemes, v.URI.Scheme)
		assert.Equal(t, 3, v.RepeatTotal)
	}
	assert.Equal(t, model.Schemes[:], schemes)
	assert.Equal(t, model.NeverSucceeded, first.Verdicts[0].Classification())
	assert.Equal(t, model.AllSucceeded, first.Verdicts[1].Classification())
	assert.Equal(t, model.PartialSuccess, first.Verdicts[2].Classification())
	require.NotNil(t, first.Location)
	assert.Equal(t, "Germany/Berlin", first.Location.String())

	second := got["socks5://2.2.2.2:1080"]
	require.Len(t, second.Verdicts, 1)
	assert.Nil(t, second.Location)

	// only the unit with a success is looked up, and only once
	assert.Equal(t, []string{"1.1.1.1"}, resolver.hosts)
}

func TestRunBatch_LocationDisabled(t *testing.T) {
	units := parser.BuildUnits([]string{"http://1.1.1.1:80"})
	p := newScriptedChecker(map[string][]model.OutcomeKind{
		"http://1.1.1.1:80": {model.OutcomeSuccess},
	})
	resolver := &countingResolver{}

	results := RunBatch(context.Background(), units, model.Config{Repeat: 1, Resolver: resolver}, p, discard, nil)
	require.Len(t, results, 1)
	assert.Nil(t, results[0].Location)
	assert.Empty(t, resolver.hosts)
}

func TestRunBatch_LookupFailureIsSilent(t *testing.T) {
	units := parser.BuildUnits([]string{"http://1.1.1.1:80"})
	p := newScriptedChecker(map[string][]model.OutcomeKind{
		"http://1.1.1.1:80": {model.OutcomeSuccess},
	})
	cfg := model.Config{Repeat: 2, Location: true, Resolver: &countingResolver{fail: true}}

	results := RunBatch(context.Background(), units, cfg, p, discard, nil)
	require.Len(t, results, 1)
	assert.Nil(t, results[0].Location)
	assert.Empty(t, results[0].Err)
	assert.Equal(t, 2, results[0].Verdicts[0].SuccessCount)
}

func TestRunBatch_PanicIsIsolated(t *testing.T) {
	units := parser.BuildUnits([]string{"http://1.1.1.1:80", "http://2.2.2.2:80"})
	p := newScriptedChecker(map[string][]model.OutcomeKind{
		"http://2.2.2.2:80": {model.OutcomeSuccess},
	})
	p.panics["http://1.1.1.1:80"] = true

	results := RunBatch(context.Background(), units, model.Config{Repeat: 2}, p, discard, nil)
	require.Len(t, results, 2)

	got := byCandidate(results)
	assert.Contains(t, got["http://1.1.1.1:80"].Err, "boom")
	assert.Empty(t, got["http://2.2.2.2:80"].Err)
	assert.Equal(t, 2, got["http://2.2.2.2:80"].Verdicts[0].SuccessCount)
}

type slowChecker struct {
	inFlight atomic.Int32
	peak     atomic.Int32
}

func (s *slowChecker) Check(context.Context, model.ProxyURI) model.TrialOutcome {
	n := s.inFlight.Add(1)
	for {
		p := s.peak.Load()
		if n <= p || s.peak.CompareAndSwap(p, n) {
			break
		}
	}
	time.Sleep(20 * time.Millisecond)
	s.inFlight.Add(-1)
	return model.TrialOutcome{Kind: model.OutcomeSuccess}
}

func TestRunBatch_ConcurrencyCap(t *testing.T) {
	var cands []string
	for _, c := range []string{"a", "b", "c", "d", "e", "f"} {
		cands = append(cands, "http://"+c+".example:80")
	}
	units := parser.BuildUnits(cands)

	p := &slowChecker{}
	results := RunBatch(context.Background(), units, model.Config{Repeat: 1, Concurrency: 2}, p, discard, nil)
	require.Len(t, results, len(units))
	assert.LessOrEqual(t, p.peak.Load(), int32(2))
}

func TestRunBatch_Unbounded(t *testing.T) {
	var cands []string
	for _, c := range []string{"a", "b", "c", "d", "e", "f"} {
		cands = append(cands, "http://"+c+".example:80")
	}
	units := parser.BuildUnits(cands)

	p := &slowChecker{}
	results := RunBatch(context.Background(), units, model.Config{Repeat: 1}, p, discard, nil)
	require.Len(t, results, len(units))
	assert.Greater(t, p.peak.Load(), int32(1))
}
