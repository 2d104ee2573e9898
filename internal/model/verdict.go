package model

// OutcomeKind tags the result of a single trial.
type OutcomeKind int

const (
	OutcomeSuccess OutcomeKind = iota
	OutcomeTimeout
	// OutcomeContentMismatch means the proxy answered but the body
	// did not contain the configured match string.
	OutcomeContentMismatch
	OutcomeFailure
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeTimeout:
		return "timeout"
	case OutcomeContentMismatch:
		return "content_mismatch"
	case OutcomeFailure:
		return "failure"
	default:
		return "unknown"
	}
}

// TrialOutcome is produced once per repetition.
type TrialOutcome struct {
	Kind       OutcomeKind `json:"kind"`
	Reason     string      `json:"reason,omitempty"` // failure cause, empty otherwise
	StatusCode int         `json:"status_code,omitempty"`
	LatencyMs  int64       `json:"latency_ms"`
}

// Classification is the aggregate judgement over all trials of a URI.
type Classification int

const (
	AllSucceeded Classification = iota
	PartialSuccess
	NeverSucceeded
)

func (c Classification) String() string {
	switch c {
	case AllSucceeded:
		return "all_succeeded"
	case PartialSuccess:
		return "partial_success"
	case NeverSucceeded:
		return "never_succeeded"
	default:
		return "unknown"
	}
}

// Verdict aggregates every trial run against one ProxyURI.
type Verdict struct {
	URI          ProxyURI       `json:"-"`
	Outcomes     []TrialOutcome `json:"outcomes"`
	SuccessCount int            `json:"success_count"`
	RepeatTotal  int            `json:"repeat_total"`
}

// NewVerdict tallies outcomes. RepeatTotal is the number of outcomes.
func NewVerdict(uri ProxyURI, outcomes []TrialOutcome) Verdict {
	v := Verdict{
		URI:         uri,
		Outcomes:    outcomes,
		RepeatTotal: len(outcomes),
	}
	v.SuccessCount = v.Count(OutcomeSuccess)
	return v
}

// Count returns how many trials ended with kind.
func (v Verdict) Count(kind OutcomeKind) int {
	n := 0
	for _, o := range v.Outcomes {
		if o.Kind == kind {
			n++
		}
	}
	return n
}

func (v Verdict) Classification() Classification {
	switch {
	case v.SuccessCount == 0:
		return NeverSucceeded
	case v.SuccessCount == v.RepeatTotal:
		return AllSucceeded
	default:
		return PartialSuccess
	}
}

// LastFailure returns the reason of the most recent non-success trial.
func (v Verdict) LastFailure() string {
	for i := len(v.Outcomes) - 1; i >= 0; i-- {
		o := v.Outcomes[i]
		switch o.Kind {
		case OutcomeSuccess:
			continue
		case OutcomeFailure:
			return o.Reason
		default:
			return o.Kind.String()
		}
	}
	return ""
}

// AvgLatencyMs averages latency over successful trials.
func (v Verdict) AvgLatencyMs() float64 {
	var sum int64
	var n int64
	for _, o := range v.Outcomes {
		if o.Kind == OutcomeSuccess {
			sum += o.LatencyMs
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return float64(sum) / float64(n)
}
