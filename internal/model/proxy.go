package model

import (
	"net"
	"strings"
)

// ProxyURI identifies one evaluation target: a scheme plus the
// host:port the candidate names.
type ProxyURI struct {
	Scheme Scheme
	Addr   string // [user:pass@]host[:port]
	raw    string // candidate as written, when it carried its own scheme
}

// NewProxyURI builds a URI for a schemeless address.
func NewProxyURI(s Scheme, addr string) ProxyURI {
	return ProxyURI{Scheme: s, Addr: addr}
}

// VerbatimProxyURI keeps raw as the URI text. raw must already
// start with scheme's prefix and "://".
func VerbatimProxyURI(s Scheme, raw string) ProxyURI {
	addr := raw
	if i := strings.Index(raw, "://"); i >= 0 {
		addr = raw[i+3:]
	}
	return ProxyURI{Scheme: s, Addr: addr, raw: raw}
}

func (u ProxyURI) String() string {
	if u.raw != "" {
		return u.raw
	}
	return u.Scheme.String() + "://" + u.Addr
}

// Host returns the bare host: no userinfo, no port, no IPv6 brackets.
func (u ProxyURI) Host() string {
	hostport := u.Addr
	if i := strings.LastIndex(hostport, "@"); i >= 0 {
		hostport = hostport[i+1:]
	}
	if i := strings.IndexAny(hostport, "/?#"); i >= 0 {
		hostport = hostport[:i]
	}
	if h, _, err := net.SplitHostPort(hostport); err == nil {
		return h
	}
	return strings.Trim(strings.TrimSuffix(hostport, ":"), "[]")
}

// Unit is one independent evaluation: a candidate line and the URIs
// derived from it (one when the scheme was given, otherwise one per
// supported scheme).
type Unit struct {
	Candidate string
	URIs      []ProxyURI
}

// Host is the bare host shared by every URI of the unit.
func (u Unit) Host() string {
	if len(u.URIs) == 0 {
		return ""
	}
	return u.URIs[0].Host()
}

// UnitResult is what the orchestrator hands to the printer once a
// unit has finished all its trials and the optional location lookup.
type UnitResult struct {
	Candidate string    `json:"candidate"`
	Verdicts  []Verdict `json:"verdicts"`
	Location  *GeoInfo  `json:"location,omitempty"`
	Err       string    `json:"error,omitempty"` // set when the unit aborted
}

// AnySucceeded reports whether at least one verdict had a successful trial.
func (r UnitResult) AnySucceeded() bool {
	for _, v := range r.Verdicts {
		if v.SuccessCount > 0 {
			return true
		}
	}
	return false
}

// BatchStats aggregates summary analytics for an entire run.
type BatchStats struct {
	TotalCandidates       int     `json:"total_candidates"`
	TotalURIs             int     `json:"total_uris"`
	WorkingURIs           int     `json:"working_uris"` // at least one successful trial
	AllSucceeded          int     `json:"all_succeeded"`
	PartialSuccess        int     `json:"partial_success"`
	NeverSucceeded        int     `json:"never_succeeded"`
	Trials                int     `json:"trials"`
	Timeouts              int     `json:"timeouts"`
	Failures              int     `json:"failures"`
	ContentMismatches     int     `json:"content_mismatches"`
	AbortedUnits          int     `json:"aborted_units"`
	AvgLatencyMs          float64 `json:"avg_latency_ms"`
	SuccessRatePct        float64 `json:"success_rate_pct"` // working URIs / URIs
	TotalProcessingTimeMs int64   `json:"total_processing_time_ms"`
}
