package parser

import (
	"strconv"
	"strings"

	"github.com/August26/proxytrial/internal/model"
)

// CommonPorts are tried, in this order, for interactive lines that
// carry no port.
var CommonPorts = [...]int{80, 443, 1080, 3128, 4145, 8000, 8080, 8081, 8118, 8888, 9050}

// HasPort reports whether the segment after the last ':' is a
// non-empty run of digits.
func HasPort(addr string) bool {
	i := strings.LastIndex(addr, ":")
	if i < 0 || i == len(addr)-1 {
		return false
	}
	for _, c := range addr[i+1:] {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// ExpandPorts returns line unchanged when it already names a port,
// otherwise one variant per entry of CommonPorts.
func ExpandPorts(line string) []string {
	if HasPort(line) {
		return []string{line}
	}
	sep := ":"
	if strings.HasSuffix(line, ":") {
		sep = ""
	}
	out := make([]string, 0, len(CommonPorts))
	for _, p := range CommonPorts {
		out = append(out, line+sep+strconv.Itoa(p))
	}
	return out
}

// Normalize turns a candidate into the proxy URIs to evaluate.
//
// A candidate with a supported scheme ("socks5://host:port") yields
// exactly that URI. Anything else is treated as schemeless and
// yields one URI per supported scheme.
func Normalize(candidate string) []model.ProxyURI {
	if i := strings.Index(candidate, "://"); i > 0 {
		if s, ok := model.ParseScheme(candidate[:i]); ok {
			return []model.ProxyURI{model.VerbatimProxyURI(s, candidate)}
		}
	}
	out := make([]model.ProxyURI, 0, len(model.Schemes))
	for _, s := range model.Schemes {
		out = append(out, model.NewProxyURI(s, candidate))
	}
	return out
}

// BuildUnits makes one evaluation unit per candidate.
func BuildUnits(candidates []string) []model.Unit {
	units := make([]model.Unit, 0, len(candidates))
	for _, c := range candidates {
		units = append(units, model.Unit{
			Candidate: c,
			URIs:      Normalize(c),
		})
	}
	return units
}
