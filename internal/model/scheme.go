package model

import "strings"

// Scheme is one of the proxy protocols a candidate can be checked with.
type Scheme int

const (
	SchemeHTTP Scheme = iota
	SchemeHTTPS
	SchemeSOCKS4
	SchemeSOCKS5
)

// Schemes lists every supported scheme in evaluation order.
var Schemes = [...]Scheme{SchemeHTTP, SchemeHTTPS, SchemeSOCKS4, SchemeSOCKS5}

func (s Scheme) String() string {
	switch s {
	case SchemeHTTP:
		return "http"
	case SchemeHTTPS:
		return "https"
	case SchemeSOCKS4:
		return "socks4"
	case SchemeSOCKS5:
		return "socks5"
	default:
		return "unknown"
	}
}

// ParseScheme maps a scheme name (any case) to a Scheme.
func ParseScheme(s string) (Scheme, bool) {
	switch strings.ToLower(s) {
	case "http":
		return SchemeHTTP, true
	case "https":
		return SchemeHTTPS, true
	case "socks4":
		return SchemeSOCKS4, true
	case "socks5":
		return SchemeSOCKS5, true
	default:
		return 0, false
	}
}
