// Package geo resolves a proxy host to a coarse country/city location.
//
// Two resolvers are provided: IPAPI queries an unauthenticated HTTP
// lookup service, MaxMind reads a local GeoIP2/GeoLite2 City database.
// Both satisfy model.IPResolver. Errors are classified with the
// sentinels below so callers can log the cause; the checker treats
// every failure the same way and simply omits the location.
package geo

import (
	"errors"
	"strings"
)

var (
	ErrInvalidInput = errors.New("geo: invalid input")
	ErrTransport    = errors.New("geo: lookup request failed")
	ErrParse        = errors.New("geo: malformed lookup response")
)

// cleanField trims whitespace and stray quoting around a value.
func cleanField(s string) string {
	return strings.Trim(strings.TrimSpace(s), `"'`)
}
