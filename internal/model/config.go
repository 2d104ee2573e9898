package model

import "context"

type GeoInfo struct {
	Country string `json:"country"`
	City    string `json:"city"`
}

// Empty reports whether the lookup produced nothing to show.
func (g GeoInfo) Empty() bool {
	return g.Country == "" && g.City == ""
}

func (g GeoInfo) String() string {
	return g.Country + "/" + g.City
}

type IPResolver interface {
	Lookup(ctx context.Context, host string) (GeoInfo, error)
}

type Config struct {
	Verbose        bool
	Quiet          bool
	Location       bool   // enrich working candidates with country/city
	TimeoutSeconds int    // per request, covers the whole response
	Target         string // URL fetched through each proxy
	MatchString    string // optional substring the body must contain
	InputFile      string // empty means stdin
	Repeat         int    // trials per proxy URI (min 1)
	Concurrency    int    // max units in flight, 0 = unbounded
	OutputFile     string
	OutputFormat   string // json or csv
	GeoIPDB        string // MaxMind City database; empty uses the HTTP lookup
	GeoEndpoint    string
	ConfigFile     string
	Resolver       IPResolver
}

const (
	DefaultTimeoutSeconds = 5
	DefaultTarget         = "https://www.google.com"
	DefaultRepeat         = 5
	DefaultGeoEndpoint    = "http://ip-api.com/json"
)
