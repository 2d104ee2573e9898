// Package config loads optional run settings from an HCL or JSON file
// and merges them into model.Config. Values given on the command line
// always win over the file.
package config

import (
	"fmt"

	"github.com/hashicorp/hcl/v2/hclsimple"

	"github.com/August26/proxytrial/internal/model"
)

// File mirrors the command line flags. Every attribute is optional.
//
//	timeout     = 10
//	target      = "https://example.com"
//	match       = "Example Domain"
//	repeat      = 3
//	concurrency = 200
//	location    = true
type File struct {
	Verbose     *bool   `hcl:"verbose,optional"`
	Quiet       *bool   `hcl:"quiet,optional"`
	Location    *bool   `hcl:"location,optional"`
	Timeout     *int    `hcl:"timeout,optional"`
	Target      *string `hcl:"target,optional"`
	Match       *string `hcl:"match,optional"`
	Input       *string `hcl:"file,optional"`
	Repeat      *int    `hcl:"repeat,optional"`
	Concurrency *int    `hcl:"concurrency,optional"`
	Output      *string `hcl:"output,optional"`
	Format      *string `hcl:"format,optional"`
	GeoIPDB     *string `hcl:"geoip_db,optional"`
	GeoEndpoint *string `hcl:"geo_endpoint,optional"`
}

// Load decodes path; the extension (.hcl or .json) selects the syntax.
func Load(path string) (File, error) {
	var f File
	if err := hclsimple.DecodeFile(path, nil, &f); err != nil {
		return File{}, fmt.Errorf("load config %s: %w", path, err)
	}
	return f, nil
}

// Apply copies file values into cfg, skipping any setting whose flag
// name appears in explicit.
func Apply(cfg *model.Config, f File, explicit map[string]bool) {
	set(&cfg.Verbose, f.Verbose, explicit["verbose"])
	set(&cfg.Quiet, f.Quiet, explicit["quiet"])
	set(&cfg.Location, f.Location, explicit["location"])
	set(&cfg.TimeoutSeconds, f.Timeout, explicit["timeout"])
	set(&cfg.Target, f.Target, explicit["target"])
	set(&cfg.MatchString, f.Match, explicit["string"])
	set(&cfg.InputFile, f.Input, explicit["file"])
	set(&cfg.Repeat, f.Repeat, explicit["repeat"])
	set(&cfg.Concurrency, f.Concurrency, explicit["concurrency"])
	set(&cfg.OutputFile, f.Output, explicit["output"])
	set(&cfg.OutputFormat, f.Format, explicit["format"])
	set(&cfg.GeoIPDB, f.GeoIPDB, explicit["geoip-db"])
	set(&cfg.GeoEndpoint, f.GeoEndpoint, explicit["geo-endpoint"])
}

func set[T any](dst *T, v *T, skip bool) {
	if v != nil && !skip {
		*dst = *v
	}
}
