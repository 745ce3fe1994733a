// Package runbook loads multi-table geocoding job files.
package runbook

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Job describes one table to geocode.
type Job struct {
	// Database is a SQLite path or a postgres:// URL.
	Database string `yaml:"database"`
	Table    string `yaml:"table"`

	// Provider names a geocoding backend (nominatim, googlev3, bing,
	// mapquest, open-mapquest, mapbox, opencage). API keys come from the
	// provider's environment variable.
	Provider string `yaml:"provider"`

	Location  string  `yaml:"location,omitempty"`
	DelaySecs float64 `yaml:"delay_secs,omitempty"`
	Latitude  string  `yaml:"latitude,omitempty"`
	Longitude string  `yaml:"longitude,omitempty"`
	GeoJSON   bool    `yaml:"geojson,omitempty"`
	Spatial   bool    `yaml:"spatialite,omitempty"`
	Force     bool    `yaml:"force,omitempty"`
}

// Runbook is a parsed job file.
type Runbook struct {
	Jobs []Job `yaml:"jobs"`
}

// Load reads a runbook from a YAML file and validates it.
func Load(path string) (*Runbook, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "runbook: read %s", path)
	}

	var rb Runbook
	if err := yaml.Unmarshal(data, &rb); err != nil {
		return nil, eris.Wrapf(err, "runbook: parse %s", path)
	}
	if len(rb.Jobs) == 0 {
		return nil, eris.Errorf("runbook: %s defines no jobs", path)
	}

	for i, job := range rb.Jobs {
		if job.Database == "" || job.Table == "" || job.Provider == "" {
			return nil, eris.Errorf("runbook: job %d needs database, table and provider", i+1)
		}
		if job.GeoJSON && job.Spatial {
			return nil, eris.Errorf("runbook: job %d sets both geojson and spatialite", i+1)
		}
	}
	return &rb, nil
}
