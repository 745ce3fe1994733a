// Package geocode provides forward geocoding behind a single Provider
// capability, with per-service HTTP backends and a rate-limiting wrapper.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
)

// Provider is a single geocoding backend. Geocode returns (nil, nil) when the
// service finds nothing for the query; errors are reserved for transport and
// service failures.
type Provider interface {
	// Name identifies the backend for provenance labeling.
	Name() string

	Geocode(ctx context.Context, query string, opts QueryOptions) (*Result, error)
}

// Result holds the geocoding output for a query.
type Result struct {
	Latitude  float64
	Longitude float64

	// Label is the provider's human-readable name for the match.
	Label string

	// Raw is the provider's payload for the match, passed through unmodified.
	Raw json.RawMessage
}

// Point is a WGS84 coordinate.
type Point struct {
	Lat float64
	Lon float64
}

// Bounds is a bounding box given as its southwest and northeast corners.
type Bounds struct {
	SW Point
	NE Point
}

// FormatBounds reformats four floats (lat1 lon1 lat2 lon2) into corner pairs.
func FormatBounds(coords [4]float64) Bounds {
	return Bounds{
		SW: Point{Lat: coords[0], Lon: coords[1]},
		NE: Point{Lat: coords[2], Lon: coords[3]},
	}
}

// QueryOptions carries per-call biasing hints. Backends ignore hints they do
// not support.
type QueryOptions struct {
	// Bounds biases results to a bounding box.
	Bounds *Bounds

	// Proximity favors results near a location.
	Proximity *Point
}

// Config holds backend construction settings. Fields not used by a given
// backend are ignored.
type Config struct {
	APIKey    string
	Domain    string // service hostname override (nominatim, googlev3)
	UserAgent string // nominatim

	// BaseURL overrides the service endpoint entirely. Used by tests.
	BaseURL string

	HTTPClient *http.Client
}

func (c Config) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return &http.Client{Timeout: 30 * time.Second}
}

// New constructs the named provider. Names match the CLI subcommands.
func New(name string, cfg Config) (Provider, error) {
	switch name {
	case "nominatim":
		return NewNominatim(cfg), nil
	case "googlev3":
		return NewGoogleV3(cfg), nil
	case "bing":
		return NewBing(cfg), nil
	case "mapquest":
		return NewMapQuest(cfg), nil
	case "open-mapquest":
		return NewOpenMapQuest(cfg), nil
	case "mapbox":
		return NewMapbox(cfg), nil
	case "opencage":
		return NewOpenCage(cfg), nil
	default:
		return nil, eris.Errorf("geocode: unknown provider %q", name)
	}
}

// getJSON issues a GET request and decodes the JSON response body into out.
func getJSON(ctx context.Context, hc *http.Client, reqURL, userAgent, provider string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return eris.Wrapf(err, "geocode: %s build request", provider)
	}
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}

	resp, err := hc.Do(req)
	if err != nil {
		return eris.Wrapf(err, "geocode: %s request", provider)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return eris.Errorf("geocode: %s returned status %d", provider, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return eris.Wrapf(err, "geocode: %s parse response", provider)
	}
	return nil
}

// formatCoord renders a coordinate for query parameters.
func formatCoord(v float64) string {
	return fmt.Sprintf("%g", v)
}
