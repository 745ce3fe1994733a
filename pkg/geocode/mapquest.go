package geocode

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/rotisserie/eris"
)

const (
	mapquestGeocodeURL     = "https://www.mapquestapi.com/geocoding/v1/address"
	openMapquestGeocodeURL = "https://open.mapquestapi.com/geocoding/v1/address"
)

// MapQuest geocodes via the MapQuest Geocoding API, either the licensed or
// the open-data endpoint.
type MapQuest struct {
	name    string
	apiKey  string
	baseURL string
	hc      *http.Client
}

// NewMapQuest creates a provider for the licensed MapQuest endpoint.
func NewMapQuest(cfg Config) *MapQuest {
	return newMapQuest("mapquest", mapquestGeocodeURL, cfg)
}

// NewOpenMapQuest creates a provider for the open-data MapQuest endpoint.
func NewOpenMapQuest(cfg Config) *MapQuest {
	return newMapQuest("open-mapquest", openMapquestGeocodeURL, cfg)
}

func newMapQuest(name, defaultURL string, cfg Config) *MapQuest {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultURL
	}
	return &MapQuest{
		name:    name,
		apiKey:  cfg.APIKey,
		baseURL: baseURL,
		hc:      cfg.httpClient(),
	}
}

// Name implements Provider.
func (p *MapQuest) Name() string { return p.name }

type mapquestResponse struct {
	Results []struct {
		Locations []json.RawMessage `json:"locations"`
	} `json:"results"`
}

type mapquestLocation struct {
	Street             string `json:"street"`
	AdminArea5         string `json:"adminArea5"` // city
	AdminArea3         string `json:"adminArea3"` // state
	GeocodeQualityCode string `json:"geocodeQualityCode"`
	LatLng             struct {
		Lat float64 `json:"lat"`
		Lng float64 `json:"lng"`
	} `json:"latLng"`
}

// Geocode implements Provider.
func (p *MapQuest) Geocode(ctx context.Context, query string, opts QueryOptions) (*Result, error) {
	params := url.Values{
		"location":   {query},
		"key":        {p.apiKey},
		"maxResults": {"1"},
	}
	if opts.Bounds != nil {
		// boundingBox is upper-left lat,lon then lower-right lat,lon.
		params.Set("boundingBox", formatCoord(opts.Bounds.NE.Lat)+","+formatCoord(opts.Bounds.SW.Lon)+
			","+formatCoord(opts.Bounds.SW.Lat)+","+formatCoord(opts.Bounds.NE.Lon))
	}

	var resp mapquestResponse
	if err := getJSON(ctx, p.hc, p.baseURL+"?"+params.Encode(), "", p.name, &resp); err != nil {
		return nil, err
	}
	if len(resp.Results) == 0 || len(resp.Results[0].Locations) == 0 {
		return nil, nil
	}

	raw := resp.Results[0].Locations[0]
	var loc mapquestLocation
	if err := json.Unmarshal(raw, &loc); err != nil {
		return nil, eris.Wrapf(err, "geocode: %s parse location", p.name)
	}
	// MapQuest reports unmatched queries as zero-confidence country centroids.
	if loc.GeocodeQualityCode == "" && loc.LatLng.Lat == 0 && loc.LatLng.Lng == 0 {
		return nil, nil
	}

	label := loc.Street
	if loc.AdminArea5 != "" {
		if label != "" {
			label += ", "
		}
		label += loc.AdminArea5
	}
	if loc.AdminArea3 != "" {
		if label != "" {
			label += ", "
		}
		label += loc.AdminArea3
	}

	return &Result{
		Latitude:  loc.LatLng.Lat,
		Longitude: loc.LatLng.Lng,
		Label:     label,
		Raw:       raw,
	}, nil
}
