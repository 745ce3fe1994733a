package geocode

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
)

const googleDefaultDomain = "maps.googleapis.com"

// GoogleV3 geocodes via the Google Geocoding API (v3).
type GoogleV3 struct {
	apiKey  string
	baseURL string
	hc      *http.Client
}

// NewGoogleV3 creates a Google provider. Config.Domain selects a regional
// endpoint (default maps.googleapis.com).
func NewGoogleV3(cfg Config) *GoogleV3 {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		domain := cfg.Domain
		if domain == "" {
			domain = googleDefaultDomain
		}
		baseURL = "https://" + domain + "/maps/api/geocode/json"
	}
	return &GoogleV3{
		apiKey:  cfg.APIKey,
		baseURL: baseURL,
		hc:      cfg.httpClient(),
	}
}

// Name implements Provider.
func (p *GoogleV3) Name() string { return "googlev3" }

// googleResponse is the JSON response from the Google Geocoding API.
type googleResponse struct {
	Results []json.RawMessage `json:"results"`
	Status  string            `json:"status"`
}

type googleResult struct {
	Geometry struct {
		Location struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		} `json:"location"`
	} `json:"geometry"`
	FormattedAddress string `json:"formatted_address"`
}

// Geocode implements Provider.
func (p *GoogleV3) Geocode(ctx context.Context, query string, opts QueryOptions) (*Result, error) {
	params := url.Values{
		"address": {query},
		"key":     {p.apiKey},
	}
	if opts.Bounds != nil {
		params.Set("bounds", formatCoord(opts.Bounds.SW.Lat)+","+formatCoord(opts.Bounds.SW.Lon)+
			"|"+formatCoord(opts.Bounds.NE.Lat)+","+formatCoord(opts.Bounds.NE.Lon))
	}

	var resp googleResponse
	if err := getJSON(ctx, p.hc, p.baseURL+"?"+params.Encode(), "", "googlev3", &resp); err != nil {
		return nil, err
	}
	if resp.Status != "OK" || len(resp.Results) == 0 {
		return nil, nil
	}

	var first googleResult
	if err := json.Unmarshal(resp.Results[0], &first); err != nil {
		return nil, err
	}
	return &Result{
		Latitude:  first.Geometry.Location.Lat,
		Longitude: first.Geometry.Location.Lng,
		Label:     first.FormattedAddress,
		Raw:       resp.Results[0],
	}, nil
}
