package geocode

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/rotisserie/eris"
)

const opencageGeocodeURL = "https://api.opencagedata.com/geocode/v1/json"

// OpenCage geocodes via the OpenCage Geocoding API.
type OpenCage struct {
	apiKey  string
	baseURL string
	hc      *http.Client
}

// NewOpenCage creates an OpenCage provider.
func NewOpenCage(cfg Config) *OpenCage {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = opencageGeocodeURL
	}
	return &OpenCage{
		apiKey:  cfg.APIKey,
		baseURL: baseURL,
		hc:      cfg.httpClient(),
	}
}

// Name implements Provider.
func (p *OpenCage) Name() string { return "opencage" }

type opencageResponse struct {
	Results []json.RawMessage `json:"results"`
}

type opencageResult struct {
	Formatted string `json:"formatted"`
	Geometry  struct {
		Lat float64 `json:"lat"`
		Lng float64 `json:"lng"`
	} `json:"geometry"`
}

// Geocode implements Provider.
func (p *OpenCage) Geocode(ctx context.Context, query string, _ QueryOptions) (*Result, error) {
	params := url.Values{
		"q":     {query},
		"key":   {p.apiKey},
		"limit": {"1"},
	}

	var resp opencageResponse
	if err := getJSON(ctx, p.hc, p.baseURL+"?"+params.Encode(), "", "opencage", &resp); err != nil {
		return nil, err
	}
	if len(resp.Results) == 0 {
		return nil, nil
	}

	raw := resp.Results[0]
	var res opencageResult
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, eris.Wrap(err, "geocode: opencage parse result")
	}
	return &Result{
		Latitude:  res.Geometry.Lat,
		Longitude: res.Geometry.Lng,
		Label:     res.Formatted,
		Raw:       raw,
	}, nil
}
