package geocode

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/rotisserie/eris"
)

const bingGeocodeURL = "https://dev.virtualearth.net/REST/v1/Locations"

// Bing geocodes via the Bing Maps Locations API.
type Bing struct {
	apiKey  string
	baseURL string
	hc      *http.Client
}

// NewBing creates a Bing provider.
func NewBing(cfg Config) *Bing {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = bingGeocodeURL
	}
	return &Bing{
		apiKey:  cfg.APIKey,
		baseURL: baseURL,
		hc:      cfg.httpClient(),
	}
}

// Name implements Provider.
func (p *Bing) Name() string { return "bing" }

type bingResponse struct {
	ResourceSets []struct {
		Resources []json.RawMessage `json:"resources"`
	} `json:"resourceSets"`
}

type bingResource struct {
	Name  string `json:"name"`
	Point struct {
		Coordinates []float64 `json:"coordinates"` // [lat, lon]
	} `json:"point"`
}

// Geocode implements Provider.
func (p *Bing) Geocode(ctx context.Context, query string, _ QueryOptions) (*Result, error) {
	params := url.Values{
		"query":      {query},
		"key":        {p.apiKey},
		"maxResults": {"1"},
	}

	var resp bingResponse
	if err := getJSON(ctx, p.hc, p.baseURL+"?"+params.Encode(), "", "bing", &resp); err != nil {
		return nil, err
	}
	if len(resp.ResourceSets) == 0 || len(resp.ResourceSets[0].Resources) == 0 {
		return nil, nil
	}

	raw := resp.ResourceSets[0].Resources[0]
	var res bingResource
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, eris.Wrap(err, "geocode: bing parse resource")
	}
	if len(res.Point.Coordinates) < 2 {
		return nil, nil
	}
	return &Result{
		Latitude:  res.Point.Coordinates[0],
		Longitude: res.Point.Coordinates[1],
		Label:     res.Name,
		Raw:       raw,
	}, nil
}
