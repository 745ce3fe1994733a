package geocode

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/rotisserie/eris"
)

const mapboxGeocodeURL = "https://api.mapbox.com/geocoding/v5/mapbox.places"

// Mapbox geocodes via the Mapbox Geocoding API.
type Mapbox struct {
	token   string
	baseURL string
	hc      *http.Client
}

// NewMapbox creates a Mapbox provider. Config.APIKey is the access token.
func NewMapbox(cfg Config) *Mapbox {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = mapboxGeocodeURL
	}
	return &Mapbox{
		token:   cfg.APIKey,
		baseURL: baseURL,
		hc:      cfg.httpClient(),
	}
}

// Name implements Provider.
func (p *Mapbox) Name() string { return "mapbox" }

type mapboxResponse struct {
	Features []json.RawMessage `json:"features"`
}

type mapboxFeature struct {
	PlaceName string    `json:"place_name"`
	Center    []float64 `json:"center"` // [lon, lat]
}

// Geocode implements Provider.
func (p *Mapbox) Geocode(ctx context.Context, query string, opts QueryOptions) (*Result, error) {
	params := url.Values{
		"access_token": {p.token},
		"limit":        {"1"},
	}
	if opts.Bounds != nil {
		// bbox is minLon,minLat,maxLon,maxLat.
		params.Set("bbox", formatCoord(opts.Bounds.SW.Lon)+","+formatCoord(opts.Bounds.SW.Lat)+
			","+formatCoord(opts.Bounds.NE.Lon)+","+formatCoord(opts.Bounds.NE.Lat))
	}
	if opts.Proximity != nil {
		// proximity is lon,lat.
		params.Set("proximity", formatCoord(opts.Proximity.Lon)+","+formatCoord(opts.Proximity.Lat))
	}

	reqURL := p.baseURL + "/" + url.PathEscape(query) + ".json?" + params.Encode()

	var resp mapboxResponse
	if err := getJSON(ctx, p.hc, reqURL, "", "mapbox", &resp); err != nil {
		return nil, err
	}
	if len(resp.Features) == 0 {
		return nil, nil
	}

	raw := resp.Features[0]
	var feat mapboxFeature
	if err := json.Unmarshal(raw, &feat); err != nil {
		return nil, eris.Wrap(err, "geocode: mapbox parse feature")
	}
	if len(feat.Center) < 2 {
		return nil, nil
	}
	return &Result{
		Latitude:  feat.Center[1],
		Longitude: feat.Center[0],
		Label:     feat.PlaceName,
		Raw:       raw,
	}, nil
}
