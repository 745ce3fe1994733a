package geocode

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/rotisserie/eris"
)

const nominatimDefaultDomain = "nominatim.openstreetmap.org"

// Nominatim geocodes via the OpenStreetMap Nominatim API. The public instance
// requires an identifying User-Agent and allows at most one request per
// second; wrap with Throttle accordingly.
type Nominatim struct {
	baseURL   string
	userAgent string
	hc        *http.Client
}

// NewNominatim creates a Nominatim provider. Config.Domain selects a
// self-hosted instance; Config.UserAgent identifies the caller.
func NewNominatim(cfg Config) *Nominatim {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		domain := cfg.Domain
		if domain == "" {
			domain = nominatimDefaultDomain
		}
		baseURL = "https://" + domain + "/search"
	}
	return &Nominatim{
		baseURL:   baseURL,
		userAgent: cfg.UserAgent,
		hc:        cfg.httpClient(),
	}
}

// Name implements Provider.
func (p *Nominatim) Name() string { return "nominatim" }

// nominatimPlace is one entry of the Nominatim search response. Coordinates
// are returned as strings.
type nominatimPlace struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Geocode implements Provider.
func (p *Nominatim) Geocode(ctx context.Context, query string, opts QueryOptions) (*Result, error) {
	params := url.Values{
		"q":      {query},
		"format": {"jsonv2"},
		"limit":  {"1"},
	}
	if opts.Bounds != nil {
		// viewbox is lon,lat,lon,lat and only biases with bounded=0.
		params.Set("viewbox", formatCoord(opts.Bounds.SW.Lon)+","+formatCoord(opts.Bounds.SW.Lat)+
			","+formatCoord(opts.Bounds.NE.Lon)+","+formatCoord(opts.Bounds.NE.Lat))
	}

	var raw []json.RawMessage
	if err := getJSON(ctx, p.hc, p.baseURL+"?"+params.Encode(), p.userAgent, "nominatim", &raw); err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, nil
	}

	var place nominatimPlace
	if err := json.Unmarshal(raw[0], &place); err != nil {
		return nil, eris.Wrap(err, "geocode: nominatim parse place")
	}
	lat, err := strconv.ParseFloat(place.Lat, 64)
	if err != nil {
		return nil, eris.Wrap(err, "geocode: nominatim parse latitude")
	}
	lon, err := strconv.ParseFloat(place.Lon, 64)
	if err != nil {
		return nil, eris.Wrap(err, "geocode: nominatim parse longitude")
	}

	return &Result{
		Latitude:  lat,
		Longitude: lon,
		Label:     place.DisplayName,
		Raw:       raw[0],
	}, nil
}
