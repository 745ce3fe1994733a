package engine

import (
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"github.com/twpayne/go-geom/encoding/wkt"

	"github.com/sells-group/geocode-cli/internal/table"
	"github.com/sells-group/geocode-cli/pkg/geocode"
)

// Mode selects which shape of geographic data a run writes back. Exactly one
// mode is active per run; mixing modes against one table is a caller error.
type Mode int

const (
	// ModeCoordinates writes two scalar columns (latitude and longitude).
	ModeCoordinates Mode = iota

	// ModeGeoJSON writes one column holding a GeoJSON Point.
	ModeGeoJSON

	// ModeSpatial writes one column holding WKT, converted to native
	// geometry by the store at write time.
	ModeSpatial
)

func (m Mode) String() string {
	switch m {
	case ModeGeoJSON:
		return "geojson"
	case ModeSpatial:
		return "spatial"
	default:
		return "coordinates"
	}
}

// Fields names the columns a run reads and writes. Zero values take defaults.
type Fields struct {
	Latitude   string // default "latitude"
	Longitude  string // default "longitude"
	Geometry   string // default "geometry"
	Provenance string // default "geocoder"
}

// WithDefaults fills unset field names.
func (f Fields) WithDefaults() Fields {
	if f.Latitude == "" {
		f.Latitude = "latitude"
	}
	if f.Longitude == "" {
		f.Longitude = "longitude"
	}
	if f.Geometry == "" {
		f.Geometry = "geometry"
	}
	if f.Provenance == "" {
		f.Provenance = "geocoder"
	}
	return f
}

// Encode maps a provider result into the field assignments for the active
// mode, plus the provenance field. It never populates both the coordinate
// pair and the geometry field.
func Encode(result *geocode.Result, mode Mode, fields Fields, provider string) (table.Row, error) {
	fields = fields.WithDefaults()
	updates := table.Row{fields.Provenance: provider}

	switch mode {
	case ModeCoordinates:
		updates[fields.Latitude] = result.Latitude
		updates[fields.Longitude] = result.Longitude

	case ModeGeoJSON:
		// GeoJSON order is (longitude, latitude).
		point := geom.NewPointFlat(geom.XY, []float64{result.Longitude, result.Latitude})
		data, err := geojson.Marshal(point)
		if err != nil {
			return nil, eris.Wrap(err, "engine: encode geojson point")
		}
		updates[fields.Geometry] = string(data)

	case ModeSpatial:
		point := geom.NewPointFlat(geom.XY, []float64{result.Longitude, result.Latitude})
		text, err := wkt.Marshal(point)
		if err != nil {
			return nil, eris.Wrap(err, "engine: encode wkt point")
		}
		updates[fields.Geometry] = text

	default:
		return nil, eris.Errorf("engine: unknown encoding mode %d", mode)
	}

	return updates, nil
}
