package engine

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/geocode-cli/pkg/geocode"
)

var bostonResult = &geocode.Result{
	Latitude:  42.0,
	Longitude: -71.0,
	Label:     "Boston, MA",
}

func TestEncode_Coordinates(t *testing.T) {
	updates, err := Encode(bostonResult, ModeCoordinates, Fields{}, "nominatim")
	require.NoError(t, err)

	assert.Equal(t, 42.0, updates["latitude"])
	assert.Equal(t, -71.0, updates["longitude"])
	assert.Equal(t, "nominatim", updates["geocoder"])
	assert.NotContains(t, updates, "geometry")
}

func TestEncode_Coordinates_CustomFields(t *testing.T) {
	fields := Fields{Latitude: "lat", Longitude: "lng"}

	updates, err := Encode(bostonResult, ModeCoordinates, fields, "nominatim")
	require.NoError(t, err)

	assert.Equal(t, 42.0, updates["lat"])
	assert.Equal(t, -71.0, updates["lng"])
	assert.NotContains(t, updates, "latitude")
}

func TestEncode_GeoJSON(t *testing.T) {
	updates, err := Encode(bostonResult, ModeGeoJSON, Fields{}, "googlev3")
	require.NoError(t, err)

	assert.NotContains(t, updates, "latitude")
	assert.NotContains(t, updates, "longitude")
	assert.Equal(t, "googlev3", updates["geocoder"])

	var point struct {
		Type        string    `json:"type"`
		Coordinates []float64 `json:"coordinates"`
	}
	require.NoError(t, json.Unmarshal([]byte(updates["geometry"].(string)), &point))
	assert.Equal(t, "Point", point.Type)
	// GeoJSON coordinate order is longitude first.
	assert.Equal(t, []float64{-71.0, 42.0}, point.Coordinates)
}

func TestEncode_Spatial(t *testing.T) {
	updates, err := Encode(bostonResult, ModeSpatial, Fields{}, "bing")
	require.NoError(t, err)

	assert.Equal(t, "POINT (-71 42)", updates["geometry"])
	assert.Equal(t, "bing", updates["geocoder"])
	assert.NotContains(t, updates, "latitude")
	assert.NotContains(t, updates, "longitude")
}

func TestEncode_UnknownMode(t *testing.T) {
	_, err := Encode(bostonResult, Mode(99), Fields{}, "nominatim")
	assert.Error(t, err)
}

func TestMode_String(t *testing.T) {
	assert.Equal(t, "coordinates", ModeCoordinates.String())
	assert.Equal(t, "geojson", ModeGeoJSON.String())
	assert.Equal(t, "spatial", ModeSpatial.String())
}
