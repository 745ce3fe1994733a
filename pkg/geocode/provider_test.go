package geocode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	names := []string{"nominatim", "googlev3", "bing", "mapquest", "open-mapquest", "mapbox", "opencage"}
	for _, name := range names {
		p, err := New(name, Config{APIKey: "test"})
		require.NoError(t, err, name)
		assert.Equal(t, name, p.Name())
	}
}

func TestNew_Unknown(t *testing.T) {
	_, err := New("teleport", Config{})
	assert.ErrorContains(t, err, "unknown provider")
}

func TestFormatBounds(t *testing.T) {
	b := FormatBounds([4]float64{42.3, -71.1, 42.4, -71.0})
	assert.Equal(t, Point{Lat: 42.3, Lon: -71.1}, b.SW)
	assert.Equal(t, Point{Lat: 42.4, Lon: -71.0}, b.NE)
}
