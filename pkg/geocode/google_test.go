package geocode

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGoogleV3_Geocode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Boston, MA", r.URL.Query().Get("address"))
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		w.Write([]byte(`{
			"status": "OK",
			"results": [{
				"formatted_address": "Boston, MA, USA",
				"geometry": {"location": {"lat": 42.3601, "lng": -71.0589}}
			}]
		}`))
	}))
	defer srv.Close()

	p := NewGoogleV3(Config{APIKey: "test-key", BaseURL: srv.URL})
	result, err := p.Geocode(context.Background(), "Boston, MA", QueryOptions{})
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.InDelta(t, 42.3601, result.Latitude, 0.0001)
	assert.InDelta(t, -71.0589, result.Longitude, 0.0001)
	assert.Equal(t, "Boston, MA, USA", result.Label)
}

func TestGoogleV3_Geocode_ZeroResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "ZERO_RESULTS", "results": []}`))
	}))
	defer srv.Close()

	p := NewGoogleV3(Config{APIKey: "test-key", BaseURL: srv.URL})
	result, err := p.Geocode(context.Background(), "zzzzz", QueryOptions{})
	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestGoogleV3_Geocode_Bounds(t *testing.T) {
	var gotBounds string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBounds = r.URL.Query().Get("bounds")
		w.Write([]byte(`{"status": "ZERO_RESULTS", "results": []}`))
	}))
	defer srv.Close()

	bounds := FormatBounds([4]float64{42.3, -71.1, 42.4, -71.0})
	p := NewGoogleV3(Config{APIKey: "test-key", BaseURL: srv.URL})
	_, err := p.Geocode(context.Background(), "Boston", QueryOptions{Bounds: &bounds})
	require.NoError(t, err)

	// bounds is lat,lon pairs separated by a pipe.
	assert.Equal(t, "42.3,-71.1|42.4,-71", gotBounds)
}
