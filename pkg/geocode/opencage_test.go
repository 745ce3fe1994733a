package geocode

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenCage_Geocode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Boston, MA", r.URL.Query().Get("q"))
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		w.Write([]byte(`{
			"results": [{
				"formatted": "Boston, MA, United States of America",
				"geometry": {"lat": 42.3601, "lng": -71.0589}
			}]
		}`))
	}))
	defer srv.Close()

	p := NewOpenCage(Config{APIKey: "test-key", BaseURL: srv.URL})
	result, err := p.Geocode(context.Background(), "Boston, MA", QueryOptions{})
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.InDelta(t, 42.3601, result.Latitude, 0.0001)
	assert.InDelta(t, -71.0589, result.Longitude, 0.0001)
	assert.Equal(t, "Boston, MA, United States of America", result.Label)
}

func TestOpenCage_Geocode_NoMatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results": []}`))
	}))
	defer srv.Close()

	p := NewOpenCage(Config{APIKey: "test-key", BaseURL: srv.URL})
	result, err := p.Geocode(context.Background(), "zzzzz", QueryOptions{})
	require.NoError(t, err)
	assert.Nil(t, result)
}
