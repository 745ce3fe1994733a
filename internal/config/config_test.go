package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "{location}", cfg.Geocode.Template)
	assert.Equal(t, 1.0, cfg.Geocode.DelaySecs)
	assert.Equal(t, "latitude", cfg.Geocode.LatitudeField)
	assert.Equal(t, "longitude", cfg.Geocode.LongitudeField)
	assert.Equal(t, "geometry", cfg.Geocode.GeometryField)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("GEOCODE_GEOCODE_DELAY_SECS", "0.2")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 0.2, cfg.Geocode.DelaySecs)
}

func TestGeocodeConfig_Delay(t *testing.T) {
	assert.Equal(t, 1500*time.Millisecond, GeocodeConfig{DelaySecs: 1.5}.Delay())
	assert.Equal(t, time.Duration(0), GeocodeConfig{}.Delay())
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	require.NoError(t, InitLogger(LogConfig{Level: "info", Format: "json"}))
}

func TestInitLogger_BadLevel(t *testing.T) {
	assert.Error(t, InitLogger(LogConfig{Level: "shouting", Format: "console"}))
}
