package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/geocode-cli/pkg/geocode"
)

var mapboxCmd = &cobra.Command{
	Use:   "mapbox DATABASE TABLE",
	Short: "Geocode with Mapbox",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, _ := cmd.Flags().GetString("api-key")
		if key == "" {
			key = cfg.Providers.MapboxKey
		}
		if key == "" {
			return eris.New("mapbox: access token required (set MAPBOX_API_KEY or --api-key)")
		}

		provider := geocode.NewMapbox(geocode.Config{
			APIKey:     key,
			HTTPClient: httpClient(),
		})
		return runGeocode(cmd, args, provider)
	},
}

func init() {
	addCommonFlags(mapboxCmd)
	mapboxCmd.Flags().StringP("api-key", "k", os.Getenv("MAPBOX_API_KEY"), "Mapbox access token")
	mapboxCmd.Flags().Float64Slice("proximity", nil, "favor results closer to a location; two numbers: lat lon")
	rootCmd.AddCommand(mapboxCmd)
}
