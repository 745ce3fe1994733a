package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/geocode-cli/pkg/geocode"
)

var googleCmd = &cobra.Command{
	Use:   "googlev3 DATABASE TABLE",
	Short: "Geocode with the Google Geocoding API",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, _ := cmd.Flags().GetString("api-key")
		if key == "" {
			key = cfg.Providers.GoogleKey
		}
		if key == "" {
			return eris.New("googlev3: api key required (set GOOGLE_API_KEY or --api-key)")
		}
		domain, _ := cmd.Flags().GetString("domain")

		provider := geocode.NewGoogleV3(geocode.Config{
			APIKey:     key,
			Domain:     domain,
			HTTPClient: httpClient(),
		})
		return runGeocode(cmd, args, provider)
	},
}

func init() {
	addCommonFlags(googleCmd)
	googleCmd.Flags().StringP("api-key", "k", os.Getenv("GOOGLE_API_KEY"), "Google Maps API key")
	googleCmd.Flags().String("domain", "maps.googleapis.com", "google geocoding endpoint domain")
	rootCmd.AddCommand(googleCmd)
}
