package main

import (
	"github.com/spf13/cobra"

	"github.com/sells-group/geocode-cli/pkg/geocode"
)

var nominatimCmd = &cobra.Command{
	Use:   "nominatim DATABASE TABLE",
	Short: "Geocode with Nominatim (OSM)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		userAgent, _ := cmd.Flags().GetString("user-agent")
		if userAgent == "" {
			userAgent = cfg.Providers.UserAgent
		}
		domain, _ := cmd.Flags().GetString("domain")

		provider := geocode.NewNominatim(geocode.Config{
			Domain:     domain,
			UserAgent:  userAgent,
			HTTPClient: httpClient(),
		})
		return runGeocode(cmd, args, provider)
	},
}

func init() {
	addCommonFlags(nominatimCmd)
	nominatimCmd.Flags().String("user-agent", "", "unique user-agent string to identify requests")
	nominatimCmd.Flags().String("domain", "nominatim.openstreetmap.org", "nominatim instance to query")
	rootCmd.AddCommand(nominatimCmd)
}
