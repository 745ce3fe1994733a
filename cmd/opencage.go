package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/geocode-cli/pkg/geocode"
)

var opencageCmd = &cobra.Command{
	Use:   "opencage DATABASE TABLE",
	Short: "Geocode with OpenCage",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, _ := cmd.Flags().GetString("api-key")
		if key == "" {
			key = cfg.Providers.OpenCageKey
		}
		if key == "" {
			return eris.New("opencage: api key required (set OPENCAGE_API_KEY or --api-key)")
		}

		provider := geocode.NewOpenCage(geocode.Config{
			APIKey:     key,
			HTTPClient: httpClient(),
		})
		return runGeocode(cmd, args, provider)
	},
}

func init() {
	addCommonFlags(opencageCmd)
	opencageCmd.Flags().StringP("api-key", "k", os.Getenv("OPENCAGE_API_KEY"), "OpenCage geocoding API key")
	rootCmd.AddCommand(opencageCmd)
}
