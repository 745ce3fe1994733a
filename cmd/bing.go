package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/geocode-cli/pkg/geocode"
)

var bingCmd = &cobra.Command{
	Use:   "bing DATABASE TABLE",
	Short: "Geocode with Bing Maps",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, _ := cmd.Flags().GetString("api-key")
		if key == "" {
			key = cfg.Providers.BingKey
		}
		if key == "" {
			return eris.New("bing: api key required (set BING_API_KEY or --api-key)")
		}

		provider := geocode.NewBing(geocode.Config{
			APIKey:     key,
			HTTPClient: httpClient(),
		})
		return runGeocode(cmd, args, provider)
	},
}

func init() {
	addCommonFlags(bingCmd)
	bingCmd.Flags().StringP("api-key", "k", os.Getenv("BING_API_KEY"), "Bing Maps API key")
	rootCmd.AddCommand(bingCmd)
}
