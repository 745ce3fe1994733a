package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/geocode-cli/pkg/geocode"
)

var mapquestCmd = &cobra.Command{
	Use:   "mapquest DATABASE TABLE",
	Short: "Geocode with MapQuest",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := mapquestKey(cmd)
		if err != nil {
			return err
		}
		provider := geocode.NewMapQuest(geocode.Config{
			APIKey:     key,
			HTTPClient: httpClient(),
		})
		return runGeocode(cmd, args, provider)
	},
}

var openMapquestCmd = &cobra.Command{
	Use:   "open-mapquest DATABASE TABLE",
	Short: "Geocode with MapQuest's open-data endpoint",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := mapquestKey(cmd)
		if err != nil {
			return err
		}
		provider := geocode.NewOpenMapQuest(geocode.Config{
			APIKey:     key,
			HTTPClient: httpClient(),
		})
		return runGeocode(cmd, args, provider)
	},
}

func mapquestKey(cmd *cobra.Command) (string, error) {
	key, _ := cmd.Flags().GetString("api-key")
	if key == "" {
		key = cfg.Providers.MapQuestKey
	}
	if key == "" {
		return "", eris.New("mapquest: api key required (set MAPQUEST_API_KEY or --api-key)")
	}
	return key, nil
}

func init() {
	for _, cmd := range []*cobra.Command{mapquestCmd, openMapquestCmd} {
		addCommonFlags(cmd)
		cmd.Flags().StringP("api-key", "k", os.Getenv("MAPQUEST_API_KEY"), "MapQuest API key")
		rootCmd.AddCommand(cmd)
	}
}
