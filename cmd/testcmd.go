package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sells-group/geocode-cli/internal/table"
	"github.com/sells-group/geocode-cli/pkg/geocode"
)

var testCmd = &cobra.Command{
	Use:    "test DATABASE TABLE",
	Short:  "Geocode against a local reference table",
	Hidden: true,
	Args:   cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		refPath, _ := cmd.Flags().GetString("db-path")
		refTable, _ := cmd.Flags().GetString("ref-table")

		refStore, err := table.NewSQLite(refPath)
		if err != nil {
			return err
		}
		defer refStore.Close() //nolint:errcheck

		fmt.Printf("Using test geocoder with database %s\n", refPath)
		provider := geocode.NewTableProvider(refStore, refTable, "")
		return runGeocode(cmd, args, provider)
	},
}

func init() {
	addCommonFlags(testCmd)
	testCmd.Flags().StringP("db-path", "p", "", "reference database with known locations")
	testCmd.Flags().String("ref-table", "locations", "reference table name")
	_ = testCmd.MarkFlagRequired("db-path")
	rootCmd.AddCommand(testCmd)
}
