package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/geocode-cli/internal/engine"
	"github.com/sells-group/geocode-cli/internal/table"
	"github.com/sells-group/geocode-cli/pkg/geocode"
)

// addCommonFlags registers the flags shared by every provider subcommand.
// Each subcommand also takes two positional arguments: DATABASE and TABLE.
func addCommonFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("location", "l", engine.DefaultTemplate, "location query template, e.g. \"{address}, {city}\"")
	cmd.Flags().Float64P("delay", "d", 1.0, "delay between geocoding calls, in seconds")
	cmd.Flags().String("latitude", "latitude", "field name for latitude")
	cmd.Flags().String("longitude", "longitude", "field name for longitude")
	cmd.Flags().Bool("geojson", false, "store results as GeoJSON in a geometry column instead of latitude and longitude columns")
	cmd.Flags().Bool("spatialite", false, "store results as native spatial geometry in a geometry column")
	cmd.Flags().Bool("force", false, "re-geocode rows that already have results")
	cmd.Flags().Float64Slice("bbox", nil, "bias results within a bounding box; four numbers: lat lon lat lon")
	cmd.MarkFlagsMutuallyExclusive("geojson", "spatialite")
}

// runOptions translates common flags into engine options.
func runOptions(cmd *cobra.Command) (engine.Options, error) {
	flags := cmd.Flags()

	location, _ := flags.GetString("location")
	if !flags.Changed("location") && cfg.Geocode.Template != "" {
		location = cfg.Geocode.Template
	}
	delay, _ := flags.GetFloat64("delay")
	if !flags.Changed("delay") {
		delay = cfg.Geocode.DelaySecs
	}
	latitude, _ := flags.GetString("latitude")
	longitude, _ := flags.GetString("longitude")
	geojson, _ := flags.GetBool("geojson")
	spatialite, _ := flags.GetBool("spatialite")
	force, _ := flags.GetBool("force")
	bbox, _ := flags.GetFloat64Slice("bbox")

	mode := engine.ModeCoordinates
	if geojson {
		mode = engine.ModeGeoJSON
	}
	if spatialite {
		mode = engine.ModeSpatial
	}

	opts := engine.Options{
		Template: location,
		Delay:    time.Duration(delay * float64(time.Second)),
		Mode:     mode,
		Fields: engine.Fields{
			Latitude:  latitude,
			Longitude: longitude,
			Geometry:  cfg.Geocode.GeometryField,
		},
		Force: force,
	}

	if len(bbox) > 0 {
		if len(bbox) != 4 {
			return opts, eris.Errorf("--bbox needs exactly four numbers, got %d", len(bbox))
		}
		bounds := geocode.FormatBounds([4]float64{bbox[0], bbox[1], bbox[2], bbox[3]})
		opts.Query.Bounds = &bounds
	}

	// Only subcommands that support proximity biasing register the flag.
	if flags.Lookup("proximity") != nil {
		proximity, _ := flags.GetFloat64Slice("proximity")
		if len(proximity) > 0 {
			if len(proximity) != 2 {
				return opts, eris.Errorf("--proximity needs exactly two numbers, got %d", len(proximity))
			}
			opts.Query.Proximity = &geocode.Point{Lat: proximity[0], Lon: proximity[1]}
		}
	}

	return opts, nil
}

// openStore picks the backend from the database argument: postgres URLs get
// the pgx adapter, everything else is treated as a SQLite path.
func openStore(ctx context.Context, database string) (table.Store, error) {
	if strings.HasPrefix(database, "postgres://") || strings.HasPrefix(database, "postgresql://") {
		return table.NewPostgres(ctx, database)
	}
	return table.NewSQLite(database)
}

// httpClient builds the shared provider HTTP client from config.
func httpClient() *http.Client {
	timeout := time.Duration(cfg.Geocode.HTTPTimeout) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

// runGeocode drives a full table run for an already-constructed provider:
// open the store, ensure the output columns exist, geocode, then print the
// summary and any per-row failures. Per-row failures never affect the exit
// code; only setup and store errors do.
func runGeocode(cmd *cobra.Command, args []string, provider geocode.Provider) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	database, tbl := args[0], args[1]

	opts, err := runOptions(cmd)
	if err != nil {
		return err
	}

	store, err := openStore(ctx, database)
	if err != nil {
		return err
	}
	defer store.Close() //nolint:errcheck

	if err := engine.EnsureSchema(ctx, store, tbl, opts.Mode, opts.Fields); err != nil {
		return err
	}

	fmt.Printf("Geocoding table: %s\n", tbl)
	report, err := engine.GeocodeTable(ctx, store, tbl, provider, opts)
	if err != nil {
		return err
	}

	fmt.Printf("Geocoded %d rows\n", report.Succeeded)
	if len(report.Failures) > 0 {
		fmt.Println("The following rows failed to geocode:")
		for _, f := range report.Failures {
			if f.Err != nil {
				fmt.Printf("%s: %s (%v)\n", f.Key, f.Query, f.Err)
			} else {
				fmt.Printf("%s: %s\n", f.Key, f.Query)
			}
		}
	}
	return nil
}
