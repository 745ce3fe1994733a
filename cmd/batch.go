package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/geocode-cli/internal/engine"
	"github.com/sells-group/geocode-cli/internal/runbook"
	"github.com/sells-group/geocode-cli/pkg/geocode"
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Run geocoding jobs from a YAML runbook",
	Long:  "Runs several table/provider geocoding jobs from one file. Rows within a job are processed sequentially; jobs can run in parallel since each has its own provider throttle.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		file, _ := cmd.Flags().GetString("file")
		parallel, _ := cmd.Flags().GetInt("parallel")
		if parallel < 1 {
			parallel = 1
		}

		rb, err := runbook.Load(file)
		if err != nil {
			return err
		}

		eg, gCtx := errgroup.WithContext(ctx)
		eg.SetLimit(parallel)

		for i, job := range rb.Jobs {
			eg.Go(func() error {
				report, err := runJob(gCtx, job)
				if err != nil {
					zap.L().Error("job failed",
						zap.Int("job", i+1),
						zap.String("table", job.Table),
						zap.Error(err),
					)
					return err
				}
				fmt.Printf("job %d (%s): geocoded %d of %d rows\n",
					i+1, job.Table, report.Succeeded, report.Attempted)
				return nil
			})
		}

		return eg.Wait()
	},
}

// runJob executes one runbook entry end to end.
func runJob(ctx context.Context, job runbook.Job) (*engine.Report, error) {
	provider, err := geocode.New(job.Provider, geocode.Config{
		APIKey:     apiKeyFor(job.Provider),
		UserAgent:  cfg.Providers.UserAgent,
		HTTPClient: httpClient(),
	})
	if err != nil {
		return nil, err
	}

	store, err := openStore(ctx, job.Database)
	if err != nil {
		return nil, err
	}
	defer store.Close() //nolint:errcheck

	mode := engine.ModeCoordinates
	if job.GeoJSON {
		mode = engine.ModeGeoJSON
	}
	if job.Spatial {
		mode = engine.ModeSpatial
	}

	opts := engine.Options{
		Template: job.Location,
		Delay:    time.Duration(job.DelaySecs * float64(time.Second)),
		Mode:     mode,
		Fields: engine.Fields{
			Latitude:  job.Latitude,
			Longitude: job.Longitude,
			Geometry:  cfg.Geocode.GeometryField,
		},
		Force: job.Force,
	}
	if job.DelaySecs == 0 {
		opts.Delay = cfg.Geocode.Delay()
	}

	if err := engine.EnsureSchema(ctx, store, job.Table, opts.Mode, opts.Fields); err != nil {
		return nil, err
	}
	return engine.GeocodeTable(ctx, store, job.Table, provider, opts)
}

// apiKeyFor maps a provider name to its credential, env var first.
func apiKeyFor(provider string) string {
	switch provider {
	case "bing":
		return firstOf(os.Getenv("BING_API_KEY"), cfg.Providers.BingKey)
	case "googlev3":
		return firstOf(os.Getenv("GOOGLE_API_KEY"), cfg.Providers.GoogleKey)
	case "mapquest", "open-mapquest":
		return firstOf(os.Getenv("MAPQUEST_API_KEY"), cfg.Providers.MapQuestKey)
	case "mapbox":
		return firstOf(os.Getenv("MAPBOX_API_KEY"), cfg.Providers.MapboxKey)
	case "opencage":
		return firstOf(os.Getenv("OPENCAGE_API_KEY"), cfg.Providers.OpenCageKey)
	default:
		return ""
	}
}

func firstOf(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func init() {
	batchCmd.Flags().StringP("file", "f", "", "runbook file with geocoding jobs")
	batchCmd.Flags().Int("parallel", 1, "number of jobs to run concurrently")
	_ = batchCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(batchCmd)
}
