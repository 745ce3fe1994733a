package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/geocode-cli/pkg/geocode"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve ad-hoc geocoding over HTTP",
	Long:  "Exposes a single forward-geocoding endpoint backed by one configured provider. Useful for smoke-testing provider credentials.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		providerName, _ := cmd.Flags().GetString("provider")

		provider, err := geocode.New(providerName, geocode.Config{
			APIKey:     apiKeyFor(providerName),
			UserAgent:  cfg.Providers.UserAgent,
			HTTPClient: httpClient(),
		})
		if err != nil {
			return err
		}
		throttled := geocode.Throttle(provider, cfg.Geocode.Delay())

		mux := http.NewServeMux()

		mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
		})

		mux.HandleFunc("POST /geocode", func(w http.ResponseWriter, r *http.Request) {
			var req struct {
				Query string `json:"query"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
				return
			}
			if req.Query == "" {
				http.Error(w, `{"error":"query is required"}`, http.StatusBadRequest)
				return
			}

			result, err := throttled.Geocode(r.Context(), req.Query, geocode.QueryOptions{})
			if err != nil {
				zap.L().Error("geocode request failed",
					zap.String("query", req.Query),
					zap.Error(err),
				)
				http.Error(w, `{"error":"geocoding failed"}`, http.StatusBadGateway)
				return
			}

			w.Header().Set("Content-Type", "application/json")
			if result == nil {
				json.NewEncoder(w).Encode(map[string]any{"matched": false})
				return
			}
			json.NewEncoder(w).Encode(map[string]any{
				"matched":   true,
				"latitude":  result.Latitude,
				"longitude": result.Longitude,
				"label":     result.Label,
				"provider":  throttled.Name(),
			})
		})

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: mux,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server",
			zap.Int("port", port),
			zap.String("provider", provider.Name()),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	serveCmd.Flags().String("provider", "nominatim", "geocoding provider to serve")
	rootCmd.AddCommand(serveCmd)
}
