package cli

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"stockledger/analysis"
	"stockledger/api"
	"stockledger/config"
	"stockledger/engine"
)

func init() {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the REST API",
		RunE: func(cmd *cobra.Command, args []string) error {
			lvl, _ := config.ParseLevel(appConfig.LogLevel)
			logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
			slog.SetDefault(logger)
			if lvl != slog.LevelDebug {
				gin.SetMode(gin.ReleaseMode)
			}
			txEngine = engine.New(ledgerStore,
				engine.WithLogger(logger),
				engine.WithMetrics(appMetrics),
			)

			client := analysis.NewClient(analysisConfig(), logger, appMetrics)
			h := api.NewHandler(txEngine, reporter, client, logger)
			srv := &http.Server{
				Addr:              appConfig.HTTPAddr,
				Handler:           api.NewRouter(h, appMetrics, logger),
				ReadHeaderTimeout: 5 * time.Second,
				ReadTimeout:       10 * time.Second,
				WriteTimeout:      writeTimeout(appConfig.AnalysisTimeout),
				IdleTimeout:       60 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				logger.Info("http server listening", "addr", srv.Addr)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
	serveCmd.Flags().String("http-addr", ":8080", "listen address")
	viper.BindPFlag("http-addr", serveCmd.Flags().Lookup("http-addr"))
	rootCmd.AddCommand(serveCmd)
}

// writeTimeout leaves room for a full analysis call plus encoding the reply,
// so a slow service yields the fallback text instead of a dropped connection.
func writeTimeout(analysis time.Duration) time.Duration {
	const (
		floor  = 30 * time.Second
		margin = 10 * time.Second
	)
	if analysis+margin > floor {
		return analysis + margin
	}
	return floor
}
