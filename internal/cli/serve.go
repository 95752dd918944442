package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/example/tarmac/internal/scheduler"
	"github.com/example/tarmac/internal/wire"
)

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the allocation engine in the foreground",
		Long:  `Run the periodic flight sync, the civil recall sweep, and the saturation watch until interrupted. Prometheus metrics are exposed on the configured address.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			file, _ := cmd.Flags().GetString("file")
			if file != "" {
				wire.SetFlightSourcePath(file)
			}

			cfg := wire.Config()
			logger := wire.Logger()

			sched := scheduler.New(logger)
			sched.Add(scheduler.Job{
				Name:     "flight-sync",
				Interval: cfg.SyncInterval(),
				Run: func(ctx context.Context) error {
					_, err := wire.IngestService().Sync(ctx)
					return err
				},
			})
			sched.Add(scheduler.Job{
				Name:     "civil-recall-sweep",
				Interval: cfg.SweepInterval(),
				Run: func(ctx context.Context) error {
					_, err := wire.RecallService().RunCivilRecallSweep(ctx)
					return err
				},
			})
			sched.Add(scheduler.Job{
				Name:     "saturation-watch",
				Interval: cfg.SweepInterval(),
				Run: func(ctx context.Context) error {
					_, err := wire.RecallService().CheckSaturation(ctx)
					return err
				},
			})

			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			srv := &http.Server{Addr: cfg.MetricsAddr, Handler: mux}
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Error("metrics server failed", zap.Error(err))
				}
			}()

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			sched.Start(ctx)
			logger.Info("tarmac engine running",
				zap.String("metrics_addr", cfg.MetricsAddr),
				zap.Duration("sync_interval", cfg.SyncInterval()),
				zap.Duration("sweep_interval", cfg.SweepInterval()))
			fmt.Printf("tarmac engine running, metrics on %s (ctrl-c to stop)\n", cfg.MetricsAddr)

			<-ctx.Done()
			fmt.Println("shutting down...")
			sched.Stop()

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Warn("metrics server shutdown", zap.Error(err))
			}
			return nil
		},
	}
	cmd.Flags().String("file", "", "Flight feed JSON file (default flights.json)")
	return cmd
}
