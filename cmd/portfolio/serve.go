package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/Zachkp/portfolio-contact/internal/config"
	"github.com/Zachkp/portfolio-contact/internal/handoff"
	"github.com/Zachkp/portfolio-contact/internal/metrics"
	"github.com/Zachkp/portfolio-contact/internal/web"
	"github.com/Zachkp/portfolio-contact/pkg/logging"
)

func serveCmd() *cobra.Command {
	var port string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if port != "" {
				cfg.Port = port
			}
			return runServer(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVarP(&port, "port", "p", "", "listen port (default: $PORT or 8080)")
	return cmd
}

func runServer(parent context.Context, cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := logging.New(cfg.LogLevel)
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	owner, err := loadOwner(cfg)
	if err != nil {
		logger.Error("failed to load site profile", "error", err)
		return err
	}

	store, err := handoff.Open(cfg.DatabasePath, logger)
	if err != nil {
		logger.Error("failed to open handoff log", "path", cfg.DatabasePath, "error", err)
		return err
	}
	defer store.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	srv, err := web.New(web.Deps{
		Config:   cfg,
		Owner:    owner,
		Logger:   logger,
		Store:    store,
		Metrics:  metrics.NewContactMetrics(reg),
		Gatherer: reg,
	})
	if err != nil {
		logger.Error("failed to build server", "error", err)
		return err
	}

	logger.Info("starting portfolio", "owner", owner.OwnerName, "env", cfg.Env, "track_visits", cfg.TrackVisits)
	return srv.Run(ctx)
}
