package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"
	"upwatch/config"
	"upwatch/internals/app"
	"upwatch/internals/server"
	"upwatch/pkg/db"
	"upwatch/pkg/logger"

	"github.com/spf13/cobra"
)

const pidFile = "upwatch.pid"

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "run the reconciler, its workers and the status API",
	RunE:  runStart,
}

func runStart(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(configPath(cmd))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	part, err := partitionFromFlags()
	if err != nil {
		return err
	}

	// Done channel of ctx closes on the first SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log := logger.Init(cfg)
	log.Info().Msg("logger initialized")

	dbPool, err := db.ConnectToDB(ctx, cfg.DB, log)
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize db pool")
		return err
	}
	defer dbPool.Close()

	container, err := app.NewContainer(ctx, dbPool, cfg, app.Options{
		Limit:     limitFlag,
		Partition: part,
	}, log)
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize dependencies")
		return err
	}
	log.Info().Msg("dependencies initialized")

	if err := writePidFile(); err != nil {
		log.Warn().Err(err).Msg("could not write pid file")
	}
	defer os.Remove(pidFile)

	// The reconciler owns every worker; one goroutine is enough.
	go container.Reconciler.Run(ctx)

	router := app.RegisterRoutes(container)
	srv := server.New(fmt.Sprintf(":%d", cfg.Port), router, log)
	srv.Start()

	<-ctx.Done()
	log.Info().Msg("shutdown signal received")

	if err := srv.Shutdown(context.Background()); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}

	// Buffer time for in-flight checks to notice cancellation.
	drainCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	container.Reconciler.Drain(drainCtx)

	if err := container.Shutdown(); err != nil {
		log.Error().Err(err).Msg("dependencies shutdown failed")
	}

	log.Info().Msg("graceful shutdown complete")
	return nil
}

func writePidFile() error {
	return os.WriteFile(pidFile, []byte(strconv.Itoa(os.Getpid())), 0o644)
}
