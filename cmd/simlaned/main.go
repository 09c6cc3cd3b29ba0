// Command simlaned runs the simulation lane HTTP daemon.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/matada/simlane/internal/config"
	"github.com/matada/simlane/internal/observability"
	"github.com/matada/simlane/internal/server"
	"github.com/matada/simlane/pkg/scheduler"
	"github.com/matada/simlane/pkg/simulation"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "simlaned:", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := observability.Init(cfg.Logging.Level, cfg.Logging.Profile); err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer observability.Sync()

	sched := scheduler.New(
		scheduler.WithMaxWorkDelay(cfg.Simulation.MaxWorkDelay),
		scheduler.WithSnapshots(cfg.Jobs.Dir),
	)
	facade := simulation.New(
		cfg.SimulationEnabled,
		simulation.WithScheduler(sched),
		simulation.WithLenientValidation(cfg.LenientValidation()),
	)

	srv := server.New(server.Options{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		RateLimit:    cfg.Server.RateLimit,
	}, facade)

	errCh := make(chan error, 1)
	go func() {
		observability.Logger.Info("simlaned listening",
			zap.String("host", cfg.Server.Host),
			zap.Int("port", cfg.Server.Port),
			zap.Bool("simulation_enabled", cfg.SimulationEnabled()))
		errCh <- srv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case sig := <-stop:
		observability.Logger.Info("shutting down", zap.String("signal", sig.String()))
		shutdownCtx, cancel := context.WithTimeout(ctx, cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
