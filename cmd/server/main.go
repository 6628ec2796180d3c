package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	httpapi "github.com/openpbrl/openpbrl/internal/api/http"
	"github.com/openpbrl/openpbrl/internal/app/bootstrap"
	"github.com/openpbrl/openpbrl/internal/observability/logging"
	"github.com/openpbrl/openpbrl/pkg/config"
)

func main() {
	configFile := flag.String("config", "", "config file path")
	flag.Parse()

	if err := run(*configFile); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(configFile string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("wire application: %w", err)
	}
	defer app.Close(context.Background())

	server := httpapi.NewServer(cfg, app.Service, app.Collector, app.Logger)
	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	select {
	case <-ctx.Done():
		app.Logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		app.Logger.Error("graceful shutdown failed", logging.Err(err))
		return err
	}
	app.Logger.Info("server stopped")
	return nil
}
