package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/hwkim-dev/policyparse/internal/api"
	"github.com/hwkim-dev/policyparse/internal/config"
	"github.com/hwkim-dev/policyparse/internal/docstore"
	"github.com/hwkim-dev/policyparse/internal/export"
	"github.com/hwkim-dev/policyparse/internal/oracle"
	"github.com/hwkim-dev/policyparse/internal/runs"
	"github.com/hwkim-dev/policyparse/internal/toc"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the policyparse HTTP service",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

func runServe() error {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := docstore.NewLocal(cfg.DataDir)
	if err != nil {
		return err
	}
	exporter, err := export.New(cfg.OutputDir)
	if err != nil {
		return err
	}

	stats := oracle.NewStats(time.Hour)
	client, err := oracle.NewOpenRouter(oracle.OpenRouterOptions{
		APIKey:        cfg.OpenRouterAPIKey,
		BaseURL:       cfg.OpenRouterBaseURL,
		Model:         cfg.OracleModel,
		AllowedModels: cfg.AllowedModels,
		Timeout:       cfg.OracleTimeout,
		MaxRetries:    cfg.OracleMaxRetries,
		Stats:         stats,
	})
	if err != nil {
		return err
	}

	machine := toc.NewMachine(store, client, log, cfg.MaxConcurrentExtract)
	orch := runs.NewOrchestrator(machine, exporter, log, cfg.WorkerCount, cfg.MaxQueueSize, cfg.RunTTL)
	orch.Start(ctx)

	srv := api.NewServer(store, orch, exporter, stats, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		orch.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		client.Close()
	}()

	log.Info("starting policyparse", "port", cfg.Port, "model", client.Model())
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
