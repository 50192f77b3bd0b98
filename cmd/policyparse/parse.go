package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/hwkim-dev/policyparse/internal/config"
	"github.com/hwkim-dev/policyparse/internal/docstore"
	"github.com/hwkim-dev/policyparse/internal/export"
	"github.com/hwkim-dev/policyparse/internal/oracle"
	"github.com/hwkim-dev/policyparse/internal/toc"
)

var parseWindowSize int

var parseCmd = &cobra.Command{
	Use:   "parse <policy.pdf>",
	Short: "Parse one policy PDF and write its section exports",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runParse(cmd.Context(), args[0])
	},
}

func init() {
	parseCmd.Flags().IntVar(&parseWindowSize, "window", 0, "table-of-contents scan window size (pages)")
}

func runParse(ctx context.Context, path string) error {
	log := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfg := config.Load()
	if cfg.OpenRouterAPIKey == "" {
		return fmt.Errorf("OPENROUTER_API_KEY is required")
	}
	if !cfg.ModelAllowed(cfg.OracleModel) {
		return fmt.Errorf("model %q is not in the allowed model list %v", cfg.OracleModel, cfg.AllowedModels)
	}
	windowSize := parseWindowSize
	if windowSize <= 0 {
		windowSize = cfg.WindowSize
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	store, err := docstore.NewLocal(cfg.DataDir)
	if err != nil {
		return err
	}
	exporter, err := export.New(cfg.OutputDir)
	if err != nil {
		return err
	}
	client, err := oracle.NewOpenRouter(oracle.OpenRouterOptions{
		APIKey:        cfg.OpenRouterAPIKey,
		BaseURL:       cfg.OpenRouterBaseURL,
		Model:         cfg.OracleModel,
		AllowedModels: cfg.AllowedModels,
		Timeout:       cfg.OracleTimeout,
		MaxRetries:    cfg.OracleMaxRetries,
	})
	if err != nil {
		return err
	}
	defer client.Close()

	doc, err := store.Put(ctx, path, data)
	if err != nil {
		return fmt.Errorf("store document: %w", err)
	}
	log.Info("document stored", "doc_id", doc.ID, "pages", doc.PageCount)

	machine := toc.NewMachine(store, client, log, cfg.MaxConcurrentExtract)
	st := toc.NewRunState(doc.ID, windowSize)

	start := time.Now()
	if err := machine.Run(ctx, st); err != nil {
		for _, line := range st.Logs() {
			fmt.Fprintln(os.Stderr, line)
		}
		return fmt.Errorf("parse failed (%s): %w", st.Reason(), err)
	}

	res, err := exporter.Export(doc.ID, st.Sections())
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}

	sections := st.Sections()
	fmt.Printf("parsed %s: %d sections in %s\n", doc.ID, len(sections), time.Since(start).Round(time.Millisecond))
	for _, s := range sections {
		fmt.Printf("  %2d  pages %3d-%-3d  %s\n", s.ID, s.PageStart, s.PageEnd, s.Title)
	}
	fmt.Printf("csv: %s\n", res.CSVPath)
	return nil
}
