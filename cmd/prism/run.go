package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/prismworks/prism/internal/config"
	"github.com/prismworks/prism/internal/embedding"
	"github.com/prismworks/prism/internal/index"
	"github.com/prismworks/prism/internal/llm"
	"github.com/prismworks/prism/internal/metrics"
	"github.com/prismworks/prism/internal/pipeline"
	"github.com/prismworks/prism/internal/source"
	"github.com/prismworks/prism/pkg/lifecycle"
)

var metricsAddr string

var runCmd = &cobra.Command{
	Use:   "run <path>",
	Short: "Run the analysis pipeline over a file or directory",
	Long: `Loads every supported document under the given path, enriches each
one through the parallel analysis stages, embeds the text, and commits
the batch to the configured vector collection.`,
	Args: cobra.ExactArgs(1),
	RunE: runPipeline,
}

func init() {
	runCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "",
		"serve Prometheus metrics on this address (overrides config)")
	rootCmd.AddCommand(runCmd)
}

func runPipeline(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	logger.Info(
		"prism starting",
		"version", cfg.Version,
		"env", cfg.Env(),
		"input", args[0],
	)

	if metricsAddr != "" {
		cfg.Metrics.Enabled = true
		cfg.Metrics.Address = metricsAddr
	}

	life := lifecycle.New(logger)
	defer func() {
		if err := life.Close(cfg.Pipeline.ShutdownTimeoutDuration()); err != nil {
			logger.Error("shutdown incomplete", "error", err)
		}
	}()

	connectCtx, cancel := context.WithTimeout(life.Context(), cfg.Index.TimeoutDuration())
	milvus, err := index.Connect(connectCtx, cfg.Index.Address)
	cancel()
	if err != nil {
		return fmt.Errorf("connect index: %w", err)
	}

	store := index.NewStore(milvus, cfg.Index.Collection, logger)
	life.Defer("index", store.Close)

	rt := &pipeline.Runtime{
		Source:    source.NewFilesystem(logger),
		Completer: llm.NewOllama(cfg.LLM.BaseURL, cfg.LLM.Model, cfg.LLM.TimeoutDuration()),
		Embedder:  embedding.NewOllama(cfg.Embedding.BaseURL, cfg.Embedding.Model, cfg.Embedding.TimeoutDuration()),
		Index:     store,
		Logger:    logger,
	}

	if cfg.Metrics.Enabled {
		m := metrics.New()
		rt.Metrics = m
		life.Serve("metrics", &http.Server{
			Addr:    cfg.Metrics.Address,
			Handler: m.Handler(),
		})
	}

	final, err := pipeline.Execute(life.Context(), rt, args[0])
	if err != nil {
		return err
	}

	cmd.Printf("Indexed %d documents into %q.\n",
		final.IndexResult.InsertCount, cfg.Index.Collection)

	duplicates := 0
	for _, r := range final.Records {
		if r.Identity != nil && r.Identity.IsDuplicate {
			duplicates++
		}
	}
	if duplicates > 0 {
		cmd.Printf("Flagged %d duplicate document(s).\n", duplicates)
	}

	return nil
}
