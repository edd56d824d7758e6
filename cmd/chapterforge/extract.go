package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/chapterforge/chapterforge/internal/config"
	"github.com/chapterforge/chapterforge/internal/ingest"
	"github.com/chapterforge/chapterforge/internal/llm"
	"github.com/chapterforge/chapterforge/internal/logging"
	"github.com/chapterforge/chapterforge/internal/parser"
	"github.com/chapterforge/chapterforge/internal/pipeline"
	"github.com/chapterforge/chapterforge/internal/runs"
	"github.com/chapterforge/chapterforge/internal/storage"
	"github.com/chapterforge/chapterforge/pkg/types"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newExtractCmd() *cobra.Command {
	var inputPath string
	var providerName string

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Run the extraction pipeline over a single document",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtract(inputPath, providerName)
		},
	}

	cmd.Flags().StringVar(&inputPath, "input", "", "path to the source document (.txt, .pdf, .epub)")
	cmd.Flags().StringVar(&providerName, "provider", "", "registered LM provider name (defaults to config's default)")
	cmd.MarkFlagRequired("input")

	return cmd
}

func runExtract(inputPath, providerName string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logging.New(false)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer log.Sync()

	ctx := context.Background()

	registry, err := buildRegistry(ctx, cfg)
	if err != nil {
		return err
	}

	client, err := registry.Get(providerName)
	if err != nil {
		return fmt.Errorf("failed to resolve LM provider: %w", err)
	}

	storageAdapter, err := storage.NewAdapter(cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to initialize storage adapter: %w", err)
	}
	defer storageAdapter.Close()

	parserFactory := parser.NewFactory()
	loader := ingest.NewLoader(storageAdapter, parserFactory)

	data, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("failed to read input file: %w", err)
	}
	format := strings.TrimPrefix(filepath.Ext(inputPath), ".")

	doc, err := loader.LoadBytes(ctx, format, data)
	if err != nil {
		return fmt.Errorf("failed to parse input document: %w", err)
	}

	p := pipeline.New(client, cfg.Pipeline, log)
	results, err := p.ExtractAll(ctx, doc)
	if err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}

	meta := types.RunMetadata{
		RunID:        uuid.NewString(),
		BookTitle:    filepath.Base(inputPath),
		SourceFormat: format,
	}
	store := runs.NewStore(storageAdapter)
	if err := store.Save(ctx, meta, results); err != nil {
		log.Warn("failed to save run snapshot", zap.Error(err))
	}

	return json.NewEncoder(os.Stdout).Encode(results)
}

func buildRegistry(ctx context.Context, cfg *types.Config) (*llm.Registry, error) {
	registry := llm.NewRegistry()

	for _, p := range cfg.Providers.LLM {
		if !p.Enabled {
			continue
		}
		switch p.Kind {
		case "openai":
			registry.Register(p.Name, llm.NewOpenAIClient(llm.OpenAIOptions{
				Name: p.Name, APIKey: p.APIKey, BaseURL: p.Endpoint, Model: p.Model,
				RateLimitQPS: p.RateLimitQPS, MaxRetries: uint(p.MaxRetries),
			}))
		case "gemini":
			client, err := llm.NewGeminiClient(ctx, llm.GeminiOptions{
				Name: p.Name, APIKey: p.APIKey, Model: p.Model, RateLimitQPS: p.RateLimitQPS,
			})
			if err != nil {
				return nil, fmt.Errorf("failed to build gemini client %q: %w", p.Name, err)
			}
			registry.Register(p.Name, client)
		case "stub":
			registry.Register(p.Name, llm.NewStubClient())
		default:
			return nil, fmt.Errorf("unknown provider kind %q for %q", p.Kind, p.Name)
		}
	}

	if cfg.Providers.Default != "" {
		registry.SetDefault(cfg.Providers.Default)
	}

	return registry, nil
}
