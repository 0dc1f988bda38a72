package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/yanqian/gopher-digest/internal/domain/extraction"
	"github.com/yanqian/gopher-digest/internal/domain/summarizer"
	"github.com/yanqian/gopher-digest/internal/infra/config"
	"github.com/yanqian/gopher-digest/internal/infra/fetcher"
	"github.com/yanqian/gopher-digest/internal/infra/llm/chatgpt"
	"github.com/yanqian/gopher-digest/internal/infra/tokens"
	"github.com/yanqian/gopher-digest/pkg/logger"
)

type extractor interface {
	Extract(ctx context.Context, req extraction.Request) (extraction.ExtractedContent, error)
}

type summarizerRunner interface {
	Summarize(ctx context.Context, req summarizer.Request) (summarizer.Result, error)
}

// pipeline holds the two stages the CLI drives. Summarize is built lazily so
// `extract` works without any model configuration.
type pipeline struct {
	extractor  extractor
	summarizer func() (summarizerRunner, error)
}

type pipelineFactory func(cfg *config.Config, logger *slog.Logger) (*pipeline, error)

type rootOptions struct {
	configPath string
	verbose    bool
	cfg        *config.Config
	logger     *slog.Logger
	pipe       *pipeline
}

func newRootCmd(build pipelineFactory) *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "digestctl",
		Short: "Fetch, extract and summarize a single article",
		Long: `digestctl runs the gopher-digest pipeline once without the HTTP server.

Example usage:
  digestctl extract https://medium.com/@someone/some-post-1234
  digestctl summarize https://medium.com/@someone/some-post-1234
  digestctl summarize --config configs/config.yaml <url>`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.init(cmd, build)
		},
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default is configs/config.yaml)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log pipeline steps to stderr")

	root.AddCommand(newExtractCmd(opts))
	root.AddCommand(newSummarizeCmd(opts))
	return root
}

func (o *rootOptions) init(cmd *cobra.Command, build pipelineFactory) error {
	if o.configPath != "" {
		if err := os.Setenv("CONFIG_PATH", o.configPath); err != nil {
			return err
		}
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	o.cfg = cfg

	o.logger = logger.Discard()
	if o.verbose {
		o.logger = logger.NewWithWriter(cmd.ErrOrStderr(), "debug")
	}

	pipe, err := build(cfg, o.logger)
	if err != nil {
		return err
	}
	o.pipe = pipe
	return nil
}

func buildPipeline(cfg *config.Config, log *slog.Logger) (*pipeline, error) {
	client, err := fetcher.NewClient(cfg.Extraction, log)
	if err != nil {
		return nil, err
	}
	extractCfg := extraction.Config{
		MinContentLength:  cfg.Extraction.MinContentLength,
		StructuredTimeout: cfg.Extraction.StructuredTimeout,
		MarkupTimeout:     cfg.Extraction.MarkupTimeout,
		UserAgent:         cfg.Extraction.UserAgent,
	}
	return &pipeline{
		extractor: extraction.NewService(extractCfg, client, log),
		summarizer: func() (summarizerRunner, error) {
			chat, err := chatgpt.NewClient(cfg.LLM)
			if err != nil {
				return nil, err
			}
			sumCfg := summarizer.Config{
				MaxInputChars: cfg.Summary.MaxInputChars,
				MinTags:       cfg.Summary.MinTags,
				MaxTags:       cfg.Summary.MaxTags,
				SystemPrompt:  cfg.Summary.SystemPrompt,
				Model:         cfg.LLM.Model,
				Temperature:   cfg.LLM.Temperature,
			}
			return summarizer.NewService(sumCfg, chat, tokens.NewCounter(log), log), nil
		},
	}, nil
}
