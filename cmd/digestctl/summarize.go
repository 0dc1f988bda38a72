package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/yanqian/gopher-digest/internal/domain/extraction"
	"github.com/yanqian/gopher-digest/internal/domain/summarizer"
	"github.com/yanqian/gopher-digest/pkg/metrics"
)

type summarizeOutput struct {
	URL        string                `json:"url"`
	SourceKind extraction.SourceKind `json:"sourceKind"`
	Length     int                   `json:"length"`
	Title      string                `json:"title"`
	Summary    string                `json:"summary"`
	Tags       []string              `json:"tags"`
	Usage      metrics.TokenUsage    `json:"usage"`
}

func newSummarizeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "summarize <url>",
		Short: "Extract and summarize an article, printing JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			runner, err := opts.pipe.summarizer()
			if err != nil {
				return err
			}

			content, err := opts.pipe.extractor.Extract(ctx, extraction.Request{URL: args[0]})
			if err != nil {
				return err
			}
			result, err := runner.Summarize(ctx, summarizer.Request{Text: content.Text, Title: content.Title})
			if err != nil {
				return err
			}

			out := summarizeOutput{
				URL:        args[0],
				SourceKind: content.SourceKind,
				Length:     content.Length,
				Title:      result.Summary.Title,
				Summary:    result.Summary.Summary,
				Tags:       result.Summary.Tags,
				Usage:      result.Usage,
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			enc.SetEscapeHTML(false)
			return enc.Encode(out)
		},
	}
}
