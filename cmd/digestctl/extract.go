package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yanqian/gopher-digest/internal/domain/extraction"
)

func newExtractCmd(opts *rootOptions) *cobra.Command {
	var jsonOutput bool
	cmd := &cobra.Command{
		Use:   "extract <url>",
		Short: "Extract article text and print it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := opts.pipe.extractor.Extract(cmd.Context(), extraction.Request{URL: args[0]})
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if jsonOutput {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(content)
			}
			fmt.Fprintf(w, "source:   %s\n", content.SourceKind)
			fmt.Fprintf(w, "length:   %d\n", content.Length)
			if content.Title != "" {
				fmt.Fprintf(w, "title:    %s\n", content.Title)
			}
			if content.Language != "" {
				fmt.Fprintf(w, "language: %s\n", content.Language)
			}
			if content.Claps > 0 {
				fmt.Fprintf(w, "claps:    %d\n", content.Claps)
			}
			fmt.Fprintf(w, "\n%s\n", content.Text)
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	return cmd
}
