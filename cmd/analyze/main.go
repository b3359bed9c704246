// Command analyze runs project descriptions through the roof spec analysis
// stages and prints the result. It uses the same transformer as the ETL
// service, without Kafka or geocoding.
//
// Usage:
//
//	go run ./cmd/analyze "GAF TPO 30ft Dallas TX mechanically attached"
//	go run ./cmd/analyze --format text demo
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/couchcryptid/roof-spec-etl/internal/domain"
	"github.com/couchcryptid/roof-spec-etl/internal/observability"
	"github.com/couchcryptid/roof-spec-etl/internal/pipeline"
	"github.com/spf13/cobra"
)

// demoInputs are the descriptions run by the demo subcommand.
var demoInputs = []string{
	"JM and Carlisle TPO 45ft Miami FL with NOA",
	"GAF TPO 30ft Dallas TX mechanically attached",
	"Elevate membrane 25ft Los Angeles CA",
}

type options struct {
	format      string
	catalogPath string
	logLevel    string
}

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "analyze <description>",
		Short: "Analyze a roofing project description",
		Long: `Analyze extracts requirements from a free-text roofing project
description, estimates wind loads for the site, and matches the requested
manufacturers against the approval catalog.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd.Context(), cmd.OutOrStdout(), opts, []string{strings.Join(args, " ")})
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.format, "format", "f", "json", "Output format (json, text)")
	cmd.PersistentFlags().StringVar(&opts.catalogPath, "catalog", "", "YAML catalog replacing the embedded one")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	cmd.AddCommand(&cobra.Command{
		Use:   "demo",
		Short: "Analyze the built-in demo descriptions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runAnalyze(cmd.Context(), cmd.OutOrStdout(), opts, demoInputs)
		},
	})

	return cmd
}

func runAnalyze(ctx context.Context, out io.Writer, opts *options, descriptions []string) error {
	if opts.format != "json" && opts.format != "text" {
		return fmt.Errorf("unsupported format %q", opts.format)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	logger := observability.NewConsoleLogger(os.Stderr, opts.logLevel)

	catalog := domain.DefaultCatalog()
	if opts.catalogPath != "" {
		var err error
		if catalog, err = domain.LoadCatalog(opts.catalogPath); err != nil {
			return err
		}
	}
	transformer := pipeline.NewTransformer(domain.NewMatcher(catalog, logger), nil, logger, nil)

	analyses := make([]domain.Analysis, 0, len(descriptions))
	for _, d := range descriptions {
		a, err := transformer.Analyze(ctx, pipeline.SourceCLI, domain.ProjectRequest{Description: d})
		if err != nil {
			return fmt.Errorf("analyze %q: %w", d, err)
		}
		analyses = append(analyses, a)
	}

	if opts.format == "text" {
		for i := range analyses {
			if i > 0 {
				fmt.Fprintln(out)
			}
			writeSummary(out, analyses[i])
		}
		return nil
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if len(analyses) == 1 {
		return enc.Encode(analyses[0])
	}
	return enc.Encode(analyses)
}
