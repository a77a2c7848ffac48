package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"secrm-eiga.dev/web/internal/formatter"
	"secrm-eiga.dev/web/internal/pipeline"
	"secrm-eiga.dev/web/internal/platform/config"
	"secrm-eiga.dev/web/internal/render"
)

const defaultEndpoint = "http://localhost:8080"

type clientOptions struct {
	endpoint string
	timeout  time.Duration
}

func (o *clientOptions) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.endpoint, "endpoint", defaultPipelineURL(), "Base URL of the SECRM-EIGA server")
	cmd.Flags().DurationVar(&o.timeout, "timeout", 30*time.Second, "Request timeout")
}

func (o *clientOptions) client() *pipeline.Client {
	return pipeline.NewClient(o.endpoint, pipeline.WithTimeout(o.timeout))
}

// defaultPipelineURL prefers SECRM_PIPELINE_URL from the environment or .env.
func defaultPipelineURL() string {
	cfg, err := config.Load()
	if err == nil && cfg.Pipeline.BaseURL != "" {
		return cfg.Pipeline.BaseURL
	}
	return defaultEndpoint
}

type analyzeOptions struct {
	clientOptions
	file   string
	output string
}

func newAnalyzeCmd() *cobra.Command {
	opts := &analyzeOptions{}
	cmd := &cobra.Command{
		Use:   "analyze [TEXT]",
		Short: "Analyze a customer review",
		Long: `Send review text to the pipeline and print the analysis.

Examples:
  # Analyze text given as an argument
  secrm analyze "My phone keeps dying after the update"

  # Read the review from a file
  secrm analyze -f review.txt

  # Pipe a review and print JSON
  cat review.txt | secrm analyze -o json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, opts, args)
		},
	}
	opts.bind(cmd)
	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "Read the review from a file")
	cmd.Flags().StringVarP(&opts.output, "output", "o", formatter.FormatHuman, "Output format (human, json, yaml)")
	return cmd
}

func runAnalyze(cmd *cobra.Command, opts *analyzeOptions, args []string) error {
	text, err := readReview(cmd.InOrStdin(), opts.file, args)
	if err != nil {
		return err
	}

	s := spinner.New(spinner.CharSets[11], 100*time.Millisecond, spinner.WithWriter(cmd.ErrOrStderr()))
	s.Suffix = " " + render.RunningMessage
	s.Start()

	ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
	defer cancel()
	res, err := opts.client().Submit(ctx, text)
	s.Stop()
	if errors.Is(err, pipeline.ErrEmptyInput) {
		return errors.New("nothing to analyze: review text is empty")
	}
	if err != nil {
		return errors.New(strings.TrimPrefix(render.BuildErrorView(err).Message, "Error: "))
	}
	return formatter.Display(cmd.OutOrStdout(), res, opts.output)
}

// readReview takes the review from the argument, then --file, then stdin.
func readReview(stdin io.Reader, file string, args []string) (string, error) {
	switch {
	case len(args) == 1:
		return args[0], nil
	case file != "":
		b, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("read review: %w", err)
		}
		return string(b), nil
	case stdin != nil:
		b, err := io.ReadAll(io.LimitReader(stdin, 1<<20))
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(b), nil
	}
	return "", nil
}

func newServeCheckCmd() *cobra.Command {
	opts := &clientOptions{}
	cmd := &cobra.Command{
		Use:   "serve-check",
		Short: "Check that a SECRM-EIGA server is answering",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()
			h, err := opts.client().Health(ctx)
			if err != nil {
				return fmt.Errorf("%s is not healthy: %w", opts.endpoint, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s (status %s, uptime %s)\n",
				color.GreenString("✓"), opts.endpoint, h.Status, h.Uptime)
			return nil
		},
	}
	opts.bind(cmd)
	return cmd
}
