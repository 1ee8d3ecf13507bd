// Package main implements gen-command-tree, which regenerates the command
// tree embedded in pinterest-ads from an OpenAPI document.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/CliForge/pinterest-ads-cli/internal/logging"
	"github.com/CliForge/pinterest-ads-cli/internal/sources"
	"github.com/CliForge/pinterest-ads-cli/pkg/openapi"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		specSource string
		outPath    string
		validate   bool
		debug      bool
	)

	cmd := &cobra.Command{
		Use:   "gen-command-tree",
		Short: "Generate a command tree from an OpenAPI document",
		Long: `Generate the pinterest-ads command tree from an OpenAPI 3.x or Swagger 2.0
document in JSON or YAML.

The document may be a local path, an http(s) URL or s3://bucket/key.`,
		Example: `  gen-command-tree --openapi openapi.json --out pkg/commandtree/schemas/command_tree.json
  gen-command-tree --openapi https://example.com/openapi.yaml --out -`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := logging.New(debug)
			if err != nil {
				return fmt.Errorf("failed to create logger: %w", err)
			}
			defer func() { _ = logger.Sync() }()

			return run(cmd.Context(), logger, specSource, outPath, validate)
		},
	}

	cmd.Flags().StringVar(&specSource, "openapi", "", "OpenAPI document: path, URL or s3://bucket/key")
	cmd.Flags().StringVar(&outPath, "out", "", "Output path, or - for stdout")
	cmd.Flags().BoolVar(&validate, "validate", false, "Validate the document before generating")
	cmd.Flags().BoolVar(&debug, "debug", false, "Enable debug logging")
	_ = cmd.MarkFlagRequired("openapi")
	_ = cmd.MarkFlagRequired("out")

	return cmd
}

func run(ctx context.Context, logger *zap.Logger, specSource, outPath string, validate bool) error {
	resolver := sources.NewResolver(sources.WithLogger(logger))
	data, err := resolver.ReadAll(ctx, specSource)
	if err != nil {
		return err
	}

	parser := openapi.NewParser()
	parser.Validate = validate
	parsed, err := parser.Parse(ctx, data)
	if err != nil {
		return err
	}

	tree, err := openapi.NewGenerator(openapi.WithGeneratorLogger(logger)).Generate(parsed)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(tree); err != nil {
		return fmt.Errorf("failed to encode command tree: %w", err)
	}

	if outPath == "-" {
		_, err = os.Stdout.Write(buf.Bytes())
		return err
	}
	if err := os.WriteFile(outPath, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write command tree: %w", err)
	}

	logger.Info("wrote command tree",
		zap.String("path", outPath),
		zap.Int("resources", len(tree.Resources)),
	)
	return nil
}
