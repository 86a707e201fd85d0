// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/compliance-engine/internal/citation"
	"github.com/pdiddy/compliance-engine/internal/ingest"
	"github.com/pdiddy/compliance-engine/internal/report"
	"github.com/pdiddy/compliance-engine/pkg/types"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [file]",
	Short: "Analyze a document for regulatory compliance",
	Long: `Analyze reads a document (or --text, or standard input when the file is
"-"), runs the full compliance analysis and prints the result.

Formats: text (default), json (the complete result) and csl (the citations
as CSL-YAML). With --store the result is also persisted and its id printed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().String("text", "", "analyze this text instead of a file")
	analyzeCmd.Flags().String("format", "text", "output format: text, json or csl")
	analyzeCmd.Flags().Bool("store", false, "persist the result")

	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	switch format {
	case "text", "json", "csl":
	default:
		return fmt.Errorf("unsupported format %q: use text, json or csl", format)
	}
	persist, _ := cmd.Flags().GetBool("store")

	cfg, err := loadConfig(viper.GetViper(), loadedSecrets)
	if err != nil {
		return err
	}

	text, source, err := readInput(cmd, args, cfg.Upload.MaxFileSize)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := newEngineApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	result := a.engine.Analyze(ctx, text)

	if persist {
		if err := storeResult(ctx, cfg, source, text, result); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	switch format {
	case "json":
		err = report.JSON(result, out)
	case "csl":
		err = citation.WriteCSL(result.Citations, out)
	default:
		report.Text(result, out)
	}
	if err != nil {
		return err
	}
	if result.Failed() {
		return fmt.Errorf("analysis failed: %s", result.ErrorMessage)
	}
	return nil
}

// readInput returns the text to analyze and a label for its origin.
func readInput(cmd *cobra.Command, args []string, maxSize int64) (string, string, error) {
	if text, _ := cmd.Flags().GetString("text"); text != "" {
		return text, "", nil
	}
	if len(args) == 0 {
		return "", "", fmt.Errorf("provide a file, \"-\" for standard input, or --text")
	}

	name := args[0]
	var (
		data []byte
		err  error
	)
	if name == "-" {
		data, err = ingest.ReadLimited(cmd.InOrStdin(), maxSize)
		name = "stdin.txt"
	} else {
		data, err = readFile(name, maxSize)
	}
	if err != nil {
		return "", "", err
	}
	text, err := ingest.Extract(name, data)
	if err != nil {
		return "", "", fmt.Errorf("%s: %w", name, err)
	}
	return text, args[0], nil
}

func readFile(path string, maxSize int64) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if err := ingest.Validate(filepath.Base(path), info.Size(), maxSize); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ingest.ReadLimited(f, maxSize)
}

func storeResult(ctx context.Context, cfg types.Config, source, text string, result types.AnalysisResult) error {
	records, err := openStore(ctx, cfg.Store, logger)
	if err != nil {
		return err
	}
	defer records.Close()

	id := uuid.NewString()
	outcome, err := records.Save(ctx, types.Record{
		ID:        id,
		FilePath:  source,
		Status:    result.Status,
		Details:   result,
		Content:   text,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("storing result: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Stored analysis %s (%s)\n", id, outcome)
	return nil
}
