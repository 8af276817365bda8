package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/metalogic-lab/metadiag/internal/engine"
	"github.com/metalogic-lab/metadiag/internal/report"
	"github.com/metalogic-lab/metadiag/internal/worker"
)

var (
	batchConcurrency int
	batchOutputDir   string
	batchTimeout     time.Duration
	batchProvider    string
	batchModel       string
	batchNoCache     bool
)

// batchCmd processes many answer sets from a file in parallel.
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Diagnose multiple answer sets from a YAML file in parallel",
	Long: `Batch reads a YAML list of named answer sets and produces one report per
entry, processing entries concurrently. Model-backed engines are rate
limited across all workers.

Input format:
  - name: 华东制造样本
    answers:
      industry: 制造业
      revenueScale: 1000万-5000万
      painPoints: [利润下滑]
      onlineRatio: 85
      profitTrend: 下滑中

Example:
  metadiag batch cases.yaml
  metadiag batch cases.yaml --concurrency 8 --output-dir ./reports
  metadiag batch cases.yaml --engine openai --model gpt-4o-mini`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", runtime.NumCPU(), "number of concurrent workers")
	batchCmd.Flags().StringVar(&batchOutputDir, "output-dir", "./metadiag-reports", "output directory for reports")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")
	batchCmd.Flags().StringVar(&batchProvider, "engine", "", "analysis engine (rules, openai; default rules)")
	batchCmd.Flags().StringVar(&batchModel, "model", "", "model name for the openai engine")
	batchCmd.Flags().BoolVar(&batchNoCache, "no-cache", false, "disable the report cache")
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	cfg := loadConfig()
	if batchProvider != "" {
		cfg.Engine.Provider = batchProvider
	}
	if batchModel != "" {
		cfg.Engine.Model = batchModel
	}
	cfg.Cache.Enabled = cfg.Cache.Enabled && !batchNoCache

	eng, err := engine.New(cfg)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(batchOutputDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	processor := worker.NewBatchProcessor(eng, batchConcurrency,
		cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.BurstSize)

	fmt.Fprintf(os.Stderr, "Processing %s with %d workers...\n", file, batchConcurrency)
	results, err := processor.ProcessFile(ctx, file)
	if err != nil {
		return err
	}

	renderer := report.NewRenderer(cfg.Output.IncludeFooter)
	successCount := 0
	failureCount := 0

	for _, result := range results {
		if result.Err != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", result.Name, result.Err)
			continue
		}

		name := safeFileName(result.Name)
		jsonPath := filepath.Join(batchOutputDir, name+".json")
		mdPath := filepath.Join(batchOutputDir, name+".md")
		if err := renderer.RenderJSON(result.Report, result.Answers, jsonPath); err != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: write JSON: %v\n", result.Name, err)
			continue
		}
		if err := renderer.RenderMarkdown(result.Report, result.Answers, mdPath); err != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: write Markdown: %v\n", result.Name, err)
			continue
		}

		successCount++
		fmt.Fprintf(os.Stderr, "✓ %s (risk: %d/100)\n", result.Name, result.Report.RiskScore)
	}

	fmt.Fprintf(os.Stderr, "\nBatch complete: %d total, %d success, %d failures, output %s\n",
		len(results), successCount, failureCount, batchOutputDir)
	return nil
}

// safeFileName strips path separators from an entry name so a crafted batch
// file cannot write outside the output directory.
func safeFileName(name string) string {
	name = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\':
			return '_'
		}
		return r
	}, name)
	if name == "" || name == "." || name == ".." {
		return "report"
	}
	return name
}
