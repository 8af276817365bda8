package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/metalogic-lab/metadiag/internal/engine"
	"github.com/metalogic-lab/metadiag/internal/model"
	"github.com/metalogic-lab/metadiag/internal/report"
)

var (
	diagIndustry    string
	diagRevenue     string
	diagPainPoints  []string
	diagOnlineRatio int
	diagProfitTrend string
	diagProvider    string
	diagModel       string
	diagTimeout     time.Duration
	diagNoCache     bool
	diagNoFooter    bool
	diagOutJSON     string
	diagOutMD       string
)

// diagnoseCmd runs a one-shot analysis from flags, skipping the wizard.
var diagnoseCmd = &cobra.Command{
	Use:   "diagnose",
	Short: "Run a one-shot diagnosis from flags",
	Long: `Diagnose analyzes a complete answer set supplied via flags and renders
the report without going through the interactive wizard.

Answer values are the questionnaire's own labels:
  industry:      制造业 | 实体零售 | 传统贸易 | 服务业
  revenue:       1000万以下 | 1000万-5000万 | 5000万-2亿 | 2亿以上
  pain points:   利润下滑 | 新客获取难 | 人力成本激增 | 库存积压
  profit trend:  增长中 | 基本持平 | 下滑中

Example:
  metadiag diagnose --industry 制造业 --revenue 1000万-5000万 \
    --pain 利润下滑 --online-ratio 85 --profit-trend 下滑中 \
    --json report.json --md report.md
  metadiag diagnose --engine openai --model gpt-4o-mini ...`,
	RunE: runDiagnose,
}

func init() {
	rootCmd.AddCommand(diagnoseCmd)

	diagnoseCmd.Flags().StringVar(&diagIndustry, "industry", "", "industry (step 1)")
	diagnoseCmd.Flags().StringVar(&diagRevenue, "revenue", "", "annual revenue scale (step 2)")
	diagnoseCmd.Flags().StringSliceVar(&diagPainPoints, "pain", nil, "core pain points, repeatable (step 3)")
	diagnoseCmd.Flags().IntVar(&diagOnlineRatio, "online-ratio", model.DefaultOnlineRatio, "online sales percentage 0-100 (step 4)")
	diagnoseCmd.Flags().StringVar(&diagProfitTrend, "profit-trend", "", "profit trend over the last year (step 5)")

	diagnoseCmd.Flags().StringVar(&diagProvider, "engine", "", "analysis engine (rules, openai; default rules)")
	diagnoseCmd.Flags().StringVar(&diagModel, "model", "", "model name for the openai engine")
	diagnoseCmd.Flags().DurationVar(&diagTimeout, "timeout", 30*time.Second, "analysis timeout")
	diagnoseCmd.Flags().BoolVar(&diagNoCache, "no-cache", false, "disable the report cache")
	diagnoseCmd.Flags().BoolVar(&diagNoFooter, "no-footer", false, "disable footer in Markdown reports")

	diagnoseCmd.Flags().StringVar(&diagOutJSON, "json", "report.json", "output JSON path")
	diagnoseCmd.Flags().StringVar(&diagOutMD, "md", "", "output Markdown path (optional)")
}

func runDiagnose(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	if diagProvider != "" {
		cfg.Engine.Provider = diagProvider
	}
	if diagModel != "" {
		cfg.Engine.Model = diagModel
	}
	cfg.Engine.Timeout = diagTimeout
	cfg.Cache.Enabled = cfg.Cache.Enabled && !diagNoCache
	cfg.Output.IncludeFooter = !diagNoFooter

	answers := model.Answers{
		Industry:     model.Industry(diagIndustry),
		RevenueScale: model.RevenueScale(diagRevenue),
		PainPoints:   toPainPoints(diagPainPoints),
		OnlineRatio:  diagOnlineRatio,
		ProfitTrend:  model.ProfitTrend(diagProfitTrend),
	}
	if !answers.Valid() {
		return fmt.Errorf("answers contain unknown values; see 'metadiag diagnose --help' for the accepted labels")
	}
	if err := model.ValidateAnswers(answers); err != nil {
		return err
	}

	eng, err := engine.New(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), diagTimeout)
	defer cancel()

	if cfg.Output.Verbose {
		fmt.Fprintf(os.Stderr, "Analyzing with engine %s...\n", eng.Name())
	}

	rep, err := eng.Analyze(ctx, answers)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	renderer := report.NewRenderer(cfg.Output.IncludeFooter)
	if diagOutJSON != "" {
		if err := renderer.RenderJSON(rep, answers, diagOutJSON); err != nil {
			return err
		}
		if cfg.Output.Verbose {
			fmt.Fprintf(os.Stderr, "Wrote JSON: %s\n", diagOutJSON)
		}
	}
	if diagOutMD != "" {
		if err := renderer.RenderMarkdown(rep, answers, diagOutMD); err != nil {
			return err
		}
		if cfg.Output.Verbose {
			fmt.Fprintf(os.Stderr, "Wrote Markdown: %s\n", diagOutMD)
		}
	}

	renderer.Summary(os.Stdout, rep)
	return nil
}

func toPainPoints(values []string) []model.PainPoint {
	points := make([]model.PainPoint, 0, len(values))
	for _, v := range values {
		points = append(points, model.PainPoint(v))
	}
	return points
}
