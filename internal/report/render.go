// Package report renders a finished diagnosis to JSON, Markdown, and the
// terminal. It consumes the report and the original answers and mutates
// neither.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/metalogic-lab/metadiag/internal/model"
)

// Renderer writes diagnosis output.
type Renderer struct {
	includeFooter bool
}

// NewRenderer creates a renderer.
func NewRenderer(includeFooter bool) *Renderer {
	return &Renderer{includeFooter: includeFooter}
}

// envelope pairs the report with the answers it was derived from.
type envelope struct {
	Answers model.Answers          `json:"answers"`
	Report  *model.DiagnosisReport `json:"report"`
}

// RenderJSON writes the report and answers as a single JSON document.
func (r *Renderer) RenderJSON(rep *model.DiagnosisReport, answers model.Answers, path string) error {
	data, err := json.MarshalIndent(envelope{Answers: answers, Report: rep}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// RenderMarkdown writes the full human-readable report.
func (r *Renderer) RenderMarkdown(rep *model.DiagnosisReport, answers model.Answers, path string) error {
	var b strings.Builder

	b.WriteString("# 元逻辑诊断报告\n\n")

	b.WriteString("## 企业画像\n\n")
	fmt.Fprintf(&b, "- 行业：%s\n", answers.Industry)
	fmt.Fprintf(&b, "- 营收规模：%s\n", answers.RevenueScale)
	fmt.Fprintf(&b, "- 核心痛点：%s\n", joinPainPoints(answers.PainPoints))
	fmt.Fprintf(&b, "- 线上渠道占比：%d%%（线下 %d%%）\n", answers.OnlineRatio, answers.OfflineRatio())
	fmt.Fprintf(&b, "- 利润趋势：%s\n\n", answers.ProfitTrend)

	b.WriteString("## 危险指数\n\n")
	fmt.Fprintf(&b, "**%d 分** — %s\n\n", rep.RiskScore, riskMessage(rep.RiskLevel))

	b.WriteString("## 核心痛点分析\n\n")
	fmt.Fprintf(&b, "### %s（%d%% 影响）\n\n%s\n\n",
		rep.CorePainPoint.Title, rep.CorePainPoint.ImpactPercent, rep.CorePainPoint.Description)

	b.WriteString("## 行业对比\n\n")
	fmt.Fprintf(&b, "| 指标 | 数值 |\n|---|---|\n| 您的线上占比 | %d%% |\n| 行业平均 | %d%% |\n\n",
		rep.Benchmark.UserOnlineRatio, rep.Benchmark.IndustryAverageOnlineRatio)

	b.WriteString("## 经济效益损失分析\n\n")
	fmt.Fprintf(&b, "| 类别 | 占比 |\n|---|---|\n")
	fmt.Fprintf(&b, "| 原材料 | %d%% |\n", rep.EconomicLoss.RawMaterials)
	fmt.Fprintf(&b, "| 物流 | %d%% |\n", rep.EconomicLoss.Logistics)
	fmt.Fprintf(&b, "| 效率浪费 | %d%% |\n", rep.EconomicLoss.EfficiencyWaste)
	fmt.Fprintf(&b, "| 净利润 | %d%% |\n\n", rep.EconomicLoss.NetProfit)

	b.WriteString("## 改进机会\n\n")
	for i, op := range rep.Opportunities {
		fmt.Fprintf(&b, "%d. %s\n", i+1, op)
	}
	b.WriteString("\n")

	if rep.LittlesLawAnalysis != "" || rep.LeanProductionAnalysis != "" {
		b.WriteString("## 深度分析\n\n")
		if rep.LittlesLawAnalysis != "" {
			fmt.Fprintf(&b, "### 利特尔法则\n\n%s\n\n", rep.LittlesLawAnalysis)
		}
		if rep.LeanProductionAnalysis != "" {
			fmt.Fprintf(&b, "### 精益生产损耗模型\n\n%s\n\n", rep.LeanProductionAnalysis)
		}
	}

	if r.includeFooter {
		fmt.Fprintf(&b, "---\n\n*Generated by metadiag (%s) at %s*\n",
			rep.Engine, rep.GeneratedAt.Format("2006-01-02 15:04:05 UTC"))
	}

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write markdown: %w", err)
	}
	return nil
}

// Summary prints the short result view shown before unlocking.
func (r *Renderer) Summary(w io.Writer, rep *model.DiagnosisReport) {
	fmt.Fprintf(w, "\n危险指数: %d分 (%s)\n", rep.RiskScore, riskMessage(rep.RiskLevel))
	fmt.Fprintf(w, "核心痛点: %s (%d%% 影响)\n", rep.CorePainPoint.Title, rep.CorePainPoint.ImpactPercent)
	fmt.Fprintf(w, "  %s\n", rep.CorePainPoint.Description)
	fmt.Fprintf(w, "行业对比: 您的线上占比 %d%% / 行业平均 %d%%\n",
		rep.Benchmark.UserOnlineRatio, rep.Benchmark.IndustryAverageOnlineRatio)
}

func riskMessage(level model.RiskLevel) string {
	if level == model.RiskHigh {
		return "高风险：企业面临严重挑战，需要立即采取行动"
	}
	return "中等风险：企业存在一定问题，需要关注并优化"
}

func joinPainPoints(points []model.PainPoint) string {
	parts := make([]string, len(points))
	for i, p := range points {
		parts[i] = string(p)
	}
	return strings.Join(parts, "、")
}
