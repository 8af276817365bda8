// Package engine derives a DiagnosisReport from a frozen answers snapshot.
// Two implementations share the contract: a deterministic rule engine and an
// OpenAI-backed engine. Both are side-effect-free and idempotent for
// identical input.
package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/metalogic-lab/metadiag/internal/model"
)

// ErrAnalysisUnavailable marks any analysis that could not complete: timeout,
// transport failure, or a malformed model response. Callers must not
// substitute stale or partial data when they see it.
var ErrAnalysisUnavailable = errors.New("analysis unavailable")

// IsUnavailable reports whether err is an analysis-unavailable condition.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrAnalysisUnavailable)
}

// Engine is the analysis contract. Analyze receives a cloned snapshot and
// must either return a fully populated report or an error wrapping
// ErrAnalysisUnavailable.
type Engine interface {
	// Name identifies the implementation for report metadata.
	Name() string

	// Analyze derives a report from the answers.
	Analyze(ctx context.Context, answers model.Answers) (*model.DiagnosisReport, error)
}

// BuildPrompt encodes the questionnaire into the analysis prompt. The prompt
// asks for the six report fields and references the two analysis frameworks
// (Little's Law, lean-production waste model).
func BuildPrompt(a model.Answers) string {
	points := ""
	for i, p := range a.PainPoints {
		if i > 0 {
			points += "、"
		}
		points += string(p)
	}

	return fmt.Sprintf(`你是一位制造业数字化转型专家，请基于以下企业数据进行深度分析：

行业：%s
营收规模：%s
核心痛点：%s
线上渠道占比：%d%%
利润趋势：%s

请使用以下分析方法：
1. 利特尔法则（Little's Law）：分析生产系统中的库存、生产速率和生产周期关系
2. 精益生产损耗模型：识别企业中的各种损耗类型及其占比

请以 JSON 对象输出以下字段：
1. riskScore：风险评分（0-100 的整数）
2. corePainPoint：核心痛点分析对象，包含 title（标题）、impact（影响程度，如 "-45%% 营收潜力影响"）和 description（详细描述）
3. economicLoss：经济效益损失分析对象，包含 rawMaterials、logistics、efficiencyWaste、netProfit 四个整数百分比，总和必须为 100
4. improvementOpportunities：改进机会建议的字符串数组
5. littlesLawAnalysis：基于利特尔法则的详细分析
6. leanProductionAnalysis：基于精益生产损耗模型的详细分析

分析结果需要专业、具体、可操作，体现专家级的分析水平。`,
		a.Industry, a.RevenueScale, points, a.OnlineRatio, a.ProfitTrend)
}
