package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/metalogic-lab/metadiag/internal/model"
)

// RuleEngine is the deterministic analysis engine. Its rule set is the
// documented contract a model-backed engine must honor.
type RuleEngine struct {
	// delay simulates remote-call latency. Zero means immediate.
	delay time.Duration
}

// NewRuleEngine creates a rule engine with the given simulated latency.
func NewRuleEngine(delay time.Duration) *RuleEngine {
	return &RuleEngine{delay: delay}
}

// Name returns the engine identifier.
func (e *RuleEngine) Name() string {
	return "rules"
}

// painRule pairs a predicate with the narrative it selects. Rules are
// evaluated in priority order and the first match wins; the final rule always
// matches, making selection a total function.
type painRule struct {
	match  func(model.Answers) bool
	result model.CorePainPoint
}

var painRules = []painRule{
	{
		match: func(a model.Answers) bool {
			return a.OnlineRatio > 80 && a.ProfitTrend == model.TrendDeclining
		},
		result: model.CorePainPoint{
			Title:         "渠道依赖过度",
			ImpactPercent: -45,
			Description:   "过度依赖线上渠道导致抗风险能力弱，一旦平台政策变化或竞争加剧，将严重影响营收。",
		},
	},
	{
		match: func(a model.Answers) bool {
			return a.OnlineRatio < 20 && a.ProfitTrend == model.TrendDeclining
		},
		result: model.CorePainPoint{
			Title:         "线下渠道老化",
			ImpactPercent: -35,
			Description:   "过度依赖线下渠道导致无法触达更广泛的消费者群体，增长空间受限。",
		},
	},
	{
		match: func(a model.Answers) bool {
			return a.HasPainPoint(model.PainAcquisition)
		},
		result: model.CorePainPoint{
			Title:         "获客成本高",
			ImpactPercent: -25,
			Description:   "新客获取成本持续上升，导致营销投入产出比下降，挤压利润空间。",
		},
	},
	{
		match: func(a model.Answers) bool {
			return a.HasPainPoint(model.PainLaborCost)
		},
		result: model.CorePainPoint{
			Title:         "人力成本过高",
			ImpactPercent: -30,
			Description:   "人力成本占比过大，影响企业盈利能力，需要通过数字化手段优化。",
		},
	},
	{
		match: func(model.Answers) bool { return true },
		result: model.CorePainPoint{
			Title:         "库存管理不当",
			ImpactPercent: -20,
			Description:   "库存积压导致资金占用增加，降低企业运营效率。",
		},
	},
}

// defaultOpportunities is the fixed recommendation list of the rule engine.
var defaultOpportunities = []string{
	"优化供应链管理，降低原材料成本",
	"建立多渠道销售网络，减少对单一渠道的依赖",
	"引入数字化工具，提高生产效率",
	"优化库存管理，减少库存积压",
}

const (
	littlesLawNarrative = "根据利特尔法则（L = λW），生产系统中的平均库存（L）等于平均生产速率（λ）乘以平均生产周期（W）。通过数字化转型，可以减少生产周期（W），从而降低库存水平，提高资金周转率。"

	leanProductionNarrative = "基于精益生产损耗模型，企业存在以下损耗：过度生产（15%）、等待时间（10%）、运输（8%）、过度加工（7%）、库存（12%）、动作（5%）、缺陷（3%）。数字化转型可以减少这些损耗，提高整体效率。"
)

// Analyze evaluates the rule set against the snapshot.
func (e *RuleEngine) Analyze(ctx context.Context, answers model.Answers) (*model.DiagnosisReport, error) {
	if e.delay > 0 {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", ErrAnalysisUnavailable, ctx.Err())
		case <-time.After(e.delay):
		}
	} else if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAnalysisUnavailable, err)
	}

	score := riskScore(answers)

	report := &model.DiagnosisReport{
		RiskScore:     score,
		RiskLevel:     model.ClassifyRisk(score),
		CorePainPoint: selectPainPoint(answers),
		EconomicLoss: model.EconomicBreakdown{
			RawMaterials:    35,
			Logistics:       20,
			EfficiencyWaste: 30,
			NetProfit:       15,
		},
		Opportunities: append([]string(nil), defaultOpportunities...),
		Benchmark: model.Benchmark{
			UserOnlineRatio:            answers.OnlineRatio,
			IndustryAverageOnlineRatio: model.IndustryAverageOnlineRatio,
		},
		LittlesLawAnalysis:     littlesLawNarrative,
		LeanProductionAnalysis: leanProductionNarrative,
		Engine:                 e.Name(),
		GeneratedAt:            time.Now().UTC(),
	}
	return report, nil
}

// riskScore implements the additive scoring rule: base 50, +20 for channel
// concentration (ratio above 80 or below 20), +25 for declining profit,
// +10 for a self-reported profit-decline pain point, capped at 100.
func riskScore(a model.Answers) int {
	score := 50

	if a.OnlineRatio > 80 || a.OnlineRatio < 20 {
		score += 20
	}
	if a.ProfitTrend == model.TrendDeclining {
		score += 25
	}
	if a.HasPainPoint(model.PainProfitDecline) {
		score += 10
	}

	if score > 100 {
		score = 100
	}
	return score
}

// selectPainPoint returns the first matching narrative in priority order.
func selectPainPoint(a model.Answers) model.CorePainPoint {
	for _, rule := range painRules {
		if rule.match(a) {
			return rule.result
		}
	}
	// Unreachable: the last rule always matches.
	return painRules[len(painRules)-1].result
}
