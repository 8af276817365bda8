package engine

import (
	"context"
	"testing"
	"time"

	"github.com/metalogic-lab/metadiag/internal/model"
)

func baseAnswers() model.Answers {
	return model.Answers{
		Industry:     model.IndustryManufacturing,
		RevenueScale: model.Revenue10MTo50M,
		PainPoints:   []model.PainPoint{model.PainInventoryGlut},
		OnlineRatio:  50,
		ProfitTrend:  model.TrendGrowing,
	}
}

func TestRuleEngine_Analyze_BaselineScore(t *testing.T) {
	// No trigger fires: ratio in [20,80], trend not declining, no
	// profit-decline pain point. The score must be exactly the base 50.
	eng := NewRuleEngine(0)

	report, err := eng.Analyze(context.Background(), baseAnswers())
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if report.RiskScore != 50 {
		t.Errorf("Expected baseline risk score 50, got %d", report.RiskScore)
	}
	if report.RiskLevel != model.RiskMedium {
		t.Errorf("Expected medium risk, got %s", report.RiskLevel)
	}
	if report.CorePainPoint.Title != "库存管理不当" {
		t.Errorf("Expected default pain point, got %q", report.CorePainPoint.Title)
	}
	if report.CorePainPoint.ImpactPercent != -20 {
		t.Errorf("Expected impact -20, got %d", report.CorePainPoint.ImpactPercent)
	}
}

func TestRuleEngine_Analyze_ScoreCappedAt100(t *testing.T) {
	// All three triggers fire: raw 50+20+25+10 = 105, capped to 100.
	answers := model.Answers{
		Industry:     model.IndustryManufacturing,
		RevenueScale: model.Revenue10MTo50M,
		PainPoints:   []model.PainPoint{model.PainProfitDecline},
		OnlineRatio:  85,
		ProfitTrend:  model.TrendDeclining,
	}

	report, err := NewRuleEngine(0).Analyze(context.Background(), answers)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if report.RiskScore != 100 {
		t.Errorf("Expected capped score 100, got %d", report.RiskScore)
	}
	if report.RiskLevel != model.RiskHigh {
		t.Errorf("Expected high risk, got %s", report.RiskLevel)
	}
	if report.CorePainPoint.Title != "渠道依赖过度" {
		t.Errorf("Expected channel over-dependence narrative, got %q", report.CorePainPoint.Title)
	}
	if report.CorePainPoint.ImpactPercent != -45 {
		t.Errorf("Expected impact -45, got %d", report.CorePainPoint.ImpactPercent)
	}
}

func TestRuleEngine_RiskScore_Triggers(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*model.Answers)
		want    int
	}{
		{"high online ratio", func(a *model.Answers) { a.OnlineRatio = 81 }, 70},
		{"low online ratio", func(a *model.Answers) { a.OnlineRatio = 19 }, 70},
		{"boundary ratio 80 does not trigger", func(a *model.Answers) { a.OnlineRatio = 80 }, 50},
		{"boundary ratio 20 does not trigger", func(a *model.Answers) { a.OnlineRatio = 20 }, 50},
		{"declining profit", func(a *model.Answers) { a.ProfitTrend = model.TrendDeclining }, 75},
		{"profit decline pain point", func(a *model.Answers) {
			a.PainPoints = []model.PainPoint{model.PainProfitDecline}
		}, 60},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			answers := baseAnswers()
			tt.mutate(&answers)

			if got := riskScore(answers); got != tt.want {
				t.Errorf("riskScore = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestRuleEngine_RiskScore_AlwaysInRange(t *testing.T) {
	trends := []model.ProfitTrend{model.TrendGrowing, model.TrendFlat, model.TrendDeclining}
	pains := [][]model.PainPoint{
		{model.PainInventoryGlut},
		{model.PainProfitDecline},
		{model.PainProfitDecline, model.PainAcquisition, model.PainLaborCost, model.PainInventoryGlut},
	}

	for ratio := 0; ratio <= 100; ratio += 5 {
		for _, trend := range trends {
			for _, pp := range pains {
				answers := baseAnswers()
				answers.OnlineRatio = ratio
				answers.ProfitTrend = trend
				answers.PainPoints = pp

				score := riskScore(answers)
				if score < 0 || score > 100 {
					t.Fatalf("riskScore out of range: %d (ratio=%d trend=%s)", score, ratio, trend)
				}
			}
		}
	}
}

func TestRuleEngine_PainPointSelection_PriorityOrder(t *testing.T) {
	tests := []struct {
		name    string
		answers model.Answers
		want    string
		impact  int
	}{
		{
			name: "rule 1 beats rule 3 when both match",
			answers: model.Answers{
				OnlineRatio: 90,
				ProfitTrend: model.TrendDeclining,
				PainPoints:  []model.PainPoint{model.PainAcquisition},
			},
			want:   "渠道依赖过度",
			impact: -45,
		},
		{
			name: "rule 2 offline channel aging",
			answers: model.Answers{
				OnlineRatio: 10,
				ProfitTrend: model.TrendDeclining,
			},
			want:   "线下渠道老化",
			impact: -35,
		},
		{
			name: "rule 3 beats rule 4 when both match",
			answers: model.Answers{
				OnlineRatio: 50,
				PainPoints:  []model.PainPoint{model.PainLaborCost, model.PainAcquisition},
			},
			want:   "获客成本高",
			impact: -25,
		},
		{
			name: "rule 4 labor cost",
			answers: model.Answers{
				OnlineRatio: 50,
				PainPoints:  []model.PainPoint{model.PainLaborCost},
			},
			want:   "人力成本过高",
			impact: -30,
		},
		{
			name: "default rule when nothing else matches",
			answers: model.Answers{
				OnlineRatio: 50,
				ProfitTrend: model.TrendGrowing,
				PainPoints:  []model.PainPoint{model.PainInventoryGlut},
			},
			want:   "库存管理不当",
			impact: -20,
		},
		{
			name: "high ratio without declining profit falls through rule 1",
			answers: model.Answers{
				OnlineRatio: 90,
				ProfitTrend: model.TrendGrowing,
				PainPoints:  []model.PainPoint{model.PainInventoryGlut},
			},
			want:   "库存管理不当",
			impact: -20,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := selectPainPoint(tt.answers)
			if got.Title != tt.want {
				t.Errorf("selectPainPoint title = %q, want %q", got.Title, tt.want)
			}
			if got.ImpactPercent != tt.impact {
				t.Errorf("selectPainPoint impact = %d, want %d", got.ImpactPercent, tt.impact)
			}
			if got.Description == "" {
				t.Error("Expected a non-empty description")
			}
		})
	}
}

func TestRuleEngine_Analyze_ReportContract(t *testing.T) {
	answers := baseAnswers()
	answers.OnlineRatio = 85

	report, err := NewRuleEngine(0).Analyze(context.Background(), answers)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if !report.EconomicLoss.Valid() {
		t.Errorf("Economic breakdown sums to %d, want 100", report.EconomicLoss.Sum())
	}
	if len(report.Opportunities) != 4 {
		t.Errorf("Expected 4 opportunities, got %d", len(report.Opportunities))
	}
	seen := make(map[string]bool)
	for _, op := range report.Opportunities {
		if op == "" || seen[op] {
			t.Errorf("Opportunities must be distinct and non-empty: %q", op)
		}
		seen[op] = true
	}
	if report.Benchmark.UserOnlineRatio != 85 {
		t.Errorf("Benchmark user ratio = %d, want 85", report.Benchmark.UserOnlineRatio)
	}
	if report.Benchmark.IndustryAverageOnlineRatio != model.IndustryAverageOnlineRatio {
		t.Errorf("Benchmark industry average = %d, want %d",
			report.Benchmark.IndustryAverageOnlineRatio, model.IndustryAverageOnlineRatio)
	}
	if report.LittlesLawAnalysis == "" || report.LeanProductionAnalysis == "" {
		t.Error("Expected both framework narratives to be set")
	}
	if report.Engine != "rules" {
		t.Errorf("Engine = %q, want rules", report.Engine)
	}
}

func TestRuleEngine_Analyze_Deterministic(t *testing.T) {
	eng := NewRuleEngine(0)
	answers := baseAnswers()

	first, err := eng.Analyze(context.Background(), answers)
	if err != nil {
		t.Fatalf("First analyze failed: %v", err)
	}
	second, err := eng.Analyze(context.Background(), answers)
	if err != nil {
		t.Fatalf("Second analyze failed: %v", err)
	}

	if first.RiskScore != second.RiskScore ||
		first.CorePainPoint != second.CorePainPoint ||
		first.EconomicLoss != second.EconomicLoss {
		t.Error("Expected identical input to produce an identical report")
	}
}

func TestRuleEngine_Analyze_ContextCancelledDuringDelay(t *testing.T) {
	eng := NewRuleEngine(time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := eng.Analyze(ctx, baseAnswers())
	if err == nil {
		t.Fatal("Expected error when context expires during the simulated delay")
	}
	if !IsUnavailable(err) {
		t.Errorf("Expected analysis-unavailable error, got %v", err)
	}
}
