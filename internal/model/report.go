package model

import "time"

// RiskLevel classifies the composite risk score. The rule set's base score of
// 50 means no low tier is ever produced; this matches the product behavior
// and is deliberate.
type RiskLevel string

const (
	RiskHigh   RiskLevel = "high"
	RiskMedium RiskLevel = "medium"
)

// HighRiskThreshold is the boundary above which a score counts as high risk.
const HighRiskThreshold = 70

// ClassifyRisk maps a 0-100 score to its risk level.
func ClassifyRisk(score int) RiskLevel {
	if score > HighRiskThreshold {
		return RiskHigh
	}
	return RiskMedium
}

// CorePainPoint is the single highest-priority narrative headlining the report.
type CorePainPoint struct {
	Title         string `json:"title"`
	ImpactPercent int    `json:"impactPercent"`
	Description   string `json:"description"`
}

// EconomicBreakdown allocates revenue across cost categories and net profit,
// in integer percentages.
type EconomicBreakdown struct {
	RawMaterials    int `json:"rawMaterials"`
	Logistics       int `json:"logistics"`
	EfficiencyWaste int `json:"efficiencyWaste"`
	NetProfit       int `json:"netProfit"`
}

// Sum returns the total allocation.
func (b EconomicBreakdown) Sum() int {
	return b.RawMaterials + b.Logistics + b.EfficiencyWaste + b.NetProfit
}

// Valid reports whether the allocation covers exactly 100% of revenue.
func (b EconomicBreakdown) Valid() bool {
	return b.Sum() == 100
}

// Benchmark compares the user's online-sales ratio to the industry average.
type Benchmark struct {
	UserOnlineRatio            int `json:"userOnlineRatio"`
	IndustryAverageOnlineRatio int `json:"industryAverageOnlineRatio"`
}

// DiagnosisReport is the immutable output of one analysis run. A new
// submission produces a new report and discards the previous one.
type DiagnosisReport struct {
	RiskScore     int               `json:"riskScore"`
	RiskLevel     RiskLevel         `json:"riskLevel"`
	CorePainPoint CorePainPoint     `json:"corePainPoint"`
	EconomicLoss  EconomicBreakdown `json:"economicLoss"`
	Opportunities []string          `json:"improvementOpportunities"`
	Benchmark     Benchmark         `json:"benchmark"`

	// The two framework narratives requested from the analysis model.
	LittlesLawAnalysis     string `json:"littlesLawAnalysis,omitempty"`
	LeanProductionAnalysis string `json:"leanProductionAnalysis,omitempty"`

	Engine      string    `json:"engine,omitempty"`
	GeneratedAt time.Time `json:"generatedAt"`
}
