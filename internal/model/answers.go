package model

// Industry classifies the business sector chosen on step 1.
// Values are the product-facing labels and are stored verbatim.
type Industry string

const (
	IndustryManufacturing Industry = "制造业"
	IndustryRetail        Industry = "实体零售"
	IndustryTrade         Industry = "传统贸易"
	IndustryServices      Industry = "服务业"
)

// Industries lists all selectable industries in display order.
var Industries = []Industry{
	IndustryManufacturing,
	IndustryRetail,
	IndustryTrade,
	IndustryServices,
}

// RevenueScale buckets annual revenue (local-currency units).
type RevenueScale string

const (
	RevenueUnder10M  RevenueScale = "1000万以下"
	Revenue10MTo50M  RevenueScale = "1000万-5000万"
	Revenue50MTo200M RevenueScale = "5000万-2亿"
	RevenueOver200M  RevenueScale = "2亿以上"
)

// RevenueScales lists all selectable revenue buckets in display order.
var RevenueScales = []RevenueScale{
	RevenueUnder10M,
	Revenue10MTo50M,
	Revenue50MTo200M,
	RevenueOver200M,
}

// PainPoint identifies a self-reported business pain point (step 3, multi-select).
type PainPoint string

const (
	PainProfitDecline PainPoint = "利润下滑"
	PainAcquisition   PainPoint = "新客获取难"
	PainLaborCost     PainPoint = "人力成本激增"
	PainInventoryGlut PainPoint = "库存积压"
)

// PainPoints lists all selectable pain points in display order.
var PainPoints = []PainPoint{
	PainProfitDecline,
	PainAcquisition,
	PainLaborCost,
	PainInventoryGlut,
}

// ProfitTrend describes the profit direction over the last year (step 5).
type ProfitTrend string

const (
	TrendGrowing   ProfitTrend = "增长中"
	TrendFlat      ProfitTrend = "基本持平"
	TrendDeclining ProfitTrend = "下滑中"
)

// ProfitTrends lists all selectable trends in display order.
var ProfitTrends = []ProfitTrend{
	TrendGrowing,
	TrendFlat,
	TrendDeclining,
}

const (
	// DefaultOnlineRatio is the slider starting position on step 4.
	DefaultOnlineRatio = 50

	// IndustryAverageOnlineRatio is the benchmark shown next to the user's ratio.
	IndustryAverageOnlineRatio = 45
)

// Answers holds the questionnaire draft. The offline ratio is never stored;
// it is always derived as 100 - OnlineRatio.
type Answers struct {
	Industry     Industry     `json:"industry" yaml:"industry"`
	RevenueScale RevenueScale `json:"revenueScale" yaml:"revenueScale"`
	PainPoints   []PainPoint  `json:"painPoints" yaml:"painPoints"`
	OnlineRatio  int          `json:"onlineRatio" yaml:"onlineRatio"`
	ProfitTrend  ProfitTrend  `json:"profitTrend" yaml:"profitTrend"`
}

// EmptyAnswers returns the first-visit draft: nothing selected, slider at 50.
func EmptyAnswers() Answers {
	return Answers{
		PainPoints:  []PainPoint{},
		OnlineRatio: DefaultOnlineRatio,
	}
}

// Clone returns a deep copy. The engine always receives a clone so that later
// wizard mutations cannot race with an in-flight analysis.
func (a Answers) Clone() Answers {
	out := a
	out.PainPoints = make([]PainPoint, len(a.PainPoints))
	copy(out.PainPoints, a.PainPoints)
	return out
}

// HasPainPoint reports whether the pain point was selected.
func (a Answers) HasPainPoint(p PainPoint) bool {
	for _, got := range a.PainPoints {
		if got == p {
			return true
		}
	}
	return false
}

// OfflineRatio derives the offline share of sales.
func (a Answers) OfflineRatio() int {
	return 100 - a.OnlineRatio
}

// Valid reports whether the draft is structurally sound: every set field holds
// a known value and the ratio is within range. Unset fields are allowed here;
// completeness is checked by the step validators.
func (a Answers) Valid() bool {
	if a.OnlineRatio < 0 || a.OnlineRatio > 100 {
		return false
	}
	if a.Industry != "" && !knownIndustry(a.Industry) {
		return false
	}
	if a.RevenueScale != "" && !knownRevenueScale(a.RevenueScale) {
		return false
	}
	if a.ProfitTrend != "" && !knownProfitTrend(a.ProfitTrend) {
		return false
	}
	seen := make(map[PainPoint]bool, len(a.PainPoints))
	for _, p := range a.PainPoints {
		if !knownPainPoint(p) || seen[p] {
			return false
		}
		seen[p] = true
	}
	return true
}

func knownIndustry(v Industry) bool {
	for _, got := range Industries {
		if got == v {
			return true
		}
	}
	return false
}

func knownRevenueScale(v RevenueScale) bool {
	for _, got := range RevenueScales {
		if got == v {
			return true
		}
	}
	return false
}

func knownPainPoint(v PainPoint) bool {
	for _, got := range PainPoints {
		if got == v {
			return true
		}
	}
	return false
}

func knownProfitTrend(v ProfitTrend) bool {
	for _, got := range ProfitTrends {
		if got == v {
			return true
		}
	}
	return false
}
