package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/metalogic-lab/metadiag/internal/model"
)

// OpenAIEngine derives the report from a chat model. The response must parse
// into the exact report shape; anything else is an analysis failure, never a
// silent default.
type OpenAIEngine struct {
	client *openai.Client
	cfg    model.EngineConfig
}

// NewOpenAIEngine creates a model-backed engine.
func NewOpenAIEngine(cfg model.EngineConfig) (*OpenAIEngine, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	return &OpenAIEngine{
		client: openai.NewClientWithConfig(clientConfig),
		cfg:    cfg,
	}, nil
}

// Name returns the engine identifier including the model.
func (e *OpenAIEngine) Name() string {
	return "openai/" + e.model()
}

func (e *OpenAIEngine) model() string {
	if e.cfg.Model != "" {
		return e.cfg.Model
	}
	return openai.GPT4oMini
}

// aiPayload is the wire shape requested from the model. The impact field is a
// human-readable label ("-45% 营收潜力影响"); the signed percentage is parsed
// out of it.
type aiPayload struct {
	RiskScore     int `json:"riskScore"`
	CorePainPoint struct {
		Title       string `json:"title"`
		Impact      string `json:"impact"`
		Description string `json:"description"`
	} `json:"corePainPoint"`
	EconomicLoss             model.EconomicBreakdown `json:"economicLoss"`
	ImprovementOpportunities []string                `json:"improvementOpportunities"`
	LittlesLawAnalysis       string                  `json:"littlesLawAnalysis"`
	LeanProductionAnalysis   string                  `json:"leanProductionAnalysis"`
}

// Analyze sends the questionnaire to the model and parses the response back
// into the report contract.
func (e *OpenAIEngine) Analyze(ctx context.Context, answers model.Answers) (*model.DiagnosisReport, error) {
	timeout := e.cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	maxTokens := e.cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = 1200
	}

	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: e.model(),
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "你是一位制造业数字化转型专家，严格按照要求的 JSON 结构输出分析结果。",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: BuildPrompt(answers),
			},
		},
		MaxTokens:   maxTokens,
		Temperature: 0.3,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: chat completion: %v", ErrAnalysisUnavailable, err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: empty completion", ErrAnalysisUnavailable)
	}

	var payload aiPayload
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrAnalysisUnavailable, err)
	}

	report, err := payload.toReport(answers, e.Name())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAnalysisUnavailable, err)
	}
	return report, nil
}

var impactPattern = regexp.MustCompile(`[-+]?\d+`)

// parseImpact extracts the signed percentage from an impact label.
func parseImpact(impact string) (int, error) {
	match := impactPattern.FindString(impact)
	if match == "" {
		return 0, fmt.Errorf("no percentage in impact %q", impact)
	}
	return strconv.Atoi(match)
}

// toReport validates the payload against the report contract and fills in the
// locally derived benchmark.
func (p aiPayload) toReport(answers model.Answers, engineName string) (*model.DiagnosisReport, error) {
	if p.RiskScore < 0 || p.RiskScore > 100 {
		return nil, fmt.Errorf("risk score %d out of range", p.RiskScore)
	}
	if !p.EconomicLoss.Valid() {
		return nil, fmt.Errorf("economic breakdown sums to %d, want 100", p.EconomicLoss.Sum())
	}
	if len(p.ImprovementOpportunities) == 0 {
		return nil, fmt.Errorf("no improvement opportunities returned")
	}
	seen := make(map[string]bool, len(p.ImprovementOpportunities))
	for _, op := range p.ImprovementOpportunities {
		op = strings.TrimSpace(op)
		if op == "" || seen[op] {
			return nil, fmt.Errorf("improvement opportunities must be distinct and non-empty")
		}
		seen[op] = true
	}
	if p.CorePainPoint.Title == "" {
		return nil, fmt.Errorf("missing core pain point title")
	}

	impact, err := parseImpact(p.CorePainPoint.Impact)
	if err != nil {
		return nil, err
	}

	return &model.DiagnosisReport{
		RiskScore: p.RiskScore,
		RiskLevel: model.ClassifyRisk(p.RiskScore),
		CorePainPoint: model.CorePainPoint{
			Title:         p.CorePainPoint.Title,
			ImpactPercent: impact,
			Description:   p.CorePainPoint.Description,
		},
		EconomicLoss:  p.EconomicLoss,
		Opportunities: append([]string(nil), p.ImprovementOpportunities...),
		Benchmark: model.Benchmark{
			UserOnlineRatio:            answers.OnlineRatio,
			IndustryAverageOnlineRatio: model.IndustryAverageOnlineRatio,
		},
		LittlesLawAnalysis:     p.LittlesLawAnalysis,
		LeanProductionAnalysis: p.LeanProductionAnalysis,
		Engine:                 engineName,
		GeneratedAt:            time.Now().UTC(),
	}, nil
}
