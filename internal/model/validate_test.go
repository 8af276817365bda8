package model

import (
	"errors"
	"testing"
)

func completeAnswers() Answers {
	return Answers{
		Industry:     IndustryManufacturing,
		RevenueScale: Revenue10MTo50M,
		PainPoints:   []PainPoint{PainProfitDecline},
		OnlineRatio:  50,
		ProfitTrend:  TrendDeclining,
	}
}

func TestValidateStep_RequiredFields(t *testing.T) {
	tests := []struct {
		name    string
		step    int
		mutate  func(*Answers)
		message string
	}{
		{"step 1 requires industry", 1, func(a *Answers) { a.Industry = "" }, "请选择您的行业"},
		{"step 2 requires revenue scale", 2, func(a *Answers) { a.RevenueScale = "" }, "请选择您的营收规模"},
		{"step 3 requires a pain point", 3, func(a *Answers) { a.PainPoints = nil }, "请至少选择一个核心痛点"},
		{"step 5 requires profit trend", 5, func(a *Answers) { a.ProfitTrend = "" }, "请选择您的利润趋势"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			answers := completeAnswers()
			tt.mutate(&answers)

			err := ValidateStep(tt.step, answers)
			if err == nil {
				t.Fatal("Expected a validation error")
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Expected *ValidationError, got %T", err)
			}
			if verr.Step != tt.step {
				t.Errorf("Step = %d, want %d", verr.Step, tt.step)
			}
			if verr.Message != tt.message {
				t.Errorf("Message = %q, want %q", verr.Message, tt.message)
			}
		})
	}
}

func TestValidateStep_Step4AlwaysPasses(t *testing.T) {
	// The slider always carries a value, so step 4 has no requirement.
	if err := ValidateStep(4, Answers{}); err != nil {
		t.Errorf("Expected step 4 to pass on an empty draft, got %v", err)
	}
}

func TestValidateStep_CompleteAnswersPassEveryStep(t *testing.T) {
	answers := completeAnswers()
	for step := FirstStep; step <= TotalSteps; step++ {
		if err := ValidateStep(step, answers); err != nil {
			t.Errorf("Step %d: unexpected error %v", step, err)
		}
	}
}

func TestValidateAnswers_ReportsFirstFailingStep(t *testing.T) {
	answers := completeAnswers()
	answers.RevenueScale = ""
	answers.ProfitTrend = ""

	err := ValidateAnswers(answers)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Expected *ValidationError, got %v", err)
	}
	if verr.Step != 2 {
		t.Errorf("Expected the earliest failing step (2), got %d", verr.Step)
	}
}

func TestValidateAnswers_AcceptsCompleteDraft(t *testing.T) {
	if err := ValidateAnswers(completeAnswers()); err != nil {
		t.Errorf("Unexpected error: %v", err)
	}
}
