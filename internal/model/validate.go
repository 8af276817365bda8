package model

// ValidationError reports a required field missing at a wizard step. The
// message is the user-facing text shown next to the blocked transition.
type ValidationError struct {
	Step    int
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ValidateStep checks the requirement of a single step against the draft.
// Step 4 has no requirement: the online ratio always carries a default.
func ValidateStep(step int, a Answers) error {
	switch step {
	case 1:
		if a.Industry == "" {
			return &ValidationError{Step: 1, Field: "industry", Message: "请选择您的行业"}
		}
	case 2:
		if a.RevenueScale == "" {
			return &ValidationError{Step: 2, Field: "revenueScale", Message: "请选择您的营收规模"}
		}
	case 3:
		if len(a.PainPoints) == 0 {
			return &ValidationError{Step: 3, Field: "painPoints", Message: "请至少选择一个核心痛点"}
		}
	case 5:
		if a.ProfitTrend == "" {
			return &ValidationError{Step: 5, Field: "profitTrend", Message: "请选择您的利润趋势"}
		}
	}
	return nil
}

// ValidateAnswers checks all steps; submission requires every validator to pass.
func ValidateAnswers(a Answers) error {
	for step := FirstStep; step <= TotalSteps; step++ {
		if err := ValidateStep(step, a); err != nil {
			return err
		}
	}
	return nil
}
