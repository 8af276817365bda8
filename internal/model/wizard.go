package model

// Phase is the coarse application mode, orthogonal to the step number.
type Phase string

const (
	PhaseForm    Phase = "form"
	PhaseLoading Phase = "loading"
	PhaseResult  Phase = "result"
	PhaseReport  Phase = "report"
)

const (
	// FirstStep is the wizard's initial step.
	FirstStep = 1
	// TotalSteps is the number of questionnaire steps.
	TotalSteps = 5
)

// WizardState is the single persisted snapshot of the questionnaire flow.
// The JSON layout (currentStep / formData / pageState) is the stable external
// shape; older or missing snapshots must decode to the default state.
type WizardState struct {
	CurrentStep int     `json:"currentStep"`
	Answers     Answers `json:"formData"`
	Phase       Phase   `json:"pageState"`
}

// DefaultWizardState is the first-visit state and the fallback for any
// snapshot that fails to decode or validate.
func DefaultWizardState() WizardState {
	return WizardState{
		CurrentStep: FirstStep,
		Answers:     EmptyAnswers(),
		Phase:       PhaseForm,
	}
}

// Clone returns a deep copy of the state.
func (s WizardState) Clone() WizardState {
	out := s
	out.Answers = s.Answers.Clone()
	return out
}

// Valid reports whether a decoded snapshot is usable. Anything out of range
// counts as corrupt and the caller falls back to DefaultWizardState.
func (s WizardState) Valid() bool {
	if s.CurrentStep < FirstStep || s.CurrentStep > TotalSteps {
		return false
	}
	switch s.Phase {
	case PhaseForm, PhaseLoading, PhaseResult, PhaseReport:
	default:
		return false
	}
	return s.Answers.Valid()
}
