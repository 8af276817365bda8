package cli

import (
	"bufio"
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/metalogic-lab/metadiag/internal/engine"
	"github.com/metalogic-lab/metadiag/internal/model"
	"github.com/metalogic-lab/metadiag/internal/report"
	"github.com/metalogic-lab/metadiag/internal/store"
	"github.com/metalogic-lab/metadiag/internal/wizard"
)

func resumedSession(t *testing.T, state model.WizardState, input string) (*wizardSession, *bytes.Buffer) {
	t.Helper()

	st := store.NewMemoryStore()
	st.Save(state)

	var out bytes.Buffer
	return &wizardSession{
		ctrl:     wizard.NewController(st, engine.NewRuleEngine(0)),
		renderer: report.NewRenderer(false),
		in:       bufio.NewScanner(strings.NewReader(input)),
		out:      &out,
		outDir:   t.TempDir(),
	}, &out
}

func completedState(phase model.Phase) model.WizardState {
	return model.WizardState{
		CurrentStep: 5,
		Answers: model.Answers{
			Industry:     model.IndustryManufacturing,
			RevenueScale: model.Revenue10MTo50M,
			PainPoints:   []model.PainPoint{model.PainProfitDecline},
			OnlineRatio:  85,
			ProfitTrend:  model.TrendDeclining,
		},
		Phase: phase,
	}
}

func TestWizardSession_ResumedResultPhaseWithoutReport(t *testing.T) {
	// A session quit after a successful analysis persists phase "result", but
	// the report itself is never persisted. Resuming must fall back to the
	// form instead of rendering a missing report.
	session, out := resumedSession(t, completedState(model.PhaseResult), "q\n")

	if err := session.run(context.Background()); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if !strings.Contains(out.String(), "报告需要重新生成") {
		t.Error("Expected the regenerate notice for a resumed result phase")
	}

	state := session.ctrl.State()
	if state.Phase != model.PhaseForm {
		t.Errorf("Phase = %s, want form", state.Phase)
	}
	if state.CurrentStep != 5 {
		t.Errorf("Step = %d, want 5", state.CurrentStep)
	}
	if state.Answers.Industry != model.IndustryManufacturing {
		t.Error("Resumed answers were lost")
	}
}

func TestWizardSession_ResumedReportPhaseWithoutReport(t *testing.T) {
	session, out := resumedSession(t, completedState(model.PhaseReport), "q\n")

	if err := session.run(context.Background()); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if !strings.Contains(out.String(), "报告需要重新生成") {
		t.Error("Expected the regenerate notice for a resumed report phase")
	}
	if session.ctrl.State().Phase != model.PhaseForm {
		t.Errorf("Phase = %s, want form", session.ctrl.State().Phase)
	}
}
