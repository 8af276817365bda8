// Package wizard drives the five-step questionnaire: step progression,
// validation, submission to the analysis engine, and write-through
// persistence of the full state after every mutation.
package wizard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/metalogic-lab/metadiag/internal/engine"
	"github.com/metalogic-lab/metadiag/internal/model"
	"github.com/metalogic-lab/metadiag/internal/store"
)

// ErrBusy rejects mutating calls while an analysis is in flight or the
// controller sits in the loading phase. The controller is not reentrant;
// concurrent writers are refused, never interleaved.
var ErrBusy = errors.New("analysis in progress")

// DefaultAnalysisTimeout bounds a submission before it fails as unavailable.
const DefaultAnalysisTimeout = 60 * time.Second

// Controller is the wizard state machine. All transitions run through it so
// validation stays centralized.
type Controller struct {
	mu       sync.Mutex
	state    model.WizardState
	report   *model.DiagnosisReport
	lastErr  error
	inFlight bool

	store   store.Store
	engine  engine.Engine
	timeout time.Duration
}

// Option configures a Controller.
type Option func(*Controller)

// WithTimeout overrides the analysis timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Controller) { c.timeout = d }
}

// NewController restores the persisted state (or the default) and wires the
// store and engine.
func NewController(s store.Store, e engine.Engine, opts ...Option) *Controller {
	c := &Controller{
		state:   s.Load(),
		store:   s,
		engine:  e,
		timeout: DefaultAnalysisTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns a copy of the current state.
func (c *Controller) State() model.WizardState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Clone()
}

// Report returns the report of the last successful submission, or nil.
func (c *Controller) Report() *model.DiagnosisReport {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.report
}

// LastError returns the failure of the most recent submission, or nil. A
// non-nil value with phase "loading" is the retryable error sub-state.
func (c *Controller) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// persistLocked write-through saves the full state. Caller holds the lock.
func (c *Controller) persistLocked() {
	c.store.Save(c.state.Clone())
}

// mutate applies fn to the draft and persists. Refused outside the form phase.
func (c *Controller) mutate(fn func(*model.Answers)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.inFlight || c.state.Phase == model.PhaseLoading {
		return ErrBusy
	}
	if c.state.Phase != model.PhaseForm {
		return fmt.Errorf("answers are frozen in phase %q", c.state.Phase)
	}

	fn(&c.state.Answers)
	c.persistLocked()
	return nil
}

// SetIndustry records the step-1 answer.
func (c *Controller) SetIndustry(v model.Industry) error {
	return c.mutate(func(a *model.Answers) { a.Industry = v })
}

// SetRevenueScale records the step-2 answer.
func (c *Controller) SetRevenueScale(v model.RevenueScale) error {
	return c.mutate(func(a *model.Answers) { a.RevenueScale = v })
}

// TogglePainPoint adds or removes a pain point; the set's order carries no
// meaning.
func (c *Controller) TogglePainPoint(p model.PainPoint) error {
	return c.mutate(func(a *model.Answers) {
		for i, got := range a.PainPoints {
			if got == p {
				a.PainPoints = append(a.PainPoints[:i], a.PainPoints[i+1:]...)
				return
			}
		}
		a.PainPoints = append(a.PainPoints, p)
	})
}

// SetOnlineRatio records the step-4 slider, clamped to 0..100.
func (c *Controller) SetOnlineRatio(ratio int) error {
	if ratio < 0 {
		ratio = 0
	}
	if ratio > 100 {
		ratio = 100
	}
	return c.mutate(func(a *model.Answers) { a.OnlineRatio = ratio })
}

// SetProfitTrend records the step-5 answer.
func (c *Controller) SetProfitTrend(v model.ProfitTrend) error {
	return c.mutate(func(a *model.Answers) { a.ProfitTrend = v })
}

// Advance moves to the next step if the current step's validator passes.
// At the final step it submits instead.
func (c *Controller) Advance(ctx context.Context) error {
	c.mu.Lock()
	if c.inFlight || c.state.Phase == model.PhaseLoading {
		c.mu.Unlock()
		return ErrBusy
	}
	if c.state.Phase != model.PhaseForm {
		phase := c.state.Phase
		c.mu.Unlock()
		return fmt.Errorf("cannot advance in phase %q", phase)
	}
	if err := model.ValidateStep(c.state.CurrentStep, c.state.Answers); err != nil {
		c.mu.Unlock()
		return err
	}
	if c.state.CurrentStep < model.TotalSteps {
		c.state.CurrentStep++
		c.persistLocked()
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	return c.Submit(ctx)
}

// Retreat moves one step back. A no-op at step 1, refused while loading.
func (c *Controller) Retreat() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.inFlight || c.state.Phase == model.PhaseLoading {
		return ErrBusy
	}
	if c.state.Phase != model.PhaseForm {
		return fmt.Errorf("cannot retreat in phase %q", c.state.Phase)
	}
	if c.state.CurrentStep <= model.FirstStep {
		return nil
	}
	c.state.CurrentStep--
	c.persistLocked()
	return nil
}

// Submit validates every step, freezes the answers, and runs the analysis
// engine. On failure the controller stays in the loading phase with the error
// retained; Retry re-runs the same snapshot.
func (c *Controller) Submit(ctx context.Context) error {
	c.mu.Lock()
	if c.inFlight {
		c.mu.Unlock()
		return ErrBusy
	}
	switch c.state.Phase {
	case model.PhaseForm, model.PhaseLoading:
	default:
		phase := c.state.Phase
		c.mu.Unlock()
		return fmt.Errorf("cannot submit in phase %q", phase)
	}
	if err := model.ValidateAnswers(c.state.Answers); err != nil {
		c.mu.Unlock()
		return err
	}

	c.inFlight = true
	c.lastErr = nil
	c.state.Phase = model.PhaseLoading
	snapshot := c.state.Answers.Clone()
	c.persistLocked()
	c.mu.Unlock()

	// The engine call is the only suspension point; the lock is released so
	// concurrent calls observe the loading phase and refuse.
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	report, err := c.engine.Analyze(ctx, snapshot)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.inFlight = false

	if err != nil {
		c.lastErr = err
		return err
	}

	c.report = report
	c.lastErr = nil
	c.state.Phase = model.PhaseResult
	c.persistLocked()
	return nil
}

// Retry re-runs a failed submission.
func (c *Controller) Retry(ctx context.Context) error {
	return c.Submit(ctx)
}

// Unlock reveals the detailed report. Valid only from the result phase; the
// payment itself is outside this module.
func (c *Controller) Unlock() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Phase != model.PhaseResult {
		return fmt.Errorf("cannot unlock in phase %q", c.state.Phase)
	}
	c.state.Phase = model.PhaseReport
	c.persistLocked()
	return nil
}

// BackToForm returns from the result or report view to the questionnaire,
// keeping the answers.
func (c *Controller) BackToForm() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.inFlight || c.state.Phase == model.PhaseLoading {
		return ErrBusy
	}
	if c.state.Phase == model.PhaseForm {
		return nil
	}
	c.state.Phase = model.PhaseForm
	c.persistLocked()
	return nil
}

// Restart resets to step 1 with empty answers from any state.
func (c *Controller) Restart() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.inFlight {
		return ErrBusy
	}
	c.state = model.DefaultWizardState()
	c.report = nil
	c.lastErr = nil
	c.persistLocked()
	return nil
}
