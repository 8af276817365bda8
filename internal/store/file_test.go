package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/metalogic-lab/metadiag/internal/model"
)

func savedState() model.WizardState {
	return model.WizardState{
		CurrentStep: 3,
		Answers: model.Answers{
			Industry:     model.IndustryManufacturing,
			RevenueScale: model.Revenue10MTo50M,
			PainPoints:   []model.PainPoint{model.PainProfitDecline},
			OnlineRatio:  70,
			ProfitTrend:  model.TrendDeclining,
		},
		Phase: model.PhaseForm,
	}
}

func TestFileStore_RoundTrip(t *testing.T) {
	s := NewFileStore(t.TempDir())
	want := savedState()

	s.Save(want)
	got := s.Load()

	if got.CurrentStep != want.CurrentStep || got.Phase != want.Phase {
		t.Errorf("Loaded state %+v, want %+v", got, want)
	}
	if got.Answers.Industry != want.Answers.Industry ||
		got.Answers.OnlineRatio != want.Answers.OnlineRatio {
		t.Errorf("Loaded answers %+v, want %+v", got.Answers, want.Answers)
	}
}

func TestFileStore_LoadMissingFileReturnsDefault(t *testing.T) {
	s := NewFileStore(t.TempDir())

	got := s.Load()
	def := model.DefaultWizardState()

	if got.CurrentStep != def.CurrentStep || got.Phase != def.Phase {
		t.Errorf("Expected default state, got %+v", got)
	}
}

func TestFileStore_LoadCorruptFileReturnsDefault(t *testing.T) {
	dir := t.TempDir()
	s := NewFileStore(dir)

	if err := os.WriteFile(s.Path(), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("Failed to seed corrupt snapshot: %v", err)
	}

	got := s.Load()
	if got.CurrentStep != model.FirstStep || got.Phase != model.PhaseForm {
		t.Errorf("Expected reset to default, got %+v", got)
	}
}

func TestFileStore_LoadInvalidStructureReturnsDefault(t *testing.T) {
	dir := t.TempDir()
	s := NewFileStore(dir)

	// Valid JSON, invalid state: step out of range.
	bad := map[string]any{"currentStep": 42, "pageState": "form"}
	data, _ := json.Marshal(bad)
	if err := os.WriteFile(s.Path(), data, 0o644); err != nil {
		t.Fatalf("Failed to seed invalid snapshot: %v", err)
	}

	got := s.Load()
	if got.CurrentStep != model.FirstStep {
		t.Errorf("Expected reset to step %d, got %d", model.FirstStep, got.CurrentStep)
	}
}

func TestFileStore_SaveCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "state")
	s := NewFileStore(dir)

	s.Save(savedState())

	if _, err := os.Stat(s.Path()); err != nil {
		t.Errorf("Expected snapshot file to exist: %v", err)
	}
}

func TestFileStore_SaveFailureDoesNotPanic(t *testing.T) {
	// Point the store at a path whose parent is a regular file so MkdirAll
	// fails. Save must swallow the error.
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatalf("Failed to create blocker file: %v", err)
	}

	s := NewFileStore(filepath.Join(blocker, "sub"))
	s.Save(savedState())
}

func TestFileStore_Clear(t *testing.T) {
	s := NewFileStore(t.TempDir())
	s.Save(savedState())

	s.Clear()

	if _, err := os.Stat(s.Path()); !os.IsNotExist(err) {
		t.Error("Expected snapshot file to be removed")
	}

	// Clearing an already-empty store is a no-op.
	s.Clear()
}

func TestFileStore_PathUsesSnapshotKey(t *testing.T) {
	dir := t.TempDir()
	s := NewFileStore(dir)

	want := filepath.Join(dir, SnapshotKey+".json")
	if s.Path() != want {
		t.Errorf("Path = %s, want %s", s.Path(), want)
	}
}
