package plan

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"renamer/internal/audit"
	"renamer/pkg/models"
)

func writeSource(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("scanned bytes"), 0o644); err != nil {
		t.Fatalf("write source file: %v", err)
	}
	return path
}

func testPlanAndReport(t *testing.T, root string) (*models.Plan, *audit.Report) {
	t.Helper()
	autoSource := writeSource(t, root, "a.pdf")
	flaggedSource := writeSource(t, root, "b.pdf")

	plan := &models.Plan{Entries: []models.PlanEntry{
		{
			SourcePath: autoSource,
			TargetPath: filepath.Join(root, "renamed", "contrato_123.pdf"),
			Decision:   models.DecisionAutoRenamed,
		},
		{
			SourcePath: flaggedSource,
			TargetPath: filepath.Join(root, "pendentes", "unknown.pdf"),
			Decision:   models.DecisionFlagged,
		},
	}}

	recorder := audit.NewRecorder()
	recorder.Append(models.AuditRecord{
		DocumentID: "doc-1",
		SourcePath: autoSource,
		Name:       models.CanonicalName{Base: "contrato_123", Ext: ".pdf"},
		Decision:   models.DecisionAutoRenamed,
	})
	recorder.Append(models.AuditRecord{
		DocumentID: "doc-2",
		SourcePath: flaggedSource,
		Name:       models.CanonicalName{Base: "unknown", Ext: ".pdf"},
		Decision:   models.DecisionFlagged,
		Reason:     "confidence 0.00 below auto threshold 0.70",
		Context: &models.DocumentContext{
			DocumentID:      "doc-2",
			Values:          map[models.Field]string{models.FieldReference: models.UnknownValue},
			FieldConfidence: map[models.Field]float64{models.FieldReference: 0.0},
		},
	})
	return plan, recorder.Finalize()
}

func TestApplyMovesAndCopies(t *testing.T) {
	root := t.TempDir()
	plan, report := testPlanAndReport(t, root)

	results := NewExecutor(false).Apply(plan, report)
	for _, res := range results {
		if res.Err != nil {
			t.Fatalf("entry %s failed: %v", res.Entry.SourcePath, res.Err)
		}
	}

	// Auto-renamed: moved, source gone.
	if _, err := os.Stat(plan.Entries[0].TargetPath); err != nil {
		t.Errorf("renamed target missing: %v", err)
	}
	if _, err := os.Stat(plan.Entries[0].SourcePath); !os.IsNotExist(err) {
		t.Errorf("renamed source still present (err=%v)", err)
	}

	// Flagged: copied, source stays.
	if _, err := os.Stat(plan.Entries[1].TargetPath); err != nil {
		t.Errorf("flagged copy missing: %v", err)
	}
	if _, err := os.Stat(plan.Entries[1].SourcePath); err != nil {
		t.Errorf("flagged source was removed: %v", err)
	}

	note, err := os.ReadFile(filepath.Join(root, "pendentes", "unknown.pending.md"))
	if err != nil {
		t.Fatalf("pending note missing: %v", err)
	}
	for _, want := range []string{"unknown.pdf", "confidence 0.00 below auto threshold", "UNKNOWN"} {
		if !strings.Contains(string(note), want) {
			t.Errorf("pending note lacks %q:\n%s", want, note)
		}
	}
}

func TestApplyDryRunTouchesNothing(t *testing.T) {
	root := t.TempDir()
	plan, report := testPlanAndReport(t, root)

	results := NewExecutor(true).Apply(plan, report)
	for _, res := range results {
		if res.Err != nil {
			t.Fatalf("dry-run entry failed: %v", res.Err)
		}
	}

	for _, entry := range plan.Entries {
		if _, err := os.Stat(entry.TargetPath); !os.IsNotExist(err) {
			t.Errorf("dry run created %s (err=%v)", entry.TargetPath, err)
		}
		if _, err := os.Stat(entry.SourcePath); err != nil {
			t.Errorf("dry run disturbed source %s: %v", entry.SourcePath, err)
		}
	}
}

func TestApplyRefusesToOverwrite(t *testing.T) {
	root := t.TempDir()
	plan, report := testPlanAndReport(t, root)

	if err := os.MkdirAll(filepath.Dir(plan.Entries[0].TargetPath), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(plan.Entries[0].TargetPath, []byte("occupied"), 0o644); err != nil {
		t.Fatal(err)
	}

	results := NewExecutor(false).Apply(plan, report)
	if !errors.Is(results[0].Err, ErrTargetExists) {
		t.Errorf("error = %v, want ErrTargetExists", results[0].Err)
	}

	// The occupant is untouched and the source survives.
	data, err := os.ReadFile(plan.Entries[0].TargetPath)
	if err != nil || string(data) != "occupied" {
		t.Errorf("occupant changed: %q, %v", data, err)
	}
	if _, err := os.Stat(plan.Entries[0].SourcePath); err != nil {
		t.Errorf("source was disturbed: %v", err)
	}

	// The independent flagged entry still went through.
	if results[1].Err != nil {
		t.Errorf("flagged entry failed alongside: %v", results[1].Err)
	}
}
