// Package plan applies the file operations a batch run planned: moving
// auto-renamed documents into the output directory and copying flagged
// documents into the review directory with a pending-review note. It is
// the only layer that touches the filesystem; the pipeline itself stays
// pure.
package plan

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"renamer/internal/audit"
	"renamer/internal/logger"
	"renamer/pkg/models"
)

// ErrTargetExists is returned when a planned target path is already
// occupied. The executor never overwrites; the collision resolver should
// have made targets unique, so an occupied path means the directory
// changed between planning and execution.
var ErrTargetExists = errors.New("target path already exists")

// Result pairs a plan entry with its execution outcome.
type Result struct {
	Entry models.PlanEntry
	Err   error
}

// Executor applies a Plan to the filesystem.
type Executor struct {
	dryRun bool
	log    zerolog.Logger
}

// NewExecutor creates an executor. With dryRun set, Apply only logs what
// it would do.
func NewExecutor(dryRun bool) *Executor {
	return &Executor{
		dryRun: dryRun,
		log:    logger.WithComponent("executor"),
	}
}

// Apply executes the plan entries in order. Auto-renamed documents are
// moved to their target path; flagged documents are copied, leaving the
// source in place, and get a pending-review note next to the copy built
// from the matching audit record. A failing entry does not stop the
// remaining ones.
func (e *Executor) Apply(p *models.Plan, rep *audit.Report) []Result {
	records := make(map[string]models.AuditRecord, len(rep.Records))
	for _, rec := range rep.Records {
		records[rec.SourcePath] = rec
	}

	results := make([]Result, 0, len(p.Entries))
	for _, entry := range p.Entries {
		err := e.apply(entry, records[entry.SourcePath])
		if err != nil {
			e.log.Error().Err(err).
				Str("source", entry.SourcePath).
				Str("target", entry.TargetPath).
				Msg("Plan entry failed")
		}
		results = append(results, Result{Entry: entry, Err: err})
	}
	return results
}

func (e *Executor) apply(entry models.PlanEntry, record models.AuditRecord) error {
	if e.dryRun {
		e.log.Info().
			Str("source", entry.SourcePath).
			Str("target", entry.TargetPath).
			Str("decision", string(entry.Decision)).
			Msg("Dry run: would apply")
		return nil
	}

	if _, err := os.Stat(entry.TargetPath); err == nil {
		return fmt.Errorf("%w: %s", ErrTargetExists, entry.TargetPath)
	}
	if err := os.MkdirAll(filepath.Dir(entry.TargetPath), 0o755); err != nil {
		return fmt.Errorf("create target directory: %w", err)
	}

	switch entry.Decision {
	case models.DecisionAutoRenamed:
		if err := moveFile(entry.SourcePath, entry.TargetPath); err != nil {
			return err
		}
		e.log.Info().
			Str("source", entry.SourcePath).
			Str("target", entry.TargetPath).
			Msg("Document renamed")
		return nil

	case models.DecisionFlagged:
		if err := copyFile(entry.SourcePath, entry.TargetPath); err != nil {
			return err
		}
		notePath := strings.TrimSuffix(entry.TargetPath, filepath.Ext(entry.TargetPath)) + ".pending.md"
		if err := os.WriteFile(notePath, []byte(pendingNote(entry, record)), 0o644); err != nil {
			return fmt.Errorf("write review note: %w", err)
		}
		e.log.Info().
			Str("source", entry.SourcePath).
			Str("target", entry.TargetPath).
			Msg("Document flagged for review")
		return nil

	default:
		return fmt.Errorf("plan entry has non-executable decision %q", entry.Decision)
	}
}

// pendingNote renders the review dossier for a flagged document: the
// proposed name, the reason it was withheld, and every resolved field with
// its confidence so a reviewer can correct the weak ones.
func pendingNote(entry models.PlanEntry, record models.AuditRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Pending review: %s\n\n", filepath.Base(entry.TargetPath))
	fmt.Fprintf(&b, "- Source: %s\n", entry.SourcePath)
	fmt.Fprintf(&b, "- Proposed name: %s\n", record.Name.String())
	if record.Reason != "" {
		fmt.Fprintf(&b, "- Reason: %s\n", record.Reason)
	}
	if record.Context != nil {
		fmt.Fprintf(&b, "- Overall confidence: %.2f\n\n", record.Context.OverallConfidence)
		b.WriteString("| Field | Value | Confidence |\n|---|---|---|\n")
		for _, field := range models.KnownFields() {
			value, ok := record.Context.Values[field]
			if !ok {
				continue
			}
			fmt.Fprintf(&b, "| %s | %s | %.2f |\n", field, value, record.Context.Confidence(field))
		}
	}
	return b.String()
}

// moveFile renames source to target, falling back to copy-and-remove when
// the paths are on different filesystems.
func moveFile(source, target string) error {
	if err := os.Rename(source, target); err == nil {
		return nil
	}
	if err := copyFile(source, target); err != nil {
		return err
	}
	return os.Remove(source)
}

func copyFile(source, target string) error {
	in, err := os.Open(source)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer in.Close()

	out, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("create target: %w", err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copy: %w", err)
	}
	return out.Close()
}
