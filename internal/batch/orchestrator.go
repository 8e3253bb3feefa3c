// Package batch drives the document interpretation pipeline over a batch
// of files: OCR through the worker pool, the pure interpretation stages,
// then the serialized collision-resolution and audit stage, producing a
// rename plan without touching any file itself.
package batch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"renamer/internal/audit"
	"renamer/internal/extract"
	"renamer/internal/logger"
	"renamer/internal/naming"
	"renamer/internal/normalize"
	"renamer/internal/ocr"
	"renamer/internal/resolve"
	"renamer/pkg/models"
)

// State tracks a document's progress through the pipeline.
type State string

const (
	StateReceived   State = "RECEIVED"
	StateNormalized State = "NORMALIZED"
	StateExtracted  State = "EXTRACTED"
	StateResolved   State = "RESOLVED"
	StateNamed      State = "NAMED"
)

// DefaultWorkers bounds concurrent in-flight OCR calls when the caller
// does not configure a pool size. OCR latency dominates the pipeline;
// everything after it is cheap and pure.
const DefaultWorkers = 4

// Options configures one batch run.
type Options struct {
	// Workers bounds concurrent OCR calls. Zero means DefaultWorkers.
	Workers int

	// OutDir is where auto-renamed documents will be placed by the
	// executing layer.
	OutDir string

	// ReviewDir is where flagged documents will be placed for review.
	ReviewDir string
}

// Orchestrator wires the pipeline components for one batch invocation.
// The naming policy and the assigned-name set live only as long as a
// single Run.
type Orchestrator struct {
	provider ocr.Provider
	registry *extract.Registry
	policy   naming.Policy
	opts     Options
	log      zerolog.Logger
}

// New builds an orchestrator. The policy must already be validated:
// configuration errors abort before any document is processed.
func New(provider ocr.Provider, registry *extract.Registry, policy naming.Policy, opts Options) *Orchestrator {
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	return &Orchestrator{
		provider: provider,
		registry: registry,
		policy:   policy,
		opts:     opts,
		log:      logger.WithComponent("orchestrator"),
	}
}

// interpretation is the per-document outcome of the parallel phase, before
// the serialized decision stage.
type interpretation struct {
	index      int
	path       string
	documentID string
	engine     string
	rawText    string
	state      State
	context    *models.DocumentContext
	candidate  models.CanonicalName
	failReason string
}

// Run processes paths in their given order and returns the operation plan
// plus the audit report. existingNames seeds the collision resolver with
// names already present in the target directory.
//
// Per-document failures (OCR outages, timeouts) are recorded and the batch
// continues; only context cancellation stops the run, marking every
// undecided document FAILED with a batch-aborted reason. Documents already
// decided keep their decision: renames are terminal.
func (o *Orchestrator) Run(ctx context.Context, paths []string, existingNames []string) (*models.Plan, *audit.Report, error) {
	o.log.Info().
		Int("documents", len(paths)).
		Int("workers", o.opts.Workers).
		Str("template", o.policy.Template).
		Msg("Starting batch run")

	results := o.interpretAll(ctx, paths)

	recorder := audit.NewRecorder()
	collisions := naming.NewCollisionResolver(existingNames, o.policy.SuffixLimit)
	plan := &models.Plan{}

	// Input order is re-imposed here so reruns assign identical names,
	// suffixes included.
	for _, res := range results {
		record := models.AuditRecord{
			DocumentID:  res.documentID,
			SourcePath:  res.path,
			Engine:      res.engine,
			RawText:     res.rawText,
			Context:     res.context,
			ProcessedAt: time.Now(),
		}

		if err := ctx.Err(); err != nil && res.failReason == "" && res.state != StateNamed {
			res.failReason = fmt.Sprintf("batch aborted: %v", err)
		}

		dlog := logger.WithDocument(res.documentID)

		if res.failReason != "" {
			record.Decision = models.DecisionFailed
			record.Reason = res.failReason
			recorder.Append(record)
			dlog.Warn().Str("file", res.path).Str("reason", res.failReason).Msg("Document failed")
			continue
		}

		decision, reason := o.decide(res.context)
		if decision == models.DecisionFailed {
			record.Decision = models.DecisionFailed
			record.Reason = reason
			recorder.Append(record)
			continue
		}

		assigned, err := collisions.Assign(res.candidate)
		if err != nil {
			record.Decision = models.DecisionFailed
			record.Reason = err.Error()
			recorder.Append(record)
			dlog.Error().Err(err).Str("file", res.path).Msg("Collision resolution failed")
			continue
		}

		record.Name = assigned
		record.Decision = decision
		record.Reason = reason
		recorder.Append(record)

		targetDir := o.opts.OutDir
		if decision == models.DecisionFlagged {
			targetDir = o.opts.ReviewDir
		}
		plan.Entries = append(plan.Entries, models.PlanEntry{
			SourcePath: res.path,
			TargetPath: joinDir(targetDir, assigned.String()),
			Decision:   decision,
		})

		dlog.Info().
			Str("file", res.path).
			Str("name", assigned.String()).
			Str("decision", string(decision)).
			Float64("confidence", res.context.OverallConfidence).
			Msg("Document decided")
	}

	report := recorder.Finalize()
	o.log.Info().
		Int("auto_renamed", report.Summary.AutoRenamed).
		Int("flagged", report.Summary.Flagged).
		Int("failed", report.Summary.Failed).
		Msg("Batch run completed")

	return plan, report, nil
}

// Validate runs the pipeline through NAMED for a single document without
// collision resolution, decisions, or audit side effects. It exists for
// inspection: the returned context and name show what a batch run would
// derive.
func (o *Orchestrator) Validate(ctx context.Context, path string) (*models.DocumentContext, models.CanonicalName, error) {
	res := o.interpret(ctx, 0, path)
	if res.failReason != "" {
		return nil, models.CanonicalName{}, errors.New(res.failReason)
	}
	return res.context, res.candidate, nil
}

// interpretAll fans paths out to the worker pool and collects results
// indexed by input position.
func (o *Orchestrator) interpretAll(ctx context.Context, paths []string) []interpretation {
	workers := o.opts.Workers
	if workers > len(paths) {
		workers = len(paths)
	}

	jobs := make(chan int, len(paths))
	results := make([]interpretation, len(paths))

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for index := range jobs {
				o.log.Debug().
					Int("worker", workerID).
					Str("file", paths[index]).
					Msg("Worker interpreting document")
				results[index] = o.interpret(ctx, index, paths[index])
			}
		}(w)
	}

	for i := range paths {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return results
}

// interpret runs one document through RECEIVED → NAMED. Missing text and
// missing fields degrade confidence instead of failing; only collaborator
// errors and cancellation produce a failure reason.
func (o *Orchestrator) interpret(ctx context.Context, index int, path string) interpretation {
	res := interpretation{
		index:      index,
		path:       path,
		documentID: uuid.NewString(),
		state:      StateReceived,
	}

	if err := ctx.Err(); err != nil {
		res.failReason = fmt.Sprintf("batch aborted: %v", err)
		return res
	}

	raw, err := o.provider.Recognize(ctx, path)
	switch {
	case err == nil:
		res.engine = raw.Engine
	case errors.Is(err, ocr.ErrEmptyDocument):
		// No readable text degrades to zero confidence downstream; the
		// document is flagged, not failed.
		raw = &models.RawOcrResult{SourcePath: path, Engine: o.provider.Name()}
		res.engine = raw.Engine
	default:
		res.failReason = err.Error()
		return res
	}

	text, err := normalize.FromOcr(raw)
	if err != nil && !errors.Is(err, normalize.ErrInvalidInput) {
		res.failReason = err.Error()
		return res
	}
	res.rawText = text.Original
	res.state = StateNormalized

	candidates := o.registry.Extract(text)
	res.state = StateExtracted

	res.context = resolve.Resolve(res.documentID, candidates, o.policy.RequiredFields())
	// The resolved context value may select a different naming template;
	// re-resolve then, since the variant gates on its own required fields.
	policy := o.policy.ForContext(res.context.Value(models.FieldContext))
	if policy.Template != o.policy.Template {
		res.context = resolve.Resolve(res.documentID, candidates, policy.RequiredFields())
	}
	res.state = StateResolved

	res.candidate = naming.Synthesize(res.context, policy, path)
	res.state = StateNamed

	return res
}

// decide maps overall confidence to the terminal decision per the policy
// thresholds.
func (o *Orchestrator) decide(ctx *models.DocumentContext) (models.Decision, string) {
	conf := ctx.OverallConfidence
	switch {
	case conf >= o.policy.AutoThreshold:
		return models.DecisionAutoRenamed, ""
	case conf >= o.policy.ReviewFloor:
		return models.DecisionFlagged, fmt.Sprintf("confidence %.2f below auto threshold %.2f", conf, o.policy.AutoThreshold)
	default:
		return models.DecisionFailed, fmt.Sprintf("confidence %.2f below review floor %.2f", conf, o.policy.ReviewFloor)
	}
}

func joinDir(dir, name string) string {
	if dir == "" {
		return name
	}
	return dir + "/" + name
}
