package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dgallion1/docoutline/internal/outline"
)

// Worker processes a single document job.
type Worker struct {
	builder   *outline.Builder
	publisher *Publisher
	stats     *Stats
	metrics   *Metrics
	log       *slog.Logger
}

// NewWorker creates a worker. publisher, stats and metrics may be nil.
func NewWorker(builder *outline.Builder, publisher *Publisher, stats *Stats, metrics *Metrics, log *slog.Logger) *Worker {
	return &Worker{
		builder:   builder,
		publisher: publisher,
		stats:     stats,
		metrics:   metrics,
		log:       log,
	}
}

// Process runs parse, build and publish for a job. Every path ends in a
// terminal status.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "doc_id", job.DocID)

	// Phase 0: reuse an outline already published for identical bytes.
	if w.publisher != nil {
		o, existing, err := w.publisher.Lookup(ctx, job.ContentHash)
		if err != nil {
			log.Warn("dedup check failed, proceeding", "error", err)
		} else if o != nil {
			log.Info("duplicate document, reusing outline", "existing_doc_id", existing)
			job.SetResult(o, nil)
			job.MarkPublished()
			w.finish(job, StatusDupSkipped, "dedup")
			return
		}
	}

	// Phase 1: Parse
	job.SetStatus(StatusParsing, "parsing")
	doc, err := ParseFile(job.Filename, job.FileData())
	if err != nil {
		log.Error("parse failed", "error", err)
		job.AddError(fmt.Sprintf("parse: %s", err))
		w.finish(job, StatusFailed, "parsing")
		return
	}

	// Phase 2: Build
	job.SetStatus(StatusBuilding, "building")
	res, err := w.builder.Build(ctx, doc)
	if err != nil {
		log.Error("build failed", "error", err)
		job.AddError(fmt.Sprintf("build: %s", err))
		w.finish(job, StatusFailed, "building")
		return
	}
	w.stats.Record(res)
	w.metrics.ObserveBuild(res.Report.Duration, len(res.Outline.Outline))
	job.SetResult(res.Outline, &res.Report)
	log.Info("outline built",
		"title", res.Outline.Title,
		"headings", len(res.Outline.Outline),
		"pages", res.Report.Pages,
		"duration_ms", res.Report.Duration.Milliseconds(),
	)

	if w.publisher == nil {
		w.finish(job, StatusCompleted, "done")
		return
	}

	// Phase 3: Publish
	job.SetStatus(StatusPublishing, "publishing")
	if err := w.publisher.Publish(ctx, job, res.Outline); err != nil {
		log.Error("publish failed", "error", err)
		job.AddError(fmt.Sprintf("publish: %s", err))
		w.finish(job, StatusPartial, "publishing")
		return
	}
	job.MarkPublished()
	w.finish(job, StatusCompleted, "done")
}

func (w *Worker) finish(job *Job, status JobStatus, phase string) {
	job.SetStatus(status, phase)
	w.metrics.ObserveStatus(status)
}
