// Package outline runs the heading inference pipeline over a span document
// and produces a schema-valid title and outline.
package outline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgallion1/docoutline/internal/doctree"
	"github.com/dgallion1/docoutline/internal/layout"
)

var (
	// ErrNoSpanData means the document has no pages to work with.
	ErrNoSpanData = errors.New("no span data")
	// ErrBudgetExceeded means the per-document time budget ran out.
	ErrBudgetExceeded = errors.New("document time budget exceeded")
	// ErrInvalidOutline means the produced outline failed validation.
	ErrInvalidOutline = errors.New("invalid outline")
)

// Report summarizes what each stage saw for one document.
type Report struct {
	Pages        int                  `json:"pages"`
	Spans        int                  `json:"spans"`
	Lines        int                  `json:"lines"`
	Candidates   int                  `json:"candidates"`
	Headings     int                  `json:"headings"`
	BodySize     float64              `json:"body_size"`
	RunningBands int                  `json:"running_bands"`
	Clusters     []layout.SizeCluster `json:"clusters"`
	Rejected     map[string]int       `json:"rejected"`
	Duration     time.Duration        `json:"duration_ns"`
}

// Result is a built outline with its report.
type Result struct {
	Outline *doctree.Outline
	Report  Report
}

// Builder runs the pipeline stages in order for one document at a time.
// It holds no per-document state and is safe for concurrent use.
type Builder struct {
	cfg     layout.Config
	timeout time.Duration
	log     *slog.Logger
}

// NewBuilder creates a builder. A zero timeout disables the per-document
// budget.
func NewBuilder(cfg layout.Config, timeout time.Duration, log *slog.Logger) *Builder {
	if log == nil {
		log = slog.Default()
	}
	return &Builder{cfg: cfg, timeout: timeout, log: log}
}

// Build infers the title and outline of doc. It fails with ErrNoSpanData
// when doc has no pages and with ErrBudgetExceeded when the time budget
// runs out. A document without headings or title is a valid result.
func (b *Builder) Build(ctx context.Context, doc *doctree.Document) (*Result, error) {
	if doc == nil || len(doc.Pages) == 0 {
		return nil, ErrNoSpanData
	}
	if b.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}

	type built struct {
		res *Result
		err error
	}
	done := make(chan built, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- built{err: fmt.Errorf("outline panic: %v", r)}
			}
		}()
		res, err := b.build(ctx, doc)
		done <- built{res: res, err: err}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			return nil, b.contextErr(r.err)
		}
		return r.res, nil
	case <-ctx.Done():
		return nil, b.contextErr(ctx.Err())
	}
}

func (b *Builder) contextErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrBudgetExceeded, err)
	}
	return err
}

func (b *Builder) build(ctx context.Context, doc *doctree.Document) (*Result, error) {
	start := time.Now()

	lines, err := layout.Reconstruct(ctx, doc, b.cfg)
	if err != nil {
		return nil, err
	}
	profile := layout.NewProfile(lines, b.cfg)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var first []doctree.Line
	for _, l := range lines {
		if l.Page == 0 {
			first = append(first, l)
		}
	}
	title := layout.SelectTitle(first, pageHeight(doc, 0), profile, b.cfg)

	body := lines
	if len(title.Lines) > 0 {
		body = make([]doctree.Line, 0, len(lines))
		for _, l := range lines {
			if !title.Contains(l) {
				body = append(body, l)
			}
		}
	}

	filter := layout.NewFilter(profile)
	cands := filter.Candidates(body)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cls := layout.Classify(cands, b.cfg)

	out := Assemble(title, cls.Headings)
	if err := Validate(out); err != nil {
		return nil, err
	}

	rejected := map[string]int{}
	for r, n := range filter.Rejections(body) {
		rejected[r.String()] = n
	}
	report := Report{
		Pages:        len(doc.Pages),
		Spans:        doc.SpanCount(),
		Lines:        len(lines),
		Candidates:   len(cands),
		Headings:     len(out.Outline),
		BodySize:     profile.BodySize(),
		RunningBands: profile.RunningCount(),
		Clusters:     cls.Clusters,
		Rejected:     rejected,
		Duration:     time.Since(start),
	}
	b.log.Debug("outline built",
		"doc", doc.Name,
		"pages", report.Pages,
		"lines", report.Lines,
		"candidates", report.Candidates,
		"headings", report.Headings,
		"body_size", report.BodySize,
		"running_bands", report.RunningBands,
		"rejected", rejected,
	)
	return &Result{Outline: out, Report: report}, nil
}

func pageHeight(doc *doctree.Document, index int) float64 {
	for _, p := range doc.Pages {
		if p.Index == index {
			return p.Height
		}
	}
	return 0
}
