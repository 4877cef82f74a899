package pipeline

import (
	"context"
	"log/slog"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/dgallion1/docoutline/internal/doctree"
	"github.com/dgallion1/docoutline/internal/outline"
)

// BatchResult is the outcome for one input file. Exactly one of Outline
// and Err is set.
type BatchResult struct {
	Path    string
	Outline *doctree.Outline
	Report  *outline.Report
	Err     error
}

// RunBatch builds outlines for paths with at most concurrency documents in
// flight. It returns one result per path, in input order. A failing
// document never stops the others.
func RunBatch(ctx context.Context, b *outline.Builder, paths []string, concurrency int, stats *Stats, log *slog.Logger) []BatchResult {
	if concurrency <= 0 {
		concurrency = 1
	}
	results := make([]BatchResult, len(paths))

	var g errgroup.Group
	g.SetLimit(concurrency)
	for i, path := range paths {
		g.Go(func() error {
			results[i] = buildPath(ctx, b, path, stats, log)
			return nil
		})
	}
	g.Wait()
	return results
}

func buildPath(ctx context.Context, b *outline.Builder, path string, stats *Stats, log *slog.Logger) BatchResult {
	r := BatchResult{Path: path}
	if err := ctx.Err(); err != nil {
		r.Err = err
		return r
	}
	data, err := os.ReadFile(path)
	if err != nil {
		r.Err = err
		log.Warn("read failed", "path", path, "error", err)
		return r
	}
	res, err := BuildFile(ctx, b, path, data)
	if err != nil {
		r.Err = err
		log.Warn("outline failed", "path", path, "error", err)
		return r
	}
	stats.Record(res)
	r.Outline = res.Outline
	r.Report = &res.Report
	log.Info("outline built",
		"path", path,
		"title", res.Outline.Title,
		"headings", len(res.Outline.Outline),
		"duration_ms", res.Report.Duration.Milliseconds(),
	)
	return r
}
