package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dgallion1/docoutline/internal/doctree"
	"github.com/dgallion1/docoutline/internal/outline"
	"github.com/dgallion1/docoutline/internal/parser"
	"github.com/dgallion1/docoutline/internal/pipeline"
)

func runCmd() *cobra.Command {
	var out string
	var concurrency int
	var timeout time.Duration
	var verbose bool

	cmd := &cobra.Command{
		Use:   "run <file-or-dir>...",
		Short: "Write one <name>.json outline per input document",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig(verbose)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("concurrency") {
				concurrency = cfg.BatchConcurrency
			}
			if !cmd.Flags().Changed("timeout") {
				timeout = cfg.DocumentTimeout
			}

			inputs, err := collectInputs(args)
			if err != nil {
				return err
			}
			if len(inputs) == 0 {
				return errors.New("no supported documents found")
			}
			if err := os.MkdirAll(out, 0o755); err != nil {
				return fmt.Errorf("create output dir: %w", err)
			}

			builder := outline.NewBuilder(cfg.Layout(), timeout, log)
			stats := pipeline.NewStats(24 * time.Hour)
			results := pipeline.RunBatch(cmd.Context(), builder, inputs, concurrency, stats, log)

			failed := writeResults(cmd.OutOrStdout(), out, results)
			snap := stats.Snapshot()
			fmt.Fprintf(cmd.OutOrStdout(), "%d documents, %d failed, p50 %.0fms, max %dms\n",
				len(results), failed, snap.Latency.P50Ms, snap.Latency.MaxMs)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "output", "directory for the JSON outlines")
	cmd.Flags().IntVarP(&concurrency, "concurrency", "c", 4, "documents processed at once (default BATCH_CONCURRENCY)")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "per-document time budget, 0 to disable (default DOCUMENT_TIMEOUT)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	return cmd
}

// writeResults writes each outline next to its siblings and reports one
// line per input. It returns the number of failures.
func writeResults(w io.Writer, outDir string, results []pipeline.BatchResult) int {
	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			fmt.Fprintf(w, "FAIL %s: %v\n", r.Path, r.Err)
			continue
		}
		dest := outputPath(outDir, r.Path)
		if err := writeOutline(dest, r.Outline); err != nil {
			failed++
			fmt.Fprintf(w, "FAIL %s: %v\n", r.Path, err)
			continue
		}
		fmt.Fprintf(w, "ok   %s -> %s (%d headings)\n", r.Path, dest, len(r.Outline.Outline))
	}
	return failed
}

// collectInputs expands directories into their supported files. Explicit
// file arguments are kept even when unsupported so they are reported.
func collectInputs(args []string) ([]string, error) {
	var inputs []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			inputs = append(inputs, arg)
			continue
		}
		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if e.IsDir() || !parser.IsSupportedExtension(e.Name()) {
				continue
			}
			inputs = append(inputs, filepath.Join(arg, e.Name()))
		}
	}
	slices.Sort(inputs)
	return slices.Compact(inputs), nil
}

// outputPath maps an input file to <outDir>/<name>.json.
func outputPath(outDir, input string) string {
	base := filepath.Base(input)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(outDir, name+".json")
}

// writeOutline writes o with two-space indentation through a temporary
// file so a failed write never leaves a partial result.
func writeOutline(path string, o *doctree.Outline) error {
	data, err := json.MarshalIndent(o, "", "  ")
	if err != nil {
		return err
	}
	if err := outline.ValidateJSON(data); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".outline-*.json")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
