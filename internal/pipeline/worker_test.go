package pipeline

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dgallion1/docoutline/internal/doctree"
	"github.com/dgallion1/docoutline/internal/layout"
	"github.com/dgallion1/docoutline/internal/outline"
	"github.com/dgallion1/docoutline/internal/pathstore"
)

const guideMarkdown = `# Guide

This guide walks through everything needed to get the service running locally.

## Setup

Setup covers the prerequisites and the configuration values you need to provide.

### Install

Install the binary with the package manager of your choice and verify the version.
`

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestBuilder() *outline.Builder {
	return outline.NewBuilder(layout.DefaultConfig(), 5*time.Second, discardLogger())
}

func assertGuideOutline(t *testing.T, o *doctree.Outline) {
	t.Helper()
	if o == nil {
		t.Fatal("expected an outline")
	}
	if o.Title != "Guide" {
		t.Errorf("expected title %q, got %q", "Guide", o.Title)
	}
	want := []doctree.HeadingEntry{
		{Level: doctree.H1, Text: "Setup", Page: 0},
		{Level: doctree.H2, Text: "Install", Page: 0},
	}
	if len(o.Outline) != len(want) {
		t.Fatalf("expected %d entries, got %+v", len(want), o.Outline)
	}
	for i, w := range want {
		if o.Outline[i] != w {
			t.Errorf("entry %d: expected %+v, got %+v", i, w, o.Outline[i])
		}
	}
}

// fakeStore is an in-memory pathstore.
type fakeStore struct {
	mu       sync.Mutex
	nodes    map[string]any
	failPuts int
	failCode int
	puts     int
}

func newFakeStore() *fakeStore {
	return &fakeStore{nodes: map[string]any{}, failCode: http.StatusServiceUnavailable}
}

func (f *fakeStore) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := strings.TrimPrefix(r.URL.Path, "/kv/")
	switch r.Method {
	case http.MethodPut:
		f.puts++
		if f.failPuts > 0 {
			f.failPuts--
			http.Error(w, "unavailable", f.failCode)
			return
		}
		var req pathstore.NodeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.nodes[key] = req.Value
		w.WriteHeader(http.StatusCreated)
	case http.MethodGet:
		v, ok := f.nodes[key]
		if !ok {
			http.NotFound(w, r)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"key_path": key, "value": v})
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (f *fakeStore) has(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.nodes[key]
	return ok
}

func noBackoff(t *testing.T) {
	t.Helper()
	prev := backoff
	backoff = func(int) time.Duration { return 0 }
	t.Cleanup(func() { backoff = prev })
}

func TestWorker_ProcessWithoutSink(t *testing.T) {
	stats := NewStats(time.Hour)
	metrics := NewMetrics(nil)
	w := NewWorker(newTestBuilder(), nil, stats, metrics, discardLogger())

	job := NewJob("guide.md", "", []byte(guideMarkdown))
	w.Process(context.Background(), job)

	snap := job.Snapshot()
	if snap.Status != StatusCompleted {
		t.Fatalf("expected completed, got %q (%v)", snap.Status, snap.Errors)
	}
	if snap.Published {
		t.Error("expected unpublished without a sink")
	}
	assertGuideOutline(t, snap.Outline)
	if snap.Report == nil || snap.Report.Pages != 1 {
		t.Errorf("expected a report for one page, got %+v", snap.Report)
	}
	if stats.Snapshot().Count != 1 {
		t.Error("expected one latency sample")
	}
}

func TestWorker_UnsupportedFile(t *testing.T) {
	w := NewWorker(newTestBuilder(), nil, nil, nil, discardLogger())
	job := NewJob("notes.txt", "", []byte("plain"))
	w.Process(context.Background(), job)

	snap := job.Snapshot()
	if snap.Status != StatusFailed || snap.Phase != "parsing" {
		t.Errorf("expected failed in parsing, got %q/%q", snap.Status, snap.Phase)
	}
	if len(snap.Errors) != 1 {
		t.Errorf("expected one error, got %v", snap.Errors)
	}
	if snap.Outline != nil {
		t.Error("expected no outline for a failed document")
	}
}

func TestWorker_EmptySpanDocumentFails(t *testing.T) {
	w := NewWorker(newTestBuilder(), nil, nil, nil, discardLogger())
	job := NewJob("spans.json", "", []byte(`{"pages":[]}`))
	w.Process(context.Background(), job)

	snap := job.Snapshot()
	if snap.Status != StatusFailed || snap.Phase != "building" {
		t.Errorf("expected failed in building, got %q/%q", snap.Status, snap.Phase)
	}
}

func TestWorker_PublishesAndDedups(t *testing.T) {
	store := newFakeStore()
	srv := httptest.NewServer(store)
	defer srv.Close()
	pub := NewPublisher(pathstore.NewClient(srv.URL, "k"), discardLogger())
	w := NewWorker(newTestBuilder(), pub, nil, nil, discardLogger())

	first := NewJob("guide.md", "", []byte(guideMarkdown))
	w.Process(context.Background(), first)
	snap := first.Snapshot()
	if snap.Status != StatusCompleted || !snap.Published {
		t.Fatalf("expected completed and published, got %q (%v)", snap.Status, snap.Errors)
	}
	if !store.has(OutlineKey("guide")) || !store.has(HashKey(first.ContentHash)) {
		t.Fatalf("expected outline and hash index in store, got %v", store.nodes)
	}

	second := NewJob("copy-of-guide.md", "", []byte(guideMarkdown))
	w.Process(context.Background(), second)
	snap = second.Snapshot()
	if snap.Status != StatusDupSkipped {
		t.Fatalf("expected duplicate_skipped, got %q", snap.Status)
	}
	assertGuideOutline(t, snap.Outline)
}

func TestWorker_PublishRetriesTransientErrors(t *testing.T) {
	noBackoff(t)
	store := newFakeStore()
	store.failPuts = 2
	srv := httptest.NewServer(store)
	defer srv.Close()
	pub := NewPublisher(pathstore.NewClient(srv.URL, "k"), discardLogger())
	w := NewWorker(newTestBuilder(), pub, nil, nil, discardLogger())

	job := NewJob("guide.md", "", []byte(guideMarkdown))
	w.Process(context.Background(), job)

	if got := job.Snapshot().Status; got != StatusCompleted {
		t.Fatalf("expected completed after retries, got %q", got)
	}
	// Two failed attempts, then the outline and the hash index.
	if store.puts != 4 {
		t.Errorf("expected 4 puts, got %d", store.puts)
	}
}

func TestWorker_PublishFailureIsPartial(t *testing.T) {
	noBackoff(t)
	store := newFakeStore()
	store.failPuts = 10
	store.failCode = http.StatusBadRequest
	srv := httptest.NewServer(store)
	defer srv.Close()
	pub := NewPublisher(pathstore.NewClient(srv.URL, "k"), discardLogger())
	w := NewWorker(newTestBuilder(), pub, nil, nil, discardLogger())

	job := NewJob("guide.md", "", []byte(guideMarkdown))
	w.Process(context.Background(), job)

	snap := job.Snapshot()
	if snap.Status != StatusPartial || snap.Published {
		t.Fatalf("expected partial and unpublished, got %q", snap.Status)
	}
	if store.puts != 1 {
		t.Errorf("expected no retry for a client error, got %d puts", store.puts)
	}
	assertGuideOutline(t, snap.Outline)
}

func TestDecodeOutline_RejectsInvalid(t *testing.T) {
	if _, err := DecodeOutline(map[string]any{"title": "x"}); err == nil {
		t.Error("expected error for missing outline field")
	}
	o, err := DecodeOutline(map[string]any{
		"title":   "x",
		"outline": []any{map[string]any{"level": "H2", "text": "Intro", "page": 3}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if o.Outline[0].Level != doctree.H2 || o.Outline[0].Page != 3 {
		t.Errorf("unexpected outline %+v", o)
	}
}

func TestLastSegment(t *testing.T) {
	tests := map[string]string{
		"outline_hashes/abc": "abc",
		"outline_hashes.abc": "abc",
		"abc":                "abc",
	}
	for in, want := range tests {
		if got := lastSegment(in); got != want {
			t.Errorf("lastSegment(%q) = %q, want %q", in, got, want)
		}
	}
}
