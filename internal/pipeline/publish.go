package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgallion1/docoutline/internal/doctree"
	"github.com/dgallion1/docoutline/internal/outline"
	"github.com/dgallion1/docoutline/internal/pathstore"
)

// OutlinePrefix is the pathstore prefix holding published outlines.
const OutlinePrefix = "outlines"

// OutlineKey is where the outline for docID is published.
func OutlineKey(docID string) string {
	return OutlinePrefix + "/" + docID
}

// HashKey indexes published outlines by the SHA-256 of the source file.
func HashKey(contentHash string) string {
	return "outline_hashes/" + contentHash
}

// Publisher writes finished outlines to pathstore and finds earlier
// results for identical uploads.
type Publisher struct {
	ps  *pathstore.Client
	log *slog.Logger
}

func NewPublisher(ps *pathstore.Client, log *slog.Logger) *Publisher {
	return &Publisher{ps: ps, log: log}
}

// Publish stores the outline under its doc id, then records the content
// hash index entry. Both writes retry transient failures.
func (p *Publisher) Publish(ctx context.Context, job *Job, o *doctree.Outline) error {
	source := "docoutline:" + job.DocID
	err := withRetry(ctx, p.log, "put outline", func() error {
		return p.ps.PutNode(ctx, OutlineKey(job.DocID), pathstore.NodeRequest{
			Value:      o,
			MemoryType: "metacognitive",
			Salience:   0.5,
			Source:     source,
		})
	})
	if err != nil {
		return fmt.Errorf("put outline: %w", err)
	}

	err = withRetry(ctx, p.log, "put hash index", func() error {
		return p.ps.PutNode(ctx, HashKey(job.ContentHash), pathstore.NodeRequest{
			Value: map[string]any{
				"doc_id":     job.DocID,
				"filename":   job.Filename,
				"created_at": job.CreatedAt.Format(time.RFC3339),
			},
			MemoryType: "metacognitive",
			Salience:   0.1,
			Source:     source,
		})
	})
	if err != nil {
		return fmt.Errorf("put hash index: %w", err)
	}
	return nil
}

// Lookup returns the outline previously published for contentHash and the
// doc id it was stored under. A miss returns nil with no error.
func (p *Publisher) Lookup(ctx context.Context, contentHash string) (*doctree.Outline, string, error) {
	idx, err := p.ps.GetNode(ctx, HashKey(contentHash))
	if err != nil || idx == nil {
		return nil, "", err
	}
	m, _ := idx.Value.(map[string]any)
	docID, _ := m["doc_id"].(string)
	if docID == "" {
		return nil, "", nil
	}
	node, err := p.ps.GetNode(ctx, OutlineKey(docID))
	if err != nil || node == nil {
		return nil, "", err
	}
	o, err := DecodeOutline(node.Value)
	if err != nil {
		return nil, "", err
	}
	return o, docID, nil
}

// Fetch returns the outline published for docID, or nil when there is none.
func (p *Publisher) Fetch(ctx context.Context, docID string) (*doctree.Outline, error) {
	node, err := p.ps.GetNode(ctx, OutlineKey(docID))
	if err != nil || node == nil {
		return nil, err
	}
	return DecodeOutline(node.Value)
}

// Published is one entry from a listing of the sink.
type Published struct {
	Key   string `json:"key"`
	Title string `json:"title"`
}

// List returns up to limit published outlines.
func (p *Publisher) List(ctx context.Context, limit int) ([]Published, error) {
	children, err := p.ps.ListChildren(ctx, OutlinePrefix, limit)
	if err != nil {
		return nil, err
	}
	out := make([]Published, 0, len(children))
	for _, c := range children {
		m, _ := c.Value.(map[string]any)
		title, _ := m["title"].(string)
		out = append(out, Published{Key: c.Key, Title: title})
	}
	return out, nil
}

// Delete removes the outline for docID and its hash index entry.
func (p *Publisher) Delete(ctx context.Context, docID string) error {
	node, err := p.ps.GetNode(ctx, OutlineKey(docID))
	if err != nil {
		return err
	}
	if node == nil {
		return nil
	}
	if err := p.ps.DeleteNode(ctx, OutlineKey(docID), false); err != nil {
		return err
	}
	return p.deleteHashIndex(ctx, docID)
}

// deleteHashIndex removes hash entries pointing at docID.
func (p *Publisher) deleteHashIndex(ctx context.Context, docID string) error {
	entries, err := p.ps.ListChildren(ctx, "outline_hashes", 0)
	if err != nil {
		return err
	}
	for _, e := range entries {
		m, _ := e.Value.(map[string]any)
		if id, _ := m["doc_id"].(string); id != docID {
			continue
		}
		if err := p.ps.DeleteNode(ctx, HashKey(lastSegment(e.Key)), false); err != nil {
			p.log.Warn("hash index delete failed", "key", e.Key, "error", err)
		}
	}
	return nil
}

// lastSegment returns the final component of a key path, which pathstore
// may report with either '/' or '.' separators.
func lastSegment(key string) string {
	for i := len(key) - 1; i >= 0; i-- {
		if key[i] == '/' || key[i] == '.' {
			return key[i+1:]
		}
	}
	return key
}

// DecodeOutline converts a stored node value back into an outline. The
// value must satisfy the output schema.
func DecodeOutline(v any) (*doctree.Outline, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal stored outline: %w", err)
	}
	if err := outline.ValidateJSON(data); err != nil {
		return nil, err
	}
	var o doctree.Outline
	if err := json.Unmarshal(data, &o); err != nil {
		return nil, fmt.Errorf("decode stored outline: %w", err)
	}
	return &o, nil
}
