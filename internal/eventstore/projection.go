package eventstore

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"git.home.luguber.info/inful/sitepress/internal/events"
)

// DocumentSummary is the read model of one document's lifecycle.
type DocumentSummary struct {
	Path        string     `json:"path"`
	Slug        string     `json:"slug,omitempty"`
	Layout      string     `json:"layout,omitempty"`
	Fingerprint string     `json:"fingerprint,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	DraftPath   string     `json:"draft_path,omitempty"`
	Writes      int        `json:"writes"`
}

// DocumentHistory is an in-memory projection of the stored events.
type DocumentHistory struct {
	mu    sync.RWMutex
	store Store
	docs  map[string]*DocumentSummary
}

// NewDocumentHistory creates a projection backed by store.
func NewDocumentHistory(store Store) *DocumentHistory {
	return &DocumentHistory{store: store, docs: map[string]*DocumentSummary{}}
}

// Rebuild reconstructs the projection from all stored events.
func (p *DocumentHistory) Rebuild(ctx context.Context) error {
	evts, err := p.store.GetRange(ctx, time.Time{}, time.Now().Add(time.Hour))
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.docs = map[string]*DocumentSummary{}
	for _, e := range evts {
		p.applyLocked(e)
	}
	return nil
}

// Apply folds a single stored event into the projection.
func (p *DocumentHistory) Apply(e Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.applyLocked(e)
}

func (p *DocumentHistory) applyLocked(e Event) {
	path := e.StreamID()
	if path == "" {
		return
	}
	doc, ok := p.docs[path]
	if !ok {
		doc = &DocumentSummary{Path: path, CreatedAt: e.Timestamp()}
		p.docs[path] = doc
	}

	switch e.Type() {
	case events.NamePostCreated:
		var payload events.PostCreated
		if err := json.Unmarshal(e.Payload(), &payload); err == nil {
			doc.Slug = payload.Slug
			doc.Layout = payload.Layout
			doc.Fingerprint = payload.Fingerprint
			if !payload.Time.IsZero() && doc.Writes == 0 {
				doc.CreatedAt = payload.Time
			}
		}
		doc.Writes++
	case events.NamePostPublished:
		var payload events.PostPublished
		if err := json.Unmarshal(e.Payload(), &payload); err == nil {
			t := payload.Time
			if t.IsZero() {
				t = e.Timestamp()
			}
			doc.PublishedAt = &t
			doc.DraftPath = payload.DraftPath
		}
	}
}

// Get returns the summary of path.
func (p *DocumentHistory) Get(path string) (DocumentSummary, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	doc, ok := p.docs[path]
	if !ok {
		return DocumentSummary{}, false
	}
	return *doc, true
}

// List returns all summaries, newest first.
func (p *DocumentHistory) List() []DocumentSummary {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]DocumentSummary, 0, len(p.docs))
	for _, d := range p.docs {
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].Path < out[j].Path
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}
