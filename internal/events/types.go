package events

import "time"

// Event names as emitted to sinks.
const (
	NamePostCreated   = "new"
	NamePostPublished = "publish"
)

// Event is implemented by every lifecycle event.
type Event interface {
	EventName() string
	// StreamID identifies the document the event belongs to.
	StreamID() string
}

// PostCreated is emitted after a document was written by create.
type PostCreated struct {
	ID          string    `json:"id"`
	Path        string    `json:"path"`
	Slug        string    `json:"slug"`
	Layout      string    `json:"layout"`
	Content     string    `json:"content"`
	Fingerprint string    `json:"fingerprint,omitempty"`
	Time        time.Time `json:"time"`
}

func (PostCreated) EventName() string  { return NamePostCreated }
func (e PostCreated) StreamID() string { return e.Path }

// PostPublished is emitted after a draft was promoted and removed.
type PostPublished struct {
	ID        string    `json:"id"`
	Slug      string    `json:"slug"`
	DraftPath string    `json:"draft_path"`
	Path      string    `json:"path"`
	Assets    bool      `json:"assets_moved"`
	Time      time.Time `json:"time"`
}

func (PostPublished) EventName() string  { return NamePostPublished }
func (e PostPublished) StreamID() string { return e.Path }
