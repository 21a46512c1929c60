package eventstore

import "time"

// Event is one stored lifecycle event.
type Event interface {
	ID() int64
	// StreamID is the document path the event belongs to.
	StreamID() string
	Type() string
	Timestamp() time.Time
	// Payload is the JSON encoded event.
	Payload() []byte
	Metadata() map[string]string
}

// Record is a row of the events table.
type Record struct {
	Seq      int64
	Path     string
	Name     string
	Recorded time.Time
	Data     []byte
	Meta     map[string]string
}

func (r *Record) ID() int64                   { return r.Seq }
func (r *Record) StreamID() string            { return r.Path }
func (r *Record) Type() string                { return r.Name }
func (r *Record) Timestamp() time.Time        { return r.Recorded }
func (r *Record) Payload() []byte             { return r.Data }
func (r *Record) Metadata() map[string]string { return r.Meta }
