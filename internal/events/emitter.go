package events

import (
	"context"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/sitepress/internal/logfields"
	"git.home.luguber.info/inful/sitepress/internal/retry"
)

// Emitter receives lifecycle notifications. Emit never fails from the caller's point of view.
type Emitter interface {
	Emit(ctx context.Context, evt Event)
}

// Sink is one destination of emitted events.
type Sink interface {
	Name() string
	Deliver(ctx context.Context, evt Event) error
}

// NoopEmitter drops every event.
type NoopEmitter struct{}

func (NoopEmitter) Emit(context.Context, Event) {}

// Dispatcher fans events out to sinks. Sink failures are logged at warn level.
type Dispatcher struct {
	sinks   []Sink
	timeout time.Duration
}

// DefaultTimeout bounds the delivery to a single sink.
const DefaultTimeout = 2 * time.Second

// NewDispatcher returns a dispatcher over sinks.
func NewDispatcher(sinks ...Sink) *Dispatcher {
	return &Dispatcher{sinks: sinks, timeout: DefaultTimeout}
}

// WithTimeout sets the per-sink delivery timeout.
func (d *Dispatcher) WithTimeout(timeout time.Duration) *Dispatcher {
	d.timeout = timeout
	return d
}

// Add appends a sink.
func (d *Dispatcher) Add(s Sink) {
	if s != nil {
		d.sinks = append(d.sinks, s)
	}
}

func (d *Dispatcher) Emit(ctx context.Context, evt Event) {
	for _, s := range d.sinks {
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.timeout)
		err := s.Deliver(sctx, evt)
		cancel()
		if err != nil {
			slog.WarnContext(ctx, "event delivery failed",
				logfields.Event(evt.EventName()),
				slog.String("sink", s.Name()),
				logfields.Path(evt.StreamID()),
				logfields.Error(err))
		}
	}
}

// BusSink publishes events on an in-process bus.
type BusSink struct {
	Bus *Bus
}

func (BusSink) Name() string { return "bus" }

func (s BusSink) Deliver(ctx context.Context, evt Event) error {
	return s.Bus.Publish(ctx, evt)
}

// RetrySink retries deliveries to Sink under Policy.
type RetrySink struct {
	Sink   Sink
	Policy retry.Policy
}

func (s RetrySink) Name() string { return s.Sink.Name() }

func (s RetrySink) Deliver(ctx context.Context, evt Event) error {
	return s.Policy.Do(ctx, func(ctx context.Context) error {
		return s.Sink.Deliver(ctx, evt)
	})
}
