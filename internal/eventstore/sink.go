package eventstore

import (
	"context"
	"encoding/json"

	"git.home.luguber.info/inful/sitepress/internal/events"
)

// Sink records emitted lifecycle events in a Store.
type Sink struct {
	Store Store
}

func (Sink) Name() string { return "eventstore" }

func (s Sink) Deliver(ctx context.Context, evt events.Event) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return wrap(ErrEventAppendFailed, err).WithContext("event", evt.EventName()).Build()
	}
	return s.Store.Append(ctx, evt.StreamID(), evt.EventName(), payload, nil)
}
