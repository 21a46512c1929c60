package events

import (
	"context"
	"reflect"
	"sync"
	"sync/atomic"

	ferrors "git.home.luguber.info/inful/sitepress/internal/foundation/errors"
)

// Bus is a small, typed, in-process event bus for document lifecycle events.
//
// Subscriptions are typed through generics; a subscription to an interface
// type receives every event implementing it. Publish blocks until every
// matching subscriber accepted the event or ctx is done. The bus is not
// durable; internal/eventstore keeps the history.
type Bus struct {
	mu     sync.RWMutex
	subs   map[reflect.Type]map[uint64]*subscription
	nextID atomic.Uint64
	closed atomic.Bool
	once   sync.Once
}

type subscription struct {
	deliver func(ctx context.Context, evt any) error
	close   func()
}

func NewBus() *Bus {
	return &Bus{subs: make(map[reflect.Type]map[uint64]*subscription)}
}

// Subscribe registers a subscription for events of type T with the given channel buffer.
// The returned function unsubscribes and closes the channel.
func Subscribe[T any](b *Bus, buffer int) (<-chan T, func()) {
	typ := reflect.TypeFor[T]()
	ch := make(chan T, buffer)

	var closeOnce sync.Once
	closeCh := func() { closeOnce.Do(func() { close(ch) }) }

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed.Load() {
		closeCh()
		return ch, func() {}
	}

	id := b.nextID.Add(1)
	if b.subs[typ] == nil {
		b.subs[typ] = make(map[uint64]*subscription)
	}
	b.subs[typ][id] = &subscription{
		deliver: func(ctx context.Context, evt any) error {
			v, ok := evt.(T)
			if !ok {
				return ferrors.InternalError("event type mismatch").
					WithContext("expected", typ.String()).
					WithContext("actual", reflect.TypeOf(evt).String()).
					Build()
			}
			select {
			case ch <- v:
				return nil
			case <-ctx.Done():
				return ferrors.WrapError(ctx.Err(), ferrors.CategoryInternal, "event publish canceled").
					WithContext("event_type", typ.String()).
					Build()
			}
		},
		close: closeCh,
	}

	var unsubOnce sync.Once
	return ch, func() {
		unsubOnce.Do(func() {
			b.mu.Lock()
			if typeSubs, ok := b.subs[typ]; ok {
				delete(typeSubs, id)
				if len(typeSubs) == 0 {
					delete(b.subs, typ)
				}
			}
			b.mu.Unlock()
			closeCh()
		})
	}
}

// SubscriberCount returns the number of active subscribers for events of type T.
func SubscriberCount[T any](b *Bus) int {
	if b == nil {
		return 0
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[reflect.TypeFor[T]()])
}

// Publish delivers evt to all matching subscribers.
func (b *Bus) Publish(ctx context.Context, evt any) error {
	if evt == nil {
		return ferrors.ValidationError("event cannot be nil").Build()
	}
	if b.closed.Load() {
		return ferrors.InternalError("event bus is closed").Build()
	}

	typ := reflect.TypeOf(evt)
	b.mu.RLock()
	var targets []*subscription
	for subType, typeSubs := range b.subs {
		if subType != typ && (subType.Kind() != reflect.Interface || !typ.Implements(subType)) {
			continue
		}
		for _, s := range typeSubs {
			targets = append(targets, s)
		}
	}
	b.mu.RUnlock()

	for _, s := range targets {
		if err := s.deliver(ctx, evt); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the bus and all subscription channels.
func (b *Bus) Close() {
	b.once.Do(func() {
		b.mu.Lock()
		b.closed.Store(true)
		var all []*subscription
		for _, typeSubs := range b.subs {
			for _, s := range typeSubs {
				all = append(all, s)
			}
		}
		b.subs = make(map[reflect.Type]map[uint64]*subscription)
		b.mu.Unlock()

		for _, s := range all {
			s.close()
		}
	})
}
