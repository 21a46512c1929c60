package events

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ferrors "git.home.luguber.info/inful/sitepress/internal/foundation/errors"
	"git.home.luguber.info/inful/sitepress/internal/retry"
)

func TestBus_PublishSubscribe(t *testing.T) {
	b := NewBus()
	defer b.Close()

	ch, unsubscribe := Subscribe[PostCreated](b, 1)
	defer unsubscribe()

	require.NoError(t, b.Publish(context.Background(), PostCreated{Path: "source/_posts/a.md"}))

	select {
	case got := <-ch:
		require.Equal(t, "source/_posts/a.md", got.Path)
	case <-time.After(250 * time.Millisecond):
		t.Fatal("timed out waiting for event")
	}
}

func TestBus_InterfaceSubscriptionReceivesConcreteEvents(t *testing.T) {
	b := NewBus()
	defer b.Close()

	ch, unsubscribe := Subscribe[Event](b, 2)
	defer unsubscribe()

	require.NoError(t, b.Publish(context.Background(), PostCreated{Path: "a"}))
	require.NoError(t, b.Publish(context.Background(), PostPublished{Path: "b"}))

	assert.Equal(t, NamePostCreated, (<-ch).EventName())
	assert.Equal(t, NamePostPublished, (<-ch).EventName())
}

func TestBus_PublishBackpressure(t *testing.T) {
	b := NewBus()
	defer b.Close()

	_, unsubscribe := Subscribe[PostCreated](b, 0)
	defer unsubscribe()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := b.Publish(ctx, PostCreated{})
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryInternal))
}

func TestBus_CloseAndUnsubscribe(t *testing.T) {
	b := NewBus()
	ch, unsubscribe := Subscribe[PostCreated](b, 1)
	assert.Equal(t, 1, SubscriberCount[PostCreated](b))
	unsubscribe()
	assert.Equal(t, 0, SubscriberCount[PostCreated](b))
	_, open := <-ch
	assert.False(t, open)

	ch, _ = Subscribe[PostCreated](b, 1)
	b.Close()
	_, open = <-ch
	assert.False(t, open)
	require.Error(t, b.Publish(context.Background(), PostCreated{}))

	ch, _ = Subscribe[PostCreated](b, 1)
	_, open = <-ch
	assert.False(t, open, "subscribing to a closed bus yields a closed channel")
}

type fakePublisher struct {
	subjects []string
	payloads [][]byte
	err      error
}

func (f *fakePublisher) Publish(subject string, data []byte) error {
	f.subjects = append(f.subjects, subject)
	f.payloads = append(f.payloads, data)
	return f.err
}

func TestNATSSink_PublishesJSON(t *testing.T) {
	pub := &fakePublisher{}
	sink := NewNATSSink(pub, "")

	evt := PostCreated{ID: "1", Path: "p.md", Content: "hello"}
	require.NoError(t, sink.Deliver(context.Background(), evt))
	require.Equal(t, []string{"sitepress.posts.new"}, pub.subjects)

	var decoded PostCreated
	require.NoError(t, json.Unmarshal(pub.payloads[0], &decoded))
	assert.Equal(t, "p.md", decoded.Path)
	assert.Equal(t, "hello", decoded.Content)
}

type failingSink struct{ calls int }

func (f *failingSink) Name() string { return "failing" }
func (f *failingSink) Deliver(context.Context, Event) error {
	f.calls++
	return stderrors.New("unreachable")
}

func TestDispatcher_LogsAndContinues(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	defer slog.SetDefault(prev)

	bus := NewBus()
	defer bus.Close()
	ch, unsubscribe := Subscribe[PostCreated](bus, 1)
	defer unsubscribe()

	failing := &failingSink{}
	d := NewDispatcher(failing)
	d.Add(BusSink{Bus: bus})
	d.Emit(context.Background(), PostCreated{Path: "x.md"})

	assert.Equal(t, 1, failing.calls)
	assert.Equal(t, "x.md", (<-ch).Path)
	assert.Contains(t, buf.String(), "event delivery failed")
	assert.Contains(t, buf.String(), "sink=failing")

	NoopEmitter{}.Emit(context.Background(), PostCreated{})
}

type flakySink struct {
	failures int
	calls    int
}

func (f *flakySink) Name() string { return "flaky" }
func (f *flakySink) Deliver(context.Context, Event) error {
	f.calls++
	if f.calls <= f.failures {
		return stderrors.New("try again")
	}
	return nil
}

func TestRetrySink_RetriesTransientFailures(t *testing.T) {
	flaky := &flakySink{failures: 2}
	sink := RetrySink{Sink: flaky, Policy: retry.NewPolicy(retry.Fixed, time.Millisecond, time.Millisecond, 3)}

	require.NoError(t, sink.Deliver(context.Background(), PostCreated{Path: "x.md"}))
	assert.Equal(t, 3, flaky.calls)
	assert.Equal(t, "flaky", sink.Name())
}

func TestRetrySink_GivesUpOnClassifiedErrors(t *testing.T) {
	pub := &fakePublisher{err: ferrors.ConfigError("no permission").Build()}
	sink := RetrySink{Sink: NewNATSSink(pub, "s"), Policy: retry.NewPolicy(retry.Fixed, time.Millisecond, time.Millisecond, 3)}

	require.Error(t, sink.Deliver(context.Background(), PostCreated{Path: "x.md"}))
	assert.Len(t, pub.subjects, 1)
}
