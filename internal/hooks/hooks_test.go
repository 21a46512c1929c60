package hooks

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitepress/internal/foundation/errors"
)

type page struct{ Content string }

func appendHook(name, suffix string) Hook {
	return Func{HookName: name, Fn: func(_ context.Context, p any, _ Options) (any, error) {
		p.(*page).Content += suffix
		return nil, nil
	}}
}

func TestRun_PriorityThenRegistrationOrder(t *testing.T) {
	r := NewRegistry()
	r.Register(BeforePostRender, 20, appendHook("late", "c"))
	r.Register(BeforePostRender, 10, appendHook("first", "a"))
	r.Register(BeforePostRender, 10, appendHook("second", "b"))

	assert.Equal(t, []string{"first", "second", "late"}, r.List(BeforePostRender))

	p := &page{}
	out, err := RunTyped(context.Background(), r, BeforePostRender, p, nil)
	require.NoError(t, err)
	assert.Equal(t, "abc", out.Content)
}

func TestRun_Replacement(t *testing.T) {
	r := NewRegistry()
	r.Register(NewPostPath, DefaultPriority, Func{HookName: "replace", Fn: func(_ context.Context, _ any, _ Options) (any, error) {
		return "other", nil
	}})
	out, err := r.Run(context.Background(), NewPostPath, "start", nil)
	require.NoError(t, err)
	assert.Equal(t, "other", out)
}

func TestRun_FirstErrorShortCircuits(t *testing.T) {
	cause := stderrors.New("boom")
	r := NewRegistry()
	r.Register(AfterPostRender, 1, Func{HookName: "broken", Fn: func(_ context.Context, _ any, _ Options) (any, error) {
		return nil, cause
	}})
	r.Register(AfterPostRender, 2, appendHook("never", "x"))

	p := &page{}
	_, err := r.Run(context.Background(), AfterPostRender, p, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
	assert.True(t, errors.HasCategory(err, errors.CategoryHook))
	assert.Empty(t, p.Content)
}

func TestRunTyped_WrongReplacementType(t *testing.T) {
	r := NewRegistry()
	r.Register(NewPostPath, 1, Func{HookName: "bad", Fn: func(_ context.Context, _ any, _ Options) (any, error) {
		return 42, nil
	}})
	_, err := RunTyped(context.Background(), r, NewPostPath, &page{}, nil)
	require.Error(t, err)
}

func TestUnregisterAndEmptyPhase(t *testing.T) {
	r := NewRegistry()
	r.Register(BeforePostRender, 1, appendHook("a", "a"))
	r.Unregister(BeforePostRender, "a")
	assert.Empty(t, r.List(BeforePostRender))

	p := &page{Content: "x"}
	out, err := RunTyped(context.Background(), r, "unknown", p, Options{"flag": true})
	require.NoError(t, err)
	assert.Same(t, p, out)
	assert.True(t, Options{"flag": true}.Bool("flag"))
}
