// Package hooks provides named, priority ordered filter phases.
//
// A hook receives the phase payload and may mutate it in place or return a
// replacement value. Hooks run in ascending priority; hooks with the same
// priority run in registration order. The first failing hook stops the phase.
package hooks

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"git.home.luguber.info/inful/sitepress/internal/foundation/errors"
	"git.home.luguber.info/inful/sitepress/internal/logfields"
)

// Phase names.
const (
	NewPostPath      = "new_post_path"
	BeforePostRender = "before_post_render"
	AfterPostRender  = "after_post_render"
)

// DefaultPriority is used by callers that have no ordering requirement.
const DefaultPriority = 10

// Options carries per-call settings for a phase.
type Options map[string]any

// Bool returns the boolean option k, or false.
func (o Options) Bool(k string) bool {
	v, _ := o[k].(bool)
	return v
}

// Hook is one step of a phase.
type Hook interface {
	Name() string
	// Apply returns a replacement payload, or nil to keep the (possibly mutated) input.
	Apply(ctx context.Context, payload any, opts Options) (any, error)
}

// Func adapts a function to Hook.
type Func struct {
	HookName string
	Fn       func(ctx context.Context, payload any, opts Options) (any, error)
}

func (f Func) Name() string { return f.HookName }

func (f Func) Apply(ctx context.Context, payload any, opts Options) (any, error) {
	return f.Fn(ctx, payload, opts)
}

type entry struct {
	priority int
	seq      int
	hook     Hook
}

// Registry holds hooks per phase. It is safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	phases map[string][]entry
	seq    int
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{phases: map[string][]entry{}}
}

// Register adds h to phase name.
func (r *Registry) Register(name string, priority int, h Hook) {
	if h == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.seq++
	list := append(r.phases[name], entry{priority: priority, seq: r.seq, hook: h})
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].priority == list[j].priority {
			return list[i].seq < list[j].seq
		}
		return list[i].priority < list[j].priority
	})
	r.phases[name] = list
}

// Unregister removes every hook called hookName from phase name.
func (r *Registry) Unregister(name, hookName string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	list := r.phases[name][:0:0]
	for _, e := range r.phases[name] {
		if e.hook.Name() != hookName {
			list = append(list, e)
		}
	}
	r.phases[name] = list
}

// List returns the hook names of a phase in execution order.
func (r *Registry) List(name string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.phases[name]))
	for _, e := range r.phases[name] {
		out = append(out, e.hook.Name())
	}
	return out
}

// Run dispatches payload through phase name and returns the final payload.
func (r *Registry) Run(ctx context.Context, name string, payload any, opts Options) (any, error) {
	r.mu.RLock()
	list := make([]entry, len(r.phases[name]))
	copy(list, r.phases[name])
	r.mu.RUnlock()

	for _, e := range list {
		if err := ctx.Err(); err != nil {
			return payload, err
		}
		out, err := e.hook.Apply(ctx, payload, opts)
		if err != nil {
			return payload, errors.WrapError(err, errors.CategoryHook, "hook failed").
				WithContext("phase", name).
				WithContext("hook", e.hook.Name()).
				Build()
		}
		if out != nil {
			payload = out
		}
		slog.DebugContext(ctx, "hook applied", logfields.Phase(name), logfields.Hook(e.hook.Name()))
	}
	return payload, nil
}

// Runner is the dispatch capability consumers depend on.
type Runner interface {
	Run(ctx context.Context, name string, payload any, opts Options) (any, error)
}

// RunTyped dispatches payload and asserts the result keeps its type.
func RunTyped[T any](ctx context.Context, r Runner, name string, payload T, opts Options) (T, error) {
	out, err := r.Run(ctx, name, payload, opts)
	if err != nil {
		return payload, err
	}
	typed, ok := out.(T)
	if !ok {
		var zero T
		return zero, errors.HookError(fmt.Sprintf("phase returned %T, want %T", out, payload)).
			WithContext("phase", name).
			Build()
	}
	return typed, nil
}
