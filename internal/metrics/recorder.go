package metrics

import "time"

// ResultLabel enumerates operation result categories for counters.
type ResultLabel string

const (
	ResultSuccess  ResultLabel = "success"
	ResultFailed   ResultLabel = "failed"
	ResultNotFound ResultLabel = "not_found"
	ResultCanceled ResultLabel = "canceled"
)

// Recorder defines observability hooks for lifecycle and render operations.
type Recorder interface {
	// ObserveOperation records the duration of one create, publish or render call.
	ObserveOperation(op string, d time.Duration)
	IncOperationResult(op string, result ResultLabel)
	// AddPlaceholders counts escaped regions by kind ("code", "swig").
	AddPlaceholders(kind string, n int)
	IncHookRun(phase string)
}

// NoopRecorder is a Recorder that does nothing (default when metrics are not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveOperation(string, time.Duration) {}
func (NoopRecorder) IncOperationResult(string, ResultLabel) {}
func (NoopRecorder) AddPlaceholders(string, int)            {}
func (NoopRecorder) IncHookRun(string)                     {}
