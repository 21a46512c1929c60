// Package metrics records operation metrics for post creation, publishing and rendering.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so metrics collection needs no nil checks at call sites. The
// Prometheus implementation registers its collectors on a caller supplied
// registry, which the CLI either writes to a node-exporter textfile or serves
// over HTTP in watch mode.
package metrics
