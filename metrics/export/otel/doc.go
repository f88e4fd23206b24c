// Package otel binds goCareer client metrics to an OpenTelemetry Meter.
//
// [NewOTelExporter] registers one Int64ObservableCounter per client counter and,
// per histogram, one Int64ObservableGauge of cumulative bucket counts labelled
// with the upper bound "le" plus a sample count gauge. A single callback reads
// [goCareer.Client.MetricsSnapshot] on each collection cycle.
//
// # What this package must NOT do
//
//   - Own the MeterProvider. Callers supply the Meter.
//   - Mutate client state.
package otel
