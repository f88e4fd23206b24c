// Package prometheus exposes goCareer client metrics as a Prometheus collector.
//
// [NewPrometheusExporter] accepts a [goCareer.Client] and implements
// [prometheus.Collector]. Counter names are prefixed gocareer_*_total; the single
// histogram is gocareer_resolve_latency_seconds. [PrometheusExporter.Handler]
// serves the collector from a private registry.
//
// # What this package must NOT do
//
//   - Register metrics in the global Prometheus registry. Callers mount the
//     Handler or call Register with their own registry.
//   - Mutate client state.
package prometheus
