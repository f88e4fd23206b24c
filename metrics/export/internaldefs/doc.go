// Package internaldefs holds the metric names, help texts and histogram bounds
// shared by the exporters.
//
// Both the Prometheus and OTel exporters read their definitions from here, so a
// renamed metric changes in every exporter at once.
//
// # What this package must NOT do
//
//   - Import any exporter package.
//   - Perform I/O.
package internaldefs
