// Package monitoring provides Prometheus metrics for the runtime.
//
// Metrics cover the protocol dispatcher (instruction counts, errors,
// latency), the widget tree (live widgets, frame requests), style
// resolution (batches, reapplies), and the transport (connections,
// message counts).
package monitoring
