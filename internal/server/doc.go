// Package server wires the reconciliation engine to its HTTP surface: the
// producer WebSocket stream, the health endpoint, and Prometheus metrics.
package server
