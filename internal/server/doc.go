// Package server wires the MCP server together: the shared server context
// with its guarded Google API clients, the bearer-token session registry,
// health probes, and the dedicated Prometheus metrics listener.
package server
