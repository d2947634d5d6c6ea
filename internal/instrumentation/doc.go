// Package instrumentation provides OpenTelemetry metrics and tracing for the
// MCP server and the waitlist API.
//
// Metrics cover HTTP traffic, MCP tool invocations, guarded Google API
// calls, OAuth flow completions, token refreshes, and waitlist signups. The
// default exporter is Prometheus, served on a dedicated metrics port.
package instrumentation
