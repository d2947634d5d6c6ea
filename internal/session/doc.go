// Package session holds the per-connection credential state.
//
// Each authenticated MCP session owns exactly one Credential; sessions never
// share state, so no cross-session locking exists. The per-credential call
// lock only serializes guarded calls within a single session.
package session
