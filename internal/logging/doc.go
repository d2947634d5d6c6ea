// Package logging provides slog helpers for consistent structured logging.
//
// It defines shared attribute keys and constructors so that log lines from
// the front door, the relay guard, and the tool handlers stay correlatable,
// and it centralizes PII handling: tokens are never logged (SanitizeToken),
// and emails are anonymized (AnonymizeEmail) or reduced to their domain.
package logging
