// Package services defines shared utilities consumed by the pitch session core,
// the backend gateway and the CLI.
//
// Key responsibilities:
//   - Context helpers that stamp pitch IDs, pipeline names, stages, and
//     correlation identifiers for logging.
//   - Structured error markers plus the Wrap helper so callers can classify
//     failures (precondition, transport, unmapped status, no data) with
//     errors.Is regardless of where they were raised.
//
// Use these helpers when wiring new operations so failure classification and
// observability stay uniform across the client.
package services
