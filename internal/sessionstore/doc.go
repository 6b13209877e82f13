// Package sessionstore persists named pitch sessions in SQLite so the CLI can
// pick a pitch up again on the next invocation.
//
// Each row holds a pitch.Snapshot: the session identity plus the transcript
// and reference-document caches. A stage_history table records every stage
// observed by a poll; the CLI consults it so a synthesis task that reported
// FAILED is never polled again.
//
// Writers of one session name are serialized across processes by an
// exclusive file lock (see Store.Lock).
package sessionstore
