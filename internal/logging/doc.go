// Package logging assembles structured slog loggers and formatting helpers used
// across pitchctl.
//
// It owns the console and JSON handlers, pairs terse stderr output with a
// verbose JSON log file, and exposes context-aware helpers so session code can
// tag log lines with pitch IDs, pipelines, stages, and correlation IDs. The
// package also provides a no-op logger for tests and wiring code that cannot
// fail.
package logging
