// Package logging assembles the structured slog loggers and formatting helpers
// used across the organizer.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so walker code automatically
// tags log lines with the run identifier and the directory being visited. The
// package also provides a no-op logger for tests and wiring code that cannot
// fail.
//
// Prefer these constructors over hand-rolled slog setup so every component
// emits data with the same shape.
package logging
