package services

import "context"

type contextKey string

const (
	runIDKey     contextKey = "run_id"
	directoryKey contextKey = "directory"
)

// WithRunID annotates context with the organize run identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext extracts the organize run identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if str, ok := ctx.Value(runIDKey).(string); ok && str != "" {
		return str, true
	}
	return "", false
}

// WithDirectory annotates context with the directory currently being visited.
func WithDirectory(ctx context.Context, dir string) context.Context {
	if dir == "" {
		return ctx
	}
	return context.WithValue(ctx, directoryKey, dir)
}

// DirectoryFromContext returns the directory being visited if present.
func DirectoryFromContext(ctx context.Context) (string, bool) {
	if str, ok := ctx.Value(directoryKey).(string); ok && str != "" {
		return str, true
	}
	return "", false
}
