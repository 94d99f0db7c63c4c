package pg

import "context"

// logger is the part of *slog.Logger migrations report through.
type logger interface {
	InfoContext(ctx context.Context, msg string, args ...any)
	ErrorContext(ctx context.Context, msg string, args ...any)
}
