package observability

import (
	"io"
	"log/slog"
	"os"
)

// NewLogger writes JSON to stdout. dev logs at debug; every other env at info.
func NewLogger(env string) *slog.Logger {
	return newLogger(os.Stdout, env)
}

func newLogger(w io.Writer, env string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if env == "dev" {
		opts.Level = slog.LevelDebug
		opts.AddSource = true
	}

	base := slog.NewJSONHandler(w, opts).WithAttrs([]slog.Attr{
		slog.String("service", "storefront"),
		slog.String("env", env),
	})

	return slog.New(NewTraceHandler(base))
}
