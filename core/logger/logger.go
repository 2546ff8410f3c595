package logger

import (
	"log/slog"
	"os"
)

var log = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
	Level: slog.LevelInfo,
}))

func Info(msg string, args ...any) {
	log.Info(msg, normalize(args)...)
}

func Warn(msg string, args ...any) {
	log.Warn(msg, normalize(args)...)
}

func Error(msg string, args ...any) {
	log.Error(msg, normalize(args)...)
}

// normalize accepts either alternating key/value pairs or a bare error as the
// only argument.
func normalize(args []any) []any {
	if len(args) == 1 {
		if err, ok := args[0].(error); ok {
			return []any{"error", err}
		}
	}
	if len(args)%2 != 0 {
		return append(args, "(missing)")
	}
	return args
}
