package logging

import (
	"io"
	"log/slog"
	"os"
)

// Logger — обёртка над slog.Logger.
type Logger struct {
	*slog.Logger
}

// NewLogger создаёт логгер в текстовом или JSON-формате в зависимости от окружения.
func NewLogger(env string) *Logger {
	return NewLoggerTo(os.Stdout, env)
}

// NewLoggerTo создаёт логгер с указанным приёмником вывода.
// Используется в тестах, чтобы не писать в stdout.
func NewLoggerTo(w io.Writer, env string) *Logger {
	var handler slog.Handler

	if env == "prod" {
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})

	} else {
		handler = slog.NewTextHandler(w, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})
	}

	return &Logger{slog.New(handler)}
}

// With возвращает логгер с добавленными полями контекста.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{l.Logger.With(args...)}
}
