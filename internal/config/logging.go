package config

import (
	"io"
	"log/slog"
	"os"

	slogmulti "github.com/samber/slog-multi"
)

// SetupLogger creates the CLI logger: text to stderr at stderrLevel, JSON
// to the log file at fileLevel. The file keeps the full trace even when
// the terminal only shows warnings. Returns a cleanup that closes the file.
func SetupLogger(logFile string, fileLevel, stderrLevel slog.Level) (*slog.Logger, func() error) {
	stderrHandler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: stderrLevel})
	if logFile == "" {
		return slog.New(stderrHandler), func() error { return nil }
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		logger := slog.New(stderrHandler)
		logger.Warn("failed to open log file, using stderr only", "error", err, "file", logFile)
		return logger, func() error { return nil }
	}

	return NewLogger(os.Stderr, file, fileLevel, stderrLevel), file.Close
}

// NewLogger fans out to a text handler on stderr and a JSON handler on file.
func NewLogger(stderr, file io.Writer, fileLevel, stderrLevel slog.Level) *slog.Logger {
	return slog.New(slogmulti.Fanout(
		slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: stderrLevel}),
		slog.NewJSONHandler(file, &slog.HandlerOptions{Level: fileLevel}),
	))
}
