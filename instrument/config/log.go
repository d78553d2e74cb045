package config

import (
	"io"
	"log/slog"
	"os"
)

var logger *slog.Logger

// Enabled reports whether SetupDebugLog installed a logger.
func Enabled() bool {
	return logger != nil
}

// SetupDebugLog wires up the pass's diagnostic logger from --log-debug (or
// the XGO_LOG_DEBUG-style AUGMENTUM_LOG_DEBUG environment variable as a
// fallback), the way xgo's instrument/config.SetupDebugLog does, but
// emitting structured log/slog records instead of hand-formatted lines.
func SetupDebugLog(option string) (func(), error) {
	if option == "" {
		option = os.Getenv("AUGMENTUM_LOG_DEBUG")
	}
	if option == "" || option == "disable" {
		return nil, nil
	}

	var w io.Writer
	var closer func()
	switch option {
	case "true", "stderr":
		w = os.Stderr
	case "stdout":
		w = os.Stdout
	default:
		f, err := os.Create(option)
		if err != nil {
			return nil, err
		}
		w = f
		closer = func() { f.Close() }
	}

	logger = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return closer, nil
}

// Debug logs a debug-level diagnostic if a logger has been set up. args
// are slog key/value pairs.
func Debug(msg string, args ...interface{}) {
	if logger == nil {
		return
	}
	logger.Debug(msg, args...)
}
