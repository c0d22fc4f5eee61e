package docrender

import (
	"log/slog"
	"sync/atomic"

	"github.com/gogpu/docrender/internal/logx"
)

// loggerPtr stores the active logger. Accessed atomically so that
// SetLogger can be called concurrently with logging from any goroutine.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(logx.Nop())
}

// SetLogger configures the default logger for pipelines created after the
// call. By default, docrender produces no log output.
//
// SetLogger is safe for concurrent use: it stores the new logger atomically.
// Pass nil to disable logging (restore default silent behavior).
//
// Log levels used by docrender:
//   - [slog.LevelDebug]: per-batch diagnostics (dirty tile counts, redraws)
//     and skipped notifications (stale or unknown members)
//   - [slog.LevelInfo]: lifecycle events (pipeline created, canvas resized)
//
// Individual pipelines can override the logger with [WithLogger].
func SetLogger(l *slog.Logger) {
	loggerPtr.Store(logx.Or(l))
}

// Logger returns the current default logger.
// Logger is safe for concurrent use.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
