package errors

import (
	"go.uber.org/zap"
)

// LogHandler is an ErrorHandler that writes structured log entries.
type LogHandler struct {
	// Verbose enables stack traces in log entries.
	Verbose bool

	logger *zap.Logger
}

// NewLogHandler returns a LogHandler writing to logger.
// A nil logger is replaced by a production logger writing to stderr.
func NewLogHandler(logger *zap.Logger, verbose bool) *LogHandler {
	if logger == nil {
		logger = defaultLogger()
	}
	return &LogHandler{Verbose: verbose, logger: logger}
}

func defaultLogger() *zap.Logger {
	logger, err := zap.NewProduction()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// Logger returns the underlying zap logger.
func (h *LogHandler) Logger() *zap.Logger {
	if h.logger == nil {
		h.logger = defaultLogger()
	}
	return h.logger
}

// HandleError logs a StateError.
func (h *LogHandler) HandleError(err *StateError) {
	if err == nil {
		return
	}
	fields := []zap.Field{
		zap.String("op", err.Op),
		zap.Stringer("kind", err.Kind),
		zap.Error(err.Err),
		zap.Time("at", err.Timestamp),
	}
	if err.Container != "" {
		fields = append(fields, zap.String("container", err.Container))
	}
	if h.Verbose && err.StackTrace != "" {
		fields = append(fields, zap.String("stack", err.StackTrace))
	}
	h.Logger().Error("statekit error", fields...)
}
