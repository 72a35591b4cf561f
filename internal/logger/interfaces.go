package logger

// LoggerInterface defines the interface for logging
type LoggerInterface interface {
	Info(msg any, keyvals ...any)
	Debug(msg any, keyvals ...any)
	Close() error
}

// NewLogger creates a new logger instance
func NewLogger(opts Options) (LoggerInterface, error) {
	logger := &Logger{}
	if err := logger.Init(opts); err != nil {
		return nil, err
	}
	return logger, nil
}

// Nop returns a logger that discards everything.
func Nop() LoggerInterface {
	return nop
}
