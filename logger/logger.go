package logger

// Logger provides a standardized logging interface for the throttler.
// It defines methods for different log levels (Debug, Info, Warn, Error)
// so users can plug in their preferred logging implementation
// (e.g., glog, logrus, zap, standard log) or use the provided Noop
// logger to disable logging entirely.
//
// The logger is used throughout the throttler for:
// - Admission decisions and pacing waits
// - Retry attempt tracking
// - Credential rotation events
// - Live rate-limit updates derived from responses
//
// Usage Example:
//
//	// Using with a custom logger implementation
//	t, err := throttler.New(apiKey, throttler.WithLogger(myLogger))
//
//	// Using with the bundled zap adapter
//	t, err := throttler.New(apiKey, throttler.WithLogger(logger.NewZap(zapLogger)))
//
//	// Disable logging entirely (the default)
//	t, err := throttler.New(apiKey, throttler.WithLogger(&logger.Noop{}))
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}
