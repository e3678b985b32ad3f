package scanner

import "time"

// Logger is the narrow logging surface the scanner needs.
type Logger interface {
	Error(msg string, context ...interface{})
	Warn(msg string, context ...interface{})
	Info(msg string, context ...interface{})
	Debug(msg string, context ...interface{})
	WarnRateLimited(key string, interval time.Duration, msg string, context ...interface{})
}

// Global logger for the scanner package
var scanLogger Logger

// SetLogger sets the logger for the scanner package
func SetLogger(logger Logger) {
	scanLogger = logger
}
