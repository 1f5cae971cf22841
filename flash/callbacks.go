package flash

// Progress describes one erase or program command that was just sent.
// Passed to ProgressCallback.
type Progress struct {
	// Operation is the command name, e.g. "sector erase" or "page program"
	Operation string

	// Address is the address the command targeted
	Address uint32

	// Unit is the 1-based index of the command within its batch
	Unit int

	// TotalUnits is the number of commands in the batch
	TotalUnits int

	// BytesWritten is the number of data bytes programmed so far (program only)
	BytesWritten int
}

// ProgressCallback is called synchronously from the driver. Implementations
// should return quickly.
type ProgressCallback func(Progress)

// Logger is an optional logging interface that can be provided to the driver.
// *slog.Logger satisfies it.
//
// Example with standard log package:
//
//	type StdLogger struct{}
//	func (l *StdLogger) Debug(msg string, kv ...interface{}) { log.Println(msg, kv) }
//	func (l *StdLogger) Info(msg string, kv ...interface{})  { log.Println(msg, kv) }
//	func (l *StdLogger) Error(msg string, kv ...interface{}) { log.Println(msg, kv) }
type Logger interface {
	// Debug logs a debug message with optional key-value pairs
	Debug(msg string, keysAndValues ...interface{})

	// Info logs an info message with optional key-value pairs
	Info(msg string, keysAndValues ...interface{})

	// Error logs an error message with optional key-value pairs
	Error(msg string, keysAndValues ...interface{})
}
