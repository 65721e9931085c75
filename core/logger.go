package core

// Logger is the application-wide logging contract. Implementations may mirror
// entries to an external error tracker; such mirroring is best-effort and must
// never fail the calling operation.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
