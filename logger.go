package barstore

import "log"

// StdLogger adapts the standard library's log.Logger to worker.Logger.
// No concrete logging library is pulled in for this — neither the
// teacher nor the rest of the retrieved pack settles on one for a
// background worker's error path — so this thin stdlib adapter is the
// default a caller opts into; Store itself logs nothing unless a Logger
// is supplied via WithLogger.
type StdLogger struct {
	*log.Logger
}

// NewStdLogger wraps l (or the standard logger if l is nil).
func NewStdLogger(l *log.Logger) StdLogger {
	if l == nil {
		l = log.Default()
	}
	return StdLogger{Logger: l}
}

// Errorf implements worker.Logger.
func (s StdLogger) Errorf(format string, args ...any) {
	s.Printf(format, args...)
}
