package engine

import "fmt"

// Status codes reported by the engine. The numbering follows the status
// convention of the storage engine family this machine is compatible with,
// so callers can match on well-known values.
const (
	StatusOK       = 0
	StatusError    = 1
	StatusAbort    = 4
	StatusBusy     = 5
	StatusNoMem    = 7
	StatusMismatch = 20
	StatusMisuse   = 21
	StatusRange    = 25
	StatusRow      = 100
	StatusDone     = 101
)

// Error is a failure reported by the engine. It carries the numeric status
// code and an optional human-readable message.
type Error struct {
	Code    int
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("engine error %d", e.Code)
	}
	return fmt.Sprintf("engine error %d: %s", e.Code, e.Message)
}

func errf(code int, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}
