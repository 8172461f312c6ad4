package vdbe

import (
	"errors"
	"fmt"

	"github.com/el-yawd/sqlite-vdbe-sub000/engine"
)

// ---------------------------------------------------------------------------
// Error taxonomy
// ---------------------------------------------------------------------------

// ErrorKind classifies a failure of this layer or of the engine beneath it.
type ErrorKind int

const (
	// KindEngine: the engine returned a non-success status. Code and
	// Message carry the engine's report.
	KindEngine ErrorKind = iota + 1
	// KindInvalidPath: the session target path is not representable.
	KindInvalidPath
	// KindAllocationFailed: an external handle could not be created.
	KindAllocationFailed
	// KindInvalidState: an operation was invoked in the wrong lifecycle
	// phase (consumed builder, finalized program).
	KindInvalidState
	// KindRegisterOutOfBounds: a register id exceeds the allocated count.
	KindRegisterOutOfBounds
	// KindCursorOutOfBounds: a cursor id exceeds the allocated count.
	KindCursorOutOfBounds
	// KindInvalidOpcode: a raw numeric opcode outside the pinned table.
	KindInvalidOpcode
)

func (k ErrorKind) String() string {
	switch k {
	case KindEngine:
		return "engine error"
	case KindInvalidPath:
		return "invalid path"
	case KindAllocationFailed:
		return "allocation failed"
	case KindInvalidState:
		return "invalid state"
	case KindRegisterOutOfBounds:
		return "register out of bounds"
	case KindCursorOutOfBounds:
		return "cursor out of bounds"
	case KindInvalidOpcode:
		return "invalid opcode"
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Error is the single error type of this layer. Engine failures carry the
// engine's numeric code and message; everything renders as one descriptive
// line.
type Error struct {
	Kind    ErrorKind
	Code    int    // engine status code, when Kind is KindEngine
	Message string // optional detail
}

func (e *Error) Error() string {
	switch {
	case e.Kind == KindEngine && e.Message != "":
		return fmt.Sprintf("%s (%d): %s", e.Kind, e.Code, e.Message)
	case e.Kind == KindEngine:
		return fmt.Sprintf("%s (%d)", e.Kind, e.Code)
	case e.Message != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	default:
		return e.Kind.String()
	}
}

// Is matches against another *Error by kind, so callers can write
// errors.Is(err, &vdbe.Error{Kind: vdbe.KindInvalidState}).
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Kind == t.Kind && (t.Code == 0 || e.Code == t.Code)
}

func kindErr(kind ErrorKind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// wrapEngine converts an engine error, mapping range faults onto the
// register-out-of-bounds kind so callers see one taxonomy.
func wrapEngine(err error) error {
	if err == nil {
		return nil
	}
	var ee *engine.Error
	if errors.As(err, &ee) {
		kind := KindEngine
		if ee.Code == engine.StatusRange {
			kind = KindRegisterOutOfBounds
		}
		return &Error{Kind: kind, Code: ee.Code, Message: ee.Message}
	}
	return &Error{Kind: KindEngine, Message: err.Error()}
}
