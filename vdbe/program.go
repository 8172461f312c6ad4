package vdbe

import (
	"github.com/el-yawd/sqlite-vdbe-sub000/engine"
)

// ---------------------------------------------------------------------------
// Program: stepwise execution
// ---------------------------------------------------------------------------

// StepResult classifies the outcome of one execution step.
type StepResult int

const (
	// StepRow means a result row is available through the Column accessors
	// until the next Step.
	StepRow StepResult = iota
	// StepDone means the program ran to completion. Further Steps keep
	// returning StepDone.
	StepDone
)

func (r StepResult) String() string {
	if r == StepRow {
		return "Row"
	}
	return "Done"
}

// Program is a prepared, executable program. It is produced by
// ProgramBuilder.Finish and released by Finalize. Step drives execution;
// between a StepRow and the next Step the Column accessors read the
// current result row.
type Program struct {
	conn      *Connection
	vm        *engine.Vdbe
	records   []InstructionRecord
	finalized bool
}

// Step runs the program until it yields a result row or completes. After
// an error the program is faulted: Step keeps returning the same error
// until Reset or Finalize.
func (p *Program) Step() (StepResult, error) {
	if p.finalized {
		return StepDone, kindErr(KindInvalidState, "program is finalized")
	}
	outcome, err := p.vm.Step()
	if err != nil {
		return StepDone, wrapEngine(err)
	}
	if outcome == engine.OutcomeRow {
		return StepRow, nil
	}
	return StepDone, nil
}

// IsDone reports whether the program has run to completion or faulted.
func (p *Program) IsDone() bool {
	if p.finalized {
		return true
	}
	return p.vm.Done()
}

// Reset rewinds the program so it can be stepped again from the start.
// Register contents survive the reset, so state seeded through the
// register accessors persists across runs; cursors, the fault flag, and
// once-gates are cleared.
func (p *Program) Reset() error {
	if p.finalized {
		return kindErr(KindInvalidState, "program is finalized")
	}
	p.vm.Reset()
	return nil
}

// ---------------------------------------------------------------------------
// Result columns
// ---------------------------------------------------------------------------
//
// The accessors are only meaningful between a StepRow and the next Step.
// Outside that window they report zero values and TypeNull, matching the
// engine's out-of-row behavior.

// ColumnCount returns the declared width of result rows.
func (p *Program) ColumnCount() int {
	if p.finalized {
		return 0
	}
	return p.vm.ColumnCount()
}

// ColumnType returns the runtime type of a column of the current row.
func (p *Program) ColumnType(idx int) ValueType {
	if p.finalized {
		return TypeNull
	}
	return ValueType(p.vm.ColumnType(idx))
}

// ColumnInt reads a column as an int, truncating wider values.
func (p *Program) ColumnInt(idx int) int {
	return int(p.ColumnInt64(idx))
}

// ColumnInt64 reads a column as a 64-bit integer, coercing if needed.
func (p *Program) ColumnInt64(idx int) int64 {
	if p.finalized {
		return 0
	}
	return p.vm.ColumnInt(idx)
}

// ColumnReal reads a column as a float, coercing if needed.
func (p *Program) ColumnReal(idx int) float64 {
	if p.finalized {
		return 0
	}
	return p.vm.ColumnReal(idx)
}

// ColumnText reads a column as text. Numbers render in their canonical
// decimal form; NULL reads as the empty string.
func (p *Program) ColumnText(idx int) string {
	if p.finalized {
		return ""
	}
	return p.vm.ColumnText(idx)
}

// ColumnBlob reads a column as bytes. Only blob columns yield data.
func (p *Program) ColumnBlob(idx int) []byte {
	if p.finalized {
		return nil
	}
	return p.vm.ColumnBlob(idx)
}

// ColumnValue reads a column as a dynamically typed Value, dispatching on
// the column's runtime type tag.
func (p *Program) ColumnValue(idx int) Value {
	switch p.ColumnType(idx) {
	case TypeInteger:
		return IntValue(p.ColumnInt64(idx))
	case TypeFloat:
		return RealValue(p.ColumnReal(idx))
	case TypeText:
		return TextValue(p.ColumnText(idx))
	case TypeBlob:
		return BlobValue(p.ColumnBlob(idx))
	default:
		return NullValue()
	}
}

// ---------------------------------------------------------------------------
// Register access
// ---------------------------------------------------------------------------
//
// Registers can be read and seeded directly, which combined with
// register-preserving Reset lets a caller parameterize successive runs of
// the same program. Ids outside 1..RegisterCount report an out-of-bounds
// error.

// RegisterCount returns the size of the register file.
func (p *Program) RegisterCount() int {
	if p.finalized {
		return 0
	}
	return p.vm.MemCount()
}

// CursorCount returns the number of cursor slots in the execution frame.
func (p *Program) CursorCount() int {
	if p.finalized {
		return 0
	}
	return p.vm.CursorCount()
}

// SetRegisterInt stores an integer into a register.
func (p *Program) SetRegisterInt(reg int, val int64) error {
	if p.finalized {
		return kindErr(KindInvalidState, "program is finalized")
	}
	return wrapEngine(p.vm.SetMemInt(reg, val))
}

// SetRegisterReal stores a float into a register.
func (p *Program) SetRegisterReal(reg int, val float64) error {
	if p.finalized {
		return kindErr(KindInvalidState, "program is finalized")
	}
	return wrapEngine(p.vm.SetMemReal(reg, val))
}

// SetRegisterNull clears a register to NULL.
func (p *Program) SetRegisterNull(reg int) error {
	if p.finalized {
		return kindErr(KindInvalidState, "program is finalized")
	}
	return wrapEngine(p.vm.SetMemNull(reg))
}

// RegisterInt reads a register as a 64-bit integer.
func (p *Program) RegisterInt(reg int) (int64, error) {
	if p.finalized {
		return 0, kindErr(KindInvalidState, "program is finalized")
	}
	v, err := p.vm.MemInt(reg)
	return v, wrapEngine(err)
}

// RegisterReal reads a register as a float.
func (p *Program) RegisterReal(reg int) (float64, error) {
	if p.finalized {
		return 0, kindErr(KindInvalidState, "program is finalized")
	}
	v, err := p.vm.MemReal(reg)
	return v, wrapEngine(err)
}

// IsRegisterNull reports whether a register holds NULL.
func (p *Program) IsRegisterNull(reg int) (bool, error) {
	if p.finalized {
		return false, kindErr(KindInvalidState, "program is finalized")
	}
	v, err := p.vm.MemIsNull(reg)
	return v, wrapEngine(err)
}

// ---------------------------------------------------------------------------
// Introspection and teardown
// ---------------------------------------------------------------------------

// Instructions returns the program listing. The slice is a copy; mutating
// it does not affect execution.
func (p *Program) Instructions() []InstructionRecord {
	out := make([]InstructionRecord, len(p.records))
	copy(out, p.records)
	return out
}

// Finalize releases the program's engine handle. Finalizing twice is
// harmless; every other method on a finalized program reports an
// invalid-state error or a zero value.
func (p *Program) Finalize() {
	if p == nil || p.finalized {
		return
	}
	p.vm.Finalize()
	p.finalized = true
}
