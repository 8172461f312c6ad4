package vdbe

import (
	"errors"
	"testing"
)

// collectInts steps the program to completion, gathering column 0 of every
// row as an integer.
func collectInts(t *testing.T, p *Program) []int64 {
	t.Helper()
	var out []int64
	for {
		res, err := p.Step()
		if err != nil {
			t.Fatalf("Step: %v", err)
		}
		if res == StepDone {
			return out
		}
		out = append(out, p.ColumnInt64(0))
	}
}

func TestProgram_AddConstants(t *testing.T) {
	b := testBuilder(t)
	rLhs := b.AllocRegister()
	rRhs := b.AllocRegister()
	rSum := b.AllocRegister()

	mustAdd(t, b, Integer{Value: 10, Dest: rLhs})
	mustAdd(t, b, Integer{Value: 32, Dest: rRhs})
	mustAdd(t, b, Add{Lhs: rLhs, Rhs: rRhs, Dest: rSum})
	mustAdd(t, b, ResultRow{Start: rSum, Count: 1})
	mustAdd(t, b, Halt{})

	p := finishOK(t, b, 1)
	defer p.Finalize()

	rows := collectInts(t, p)
	if len(rows) != 1 || rows[0] != 42 {
		t.Errorf("rows = %v, want [42]", rows)
	}
	if !p.IsDone() {
		t.Error("IsDone should report true after completion")
	}
	// Stepping past done stays done.
	if res, err := p.Step(); err != nil || res != StepDone {
		t.Errorf("Step after done = (%v, %v)", res, err)
	}
}

func TestProgram_Fibonacci(t *testing.T) {
	b := testBuilder(t)
	rA := b.AllocRegister()
	rB := b.AllocRegister()
	rNext := b.AllocRegister()
	rCount := b.AllocRegister()

	mustAdd(t, b, Integer{Value: 0, Dest: rA})
	mustAdd(t, b, Integer{Value: 1, Dest: rB})
	mustAdd(t, b, Integer{Value: 10, Dest: rCount})
	mustAdd(t, b, ResultRow{Start: rA, Count: 1})
	mustAdd(t, b, AddImm{Dest: rCount, Value: -1})

	loop := b.MakeLabel()
	if err := b.ResolveLabel(loop); err != nil {
		t.Fatalf("ResolveLabel: %v", err)
	}
	mustAdd(t, b, ResultRow{Start: rB, Count: 1})
	mustAdd(t, b, Add{Lhs: rA, Rhs: rB, Dest: rNext})
	mustAdd(t, b, SCopy{Src: rB, Dest: rA})
	mustAdd(t, b, SCopy{Src: rNext, Dest: rB})
	mustAdd(t, b, AddImm{Dest: rCount, Value: -1})
	mustAdd(t, b, IfPos{Src: rCount, Target: loop})
	mustAdd(t, b, Halt{})

	p := finishOK(t, b, 1)
	defer p.Finalize()

	got := collectInts(t, p)
	want := []int64{0, 1, 1, 2, 3, 5, 8, 13, 21, 34}
	if len(got) != len(want) {
		t.Fatalf("got %d rows %v, want %v", len(got), got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("row %d = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestProgram_ConcatStrings(t *testing.T) {
	b := testBuilder(t)
	rLhs := b.AllocRegister()
	rRhs := b.AllocRegister()
	rOut := b.AllocRegister()

	mustAdd(t, b, String8{Value: "Hello, ", Dest: rLhs})
	mustAdd(t, b, String8{Value: "World!", Dest: rRhs})
	mustAdd(t, b, Concat{Lhs: rLhs, Rhs: rRhs, Dest: rOut})
	mustAdd(t, b, ResultRow{Start: rOut, Count: 1})
	mustAdd(t, b, Halt{})

	p := finishOK(t, b, 1)
	defer p.Finalize()

	res, err := p.Step()
	if err != nil || res != StepRow {
		t.Fatalf("Step = (%v, %v)", res, err)
	}
	if got := p.ColumnText(0); got != "Hello, World!" {
		t.Errorf("concat = %q, want %q", got, "Hello, World!")
	}
	if got := p.ColumnType(0); got != TypeText {
		t.Errorf("type = %v, want TEXT", got)
	}
}

func TestProgram_ResetRerunsIdentically(t *testing.T) {
	b := testBuilder(t)
	r := b.AllocRegister()
	mustAdd(t, b, Integer{Value: 7, Dest: r})
	mustAdd(t, b, ResultRow{Start: r, Count: 1})
	mustAdd(t, b, Halt{})

	p := finishOK(t, b, 1)
	defer p.Finalize()

	first := collectInts(t, p)
	if err := p.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if p.IsDone() {
		t.Error("IsDone should be false after Reset")
	}
	second := collectInts(t, p)
	if len(first) != 1 || len(second) != 1 || first[0] != second[0] {
		t.Errorf("runs differ: %v vs %v", first, second)
	}
}

func TestProgram_RegistersSurviveReset(t *testing.T) {
	b := testBuilder(t)
	rIn := b.AllocRegister()
	rOut := b.AllocRegister()
	mustAdd(t, b, Add{Lhs: rIn, Rhs: rIn, Dest: rOut})
	mustAdd(t, b, ResultRow{Start: rOut, Count: 1})
	mustAdd(t, b, Halt{})

	p := finishOK(t, b, 1)
	defer p.Finalize()

	if err := p.SetRegisterInt(rIn, 21); err != nil {
		t.Fatalf("SetRegisterInt: %v", err)
	}
	if rows := collectInts(t, p); len(rows) != 1 || rows[0] != 42 {
		t.Fatalf("first run = %v, want [42]", rows)
	}

	if err := p.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	// The seed survives the reset until overwritten.
	if got, err := p.RegisterInt(rIn); err != nil || got != 21 {
		t.Errorf("RegisterInt after reset = (%d, %v), want 21", got, err)
	}
	if err := p.SetRegisterInt(rIn, 50); err != nil {
		t.Fatalf("SetRegisterInt: %v", err)
	}
	if rows := collectInts(t, p); len(rows) != 1 || rows[0] != 100 {
		t.Errorf("second run = %v, want [100]", rows)
	}
}

func TestProgram_RegisterBounds(t *testing.T) {
	b := testBuilder(t)
	b.AllocRegister()
	mustAdd(t, b, Halt{})
	p := finishOK(t, b, 0)
	defer p.Finalize()

	if p.RegisterCount() != 1 {
		t.Fatalf("RegisterCount = %d, want 1", p.RegisterCount())
	}
	for _, reg := range []int{0, 2, -3} {
		if err := p.SetRegisterInt(reg, 1); !isKind(err, KindRegisterOutOfBounds) {
			t.Errorf("SetRegisterInt(%d) = %v, want register out of bounds", reg, err)
		}
		if _, err := p.RegisterInt(reg); !isKind(err, KindRegisterOutOfBounds) {
			t.Errorf("RegisterInt(%d) = %v, want register out of bounds", reg, err)
		}
		if _, err := p.IsRegisterNull(reg); !isKind(err, KindRegisterOutOfBounds) {
			t.Errorf("IsRegisterNull(%d) = %v, want register out of bounds", reg, err)
		}
	}

	if err := p.SetRegisterReal(1, 1.5); err != nil {
		t.Fatalf("SetRegisterReal: %v", err)
	}
	if got, err := p.RegisterReal(1); err != nil || got != 1.5 {
		t.Errorf("RegisterReal = (%v, %v), want 1.5", got, err)
	}
	if err := p.SetRegisterNull(1); err != nil {
		t.Fatalf("SetRegisterNull: %v", err)
	}
	if null, err := p.IsRegisterNull(1); err != nil || !null {
		t.Errorf("IsRegisterNull = (%v, %v), want true", null, err)
	}
}

func TestProgram_HaltWithErrorIsSticky(t *testing.T) {
	conn := testConn(t)
	b, err := conn.NewProgram()
	if err != nil {
		t.Fatalf("NewProgram: %v", err)
	}
	mustAdd(t, b, HaltWithError{ErrorCode: 1, OnError: 0})
	p := finishOK(t, b, 0)
	defer p.Finalize()

	if _, err := p.Step(); !isKind(err, KindEngine) {
		t.Fatalf("Step = %v, want engine error", err)
	}
	if _, err := p.Step(); err == nil {
		t.Error("expected sticky error on re-step")
	}
	if !p.IsDone() {
		t.Error("faulted program should report done")
	}
	if conn.LastError() == nil {
		t.Error("connection should record the error")
	}

	// Reset clears the fault.
	if err := p.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if p.IsDone() {
		t.Error("IsDone should be false after Reset")
	}
}

func TestProgram_HaltIfNull(t *testing.T) {
	b := testBuilder(t)
	r := b.AllocRegister()
	end := b.MakeLabel()

	// r is NULL, so execution halts with the error code instead of jumping.
	mustAdd(t, b, HaltIfNull{Src: r, ErrorCode: 5, Target: end})
	if err := b.ResolveLabel(end); err != nil {
		t.Fatalf("ResolveLabel: %v", err)
	}
	mustAdd(t, b, Halt{})

	p := finishOK(t, b, 0)
	defer p.Finalize()

	_, err := p.Step()
	if !isKind(err, KindEngine) {
		t.Fatalf("Step = %v, want engine error code 5", err)
	}
	var ve *Error
	if !errors.As(err, &ve) || ve.Code != 5 {
		t.Errorf("error code = %v, want 5", err)
	}
}

func TestProgram_ColumnValueDispatch(t *testing.T) {
	b := testBuilder(t)
	first := b.AllocRegisters(4)
	rInt, rReal, rText, rNull := first, first+1, first+2, first+3

	mustAdd(t, b, Int64{Value: 1 << 40, Dest: rInt})
	mustAdd(t, b, Real{Value: 2.5, Dest: rReal})
	mustAdd(t, b, String8{Value: "txt", Dest: rText})
	mustAdd(t, b, Null{Dest: rNull, Count: 1})
	mustAdd(t, b, ResultRow{Start: first, Count: 4})
	mustAdd(t, b, Halt{})

	p := finishOK(t, b, 4)
	defer p.Finalize()

	if res, err := p.Step(); err != nil || res != StepRow {
		t.Fatalf("Step = (%v, %v)", res, err)
	}
	if p.ColumnCount() != 4 {
		t.Fatalf("ColumnCount = %d, want 4", p.ColumnCount())
	}

	if v := p.ColumnValue(0); !v.IsInteger() {
		t.Errorf("col 0 = %v, want integer", v.Type())
	} else if got, _ := v.AsInteger(); got != 1<<40 {
		t.Errorf("col 0 = %d, want 2^40", got)
	}
	if v := p.ColumnValue(1); !v.IsReal() {
		t.Errorf("col 1 = %v, want real", v.Type())
	}
	if v := p.ColumnValue(2); !v.IsText() {
		t.Errorf("col 2 = %v, want text", v.Type())
	} else if got, _ := v.AsText(); got != "txt" {
		t.Errorf("col 2 = %q, want txt", got)
	}
	if v := p.ColumnValue(3); !v.IsNull() {
		t.Errorf("col 3 = %v, want NULL", v.Type())
	}
}

func TestProgram_FinalizedIsInert(t *testing.T) {
	b := testBuilder(t)
	mustAdd(t, b, Halt{})
	p := finishOK(t, b, 0)

	p.Finalize()
	p.Finalize() // idempotent

	if _, err := p.Step(); !isKind(err, KindInvalidState) {
		t.Errorf("Step after Finalize = %v, want invalid state", err)
	}
	if err := p.Reset(); !isKind(err, KindInvalidState) {
		t.Errorf("Reset after Finalize = %v, want invalid state", err)
	}
	if !p.IsDone() {
		t.Error("finalized program should report done")
	}
	if p.ColumnCount() != 0 || p.RegisterCount() != 0 {
		t.Error("finalized program should report zero geometry")
	}
}

func TestProgram_OnceGate(t *testing.T) {
	b := testBuilder(t)
	r := b.AllocRegister()
	skip := b.MakeLabel()

	mustAdd(t, b, Once{Target: skip})
	mustAdd(t, b, Integer{Value: 1, Dest: r}) // runs on first pass only
	if err := b.ResolveLabel(skip); err != nil {
		t.Fatalf("ResolveLabel: %v", err)
	}
	mustAdd(t, b, ResultRow{Start: r, Count: 1})
	mustAdd(t, b, Halt{})

	p := finishOK(t, b, 1)
	defer p.Finalize()

	if rows := collectInts(t, p); len(rows) != 1 || rows[0] != 1 {
		t.Fatalf("first run = %v, want [1]", rows)
	}
	// Reset clears the once-gate as well, so the store runs again.
	if err := p.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if err := p.SetRegisterInt(r, 0); err != nil {
		t.Fatalf("SetRegisterInt: %v", err)
	}
	if rows := collectInts(t, p); len(rows) != 1 || rows[0] != 1 {
		t.Errorf("second run = %v, want [1]", rows)
	}
}
