package engine

import (
	"errors"
	"testing"
)

func mustOpen(t *testing.T) *Conn {
	t.Helper()
	c, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return c
}

func mustNew(t *testing.T, c *Conn) *Vdbe {
	t.Helper()
	v, err := c.New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return v
}

func TestOpen_RejectsNulByte(t *testing.T) {
	_, err := Open("bad\x00path")
	if err == nil {
		t.Fatal("expected error for NUL byte in path")
	}
	var ee *Error
	if !errors.As(err, &ee) || ee.Code != StatusMisuse {
		t.Errorf("got %v, want misuse", err)
	}
}

func TestOpen_EmptyPathIsMemory(t *testing.T) {
	c, err := Open("")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if c.Path() != ":memory:" {
		t.Errorf("Path = %q, want :memory:", c.Path())
	}
}

func TestAddOp_ReturnsSequentialAddresses(t *testing.T) {
	c := mustOpen(t)
	v := mustNew(t, c)
	defer v.Finalize()

	for want := 0; want < 5; want++ {
		if got := v.AddOp(opNoop, 0, 0, 0); got != want {
			t.Fatalf("AddOp #%d returned address %d", want, got)
		}
	}
	if v.OpCount() != 5 {
		t.Errorf("OpCount = %d, want 5", v.OpCount())
	}
}

func TestStep_AddProgram(t *testing.T) {
	c := mustOpen(t)
	v := mustNew(t, c)
	defer v.Finalize()

	v.AddOp(opInteger, 10, 1, 0)
	v.AddOp(opInteger, 32, 2, 0)
	v.AddOp(opAdd, 1, 2, 3) // r3 = r2 + r1
	v.AddOp(opResultRow, 3, 1, 0)
	v.AddOp(opHalt, 0, 0, 0)

	if err := v.MakeReady(3, 0); err != nil {
		t.Fatalf("MakeReady: %v", err)
	}
	v.SetNumCols(1)

	outcome, err := v.Step()
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if outcome != OutcomeRow {
		t.Fatal("expected a result row")
	}
	if got := v.ColumnInt(0); got != 42 {
		t.Errorf("column 0 = %d, want 42", got)
	}
	if got := v.ColumnType(0); got != TypeInteger {
		t.Errorf("column type = %d, want integer", got)
	}

	outcome, err = v.Step()
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if outcome != OutcomeDone {
		t.Fatal("expected done after halt")
	}
	// Done is idempotent.
	if outcome, err = v.Step(); err != nil || outcome != OutcomeDone {
		t.Errorf("Step after done = (%v, %v), want (done, nil)", outcome, err)
	}
}

func TestStep_ImplicitHaltAtEnd(t *testing.T) {
	c := mustOpen(t)
	v := mustNew(t, c)
	defer v.Finalize()

	v.AddOp(opInteger, 7, 1, 0)
	if err := v.MakeReady(1, 0); err != nil {
		t.Fatalf("MakeReady: %v", err)
	}
	if outcome, err := v.Step(); err != nil || outcome != OutcomeDone {
		t.Fatalf("Step = (%v, %v), want done falling off the end", outcome, err)
	}
}

func TestHalt_WithErrorCodeFaults(t *testing.T) {
	c := mustOpen(t)
	v := mustNew(t, c)
	defer v.Finalize()

	v.AddOp(opHalt, StatusError, 0, 0)
	if err := v.MakeReady(0, 0); err != nil {
		t.Fatalf("MakeReady: %v", err)
	}
	_, err := v.Step()
	if err == nil {
		t.Fatal("expected halt error")
	}
	// The error is sticky and recorded on the connection.
	if _, err2 := v.Step(); err2 == nil {
		t.Error("expected sticky error on re-step")
	}
	if c.LastError() == nil {
		t.Error("expected connection to record the error")
	}
}

func TestLabels_ResolveAndPatch(t *testing.T) {
	c := mustOpen(t)
	v := mustNew(t, c)
	defer v.Finalize()

	label := v.MakeLabel()
	if label >= 0 {
		t.Fatalf("label token %d not negative", label)
	}
	v.AddOp(opGoto, 0, label, 0)
	v.AddOp(opNoop, 0, 0, 0)
	target := v.CurrentAddr()
	if err := v.ResolveLabel(label, target); err != nil {
		t.Fatalf("ResolveLabel: %v", err)
	}
	v.AddOp(opHalt, 0, 0, 0)

	if v.ops[0].p2 != target {
		t.Errorf("goto target = %d, want %d", v.ops[0].p2, target)
	}
	if err := v.ResolveLabel(label, target); err == nil {
		t.Error("expected error on double resolve")
	}
}

func TestMakeReady_RejectsUnresolvedLabel(t *testing.T) {
	c := mustOpen(t)
	v := mustNew(t, c)
	defer v.Finalize()

	label := v.MakeLabel()
	v.AddOp(opGoto, 0, label, 0)
	if err := v.MakeReady(0, 0); err == nil {
		t.Fatal("expected unresolved-label error")
	}
}

func TestReset_RetainsRegisters(t *testing.T) {
	c := mustOpen(t)
	v := mustNew(t, c)
	defer v.Finalize()

	// r2 = r1 + r1; the caller seeds r1 between runs.
	v.AddOp(opAdd, 1, 1, 2)
	v.AddOp(opResultRow, 2, 1, 0)
	v.AddOp(opHalt, 0, 0, 0)
	if err := v.MakeReady(2, 0); err != nil {
		t.Fatalf("MakeReady: %v", err)
	}

	if err := v.SetMemInt(1, 21); err != nil {
		t.Fatalf("SetMemInt: %v", err)
	}
	if outcome, err := v.Step(); err != nil || outcome != OutcomeRow {
		t.Fatalf("Step = (%v, %v)", outcome, err)
	}
	if got := v.ColumnInt(0); got != 42 {
		t.Errorf("first run = %d, want 42", got)
	}

	v.Reset()
	if err := v.SetMemInt(1, 50); err != nil {
		t.Fatalf("SetMemInt after reset: %v", err)
	}
	if outcome, err := v.Step(); err != nil || outcome != OutcomeRow {
		t.Fatalf("Step after reset = (%v, %v)", outcome, err)
	}
	if got := v.ColumnInt(0); got != 100 {
		t.Errorf("second run = %d, want 100", got)
	}
}

func TestRegisterAccess_BoundsChecked(t *testing.T) {
	c := mustOpen(t)
	v := mustNew(t, c)
	defer v.Finalize()

	v.AddOp(opHalt, 0, 0, 0)
	if err := v.MakeReady(2, 0); err != nil {
		t.Fatalf("MakeReady: %v", err)
	}

	for _, reg := range []int{0, 3, -1} {
		if err := v.SetMemInt(reg, 1); err == nil {
			t.Errorf("SetMemInt(%d) accepted out-of-range register", reg)
		}
		var ee *Error
		if err := v.SetMemNull(reg); !errors.As(err, &ee) || ee.Code != StatusRange {
			t.Errorf("SetMemNull(%d) = %v, want range error", reg, err)
		}
	}

	if err := v.SetMemReal(1, 2.5); err != nil {
		t.Fatalf("SetMemReal: %v", err)
	}
	if got, err := v.MemReal(1); err != nil || got != 2.5 {
		t.Errorf("MemReal = (%v, %v), want 2.5", got, err)
	}
	if null, err := v.MemIsNull(2); err != nil || !null {
		t.Errorf("MemIsNull(2) = (%v, %v), want true", null, err)
	}
}

func TestArith_NullPropagationAndDivZero(t *testing.T) {
	c := mustOpen(t)
	v := mustNew(t, c)
	defer v.Finalize()

	// r3 = r2 / r1 with r1 = 0, r4 = r2 + NULL.
	v.AddOp(opInteger, 0, 1, 0)
	v.AddOp(opInteger, 42, 2, 0)
	v.AddOp(opDivide, 1, 2, 3)
	v.AddOp(opAdd, 2, 5, 4) // r5 never written, stays NULL
	v.AddOp(opResultRow, 3, 2, 0)
	v.AddOp(opHalt, 0, 0, 0)
	if err := v.MakeReady(5, 0); err != nil {
		t.Fatalf("MakeReady: %v", err)
	}

	if outcome, err := v.Step(); err != nil || outcome != OutcomeRow {
		t.Fatalf("Step = (%v, %v)", outcome, err)
	}
	if got := v.ColumnType(0); got != TypeNull {
		t.Errorf("div by zero type = %d, want NULL", got)
	}
	if got := v.ColumnType(1); got != TypeNull {
		t.Errorf("NULL operand type = %d, want NULL", got)
	}
}

func TestComparison_JumpIfNullFlag(t *testing.T) {
	c := mustOpen(t)
	v := mustNew(t, c)
	defer v.Finalize()

	// r1 stays NULL. Without the flag, Eq falls through; with it, it jumps.
	v.AddOp(opInteger, 1, 2, 0)
	addr := v.AddOp(opEq, 1, 0, 2) // jump target patched below
	v.AddOp(opInteger, 100, 3, 0)  // fall-through marker
	v.AddOp(opResultRow, 3, 1, 0)
	v.AddOp(opHalt, 0, 0, 0)
	v.ChangeP2(addr, v.CurrentAddr())
	v.AddOp(opInteger, 200, 3, 0) // jump marker
	v.AddOp(opResultRow, 3, 1, 0)
	v.AddOp(opHalt, 0, 0, 0)

	if err := v.MakeReady(3, 0); err != nil {
		t.Fatalf("MakeReady: %v", err)
	}
	if _, err := v.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if got := v.ColumnInt(0); got != 100 {
		t.Errorf("NULL comparison without flag = %d, want fall-through 100", got)
	}

	// Same program with the jump-if-null flag set.
	v2 := mustNew(t, c)
	defer v2.Finalize()
	v2.AddOp(opInteger, 1, 2, 0)
	addr = v2.AddOp(opEq, 1, 0, 2)
	v2.ChangeP5(FlagJumpIfNull)
	v2.AddOp(opInteger, 100, 3, 0)
	v2.AddOp(opResultRow, 3, 1, 0)
	v2.AddOp(opHalt, 0, 0, 0)
	v2.ChangeP2(addr, v2.CurrentAddr())
	v2.AddOp(opInteger, 200, 3, 0)
	v2.AddOp(opResultRow, 3, 1, 0)
	v2.AddOp(opHalt, 0, 0, 0)

	if err := v2.MakeReady(3, 0); err != nil {
		t.Fatalf("MakeReady: %v", err)
	}
	if _, err := v2.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if got := v2.ColumnInt(0); got != 200 {
		t.Errorf("NULL comparison with flag = %d, want jump 200", got)
	}
}

func TestCoroutine_YieldsBodyFromP3(t *testing.T) {
	c := mustOpen(t)
	v := mustNew(t, c)
	defer v.Finalize()

	// Coroutine body at 1..5 yields 11 then 22; the caller loop at 6..8
	// pulls values until EndCoroutine jumps to the caller Yield's P2.
	v.AddOp(opInitCoroutine, 1, 6, 1)
	v.AddOp(opInteger, 11, 2, 0) // first body instruction, address P3
	v.AddOp(opYield, 1, 0, 0)
	v.AddOp(opInteger, 22, 2, 0)
	v.AddOp(opYield, 1, 0, 0)
	v.AddOp(opEndCoroutine, 1, 0, 0)
	v.AddOp(opYield, 1, 9, 0) // caller: P2 is the end-of-loop target
	v.AddOp(opResultRow, 2, 1, 0)
	v.AddOp(opGoto, 0, 6, 0)
	v.AddOp(opHalt, 0, 0, 0)

	if err := v.MakeReady(2, 0); err != nil {
		t.Fatalf("MakeReady: %v", err)
	}

	var got []int64
	for {
		outcome, err := v.Step()
		if err != nil {
			t.Fatalf("Step: %v", err)
		}
		if outcome == OutcomeDone {
			break
		}
		got = append(got, v.ColumnInt(0))
	}
	want := []int64{11, 22}
	if len(got) != len(want) {
		t.Fatalf("rows = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("row %d = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestSequence_StartsAtZero(t *testing.T) {
	c := mustOpen(t)
	v := mustNew(t, c)
	defer v.Finalize()

	v.AddOp(opOpenEphemeral, 0, 1, 0)
	v.AddOp(opSequence, 0, 1, 0)
	v.AddOp(opSequence, 0, 2, 0)
	v.AddOp(opResultRow, 1, 2, 0)
	v.AddOp(opHalt, 0, 0, 0)
	if err := v.MakeReady(2, 1); err != nil {
		t.Fatalf("MakeReady: %v", err)
	}
	if _, err := v.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if got := v.ColumnInt(0); got != 0 {
		t.Errorf("first sequence value = %d, want 0", got)
	}
	if got := v.ColumnInt(1); got != 1 {
		t.Errorf("second sequence value = %d, want 1", got)
	}
}

func TestConcat_TextRendering(t *testing.T) {
	c := mustOpen(t)
	v := mustNew(t, c)
	defer v.Finalize()

	v.AddOp4String(opString8, 0, 1, 0, "Hello, ")
	v.AddOp4String(opString8, 0, 2, 0, "World!")
	// Concat computes P3 = P2 || P1, so P1 holds the right-hand side.
	v.AddOp(opConcat, 2, 1, 3)
	v.AddOp(opResultRow, 3, 1, 0)
	v.AddOp(opHalt, 0, 0, 0)
	if err := v.MakeReady(3, 0); err != nil {
		t.Fatalf("MakeReady: %v", err)
	}
	if _, err := v.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if got := v.ColumnText(0); got != "Hello, World!" {
		t.Errorf("concat = %q, want %q", got, "Hello, World!")
	}
}

func TestEphemeralTable_InsertScanDelete(t *testing.T) {
	c := mustOpen(t)
	v := mustNew(t, c)
	defer v.Finalize()

	// Insert rowids 3, 1, 2 and scan back in rowid order.
	v.AddOp(opOpenEphemeral, 0, 2, 0)
	for _, rowid := range []int{3, 1, 2} {
		v.AddOp(opInteger, rowid*10, 1, 0) // payload
		v.AddOp(opMakeRecord, 1, 1, 2)
		v.AddOp(opInteger, rowid, 3, 0)
		v.AddOp(opInsert, 0, 2, 3)
	}
	scan := v.MakeLabel()
	done := v.MakeLabel()
	v.AddOp(opRewind, 0, done, 0)
	if err := v.ResolveLabel(scan, v.CurrentAddr()); err != nil {
		t.Fatalf("ResolveLabel: %v", err)
	}
	v.AddOp(opRowid, 0, 4, 0)
	v.AddOp(opColumn, 0, 0, 5)
	v.AddOp(opResultRow, 4, 2, 0)
	v.AddOp(opNext, 0, scan, 0)
	if err := v.ResolveLabel(done, v.CurrentAddr()); err != nil {
		t.Fatalf("ResolveLabel: %v", err)
	}
	v.AddOp(opHalt, 0, 0, 0)

	if err := v.MakeReady(5, 1); err != nil {
		t.Fatalf("MakeReady: %v", err)
	}

	var rowids, payloads []int64
	for {
		outcome, err := v.Step()
		if err != nil {
			t.Fatalf("Step: %v", err)
		}
		if outcome == OutcomeDone {
			break
		}
		rowids = append(rowids, v.ColumnInt(0))
		payloads = append(payloads, v.ColumnInt(1))
	}
	wantRowids := []int64{1, 2, 3}
	wantPayloads := []int64{10, 20, 30}
	if len(rowids) != 3 {
		t.Fatalf("got %d rows, want 3", len(rowids))
	}
	for i := range wantRowids {
		if rowids[i] != wantRowids[i] || payloads[i] != wantPayloads[i] {
			t.Errorf("row %d = (%d, %d), want (%d, %d)",
				i, rowids[i], payloads[i], wantRowids[i], wantPayloads[i])
		}
	}
}

func TestSeekGE_PositionsAndJumps(t *testing.T) {
	c := mustOpen(t)
	v := mustNew(t, c)
	defer v.Finalize()

	v.AddOp(opOpenEphemeral, 0, 1, 0)
	for _, rowid := range []int{10, 20, 30} {
		v.AddOp(opInteger, rowid, 1, 0)
		v.AddOp(opMakeRecord, 1, 1, 2)
		v.AddOp(opInteger, rowid, 3, 0)
		v.AddOp(opInsert, 0, 2, 3)
	}
	miss := v.MakeLabel()
	v.AddOp(opInteger, 15, 4, 0)
	v.AddOp(opSeekGE, 0, miss, 4)
	v.AddOp(opRowid, 0, 5, 0)
	v.AddOp(opResultRow, 5, 1, 0)
	v.AddOp(opHalt, 0, 0, 0)
	if err := v.ResolveLabel(miss, v.CurrentAddr()); err != nil {
		t.Fatalf("ResolveLabel: %v", err)
	}
	v.AddOp(opInteger, -1, 5, 0)
	v.AddOp(opResultRow, 5, 1, 0)
	v.AddOp(opHalt, 0, 0, 0)

	if err := v.MakeReady(5, 1); err != nil {
		t.Fatalf("MakeReady: %v", err)
	}
	if _, err := v.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if got := v.ColumnInt(0); got != 20 {
		t.Errorf("SeekGE(15) landed on rowid %d, want 20", got)
	}
}

func TestSharedTables_VisibleAcrossPrograms(t *testing.T) {
	c := mustOpen(t)

	w := mustNew(t, c)
	w.AddOp(opOpenWrite, 0, 2, 0) // root page 2
	w.AddOp(opInteger, 99, 1, 0)
	w.AddOp(opMakeRecord, 1, 1, 2)
	w.AddOp(opNewRowid, 0, 3, 0)
	w.AddOp(opInsert, 0, 2, 3)
	w.AddOp(opHalt, 0, 0, 0)
	if err := w.MakeReady(3, 1); err != nil {
		t.Fatalf("MakeReady: %v", err)
	}
	if _, err := w.Step(); err != nil {
		t.Fatalf("writer Step: %v", err)
	}
	w.Finalize()

	r := mustNew(t, c)
	defer r.Finalize()
	done := r.MakeLabel()
	r.AddOp(opOpenRead, 0, 2, 0)
	r.AddOp(opRewind, 0, done, 0)
	r.AddOp(opColumn, 0, 0, 1)
	r.AddOp(opResultRow, 1, 1, 0)
	if err := r.ResolveLabel(done, r.CurrentAddr()); err != nil {
		t.Fatalf("ResolveLabel: %v", err)
	}
	r.AddOp(opHalt, 0, 0, 0)
	if err := r.MakeReady(1, 1); err != nil {
		t.Fatalf("MakeReady: %v", err)
	}
	outcome, err := r.Step()
	if err != nil {
		t.Fatalf("reader Step: %v", err)
	}
	if outcome != OutcomeRow {
		t.Fatal("reader saw no rows in shared table")
	}
	if got := r.ColumnInt(0); got != 99 {
		t.Errorf("shared value = %d, want 99", got)
	}
}

func TestFinalize_Idempotent(t *testing.T) {
	c := mustOpen(t)
	v := mustNew(t, c)
	v.AddOp(opHalt, 0, 0, 0)
	if err := v.MakeReady(0, 0); err != nil {
		t.Fatalf("MakeReady: %v", err)
	}
	v.Finalize()
	v.Finalize()
	if _, err := v.Step(); err == nil {
		t.Error("expected error stepping a finalized program")
	}
}

func TestCellCompare_TypeOrdering(t *testing.T) {
	null := cell{}
	i := intCell(5)
	r := realCell(5.5)
	s := textCell("abc")
	b := blobCell([]byte{1})

	pairs := []struct {
		name string
		lo   cell
		hi   cell
	}{
		{"null<int", null, i},
		{"int<text", i, s},
		{"real<text", r, s},
		{"text<blob", s, b},
	}
	for _, p := range pairs {
		if got := compareCells(&p.lo, &p.hi); got >= 0 {
			t.Errorf("%s: compare = %d, want negative", p.name, got)
		}
		if got := compareCells(&p.hi, &p.lo); got <= 0 {
			t.Errorf("%s reversed: compare = %d, want positive", p.name, got)
		}
	}

	if got := compareCells(&i, &r); got >= 0 {
		t.Errorf("5 vs 5.5: compare = %d, want negative", got)
	}
}
