package vdbe

import (
	"github.com/el-yawd/sqlite-vdbe-sub000/engine"
)

// ---------------------------------------------------------------------------
// Program builder
// ---------------------------------------------------------------------------

// ProgramBuilder assembles one program: it allocates registers and cursors,
// appends typed instructions, and manages forward-reference labels. Finish
// consumes the builder and yields the executable Program; every method
// after that reports an invalid-state error.
type ProgramBuilder struct {
	conn *Connection
	vm   *engine.Vdbe

	nReg    int // registers handed out; ids are 1..nReg
	nCursor int // cursors handed out; ids are 0..nCursor-1

	// labelAddr maps resolved label tokens to their bound address so that
	// instructions appended after resolution get the address directly.
	labelAddr map[int]int

	// maxCursorRef is the largest cursor id any appended instruction
	// names; checked against nCursor when the program is finished.
	maxCursorRef int
	cursorRef    bool

	records  []InstructionRecord
	consumed bool
}

func (b *ProgramBuilder) live() error {
	if b == nil || b.vm == nil {
		return kindErr(KindInvalidState, "builder is not initialized")
	}
	if b.consumed {
		return kindErr(KindInvalidState, "builder has already been consumed")
	}
	return nil
}

// AllocRegister hands out the next free register. Register ids are 1-based
// and monotonically increasing; register 0 is reserved.
func (b *ProgramBuilder) AllocRegister() int {
	b.nReg++
	return b.nReg
}

// AllocRegisters hands out n consecutive registers and returns the first.
func (b *ProgramBuilder) AllocRegisters(n int) int {
	first := b.nReg + 1
	b.nReg += n
	return first
}

// RegisterCount returns how many registers have been allocated.
func (b *ProgramBuilder) RegisterCount() int { return b.nReg }

// AllocCursor hands out the next free cursor slot. Cursor ids are 0-based.
func (b *ProgramBuilder) AllocCursor() int {
	id := b.nCursor
	b.nCursor++
	return id
}

// CursorCount returns how many cursor slots have been allocated.
func (b *ProgramBuilder) CursorCount() int { return b.nCursor }

// Add appends one instruction and returns its address.
func (b *ProgramBuilder) Add(in Insn) (int, error) {
	return b.AddComment(in, "")
}

// AddComment appends one instruction with a display comment attached to its
// listing row. The comment has no effect on execution.
func (b *ProgramBuilder) AddComment(in Insn, comment string) (int, error) {
	if err := b.live(); err != nil {
		return 0, err
	}
	e, err := encode(in)
	if err != nil {
		return 0, err
	}

	// Labels already bound resolve immediately; unresolved tokens pass
	// through and are patched when ResolveLabel runs.
	e.p1 = b.labelOrAddr(e.p1)
	e.p2 = b.labelOrAddr(e.p2)
	e.p3 = b.labelOrAddr(e.p3)

	if isCursorInsn(in) {
		b.cursorRef = true
		if e.p1 > b.maxCursorRef {
			b.maxCursorRef = e.p1
		}
	}

	var addr int
	switch e.p4.Kind {
	case P4KindNone:
		addr = b.vm.AddOp(int(e.op), e.p1, e.p2, e.p3)
	case P4KindInt:
		addr = b.vm.AddOp4Int(int(e.op), e.p1, e.p2, e.p3, int(e.p4.Int))
	case P4KindInt64:
		addr = b.vm.AddOp4Int64(int(e.op), e.p1, e.p2, e.p3, e.p4.Int)
	case P4KindReal:
		addr = b.vm.AddOp4Real(int(e.op), e.p1, e.p2, e.p3, e.p4.Real)
	case P4KindString:
		addr = b.vm.AddOp4String(int(e.op), e.p1, e.p2, e.p3, e.p4.Str)
	}
	if e.p5 != 0 {
		b.vm.ChangeP5(e.p5)
	}

	b.records = append(b.records, InstructionRecord{
		Addr:    addr,
		Opcode:  e.op,
		P1:      e.p1,
		P2:      e.p2,
		P3:      e.p3,
		P4:      e.p4,
		P5:      e.p5,
		Comment: comment,
	})
	return addr, nil
}

func (b *ProgramBuilder) labelOrAddr(operand int) int {
	if operand < 0 {
		if addr, ok := b.labelAddr[operand]; ok {
			return addr
		}
	}
	return operand
}

// CurrentAddr returns the address the next instruction will occupy.
func (b *ProgramBuilder) CurrentAddr() int {
	if b.vm == nil {
		return 0
	}
	return b.vm.CurrentAddr()
}

// OpCount returns how many instructions have been appended.
func (b *ProgramBuilder) OpCount() int {
	if b.vm == nil {
		return 0
	}
	return b.vm.OpCount()
}

// MakeLabel allocates a forward-reference token usable anywhere a jump
// target is expected. Tokens are negative and never collide with addresses.
func (b *ProgramBuilder) MakeLabel() int {
	if b.vm == nil {
		return 0
	}
	return b.vm.MakeLabel()
}

// ResolveLabel binds the label to the current address, patching every
// instruction that referenced it. Each label resolves at most once.
func (b *ProgramBuilder) ResolveLabel(label int) error {
	return b.ResolveLabelAt(label, b.CurrentAddr())
}

// ResolveLabelAt binds the label to an explicit address.
func (b *ProgramBuilder) ResolveLabelAt(label, addr int) error {
	if err := b.live(); err != nil {
		return err
	}
	if err := b.vm.ResolveLabel(label, addr); err != nil {
		return wrapEngine(err)
	}
	if b.labelAddr == nil {
		b.labelAddr = make(map[int]int)
	}
	b.labelAddr[label] = addr
	for i := range b.records {
		r := &b.records[i]
		if r.P1 == label {
			r.P1 = addr
		}
		if r.P2 == label {
			r.P2 = addr
		}
		if r.P3 == label {
			r.P3 = addr
		}
	}
	return nil
}

// JumpHere points the jump target of the instruction at addr to the current
// address. The usual pattern is a conditional jump whose target is known
// only after the loop body is emitted.
func (b *ProgramBuilder) JumpHere(addr int) error {
	if err := b.live(); err != nil {
		return err
	}
	here := b.CurrentAddr()
	b.vm.ChangeP2(addr, here)
	if addr >= 0 && addr < len(b.records) {
		b.records[addr].P2 = here
	}
	return nil
}

// ChangeP5 amends the flags word of the most recently appended instruction.
func (b *ProgramBuilder) ChangeP5(flags uint16) error {
	if err := b.live(); err != nil {
		return err
	}
	b.vm.ChangeP5(flags)
	if len(b.records) > 0 {
		b.records[len(b.records)-1].P5 = flags
	}
	return nil
}

// Finish consumes the builder and returns the executable program. The
// result-row width is declared here; the register file and cursor slots are
// sized from what the builder handed out. Finishing fails while any label
// remains unresolved or any instruction names a cursor that was never
// allocated.
func (b *ProgramBuilder) Finish(numColumns int) (*Program, error) {
	if err := b.live(); err != nil {
		return nil, err
	}
	if b.cursorRef && b.maxCursorRef >= b.nCursor {
		return nil, kindErr(KindCursorOutOfBounds,
			"instruction references cursor %d but only %d allocated", b.maxCursorRef, b.nCursor)
	}
	if err := b.vm.MakeReady(b.nReg, b.nCursor); err != nil {
		return nil, wrapEngine(err)
	}
	b.vm.SetNumCols(numColumns)

	p := &Program{
		conn:    b.conn,
		vm:      b.vm,
		records: b.records,
	}
	b.vm = nil
	b.records = nil
	b.consumed = true
	return p, nil
}

// Release abandons the build and frees the engine handle. Releasing a
// consumed or already-released builder is harmless.
func (b *ProgramBuilder) Release() {
	if b == nil || b.vm == nil {
		return
	}
	b.vm.Finalize()
	b.vm = nil
	b.records = nil
	b.consumed = true
}

// isCursorInsn reports whether the instruction's P1 names a cursor slot.
func isCursorInsn(in Insn) bool {
	switch in.(type) {
	case OpenRead, OpenWrite, OpenEphemeral, Close,
		Rewind, Next, Prev, Last,
		SeekGE, SeekGT, SeekLE, SeekLT, SeekRowid,
		Column, Rowid, NewRowid, Insert, Delete,
		NullRow, Sequence, IdxInsert, IdxDelete, IdxRowid:
		return true
	}
	return false
}
