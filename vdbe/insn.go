package vdbe

// ---------------------------------------------------------------------------
// Instruction catalog
// ---------------------------------------------------------------------------
//
// Each instruction variant carries its operands as named, typed fields. The
// encoder (encode.go) maps every variant onto the engine's canonical
// five-slot representation; callers never touch p1..p5 directly except
// through the Raw escape variant.
//
// Register operands are 1-based (register 0 is reserved), cursor operands
// are 0-based, and jump targets are instruction addresses. A Label may be
// used anywhere a target is expected.

// Insn is one typed virtual-machine instruction. The set of variants is
// closed; use Raw for engine opcodes that have no named wrapper yet.
type Insn interface {
	// Op returns the pinned engine opcode this instruction encodes to.
	Op() Opcode
	isInsn()
}

// insn is embedded by every variant to seal the interface.
type insn struct{}

func (insn) isInsn() {}

// P4Kind selects the auxiliary payload type of a Raw instruction.
type P4Kind uint8

const (
	P4KindNone P4Kind = iota
	P4KindInt
	P4KindInt64
	P4KindReal
	P4KindString
)

// P4 is the variably-typed auxiliary operand. The zero P4 is "no payload".
type P4 struct {
	Kind P4Kind
	Int  int64
	Real float64
	Str  string
}

// P4Int wraps a small integer payload.
func P4Int(v int) P4 { return P4{Kind: P4KindInt, Int: int64(v)} }

// P4Int64 wraps a 64-bit integer payload.
func P4Int64(v int64) P4 { return P4{Kind: P4KindInt64, Int: v} }

// P4Real wraps a 64-bit float payload.
func P4Real(v float64) P4 { return P4{Kind: P4KindReal, Real: v} }

// P4String wraps an owned string payload. It is deep-copied into
// engine-owned memory at append time.
func P4String(v string) P4 { return P4{Kind: P4KindString, Str: v} }

// ---------------------------------------------------------------------------
// Constants: load values into registers
// ---------------------------------------------------------------------------

// Integer loads a 32-bit integer constant: dest = value.
type Integer struct {
	insn
	Value int32
	Dest  int
}

// Int64 loads a 64-bit integer constant (carried in the auxiliary payload).
type Int64 struct {
	insn
	Value int64
	Dest  int
}

// Real loads a floating-point constant (carried in the auxiliary payload).
type Real struct {
	insn
	Value float64
	Dest  int
}

// String8 loads a UTF-8 string constant (carried in the auxiliary payload).
type String8 struct {
	insn
	Value string
	Dest  int
}

// Blob loads a binary constant (carried in the auxiliary payload).
type Blob struct {
	insn
	Value []byte
	Dest  int
}

// Null sets Count consecutive registers starting at Dest to NULL. Count of
// zero or one clears just Dest.
type Null struct {
	insn
	Dest  int
	Count int
}

// SoftNull sets a single register to NULL without disturbing a shared
// string or blob held by a copy.
type SoftNull struct {
	insn
	Dest int
}

// ---------------------------------------------------------------------------
// Arithmetic
// ---------------------------------------------------------------------------
//
// The engine evaluates the non-commutative operators as "second operand OP
// first operand"; the encoder swaps Lhs/Rhs into the operand slots so the
// semantic result is always Lhs OP Rhs.

// Add computes dest = lhs + rhs. NULL if either operand is NULL.
type Add struct {
	insn
	Lhs, Rhs, Dest int
}

// Subtract computes dest = lhs - rhs.
type Subtract struct {
	insn
	Lhs, Rhs, Dest int
}

// Multiply computes dest = lhs * rhs.
type Multiply struct {
	insn
	Lhs, Rhs, Dest int
}

// Divide computes dest = lhs / rhs. NULL if rhs is zero.
type Divide struct {
	insn
	Lhs, Rhs, Dest int
}

// Remainder computes dest = lhs % rhs. NULL if rhs is zero.
type Remainder struct {
	insn
	Lhs, Rhs, Dest int
}

// Concat computes dest = lhs || rhs (text concatenation).
type Concat struct {
	insn
	Lhs, Rhs, Dest int
}

// ---------------------------------------------------------------------------
// Bitwise and logical
// ---------------------------------------------------------------------------

// BitAnd computes dest = lhs & rhs.
type BitAnd struct {
	insn
	Lhs, Rhs, Dest int
}

// BitOr computes dest = lhs | rhs.
type BitOr struct {
	insn
	Lhs, Rhs, Dest int
}

// ShiftLeft computes dest = lhs << rhs.
type ShiftLeft struct {
	insn
	Lhs, Rhs, Dest int
}

// ShiftRight computes dest = lhs >> rhs.
type ShiftRight struct {
	insn
	Lhs, Rhs, Dest int
}

// BitNot computes dest = ^src (one's complement).
type BitNot struct {
	insn
	Src, Dest int
}

// Not computes dest = !src as a boolean; NULL stays NULL.
type Not struct {
	insn
	Src, Dest int
}

// AddImm adds an immediate to a register in place: dest += value. The
// register is forced to integer.
type AddImm struct {
	insn
	Dest  int
	Value int
}

// ---------------------------------------------------------------------------
// Register copies
// ---------------------------------------------------------------------------

// Copy deep-copies Count registers starting at Src to registers starting at
// Dest.
type Copy struct {
	insn
	Src, Dest, Count int
}

// SCopy makes a shallow copy of one register.
type SCopy struct {
	insn
	Src, Dest int
}

// Move copies Count registers from Src to Dest, then sets the source
// registers to NULL.
type Move struct {
	insn
	Src, Dest, Count int
}

// IntCopy copies the integer value of one register.
type IntCopy struct {
	insn
	Src, Dest int
}

// ---------------------------------------------------------------------------
// Control flow
// ---------------------------------------------------------------------------

// Halt terminates execution normally.
type Halt struct{ insn }

// HaltWithError terminates with the given error code. OnError selects the
// engine's recovery behavior (0=nothing, 1=fail, 2=abort, 3=rollback).
type HaltWithError struct {
	insn
	ErrorCode int
	OnError   int
}

// HaltIfNull halts with ErrorCode if the register is NULL; otherwise jumps
// to Target (0 = fall through).
type HaltIfNull struct {
	insn
	Src       int
	ErrorCode int
	Target    int
}

// Goto jumps unconditionally.
type Goto struct {
	insn
	Target int
}

// Gosub stores the return address in ReturnReg and jumps to Target.
type Gosub struct {
	insn
	ReturnReg int
	Target    int
}

// Return jumps to the address stored in ReturnReg.
type Return struct {
	insn
	ReturnReg int
}

// If jumps to Target when the register is true (non-zero). JumpIfNull
// selects how a NULL register branches.
type If struct {
	insn
	Src        int
	Target     int
	JumpIfNull bool
}

// IfNot jumps to Target when the register is false (zero). JumpIfNull
// selects how a NULL register branches.
type IfNot struct {
	insn
	Src        int
	Target     int
	JumpIfNull bool
}

// IsNull jumps when the register is NULL.
type IsNull struct {
	insn
	Src    int
	Target int
}

// NotNull jumps when the register is not NULL.
type NotNull struct {
	insn
	Src    int
	Target int
}

// Once falls through on first execution and jumps to Target on every
// later pass.
type Once struct {
	insn
	Target int
}

// Jump branches three ways on the most recent comparison result.
type Jump struct {
	insn
	Neg, Zero, Pos int
}

// ---------------------------------------------------------------------------
// Comparisons: jump on lhs CMP rhs
// ---------------------------------------------------------------------------
//
// The engine's convention is "jump to p2 if p3 CMP p1": the encoder places
// Rhs in p1, Target in p2, and Lhs in p3.

// Eq jumps to Target if lhs == rhs.
type Eq struct {
	insn
	Lhs, Rhs, Target int
}

// Ne jumps to Target if lhs != rhs.
type Ne struct {
	insn
	Lhs, Rhs, Target int
}

// Lt jumps to Target if lhs < rhs.
type Lt struct {
	insn
	Lhs, Rhs, Target int
}

// Le jumps to Target if lhs <= rhs.
type Le struct {
	insn
	Lhs, Rhs, Target int
}

// Gt jumps to Target if lhs > rhs.
type Gt struct {
	insn
	Lhs, Rhs, Target int
}

// Ge jumps to Target if lhs >= rhs.
type Ge struct {
	insn
	Lhs, Rhs, Target int
}

// ---------------------------------------------------------------------------
// Register tests
// ---------------------------------------------------------------------------

// IfPos jumps to Target if the register is positive, subtracting Decrement
// from it first.
type IfPos struct {
	insn
	Src       int
	Target    int
	Decrement int
}

// IfNotZero jumps to Target if the register is non-zero, decrementing a
// positive value on the way.
type IfNotZero struct {
	insn
	Src    int
	Target int
}

// DecrJumpZero decrements the register, then jumps to Target if it reached
// zero.
type DecrJumpZero struct {
	insn
	Src    int
	Target int
}

// MustBeInt forces the register to integer, jumping to Target (or faulting
// when Target is zero) if the value cannot be represented.
type MustBeInt struct {
	insn
	Src    int
	Target int
}

// ---------------------------------------------------------------------------
// Result output
// ---------------------------------------------------------------------------

// ResultRow yields registers Start through Start+Count-1 as a result row
// and suspends execution until the next step.
type ResultRow struct {
	insn
	Start int
	Count int
}

// ---------------------------------------------------------------------------
// Cursor operations
// ---------------------------------------------------------------------------

// OpenRead opens a read-only cursor on the table rooted at RootPage.
type OpenRead struct {
	insn
	Cursor   int
	RootPage int
	DbNum    int
}

// OpenWrite opens a read/write cursor on the table rooted at RootPage.
type OpenWrite struct {
	insn
	Cursor   int
	RootPage int
	DbNum    int
}

// OpenEphemeral opens a cursor on a new transient table.
type OpenEphemeral struct {
	insn
	Cursor     int
	NumColumns int
}

// Close releases a cursor.
type Close struct {
	insn
	Cursor int
}

// Rewind positions the cursor at the first row, jumping to Target if the
// table is empty.
type Rewind struct {
	insn
	Cursor int
	Target int
}

// Next advances the cursor, jumping to Target if another row exists.
type Next struct {
	insn
	Cursor int
	Target int
}

// Prev retreats the cursor, jumping to Target if another row exists.
type Prev struct {
	insn
	Cursor int
	Target int
}

// Last positions the cursor at the final row, jumping to Target if the
// table is empty.
type Last struct {
	insn
	Cursor int
	Target int
}

// SeekGE positions the cursor at the first row with key >= the key
// register, jumping to Target when no row qualifies.
type SeekGE struct {
	insn
	Cursor    int
	Target    int
	Key       int
	NumFields int
}

// SeekGT positions the cursor at the first row with key > the key register.
type SeekGT struct {
	insn
	Cursor    int
	Target    int
	Key       int
	NumFields int
}

// SeekLE positions the cursor at the last row with key <= the key register.
type SeekLE struct {
	insn
	Cursor    int
	Target    int
	Key       int
	NumFields int
}

// SeekLT positions the cursor at the last row with key < the key register.
type SeekLT struct {
	insn
	Cursor    int
	Target    int
	Key       int
	NumFields int
}

// SeekRowid positions the cursor at the row with the exact rowid, jumping
// to Target when absent.
type SeekRowid struct {
	insn
	Cursor int
	Target int
	Rowid  int
}

// Column extracts one column of the cursor's current row into a register.
type Column struct {
	insn
	Cursor int
	Col    int
	Dest   int
}

// Rowid stores the current row's rowid into a register.
type Rowid struct {
	insn
	Cursor int
	Dest   int
}

// NewRowid computes an unused rowid for the cursor's table.
type NewRowid struct {
	insn
	Cursor    int
	Dest      int
	PrevRowid int
}

// Insert writes the record in Data under the rowid in RowidReg.
type Insert struct {
	insn
	Cursor   int
	Data     int
	RowidReg int
}

// Delete removes the row the cursor is positioned on.
type Delete struct {
	insn
	Cursor int
}

// NullRow puts the cursor into the null-row state: Column reads yield NULL.
type NullRow struct {
	insn
	Cursor int
}

// Sequence stores the next value of the cursor's internal counter.
type Sequence struct {
	insn
	Cursor int
	Dest   int
}

// MakeRecord packs Count registers starting at Start into a record value.
type MakeRecord struct {
	insn
	Start int
	Count int
	Dest  int
}

// ---------------------------------------------------------------------------
// Index operations
// ---------------------------------------------------------------------------

// IdxInsert inserts the key register into an index cursor.
type IdxInsert struct {
	insn
	Cursor int
	Key    int
}

// IdxDelete removes an entry from an index cursor.
type IdxDelete struct {
	insn
	Cursor    int
	Key       int
	NumFields int
}

// IdxRowid extracts the rowid from an index cursor's current entry.
type IdxRowid struct {
	insn
	Cursor int
	Dest   int
}

// ---------------------------------------------------------------------------
// Program structure, coroutines, aggregation, miscellany
// ---------------------------------------------------------------------------

// Init is conventionally the first instruction; execution begins at Target.
type Init struct {
	insn
	Target int
}

// InitCoroutine prepares the coroutine register and optionally jumps.
type InitCoroutine struct {
	insn
	Coroutine int
	Target    int
	End       int
}

// Yield swaps the program counter with the coroutine register.
type Yield struct {
	insn
	Coroutine int
}

// EndCoroutine jumps to the instruction after the caller's Yield.
type EndCoroutine struct {
	insn
	Coroutine int
}

// AggStep advances an aggregate accumulator by one input row.
type AggStep struct {
	insn
	FuncDef int
	Args    int
	Accum   int
	NumArgs int
}

// AggFinal extracts the final value of an aggregate accumulator.
type AggFinal struct {
	insn
	Accum   int
	NumArgs int
}

// Noop does nothing; useful as a patchable placeholder.
type Noop struct{ insn }

// Explain is a query-plan annotation; it executes as a no-op.
type Explain struct{ insn }

// Raw is the escape variant for opcodes without a named wrapper. The
// opcode must be part of the pinned table; appending a Raw with an unknown
// id is rejected with an invalid-opcode error.
type Raw struct {
	insn
	Opcode     Opcode
	P1, P2, P3 int
	P4         P4
	P5         uint16
}

// ---------------------------------------------------------------------------
// Opcode mapping
// ---------------------------------------------------------------------------

func (Integer) Op() Opcode       { return OpInteger }
func (Int64) Op() Opcode         { return OpInt64 }
func (Real) Op() Opcode          { return OpReal }
func (String8) Op() Opcode       { return OpString8 }
func (Blob) Op() Opcode          { return OpBlob }
func (Null) Op() Opcode          { return OpNull }
func (SoftNull) Op() Opcode      { return OpSoftNull }
func (Add) Op() Opcode           { return OpAdd }
func (Subtract) Op() Opcode      { return OpSubtract }
func (Multiply) Op() Opcode      { return OpMultiply }
func (Divide) Op() Opcode        { return OpDivide }
func (Remainder) Op() Opcode     { return OpRemainder }
func (Concat) Op() Opcode        { return OpConcat }
func (BitAnd) Op() Opcode        { return OpBitAnd }
func (BitOr) Op() Opcode         { return OpBitOr }
func (ShiftLeft) Op() Opcode     { return OpShiftLeft }
func (ShiftRight) Op() Opcode    { return OpShiftRight }
func (BitNot) Op() Opcode        { return OpBitNot }
func (Not) Op() Opcode           { return OpNot }
func (AddImm) Op() Opcode        { return OpAddImm }
func (Copy) Op() Opcode          { return OpCopy }
func (SCopy) Op() Opcode         { return OpSCopy }
func (Move) Op() Opcode          { return OpMove }
func (IntCopy) Op() Opcode       { return OpIntCopy }
func (Halt) Op() Opcode          { return OpHalt }
func (HaltWithError) Op() Opcode { return OpHalt }
func (HaltIfNull) Op() Opcode    { return OpHaltIfNull }
func (Goto) Op() Opcode          { return OpGoto }
func (Gosub) Op() Opcode         { return OpGosub }
func (Return) Op() Opcode        { return OpReturn }
func (If) Op() Opcode            { return OpIf }
func (IfNot) Op() Opcode         { return OpIfNot }
func (IsNull) Op() Opcode        { return OpIsNull }
func (NotNull) Op() Opcode       { return OpNotNull }
func (Once) Op() Opcode          { return OpOnce }
func (Jump) Op() Opcode          { return OpJump }
func (Eq) Op() Opcode            { return OpEq }
func (Ne) Op() Opcode            { return OpNe }
func (Lt) Op() Opcode            { return OpLt }
func (Le) Op() Opcode            { return OpLe }
func (Gt) Op() Opcode            { return OpGt }
func (Ge) Op() Opcode            { return OpGe }
func (IfPos) Op() Opcode         { return OpIfPos }
func (IfNotZero) Op() Opcode     { return OpIfNotZero }
func (DecrJumpZero) Op() Opcode  { return OpDecrJumpZero }
func (MustBeInt) Op() Opcode     { return OpMustBeInt }
func (ResultRow) Op() Opcode     { return OpResultRow }
func (OpenRead) Op() Opcode      { return OpOpenRead }
func (OpenWrite) Op() Opcode     { return OpOpenWrite }
func (OpenEphemeral) Op() Opcode { return OpOpenEphemeral }
func (Close) Op() Opcode         { return OpClose }
func (Rewind) Op() Opcode        { return OpRewind }
func (Next) Op() Opcode          { return OpNext }
func (Prev) Op() Opcode          { return OpPrev }
func (Last) Op() Opcode          { return OpLast }
func (SeekGE) Op() Opcode        { return OpSeekGE }
func (SeekGT) Op() Opcode        { return OpSeekGT }
func (SeekLE) Op() Opcode        { return OpSeekLE }
func (SeekLT) Op() Opcode        { return OpSeekLT }
func (SeekRowid) Op() Opcode     { return OpSeekRowid }
func (Column) Op() Opcode        { return OpColumn }
func (Rowid) Op() Opcode         { return OpRowid }
func (NewRowid) Op() Opcode      { return OpNewRowid }
func (Insert) Op() Opcode        { return OpInsert }
func (Delete) Op() Opcode        { return OpDelete }
func (NullRow) Op() Opcode       { return OpNullRow }
func (Sequence) Op() Opcode      { return OpSequence }
func (MakeRecord) Op() Opcode    { return OpMakeRecord }
func (IdxInsert) Op() Opcode     { return OpIdxInsert }
func (IdxDelete) Op() Opcode     { return OpIdxDelete }
func (IdxRowid) Op() Opcode      { return OpIdxRowid }
func (Init) Op() Opcode          { return OpInit }
func (InitCoroutine) Op() Opcode { return OpInitCoroutine }
func (Yield) Op() Opcode         { return OpYield }
func (EndCoroutine) Op() Opcode  { return OpEndCoroutine }
func (AggStep) Op() Opcode       { return OpAggStep }
func (AggFinal) Op() Opcode      { return OpAggFinal }
func (Noop) Op() Opcode          { return OpNoop }
func (Explain) Op() Opcode       { return OpExplain }
func (r Raw) Op() Opcode         { return r.Opcode }

// InsnName returns the display name of an instruction, which is the name of
// the opcode it encodes to.
func InsnName(in Insn) string { return in.Op().Name() }
