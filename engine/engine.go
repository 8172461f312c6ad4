// Package engine is the bytecode interpreter behind the instruction layer.
// It owns opcode semantics, the register file, cursors, and in-memory table
// storage. Callers interact with it through two narrow surfaces: append an
// instruction and get back its address, and step the program reading typed
// column values. Everything else (the typed instruction catalog, operand
// encoding, label bookkeeping conveniences) lives in the vdbe package.
package engine

import (
	"sort"
	"strings"
)

// ---------------------------------------------------------------------------
// Connection: session handle owning shared table storage
// ---------------------------------------------------------------------------

// Conn is an open session. Programs created on the same connection share its
// table storage, so a program opened with OpenWrite can populate a table a
// later program reads. A Conn and everything created from it is confined to
// a single goroutine; none of its methods are safe for concurrent use.
type Conn struct {
	path    string
	tables  map[int]*table // keyed by root page number
	lastErr *Error
	closed  bool
}

// initialized flips once per process. Initialize is cheap and idempotent;
// it exists so embedders have a single point to hook global setup before
// the first session opens.
var initialized bool

// Initialize performs one-time process-wide setup. Open calls it
// implicitly; calling it again is a no-op.
func Initialize() error {
	initialized = true
	return nil
}

// Open creates a session. The path is recorded for diagnostics; storage is
// in-memory regardless (":memory:" is the conventional name). Paths
// containing a NUL byte are not representable.
func Open(path string) (*Conn, error) {
	if err := Initialize(); err != nil {
		return nil, errf(StatusError, "runtime initialization failed: %v", err)
	}
	if strings.ContainsRune(path, 0) {
		return nil, errf(StatusMisuse, "path contains NUL byte")
	}
	if path == "" {
		path = ":memory:"
	}
	return &Conn{path: path, tables: make(map[int]*table)}, nil
}

// Path returns the name the session was opened with.
func (c *Conn) Path() string { return c.path }

// LastError returns the most recent engine error on this session, or nil.
func (c *Conn) LastError() *Error { return c.lastErr }

// Close releases the session. Closing twice is harmless.
func (c *Conn) Close() {
	c.tables = nil
	c.closed = true
}

func (c *Conn) table(root int) *table {
	if c.tables == nil {
		return nil
	}
	t, ok := c.tables[root]
	if !ok {
		t = &table{}
		c.tables[root] = t
	}
	return t
}

// ---------------------------------------------------------------------------
// Vdbe: one program, from assembly through execution
// ---------------------------------------------------------------------------

type p4Kind uint8

const (
	p4None p4Kind = iota
	p4Int
	p4Int64
	p4Real
	p4String
)

type op struct {
	opcode int
	p1     int
	p2     int
	p3     int
	p4kind p4Kind
	p4i    int64
	p4r    float64
	p4s    string
	p5     uint16
}

type vdbeState uint8

const (
	stateInit vdbeState = iota
	stateReady
	stateHalt
)

// Vdbe is one program. Before MakeReady it is an append-only instruction
// list; after MakeReady it is an executable frame. The handle is owned
// exclusively by whoever holds it and is released exactly once via Finalize.
type Vdbe struct {
	conn  *Conn
	ops   []op
	state vdbeState

	// Label bookkeeping. Label ids are negative; slot i holds label -(i+1).
	labelAddr     []int
	labelResolved []bool

	// Execution frame (valid after MakeReady).
	nMem     int
	nCursor  int
	nCol     int
	mem      []cell
	cursors  []*cursor
	pc       int
	done     bool
	haveRow  bool
	resStart int
	resCount int
	onceHit  map[int]bool
	lastCmp  int
	err      *Error

	finalized bool
}

// New creates an empty in-progress program on the session.
func (c *Conn) New() (*Vdbe, error) {
	if c == nil || c.closed {
		return nil, errf(StatusMisuse, "connection is closed")
	}
	return &Vdbe{conn: c, onceHit: make(map[int]bool)}, nil
}

// ---------------------------------------------------------------------------
// Append surface
// ---------------------------------------------------------------------------

// AddOp appends an instruction with three integer operands and returns its
// address. This is the maximal-arity append; the narrower forms below exist
// for callers that want them but select no different behavior.
func (v *Vdbe) AddOp(opcode, p1, p2, p3 int) int {
	v.ops = append(v.ops, op{opcode: opcode, p1: p1, p2: p2, p3: p3})
	return len(v.ops) - 1
}

// AddOp0 appends an instruction with no operands.
func (v *Vdbe) AddOp0(opcode int) int { return v.AddOp(opcode, 0, 0, 0) }

// AddOp1 appends an instruction with one operand.
func (v *Vdbe) AddOp1(opcode, p1 int) int { return v.AddOp(opcode, p1, 0, 0) }

// AddOp2 appends an instruction with two operands.
func (v *Vdbe) AddOp2(opcode, p1, p2 int) int { return v.AddOp(opcode, p1, p2, 0) }

// AddOp4Int appends an instruction with a small-integer auxiliary operand.
func (v *Vdbe) AddOp4Int(opcode, p1, p2, p3, p4 int) int {
	addr := v.AddOp(opcode, p1, p2, p3)
	v.ops[addr].p4kind = p4Int
	v.ops[addr].p4i = int64(p4)
	return addr
}

// AddOp4Int64 appends an instruction with a 64-bit integer auxiliary operand.
func (v *Vdbe) AddOp4Int64(opcode, p1, p2, p3 int, p4 int64) int {
	addr := v.AddOp(opcode, p1, p2, p3)
	v.ops[addr].p4kind = p4Int64
	v.ops[addr].p4i = p4
	return addr
}

// AddOp4Real appends an instruction with a float auxiliary operand.
func (v *Vdbe) AddOp4Real(opcode, p1, p2, p3 int, p4 float64) int {
	addr := v.AddOp(opcode, p1, p2, p3)
	v.ops[addr].p4kind = p4Real
	v.ops[addr].p4r = p4
	return addr
}

// AddOp4String appends an instruction with a string auxiliary operand. The
// string is copied into engine-owned memory; the caller may reuse its buffer
// immediately.
func (v *Vdbe) AddOp4String(opcode, p1, p2, p3 int, p4 string) int {
	addr := v.AddOp(opcode, p1, p2, p3)
	v.ops[addr].p4kind = p4String
	v.ops[addr].p4s = strings.Clone(p4)
	return addr
}

// ChangeP5 sets the flags word on the most recently appended instruction.
func (v *Vdbe) ChangeP5(p5 uint16) {
	if len(v.ops) > 0 {
		v.ops[len(v.ops)-1].p5 = p5
	}
}

// ChangeP2 rewrites the jump-target operand of the instruction at addr.
func (v *Vdbe) ChangeP2(addr, val int) {
	if addr >= 0 && addr < len(v.ops) {
		v.ops[addr].p2 = val
	}
}

// JumpHere makes the instruction at addr jump to the current address.
func (v *Vdbe) JumpHere(addr int) {
	v.ChangeP2(addr, v.CurrentAddr())
}

// CurrentAddr is the address the next appended instruction will receive.
func (v *Vdbe) CurrentAddr() int { return len(v.ops) }

// OpCount returns the number of instructions appended so far.
func (v *Vdbe) OpCount() int { return len(v.ops) }

// ---------------------------------------------------------------------------
// Labels
// ---------------------------------------------------------------------------

// MakeLabel allocates a forward-reference token. Labels are negative so they
// can never collide with a real address; use one anywhere a jump target
// operand is expected, then bind it with ResolveLabel.
func (v *Vdbe) MakeLabel() int {
	v.labelAddr = append(v.labelAddr, -1)
	v.labelResolved = append(v.labelResolved, false)
	return -len(v.labelAddr)
}

// ResolveLabel binds the label to addr, patching every operand slot of every
// instruction appended so far that references it. A label may be resolved at
// most once.
func (v *Vdbe) ResolveLabel(label, addr int) error {
	idx := -label - 1
	if label >= 0 || idx >= len(v.labelAddr) {
		return errf(StatusMisuse, "unknown label %d", label)
	}
	if v.labelResolved[idx] {
		return errf(StatusMisuse, "label %d resolved twice", label)
	}
	v.labelResolved[idx] = true
	v.labelAddr[idx] = addr
	for i := range v.ops {
		o := &v.ops[i]
		if o.p1 == label {
			o.p1 = addr
		}
		if o.p2 == label {
			o.p2 = addr
		}
		if o.p3 == label {
			o.p3 = addr
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Finalize-into-frame transition
// ---------------------------------------------------------------------------

// SetNumCols declares the result-row width.
func (v *Vdbe) SetNumCols(n int) { v.nCol = n }

// NumCols returns the declared result-row width.
func (v *Vdbe) NumCols() int { return v.nCol }

// MakeReady allocates the execution frame: nMem registers (1-based; register
// 0 is reserved) and nCursor cursor slots. It fails if any instruction still
// carries an unresolved label in a target slot.
func (v *Vdbe) MakeReady(nMem, nCursor int) error {
	if v.state != stateInit {
		return errf(StatusMisuse, "program already prepared")
	}
	for addr := range v.ops {
		o := &v.ops[addr]
		if v.isLabelRef(o.p1) || v.isLabelRef(o.p2) || v.isLabelRef(o.p3) {
			return errf(StatusError, "unresolved label in instruction at address %d", addr)
		}
	}
	if nMem < 0 {
		nMem = 0
	}
	if nCursor < 0 {
		nCursor = 0
	}
	v.nMem = nMem
	v.nCursor = nCursor
	v.mem = make([]cell, nMem+1)
	v.cursors = make([]*cursor, nCursor)
	v.state = stateReady
	v.pc = 0
	return nil
}

func (v *Vdbe) isLabelRef(operand int) bool {
	if operand >= 0 {
		return false
	}
	idx := -operand - 1
	return idx < len(v.labelAddr)
}

// Done reports whether the program ran to completion or faulted. A fresh
// or reset program is not done.
func (v *Vdbe) Done() bool { return v.done || v.err != nil }

// Reset rewinds a prepared program so it can be stepped again from the
// beginning. Register contents are retained so callers may pre-seed state
// between runs; cursors and once-gates are cleared.
func (v *Vdbe) Reset() {
	if v.state == stateInit {
		return
	}
	v.pc = 0
	v.done = false
	v.haveRow = false
	v.err = nil
	v.state = stateReady
	v.onceHit = make(map[int]bool)
	v.lastCmp = 0
	for i := range v.cursors {
		v.cursors[i] = nil
	}
}

// Finalize releases the program handle. Safe to call more than once; any use
// after the first call is rejected with a misuse error.
func (v *Vdbe) Finalize() {
	if v.finalized {
		return
	}
	v.finalized = true
	v.ops = nil
	v.mem = nil
	v.cursors = nil
	v.state = stateHalt
}

// ---------------------------------------------------------------------------
// Register access
// ---------------------------------------------------------------------------

// MemCount returns the number of registers in the execution frame.
func (v *Vdbe) MemCount() int { return v.nMem }

// CursorCount returns the number of cursor slots in the execution frame.
func (v *Vdbe) CursorCount() int { return v.nCursor }

func (v *Vdbe) regCheck(reg int) error {
	if v.state == stateInit {
		return errf(StatusMisuse, "register access before MakeReady")
	}
	if reg < 1 || reg > v.nMem {
		return errf(StatusRange, "register %d out of range [1,%d]", reg, v.nMem)
	}
	return nil
}

// SetMemInt stores an integer into a register.
func (v *Vdbe) SetMemInt(reg int, val int64) error {
	if err := v.regCheck(reg); err != nil {
		return err
	}
	v.mem[reg] = intCell(val)
	return nil
}

// SetMemReal stores a float into a register.
func (v *Vdbe) SetMemReal(reg int, val float64) error {
	if err := v.regCheck(reg); err != nil {
		return err
	}
	v.mem[reg] = realCell(val)
	return nil
}

// SetMemNull clears a register to NULL.
func (v *Vdbe) SetMemNull(reg int) error {
	if err := v.regCheck(reg); err != nil {
		return err
	}
	v.mem[reg] = cell{}
	return nil
}

// MemInt reads a register with integer coercion.
func (v *Vdbe) MemInt(reg int) (int64, error) {
	if err := v.regCheck(reg); err != nil {
		return 0, err
	}
	return v.mem[reg].intValue(), nil
}

// MemReal reads a register with real coercion.
func (v *Vdbe) MemReal(reg int) (float64, error) {
	if err := v.regCheck(reg); err != nil {
		return 0, err
	}
	return v.mem[reg].realValue(), nil
}

// MemIsNull reports whether a register holds NULL.
func (v *Vdbe) MemIsNull(reg int) (bool, error) {
	if err := v.regCheck(reg); err != nil {
		return false, err
	}
	return v.mem[reg].isNull(), nil
}

// ---------------------------------------------------------------------------
// Column access (valid between a Row outcome and the next Step/Reset)
// ---------------------------------------------------------------------------

// ColumnCount returns the declared result-row width.
func (v *Vdbe) ColumnCount() int { return v.nCol }

func (v *Vdbe) column(idx int) *cell {
	if !v.haveRow || idx < 0 || idx >= v.resCount {
		return &cell{}
	}
	return &v.mem[v.resStart+idx]
}

// ColumnType returns the runtime type tag of a result column.
func (v *Vdbe) ColumnType(idx int) int { return v.column(idx).typeCode() }

// ColumnInt reads a result column as an integer.
func (v *Vdbe) ColumnInt(idx int) int64 { return v.column(idx).intValue() }

// ColumnReal reads a result column as a float.
func (v *Vdbe) ColumnReal(idx int) float64 { return v.column(idx).realValue() }

// ColumnText reads a result column as text. NULL yields the empty string.
func (v *Vdbe) ColumnText(idx int) string {
	c := v.column(idx)
	if c.isNull() {
		return ""
	}
	return c.textValue()
}

// ColumnBlob reads a result column as a byte slice. NULL yields nil. The
// returned slice is a copy owned by the caller.
func (v *Vdbe) ColumnBlob(idx int) []byte {
	c := v.column(idx)
	switch c.typ {
	case cellBlob:
		out := make([]byte, len(c.b))
		copy(out, c.b)
		return out
	case cellText:
		return []byte(c.s)
	default:
		return nil
	}
}

// ---------------------------------------------------------------------------
// Table storage
// ---------------------------------------------------------------------------

// row is one stored entry: a rowid key and a record payload.
type row struct {
	rowid int64
	rec   []cell
}

// table is rowid-ordered in-memory storage, shared across programs on a
// connection when opened by root page number.
type table struct {
	rows []row
}

func (t *table) find(rowid int64) (int, bool) {
	i := sort.Search(len(t.rows), func(i int) bool { return t.rows[i].rowid >= rowid })
	return i, i < len(t.rows) && t.rows[i].rowid == rowid
}

func (t *table) insert(rowid int64, rec []cell) {
	i, found := t.find(rowid)
	if found {
		t.rows[i].rec = rec
		return
	}
	t.rows = append(t.rows, row{})
	copy(t.rows[i+1:], t.rows[i:])
	t.rows[i] = row{rowid: rowid, rec: rec}
}

func (t *table) delete(i int) {
	t.rows = append(t.rows[:i], t.rows[i+1:]...)
}

func (t *table) maxRowid() int64 {
	if len(t.rows) == 0 {
		return 0
	}
	return t.rows[len(t.rows)-1].rowid
}

// cursor is an open iteration handle over a table.
type cursor struct {
	tbl     *table
	pos     int
	nullRow bool
	seq     int64
}

func (cu *cursor) valid() bool {
	return cu != nil && cu.tbl != nil && !cu.nullRow && cu.pos >= 0 && cu.pos < len(cu.tbl.rows)
}
