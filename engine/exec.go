package engine

// StepOutcome classifies the result of one execution step.
type StepOutcome int

const (
	// OutcomeRow means a result row is available via the Column accessors.
	OutcomeRow StepOutcome = iota
	// OutcomeDone means the program ran to its halt (explicit or implicit).
	OutcomeDone
)

// Step advances the program to the next result row or to completion. After
// a fault, the error is sticky: further Steps re-report it and only
// Finalize is guaranteed safe.
func (v *Vdbe) Step() (StepOutcome, error) {
	if v.finalized {
		return OutcomeDone, errf(StatusMisuse, "program is finalized")
	}
	if v.state == stateInit {
		return OutcomeDone, errf(StatusMisuse, "step before MakeReady")
	}
	if v.err != nil {
		return OutcomeDone, v.err
	}
	if v.done {
		return OutcomeDone, nil
	}
	v.haveRow = false

	for {
		if v.pc < 0 || v.pc >= len(v.ops) {
			// Fell off the end: implicit halt.
			v.done = true
			v.state = stateHalt
			return OutcomeDone, nil
		}
		o := &v.ops[v.pc]
		next := v.pc + 1

		switch o.opcode {
		case opInit:
			if o.p2 > 0 {
				next = o.p2
			}

		case opGoto:
			next = o.p2

		case opGosub:
			if err := v.store(o.p1, intCell(int64(v.pc))); err != nil {
				return v.fault(err)
			}
			next = o.p2

		case opReturn:
			c, err := v.load(o.p1)
			if err != nil {
				return v.fault(err)
			}
			next = int(c.intValue()) + 1

		case opInitCoroutine:
			// Yield resumes at the stored address plus one, so the register
			// holds P3-1 and the first body instruction executed is P3.
			if err := v.store(o.p1, intCell(int64(o.p3-1))); err != nil {
				return v.fault(err)
			}
			if o.p2 > 0 {
				next = o.p2
			}

		case opYield:
			c, err := v.load(o.p1)
			if err != nil {
				return v.fault(err)
			}
			dest := int(c.intValue())
			if err := v.store(o.p1, intCell(int64(v.pc))); err != nil {
				return v.fault(err)
			}
			next = dest + 1

		case opEndCoroutine:
			c, err := v.load(o.p1)
			if err != nil {
				return v.fault(err)
			}
			caller := int(c.intValue())
			if caller < 0 || caller >= len(v.ops) {
				return v.fault(errf(StatusError, "EndCoroutine: bad caller address %d", caller))
			}
			next = v.ops[caller].p2

		case opHalt:
			v.done = true
			v.state = stateHalt
			if o.p1 != 0 {
				msg := o.p4s
				if msg == "" {
					msg = "halted by program"
				}
				return v.fault(errf(o.p1, "%s", msg))
			}
			v.pc = next
			return OutcomeDone, nil

		case opHaltIfNull:
			c, err := v.load(o.p1)
			if err != nil {
				return v.fault(err)
			}
			if c.isNull() {
				v.done = true
				v.state = stateHalt
				if o.p3 != 0 {
					return v.fault(errf(o.p3, "halt: register is NULL"))
				}
				v.pc = next
				return OutcomeDone, nil
			}
			if o.p2 > 0 {
				next = o.p2
			}

		case opInteger:
			if err := v.store(o.p2, intCell(int64(o.p1))); err != nil {
				return v.fault(err)
			}

		case opInt64:
			if err := v.store(o.p2, intCell(o.p4i)); err != nil {
				return v.fault(err)
			}

		case opReal:
			if err := v.store(o.p2, realCell(o.p4r)); err != nil {
				return v.fault(err)
			}

		case opString, opString8:
			if err := v.store(o.p2, textCell(o.p4s)); err != nil {
				return v.fault(err)
			}

		case opBlob:
			if err := v.store(o.p2, blobCell([]byte(o.p4s))); err != nil {
				return v.fault(err)
			}

		case opNull:
			last := o.p3
			if last < o.p2 {
				last = o.p2
			}
			for reg := o.p2; reg <= last; reg++ {
				if err := v.store(reg, cell{}); err != nil {
					return v.fault(err)
				}
			}

		case opSoftNull:
			if err := v.store(o.p1, cell{}); err != nil {
				return v.fault(err)
			}

		case opAdd, opSubtract, opMultiply, opDivide, opRemainder:
			if err := v.arith(o); err != nil {
				return v.fault(err)
			}

		case opConcat:
			// P3 = P2 || P1. The encoder placed rhs in P1 and lhs in P2.
			a, err := v.load(o.p1)
			if err != nil {
				return v.fault(err)
			}
			b, err := v.load(o.p2)
			if err != nil {
				return v.fault(err)
			}
			var out cell
			if a.isNull() || b.isNull() {
				out = cell{}
			} else {
				out = textCell(b.textValue() + a.textValue())
			}
			if err := v.store(o.p3, out); err != nil {
				return v.fault(err)
			}

		case opBitAnd, opBitOr, opShiftLeft, opShiftRight:
			if err := v.bitwise(o); err != nil {
				return v.fault(err)
			}

		case opBitNot:
			c, err := v.load(o.p1)
			if err != nil {
				return v.fault(err)
			}
			var out cell
			if !c.isNull() {
				out = intCell(^c.intValue())
			}
			if err := v.store(o.p2, out); err != nil {
				return v.fault(err)
			}

		case opNot:
			c, err := v.load(o.p1)
			if err != nil {
				return v.fault(err)
			}
			var out cell
			if tv, known := c.truth(); known {
				if tv {
					out = intCell(0)
				} else {
					out = intCell(1)
				}
			}
			if err := v.store(o.p2, out); err != nil {
				return v.fault(err)
			}

		case opAddImm:
			c, err := v.load(o.p1)
			if err != nil {
				return v.fault(err)
			}
			if err := v.store(o.p1, intCell(c.intValue()+int64(o.p2))); err != nil {
				return v.fault(err)
			}

		case opCopy, opMove:
			n := o.p3
			if n < 1 {
				n = 1
			}
			for i := 0; i < n; i++ {
				c, err := v.load(o.p1 + i)
				if err != nil {
					return v.fault(err)
				}
				if err := v.store(o.p2+i, copyCell(c)); err != nil {
					return v.fault(err)
				}
				if o.opcode == opMove {
					if err := v.store(o.p1+i, cell{}); err != nil {
						return v.fault(err)
					}
				}
			}

		case opSCopy:
			c, err := v.load(o.p1)
			if err != nil {
				return v.fault(err)
			}
			if err := v.store(o.p2, *c); err != nil {
				return v.fault(err)
			}

		case opIntCopy:
			c, err := v.load(o.p1)
			if err != nil {
				return v.fault(err)
			}
			if err := v.store(o.p2, intCell(c.intValue())); err != nil {
				return v.fault(err)
			}

		case opEq, opNe, opLt, opLe, opGt, opGe:
			taken, err := v.compareBranch(o)
			if err != nil {
				return v.fault(err)
			}
			if taken {
				next = o.p2
			}

		case opIf, opIfNot:
			c, err := v.load(o.p1)
			if err != nil {
				return v.fault(err)
			}
			tv, known := c.truth()
			var jump bool
			switch {
			case !known:
				// NULL branches by P3 for both polarities.
				jump = o.p3 != 0
			case o.opcode == opIf:
				jump = tv
			default:
				jump = !tv
			}
			if jump {
				next = o.p2
			}

		case opIsNull:
			c, err := v.load(o.p1)
			if err != nil {
				return v.fault(err)
			}
			if c.isNull() {
				next = o.p2
			}

		case opNotNull:
			c, err := v.load(o.p1)
			if err != nil {
				return v.fault(err)
			}
			if !c.isNull() {
				next = o.p2
			}

		case opOnce:
			if v.onceHit[v.pc] {
				next = o.p2
			} else {
				v.onceHit[v.pc] = true
			}

		case opJump:
			// Three-way branch on the most recent comparison result.
			switch {
			case v.lastCmp < 0:
				next = o.p1
			case v.lastCmp == 0:
				next = o.p2
			default:
				next = o.p3
			}

		case opIfPos:
			c, err := v.load(o.p1)
			if err != nil {
				return v.fault(err)
			}
			if iv := c.intValue(); iv > 0 {
				if err := v.store(o.p1, intCell(iv-int64(o.p3))); err != nil {
					return v.fault(err)
				}
				next = o.p2
			}

		case opIfNotZero:
			c, err := v.load(o.p1)
			if err != nil {
				return v.fault(err)
			}
			if iv := c.intValue(); iv != 0 {
				if iv > 0 {
					if err := v.store(o.p1, intCell(iv-1)); err != nil {
						return v.fault(err)
					}
				}
				next = o.p2
			}

		case opDecrJumpZero:
			c, err := v.load(o.p1)
			if err != nil {
				return v.fault(err)
			}
			iv := c.intValue() - 1
			if err := v.store(o.p1, intCell(iv)); err != nil {
				return v.fault(err)
			}
			if iv == 0 {
				next = o.p2
			}

		case opMustBeInt:
			c, err := v.load(o.p1)
			if err != nil {
				return v.fault(err)
			}
			ok := false
			switch c.typ {
			case cellInt:
				ok = true
			case cellReal:
				if float64(int64(c.r)) == c.r {
					if err := v.store(o.p1, intCell(int64(c.r))); err != nil {
						return v.fault(err)
					}
					ok = true
				}
			}
			if !ok {
				if o.p2 > 0 {
					next = o.p2
				} else {
					return v.fault(errf(StatusMismatch, "datatype mismatch: register %d is not an integer", o.p1))
				}
			}

		case opResultRow:
			if o.p1 < 1 || o.p1+o.p2-1 > v.nMem {
				return v.fault(errf(StatusRange, "result row registers [%d,%d] out of range", o.p1, o.p1+o.p2-1))
			}
			v.resStart = o.p1
			v.resCount = o.p2
			v.haveRow = true
			v.pc = next
			return OutcomeRow, nil

		case opSequence:
			cu, err := v.cursorAt(o.p1)
			if err != nil {
				return v.fault(err)
			}
			if err := v.store(o.p2, intCell(cu.seq)); err != nil {
				return v.fault(err)
			}
			cu.seq++

		case opOpenRead, opOpenWrite, opOpenEphemeral, opClose,
			opRewind, opNext, opPrev, opLast,
			opSeekGE, opSeekGT, opSeekLE, opSeekLT, opSeekRowid,
			opColumn, opRowid, opNewRowid, opInsert, opDelete,
			opMakeRecord, opNullRow:
			jump, target, err := v.cursorOp(o)
			if err != nil {
				return v.fault(err)
			}
			if jump {
				next = target
			}

		case opNoop, opExplain:
			// no-op

		default:
			return v.fault(errf(StatusError, "opcode %d not implemented by this engine", o.opcode))
		}

		v.pc = next
	}
}

func (v *Vdbe) fault(err error) (StepOutcome, error) {
	e, ok := err.(*Error)
	if !ok {
		e = errf(StatusError, "%v", err)
	}
	v.err = e
	v.state = stateHalt
	v.haveRow = false
	if v.conn != nil {
		v.conn.lastErr = e
	}
	return OutcomeDone, e
}

func (v *Vdbe) load(reg int) (*cell, error) {
	if reg < 1 || reg > v.nMem {
		return nil, errf(StatusRange, "register %d out of range [1,%d]", reg, v.nMem)
	}
	return &v.mem[reg], nil
}

func (v *Vdbe) store(reg int, c cell) error {
	if reg < 1 || reg > v.nMem {
		return errf(StatusRange, "register %d out of range [1,%d]", reg, v.nMem)
	}
	v.mem[reg] = c
	return nil
}

func copyCell(c *cell) cell {
	out := *c
	if c.typ == cellBlob {
		out.b = make([]byte, len(c.b))
		copy(out.b, c.b)
	}
	if c.typ == cellRecord {
		out.rec = make([]cell, len(c.rec))
		copy(out.rec, c.rec)
	}
	return out
}

// arith implements the binary arithmetic opcodes. The machine convention is
// P3 = P2 OP P1; the instruction layer swaps operands for the non-commutative
// opcodes so caller-visible semantics stay lhs OP rhs.
func (v *Vdbe) arith(o *op) error {
	a, err := v.load(o.p1)
	if err != nil {
		return err
	}
	b, err := v.load(o.p2)
	if err != nil {
		return err
	}
	if a.isNull() || b.isNull() {
		return v.store(o.p3, cell{})
	}

	if a.typ == cellInt && b.typ == cellInt && o.opcode != opDivide {
		x, y := b.i, a.i
		var r int64
		switch o.opcode {
		case opAdd:
			r = x + y
		case opSubtract:
			r = x - y
		case opMultiply:
			r = x * y
		case opRemainder:
			if y == 0 {
				return v.store(o.p3, cell{})
			}
			r = x % y
		}
		return v.store(o.p3, intCell(r))
	}

	x, y := b.realValue(), a.realValue()
	switch o.opcode {
	case opAdd:
		return v.store(o.p3, numericCell(a, b, x+y))
	case opSubtract:
		return v.store(o.p3, numericCell(a, b, x-y))
	case opMultiply:
		return v.store(o.p3, numericCell(a, b, x*y))
	case opDivide:
		if y == 0 {
			return v.store(o.p3, cell{})
		}
		if a.typ == cellInt && b.typ == cellInt {
			return v.store(o.p3, intCell(b.i/a.i))
		}
		return v.store(o.p3, realCell(x/y))
	case opRemainder:
		iy := a.intValue()
		if iy == 0 {
			return v.store(o.p3, cell{})
		}
		return v.store(o.p3, intCell(b.intValue()%iy))
	}
	return errf(StatusError, "unreachable arithmetic opcode %d", o.opcode)
}

// numericCell keeps integer results integral when both inputs were integers.
func numericCell(a, b *cell, r float64) cell {
	if a.typ == cellInt && b.typ == cellInt {
		return intCell(int64(r))
	}
	return realCell(r)
}

func (v *Vdbe) bitwise(o *op) error {
	a, err := v.load(o.p1)
	if err != nil {
		return err
	}
	b, err := v.load(o.p2)
	if err != nil {
		return err
	}
	if a.isNull() || b.isNull() {
		return v.store(o.p3, cell{})
	}
	x, y := b.intValue(), a.intValue()
	var r int64
	switch o.opcode {
	case opBitAnd:
		r = x & y
	case opBitOr:
		r = x | y
	case opShiftLeft:
		r = shift(x, y)
	case opShiftRight:
		r = shift(x, -y)
	}
	return v.store(o.p3, intCell(r))
}

// shift computes x << n, with negative n shifting right and out-of-range
// counts saturating the way the compatible engine does.
func shift(x, n int64) int64 {
	if n < 0 {
		if n <= -64 {
			if x < 0 {
				return -1
			}
			return 0
		}
		return x >> uint(-n)
	}
	if n >= 64 {
		return 0
	}
	return x << uint(n)
}

// compareBranch implements the comparison opcodes: jump to P2 if P3 CMP P1.
// A NULL operand takes the jump only when the jump-if-null flag is set.
func (v *Vdbe) compareBranch(o *op) (bool, error) {
	rhs, err := v.load(o.p1)
	if err != nil {
		return false, err
	}
	lhs, err := v.load(o.p3)
	if err != nil {
		return false, err
	}
	if lhs.isNull() || rhs.isNull() {
		return o.p5&FlagJumpIfNull != 0, nil
	}
	c := compareCells(lhs, rhs)
	v.lastCmp = c
	switch o.opcode {
	case opEq:
		return c == 0, nil
	case opNe:
		return c != 0, nil
	case opLt:
		return c < 0, nil
	case opLe:
		return c <= 0, nil
	case opGt:
		return c > 0, nil
	case opGe:
		return c >= 0, nil
	}
	return false, errf(StatusError, "unreachable comparison opcode %d", o.opcode)
}
