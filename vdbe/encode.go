package vdbe

// ---------------------------------------------------------------------------
// Instruction encoding
// ---------------------------------------------------------------------------
//
// encode lowers a typed instruction onto the engine's five operand slots.
// The engine evaluates binary operators as "P2 OP P1" and comparisons as
// "jump to P2 if P3 CMP P1", so the non-commutative arithmetic variants and
// all six comparison variants place their operands swapped relative to
// source order. The swaps live here and nowhere else; callers always think
// in Lhs/Rhs/Dest terms.

// encoded is the slot-level form of one instruction, ready to hand to the
// engine's append surface.
type encoded struct {
	op         Opcode
	p1, p2, p3 int
	p4         P4
	p5         uint16
}

// encode maps a typed instruction onto operand slots. The only failure mode
// is a Raw instruction whose numeric opcode is outside the pinned table.
func encode(in Insn) (encoded, error) {
	e := encoded{op: in.Op()}

	switch n := in.(type) {
	// Constants.
	case Integer:
		e.p1, e.p2 = int(n.Value), n.Dest
	case Int64:
		e.p2, e.p4 = n.Dest, P4Int64(n.Value)
	case Real:
		e.p2, e.p4 = n.Dest, P4Real(n.Value)
	case String8:
		e.p2, e.p4 = n.Dest, P4String(n.Value)
	case Blob:
		e.p1, e.p2, e.p4 = len(n.Value), n.Dest, P4String(string(n.Value))
	case Null:
		e.p2, e.p3 = n.Dest, n.Dest+n.Count-1
	case SoftNull:
		e.p1 = n.Dest

	// Arithmetic. The engine computes P3 = P2 OP P1, so the
	// non-commutative operators place Rhs in P1 and Lhs in P2.
	case Add:
		e.p1, e.p2, e.p3 = n.Lhs, n.Rhs, n.Dest
	case Subtract:
		e.p1, e.p2, e.p3 = n.Rhs, n.Lhs, n.Dest
	case Multiply:
		e.p1, e.p2, e.p3 = n.Lhs, n.Rhs, n.Dest
	case Divide:
		e.p1, e.p2, e.p3 = n.Rhs, n.Lhs, n.Dest
	case Remainder:
		e.p1, e.p2, e.p3 = n.Rhs, n.Lhs, n.Dest
	case Concat:
		e.p1, e.p2, e.p3 = n.Rhs, n.Lhs, n.Dest

	// Bitwise. Shifts are P2 shifted by P1, so they swap too.
	case BitAnd:
		e.p1, e.p2, e.p3 = n.Lhs, n.Rhs, n.Dest
	case BitOr:
		e.p1, e.p2, e.p3 = n.Lhs, n.Rhs, n.Dest
	case ShiftLeft:
		e.p1, e.p2, e.p3 = n.Rhs, n.Lhs, n.Dest
	case ShiftRight:
		e.p1, e.p2, e.p3 = n.Rhs, n.Lhs, n.Dest
	case BitNot:
		e.p1, e.p2 = n.Src, n.Dest
	case Not:
		e.p1, e.p2 = n.Src, n.Dest
	case AddImm:
		e.p1, e.p2 = n.Dest, n.Value

	// Register copies.
	case Copy:
		e.p1, e.p2, e.p3 = n.Src, n.Dest, n.Count
	case SCopy:
		e.p1, e.p2 = n.Src, n.Dest
	case Move:
		e.p1, e.p2, e.p3 = n.Src, n.Dest, n.Count
	case IntCopy:
		e.p1, e.p2 = n.Src, n.Dest

	// Control flow.
	case Halt:
		// all zero
	case HaltWithError:
		e.p1, e.p2 = n.ErrorCode, n.OnError
	case HaltIfNull:
		e.p1, e.p2, e.p3 = n.Src, n.Target, n.ErrorCode
	case Goto:
		e.p2 = n.Target
	case Gosub:
		e.p1, e.p2 = n.ReturnReg, n.Target
	case Return:
		e.p1 = n.ReturnReg
	case If:
		e.p1, e.p2, e.p3 = n.Src, n.Target, boolOperand(n.JumpIfNull)
	case IfNot:
		e.p1, e.p2, e.p3 = n.Src, n.Target, boolOperand(n.JumpIfNull)
	case IsNull:
		e.p1, e.p2 = n.Src, n.Target
	case NotNull:
		e.p1, e.p2 = n.Src, n.Target
	case Once:
		e.p2 = n.Target
	case Jump:
		e.p1, e.p2, e.p3 = n.Neg, n.Zero, n.Pos

	// Comparisons: jump to P2 if P3 CMP P1, so P1 = Rhs and P3 = Lhs.
	case Eq:
		e.p1, e.p2, e.p3 = n.Rhs, n.Target, n.Lhs
	case Ne:
		e.p1, e.p2, e.p3 = n.Rhs, n.Target, n.Lhs
	case Lt:
		e.p1, e.p2, e.p3 = n.Rhs, n.Target, n.Lhs
	case Le:
		e.p1, e.p2, e.p3 = n.Rhs, n.Target, n.Lhs
	case Gt:
		e.p1, e.p2, e.p3 = n.Rhs, n.Target, n.Lhs
	case Ge:
		e.p1, e.p2, e.p3 = n.Rhs, n.Target, n.Lhs

	// Register tests.
	case IfPos:
		e.p1, e.p2, e.p3 = n.Src, n.Target, n.Decrement
	case IfNotZero:
		e.p1, e.p2 = n.Src, n.Target
	case DecrJumpZero:
		e.p1, e.p2 = n.Src, n.Target
	case MustBeInt:
		e.p1, e.p2 = n.Src, n.Target

	// Results.
	case ResultRow:
		e.p1, e.p2 = n.Start, n.Count

	// Cursors.
	case OpenRead:
		e.p1, e.p2, e.p3 = n.Cursor, n.RootPage, n.DbNum
	case OpenWrite:
		e.p1, e.p2, e.p3 = n.Cursor, n.RootPage, n.DbNum
	case OpenEphemeral:
		e.p1, e.p2 = n.Cursor, n.NumColumns
	case Close:
		e.p1 = n.Cursor
	case Rewind:
		e.p1, e.p2 = n.Cursor, n.Target
	case Next:
		e.p1, e.p2 = n.Cursor, n.Target
	case Prev:
		e.p1, e.p2 = n.Cursor, n.Target
	case Last:
		e.p1, e.p2 = n.Cursor, n.Target
	case SeekGE:
		e.p1, e.p2, e.p3, e.p5 = n.Cursor, n.Target, n.Key, uint16(n.NumFields)
	case SeekGT:
		e.p1, e.p2, e.p3, e.p5 = n.Cursor, n.Target, n.Key, uint16(n.NumFields)
	case SeekLE:
		e.p1, e.p2, e.p3, e.p5 = n.Cursor, n.Target, n.Key, uint16(n.NumFields)
	case SeekLT:
		e.p1, e.p2, e.p3, e.p5 = n.Cursor, n.Target, n.Key, uint16(n.NumFields)
	case SeekRowid:
		e.p1, e.p2, e.p3 = n.Cursor, n.Target, n.Rowid
	case Column:
		e.p1, e.p2, e.p3 = n.Cursor, n.Col, n.Dest
	case Rowid:
		e.p1, e.p2 = n.Cursor, n.Dest
	case NewRowid:
		e.p1, e.p2, e.p3 = n.Cursor, n.Dest, n.PrevRowid
	case Insert:
		e.p1, e.p2, e.p3 = n.Cursor, n.Data, n.RowidReg
	case Delete:
		e.p1 = n.Cursor
	case NullRow:
		e.p1 = n.Cursor
	case Sequence:
		e.p1, e.p2 = n.Cursor, n.Dest
	case MakeRecord:
		e.p1, e.p2, e.p3 = n.Start, n.Count, n.Dest

	// Indexes.
	case IdxInsert:
		e.p1, e.p2 = n.Cursor, n.Key
	case IdxDelete:
		e.p1, e.p2, e.p3 = n.Cursor, n.Key, n.NumFields
	case IdxRowid:
		e.p1, e.p2 = n.Cursor, n.Dest

	// Structure and coroutines.
	case Init:
		e.p2 = n.Target
	case InitCoroutine:
		e.p1, e.p2, e.p3 = n.Coroutine, n.Target, n.End
	case Yield:
		e.p1 = n.Coroutine
	case EndCoroutine:
		e.p1 = n.Coroutine

	// Aggregation.
	case AggStep:
		e.p1, e.p3, e.p5 = n.Args, n.Accum, uint16(n.NumArgs)
	case AggFinal:
		e.p1, e.p2 = n.Accum, n.NumArgs

	// Miscellany.
	case Noop, Explain:
		// all zero

	case Raw:
		if !n.Opcode.IsValid() {
			return encoded{}, kindErr(KindInvalidOpcode, "raw opcode %d is outside the instruction table", int(n.Opcode))
		}
		e.p1, e.p2, e.p3, e.p4, e.p5 = n.P1, n.P2, n.P3, n.P4, n.P5

	default:
		// The interface is sealed; this is unreachable for external callers.
		return encoded{}, kindErr(KindInvalidOpcode, "unhandled instruction %T", in)
	}

	return e, nil
}

func boolOperand(b bool) int {
	if b {
		return 1
	}
	return 0
}
