package engine

// Numeric opcode identifiers the interpreter dispatches on. These mirror the
// pinned opcode table of the instruction layer; the two must stay in sync
// (the assembler's opcode_test cross-checks a sample of them).
const (
	opInit          = 8
	opGoto          = 9
	opGosub         = 10
	opInitCoroutine = 11
	opYield         = 12
	opMustBeInt     = 13
	opJump          = 14
	opOnce          = 15
	opIf            = 16
	opIfNot         = 17
	opNot           = 19
	opSeekLT        = 21
	opSeekLE        = 22
	opSeekGE        = 23
	opSeekGT        = 24
	opSeekRowid     = 30
	opLast          = 32
	opRewind        = 36
	opPrev          = 38
	opNext          = 39
	opIsNull        = 50
	opNotNull       = 51
	opNe            = 52
	opEq            = 53
	opGt            = 54
	opLe            = 55
	opLt            = 56
	opGe            = 57
	opIfPos         = 59
	opIfNotZero     = 60
	opDecrJumpZero  = 61
	opReturn        = 67
	opEndCoroutine  = 68
	opHaltIfNull    = 69
	opHalt          = 70
	opInteger       = 71
	opInt64         = 72
	opString        = 73
	opNull          = 75
	opSoftNull      = 76
	opBlob          = 77
	opMove          = 79
	opCopy          = 80
	opSCopy         = 81
	opIntCopy       = 82
	opResultRow     = 84
	opAddImm        = 86
	opColumn        = 94
	opMakeRecord    = 97
	opBitAnd        = 102
	opBitOr         = 103
	opShiftLeft     = 104
	opShiftRight    = 105
	opAdd           = 106
	opSubtract      = 107
	opMultiply      = 108
	opDivide        = 109
	opRemainder     = 110
	opConcat        = 111
	opOpenRead      = 112
	opOpenWrite     = 113
	opBitNot        = 114
	opString8       = 117
	opOpenEphemeral = 118
	opClose         = 122
	opSequence      = 126
	opNewRowid      = 127
	opInsert        = 128
	opDelete        = 130
	opRowid         = 135
	opNullRow       = 136
	opReal          = 153
	opNoop          = 187
	opExplain       = 188
)

// Jump-if-null flag bit for the comparison opcodes (P5).
const FlagJumpIfNull uint16 = 0x10
