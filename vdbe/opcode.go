package vdbe

import "fmt"

// ---------------------------------------------------------------------------
// Opcode table
// ---------------------------------------------------------------------------

// Opcode is the numeric identifier of a single virtual-machine operation.
//
// The numbering is a compatibility contract with the pinned engine version
// (the 3.45.0 internal opcode table): it must stay byte-for-byte in sync
// with the interpreter being targeted. A mismatch is a correctness bug, not
// a runtime-detectable error.
type Opcode uint8

const (
	OpSavepoint     Opcode = 0
	OpAutoCommit    Opcode = 1
	OpTransaction   Opcode = 2
	OpCheckpoint    Opcode = 3
	OpJournalMode   Opcode = 4
	OpVacuum        Opcode = 5
	OpVFilter       Opcode = 6
	OpVUpdate       Opcode = 7
	OpInit          Opcode = 8
	OpGoto          Opcode = 9
	OpGosub         Opcode = 10
	OpInitCoroutine Opcode = 11
	OpYield         Opcode = 12
	OpMustBeInt     Opcode = 13
	OpJump          Opcode = 14
	OpOnce          Opcode = 15
	OpIf            Opcode = 16
	OpIfNot         Opcode = 17
	OpIsType        Opcode = 18
	OpNot           Opcode = 19
	OpIfNullRow     Opcode = 20
	OpSeekLT        Opcode = 21
	OpSeekLE        Opcode = 22
	OpSeekGE        Opcode = 23
	OpSeekGT        Opcode = 24
	OpIfNotOpen     Opcode = 25
	OpIfNoHope      Opcode = 26
	OpNoConflict    Opcode = 27
	OpNotFound      Opcode = 28
	OpFound         Opcode = 29
	OpSeekRowid     Opcode = 30
	OpNotExists     Opcode = 31
	OpLast          Opcode = 32
	OpIfSmaller     Opcode = 33
	OpSorterSort    Opcode = 34
	OpSort          Opcode = 35
	OpRewind        Opcode = 36
	OpSorterNext    Opcode = 37
	OpPrev          Opcode = 38
	OpNext          Opcode = 39
	OpIdxLE         Opcode = 40
	OpIdxGT         Opcode = 41
	OpIdxLT         Opcode = 42
	OpOr            Opcode = 43
	OpAnd           Opcode = 44
	OpIdxGE         Opcode = 45
	OpRowSetRead    Opcode = 46
	OpRowSetTest    Opcode = 47
	OpProgram       Opcode = 48
	OpFkIfZero      Opcode = 49
	OpIsNull        Opcode = 50
	OpNotNull       Opcode = 51
	OpNe            Opcode = 52
	OpEq            Opcode = 53
	OpGt            Opcode = 54
	OpLe            Opcode = 55
	OpLt            Opcode = 56
	OpGe            Opcode = 57
	OpElseEq        Opcode = 58
	OpIfPos         Opcode = 59
	OpIfNotZero     Opcode = 60
	OpDecrJumpZero  Opcode = 61
	OpIncrVacuum    Opcode = 62
	OpVNext         Opcode = 63
	OpFilter        Opcode = 64
	OpPureFunc      Opcode = 65
	OpFunction      Opcode = 66
	OpReturn        Opcode = 67
	OpEndCoroutine  Opcode = 68
	OpHaltIfNull    Opcode = 69
	OpHalt          Opcode = 70
	OpInteger       Opcode = 71
	OpInt64         Opcode = 72
	OpString        Opcode = 73
	OpBeginSubrtn   Opcode = 74
	OpNull          Opcode = 75
	OpSoftNull      Opcode = 76
	OpBlob          Opcode = 77
	OpVariable      Opcode = 78
	OpMove          Opcode = 79
	OpCopy          Opcode = 80
	OpSCopy         Opcode = 81
	OpIntCopy       Opcode = 82
	OpFkCheck       Opcode = 83
	OpResultRow     Opcode = 84
	OpCollSeq       Opcode = 85
	OpAddImm        Opcode = 86
	OpRealAffinity  Opcode = 87
	OpCast          Opcode = 88
	OpPermutation   Opcode = 89
	OpCompare       Opcode = 90
	OpIsTrue        Opcode = 91
	OpZeroOrNull    Opcode = 92
	OpOffset        Opcode = 93
	OpColumn        Opcode = 94
	OpTypeCheck     Opcode = 95
	OpAffinity      Opcode = 96
	OpMakeRecord    Opcode = 97
	OpCount         Opcode = 98
	OpReadCookie    Opcode = 99
	OpSetCookie     Opcode = 100
	OpReopenIdx     Opcode = 101
	OpBitAnd        Opcode = 102
	OpBitOr         Opcode = 103
	OpShiftLeft     Opcode = 104
	OpShiftRight    Opcode = 105
	OpAdd           Opcode = 106
	OpSubtract      Opcode = 107
	OpMultiply      Opcode = 108
	OpDivide        Opcode = 109
	OpRemainder     Opcode = 110
	OpConcat        Opcode = 111
	OpOpenRead      Opcode = 112
	OpOpenWrite     Opcode = 113
	OpBitNot        Opcode = 114
	OpOpenDup       Opcode = 115
	OpOpenAutoindex Opcode = 116
	OpString8       Opcode = 117
	OpOpenEphemeral Opcode = 118
	OpSorterOpen    Opcode = 119
	OpSequenceTest  Opcode = 120
	OpOpenPseudo    Opcode = 121
	OpClose         Opcode = 122
	OpColumnsUsed   Opcode = 123
	OpSeekScan      Opcode = 124
	OpSeekHit       Opcode = 125
	OpSequence      Opcode = 126
	OpNewRowid      Opcode = 127
	OpInsert        Opcode = 128
	OpRowCell       Opcode = 129
	OpDelete        Opcode = 130
	OpResetCount    Opcode = 131
	OpSorterCompare Opcode = 132
	OpSorterData    Opcode = 133
	OpRowData       Opcode = 134
	OpRowid         Opcode = 135
	OpNullRow       Opcode = 136
	OpSeekEnd       Opcode = 137
	OpIdxInsert     Opcode = 138
	OpSorterInsert  Opcode = 139
	OpIdxDelete     Opcode = 140
	OpDeferredSeek  Opcode = 141
	OpIdxRowid      Opcode = 142
	OpFinishSeek    Opcode = 143
	OpDestroy       Opcode = 144
	OpClear         Opcode = 145
	OpResetSorter   Opcode = 146
	OpCreateBtree   Opcode = 147
	OpSqlExec       Opcode = 148
	OpParseSchema   Opcode = 149
	OpLoadAnalysis  Opcode = 150
	OpDropTable     Opcode = 151
	OpDropIndex     Opcode = 152
	OpReal          Opcode = 153
	OpDropTrigger   Opcode = 154
	OpIntegrityCk   Opcode = 155
	OpRowSetAdd     Opcode = 156
	OpParam         Opcode = 157
	OpMemMax        Opcode = 159
	OpOffsetLimit   Opcode = 160
	OpAggInverse    Opcode = 161
	OpAggStep       Opcode = 162
	OpAggStep1      Opcode = 163
	OpAggValue      Opcode = 164
	OpAggFinal      Opcode = 165
	OpExpire        Opcode = 166
	OpCursorLock    Opcode = 167
	OpCursorUnlock  Opcode = 168
	OpTableLock     Opcode = 169
	OpVBegin        Opcode = 170
	OpVCreate       Opcode = 171
	OpVDestroy      Opcode = 172
	OpVOpen         Opcode = 173
	OpVCheck        Opcode = 174
	OpVInitIn       Opcode = 175
	OpVColumn       Opcode = 176
	OpVRename       Opcode = 177
	OpPagecount     Opcode = 178
	OpMaxPgcnt      Opcode = 179
	OpClrSubtype    Opcode = 180
	OpGetSubtype    Opcode = 181
	OpSetSubtype    Opcode = 182
	OpFilterAdd     Opcode = 183
	OpTrace         Opcode = 184
	OpCursorHint    Opcode = 185
	OpReleaseReg    Opcode = 186
	OpNoop          Opcode = 187
	OpExplain       Opcode = 188
	OpAbortable     Opcode = 189
)

// opcodeNames maps every pinned opcode to its display name. An id absent
// from this map is not part of the pinned table (note the gap at 158).
var opcodeNames = map[Opcode]string{
	OpSavepoint: "Savepoint", OpAutoCommit: "AutoCommit", OpTransaction: "Transaction",
	OpCheckpoint: "Checkpoint", OpJournalMode: "JournalMode", OpVacuum: "Vacuum",
	OpVFilter: "VFilter", OpVUpdate: "VUpdate", OpInit: "Init", OpGoto: "Goto",
	OpGosub: "Gosub", OpInitCoroutine: "InitCoroutine", OpYield: "Yield",
	OpMustBeInt: "MustBeInt", OpJump: "Jump", OpOnce: "Once", OpIf: "If",
	OpIfNot: "IfNot", OpIsType: "IsType", OpNot: "Not", OpIfNullRow: "IfNullRow",
	OpSeekLT: "SeekLT", OpSeekLE: "SeekLE", OpSeekGE: "SeekGE", OpSeekGT: "SeekGT",
	OpIfNotOpen: "IfNotOpen", OpIfNoHope: "IfNoHope", OpNoConflict: "NoConflict",
	OpNotFound: "NotFound", OpFound: "Found", OpSeekRowid: "SeekRowid",
	OpNotExists: "NotExists", OpLast: "Last", OpIfSmaller: "IfSmaller",
	OpSorterSort: "SorterSort", OpSort: "Sort", OpRewind: "Rewind",
	OpSorterNext: "SorterNext", OpPrev: "Prev", OpNext: "Next", OpIdxLE: "IdxLE",
	OpIdxGT: "IdxGT", OpIdxLT: "IdxLT", OpOr: "Or", OpAnd: "And", OpIdxGE: "IdxGE",
	OpRowSetRead: "RowSetRead", OpRowSetTest: "RowSetTest", OpProgram: "Program",
	OpFkIfZero: "FkIfZero", OpIsNull: "IsNull", OpNotNull: "NotNull", OpNe: "Ne",
	OpEq: "Eq", OpGt: "Gt", OpLe: "Le", OpLt: "Lt", OpGe: "Ge", OpElseEq: "ElseEq",
	OpIfPos: "IfPos", OpIfNotZero: "IfNotZero", OpDecrJumpZero: "DecrJumpZero",
	OpIncrVacuum: "IncrVacuum", OpVNext: "VNext", OpFilter: "Filter",
	OpPureFunc: "PureFunc", OpFunction: "Function", OpReturn: "Return",
	OpEndCoroutine: "EndCoroutine", OpHaltIfNull: "HaltIfNull", OpHalt: "Halt",
	OpInteger: "Integer", OpInt64: "Int64", OpString: "String",
	OpBeginSubrtn: "BeginSubrtn", OpNull: "Null", OpSoftNull: "SoftNull",
	OpBlob: "Blob", OpVariable: "Variable", OpMove: "Move", OpCopy: "Copy",
	OpSCopy: "SCopy", OpIntCopy: "IntCopy", OpFkCheck: "FkCheck",
	OpResultRow: "ResultRow", OpCollSeq: "CollSeq", OpAddImm: "AddImm",
	OpRealAffinity: "RealAffinity", OpCast: "Cast", OpPermutation: "Permutation",
	OpCompare: "Compare", OpIsTrue: "IsTrue", OpZeroOrNull: "ZeroOrNull",
	OpOffset: "Offset", OpColumn: "Column", OpTypeCheck: "TypeCheck",
	OpAffinity: "Affinity", OpMakeRecord: "MakeRecord", OpCount: "Count",
	OpReadCookie: "ReadCookie", OpSetCookie: "SetCookie", OpReopenIdx: "ReopenIdx",
	OpBitAnd: "BitAnd", OpBitOr: "BitOr", OpShiftLeft: "ShiftLeft",
	OpShiftRight: "ShiftRight", OpAdd: "Add", OpSubtract: "Subtract",
	OpMultiply: "Multiply", OpDivide: "Divide", OpRemainder: "Remainder",
	OpConcat: "Concat", OpOpenRead: "OpenRead", OpOpenWrite: "OpenWrite",
	OpBitNot: "BitNot", OpOpenDup: "OpenDup", OpOpenAutoindex: "OpenAutoindex",
	OpString8: "String8", OpOpenEphemeral: "OpenEphemeral",
	OpSorterOpen: "SorterOpen", OpSequenceTest: "SequenceTest",
	OpOpenPseudo: "OpenPseudo", OpClose: "Close", OpColumnsUsed: "ColumnsUsed",
	OpSeekScan: "SeekScan", OpSeekHit: "SeekHit", OpSequence: "Sequence",
	OpNewRowid: "NewRowid", OpInsert: "Insert", OpRowCell: "RowCell",
	OpDelete: "Delete", OpResetCount: "ResetCount",
	OpSorterCompare: "SorterCompare", OpSorterData: "SorterData",
	OpRowData: "RowData", OpRowid: "Rowid", OpNullRow: "NullRow",
	OpSeekEnd: "SeekEnd", OpIdxInsert: "IdxInsert", OpSorterInsert: "SorterInsert",
	OpIdxDelete: "IdxDelete", OpDeferredSeek: "DeferredSeek",
	OpIdxRowid: "IdxRowid", OpFinishSeek: "FinishSeek", OpDestroy: "Destroy",
	OpClear: "Clear", OpResetSorter: "ResetSorter", OpCreateBtree: "CreateBtree",
	OpSqlExec: "SqlExec", OpParseSchema: "ParseSchema",
	OpLoadAnalysis: "LoadAnalysis", OpDropTable: "DropTable",
	OpDropIndex: "DropIndex", OpReal: "Real", OpDropTrigger: "DropTrigger",
	OpIntegrityCk: "IntegrityCk", OpRowSetAdd: "RowSetAdd", OpParam: "Param",
	OpMemMax: "MemMax", OpOffsetLimit: "OffsetLimit", OpAggInverse: "AggInverse",
	OpAggStep: "AggStep", OpAggStep1: "AggStep1", OpAggValue: "AggValue",
	OpAggFinal: "AggFinal", OpExpire: "Expire", OpCursorLock: "CursorLock",
	OpCursorUnlock: "CursorUnlock", OpTableLock: "TableLock", OpVBegin: "VBegin",
	OpVCreate: "VCreate", OpVDestroy: "VDestroy", OpVOpen: "VOpen",
	OpVCheck: "VCheck", OpVInitIn: "VInitIn", OpVColumn: "VColumn",
	OpVRename: "VRename", OpPagecount: "Pagecount", OpMaxPgcnt: "MaxPgcnt",
	OpClrSubtype: "ClrSubtype", OpGetSubtype: "GetSubtype",
	OpSetSubtype: "SetSubtype", OpFilterAdd: "FilterAdd", OpTrace: "Trace",
	OpCursorHint: "CursorHint", OpReleaseReg: "ReleaseReg", OpNoop: "Noop",
	OpExplain: "Explain", OpAbortable: "Abortable",
}

// IsValid reports whether op is part of the pinned opcode table.
func (op Opcode) IsValid() bool {
	_, ok := opcodeNames[op]
	return ok
}

// Name returns the display name for an opcode.
func (op Opcode) Name() string {
	if name, ok := opcodeNames[op]; ok {
		return name
	}
	return fmt.Sprintf("Unknown_%d", uint8(op))
}

// String implements the Stringer interface.
func (op Opcode) String() string {
	return op.Name()
}
