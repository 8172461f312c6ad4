package vdbe

import "testing"

func TestOpcode_PinnedNumbering(t *testing.T) {
	// Spot-check the table against the engine's fixed numbering. These ids
	// are load-bearing: serialized images and raw instructions depend on
	// them never moving.
	pinned := []struct {
		op   Opcode
		id   uint8
		name string
	}{
		{OpSavepoint, 0, "Savepoint"},
		{OpInit, 8, "Init"},
		{OpGoto, 9, "Goto"},
		{OpYield, 12, "Yield"},
		{OpRewind, 36, "Rewind"},
		{OpEq, 53, "Eq"},
		{OpHalt, 70, "Halt"},
		{OpInteger, 71, "Integer"},
		{OpNull, 75, "Null"},
		{OpResultRow, 84, "ResultRow"},
		{OpColumn, 94, "Column"},
		{OpAdd, 106, "Add"},
		{OpSubtract, 107, "Subtract"},
		{OpConcat, 111, "Concat"},
		{OpString8, 117, "String8"},
		{OpOpenEphemeral, 118, "OpenEphemeral"},
		{OpIdxInsert, 138, "IdxInsert"},
		{OpAggStep, 162, "AggStep"},
		{OpNoop, 187, "Noop"},
		{OpAbortable, 189, "Abortable"},
	}
	for _, p := range pinned {
		if uint8(p.op) != p.id {
			t.Errorf("%s = %d, want %d", p.name, uint8(p.op), p.id)
		}
		if got := p.op.Name(); got != p.name {
			t.Errorf("Name(%d) = %q, want %q", p.id, got, p.name)
		}
		if !p.op.IsValid() {
			t.Errorf("%s unexpectedly invalid", p.name)
		}
	}
}

func TestOpcode_GapAt158(t *testing.T) {
	if Opcode(158).IsValid() {
		t.Error("opcode 158 should be a hole in the table")
	}
	if got := Opcode(158).Name(); got != "Unknown_158" {
		t.Errorf("Name(158) = %q, want Unknown_158", got)
	}
}

func TestOpcode_AllNamedIdsValid(t *testing.T) {
	count := 0
	for id := 0; id < 256; id++ {
		if Opcode(id).IsValid() {
			count++
		}
	}
	// 0..189 inclusive minus the hole at 158.
	if count != 189 {
		t.Errorf("valid opcode count = %d, want 189", count)
	}
}

func TestInsnName_MatchesOpcode(t *testing.T) {
	cases := []struct {
		in   Insn
		want string
	}{
		{Integer{Value: 1, Dest: 1}, "Integer"},
		{Add{Lhs: 1, Rhs: 2, Dest: 3}, "Add"},
		{ResultRow{Start: 1, Count: 1}, "ResultRow"},
		{Halt{}, "Halt"},
		{HaltWithError{ErrorCode: 1}, "Halt"},
		{Raw{Opcode: OpNoop}, "Noop"},
	}
	for _, c := range cases {
		if got := InsnName(c.in); got != c.want {
			t.Errorf("InsnName(%T) = %q, want %q", c.in, got, c.want)
		}
	}
}
