package vdbe

import (
	"fmt"
	"strconv"
	"strings"
)

// ---------------------------------------------------------------------------
// Program listing
// ---------------------------------------------------------------------------

// InstructionRecord is one row of a program listing: the instruction's
// address, opcode, operand slots, and an optional comment. Records reflect
// label resolution, so a listing taken after assembly shows real addresses.
type InstructionRecord struct {
	Addr       int
	Opcode     Opcode
	P1, P2, P3 int
	P4         P4
	P5         uint16
	Comment    string
}

// P4Display renders the auxiliary operand for a listing, empty when absent.
func (r InstructionRecord) P4Display() string {
	switch r.P4.Kind {
	case P4KindInt, P4KindInt64:
		return strconv.FormatInt(r.P4.Int, 10)
	case P4KindReal:
		return strconv.FormatFloat(r.P4.Real, 'g', -1, 64)
	case P4KindString:
		return r.P4.Str
	}
	return ""
}

// String renders the record as one fixed-width listing row.
func (r InstructionRecord) String() string {
	return fmt.Sprintf("%-4d %-13s %-4d %-4d %-4d %-13s %-2d %s",
		r.Addr, r.Opcode.Name(), r.P1, r.P2, r.P3, r.P4Display(), r.P5, r.Comment)
}

// explainHeader matches the column layout of InstructionRecord.String.
const explainHeader = "addr opcode        p1   p2   p3   p4            p5 comment"

// Explain renders the whole program listing, one instruction per line,
// with a header row.
func (p *Program) Explain() string {
	return renderListing(p.records)
}

// Explain renders the instructions appended so far. Useful while a program
// is still under construction; unresolved labels show as negative targets.
func (b *ProgramBuilder) Explain() string {
	return renderListing(b.records)
}

func renderListing(records []InstructionRecord) string {
	var sb strings.Builder
	sb.WriteString(explainHeader)
	sb.WriteByte('\n')
	for _, r := range records {
		sb.WriteString(strings.TrimRight(r.String(), " "))
		sb.WriteByte('\n')
	}
	return sb.String()
}
