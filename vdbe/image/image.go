// Package image serializes assembled programs to a compact binary form and
// re-assembles them onto a connection. An image captures the instruction
// list with operands and the frame geometry (register, cursor, and column
// counts); it does not capture execution state or table contents.
package image

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/el-yawd/sqlite-vdbe-sub000/vdbe"
)

// FormatVersion is bumped whenever the image layout changes incompatibly.
const FormatVersion = 1

var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("image: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// Instruction is one serialized instruction. P4 is flattened into a kind
// tag plus at most one payload field so canonical encoding stays stable.
type Instruction struct {
	Opcode  uint8   `cbor:"1,keyasint"`
	P1      int     `cbor:"2,keyasint,omitempty"`
	P2      int     `cbor:"3,keyasint,omitempty"`
	P3      int     `cbor:"4,keyasint,omitempty"`
	P4Kind  uint8   `cbor:"5,keyasint,omitempty"`
	P4Int   int64   `cbor:"6,keyasint,omitempty"`
	P4Real  float64 `cbor:"7,keyasint,omitempty"`
	P4Str   string  `cbor:"8,keyasint,omitempty"`
	P5      uint16  `cbor:"9,keyasint,omitempty"`
	Comment string  `cbor:"10,keyasint,omitempty"`
}

// Image is a serialized program.
type Image struct {
	Version      byte          `cbor:"1,keyasint"`
	NumRegisters int           `cbor:"2,keyasint"`
	NumCursors   int           `cbor:"3,keyasint"`
	NumColumns   int           `cbor:"4,keyasint"`
	Instructions []Instruction `cbor:"5,keyasint"`
}

// Snapshot captures an assembled program as an Image.
func Snapshot(p *vdbe.Program) *Image {
	records := p.Instructions()
	insns := make([]Instruction, len(records))
	for i, r := range records {
		insns[i] = Instruction{
			Opcode:  uint8(r.Opcode),
			P1:      r.P1,
			P2:      r.P2,
			P3:      r.P3,
			P4Kind:  uint8(r.P4.Kind),
			P5:      r.P5,
			Comment: r.Comment,
		}
		switch r.P4.Kind {
		case vdbe.P4KindInt, vdbe.P4KindInt64:
			insns[i].P4Int = r.P4.Int
		case vdbe.P4KindReal:
			insns[i].P4Real = r.P4.Real
		case vdbe.P4KindString:
			insns[i].P4Str = r.P4.Str
		}
	}
	return &Image{
		Version:      FormatVersion,
		NumRegisters: p.RegisterCount(),
		NumCursors:   p.CursorCount(),
		NumColumns:   p.ColumnCount(),
		Instructions: insns,
	}
}

// Marshal serializes an Image to canonical CBOR bytes.
func Marshal(img *Image) ([]byte, error) {
	return cborEncMode.Marshal(img)
}

// Unmarshal deserializes an Image from CBOR bytes and validates its
// version and geometry.
func Unmarshal(data []byte) (*Image, error) {
	var img Image
	if err := cbor.Unmarshal(data, &img); err != nil {
		return nil, fmt.Errorf("image: unmarshal: %w", err)
	}
	if err := validate(&img); err != nil {
		return nil, err
	}
	return &img, nil
}

func validate(img *Image) error {
	if img.Version != FormatVersion {
		return fmt.Errorf("image: unsupported format version %d (want %d)", img.Version, FormatVersion)
	}
	if img.NumRegisters < 0 || img.NumCursors < 0 || img.NumColumns < 0 {
		return fmt.Errorf("image: negative frame geometry (%d regs, %d cursors, %d cols)",
			img.NumRegisters, img.NumCursors, img.NumColumns)
	}
	for i, in := range img.Instructions {
		if !vdbe.Opcode(in.Opcode).IsValid() {
			return fmt.Errorf("image: instruction %d has unknown opcode %d", i, in.Opcode)
		}
		if in.P4Kind > uint8(vdbe.P4KindString) {
			return fmt.Errorf("image: instruction %d has unknown P4 kind %d", i, in.P4Kind)
		}
	}
	return nil
}

// Load re-assembles an image onto the connection and returns the prepared
// program. A snapshot that cannot be re-assembled reports an
// allocation-failed error.
func Load(conn *vdbe.Connection, data []byte) (*vdbe.Program, error) {
	img, err := Unmarshal(data)
	if err != nil {
		return nil, &vdbe.Error{Kind: vdbe.KindAllocationFailed, Message: err.Error()}
	}
	b, err := conn.NewProgram()
	if err != nil {
		return nil, err
	}
	b.AllocRegisters(img.NumRegisters)
	for i := 0; i < img.NumCursors; i++ {
		b.AllocCursor()
	}
	for _, in := range img.Instructions {
		raw := vdbe.Raw{
			Opcode: vdbe.Opcode(in.Opcode),
			P1:     in.P1,
			P2:     in.P2,
			P3:     in.P3,
			P5:     in.P5,
		}
		switch vdbe.P4Kind(in.P4Kind) {
		case vdbe.P4KindInt:
			raw.P4 = vdbe.P4Int(int(in.P4Int))
		case vdbe.P4KindInt64:
			raw.P4 = vdbe.P4Int64(in.P4Int)
		case vdbe.P4KindReal:
			raw.P4 = vdbe.P4Real(in.P4Real)
		case vdbe.P4KindString:
			raw.P4 = vdbe.P4String(in.P4Str)
		}
		if _, err := b.AddComment(raw, in.Comment); err != nil {
			b.Release()
			return nil, err
		}
	}
	p, err := b.Finish(img.NumColumns)
	if err != nil {
		b.Release()
		return nil, err
	}
	return p, nil
}
