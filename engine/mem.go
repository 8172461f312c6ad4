package engine

import (
	"fmt"
	"strconv"
	"strings"
)

// Column type tags reported by ColumnType. Same numbering as the compatible
// engine's fundamental datatype codes.
const (
	TypeInteger = 1
	TypeFloat   = 2
	TypeText    = 3
	TypeBlob    = 4
	TypeNull    = 5
)

type cellType uint8

const (
	cellNull cellType = iota
	cellInt
	cellReal
	cellText
	cellBlob
	cellRecord
)

// cell is one register (or record field) of the execution frame.
type cell struct {
	typ cellType
	i   int64
	r   float64
	s   string
	b   []byte
	rec []cell
}

func intCell(v int64) cell     { return cell{typ: cellInt, i: v} }
func realCell(v float64) cell  { return cell{typ: cellReal, r: v} }
func textCell(v string) cell   { return cell{typ: cellText, s: v} }
func blobCell(v []byte) cell   { return cell{typ: cellBlob, b: v} }
func recordCell(v []cell) cell { return cell{typ: cellRecord, rec: v} }

func (c *cell) isNull() bool { return c.typ == cellNull }

// intValue coerces a cell to an integer the way the register machine does:
// reals truncate toward zero, text parses a leading numeric prefix, blobs
// and NULL yield zero.
func (c *cell) intValue() int64 {
	switch c.typ {
	case cellInt:
		return c.i
	case cellReal:
		return int64(c.r)
	case cellText:
		if v, err := strconv.ParseInt(strings.TrimSpace(c.s), 10, 64); err == nil {
			return v
		}
		if f, err := strconv.ParseFloat(strings.TrimSpace(c.s), 64); err == nil {
			return int64(f)
		}
		return 0
	default:
		return 0
	}
}

func (c *cell) realValue() float64 {
	switch c.typ {
	case cellInt:
		return float64(c.i)
	case cellReal:
		return c.r
	case cellText:
		if f, err := strconv.ParseFloat(strings.TrimSpace(c.s), 64); err == nil {
			return f
		}
		return 0
	default:
		return 0
	}
}

func (c *cell) textValue() string {
	switch c.typ {
	case cellInt:
		return strconv.FormatInt(c.i, 10)
	case cellReal:
		return strconv.FormatFloat(c.r, 'g', -1, 64)
	case cellText:
		return c.s
	case cellBlob:
		return string(c.b)
	default:
		return ""
	}
}

// isNumeric reports whether the cell holds an integer or real.
func (c *cell) isNumeric() bool { return c.typ == cellInt || c.typ == cellReal }

// truth evaluates the cell as a branch condition. NULL cells have no truth
// value; the caller decides via the jump-if-null flag.
func (c *cell) truth() (value, known bool) {
	switch c.typ {
	case cellNull:
		return false, false
	case cellInt:
		return c.i != 0, true
	case cellReal:
		return c.r != 0, true
	default:
		// Text and blob follow numeric coercion.
		return c.realValue() != 0, true
	}
}

func (c *cell) typeCode() int {
	switch c.typ {
	case cellInt:
		return TypeInteger
	case cellReal:
		return TypeFloat
	case cellText:
		return TypeText
	case cellBlob, cellRecord:
		return TypeBlob
	default:
		return TypeNull
	}
}

// compareCells orders two cells using the engine's cross-type ordering:
// NULL < numeric < text < blob. Within numerics, integers and reals compare
// by value.
func compareCells(a, b *cell) int {
	ra, rb := typeRank(a), typeRank(b)
	if ra != rb {
		if ra < rb {
			return -1
		}
		return 1
	}
	switch ra {
	case 0: // both NULL
		return 0
	case 1: // numeric
		if a.typ == cellInt && b.typ == cellInt {
			switch {
			case a.i < b.i:
				return -1
			case a.i > b.i:
				return 1
			}
			return 0
		}
		fa, fb := a.realValue(), b.realValue()
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		}
		return 0
	case 2:
		return strings.Compare(a.s, b.s)
	default:
		return strings.Compare(string(a.b), string(b.b))
	}
}

func typeRank(c *cell) int {
	switch c.typ {
	case cellNull:
		return 0
	case cellInt, cellReal:
		return 1
	case cellText:
		return 2
	default:
		return 3
	}
}

func (c *cell) String() string {
	switch c.typ {
	case cellNull:
		return "NULL"
	case cellRecord:
		return fmt.Sprintf("record(%d)", len(c.rec))
	default:
		return c.textValue()
	}
}
