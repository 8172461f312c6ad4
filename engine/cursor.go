package engine

// Cursor opcode execution. Storage is the in-memory rowid-ordered table
// model: OpenEphemeral creates program-private storage, OpenRead/OpenWrite
// attach to connection-shared storage keyed by root page number, and the
// seek/scan opcodes treat P3 as a single integer key register.

func (v *Vdbe) cursorAt(idx int) (*cursor, error) {
	if idx < 0 || idx >= len(v.cursors) {
		return nil, errf(StatusRange, "cursor %d out of range [0,%d)", idx, len(v.cursors))
	}
	cu := v.cursors[idx]
	if cu == nil {
		return nil, errf(StatusError, "cursor %d is not open", idx)
	}
	return cu, nil
}

// cursorOp executes one cursor-class opcode. It reports whether a jump was
// taken and its target.
func (v *Vdbe) cursorOp(o *op) (jump bool, target int, err error) {
	switch o.opcode {
	case opOpenEphemeral:
		if o.p1 < 0 || o.p1 >= len(v.cursors) {
			return false, 0, errf(StatusRange, "cursor %d out of range [0,%d)", o.p1, len(v.cursors))
		}
		v.cursors[o.p1] = &cursor{tbl: &table{}, pos: -1}
		return false, 0, nil

	case opOpenRead, opOpenWrite:
		if o.p1 < 0 || o.p1 >= len(v.cursors) {
			return false, 0, errf(StatusRange, "cursor %d out of range [0,%d)", o.p1, len(v.cursors))
		}
		tbl := v.conn.table(o.p2)
		if tbl == nil {
			return false, 0, errf(StatusError, "connection storage is closed")
		}
		v.cursors[o.p1] = &cursor{tbl: tbl, pos: -1}
		return false, 0, nil

	case opClose:
		if o.p1 >= 0 && o.p1 < len(v.cursors) {
			v.cursors[o.p1] = nil
		}
		return false, 0, nil

	case opRewind:
		cu, err := v.cursorAt(o.p1)
		if err != nil {
			return false, 0, err
		}
		cu.nullRow = false
		cu.pos = 0
		if len(cu.tbl.rows) == 0 {
			return true, o.p2, nil
		}
		return false, 0, nil

	case opLast:
		cu, err := v.cursorAt(o.p1)
		if err != nil {
			return false, 0, err
		}
		cu.nullRow = false
		cu.pos = len(cu.tbl.rows) - 1
		if len(cu.tbl.rows) == 0 {
			return true, o.p2, nil
		}
		return false, 0, nil

	case opNext:
		cu, err := v.cursorAt(o.p1)
		if err != nil {
			return false, 0, err
		}
		cu.pos++
		if cu.pos < len(cu.tbl.rows) {
			return true, o.p2, nil
		}
		return false, 0, nil

	case opPrev:
		cu, err := v.cursorAt(o.p1)
		if err != nil {
			return false, 0, err
		}
		cu.pos--
		if cu.pos >= 0 {
			return true, o.p2, nil
		}
		return false, 0, nil

	case opSeekRowid:
		cu, err := v.cursorAt(o.p1)
		if err != nil {
			return false, 0, err
		}
		key, err := v.load(o.p3)
		if err != nil {
			return false, 0, err
		}
		cu.nullRow = false
		i, found := cu.tbl.find(key.intValue())
		if !found {
			return true, o.p2, nil
		}
		cu.pos = i
		return false, 0, nil

	case opSeekGE, opSeekGT, opSeekLE, opSeekLT:
		return v.seekRelative(o)

	case opColumn:
		cu, err := v.cursorAt(o.p1)
		if err != nil {
			return false, 0, err
		}
		var out cell
		if cu.valid() {
			rec := cu.tbl.rows[cu.pos].rec
			if o.p2 >= 0 && o.p2 < len(rec) {
				out = copyCell(&rec[o.p2])
			}
		}
		return false, 0, v.store(o.p3, out)

	case opRowid:
		cu, err := v.cursorAt(o.p1)
		if err != nil {
			return false, 0, err
		}
		var out cell
		if cu.valid() {
			out = intCell(cu.tbl.rows[cu.pos].rowid)
		}
		return false, 0, v.store(o.p2, out)

	case opNewRowid:
		cu, err := v.cursorAt(o.p1)
		if err != nil {
			return false, 0, err
		}
		return false, 0, v.store(o.p2, intCell(cu.tbl.maxRowid()+1))

	case opInsert:
		cu, err := v.cursorAt(o.p1)
		if err != nil {
			return false, 0, err
		}
		data, err := v.load(o.p2)
		if err != nil {
			return false, 0, err
		}
		key, err := v.load(o.p3)
		if err != nil {
			return false, 0, err
		}
		var rec []cell
		if data.typ == cellRecord {
			rec = make([]cell, len(data.rec))
			copy(rec, data.rec)
		} else {
			rec = []cell{copyCell(data)}
		}
		cu.tbl.insert(key.intValue(), rec)
		return false, 0, nil

	case opDelete:
		cu, err := v.cursorAt(o.p1)
		if err != nil {
			return false, 0, err
		}
		if !cu.valid() {
			return false, 0, errf(StatusError, "Delete: cursor %d is not pointing at a row", o.p1)
		}
		cu.tbl.delete(cu.pos)
		return false, 0, nil

	case opMakeRecord:
		if o.p1 < 1 || o.p1+o.p2-1 > v.nMem {
			return false, 0, errf(StatusRange, "record registers [%d,%d] out of range", o.p1, o.p1+o.p2-1)
		}
		rec := make([]cell, o.p2)
		for i := 0; i < o.p2; i++ {
			rec[i] = copyCell(&v.mem[o.p1+i])
		}
		return false, 0, v.store(o.p3, recordCell(rec))

	case opNullRow:
		cu, err := v.cursorAt(o.p1)
		if err != nil {
			return false, 0, err
		}
		cu.nullRow = true
		return false, 0, nil
	}

	return false, 0, errf(StatusError, "unreachable cursor opcode %d", o.opcode)
}

// seekRelative positions the cursor at the first (or last) row satisfying
// rowid CMP key, jumping to P2 when no row qualifies.
func (v *Vdbe) seekRelative(o *op) (bool, int, error) {
	cu, err := v.cursorAt(o.p1)
	if err != nil {
		return false, 0, err
	}
	keyCell, err := v.load(o.p3)
	if err != nil {
		return false, 0, err
	}
	key := keyCell.intValue()
	cu.nullRow = false
	i, found := cu.tbl.find(key)

	switch o.opcode {
	case opSeekGE:
		// i already points at the first rowid >= key.
	case opSeekGT:
		if found {
			i++
		}
	case opSeekLE:
		if !found {
			i--
		}
	case opSeekLT:
		i--
	}

	if i < 0 || i >= len(cu.tbl.rows) {
		return true, o.p2, nil
	}
	cu.pos = i
	return false, 0, nil
}
