// Package vdbe assembles and runs programs for a register-based bytecode
// virtual machine. It layers a typed instruction catalog, operand encoding,
// and label bookkeeping over a small engine surface: append instructions,
// then step the prepared program reading typed result columns.
//
// The usual flow is
//
//	conn, _ := vdbe.OpenInMemory()
//	defer conn.Close()
//
//	b, _ := conn.NewProgram()
//	r := b.AllocRegister()
//	b.Add(vdbe.Integer{Value: 42, Dest: r})
//	b.Add(vdbe.ResultRow{Start: r, Count: 1})
//	b.Add(vdbe.Halt{})
//
//	p, _ := b.Finish(1)
//	defer p.Finalize()
//	for {
//		res, err := p.Step()
//		if err != nil || res == vdbe.StepDone {
//			break
//		}
//		fmt.Println(p.ColumnInt64(0))
//	}
//
// A Connection and everything created from it (builders, programs) is
// confined to one goroutine; nothing in this package is safe for
// concurrent use on a shared handle. Distinct connections are fully
// independent and may be used from different goroutines.
package vdbe
