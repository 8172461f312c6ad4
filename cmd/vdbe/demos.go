package main

import (
	"fmt"

	"github.com/el-yawd/sqlite-vdbe-sub000/vdbe"
)

// buildDemo assembles one of the built-in demonstration programs.
func buildDemo(conn *vdbe.Connection, name string) (*vdbe.Program, error) {
	switch name {
	case "add":
		return buildAdd(conn)
	case "fib":
		return buildFibonacci(conn, 10)
	case "concat":
		return buildConcat(conn)
	}
	return nil, fmt.Errorf("unknown demo %q (want add, fib, or concat)", name)
}

// buildAdd computes 10 + 32 and yields the sum as a single-column row.
func buildAdd(conn *vdbe.Connection) (*vdbe.Program, error) {
	b, err := conn.NewProgram()
	if err != nil {
		return nil, err
	}
	rLhs := b.AllocRegister()
	rRhs := b.AllocRegister()
	rSum := b.AllocRegister()

	steps := []vdbe.Insn{
		vdbe.Integer{Value: 10, Dest: rLhs},
		vdbe.Integer{Value: 32, Dest: rRhs},
		vdbe.Add{Lhs: rLhs, Rhs: rRhs, Dest: rSum},
		vdbe.ResultRow{Start: rSum, Count: 1},
		vdbe.Halt{},
	}
	for _, in := range steps {
		if _, err := b.Add(in); err != nil {
			b.Release()
			return nil, err
		}
	}
	return b.Finish(1)
}

// buildFibonacci yields the first n Fibonacci numbers, one per row.
func buildFibonacci(conn *vdbe.Connection, n int) (*vdbe.Program, error) {
	b, err := conn.NewProgram()
	if err != nil {
		return nil, err
	}
	rA := b.AllocRegister()     // fib(i-2)
	rB := b.AllocRegister()     // fib(i-1)
	rNext := b.AllocRegister()  // fib(i)
	rCount := b.AllocRegister() // rows remaining

	emit := func(in vdbe.Insn) error {
		_, err := b.Add(in)
		return err
	}
	fail := func(err error) (*vdbe.Program, error) {
		b.Release()
		return nil, err
	}

	if err := emit(vdbe.Integer{Value: 0, Dest: rA}); err != nil {
		return fail(err)
	}
	if err := emit(vdbe.Integer{Value: 1, Dest: rB}); err != nil {
		return fail(err)
	}
	if err := emit(vdbe.Integer{Value: int32(n), Dest: rCount}); err != nil {
		return fail(err)
	}
	if err := emit(vdbe.ResultRow{Start: rA, Count: 1}); err != nil {
		return fail(err)
	}
	if err := emit(vdbe.AddImm{Dest: rCount, Value: -1}); err != nil {
		return fail(err)
	}

	loop := b.MakeLabel()
	if err := b.ResolveLabel(loop); err != nil {
		return fail(err)
	}
	body := []vdbe.Insn{
		vdbe.ResultRow{Start: rB, Count: 1},
		vdbe.Add{Lhs: rA, Rhs: rB, Dest: rNext},
		vdbe.SCopy{Src: rB, Dest: rA},
		vdbe.SCopy{Src: rNext, Dest: rB},
		vdbe.AddImm{Dest: rCount, Value: -1},
		vdbe.IfPos{Src: rCount, Target: loop},
		vdbe.Halt{},
	}
	for _, in := range body {
		if err := emit(in); err != nil {
			return fail(err)
		}
	}
	return b.Finish(1)
}

// buildConcat joins two string constants and yields the result.
func buildConcat(conn *vdbe.Connection) (*vdbe.Program, error) {
	b, err := conn.NewProgram()
	if err != nil {
		return nil, err
	}
	rLhs := b.AllocRegister()
	rRhs := b.AllocRegister()
	rOut := b.AllocRegister()

	steps := []vdbe.Insn{
		vdbe.String8{Value: "Hello, ", Dest: rLhs},
		vdbe.String8{Value: "World!", Dest: rRhs},
		vdbe.Concat{Lhs: rLhs, Rhs: rRhs, Dest: rOut},
		vdbe.ResultRow{Start: rOut, Count: 1},
		vdbe.Halt{},
	}
	for _, in := range steps {
		if _, err := b.Add(in); err != nil {
			b.Release()
			return nil, err
		}
	}
	return b.Finish(1)
}
