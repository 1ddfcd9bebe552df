// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package eltwise

import (
	"github.com/gomlx/exceptions"
	"github.com/gomlx/galileo/backends"
	"github.com/gomlx/galileo/pkg/core/dispatch"
	"github.com/gomlx/galileo/pkg/core/dtypes"
	"github.com/gomlx/galileo/pkg/core/status"
	"github.com/gomlx/galileo/pkg/core/tensors"
	"github.com/pkg/errors"
	"github.com/viterin/vek"
	"github.com/viterin/vek/vek32"
)

// binaryKind enumerates the arithmetic functions of BinaryOp.
type binaryKind int

const (
	kindAdd binaryKind = iota
	kindSub
	kindMul
	kindDiv
)

// BinaryOp is an elementwise arithmetic operation with two inputs: output[i] = F(lhs[i], rhs[i]).
//
// The dtype of the output must be exactly dispatch.ResultDType(lhs.DType(), rhs.DType()): results are never
// implicitly truncated. F is evaluated in dispatch.WorkingDType of the result.
type BinaryOp struct {
	Name   string
	Policy dispatch.Policy
	kind   binaryKind
}

var _ Operation = (*BinaryOp)(nil)

// OpName implements Operation.
func (op *BinaryOp) OpName() string { return op.Name }

// Arity implements Operation.
func (op *BinaryOp) Arity() int { return 2 }

// TypePolicy implements Operation.
func (op *BinaryOp) TypePolicy() dispatch.Policy { return op.Policy }

type binaryInstance struct {
	op       *BinaryOp
	queue    backends.Queue
	size     int
	lhs, rhs dispatch.Input
	output   dispatch.Output
	dtypes   []dtypes.DType
}

// Apply validates the operands, builds the kernel and submits it to their queue.
// It returns before the kernel is executed: call the queue's Wait before reading the output.
//
// The checks are the same as UnaryOp.Apply, followed by the result dtype check: if the output is not of
// the dtype dispatch.ResultDType(lhs, rhs) it fails with status.ErrNarrowingConversion.
// Nothing is submitted if an error is returned.
//
// Integer division by zero is not checked: it makes the kernel fail, and the fault is reported by the
// queue's Wait.
func (op *BinaryOp) Apply(lhs, rhs, output *tensors.Tensor) error {
	return catchUnknown(op.Name, func() error {
		inst, err := op.newInstance(lhs, rhs, output)
		if err != nil {
			return err
		}
		body, err := inst.build()
		if err != nil {
			return err
		}
		return submit(inst.queue, op.Name, inst.size, inst.dtypes, body)
	})
}

func (op *BinaryOp) newInstance(lhs, rhs, output *tensors.Tensor) (*binaryInstance, error) {
	if err := validateOperands(op.Name, lhs, rhs, output); err != nil {
		return nil, err
	}
	size := lhs.Size()
	lhsIn, err := dispatch.NewInput(op.Policy, lhs.DType(), lhs.Data(), size)
	if err != nil {
		return nil, errors.WithMessagef(err, "%s: lhs", op.Name)
	}
	rhsIn, err := dispatch.NewInput(op.Policy, rhs.DType(), rhs.Data(), size)
	if err != nil {
		return nil, errors.WithMessagef(err, "%s: rhs", op.Name)
	}
	out, err := dispatch.NewOutput(op.Policy, output.DType(), output.Data(), size)
	if err != nil {
		return nil, errors.WithMessagef(err, "%s: output", op.Name)
	}
	if result := dispatch.ResultDType(lhsIn.DType(), rhsIn.DType()); result != out.DType() {
		return nil, status.Errorf(status.NarrowingConversion, "%s(%s, %s) results in %s, it cannot be stored in output of dtype %s",
			op.Name, lhsIn.DType(), rhsIn.DType(), result, out.DType())
	}
	return &binaryInstance{
		op:     op,
		queue:  lhs.Queue(),
		size:   size,
		lhs:    lhsIn,
		rhs:    rhsIn,
		output: out,
		dtypes: []dtypes.DType{lhsIn.DType(), rhsIn.DType(), out.DType()},
	}, nil
}

func (inst *binaryInstance) build() (func(start, end int), error) {
	if body := inst.vectorized(); body != nil {
		return body, nil
	}
	lhs, rhs, out, kind := inst.lhs, inst.rhs, inst.output, inst.op.kind
	switch working := dispatch.WorkingDType(out.DType()); working {
	case dtypes.Int32:
		return realBinaryBody(lhs, rhs, out, binaryFn[int32](kind)), nil
	case dtypes.Int64:
		return realBinaryBody(lhs, rhs, out, binaryFn[int64](kind)), nil
	case dtypes.Uint32:
		return realBinaryBody(lhs, rhs, out, binaryFn[uint32](kind)), nil
	case dtypes.Uint64:
		return realBinaryBody(lhs, rhs, out, binaryFn[uint64](kind)), nil
	case dtypes.Float32:
		return realBinaryBody(lhs, rhs, out, binaryFn[float32](kind)), nil
	case dtypes.Float64:
		return realBinaryBody(lhs, rhs, out, binaryFn[float64](kind)), nil
	case dtypes.Complex64:
		return complexBinaryBody(inst.op.Name, lhs, rhs, out, binaryFn[complex64](kind))
	case dtypes.Complex128:
		return complexBinaryBody(inst.op.Name, lhs, rhs, out, binaryFn[complex128](kind))
	default:
		exceptions.Panicf("eltwise.%s: unexpected working dtype %s for result %s", inst.op.Name, working, out.DType())
	}
	panic(nil) // Unreachable.
}

// vectorized returns a body using vek if all operands are Float32 or all are Float64, or nil otherwise.
func (inst *binaryInstance) vectorized() func(start, end int) {
	lhs, rhs, out := inst.lhs, inst.rhs, inst.output
	if lhs.DType() != rhs.DType() || lhs.DType() != out.DType() {
		return nil
	}
	switch out.DType() {
	case dtypes.Float32:
		x, y, dst := dispatch.Values[float32](lhs), dispatch.Values[float32](rhs), dispatch.MutableValues[float32](out)
		fn := vek32Into(inst.op.kind)
		return func(start, end int) { fn(dst[start:end], x[start:end], y[start:end]) }
	case dtypes.Float64:
		x, y, dst := dispatch.Values[float64](lhs), dispatch.Values[float64](rhs), dispatch.MutableValues[float64](out)
		fn := vek64Into(inst.op.kind)
		return func(start, end int) { fn(dst[start:end], x[start:end], y[start:end]) }
	}
	return nil
}

// binaryWorking are all the working types of binary operations.
type binaryWorking interface {
	dispatch.RealWorking | dispatch.ComplexWorking
}

func binaryFn[W binaryWorking](kind binaryKind) func(a, b W) W {
	switch kind {
	case kindAdd:
		return func(a, b W) W { return a + b }
	case kindSub:
		return func(a, b W) W { return a - b }
	case kindMul:
		return func(a, b W) W { return a * b }
	case kindDiv:
		return func(a, b W) W { return a / b }
	}
	exceptions.Panicf("eltwise: unknown binary operation kind %d", kind)
	panic(nil) // Unreachable.
}

func vek32Into(kind binaryKind) func(dst, x, y []float32) []float32 {
	switch kind {
	case kindAdd:
		return vek32.Add_Into
	case kindSub:
		return vek32.Sub_Into
	case kindMul:
		return vek32.Mul_Into
	case kindDiv:
		return vek32.Div_Into
	}
	exceptions.Panicf("eltwise: unknown binary operation kind %d", kind)
	panic(nil) // Unreachable.
}

func vek64Into(kind binaryKind) func(dst, x, y []float64) []float64 {
	switch kind {
	case kindAdd:
		return vek.Add_Into
	case kindSub:
		return vek.Sub_Into
	case kindMul:
		return vek.Mul_Into
	case kindDiv:
		return vek.Div_Into
	}
	exceptions.Panicf("eltwise: unknown binary operation kind %d", kind)
	panic(nil) // Unreachable.
}

func realBinaryBody[W dispatch.RealWorking](lhs, rhs dispatch.Input, out dispatch.Output, fn func(a, b W) W) func(start, end int) {
	readLHS, readRHS := dispatch.RealReader[W](lhs), dispatch.RealReader[W](rhs)
	write := dispatch.RealWriter[W](out)
	return func(start, end int) {
		for i := start; i < end; i++ {
			write(i, fn(readLHS(i), readRHS(i)))
		}
	}
}

func complexBinaryBody[W dispatch.ComplexWorking](opName string, lhs, rhs dispatch.Input, out dispatch.Output,
	fn func(a, b W) W) (func(start, end int), error) {
	readLHS, readRHS := dispatch.ComplexReader[W](lhs), dispatch.ComplexReader[W](rhs)
	write, err := dispatch.ComplexWriter[W](out)
	if err != nil {
		return nil, errors.WithMessagef(err, "%s", opName)
	}
	return func(start, end int) {
		for i := start; i < end; i++ {
			write(i, fn(readLHS(i), readRHS(i)))
		}
	}, nil
}
