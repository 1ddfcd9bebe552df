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
)

// UnaryOp is an elementwise operation with one input: output[i] = F(input[i]).
//
// F is evaluated in the working type of the input (see dispatch.UnaryWorkingDType), and the result is
// converted to the output's dtype. One function is given per kind of working type: an operation
// leaves nil the ones its Policy doesn't accept.
type UnaryOp struct {
	Name   string
	Policy dispatch.Policy

	// Int is used for signed integer inputs, evaluated in int64.
	Int func(x int64) int64

	// Uint is used for unsigned integer inputs, evaluated in uint64.
	Uint func(x uint64) uint64

	// Float is used for float inputs. Float32 (and the 16 bits floats) are evaluated in float32, by converting
	// the argument and the result of Float.
	Float func(x float64) float64

	// Complex is used for complex inputs. Complex64 and Complex32 are evaluated in complex64.
	Complex func(x complex128) complex128

	// Float32Into and Float64Into are optional vectorized versions used when both the input and the
	// output are Float32 (or both Float64). They write F(x) into dst, with len(dst) == len(x).
	Float32Into func(dst, x []float32) []float32
	Float64Into func(dst, x []float64) []float64
}

var _ Operation = (*UnaryOp)(nil)

// OpName implements Operation.
func (op *UnaryOp) OpName() string { return op.Name }

// Arity implements Operation.
func (op *UnaryOp) Arity() int { return 1 }

// TypePolicy implements Operation.
func (op *UnaryOp) TypePolicy() dispatch.Policy { return op.Policy }

// unaryInstance holds the validated operands of one UnaryOp call, until its kernel is submitted.
type unaryInstance struct {
	op     *UnaryOp
	queue  backends.Queue
	size   int
	input  dispatch.Input
	output dispatch.Output
	dtypes []dtypes.DType
}

// Apply validates the operands, builds the kernel and submits it to their queue.
// It returns before the kernel is executed: call the queue's Wait before reading the output.
//
// Errors wrap one of the status sentinels. The checks are done in the order: nil tensors or data
// (status.ErrInvalidParameter), different queues (status.ErrQueueMismatch), different shapes
// (status.ErrDimensionMismatch), pointers not allocated by the queue (status.ErrNonConformingPointer) and
// dtypes not accepted by the operation (status.ErrUnexpectedDataType). Finally, writing a complex result to a
// real output fails with status.ErrNarrowingConversion.
// Nothing is submitted if an error is returned.
func (op *UnaryOp) Apply(input, output *tensors.Tensor) error {
	return catchUnknown(op.Name, func() error {
		inst, err := op.newInstance(input, output)
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

func (op *UnaryOp) newInstance(input, output *tensors.Tensor) (*unaryInstance, error) {
	if err := validateOperands(op.Name, input, output); err != nil {
		return nil, err
	}
	size := input.Size()
	in, err := dispatch.NewInput(op.Policy, input.DType(), input.Data(), size)
	if err != nil {
		return nil, errors.WithMessagef(err, "%s: input", op.Name)
	}
	out, err := dispatch.NewOutput(op.Policy, output.DType(), output.Data(), size)
	if err != nil {
		return nil, errors.WithMessagef(err, "%s: output", op.Name)
	}
	return &unaryInstance{
		op:     op,
		queue:  input.Queue(),
		size:   size,
		input:  in,
		output: out,
		dtypes: []dtypes.DType{in.DType(), out.DType()},
	}, nil
}

// build returns the kernel body for the instance's variants.
func (inst *unaryInstance) build() (func(start, end int), error) {
	op, in, out := inst.op, inst.input, inst.output
	if body := inst.vectorized(); body != nil {
		return body, nil
	}
	working := dispatch.UnaryWorkingDType(in.DType())
	missing := func() error {
		return status.Errorf(status.UnexpectedDataType, "%s: not defined for %s (working type %s)", op.Name, in.DType(), working)
	}
	switch working {
	case dtypes.Int64:
		if op.Int == nil {
			return nil, missing()
		}
		return realUnaryBody(in, out, op.Int), nil
	case dtypes.Uint64:
		if op.Uint == nil {
			return nil, missing()
		}
		return realUnaryBody(in, out, op.Uint), nil
	case dtypes.Float32:
		if op.Float == nil {
			return nil, missing()
		}
		fn := op.Float
		return realUnaryBody(in, out, func(x float32) float32 { return float32(fn(float64(x))) }), nil
	case dtypes.Float64:
		if op.Float == nil {
			return nil, missing()
		}
		return realUnaryBody(in, out, op.Float), nil
	case dtypes.Complex64:
		if op.Complex == nil {
			return nil, missing()
		}
		fn := op.Complex
		return complexUnaryBody(op.Name, in, out, func(x complex64) complex64 { return complex64(fn(complex128(x))) })
	case dtypes.Complex128:
		if op.Complex == nil {
			return nil, missing()
		}
		return complexUnaryBody(op.Name, in, out, op.Complex)
	default:
		exceptions.Panicf("eltwise.%s: unexpected working dtype %s for input %s", op.Name, working, in.DType())
	}
	panic(nil) // Unreachable.
}

// vectorized returns the body using the vek routines if they are available for the dtypes of the
// instance, or nil otherwise.
func (inst *unaryInstance) vectorized() func(start, end int) {
	op, in, out := inst.op, inst.input, inst.output
	if in.DType() != out.DType() {
		return nil
	}
	switch in.DType() {
	case dtypes.Float32:
		if op.Float32Into == nil {
			return nil
		}
		x, dst, fn := dispatch.Values[float32](in), dispatch.MutableValues[float32](out), op.Float32Into
		return func(start, end int) { fn(dst[start:end], x[start:end]) }
	case dtypes.Float64:
		if op.Float64Into == nil {
			return nil
		}
		x, dst, fn := dispatch.Values[float64](in), dispatch.MutableValues[float64](out), op.Float64Into
		return func(start, end int) { fn(dst[start:end], x[start:end]) }
	}
	return nil
}

func realUnaryBody[W dispatch.RealWorking](in dispatch.Input, out dispatch.Output, fn func(x W) W) func(start, end int) {
	read := dispatch.RealReader[W](in)
	write := dispatch.RealWriter[W](out)
	return func(start, end int) {
		for i := start; i < end; i++ {
			write(i, fn(read(i)))
		}
	}
}

func complexUnaryBody[W dispatch.ComplexWorking](opName string, in dispatch.Input, out dispatch.Output, fn func(x W) W) (func(start, end int), error) {
	read := dispatch.ComplexReader[W](in)
	write, err := dispatch.ComplexWriter[W](out)
	if err != nil {
		return nil, errors.WithMessagef(err, "%s", opName)
	}
	return func(start, end int) {
		for i := start; i < end; i++ {
			write(i, fn(read(i)))
		}
	}, nil
}
