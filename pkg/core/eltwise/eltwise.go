// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package eltwise implements the elementwise operations: it validates the operand tensors, builds a
// correctly typed kernel for their dtypes and submits it to the tensors' queue.
//
// Operations return as soon as the kernel is submitted: results are only available after the queue's
// Wait. Validation failures are returned synchronously, before anything is submitted, as errors wrapping
// one of the sentinel errors of package status. Faults during the execution of a kernel (e.g. an integer
// division by zero) are owned by the queue, and reported by its Wait.
//
// Example:
//
//	x := must.M1(tensors.Allocate(queue, dtypes.Float32, 1024))
//	y := must.M1(tensors.Allocate(queue, dtypes.Float32, 1024))
//	err := eltwise.Neg.Apply(x, y)
//	...
//	err = queue.Wait()
package eltwise

import (
	"fmt"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/galileo/backends"
	"github.com/gomlx/galileo/pkg/core/dispatch"
	"github.com/gomlx/galileo/pkg/core/dtypes"
	"github.com/gomlx/galileo/pkg/core/status"
	"github.com/gomlx/galileo/pkg/core/tensors"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Operation is implemented by UnaryOp and BinaryOp.
type Operation interface {
	// OpName returns the name of the operation.
	OpName() string

	// Arity is the number of input operands: 1 or 2.
	Arity() int

	// TypePolicy returns the policy of accepted dtypes for all operands and the output.
	TypePolicy() dispatch.Policy
}

// validateOperands checks the tensors of an operation, in order: non-nil tensors and data pointers,
// same queue, same shape, and finally that the data pointers were allocated by the queue.
func validateOperands(opName string, operands ...*tensors.Tensor) error {
	for ii, t := range operands {
		if t == nil {
			return status.Errorf(status.InvalidParameter, "%s: tensor #%d is nil", opName, ii)
		}
		if t.Data() == nil {
			return status.Errorf(status.InvalidParameter, "%s: tensor #%d has nil data pointer", opName, ii)
		}
		if t.Queue() == nil {
			return status.Errorf(status.InvalidParameter, "%s: tensor #%d has no queue", opName, ii)
		}
	}
	if !tensors.SameQueue(operands...) {
		return status.Errorf(status.QueueMismatch, "%s: operands are associated with different queues", opName)
	}
	if !tensors.SameShape(operands...) {
		return status.Errorf(status.DimensionMismatch, "%s: operands have different shapes %s", opName, shapesOf(operands))
	}
	queue := operands[0].Queue()
	for ii, t := range operands {
		if !queue.Owns(t.Data()) {
			return status.Errorf(status.NonConformingPointer, "%s: data of tensor #%d (%p) was not allocated by queue %s",
				opName, ii, t.Data(), queue.ID())
		}
	}
	return nil
}

func shapesOf(operands []*tensors.Tensor) string {
	s := ""
	for ii, t := range operands {
		if ii > 0 {
			s += ", "
		}
		s += t.Shape().String()
	}
	return s
}

// submit wraps the body in a Kernel and submits it to the queue.
func submit(queue backends.Queue, name string, size int, dtypesUsed []dtypes.DType, body func(start, end int)) error {
	klog.V(2).Infof("eltwise: submitting %s%v with %d elements to queue %s", name, dtypesUsed, size, queue.ID())
	err := queue.Submit(backends.Kernel{Name: name, Size: size, Body: body})
	if err != nil {
		return errors.WithMessagef(err, "%s: failed to submit kernel", name)
	}
	return nil
}

// catchUnknown runs fn and converts a panic into an error wrapping status.ErrUnknown.
func catchUnknown(opName string, fn func() error) (err error) {
	exception := exceptions.Try(func() { err = fn() })
	if exception != nil {
		klog.Errorf("eltwise: %s panicked: %v", opName, exception)
		return status.Errorf(status.Unknown, "%s: internal failure: %s", opName, fmt.Sprint(exception))
	}
	return err
}

// Apply one operation of the catalog by name. inputs must have one tensor for unary operations
// and two for binary ones.
func Apply(opName string, inputs []*tensors.Tensor, output *tensors.Tensor) error {
	if op := UnaryByName(opName); op != nil {
		if len(inputs) != 1 {
			return status.Errorf(status.InvalidParameter, "%s takes 1 input, %d given", op.Name, len(inputs))
		}
		return op.Apply(inputs[0], output)
	}
	if op := BinaryByName(opName); op != nil {
		if len(inputs) != 2 {
			return status.Errorf(status.InvalidParameter, "%s takes 2 inputs, %d given", op.Name, len(inputs))
		}
		return op.Apply(inputs[0], inputs[1], output)
	}
	return status.Errorf(status.InvalidParameter, "unknown operation %q", opName)
}
