// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package tensors implements the Tensor descriptor: a typed view (queue, data pointer, dtype and shape)
// of memory allocated in a queue's shared memory space.
//
// A Tensor doesn't own its memory: it is a per-call description of a buffer, and it can be created
// for any pointer. Use Allocate to create a Tensor together with its storage, and Free to release it.
package tensors

import (
	"fmt"
	"unsafe"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/galileo/backends"
	"github.com/gomlx/galileo/pkg/core/dtypes"
	"github.com/gomlx/galileo/pkg/core/shapes"
	"github.com/gomlx/galileo/pkg/core/status"
)

// Tensor describes a buffer in a queue's memory: the memory holds Shape().Size() elements of DType(),
// stored contiguously.
//
// It is immutable after creation.
type Tensor struct {
	queue backends.Queue
	data  unsafe.Pointer
	dtype dtypes.DType
	shape shapes.Shape
}

// New creates a Tensor descriptor for the data pointer. The shape is copied.
//
// No validation is done: the elementwise operations validate their operands.
func New(queue backends.Queue, data unsafe.Pointer, dtype dtypes.DType, shape shapes.Shape) *Tensor {
	return &Tensor{
		queue: queue,
		data:  data,
		dtype: dtype,
		shape: shape.Clone(),
	}
}

// New1D creates a Tensor descriptor of rank 1 with numElements.
func New1D(queue backends.Queue, data unsafe.Pointer, dtype dtypes.DType, numElements int) *Tensor {
	return New(queue, data, dtype, shapes.Make(numElements))
}

// Allocate a new buffer in the queue for the given dtype and dimensions, and returns its descriptor.
// The memory is zero-initialized, and it must be released with Free.
func Allocate(queue backends.Queue, dtype dtypes.DType, dimensions ...int) (*Tensor, error) {
	if queue == nil {
		return nil, status.Errorf(status.InvalidParameter, "nil queue")
	}
	shape, err := shapes.FromDimensions(dimensions)
	if err != nil {
		return nil, err
	}
	data, err := queue.Allocate(dtype, shape.Size())
	if err != nil {
		return nil, err
	}
	return New(queue, data, dtype, shape), nil
}

// Free releases the memory of a Tensor created with Allocate.
// The tensor must not be used afterward.
func (t *Tensor) Free() error {
	if t == nil || t.queue == nil {
		return status.Errorf(status.InvalidParameter, "nil tensor or tensor without queue")
	}
	return t.queue.Free(t.data)
}

// Queue associated with the tensor.
func (t *Tensor) Queue() backends.Queue { return t.queue }

// Data returns the untyped pointer to the tensor's memory.
func (t *Tensor) Data() unsafe.Pointer { return t.data }

// DType of the elements of the tensor.
func (t *Tensor) DType() dtypes.DType { return t.dtype }

// Shape of the tensor. The returned shape must not be modified.
func (t *Tensor) Shape() shapes.Shape { return t.shape }

// Rank returns the rank of the tensor's shape.
// It is a shortcut to `Tensor.Shape().Rank()`.
func (t *Tensor) Rank() int { return t.shape.Rank() }

// Size returns the number of elements: the product of the dimensions.
// It is a shortcut to `Tensor.Shape().Size()`.
func (t *Tensor) Size() int { return t.shape.Size() }

// Memory returns the number of bytes used by the tensor's elements.
func (t *Tensor) Memory() int {
	if !t.dtype.IsValid() {
		return 0
	}
	return t.dtype.SizeForElements(t.Size())
}

// String implements fmt.Stringer.
func (t *Tensor) String() string {
	if t == nil {
		return "Tensor(nil)"
	}
	return fmt.Sprintf("Tensor(%s%s @ %p)", t.dtype, t.shape, t.data)
}

// Flat returns a slice of T viewing the tensor's memory directly, for host access.
//
// T must be the Go type of the tensor's dtype, otherwise it panics.
// The slice must not be used while kernels writing to the tensor are pending (see backends.Queue.Wait),
// nor after the memory is freed.
func Flat[T dtypes.Supported](t *Tensor) []T {
	if want := dtypes.FromGenericsType[T](); want != t.dtype {
		exceptions.Panicf("tensors.Flat[%s]() called on tensor with dtype %s", want, t.dtype)
	}
	if t.data == nil {
		exceptions.Panicf("tensors.Flat() called on tensor with nil data")
	}
	return unsafe.Slice((*T)(t.data), t.Size())
}
