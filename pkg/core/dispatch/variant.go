// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package dispatch recovers concrete Go types from runtime-tagged untyped pointers.
//
// A data pointer plus its dtypes.DType tag is turned into a typed pointer variant: Input (read-only) or
// Output (writable). Each variant is a sealed interface whose alternatives are ConstPtr[T] (resp. MutPtr[T]),
// one per Go type of the dtypes enumeration, and exactly one alternative is active for a given value.
//
// Kernels don't match on the alternatives themselves: the accessor factories (RealReader, ComplexReader,
// RealWriter and ComplexWriter) do an exhaustive type switch once, and return closures that read or write
// element i converted to a working type.
//
// The package also holds the type-use policies (Policy) and the type combination rules of the binary
// operations (ResultDType).
package dispatch

import (
	"unsafe"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/galileo/pkg/core/dtypes"
	"github.com/gomlx/galileo/pkg/core/dtypes/bfloat16"
	"github.com/gomlx/galileo/pkg/core/dtypes/complex32"
	"github.com/x448/float16"
)

// Element enumerates the Go types of the valid dtypes, one per dtypes.DType.
type Element interface {
	uint8 | uint16 | uint32 | uint64 | int8 | int16 | int32 | int64 |
		float32 | float64 | float16.Float16 | bfloat16.BFloat16 |
		complex64 | complex128 | complex32.Complex32
}

// Input is a read-only typed pointer variant. Its alternatives are ConstPtr[T] for each Element type.
type Input interface {
	// DType of the active alternative.
	DType() dtypes.DType

	// Len is the number of elements viewed.
	Len() int

	isInput()
}

// Output is a writable typed pointer variant. Its alternatives are MutPtr[T] for each Element type.
type Output interface {
	// DType of the active alternative.
	DType() dtypes.DType

	// Len is the number of elements viewed.
	Len() int

	isOutput()
}

// ConstPtr is the alternative of Input for elements of type T.
type ConstPtr[T Element] struct {
	values []T
}

// DType implements Input.
func (p ConstPtr[T]) DType() dtypes.DType { return dtypes.FromGenericsType[T]() }

// Len implements Input.
func (p ConstPtr[T]) Len() int { return len(p.values) }

// At returns element i.
func (p ConstPtr[T]) At(i int) T { return p.values[i] }

func (p ConstPtr[T]) isInput() {}

// MutPtr is the alternative of Output for elements of type T.
type MutPtr[T Element] struct {
	values []T
}

// DType implements Output.
func (p MutPtr[T]) DType() dtypes.DType { return dtypes.FromGenericsType[T]() }

// Len implements Output.
func (p MutPtr[T]) Len() int { return len(p.values) }

// Set element i to v.
func (p MutPtr[T]) Set(i int, v T) { p.values[i] = v }

func (p MutPtr[T]) isOutput() {}

// ConstOf creates an Input viewing values. The variant's dtype is the one of T.
func ConstOf[T Element](values []T) Input {
	return ConstPtr[T]{values: values}
}

// MutOf creates an Output viewing values. The variant's dtype is the one of T.
func MutOf[T Element](values []T) Output {
	return MutPtr[T]{values: values}
}

// Values recovers the slice of an Input whose active alternative is ConstPtr[T].
//
// It panics if the active alternative is a different one: that is a bug in the caller.
func Values[T Element](in Input) []T {
	p, ok := in.(ConstPtr[T])
	if !ok {
		exceptions.Panicf("dispatch.Values[%s]() called on input variant of dtype %s",
			dtypes.FromGenericsType[T](), dtypeOf(in))
	}
	return p.values
}

// MutableValues recovers the slice of an Output whose active alternative is MutPtr[T].
//
// It panics if the active alternative is a different one: that is a bug in the caller.
func MutableValues[T Element](out Output) []T {
	p, ok := out.(MutPtr[T])
	if !ok {
		exceptions.Panicf("dispatch.MutableValues[%s]() called on output variant of dtype %s",
			dtypes.FromGenericsType[T](), dtypeOf(out))
	}
	return p.values
}

func dtypeOf(v interface{ DType() dtypes.DType }) dtypes.DType {
	if v == nil {
		return dtypes.InvalidDType
	}
	return v.DType()
}

func newConst[T Element](ptr unsafe.Pointer, n int) Input {
	return ConstPtr[T]{values: unsafe.Slice((*T)(ptr), n)}
}

func newMut[T Element](ptr unsafe.Pointer, n int) Output {
	return MutPtr[T]{values: unsafe.Slice((*T)(ptr), n)}
}
