// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package shapes defines Shape, the ordered list of per-axis extents of a tensor.
//
// The data type of the elements is not part of the Shape: it is carried by the tensor descriptor,
// since elementwise operations allow operands with different dtypes but require equal shapes.
//
// ## Glossary
//
//   - Rank: number of axes (dimensions) of a Tensor.
//   - Axis: is the index of a dimension on a multidimensional Tensor.
//   - Dimension: the extent of a Tensor in one of its axes.
//   - Size: the number of elements, the product of all dimensions. A rank-0 (scalar) shape has size 1.
package shapes

import (
	"fmt"
	"slices"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/galileo/pkg/core/status"
)

// Shape represents the dimensions of a Tensor.
//
// Use Make to create a new shape.
type Shape struct {
	Dimensions []int
}

// Make returns a Shape with the given dimensions. The dimensions are copied.
//
// It panics if any dimension is negative. Use FromDimensions to get an error instead.
func Make(dimensions ...int) Shape {
	s, err := FromDimensions(dimensions)
	if err != nil {
		exceptions.Panicf("shapes.Make(%v): %v", dimensions, err)
	}
	return s
}

// FromDimensions returns a Shape with a copy of dimensions, or an error wrapping status.ErrInvalidParameter
// if any dimension is negative.
//
// Zero dimensions are accepted, they yield an empty shape (Size() == 0).
func FromDimensions(dimensions []int) (Shape, error) {
	for axis, dim := range dimensions {
		if dim < 0 {
			return Shape{}, status.Errorf(status.InvalidParameter, "axis %d has negative dimension %d", axis, dim)
		}
	}
	return Shape{Dimensions: slices.Clone(dimensions)}, nil
}

// Rank of the shape, that is, the number of dimensions.
func (s Shape) Rank() int { return len(s.Dimensions) }

// IsScalar returns whether the shape represents a scalar, that is there are no dimensions (rank==0).
func (s Shape) IsScalar() bool { return s.Rank() == 0 }

// Dim returns the dimension of the given axis. axis can take negative numbers, in which
// case it counts as starting from the end -- so axis=-1 refers to the last axis.
// Like with a slice indexing, it panics for an out-of-bound axis.
func (s Shape) Dim(axis int) int {
	adjustedAxis := axis
	if adjustedAxis < 0 {
		adjustedAxis += s.Rank()
	}
	if adjustedAxis < 0 || adjustedAxis >= s.Rank() {
		exceptions.Panicf("Shape.Dim(%d) out-of-bounds for rank %d (shape=%s)", axis, s.Rank(), s)
	}
	return s.Dimensions[adjustedAxis]
}

// Size returns the number of elements: the product of all dimensions.
func (s Shape) Size() (size int) {
	size = 1
	for _, d := range s.Dimensions {
		size *= d
	}
	return
}

// Equal compares two shapes for equality: same rank and the same dimension on every axis.
func (s Shape) Equal(s2 Shape) bool {
	return slices.Equal(s.Dimensions, s2.Dimensions)
}

// Clone returns a new deep copy of the shape.
func (s Shape) Clone() Shape {
	return Shape{Dimensions: slices.Clone(s.Dimensions)}
}

// String implements stringer, pretty-prints the shape.
func (s Shape) String() string {
	if s.Rank() == 0 {
		return "[]"
	}
	return fmt.Sprintf("%v", s.Dimensions)
}
