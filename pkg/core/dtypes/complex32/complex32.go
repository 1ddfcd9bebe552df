// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package complex32 implements the complex-half type: a pair of IEEE 754 half-precision floats
// (github.com/x448/float16) laid out as (real, imaginary), 4 bytes per value.
//
// It matches the memory layout of std::complex<half>, so buffers can be shared with accelerator code.
// Arithmetic is not provided: convert to complex64, operate, and convert back.
package complex32

import (
	"github.com/x448/float16"
)

// Complex32 is a complex number with float16 real and imaginary parts.
type Complex32 struct {
	Re, Im float16.Float16
}

// New creates a Complex32 from its parts, rounding each to the nearest float16.
func New(re, im float32) Complex32 {
	return Complex32{Re: float16.Fromfloat32(re), Im: float16.Fromfloat32(im)}
}

// FromComplex64 converts c to Complex32, rounding each part to the nearest float16.
func FromComplex64(c complex64) Complex32 {
	return New(real(c), imag(c))
}

// FromComplex128 converts c to Complex32, rounding each part to the nearest float16.
func FromComplex128(c complex128) Complex32 {
	return New(float32(real(c)), float32(imag(c)))
}

// Complex64 converts c to complex64. The conversion is exact.
func (c Complex32) Complex64() complex64 {
	return complex(c.Re.Float32(), c.Im.Float32())
}

// Complex128 converts c to complex128. The conversion is exact.
func (c Complex32) Complex128() complex128 {
	return complex128(c.Complex64())
}

// Real returns the real part as float32.
func (c Complex32) Real() float32 { return c.Re.Float32() }

// Imag returns the imaginary part as float32.
func (c Complex32) Imag() float32 { return c.Im.Float32() }

// IsNaN reports whether either part is a "not-a-number" value.
func (c Complex32) IsNaN() bool {
	return c.Re.IsNaN() || c.Im.IsNaN()
}

// String implements fmt.Stringer, using the same format as Go's complex numbers, e.g.: "(1+2i)".
func (c Complex32) String() string {
	sign := "+"
	if c.Im.Signbit() {
		sign = ""
	}
	return "(" + c.Re.String() + sign + c.Im.String() + "i)"
}
