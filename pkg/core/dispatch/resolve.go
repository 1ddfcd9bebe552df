// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package dispatch

import (
	"github.com/gomlx/galileo/pkg/core/dtypes"
)

// ResultDType returns the dtype of the result of a binary arithmetic operation on operands of dtypes a and b,
// following the usual arithmetic conversions of C:
//
//   - Integers narrower than 32 bits are first promoted to Int32.
//   - Two integers of the same signedness: the larger one. Mixed signedness: the unsigned one if its rank is
//     greater or equal to the signed one, otherwise the signed one.
//   - An integer with a float: the float. Two floats: the larger one; Float16 with BFloat16 is Float32.
//   - If either operand is complex, the result is the complex of the common type of the real parts
//     (the real part of a real operand is itself): Float16 -> Complex32, Float32 and BFloat16 -> Complex64,
//     Float64 -> Complex128.
//
// It returns dtypes.InvalidDType if either dtype is invalid.
func ResultDType(a, b dtypes.DType) dtypes.DType {
	if !a.IsValid() || !b.IsValid() {
		return dtypes.InvalidDType
	}
	if a.IsComplex() || b.IsComplex() {
		return commonRealDType(realPart(a), realPart(b)).ComplexDType()
	}
	return commonRealDType(a, b)
}

// realPart returns the dtype of the real component of complex dtypes, and the dtype itself otherwise.
func realPart(dtype dtypes.DType) dtypes.DType {
	if dtype.IsComplex() {
		return dtype.RealDType()
	}
	return dtype
}

// commonRealDType of two non-complex dtypes.
func commonRealDType(a, b dtypes.DType) dtypes.DType {
	switch {
	case a.IsFloat() && b.IsFloat():
		if a == b {
			return a
		}
		if a.IsFloat16() && b.IsFloat16() {
			// Float16 and BFloat16: neither represents the other.
			return dtypes.Float32
		}
		if a.Size() > b.Size() {
			return a
		}
		return b
	case a.IsFloat():
		return a
	case b.IsFloat():
		return b
	}

	// Both integers.
	a, b = promoteInt(a), promoteInt(b)
	if a.IsUnsigned() == b.IsUnsigned() {
		if a.Size() >= b.Size() {
			return a
		}
		return b
	}
	unsigned, signed := a, b
	if b.IsUnsigned() {
		unsigned, signed = b, a
	}
	if unsigned.Size() >= signed.Size() {
		return unsigned
	}
	return signed
}

// promoteInt implements the C integer promotion: integers narrower than int (32 bits) become Int32.
func promoteInt(dtype dtypes.DType) dtypes.DType {
	if dtype.Size() < 4 {
		return dtypes.Int32
	}
	return dtype
}

// WorkingDType returns the dtype used to evaluate binary operations whose result is dtype:
// Float16 and BFloat16 are evaluated in Float32, Complex32 in Complex64. Other dtypes are evaluated as themselves.
//
// It is used strictly for evaluation: results are stored in the output's own dtype.
func WorkingDType(dtype dtypes.DType) dtypes.DType {
	switch {
	case dtype.IsFloat16():
		return dtypes.Float32
	case dtype == dtypes.Complex32:
		return dtypes.Complex64
	default:
		return dtype
	}
}

// UnaryWorkingDType returns the dtype used to evaluate unary operations on an input of the given dtype:
// signed integers are evaluated in Int64, unsigned integers in Uint64, and the rest as in WorkingDType.
func UnaryWorkingDType(dtype dtypes.DType) dtypes.DType {
	switch {
	case dtype.IsSigned():
		return dtypes.Int64
	case dtype.IsUnsigned():
		return dtypes.Uint64
	default:
		return WorkingDType(dtype)
	}
}
