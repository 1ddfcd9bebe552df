// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package dispatch

import (
	"github.com/gomlx/exceptions"
	"github.com/gomlx/galileo/pkg/core/dtypes/bfloat16"
	"github.com/gomlx/galileo/pkg/core/dtypes/complex32"
	"github.com/gomlx/galileo/pkg/core/status"
	"github.com/x448/float16"
	"golang.org/x/exp/constraints"
)

// RealWorking are the working types used to evaluate real (integer or float) operations.
type RealWorking interface {
	constraints.Integer | constraints.Float
}

// ComplexWorking are the working types used to evaluate complex operations.
type ComplexWorking interface {
	constraints.Complex
}

// RealReader returns a function that reads element i of in converted to W.
// Float16 and BFloat16 are converted via float32.
//
// It panics if in is complex: complex inputs must be read with ComplexReader.
func RealReader[W RealWorking](in Input) func(i int) W {
	switch p := in.(type) {
	case ConstPtr[uint8]:
		v := p.values
		return func(i int) W { return W(v[i]) }
	case ConstPtr[uint16]:
		v := p.values
		return func(i int) W { return W(v[i]) }
	case ConstPtr[uint32]:
		v := p.values
		return func(i int) W { return W(v[i]) }
	case ConstPtr[uint64]:
		v := p.values
		return func(i int) W { return W(v[i]) }
	case ConstPtr[int8]:
		v := p.values
		return func(i int) W { return W(v[i]) }
	case ConstPtr[int16]:
		v := p.values
		return func(i int) W { return W(v[i]) }
	case ConstPtr[int32]:
		v := p.values
		return func(i int) W { return W(v[i]) }
	case ConstPtr[int64]:
		v := p.values
		return func(i int) W { return W(v[i]) }
	case ConstPtr[float32]:
		v := p.values
		return func(i int) W { return W(v[i]) }
	case ConstPtr[float64]:
		v := p.values
		return func(i int) W { return W(v[i]) }
	case ConstPtr[float16.Float16]:
		v := p.values
		return func(i int) W { return W(v[i].Float32()) }
	case ConstPtr[bfloat16.BFloat16]:
		v := p.values
		return func(i int) W { return W(v[i].Float32()) }
	case ConstPtr[complex64], ConstPtr[complex128], ConstPtr[complex32.Complex32]:
		exceptions.Panicf("dispatch.RealReader() called on complex input of dtype %s", in.DType())
	default:
		exceptions.Panicf("dispatch.RealReader() called on unknown input variant %T", in)
	}
	panic(nil) // Unreachable.
}

// ComplexReader returns a function that reads element i of in converted to W.
// Real inputs are read with a zero imaginary part.
func ComplexReader[W ComplexWorking](in Input) func(i int) W {
	switch p := in.(type) {
	case ConstPtr[uint8]:
		v := p.values
		return func(i int) W { return W(complex(float64(v[i]), 0)) }
	case ConstPtr[uint16]:
		v := p.values
		return func(i int) W { return W(complex(float64(v[i]), 0)) }
	case ConstPtr[uint32]:
		v := p.values
		return func(i int) W { return W(complex(float64(v[i]), 0)) }
	case ConstPtr[uint64]:
		v := p.values
		return func(i int) W { return W(complex(float64(v[i]), 0)) }
	case ConstPtr[int8]:
		v := p.values
		return func(i int) W { return W(complex(float64(v[i]), 0)) }
	case ConstPtr[int16]:
		v := p.values
		return func(i int) W { return W(complex(float64(v[i]), 0)) }
	case ConstPtr[int32]:
		v := p.values
		return func(i int) W { return W(complex(float64(v[i]), 0)) }
	case ConstPtr[int64]:
		v := p.values
		return func(i int) W { return W(complex(float64(v[i]), 0)) }
	case ConstPtr[float32]:
		v := p.values
		return func(i int) W { return W(complex(float64(v[i]), 0)) }
	case ConstPtr[float64]:
		v := p.values
		return func(i int) W { return W(complex(v[i], 0)) }
	case ConstPtr[float16.Float16]:
		v := p.values
		return func(i int) W { return W(complex(float64(v[i].Float32()), 0)) }
	case ConstPtr[bfloat16.BFloat16]:
		v := p.values
		return func(i int) W { return W(complex(float64(v[i].Float32()), 0)) }
	case ConstPtr[complex64]:
		v := p.values
		return func(i int) W { return W(v[i]) }
	case ConstPtr[complex128]:
		v := p.values
		return func(i int) W { return W(v[i]) }
	case ConstPtr[complex32.Complex32]:
		v := p.values
		return func(i int) W { return W(v[i].Complex64()) }
	default:
		exceptions.Panicf("dispatch.ComplexReader() called on unknown input variant %T", in)
	}
	panic(nil) // Unreachable.
}

// RealWriter returns a function that writes a W value to element i of out, converted to the output's type.
// Float16 and BFloat16 are converted via float32, and complex outputs get a zero imaginary part.
//
// Conversions of out-of-range values to integer types follow Go's conversion rules.
func RealWriter[W RealWorking](out Output) func(i int, x W) {
	switch p := out.(type) {
	case MutPtr[uint8]:
		v := p.values
		return func(i int, x W) { v[i] = uint8(x) }
	case MutPtr[uint16]:
		v := p.values
		return func(i int, x W) { v[i] = uint16(x) }
	case MutPtr[uint32]:
		v := p.values
		return func(i int, x W) { v[i] = uint32(x) }
	case MutPtr[uint64]:
		v := p.values
		return func(i int, x W) { v[i] = uint64(x) }
	case MutPtr[int8]:
		v := p.values
		return func(i int, x W) { v[i] = int8(x) }
	case MutPtr[int16]:
		v := p.values
		return func(i int, x W) { v[i] = int16(x) }
	case MutPtr[int32]:
		v := p.values
		return func(i int, x W) { v[i] = int32(x) }
	case MutPtr[int64]:
		v := p.values
		return func(i int, x W) { v[i] = int64(x) }
	case MutPtr[float32]:
		v := p.values
		return func(i int, x W) { v[i] = float32(x) }
	case MutPtr[float64]:
		v := p.values
		return func(i int, x W) { v[i] = float64(x) }
	case MutPtr[float16.Float16]:
		v := p.values
		return func(i int, x W) { v[i] = float16.Fromfloat32(float32(x)) }
	case MutPtr[bfloat16.BFloat16]:
		v := p.values
		return func(i int, x W) { v[i] = bfloat16.FromFloat64(float64(x)) }
	case MutPtr[complex64]:
		v := p.values
		return func(i int, x W) { v[i] = complex(float32(x), 0) }
	case MutPtr[complex128]:
		v := p.values
		return func(i int, x W) { v[i] = complex(float64(x), 0) }
	case MutPtr[complex32.Complex32]:
		v := p.values
		return func(i int, x W) { v[i] = complex32.New(float32(x), 0) }
	default:
		exceptions.Panicf("dispatch.RealWriter() called on unknown output variant %T", out)
	}
	panic(nil) // Unreachable.
}

// ComplexWriter returns a function that writes a W value to element i of out, converted to the output's type.
//
// It returns an error wrapping status.ErrNarrowingConversion if out is not complex: dropping the imaginary
// part would lose information.
func ComplexWriter[W ComplexWorking](out Output) (func(i int, x W), error) {
	switch p := out.(type) {
	case MutPtr[complex64]:
		v := p.values
		return func(i int, x W) { v[i] = complex64(x) }, nil
	case MutPtr[complex128]:
		v := p.values
		return func(i int, x W) { v[i] = complex128(x) }, nil
	case MutPtr[complex32.Complex32]:
		v := p.values
		return func(i int, x W) { v[i] = complex32.FromComplex64(complex64(x)) }, nil
	case MutPtr[uint8], MutPtr[uint16], MutPtr[uint32], MutPtr[uint64],
		MutPtr[int8], MutPtr[int16], MutPtr[int32], MutPtr[int64],
		MutPtr[float32], MutPtr[float64], MutPtr[float16.Float16], MutPtr[bfloat16.BFloat16]:
		return nil, status.Errorf(status.NarrowingConversion, "cannot store a complex value in output of dtype %s", out.DType())
	default:
		exceptions.Panicf("dispatch.ComplexWriter() called on unknown output variant %T", out)
	}
	panic(nil) // Unreachable.
}
