// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package dtypes includes the DType enum for all data types supported by Galileo.
//
// The numeric values of the enum are the ones of the C API (GALILEO_DATA_TYPE), so a tag can cross the
// C boundary unchanged. Each valid tag maps to exactly one Go type, see DType.GoType.
//
// It also includes some constraint interfaces to be used with generics (Supported, Number, GoFloat).
package dtypes

import (
	"maps"
	"reflect"
	"slices"
	"strconv"
	"strings"

	"github.com/gomlx/galileo/pkg/core/dtypes/bfloat16"
	"github.com/gomlx/galileo/pkg/core/dtypes/complex32"
	"github.com/pkg/errors"
	"github.com/x448/float16"
)

// panicf panics with the formatted description.
//
// It is only used for "bugs in the code" -- when parameters break the API contract.
func panicf(format string, args ...any) {
	panic(errors.Errorf(format, args...))
}

func init() {
	// Only works for 32 and 64 bits platforms.
	if strconv.IntSize != 32 && strconv.IntSize != 64 {
		panicf("cannot use int of %d bits with galileo -- only platforms with int32 or int64 are supported", strconv.IntSize)
	}

	// Add a mapping to the lower-case version of dtypes.
	keys := slices.Collect(maps.Keys(MapOfNames))
	for _, key := range keys {
		lowerKey := strings.ToLower(key)
		if lowerKey == key {
			continue
		}
		if _, found := MapOfNames[lowerKey]; found {
			continue
		}
		MapOfNames[lowerKey] = MapOfNames[key]
	}
}

// Pre-generate constant reflect.TypeOf for convenience.
var goTypes = [NumDTypes]reflect.Type{
	Uint8:      reflect.TypeOf(uint8(0)),
	Uint16:     reflect.TypeOf(uint16(0)),
	Uint32:     reflect.TypeOf(uint32(0)),
	Uint64:     reflect.TypeOf(uint64(0)),
	Int8:       reflect.TypeOf(int8(0)),
	Int16:      reflect.TypeOf(int16(0)),
	Int32:      reflect.TypeOf(int32(0)),
	Int64:      reflect.TypeOf(int64(0)),
	Float32:    reflect.TypeOf(float32(0)),
	Float64:    reflect.TypeOf(float64(0)),
	Float16:    reflect.TypeOf(float16.Float16(0)),
	BFloat16:   reflect.TypeOf(bfloat16.BFloat16(0)),
	Complex64:  reflect.TypeOf(complex64(0)),
	Complex128: reflect.TypeOf(complex128(0)),
	Complex32:  reflect.TypeOf(complex32.Complex32{}),
}

// All returns all valid dtypes, in enum order.
func All() []DType {
	all := make([]DType, NumDTypes)
	for ii := range all {
		all[ii] = DType(ii)
	}
	return all
}

// IsValid returns whether dtype is one of the values of the enumeration.
func (dtype DType) IsValid() bool {
	return dtype >= 0 && dtype < NumDTypes
}

// FromName returns the DType for the given name, accepting the aliases in MapOfNames.
// Names are case-insensitive. It returns an error if the name is unknown.
func FromName(name string) (DType, error) {
	dtype, found := MapOfNames[name]
	if !found {
		dtype, found = MapOfNames[strings.ToLower(name)]
	}
	if !found || dtype == InvalidDType {
		return InvalidDType, errors.Errorf("unknown dtype %q", name)
	}
	return dtype, nil
}

// FromGenericsType returns the DType enum for the given type that this package knows about.
func FromGenericsType[T Supported]() DType {
	var t T
	switch (any(t)).(type) {
	case uint8:
		return Uint8
	case uint16:
		return Uint16
	case uint32:
		return Uint32
	case uint64:
		return Uint64
	case int8:
		return Int8
	case int16:
		return Int16
	case int32:
		return Int32
	case int64:
		return Int64
	case int:
		if strconv.IntSize == 32 {
			return Int32
		}
		return Int64
	case float32:
		return Float32
	case float64:
		return Float64
	case float16.Float16:
		return Float16
	case bfloat16.BFloat16:
		return BFloat16
	case complex64:
		return Complex64
	case complex128:
		return Complex128
	case complex32.Complex32:
		return Complex32
	}
	return InvalidDType
}

// FromGoType returns the DType for the given "reflect.Type".
// It returns InvalidDType for types that don't map to any tag.
func FromGoType(t reflect.Type) DType {
	if t == nil {
		return InvalidDType
	}
	for dtype, goType := range goTypes {
		if t == goType {
			return DType(dtype)
		}
	}
	if t.Kind() == reflect.Int {
		if strconv.IntSize == 32 {
			return Int32
		}
		return Int64
	}
	return InvalidDType
}

// FromAny introspects the underlying type of any and returns the corresponding DType.
// Non-scalar types, or unsupported types return an InvalidType.
func FromAny(value any) DType {
	return FromGoType(reflect.TypeOf(value))
}

// GoType returns the Go `reflect.Type` corresponding to the DType.
// It panics for invalid dtypes.
func (dtype DType) GoType() reflect.Type {
	if !dtype.IsValid() {
		panicf("unknown dtype %s in DType.GoType", dtype)
	}
	return goTypes[dtype]
}

// GoStr converts dtype to the corresponding Go type and convert that to string.
func (dtype DType) GoStr() string {
	return dtype.GoType().String()
}

// Size returns the number of bytes for the given DType.
func (dtype DType) Size() int {
	return int(dtype.GoType().Size())
}

// Bits returns the number of bits for the given DType.
func (dtype DType) Bits() int {
	return dtype.Size() * 8
}

// Memory returns the number of bytes for the given DType.
// It's an alias to Size, converted to uintptr.
func (dtype DType) Memory() uintptr {
	return uintptr(dtype.Size())
}

// SizeForElements returns the size in bytes used by numElements of dtype.
func (dtype DType) SizeForElements(numElements int) int {
	if numElements < 0 {
		panicf("number of elements cannot be negative for SizeForElements, got %d", numElements)
	}
	return numElements * dtype.Size()
}

// IsFloat returns whether dtype is a real floating point type.
// It returns false for complex numbers.
func (dtype DType) IsFloat() bool {
	return dtype == Float32 || dtype == Float64 || dtype == Float16 || dtype == BFloat16
}

// IsFloat16 returns whether dtype is a float with 16 bits: [Float16] or [BFloat16].
func (dtype DType) IsFloat16() bool {
	return dtype == Float16 || dtype == BFloat16
}

// IsComplex returns whether dtype is a complex number type.
func (dtype DType) IsComplex() bool {
	return dtype == Complex64 || dtype == Complex128 || dtype == Complex32
}

// IsInt returns whether dtype is an integer type, signed or unsigned.
func (dtype DType) IsInt() bool {
	return dtype.IsSigned() || dtype.IsUnsigned()
}

// IsSigned returns whether dtype is one of the signed integer types.
func (dtype DType) IsSigned() bool {
	return dtype == Int8 || dtype == Int16 || dtype == Int32 || dtype == Int64
}

// IsUnsigned returns whether dtype is one of the unsigned integer types.
func (dtype DType) IsUnsigned() bool {
	return dtype == Uint8 || dtype == Uint16 || dtype == Uint32 || dtype == Uint64
}

// RealDType returns the real component of complex dtypes.
// For float dtypes, it returns itself.
//
// It returns InvalidDType for other non-(complex or float) dtypes.
func (dtype DType) RealDType() DType {
	if dtype.IsFloat() {
		return dtype
	}
	switch dtype {
	case Complex32:
		return Float16
	case Complex64:
		return Float32
	case Complex128:
		return Float64
	default:
		return InvalidDType
	}
}

// ComplexDType returns the complex dtype whose components are of the given float dtype.
// For complex dtypes it returns itself.
//
// BFloat16 has no complex counterpart of the same width, and it maps to Complex64.
// It returns InvalidDType for integer and invalid dtypes.
func (dtype DType) ComplexDType() DType {
	switch dtype {
	case Float16:
		return Complex32
	case Float32, BFloat16:
		return Complex64
	case Float64:
		return Complex128
	case Complex32, Complex64, Complex128:
		return dtype
	default:
		return InvalidDType
	}
}

// Supported lists the Go types that map to a DType. Used as traits for generics.
//
// Notice Go's `int` type is not portable, since it may translate to dtypes Int32 or Int64 depending
// on the platform.
type Supported interface {
	float16.Float16 | bfloat16.BFloat16 | complex32.Complex32 |
		float32 | float64 | int | int8 | int16 | int32 | int64 | uint8 | uint16 | uint32 | uint64 |
		complex64 | complex128
}

// Number represents the Go native numeric types corresponding to supported DType's.
// Used as traits for generics.
//
// It includes complex numbers.
// It doesn't include float16.Float16, bfloat16.BFloat16 or complex32.Complex32 because they are not native number types.
type Number interface {
	float32 | float64 | int | int8 | int16 | int32 | int64 | uint8 | uint16 | uint32 | uint64 | complex64 | complex128
}

// NumberNotComplex represents the Go native real numeric types. Used as a Generics constraint.
//
// See also Number.
type NumberNotComplex interface {
	float32 | float64 | int | int8 | int16 | int32 | int64 | uint8 | uint16 | uint32 | uint64
}

// GoFloat represent a continuous Go numeric type.
// It doesn't include complex numbers.
type GoFloat interface {
	float32 | float64
}

// GoComplex represent the Go native complex types.
type GoComplex interface {
	complex64 | complex128
}
