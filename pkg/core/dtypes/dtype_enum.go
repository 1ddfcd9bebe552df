// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package dtypes

import "strconv"

// DType is an enum representing the data type of the elements of a buffer.
//
// The values are a 1:1 mapping of the GALILEO_DATA_TYPE C enum, so they can cross the C boundary
// unchanged. Notice the zero value is Uint8, use InvalidDType to represent "no type".
type DType int32

const (
	// InvalidDType is not part of the C enum, it is used to represent the absence of a valid type.
	InvalidDType DType = -1

	// Uint8 is a 1:1 mapping of the C enum value GALILEO_UINT8.
	Uint8 DType = 0

	// Uint16 is a 1:1 mapping of the C enum value GALILEO_UINT16.
	Uint16 DType = 1

	// Uint32 is a 1:1 mapping of the C enum value GALILEO_UINT32.
	Uint32 DType = 2

	// Uint64 is a 1:1 mapping of the C enum value GALILEO_UINT64.
	Uint64 DType = 3

	// Int8 is a 1:1 mapping of the C enum value GALILEO_INT8.
	Int8 DType = 4

	// Int16 is a 1:1 mapping of the C enum value GALILEO_INT16.
	Int16 DType = 5

	// Int32 is a 1:1 mapping of the C enum value GALILEO_INT32.
	Int32 DType = 6

	// Int64 is a 1:1 mapping of the C enum value GALILEO_INT64.
	Int64 DType = 7

	// Float32 is a 1:1 mapping of the C enum value GALILEO_FLOAT.
	Float32 DType = 8

	// Float64 is a 1:1 mapping of the C enum value GALILEO_DOUBLE.
	Float64 DType = 9

	// Float16 is a 1:1 mapping of the C enum value GALILEO_HALF.
	// IEEE 754 half-precision, represented in Go by float16.Float16.
	Float16 DType = 10

	// BFloat16 is a 1:1 mapping of the C enum value GALILEO_BFLOAT16.
	// Truncated 16 bit floating-point format: 1 bit for the sign, 8 bits for the exponent
	// and 7 bits for the mantissa.
	BFloat16 DType = 11

	// Complex64 is a 1:1 mapping of the C enum value GALILEO_COMPLEX_FLOAT.
	// Paired Float32 (real, imag), as in std::complex<float>.
	Complex64 DType = 12

	// Complex128 is a 1:1 mapping of the C enum value GALILEO_COMPLEX_DOUBLE.
	// Paired Float64 (real, imag), as in std::complex<double>.
	Complex128 DType = 13

	// Complex32 is a 1:1 mapping of the C enum value GALILEO_COMPLEX_HALF.
	// Paired Float16 (real, imag), represented in Go by complex32.Complex32.
	Complex32 DType = 14

	// NumDTypes is the number of valid dtypes: valid values are in the range [0, NumDTypes).
	NumDTypes = 15
)

// Aliases from the C API.
const (
	// U8 (or GALILEO_UINT8) is the C enum name for Uint8.
	U8 = Uint8

	// U16 (or GALILEO_UINT16) is the C enum name for Uint16.
	U16 = Uint16

	// U32 (or GALILEO_UINT32) is the C enum name for Uint32.
	U32 = Uint32

	// U64 (or GALILEO_UINT64) is the C enum name for Uint64.
	U64 = Uint64

	// S8 (or GALILEO_INT8) is the C enum name for Int8.
	S8 = Int8

	// S16 (or GALILEO_INT16) is the C enum name for Int16.
	S16 = Int16

	// S32 (or GALILEO_INT32) is the C enum name for Int32.
	S32 = Int32

	// S64 (or GALILEO_INT64) is the C enum name for Int64.
	S64 = Int64

	// F16 (or GALILEO_HALF) is the C enum name for Float16.
	F16 = Float16

	// F32 (or GALILEO_FLOAT) is the C enum name for Float32.
	F32 = Float32

	// F64 (or GALILEO_DOUBLE) is the C enum name for Float64.
	F64 = Float64

	// BF16 (or GALILEO_BFLOAT16) is the C enum name for BFloat16.
	BF16 = BFloat16

	// C32 (or GALILEO_COMPLEX_HALF) is the C enum name for Complex32.
	C32 = Complex32

	// C64 (or GALILEO_COMPLEX_FLOAT) is the C enum name for Complex64.
	C64 = Complex64

	// C128 (or GALILEO_COMPLEX_DOUBLE) is the C enum name for Complex128.
	C128 = Complex128
)

// dtypeNames indexed by the DType value.
var dtypeNames = [NumDTypes]string{
	Uint8:      "Uint8",
	Uint16:     "Uint16",
	Uint32:     "Uint32",
	Uint64:     "Uint64",
	Int8:       "Int8",
	Int16:      "Int16",
	Int32:      "Int32",
	Int64:      "Int64",
	Float32:    "Float32",
	Float64:    "Float64",
	Float16:    "Float16",
	BFloat16:   "BFloat16",
	Complex64:  "Complex64",
	Complex128: "Complex128",
	Complex32:  "Complex32",
}

// cNames are the GALILEO_DATA_TYPE enum names, indexed by the DType value.
var cNames = [NumDTypes]string{
	Uint8:      "GALILEO_UINT8",
	Uint16:     "GALILEO_UINT16",
	Uint32:     "GALILEO_UINT32",
	Uint64:     "GALILEO_UINT64",
	Int8:       "GALILEO_INT8",
	Int16:      "GALILEO_INT16",
	Int32:      "GALILEO_INT32",
	Int64:      "GALILEO_INT64",
	Float32:    "GALILEO_FLOAT",
	Float64:    "GALILEO_DOUBLE",
	Float16:    "GALILEO_HALF",
	BFloat16:   "GALILEO_BFLOAT16",
	Complex64:  "GALILEO_COMPLEX_FLOAT",
	Complex128: "GALILEO_COMPLEX_DOUBLE",
	Complex32:  "GALILEO_COMPLEX_HALF",
}

// CName returns the name of the C enum value, or "" for invalid dtypes.
func (dtype DType) CName() string {
	if !dtype.IsValid() {
		return ""
	}
	return cNames[dtype]
}

// String implements fmt.Stringer.
func (dtype DType) String() string {
	if !dtype.IsValid() {
		if dtype == InvalidDType {
			return "InvalidDType"
		}
		return "DType(" + strconv.Itoa(int(dtype)) + ")"
	}
	return dtypeNames[dtype]
}

// MapOfNames to their dtypes. It includes also the C aliases and the C enum names.
// It is also later initialized to include the lower-case version of the names.
var MapOfNames = map[string]DType{
	"InvalidDType":           InvalidDType,
	"Uint8":                  Uint8,
	"U8":                     Uint8,
	"GALILEO_UINT8":          Uint8,
	"Uint16":                 Uint16,
	"U16":                    Uint16,
	"GALILEO_UINT16":         Uint16,
	"Uint32":                 Uint32,
	"U32":                    Uint32,
	"GALILEO_UINT32":         Uint32,
	"Uint64":                 Uint64,
	"U64":                    Uint64,
	"GALILEO_UINT64":         Uint64,
	"Int8":                   Int8,
	"S8":                     Int8,
	"GALILEO_INT8":           Int8,
	"Int16":                  Int16,
	"S16":                    Int16,
	"GALILEO_INT16":          Int16,
	"Int32":                  Int32,
	"S32":                    Int32,
	"GALILEO_INT32":          Int32,
	"Int64":                  Int64,
	"S64":                    Int64,
	"GALILEO_INT64":          Int64,
	"Float32":                Float32,
	"F32":                    Float32,
	"Float":                  Float32,
	"GALILEO_FLOAT":          Float32,
	"Float64":                Float64,
	"F64":                    Float64,
	"Double":                 Float64,
	"GALILEO_DOUBLE":         Float64,
	"Float16":                Float16,
	"F16":                    Float16,
	"Half":                   Float16,
	"GALILEO_HALF":           Float16,
	"BFloat16":               BFloat16,
	"BF16":                   BFloat16,
	"GALILEO_BFLOAT16":       BFloat16,
	"Complex64":              Complex64,
	"C64":                    Complex64,
	"GALILEO_COMPLEX_FLOAT":  Complex64,
	"Complex128":             Complex128,
	"C128":                   Complex128,
	"GALILEO_COMPLEX_DOUBLE": Complex128,
	"Complex32":              Complex32,
	"C32":                    Complex32,
	"GALILEO_COMPLEX_HALF":   Complex32,
}
