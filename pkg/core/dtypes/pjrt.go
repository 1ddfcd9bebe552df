// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package dtypes

import (
	pjrtdtypes "github.com/gomlx/gopjrt/dtypes"
)

// toPJRT maps each tag to the PJRT (XLA) dtype with the same Go representation.
var toPJRT = [NumDTypes]pjrtdtypes.DType{
	Uint8:      pjrtdtypes.Uint8,
	Uint16:     pjrtdtypes.Uint16,
	Uint32:     pjrtdtypes.Uint32,
	Uint64:     pjrtdtypes.Uint64,
	Int8:       pjrtdtypes.Int8,
	Int16:      pjrtdtypes.Int16,
	Int32:      pjrtdtypes.Int32,
	Int64:      pjrtdtypes.Int64,
	Float32:    pjrtdtypes.Float32,
	Float64:    pjrtdtypes.Float64,
	Float16:    pjrtdtypes.Float16,
	BFloat16:   pjrtdtypes.BFloat16,
	Complex64:  pjrtdtypes.Complex64,
	Complex128: pjrtdtypes.Complex128,
	Complex32:  pjrtdtypes.InvalidDType, // PJRT has no complex-half.
}

// ToPJRT converts dtype to the equivalent github.com/gomlx/gopjrt/dtypes value, so buffers can be exchanged
// with XLA/PJRT based runtimes.
//
// Complex32 and invalid dtypes have no equivalent and return pjrtdtypes.InvalidDType.
func (dtype DType) ToPJRT() pjrtdtypes.DType {
	if !dtype.IsValid() {
		return pjrtdtypes.InvalidDType
	}
	return toPJRT[dtype]
}

// FromPJRT converts a github.com/gomlx/gopjrt/dtypes value to the equivalent DType.
//
// PJRT dtypes without an equivalent (Bool, 4-bit types, etc.) return InvalidDType.
func FromPJRT(pjrtDType pjrtdtypes.DType) DType {
	if pjrtDType == pjrtdtypes.InvalidDType {
		return InvalidDType
	}
	for dtype, pjrt := range toPJRT {
		if pjrt == pjrtDType {
			return DType(dtype)
		}
	}
	return InvalidDType
}

// PJRTName returns the name of the equivalent PJRT dtype, or "" if there is none.
func (dtype DType) PJRTName() string {
	pjrt := dtype.ToPJRT()
	if pjrt == pjrtdtypes.InvalidDType {
		return ""
	}
	return pjrt.String()
}
