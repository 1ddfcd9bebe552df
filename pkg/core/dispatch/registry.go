// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package dispatch

import (
	"unsafe"

	"github.com/gomlx/galileo/pkg/core/dtypes"
	"github.com/gomlx/galileo/pkg/core/dtypes/bfloat16"
	"github.com/gomlx/galileo/pkg/core/dtypes/complex32"
	"github.com/gomlx/galileo/pkg/core/status"
	"github.com/x448/float16"
)

// inputFactories and outputFactories are indexed by dtype: the closed table of tag -> Go type.
var (
	inputFactories = [dtypes.NumDTypes]func(unsafe.Pointer, int) Input{
		dtypes.Uint8:      newConst[uint8],
		dtypes.Uint16:     newConst[uint16],
		dtypes.Uint32:     newConst[uint32],
		dtypes.Uint64:     newConst[uint64],
		dtypes.Int8:       newConst[int8],
		dtypes.Int16:      newConst[int16],
		dtypes.Int32:      newConst[int32],
		dtypes.Int64:      newConst[int64],
		dtypes.Float32:    newConst[float32],
		dtypes.Float64:    newConst[float64],
		dtypes.Float16:    newConst[float16.Float16],
		dtypes.BFloat16:   newConst[bfloat16.BFloat16],
		dtypes.Complex64:  newConst[complex64],
		dtypes.Complex128: newConst[complex128],
		dtypes.Complex32:  newConst[complex32.Complex32],
	}

	outputFactories = [dtypes.NumDTypes]func(unsafe.Pointer, int) Output{
		dtypes.Uint8:      newMut[uint8],
		dtypes.Uint16:     newMut[uint16],
		dtypes.Uint32:     newMut[uint32],
		dtypes.Uint64:     newMut[uint64],
		dtypes.Int8:       newMut[int8],
		dtypes.Int16:      newMut[int16],
		dtypes.Int32:      newMut[int32],
		dtypes.Int64:      newMut[int64],
		dtypes.Float32:    newMut[float32],
		dtypes.Float64:    newMut[float64],
		dtypes.Float16:    newMut[float16.Float16],
		dtypes.BFloat16:   newMut[bfloat16.BFloat16],
		dtypes.Complex64:  newMut[complex64],
		dtypes.Complex128: newMut[complex128],
		dtypes.Complex32:  newMut[complex32.Complex32],
	}
)

// checkPolicy returns an error wrapping status.ErrUnexpectedDataType if dtype is not accepted by policy.
func checkPolicy(policy Policy, dtype dtypes.DType) error {
	if !dtype.IsValid() {
		return status.Errorf(status.UnexpectedDataType, "%s is not a valid data type tag", dtype)
	}
	if !policy.Allows(dtype) {
		return status.Errorf(status.UnexpectedDataType, "data type %s not accepted by policy %s", dtype, policy)
	}
	return nil
}

// NewInput reinterprets ptr as a read-only view of numElements elements of the Go type of dtype.
//
// It returns an error wrapping status.ErrUnexpectedDataType if dtype is not accepted by policy (or it is not
// a valid tag). There is no bounds checking: the number of elements is trusted.
func NewInput(policy Policy, dtype dtypes.DType, ptr unsafe.Pointer, numElements int) (Input, error) {
	if err := checkPolicy(policy, dtype); err != nil {
		return nil, err
	}
	return inputFactories[dtype](ptr, numElements), nil
}

// NewOutput reinterprets ptr as a writable view of numElements elements of the Go type of dtype.
//
// It returns an error wrapping status.ErrUnexpectedDataType if dtype is not accepted by policy (or it is not
// a valid tag). There is no bounds checking: the number of elements is trusted.
func NewOutput(policy Policy, dtype dtypes.DType, ptr unsafe.Pointer, numElements int) (Output, error) {
	if err := checkPolicy(policy, dtype); err != nil {
		return nil, err
	}
	return outputFactories[dtype](ptr, numElements), nil
}
