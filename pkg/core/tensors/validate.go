// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package tensors

// SameQueue returns whether all tensors are associated with the same queue.
//
// It returns true for zero or one (non-nil) tensor, and false if any tensor is nil.
func SameQueue(tensors ...*Tensor) bool {
	for _, t := range tensors {
		if t == nil {
			return false
		}
	}
	for ii := 1; ii < len(tensors); ii++ {
		if tensors[ii].queue != tensors[0].queue {
			return false
		}
	}
	return true
}

// SameShape returns whether all tensors have the same rank and the same dimension on every axis.
// DTypes are not compared.
//
// It returns true for zero or one (non-nil) tensor, and false if any tensor is nil.
func SameShape(tensors ...*Tensor) bool {
	for _, t := range tensors {
		if t == nil {
			return false
		}
	}
	for ii := 1; ii < len(tensors); ii++ {
		if !tensors[ii].shape.Equal(tensors[0].shape) {
			return false
		}
	}
	return true
}
