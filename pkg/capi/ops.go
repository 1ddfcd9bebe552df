// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package capi

import (
	"github.com/gomlx/galileo/pkg/core/eltwise"
)

func unary(op *eltwise.UnaryOp, input, output *Tensor) Result {
	if input == nil || output == nil {
		return InvalidFuncParameter
	}
	return guard(op.Name, func() error {
		ts, err := toTensors(input, output)
		if err != nil {
			return err
		}
		return op.Apply(ts[0], ts[1])
	})
}

func binary(op *eltwise.BinaryOp, lhs, rhs, output *Tensor) Result {
	if lhs == nil || rhs == nil || output == nil {
		return InvalidFuncParameter
	}
	return guard(op.Name, func() error {
		ts, err := toTensors(lhs, rhs, output)
		if err != nil {
			return err
		}
		return op.Apply(ts[0], ts[1], ts[2])
	})
}

// Unary operations: output[i] = F(input[i]).

func Abs(input, output *Tensor) Result   { return unary(eltwise.Abs, input, output) }
func Acos(input, output *Tensor) Result  { return unary(eltwise.Acos, input, output) }
func Acosh(input, output *Tensor) Result { return unary(eltwise.Acosh, input, output) }
func Asin(input, output *Tensor) Result  { return unary(eltwise.Asin, input, output) }
func Asinh(input, output *Tensor) Result { return unary(eltwise.Asinh, input, output) }
func Atan(input, output *Tensor) Result  { return unary(eltwise.Atan, input, output) }
func Atanh(input, output *Tensor) Result { return unary(eltwise.Atanh, input, output) }
func Conj(input, output *Tensor) Result  { return unary(eltwise.Conj, input, output) }
func Cos(input, output *Tensor) Result   { return unary(eltwise.Cos, input, output) }
func Cosh(input, output *Tensor) Result  { return unary(eltwise.Cosh, input, output) }
func Erf(input, output *Tensor) Result   { return unary(eltwise.Erf, input, output) }
func Exp(input, output *Tensor) Result   { return unary(eltwise.Exp, input, output) }
func Log(input, output *Tensor) Result   { return unary(eltwise.Log, input, output) }
func Neg(input, output *Tensor) Result   { return unary(eltwise.Neg, input, output) }
func Sign(input, output *Tensor) Result  { return unary(eltwise.Sign, input, output) }
func Sin(input, output *Tensor) Result   { return unary(eltwise.Sin, input, output) }
func Sinh(input, output *Tensor) Result  { return unary(eltwise.Sinh, input, output) }
func Sqrt(input, output *Tensor) Result  { return unary(eltwise.Sqrt, input, output) }
func Tan(input, output *Tensor) Result   { return unary(eltwise.Tan, input, output) }
func Tanh(input, output *Tensor) Result  { return unary(eltwise.Tanh, input, output) }

// Binary operations: output[i] = F(lhs[i], rhs[i]). The output data type must be exactly the
// result type of the inputs, otherwise NarrowingConversion is returned.

func Add(lhs, rhs, output *Tensor) Result { return binary(eltwise.Add, lhs, rhs, output) }
func Sub(lhs, rhs, output *Tensor) Result { return binary(eltwise.Sub, lhs, rhs, output) }
func Mul(lhs, rhs, output *Tensor) Result { return binary(eltwise.Mul, lhs, rhs, output) }
func Div(lhs, rhs, output *Tensor) Result { return binary(eltwise.Div, lhs, rhs, output) }
