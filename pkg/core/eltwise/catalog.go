// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package eltwise

import (
	"math"
	"math/cmplx"
	"strings"

	"github.com/gomlx/galileo/pkg/core/dispatch"
	"github.com/viterin/vek"
	"github.com/viterin/vek/vek32"
)

// Unary operations.
var (
	Abs = &UnaryOp{
		Name:        "Abs",
		Policy:      dispatch.FloatAndInt,
		Int:         absInt,
		Uint:        func(x uint64) uint64 { return x },
		Float:       math.Abs,
		Float32Into: vek32.Abs_Into,
		Float64Into: vek.Abs_Into,
	}
	Acos  = floatOp("Acos", math.Acos)
	Acosh = floatOp("Acosh", math.Acosh)
	Asin  = floatOp("Asin", math.Asin)
	Asinh = floatOp("Asinh", math.Asinh)
	Atan  = floatOp("Atan", math.Atan)
	Atanh = floatOp("Atanh", math.Atanh)
	Cos   = floatOp("Cos", math.Cos)
	Cosh  = floatOp("Cosh", math.Cosh)
	Erf   = floatOp("Erf", math.Erf)
	Exp   = floatOp("Exp", math.Exp)
	Log   = floatOp("Log", math.Log)
	Sign  = floatOp("Sign", sign)
	Sin   = floatOp("Sin", math.Sin)
	Sinh  = floatOp("Sinh", math.Sinh)
	Sqrt  = &UnaryOp{
		Name:        "Sqrt",
		Policy:      dispatch.OnlyFloat,
		Float:       math.Sqrt,
		Float32Into: vek32.Sqrt_Into,
		Float64Into: vek.Sqrt_Into,
	}
	Tan  = floatOp("Tan", math.Tan)
	Tanh = floatOp("Tanh", math.Tanh)
	Neg  = &UnaryOp{
		Name:        "Neg",
		Policy:      dispatch.FloatAndSignedInt,
		Int:         func(x int64) int64 { return -x },
		Float:       func(x float64) float64 { return -x },
		Float32Into: vek32.Neg_Into,
		Float64Into: vek.Neg_Into,
	}
	Conj = &UnaryOp{
		Name:    "Conj",
		Policy:  dispatch.OnlyComplex,
		Complex: cmplx.Conj,
	}
)

// Binary operations.
var (
	Add = &BinaryOp{Name: "Add", Policy: dispatch.FloatIntAndComplex, kind: kindAdd}
	Sub = &BinaryOp{Name: "Sub", Policy: dispatch.FloatIntAndComplex, kind: kindSub}
	Mul = &BinaryOp{Name: "Mul", Policy: dispatch.FloatIntAndComplex, kind: kindMul}
	Div = &BinaryOp{Name: "Div", Policy: dispatch.FloatIntAndComplex, kind: kindDiv}
)

var (
	unaryOps  = []*UnaryOp{Abs, Acos, Acosh, Asin, Asinh, Atan, Atanh, Cos, Cosh, Erf, Exp, Log, Sign, Sin, Sinh, Sqrt, Tan, Tanh, Neg, Conj}
	binaryOps = []*BinaryOp{Add, Sub, Mul, Div}
)

func floatOp(name string, fn func(float64) float64) *UnaryOp {
	return &UnaryOp{Name: name, Policy: dispatch.OnlyFloat, Float: fn}
}

func absInt(x int64) int64 {
	if x < 0 {
		return -x
	}
	return x
}

// sign returns 1 for positive values, -1 for negative values and 0 for NaN.
// Zeros are returned unchanged, keeping their sign.
func sign(x float64) float64 {
	switch {
	case math.IsNaN(x):
		return 0
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return x
}

// UnaryOps returns all unary operations of the catalog.
func UnaryOps() []*UnaryOp {
	return append([]*UnaryOp(nil), unaryOps...)
}

// BinaryOps returns all binary operations of the catalog.
func BinaryOps() []*BinaryOp {
	return append([]*BinaryOp(nil), binaryOps...)
}

// Ops returns all operations of the catalog, unary first.
func Ops() []Operation {
	ops := make([]Operation, 0, len(unaryOps)+len(binaryOps))
	for _, op := range unaryOps {
		ops = append(ops, op)
	}
	for _, op := range binaryOps {
		ops = append(ops, op)
	}
	return ops
}

// UnaryByName returns the unary operation with the given name (case-insensitive), or nil if there is none.
func UnaryByName(name string) *UnaryOp {
	for _, op := range unaryOps {
		if strings.EqualFold(op.Name, name) {
			return op
		}
	}
	return nil
}

// BinaryByName returns the binary operation with the given name (case-insensitive), or nil if there is none.
func BinaryByName(name string) *BinaryOp {
	for _, op := range binaryOps {
		if strings.EqualFold(op.Name, name) {
			return op
		}
	}
	return nil
}
