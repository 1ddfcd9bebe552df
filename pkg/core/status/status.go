// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package status defines the closed set of errors reported by the elementwise engine.
//
// Every error returned by the engine wraps exactly one of the sentinel errors below, and can be classified
// with errors.Is or with CodeOf. The Code values are the ones of the C API (GALILEO_RESULT).
package status

import (
	"strconv"

	"github.com/pkg/errors"
)

// Code is the result code of an operation, a 1:1 mapping of the GALILEO_RESULT C enum.
type Code int32

const (
	// OK means the operation was validated and submitted (or completed, for synchronous calls).
	OK Code = 0

	// InvalidParameter is reported for null tensors, null pointers or invalid arguments.
	InvalidParameter Code = 1

	// UnexpectedDataType is reported when a data-type tag is outside the operation's type-use policy.
	UnexpectedDataType Code = 2

	// NonConformingPointer is reported when a data pointer was not allocated by the queue (non-USM pointer).
	NonConformingPointer Code = 3

	// Unknown is reported for any failure not covered by the other codes.
	Unknown Code = 4

	// QueueMismatch is reported when the tensors of an operation are associated with different queues.
	QueueMismatch Code = 5

	// DimensionMismatch is reported when the tensors of an operation have different shapes.
	DimensionMismatch Code = 6

	// NarrowingConversion is reported when the result type of an operation can't be stored in the
	// output without losing precision.
	NarrowingConversion Code = 7
)

var codeNames = map[Code]string{
	OK:                   "OK",
	InvalidParameter:     "InvalidParameter",
	UnexpectedDataType:   "UnexpectedDataType",
	NonConformingPointer: "NonConformingPointer",
	Unknown:              "Unknown",
	QueueMismatch:        "QueueMismatch",
	DimensionMismatch:    "DimensionMismatch",
	NarrowingConversion:  "NarrowingConversion",
}

// String implements fmt.Stringer.
func (c Code) String() string {
	if name, found := codeNames[c]; found {
		return name
	}
	return "Code(" + strconv.Itoa(int(c)) + ")"
}

// Sentinel errors, one per Code (except OK).
var (
	ErrInvalidParameter     = errors.New("invalid function parameter")
	ErrUnexpectedDataType   = errors.New("unexpected data type")
	ErrNonConformingPointer = errors.New("pointer not allocated by the queue")
	ErrUnknown              = errors.New("unknown error")
	ErrQueueMismatch        = errors.New("tensors associated with different queues")
	ErrDimensionMismatch    = errors.New("tensors with different dimensions")
	ErrNarrowingConversion  = errors.New("narrowing conversion")
)

// sentinels in the order they are checked by CodeOf.
var sentinels = []struct {
	err  error
	code Code
}{
	{ErrInvalidParameter, InvalidParameter},
	{ErrUnexpectedDataType, UnexpectedDataType},
	{ErrNonConformingPointer, NonConformingPointer},
	{ErrQueueMismatch, QueueMismatch},
	{ErrDimensionMismatch, DimensionMismatch},
	{ErrNarrowingConversion, NarrowingConversion},
	{ErrUnknown, Unknown},
}

// CodeOf returns the Code of err: OK for nil, the code of the wrapped sentinel, or Unknown for errors
// that don't wrap any sentinel.
func CodeOf(err error) Code {
	if err == nil {
		return OK
	}
	for _, s := range sentinels {
		if errors.Is(err, s.err) {
			return s.code
		}
	}
	return Unknown
}

// Err returns the sentinel error for the code, or nil for OK.
// Codes outside the enumeration map to ErrUnknown.
func (c Code) Err() error {
	if c == OK {
		return nil
	}
	for _, s := range sentinels {
		if s.code == c {
			return s.err
		}
	}
	return ErrUnknown
}

// Errorf wraps the sentinel error of code with the formatted message and a stack trace.
func Errorf(code Code, format string, args ...any) error {
	sentinel := code.Err()
	if sentinel == nil {
		sentinel = ErrUnknown
	}
	return errors.Wrapf(sentinel, format, args...)
}
