// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package status

import (
	"fmt"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodeValues(t *testing.T) {
	// Values must match the C enum.
	assert.Equal(t, Code(0), OK)
	assert.Equal(t, Code(1), InvalidParameter)
	assert.Equal(t, Code(2), UnexpectedDataType)
	assert.Equal(t, Code(3), NonConformingPointer)
	assert.Equal(t, Code(4), Unknown)
	assert.Equal(t, Code(5), QueueMismatch)
	assert.Equal(t, Code(6), DimensionMismatch)
	assert.Equal(t, Code(7), NarrowingConversion)
	assert.Equal(t, "NarrowingConversion", NarrowingConversion.String())
	assert.Equal(t, "Code(42)", Code(42).String())
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, OK, CodeOf(nil))
	for code := InvalidParameter; code <= NarrowingConversion; code++ {
		err := Errorf(code, "operation %q failed", "Add")
		require.Error(t, err)
		assert.Equal(t, code, CodeOf(err), "code %s", code)
		assert.ErrorIs(t, err, code.Err())

		// Wrapping further keeps the classification.
		wrapped := errors.WithMessage(err, "outer")
		assert.Equal(t, code, CodeOf(wrapped))
		wrapped = fmt.Errorf("std wrap: %w", err)
		assert.Equal(t, code, CodeOf(wrapped))
	}
	assert.Equal(t, Unknown, CodeOf(errors.New("something else")))
	assert.ErrorIs(t, Code(99).Err(), ErrUnknown)
	assert.NoError(t, OK.Err())
	assert.ErrorIs(t, Errorf(OK, "bogus"), ErrUnknown)
}
