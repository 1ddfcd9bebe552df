// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package capi

import (
	"testing"
	"unsafe"

	"github.com/gomlx/galileo/pkg/core/dtypes"
	"github.com/gomlx/galileo/pkg/core/status"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/klog/v2"
)

func init() {
	klog.InitFlags(nil)
}

func initQueue(t *testing.T) *Queue {
	queue := &Queue{}
	require.Equal(t, OK, InitQueue("go:parallelism=2", queue))
	t.Cleanup(func() {
		if queue.Backend() != nil {
			assert.Equal(t, OK, ReleaseQueue(queue))
		}
	})
	return queue
}

func allocate[T dtypes.Supported](t *testing.T, queue *Queue, values []T) *Tensor {
	t.Helper()
	dtype := dtypes.FromGenericsType[T]()
	var ptr unsafe.Pointer
	require.Equal(t, OK, Allocate(queue, dtype, uint32(len(values)), &ptr))
	copy(unsafe.Slice((*T)(ptr), len(values)), values)
	return &Tensor{Queue: queue, Data: ptr, DataType: dtype, Dimensions: []int{len(values)}}
}

func TestResults(t *testing.T) {
	for _, code := range []status.Code{status.OK, status.InvalidParameter, status.UnexpectedDataType,
		status.NonConformingPointer, status.Unknown, status.QueueMismatch, status.DimensionMismatch,
		status.NarrowingConversion} {
		assert.Equal(t, int32(code), int32(ResultOf(code.Err())))
	}
	assert.Equal(t, OK, ResultOf(nil))
	assert.Equal(t, UnknownError, ResultOf(errors.New("not a status error")))
	assert.Equal(t, NonUSMPointer, ResultOf(errors.Wrap(status.ErrNonConformingPointer, "wrapped")))
	assert.Equal(t, "GALILEO_RESULT_NON_USM_POINTER", NonUSMPointer.String())
	assert.Equal(t, "GALILEO_RESULT(12)", Result(12).String())
	assert.NoError(t, OK.Err())
	assert.ErrorIs(t, NarrowingConversion.Err(), status.ErrNarrowingConversion)
}

func TestGetLibVersion(t *testing.T) {
	var major, minor, patch uint32 = 7, 7, 7
	assert.Equal(t, InvalidFuncParameter, GetLibVersion(&major, nil, &patch))
	assert.Equal(t, uint32(7), major)
	require.Equal(t, OK, GetLibVersion(&major, &minor, &patch))
	assert.Equal(t, []uint32{0, 3, 0}, []uint32{major, minor, patch})
	assert.Equal(t, "0.3.0", Version())

	var size uint32
	assert.Equal(t, InvalidFuncParameter, GetQueueSize(nil))
	require.Equal(t, OK, GetQueueSize(&size))
	assert.Equal(t, uint32(unsafe.Sizeof(Queue{})), size)
}

func TestQueueLifecycle(t *testing.T) {
	assert.Equal(t, InvalidFuncParameter, InitQueue("", nil))
	queue := &Queue{}
	assert.Equal(t, InvalidFuncParameter, InitQueue("go:unknown_key=1", queue))
	assert.Nil(t, queue.Backend())
	assert.Equal(t, InvalidFuncParameter, ReleaseQueue(queue))
	assert.Equal(t, InvalidFuncParameter, Wait(queue))

	require.Equal(t, OK, InitQueue("go", queue))
	require.NotNil(t, queue.Backend())
	assert.Equal(t, OK, Wait(queue))
	assert.Equal(t, OK, ReleaseQueue(queue))
	assert.Nil(t, queue.Backend())
}

func TestAllocate(t *testing.T) {
	queue := initQueue(t)
	var ptr unsafe.Pointer
	assert.Equal(t, InvalidFuncParameter, Allocate(nil, dtypes.Float32, 4, &ptr))
	assert.Equal(t, InvalidFuncParameter, Allocate(queue, dtypes.Float32, 4, nil))
	assert.Equal(t, UnexpectedDataType, Allocate(queue, dtypes.DType(77), 4, &ptr))
	assert.Equal(t, InvalidFuncParameter, Allocate(queue, dtypes.Float32, 0, &ptr))
	assert.Nil(t, ptr)

	require.Equal(t, OK, Allocate(queue, dtypes.Complex128, 4, &ptr))
	require.NotNil(t, ptr)
	assert.True(t, queue.Backend().Owns(ptr))
	assert.Equal(t, OK, Deallocate(queue, ptr))
	assert.Equal(t, NonUSMPointer, Deallocate(queue, ptr))
	assert.Equal(t, InvalidFuncParameter, Deallocate(queue, nil))
}

func TestOperations(t *testing.T) {
	queue := initQueue(t)
	x := allocate(t, queue, []float32{1, -2, 3, -4})
	y := allocate(t, queue, make([]float32, 4))
	require.Equal(t, OK, Neg(x, y))
	require.Equal(t, OK, Wait(queue))
	assert.Equal(t, []float32{-1, 2, -3, 4}, unsafe.Slice((*float32)(y.Data), 4))

	z := allocate(t, queue, make([]float32, 4))
	require.Equal(t, OK, Add(x, y, z))
	require.Equal(t, OK, Wait(queue))
	assert.Equal(t, []float32{0, 0, 0, 0}, unsafe.Slice((*float32)(z.Data), 4))

	c := allocate(t, queue, []complex64{1 + 1i})
	cOut := allocate(t, queue, make([]complex64, 1))
	require.Equal(t, OK, Conj(c, cOut))
	require.Equal(t, OK, Wait(queue))
	assert.Equal(t, complex64(1-1i), *(*complex64)(cOut.Data))
}

func TestOperationErrors(t *testing.T) {
	queue, other := initQueue(t), initQueue(t)
	x := allocate(t, queue, []int32{1, 2, 3})
	y := allocate(t, queue, make([]int32, 3))
	y16 := allocate(t, queue, make([]int16, 3))
	short := allocate(t, queue, make([]int32, 2))
	foreign := allocate(t, other, make([]int32, 3))

	assert.Equal(t, InvalidFuncParameter, Neg(nil, y))
	assert.Equal(t, InvalidFuncParameter, Add(x, x, nil))
	assert.Equal(t, InvalidFuncParameter, Neg(&Tensor{Queue: queue, DataType: dtypes.Int32, Dimensions: []int{3}}, y))
	assert.Equal(t, InvalidFuncParameter, Neg(&Tensor{Queue: queue, Data: x.Data, DataType: dtypes.Int32, Dimensions: []int{-3}}, y))
	assert.Equal(t, TensorQueueMismatch, Neg(x, foreign))
	assert.Equal(t, TensorDimensionsMismatch, Add(x, x, short))
	assert.Equal(t, NonUSMPointer, Neg(&Tensor{Queue: queue, Data: foreign.Data, DataType: dtypes.Int32, Dimensions: []int{3}}, y))
	assert.Equal(t, UnexpectedDataType, Sqrt(x, y))
	assert.Equal(t, NarrowingConversion, Add(x, x, y16))

	// Division by zero is reported by the queue.
	require.Equal(t, OK, Div(x, y, y))
	assert.Equal(t, UnknownError, Wait(queue))
	assert.Equal(t, OK, Wait(queue))
}
