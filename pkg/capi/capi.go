// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package capi mirrors the C API of the library (galileo.h): functions return a Result code instead
// of an error, and output parameters are only written on success.
//
// It is a thin layer over packages backends, tensors and eltwise, meant to be exported through cgo or
// used by callers that need the C result codes.
package capi

import (
	"fmt"
	"strconv"
	"unsafe"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/galileo/backends"
	"github.com/gomlx/galileo/pkg/core/dtypes"
	"github.com/gomlx/galileo/pkg/core/shapes"
	"github.com/gomlx/galileo/pkg/core/status"
	"github.com/gomlx/galileo/pkg/core/tensors"
	"k8s.io/klog/v2"

	// Registers the default CPU queue.
	_ "github.com/gomlx/galileo/backends/simplego"
)

// Version of the library.
const (
	VersionMajor = 0
	VersionMinor = 3
	VersionPatch = 0
)

// Version returns the library version as "major.minor.patch".
func Version() string {
	return fmt.Sprintf("%d.%d.%d", VersionMajor, VersionMinor, VersionPatch)
}

// Result is the GALILEO_RESULT code returned by every function.
type Result int32

const (
	OK                       = Result(status.OK)
	InvalidFuncParameter     = Result(status.InvalidParameter)
	UnexpectedDataType       = Result(status.UnexpectedDataType)
	NonUSMPointer            = Result(status.NonConformingPointer)
	UnknownError             = Result(status.Unknown)
	TensorQueueMismatch      = Result(status.QueueMismatch)
	TensorDimensionsMismatch = Result(status.DimensionMismatch)
	NarrowingConversion      = Result(status.NarrowingConversion)
)

var resultNames = [...]string{
	OK:                       "GALILEO_RESULT_OK",
	InvalidFuncParameter:     "GALILEO_RESULT_INVALID_FUNC_PARAMETER",
	UnexpectedDataType:       "GALILEO_RESULT_UNEXPECTED_DATA_TYPE",
	NonUSMPointer:            "GALILEO_RESULT_NON_USM_POINTER",
	UnknownError:             "GALILEO_RESULT_UNKNOWN_ERROR",
	TensorQueueMismatch:      "GALILEO_RESULT_TENSOR_QUEUE_MISMATCH",
	TensorDimensionsMismatch: "GALILEO_RESULT_TENSOR_DIMENSIONS_MISMATCH",
	NarrowingConversion:      "GALILEO_RESULT_NARROWING_CONVERSION",
}

// String returns the C name of the result.
func (r Result) String() string {
	if r < 0 || int(r) >= len(resultNames) {
		return "GALILEO_RESULT(" + strconv.Itoa(int(r)) + ")"
	}
	return resultNames[r]
}

// Err returns the sentinel error of package status for the result, or nil for OK.
func (r Result) Err() error {
	return status.Code(r).Err()
}

// ResultOf translates an error returned by the engine to its Result.
func ResultOf(err error) Result {
	return Result(status.CodeOf(err))
}

// guard runs fn, translating its error to a Result, and any panic to UnknownError.
func guard(name string, fn func() error) (result Result) {
	var err error
	exception := exceptions.Try(func() { err = fn() })
	if exception != nil {
		klog.Errorf("capi.%s: %v", name, exception)
		return UnknownError
	}
	result = ResultOf(err)
	if result != OK {
		klog.V(1).Infof("capi.%s: %s: %v", name, result, err)
	}
	return result
}

// Queue is the handle of a device queue. The zero value is not initialized: use InitQueue.
type Queue struct {
	queue backends.Queue
}

// Backend returns the backends.Queue of the handle, or nil if it is not initialized.
func (q *Queue) Backend() backends.Queue {
	if q == nil {
		return nil
	}
	return q.queue
}

// GetLibVersion writes the library version.
func GetLibVersion(major, minor, patch *uint32) Result {
	if major == nil || minor == nil || patch == nil {
		return InvalidFuncParameter
	}
	*major, *minor, *patch = VersionMajor, VersionMinor, VersionPatch
	return OK
}

// GetQueueSize writes the size in bytes of a Queue handle.
func GetQueueSize(size *uint32) Result {
	if size == nil {
		return InvalidFuncParameter
	}
	*size = uint32(unsafe.Sizeof(Queue{}))
	return OK
}

// InitQueue creates a device queue in the handle. config is a backend configuration (see backends.NewWithConfig);
// if empty, the default queue (see backends.New) is created.
func InitQueue(config string, queue *Queue) Result {
	if queue == nil {
		return InvalidFuncParameter
	}
	return guard("InitQueue", func() error {
		var (
			q   backends.Queue
			err error
		)
		if config == "" {
			q, err = backends.New()
		} else {
			q, err = backends.NewWithConfig(config)
		}
		if err != nil {
			return status.Errorf(status.InvalidParameter, "failed to create queue: %v", err)
		}
		queue.queue = q
		return nil
	})
}

// ReleaseQueue waits for all the pending work of the queue, and releases it with all its memory.
// The handle is left uninitialized.
func ReleaseQueue(queue *Queue) Result {
	if queue == nil || queue.queue == nil {
		return InvalidFuncParameter
	}
	return guard("ReleaseQueue", func() error {
		err := queue.queue.Finalize()
		queue.queue = nil
		return err
	})
}

// Wait blocks until all the kernels submitted to the queue are executed. A kernel failure is
// reported as UnknownError.
func Wait(queue *Queue) Result {
	if queue == nil || queue.queue == nil {
		return InvalidFuncParameter
	}
	return guard("Wait", queue.queue.Wait)
}

// Allocate size elements of dataType in the memory of the queue, and writes the pointer to ptr.
func Allocate(queue *Queue, dataType dtypes.DType, size uint32, ptr *unsafe.Pointer) Result {
	if queue == nil || queue.queue == nil || ptr == nil {
		return InvalidFuncParameter
	}
	if !dataType.IsValid() {
		return UnexpectedDataType
	}
	return guard("Allocate", func() error {
		data, err := queue.queue.Allocate(dataType, int(size))
		if err != nil {
			return err
		}
		*ptr = data
		return nil
	})
}

// Deallocate releases memory returned by Allocate.
func Deallocate(queue *Queue, ptr unsafe.Pointer) Result {
	if queue == nil || queue.queue == nil || ptr == nil {
		return InvalidFuncParameter
	}
	return guard("Deallocate", func() error { return queue.queue.Free(ptr) })
}

// Tensor is the C tensor descriptor: a buffer of the queue with its data type and dimensions.
type Tensor struct {
	Queue      *Queue
	Data       unsafe.Pointer
	DataType   dtypes.DType
	Dimensions []int
}

// toTensor converts the descriptor. A nil descriptor is returned as a nil *tensors.Tensor, left
// for the operation to report.
func (t *Tensor) toTensor() (*tensors.Tensor, error) {
	if t == nil {
		return nil, nil
	}
	shape, err := shapes.FromDimensions(t.Dimensions)
	if err != nil {
		return nil, err
	}
	return tensors.New(t.Queue.Backend(), t.Data, t.DataType, shape), nil
}

func toTensors(ts ...*Tensor) ([]*tensors.Tensor, error) {
	converted := make([]*tensors.Tensor, len(ts))
	for ii, t := range ts {
		var err error
		converted[ii], err = t.toTensor()
		if err != nil {
			return nil, err
		}
	}
	return converted, nil
}
