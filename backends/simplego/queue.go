// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package simplego

import (
	"fmt"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/dustin/go-humanize"
	"github.com/gomlx/galileo/backends"
	"github.com/gomlx/galileo/internal/workerspool"
	"github.com/gomlx/galileo/pkg/core/dtypes"
	"github.com/gomlx/galileo/pkg/core/status"
	"github.com/gomlx/galileo/pkg/support/xsync"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Queue implements backends.Queue on the CPU.
type Queue struct {
	id     string
	config Config
	pool   *workerspool.Pool
	memory *memory

	// streams execute the submitted kernels: each has one goroutine draining its channel in order.
	streams    []chan backends.Kernel
	nextStream atomic.Uint64
	streamsWG  sync.WaitGroup

	// pending counts kernels submitted and not yet finished. Submit may be called during a Wait.
	pending xsync.DynamicWaitGroup

	// muState protects finalized: Submit holds it for reading while enqueueing.
	muState   sync.RWMutex
	finalized bool

	muFault sync.Mutex
	fault   error // First kernel fault since the last Wait.

	numKernels atomic.Int64
}

// Compile-time check that simplego.Queue implements backends.Queue.
var _ backends.Queue = &Queue{}

// NewQueue creates a new CPU Queue with the given configuration, and starts its streams.
func NewQueue(cfg Config) (*Queue, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	q := &Queue{
		id:     uuid.NewString(),
		config: cfg,
		pool:   workerspool.New().SetMaxParallelism(cfg.Parallelism).SetMinChunkSize(cfg.ChunkSize),
		memory: newMemory(),
	}
	numStreams := cfg.NumStreams()
	q.streams = make([]chan backends.Kernel, numStreams)
	q.streamsWG.Add(numStreams)
	for ii := range q.streams {
		q.streams[ii] = make(chan backends.Kernel, cfg.Depth)
		go q.runStream(ii)
	}
	klog.V(1).Infof("simplego: created queue %s (%s)", q.id, cfg)
	return q, nil
}

// Name returns the short name of the backend.
func (q *Queue) Name() string {
	return BackendName
}

// ID returns the unique id of the queue.
func (q *Queue) ID() string {
	return q.id
}

// String implements fmt.Stringer.
func (q *Queue) String() string {
	return fmt.Sprintf("%s:%s", BackendName, q.id)
}

// Config returns the configuration of the queue.
func (q *Queue) Config() Config {
	return q.config
}

// Description is a longer description of the Queue that can be used to pretty-print.
func (q *Queue) Description() string {
	numAllocations, bytesInUse := q.memory.stats()
	return fmt.Sprintf("SimpleGo CPU queue (%s) [%s], cpu features: %s, %d allocations using %s",
		BackendName, q.config, cpuFeatures(), numAllocations, humanize.Bytes(uint64(bytesInUse)))
}

// Allocate implements backends.Queue.
func (q *Queue) Allocate(dtype dtypes.DType, numElements int) (unsafe.Pointer, error) {
	return q.memory.allocate(dtype, numElements)
}

// Free implements backends.Queue.
//
// Only pointers returned by Allocate are accepted, not interior pointers.
// It doesn't wait for pending kernels that may be using the memory: call Wait before freeing.
func (q *Queue) Free(ptr unsafe.Pointer) error {
	return q.memory.free(ptr)
}

// Owns implements backends.Queue. Interior pointers of a live allocation are owned.
func (q *Queue) Owns(ptr unsafe.Pointer) bool {
	return q.memory.owns(ptr)
}

// MemoryStats returns the number of live allocations and the bytes they use.
func (q *Queue) MemoryStats() (numAllocations, bytesInUse int) {
	return q.memory.stats()
}

// NumKernels returns the number of kernels executed so far.
func (q *Queue) NumKernels() int64 {
	return q.numKernels.Load()
}

// Submit implements backends.Queue. It blocks only if the stream's buffer (Config.Depth) is full.
func (q *Queue) Submit(kernel backends.Kernel) error {
	if kernel.Body == nil {
		return status.Errorf(status.InvalidParameter, "kernel %q has no body", kernel.Name)
	}
	if kernel.Size < 0 {
		return status.Errorf(status.InvalidParameter, "kernel %q has negative size %d", kernel.Name, kernel.Size)
	}
	q.muState.RLock()
	defer q.muState.RUnlock()
	if q.finalized {
		return errors.Errorf("queue %s already finalized, cannot submit kernel %q", q.id, kernel.Name)
	}
	q.pending.Add(1)
	streamIdx := int(q.nextStream.Add(1)-1) % len(q.streams)
	klog.V(2).Infof("simplego: submit kernel %q (%d elements) to stream #%d of queue %s", kernel.Name, kernel.Size, streamIdx, q.id)
	q.streams[streamIdx] <- kernel
	return nil
}

// runStream executes the kernels of stream streamIdx, in order.
func (q *Queue) runStream(streamIdx int) {
	defer q.streamsWG.Done()
	for kernel := range q.streams[streamIdx] {
		q.execute(kernel)
		q.pending.Done()
	}
}

// execute runs the kernel chunks, and records a fault if it panicked.
func (q *Queue) execute(kernel backends.Kernel) {
	q.numKernels.Add(1)
	err := q.pool.ParallelFor(kernel.Size, kernel.Body)
	if err == nil {
		return
	}
	err = status.Errorf(status.Unknown, "kernel %q failed on queue %s: %v", kernel.Name, q.id, err)
	klog.Warningf("simplego: %v", err)
	q.muFault.Lock()
	if q.fault == nil {
		q.fault = err
	}
	q.muFault.Unlock()
}

// Wait implements backends.Queue: it returns the first kernel fault since the last Wait.
func (q *Queue) Wait() error {
	q.pending.Wait()
	q.muFault.Lock()
	defer q.muFault.Unlock()
	err := q.fault
	q.fault = nil
	return err
}

// Finalize implements backends.Queue. It stops accepting kernels, waits for the pending ones, and
// releases all memory. It returns the pending fault, if any.
//
// Calling Finalize more than once is a no-op.
func (q *Queue) Finalize() error {
	q.muState.Lock()
	if q.finalized {
		q.muState.Unlock()
		return nil
	}
	q.finalized = true
	q.muState.Unlock()

	err := q.Wait()
	for _, stream := range q.streams {
		close(stream)
	}
	q.streamsWG.Wait()
	q.memory.releaseAll()
	klog.V(1).Infof("simplego: finalized queue %s after %d kernels", q.id, q.numKernels.Load())
	return err
}
