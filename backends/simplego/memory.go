// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package simplego

import (
	"reflect"
	"slices"
	"sync"
	"unsafe"

	"github.com/dustin/go-humanize"
	"github.com/gomlx/galileo/pkg/core/dtypes"
	"github.com/gomlx/galileo/pkg/core/status"
	"k8s.io/klog/v2"
)

// allocation is one live block of memory handed out by Allocate.
type allocation struct {
	key        bufferPoolKey
	flat       any // Slice of key.dtype.GoType(): it keeps the memory alive.
	start, end uintptr
}

type bufferPoolKey struct {
	dtype  dtypes.DType
	length int
}

// memory manages the allocations of a Queue.
//
// Freed blocks are recycled through per-(dtype,length) pools.
type memory struct {
	// bufferPools are a map to pools of flat slices that can be reused.
	// The underlying type is map[bufferPoolKey]*sync.Pool.
	bufferPools sync.Map

	mu          sync.Mutex
	allocations map[uintptr]*allocation
	starts      []uintptr // Sorted start addresses of allocations, for interior pointer lookups.
	bytesInUse  int
	released    bool
}

func newMemory() *memory {
	return &memory{allocations: make(map[uintptr]*allocation)}
}

// getBufferPool for given dtype/length.
func (m *memory) getBufferPool(key bufferPoolKey) *sync.Pool {
	poolInterface, ok := m.bufferPools.Load(key)
	if !ok {
		poolInterface, _ = m.bufferPools.LoadOrStore(key, &sync.Pool{
			New: func() interface{} {
				return reflect.MakeSlice(reflect.SliceOf(key.dtype.GoType()), key.length, key.length).Interface()
			},
		})
	}
	return poolInterface.(*sync.Pool)
}

// allocate returns zero-initialized storage for numElements of dtype.
func (m *memory) allocate(dtype dtypes.DType, numElements int) (unsafe.Pointer, error) {
	if !dtype.IsValid() {
		return nil, status.Errorf(status.InvalidParameter, "cannot allocate buffer for invalid dtype %s", dtype)
	}
	if numElements <= 0 {
		return nil, status.Errorf(status.InvalidParameter, "cannot allocate %d elements of %s, it must be > 0", numElements, dtype)
	}
	key := bufferPoolKey{dtype: dtype, length: numElements}
	flat := m.getBufferPool(key).Get()
	value := reflect.ValueOf(flat)
	value.Clear() // Recycled slices keep old values.
	ptr := value.UnsafePointer()
	alloc := &allocation{
		key:   key,
		flat:  flat,
		start: uintptr(ptr),
		end:   uintptr(ptr) + uintptr(dtype.SizeForElements(numElements)),
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.released {
		return nil, status.Errorf(status.InvalidParameter, "queue already finalized, cannot allocate")
	}
	m.allocations[alloc.start] = alloc
	idx, _ := slices.BinarySearch(m.starts, alloc.start)
	m.starts = slices.Insert(m.starts, idx, alloc.start)
	m.bytesInUse += int(alloc.end - alloc.start)
	if klog.V(1).Enabled() {
		klog.Infof("simplego: allocated %d x %s (%s) at %p, in use %s",
			numElements, dtype, humanize.Bytes(uint64(alloc.end-alloc.start)), ptr, humanize.Bytes(uint64(m.bytesInUse)))
	}
	return ptr, nil
}

// free releases the allocation starting at ptr. Interior pointers are not accepted.
func (m *memory) free(ptr unsafe.Pointer) error {
	if ptr == nil {
		return status.Errorf(status.InvalidParameter, "cannot free nil pointer")
	}
	m.mu.Lock()
	alloc, found := m.allocations[uintptr(ptr)]
	if !found {
		m.mu.Unlock()
		klog.Warningf("simplego: free of pointer %p not allocated by the queue (or already freed)", ptr)
		return status.Errorf(status.NonConformingPointer, "pointer %p was not allocated by the queue, or it was already freed", ptr)
	}
	delete(m.allocations, alloc.start)
	if idx, found := slices.BinarySearch(m.starts, alloc.start); found {
		m.starts = slices.Delete(m.starts, idx, idx+1)
	}
	m.bytesInUse -= int(alloc.end - alloc.start)
	m.mu.Unlock()

	m.getBufferPool(alloc.key).Put(alloc.flat)
	klog.V(1).Infof("simplego: freed %d x %s at %p", alloc.key.length, alloc.key.dtype, ptr)
	return nil
}

// owns reports whether ptr points inside a live allocation.
func (m *memory) owns(ptr unsafe.Pointer) bool {
	if ptr == nil {
		return false
	}
	addr := uintptr(ptr)
	m.mu.Lock()
	defer m.mu.Unlock()
	// Find the last allocation starting at or before addr.
	idx, found := slices.BinarySearch(m.starts, addr)
	if found {
		return true
	}
	if idx == 0 {
		return false
	}
	alloc := m.allocations[m.starts[idx-1]]
	return addr < alloc.end
}

// stats returns the number of live allocations and the bytes they use.
func (m *memory) stats() (numAllocations, bytesInUse int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.allocations), m.bytesInUse
}

// releaseAll drops all allocations: pointers handed out become invalid, and further allocations fail.
func (m *memory) releaseAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.allocations) > 0 {
		klog.V(1).Infof("simplego: releasing %d allocations (%s) still in use", len(m.allocations), humanize.Bytes(uint64(m.bytesInUse)))
	}
	m.allocations = make(map[uintptr]*allocation)
	m.starts = nil
	m.bytesInUse = 0
	m.released = true
	m.bufferPools.Clear()
}
