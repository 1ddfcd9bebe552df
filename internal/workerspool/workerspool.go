// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package workerspool runs data-parallel loops over bounded goroutines.
//
// A range [0, n) is split into contiguous chunks, each chunk is run by a goroutine of an errgroup
// limited to the pool's parallelism. Panics inside a chunk are recovered and returned as errors.
package workerspool

import (
	"fmt"
	"runtime"
	"sync/atomic"

	"github.com/gomlx/exceptions"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// DefaultMinChunkSize is the default minimum number of elements processed by one goroutine.
const DefaultMinChunkSize = 1024

// Pool of workers for data parallel loops.
type Pool struct {
	// maxParallelism is the limit of goroutines running chunks of one loop.
	maxParallelism int

	// minChunkSize is the minimum number of elements of a chunk: loops smaller than that run inline.
	minChunkSize int
}

// New return a new Pool of workers with the default parallelism (runtime.NumCPU()) and DefaultMinChunkSize.
func New() *Pool {
	return &Pool{
		maxParallelism: runtime.NumCPU(),
		minChunkSize:   DefaultMinChunkSize,
	}
}

// IsEnabled returns whether parallelism is enabled (maxParallelism is != 0)
func (w *Pool) IsEnabled() bool {
	return w.maxParallelism != 0
}

// IsUnlimited returns whether parallelism is unlimited (maxParallelism < 0)
func (w *Pool) IsUnlimited() bool {
	return w.maxParallelism < 0
}

// MaxParallelism is the limit of goroutines used by a loop.
// If set to 0 parallelism is disabled, and loops run inline.
// If set to -1 parallelism is unlimited: one goroutine per chunk.
func (w *Pool) MaxParallelism() int {
	return w.maxParallelism
}

// SetMaxParallelism sets the maxParallelism.
//
// You should only change the parallelism before any loops start running. If changed during the execution
// the behavior is undefined.
func (w *Pool) SetMaxParallelism(maxParallelism int) *Pool {
	w.maxParallelism = maxParallelism
	return w
}

// MinChunkSize returns the minimum number of elements per chunk.
func (w *Pool) MinChunkSize() int {
	return w.minChunkSize
}

// SetMinChunkSize sets the minimum number of elements per chunk. Values < 1 are replaced by 1.
func (w *Pool) SetMinChunkSize(minChunkSize int) *Pool {
	w.minChunkSize = max(minChunkSize, 1)
	return w
}

// ChunkSize returns the size of the chunks a loop over n elements is split into.
func (w *Pool) ChunkSize(n int) int {
	minChunk := max(w.minChunkSize, 1)
	if !w.IsEnabled() || n <= minChunk {
		return max(n, 1)
	}
	if w.IsUnlimited() {
		return minChunk
	}
	perWorker := (n + w.maxParallelism - 1) / w.maxParallelism
	return max(perWorker, minChunk)
}

// ParallelFor calls body(start, end) for contiguous chunks covering [0, n), possibly in parallel,
// and returns when all chunks finished.
//
// The chunks never overlap, and every index is covered exactly once. If a chunk panics, the panic is
// converted to an error, and the first such error is returned. Chunks not yet started when a panic
// happens are skipped.
func (w *Pool) ParallelFor(n int, body func(start, end int)) error {
	if n <= 0 {
		return nil
	}
	chunkSize := w.ChunkSize(n)
	if chunkSize >= n {
		return runChunk(body, 0, n)
	}

	var g errgroup.Group
	if !w.IsUnlimited() {
		g.SetLimit(w.maxParallelism)
	}
	var failed atomic.Bool
	for start := 0; start < n && !failed.Load(); start += chunkSize {
		end := min(start+chunkSize, n)
		g.Go(func() error {
			err := runChunk(body, start, end)
			if err != nil {
				failed.Store(true)
			}
			return err
		})
	}
	return g.Wait()
}

// runChunk runs body for [start, end), converting a panic to an error.
func runChunk(body func(start, end int), start, end int) (err error) {
	exception := exceptions.Try(func() { body(start, end) })
	if exception == nil {
		return nil
	}
	if e, ok := exception.(error); ok {
		// Runtime panics come already wrapped by exceptions.Try: keep only the original error.
		return errors.Wrapf(errors.Cause(e), "panic in chunk [%d, %d)", start, end)
	}
	return errors.Errorf("panic in chunk [%d, %d): %s", start, end, fmt.Sprint(exception))
}
