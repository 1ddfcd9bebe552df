// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package xsync implements synchronization primitives missing from the standard library.
package xsync

import (
	"context"
	"sync"

	"github.com/pkg/errors"
)

// DynamicWaitGroup is a WaitGroup-like synchronization primitive that allows the count
// to be changed (new values added) while someone is waiting for it.
//
// Waiters block on a channel that is closed whenever the counter reaches zero, and a new channel
// is created when the counter becomes positive again.
// The zero value is ready to use.
type DynamicWaitGroup struct {
	mu    sync.Mutex
	count int64
	zero  chan struct{} // Closed when count reaches 0, replaced when it becomes positive again.
}

// NewDynamicWaitGroup creates a new DynamicWaitGroup.
func NewDynamicWaitGroup() *DynamicWaitGroup {
	return &DynamicWaitGroup{}
}

// Add changes the DynamicWaitGroup counter by the given delta.
// If the counter becomes zero, it releases all waiting goroutines.
// If the counter would go negative, it panics.
func (wg *DynamicWaitGroup) Add(delta int) {
	wg.mu.Lock()
	defer wg.mu.Unlock()
	before := wg.count
	if before+int64(delta) < 0 {
		// Standard WaitGroup panics if the counter goes negative.
		panic(errors.Errorf("DynamicWaitGroup: negative counter"))
	}
	wg.count += int64(delta)
	switch {
	case before == 0 && wg.count > 0:
		wg.zero = make(chan struct{})
	case before > 0 && wg.count == 0:
		close(wg.zero)
	}
}

// Done decrements the DynamicWaitGroup counter by one.
// This is a convenience wrapper around Add(-1).
func (wg *DynamicWaitGroup) Done() {
	wg.Add(-1)
}

// Count returns the current value of the counter.
func (wg *DynamicWaitGroup) Count() int {
	wg.mu.Lock()
	defer wg.mu.Unlock()
	return int(wg.count)
}

// Wait blocks until the DynamicWaitGroup counter is zero.
func (wg *DynamicWaitGroup) Wait() {
	_ = wg.WaitContext(context.Background())
}

// WaitContext blocks until the DynamicWaitGroup counter is zero or until ctx is done,
// in which case it returns ctx.Err().
func (wg *DynamicWaitGroup) WaitContext(ctx context.Context) error {
	for {
		wg.mu.Lock()
		if wg.count == 0 {
			wg.mu.Unlock()
			return nil
		}
		zero := wg.zero
		wg.mu.Unlock()
		select {
		case <-zero:
			// Loop: the counter may have been raised again after reaching zero.
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
