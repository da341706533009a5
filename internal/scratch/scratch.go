// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package scratch provides the renderer's reusable transient byte buffer.
package scratch

import "sync"

// Buffer is a single growable backing store lent out for transient
// streaming work.
//
// Acquire returns a slice of exactly n bytes. The slice stays valid until
// the next Acquire, which may reuse or replace the backing store; callers
// must not hold it across acquisitions.
//
// Thread safety: All methods are safe for concurrent use, but a slice
// handed out by Acquire is not protected.
type Buffer struct {
	mu    sync.Mutex
	buf   []byte
	stats Stats
}

// Stats reports buffer usage.
type Stats struct {
	// Acquires counts Acquire calls.
	Acquires int

	// Grows counts reallocations of the backing store.
	Grows int

	// Capacity is the current backing store size in bytes.
	Capacity int
}

// New creates a buffer with an initial capacity.
func New(capacity int) *Buffer {
	return &Buffer{
		buf:   make([]byte, max(capacity, 0)),
		stats: Stats{Capacity: max(capacity, 0)},
	}
}

// Acquire returns n zeroed bytes from the backing store, growing it when
// it is too small. Non-positive n returns an empty slice.
func (b *Buffer) Acquire(n int) []byte {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.stats.Acquires++
	if n <= 0 {
		return b.buf[:0:0]
	}
	if n > len(b.buf) {
		b.buf = make([]byte, max(n, 2*len(b.buf)))
		b.stats.Grows++
		b.stats.Capacity = len(b.buf)
	}
	out := b.buf[:n:n]
	clear(out)
	return out
}

// Stats returns a snapshot of the usage counters.
func (b *Buffer) Stats() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stats
}

// Reset drops the backing store.
func (b *Buffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf = nil
	b.stats.Capacity = 0
}
