// Copyright (c) 2018 Uber Technologies, Inc.
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package checked

import (
	"errors"
	"unsafe"

	"go.uber.org/atomic"
)

var (
	// ErrInvalidRefCount is raised when a count is decremented below zero.
	ErrInvalidRefCount = errors.New("invalid ref count")

	// ErrIncRefAfterFree is raised when a finalized count is incremented.
	ErrIncRefAfterFree = errors.New("inc ref after free")

	// ErrDoubleFinalize is raised when a count is finalized a second time.
	ErrDoubleFinalize = errors.New("double finalize")
)

var (
	numLive      = atomic.NewInt64(0)
	numFinalized = atomic.NewInt64(0)
)

// RefCount is an embeddable checked reference count. The zero value is a
// count of zero that has not been taken yet; the first IncRef takes it.
// Once the count drops back to zero it is finalized and cannot be taken
// again.
type RefCount struct {
	ref       atomic.Int32
	finalized atomic.Bool
	finalizer atomic.UnsafePointer
}

// IncRef increments the reference count to this entity.
func (c *RefCount) IncRef() int {
	n := int(c.ref.Inc())
	tracebackEvent(c, n, incRefEvent)
	if c.finalized.Load() {
		panicRef(c, ErrIncRefAfterFree)
		return n
	}
	if n == 1 {
		numLive.Inc()
	}
	return n
}

// TryIncRef increments the reference count unless it is zero.
func (c *RefCount) TryIncRef() bool {
	for {
		n := c.ref.Load()
		if n <= 0 {
			return false
		}
		if c.ref.CompareAndSwap(n, n+1) {
			tracebackEvent(c, int(n+1), tryIncRefEvent)
			return true
		}
	}
}

// DecRef decrements the reference count to this entity.
func (c *RefCount) DecRef() int {
	n := int(c.ref.Dec())
	tracebackEvent(c, n, decRefEvent)
	if n < 0 {
		panicRef(c, ErrInvalidRefCount)
		return n
	}
	if n == 0 {
		c.finalize()
	}
	return n
}

// NumRef returns the reference count to this entity.
func (c *RefCount) NumRef() int {
	return int(c.ref.Load())
}

// Finalized returns whether the count has dropped to zero.
func (c *RefCount) Finalized() bool {
	return c.finalized.Load()
}

// Finalizer returns the finalizer if any or nil otherwise.
func (c *RefCount) Finalizer() Finalizer {
	p := c.finalizer.Load()
	if p == nil {
		return nil
	}
	return *(*Finalizer)(p)
}

// SetFinalizer sets the finalizer.
func (c *RefCount) SetFinalizer(f Finalizer) {
	c.finalizer.Store(unsafe.Pointer(&f))
}

func (c *RefCount) finalize() {
	if !c.finalized.CompareAndSwap(false, true) {
		panicRef(c, ErrDoubleFinalize)
		return
	}
	tracebackEvent(c, 0, finalizeEvent)
	numLive.Dec()
	numFinalized.Inc()

	if f := c.Finalizer(); f != nil {
		f.Finalize()
	}
}

// Stats returns the process wide reference count statistics.
func Stats() RefStats {
	return RefStats{
		Live:      numLive.Load(),
		Finalized: numFinalized.Load(),
		Leaked:    numLeaked.Load(),
	}
}
