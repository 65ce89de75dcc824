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

package ptr

import (
	"runtime"

	"github.com/m3db/m3ptr/checked"
)

// control is the state shared by every handle to one resource: the strong
// count, the resource and its deleter.
type control[T any] struct {
	checked.RefCount

	resource *T
	deleter  Deleter[T]
}

func newControl[T any](p *T, d Deleter[T]) *control[T] {
	c := &control[T]{resource: p, deleter: d}
	c.SetFinalizer(c)
	c.IncRef()
	return c
}

// Finalize is called exactly once, when the strong count drops to zero.
func (c *control[T]) Finalize() {
	p := c.resource
	c.resource = nil
	c.deleter.Delete(p)
}

// Shared is a handle that owns a resource jointly with its clones. The
// strong count is safe for concurrent use, the resource itself is not
// synchronized. A single Shared handle must not be used by more than one
// goroutine at a time; hand each goroutine its own Clone instead.
type Shared[T any] struct {
	noCopy noCopy

	ctrl    *control[T]
	tracked bool
}

// NewShared returns a handle owning p with a strong count of one. A nil p
// returns a null handle that owns nothing.
func NewShared[T any](p *T, opts ...Option[T]) *Shared[T] {
	h := &Shared[T]{}
	if p == nil {
		return h
	}
	o := newOptions(opts)
	h.bind(newControl(p, o.deleter))
	return h
}

// Clone returns a new handle co-owning the resource.
func (h *Shared[T]) Clone() *Shared[T] {
	clone := &Shared[T]{}
	if h.ctrl == nil {
		return clone
	}
	h.ctrl.IncRef()
	clone.bind(h.ctrl)
	return clone
}

// Assign makes h co-own the resource of other, releasing the resource h held
// before. It is a no-op when both already share a resource, which includes
// assigning a handle to itself.
func (h *Shared[T]) Assign(other *Shared[T]) {
	if h.ctrl == other.ctrl {
		return
	}
	prev := h.ctrl
	if other.ctrl != nil {
		other.ctrl.IncRef()
	}
	h.bind(other.ctrl)
	if prev != nil {
		prev.DecRef()
	}
}

// Reset releases the resource held by h and takes ownership of p. A nil p
// leaves h null.
func (h *Shared[T]) Reset(p *T, opts ...Option[T]) {
	if h.ctrl != nil && h.ctrl.resource == p {
		return
	}
	prev := h.ctrl
	h.bind(nil)
	if p != nil {
		o := newOptions(opts)
		h.bind(newControl(p, o.deleter))
	}
	if prev != nil {
		prev.DecRef()
	}
}

// Close releases the handle's share of the resource, deleting the resource
// if it was the last one. The handle is null afterwards, closing it again is
// a no-op.
func (h *Shared[T]) Close() {
	c := h.ctrl
	h.ctrl = nil
	if c != nil {
		c.DecRef()
	}
}

// Get returns the resource. Dereferencing a null handle is a contract
// violation raised through checked.Panic.
func (h *Shared[T]) Get() *T {
	if h.ctrl == nil {
		checked.Panic(ErrNilResource)
		return nil
	}
	return h.ctrl.resource
}

// Valid returns whether the handle owns a resource.
func (h *Shared[T]) Valid() bool {
	return h.ctrl != nil
}

// UseCount returns the strong count of the resource, zero for a null
// handle. The value may be stale as soon as it is returned.
func (h *Shared[T]) UseCount() int {
	if h.ctrl == nil {
		return 0
	}
	return h.ctrl.NumRef()
}

// Owns returns whether h and other co-own the same resource.
func (h *Shared[T]) Owns(other *Shared[T]) bool {
	return h.ctrl != nil && h.ctrl == other.ctrl
}

// Weak returns a weak handle observing the resource of h.
func (h *Shared[T]) Weak() *Weak[T] {
	return &Weak[T]{ctrl: h.ctrl}
}

func (h *Shared[T]) bind(c *control[T]) {
	h.ctrl = c
	if c == nil || h.tracked || !checked.LeakDetectionEnabled() {
		return
	}

	h.tracked = true
	name := typeName[T]()
	runtime.SetFinalizer(h, func(h *Shared[T]) {
		if h.ctrl != nil {
			checked.RecordLeak(name)
		}
	})
}
