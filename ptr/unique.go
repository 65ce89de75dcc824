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
	"github.com/m3db/m3ptr/checked"
)

// Unique is an exclusive handle that cannot be copied. Ownership only moves
// through Move, Detach or Share. It is not safe for concurrent use.
type Unique[T any] struct {
	noCopy noCopy

	resource *T
	deleter  Deleter[T]
}

// NewUnique returns a handle owning p.
func NewUnique[T any](p *T, opts ...Option[T]) *Unique[T] {
	o := newOptions(opts)
	return &Unique[T]{resource: p, deleter: o.deleter}
}

// Get returns the owned resource.
func (u *Unique[T]) Get() *T {
	if u.resource == nil {
		checked.Panic(ErrNilResource)
	}
	return u.resource
}

// Valid returns whether the handle owns a resource.
func (u *Unique[T]) Valid() bool {
	return u.resource != nil
}

// Move returns a new handle owning the resource and empties u.
func (u *Unique[T]) Move() *Unique[T] {
	moved := &Unique[T]{resource: u.resource, deleter: u.deleter}
	u.resource = nil
	return moved
}

// Detach gives up ownership of the resource without deleting it.
func (u *Unique[T]) Detach() *T {
	p := u.resource
	u.resource = nil
	return p
}

// Reset deletes the owned resource, if any, and takes ownership of p.
func (u *Unique[T]) Reset(p *T) {
	if p == u.resource {
		return
	}
	u.Close()
	u.resource = p
}

// Share converts the handle into a shared handle with the same deleter,
// emptying u.
func (u *Unique[T]) Share() *Shared[T] {
	p := u.Detach()
	return NewShared(p, WithDeleter(u.deleter))
}

// Close deletes the owned resource, if any.
func (u *Unique[T]) Close() {
	if u.resource == nil {
		return
	}
	p := u.resource
	u.resource = nil
	u.deleter.Delete(p)
}
