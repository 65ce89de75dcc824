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

// Transfer is an exclusive handle whose ownership moves to whichever handle
// it is transferred into, leaving the source empty. It is not safe for
// concurrent use.
type Transfer[T any] struct {
	noCopy noCopy

	resource *T
	deleter  Deleter[T]
}

// NewTransfer returns a handle owning p.
func NewTransfer[T any](p *T, opts ...Option[T]) *Transfer[T] {
	o := newOptions(opts)
	return &Transfer[T]{resource: p, deleter: o.deleter}
}

// TransferFrom returns a new handle that takes the resource owned by src.
// src is left empty.
func TransferFrom[T any](src *Transfer[T]) *Transfer[T] {
	t := &Transfer[T]{resource: src.resource, deleter: src.deleter}
	src.resource = nil
	return t
}

// Assign deletes the resource held by t, if any, and takes the resource
// owned by src, leaving src empty. Assigning a handle to itself is a no-op.
func (t *Transfer[T]) Assign(src *Transfer[T]) {
	if t == src {
		return
	}
	t.Close()
	t.resource, t.deleter = src.resource, src.deleter
	src.resource = nil
}

// Get returns the owned resource. Dereferencing a handle whose resource was
// transferred away is a contract violation raised through checked.Panic.
func (t *Transfer[T]) Get() *T {
	if t.resource == nil {
		checked.Panic(ErrUseAfterTransfer)
	}
	return t.resource
}

// Valid returns whether the handle owns a resource.
func (t *Transfer[T]) Valid() bool {
	return t.resource != nil
}

// Close deletes the owned resource, if any.
func (t *Transfer[T]) Close() {
	if t.resource == nil {
		return
	}
	p := t.resource
	t.resource = nil
	t.deleter.Delete(p)
}
