// Copyright (c) 2016 Uber Technologies, Inc.
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

// Package checked provides reference counts that check their own usage.
package checked

// Finalizer finalizes a checked resource.
type Finalizer interface {
	Finalize()
}

// FinalizerFn is a function literal that is a finalizer.
type FinalizerFn func()

// Finalize will call the function literal as a finalizer.
func (fn FinalizerFn) Finalize() {
	fn()
}

// Ref is an entity that checks reference counts.
type Ref interface {
	// IncRef increments the reference count to this entity and returns
	// the new count.
	IncRef() int

	// TryIncRef increments the reference count only if it has not yet
	// dropped to zero, returning whether a reference was taken.
	TryIncRef() bool

	// DecRef decrements the reference count to this entity and returns
	// the new count, finalizing the entity when it reaches zero.
	DecRef() int

	// NumRef returns the reference count to this entity.
	NumRef() int

	// Finalized returns whether the entity has been finalized.
	Finalized() bool

	// Finalizer returns the finalizer if any or nil otherwise.
	Finalizer() Finalizer

	// SetFinalizer sets the finalizer.
	SetFinalizer(f Finalizer)
}

// RefStats is a point in time view of the process wide reference counts.
type RefStats struct {
	// Live is the number of counts that were taken and not yet finalized.
	Live int64

	// Finalized is the number of counts that reached zero.
	Finalized int64

	// Leaked is the number of handles collected while still holding a ref.
	Leaked int64
}
