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

// Package ptr provides ownership handles for heap allocated resources.
//
// Transfer and Unique hold a resource alone. Shared holds it jointly with
// its clones and deletes it when the last clone is closed. Weak observes a
// Shared binding without owning it and must be promoted with Lock before
// the resource can be used. Resources are torn down by a Deleter, which
// defaults to calling Finalize or Close on the resource when it implements
// one of them.
package ptr

import (
	"errors"
	"fmt"
)

var (
	// ErrUseAfterTransfer is raised when an exclusive handle whose
	// ownership moved elsewhere is dereferenced.
	ErrUseAfterTransfer = errors.New("use of handle after ownership transfer")

	// ErrNilResource is raised when a handle that holds no resource is
	// dereferenced.
	ErrNilResource = errors.New("dereference of nil resource")

	// ErrExpired is returned when promoting a weak handle whose resource
	// has already been released.
	ErrExpired = errors.New("weak handle expired")
)

// Option configures a handle.
type Option[T any] func(*options[T])

type options[T any] struct {
	deleter Deleter[T]
}

// WithDeleter sets the destruction policy of a handle.
func WithDeleter[T any](d Deleter[T]) Option[T] {
	return func(o *options[T]) {
		o.deleter = d
	}
}

// WithDeleterFn sets a function literal as the destruction policy of a handle.
func WithDeleterFn[T any](fn func(p *T)) Option[T] {
	return WithDeleter[T](DeleterFn[T](fn))
}

func newOptions[T any](opts []Option[T]) options[T] {
	o := options[T]{deleter: NewDefaultDeleter[T]()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.deleter == nil {
		o.deleter = NewDefaultDeleter[T]()
	}
	return o
}

func typeName[T any]() string {
	return fmt.Sprintf("%T", (*T)(nil))
}

// noCopy may be embedded into structs which must not be copied after first
// use. go vet's copylocks check reports any copy by value.
type noCopy struct{}

// Lock is a no-op used by go vet.
func (*noCopy) Lock() {}

// Unlock is a no-op used by go vet.
func (*noCopy) Unlock() {}
