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
	"github.com/m3db/m3ptr/pool"
	"github.com/m3db/m3ptr/resource"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Deleter tears down a resource once its owners are gone.
type Deleter[T any] interface {
	Delete(p *T)
}

// DeleterFn is a function literal that is a deleter.
type DeleterFn[T any] func(p *T)

// Delete will call the function literal as a deleter.
func (fn DeleterFn[T]) Delete(p *T) {
	fn(p)
}

// DeleteErrorFn is called with the error of a failed teardown.
type DeleteErrorFn func(err error)

var deleteErrorFn DeleteErrorFn = logDeleteError

// SetDeleteErrorFn sets the function called when a deleter fails to tear
// down a resource.
func SetDeleteErrorFn(fn DeleteErrorFn) {
	deleteErrorFn = fn
}

// ResetDeleteErrorFn resets the teardown error function to log through the
// global zap logger.
func ResetDeleteErrorFn() {
	deleteErrorFn = logDeleteError
}

func logDeleteError(err error) {
	zap.L().Error("resource teardown failed", zap.Error(err))
}

type defaultDeleter[T any] struct{}

// NewDefaultDeleter returns the default destruction policy. It tears the
// resource down with resource.Teardown and otherwise leaves it to the
// garbage collector.
func NewDefaultDeleter[T any]() Deleter[T] {
	return defaultDeleter[T]{}
}

func (defaultDeleter[T]) Delete(p *T) {
	if p == nil {
		return
	}
	if _, err := resource.Teardown(p); err != nil {
		deleteErrorFn(err)
	}
}

type arrayDeleter[E any] struct{}

// NewArrayDeleter returns a destruction policy for block allocated arrays
// that tears down every element, then drops the elements.
func NewArrayDeleter[E any]() Deleter[[]E] {
	return arrayDeleter[E]{}
}

func (arrayDeleter[E]) Delete(p *[]E) {
	if p == nil {
		return
	}

	var multiErr error
	elems := *p
	for i := range elems {
		found, err := resource.Teardown(&elems[i])
		if !found {
			_, err = resource.Teardown(elems[i])
		}
		multiErr = multierr.Append(multiErr, err)
	}
	*p = nil

	if multiErr != nil {
		deleteErrorFn(multiErr)
	}
}

type poolDeleter[T any] struct {
	pool  pool.ObjectPool[T]
	reset func(p *T)
}

// NewPoolDeleter returns a destruction policy for resources allocated from
// an object pool: the resource is optionally reset and returned to the pool.
func NewPoolDeleter[T any](p pool.ObjectPool[T], reset func(p *T)) Deleter[T] {
	return poolDeleter[T]{pool: p, reset: reset}
}

func (d poolDeleter[T]) Delete(p *T) {
	if p == nil {
		return
	}
	if d.reset != nil {
		d.reset(p)
	}
	d.pool.Put(p)
}
