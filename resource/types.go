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

// Package resource describes the teardown hooks a managed resource may
// implement.
package resource

// Finalizer finalizes a resource.
type Finalizer interface {
	Finalize()
}

// FinalizerFn is a function literal that is a finalizer.
type FinalizerFn func()

// Finalize will call the function literal as a finalizer.
func (fn FinalizerFn) Finalize() {
	fn()
}

// Closer is a resource that can be closed and may fail to close.
type Closer interface {
	Close() error
}

// SimpleCloser is a resource that can be closed and never fails to close.
type SimpleCloser interface {
	Close()
}

// Teardown releases v using the first hook it implements, in the order
// Finalizer, Closer, SimpleCloser. It returns whether a hook was found and
// the error returned by Close, if any.
func Teardown(v interface{}) (bool, error) {
	switch r := v.(type) {
	case Finalizer:
		r.Finalize()
		return true, nil
	case Closer:
		return true, r.Close()
	case SimpleCloser:
		r.Close()
		return true, nil
	}
	return false, nil
}
