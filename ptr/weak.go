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

// Weak observes the resource of a Shared handle without owning it, so it
// never keeps the resource alive. It is used for the back reference of a
// pair of resources that point at each other. The zero value observes
// nothing and is expired.
type Weak[T any] struct {
	ctrl *control[T]
}

// NewWeak returns a weak handle observing the resource of h.
func NewWeak[T any](h *Shared[T]) *Weak[T] {
	return h.Weak()
}

// Lock promotes the weak handle to a new Shared handle co-owning the
// resource. It returns ErrExpired when the resource was already released.
func (w *Weak[T]) Lock() (*Shared[T], error) {
	if w == nil || w.ctrl == nil || !w.ctrl.TryIncRef() {
		return nil, ErrExpired
	}
	h := &Shared[T]{}
	h.bind(w.ctrl)
	return h, nil
}

// Expired returns whether the observed resource was released.
func (w *Weak[T]) Expired() bool {
	return w.UseCount() == 0
}

// UseCount returns the strong count of the observed resource.
func (w *Weak[T]) UseCount() int {
	if w == nil || w.ctrl == nil {
		return 0
	}
	return w.ctrl.NumRef()
}

// Reset stops observing the resource.
func (w *Weak[T]) Reset() {
	w.ctrl = nil
}
