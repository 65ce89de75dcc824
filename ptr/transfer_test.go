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
	"testing"

	"github.com/m3db/m3ptr/checked"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"
)

type testResource struct {
	id        int
	finalized atomic.Int32
}

func (r *testResource) Finalize() {
	r.finalized.Inc()
}

func capturePanics(t *testing.T) *[]error {
	var errs []error
	checked.SetPanicFn(func(e error) {
		errs = append(errs, e)
	})
	t.Cleanup(checked.ResetPanicFn)
	return &errs
}

func TestTransferFromMovesOwnership(t *testing.T) {
	r := &testResource{id: 1}
	a := NewTransfer(r)
	require.True(t, a.Valid())

	b := TransferFrom(a)
	assert.False(t, a.Valid())
	assert.True(t, b.Valid())
	assert.Equal(t, r, b.Get())

	assert.PanicsWithValue(t, ErrUseAfterTransfer, func() {
		a.Get()
	})

	a.Close()
	assert.Equal(t, int32(0), r.finalized.Load())

	b.Close()
	b.Close()
	assert.Equal(t, int32(1), r.finalized.Load())
}

func TestTransferAssignDeletesPrevious(t *testing.T) {
	var (
		r1  = &testResource{id: 1}
		r2  = &testResource{id: 2}
		src = NewTransfer(r1)
		dst = NewTransfer(r2)
	)

	dst.Assign(src)
	assert.Equal(t, int32(1), r2.finalized.Load())
	assert.Equal(t, int32(0), r1.finalized.Load())
	assert.False(t, src.Valid())
	assert.Equal(t, r1, dst.Get())

	dst.Assign(dst)
	assert.Equal(t, r1, dst.Get())
	assert.Equal(t, int32(0), r1.finalized.Load())

	dst.Close()
	assert.Equal(t, int32(1), r1.finalized.Load())
}

func TestTransferUseAfterTransferIsReported(t *testing.T) {
	errs := capturePanics(t)

	a := NewTransfer(&testResource{})
	b := TransferFrom(a)
	defer b.Close()

	assert.Nil(t, a.Get())
	require.Len(t, *errs, 1)
	assert.Equal(t, ErrUseAfterTransfer, (*errs)[0])
}

func TestTransferCustomDeleter(t *testing.T) {
	deleted := 0
	r := &testResource{}
	a := NewTransfer(r, WithDeleterFn(func(p *testResource) {
		assert.Equal(t, r, p)
		deleted++
	}))

	b := TransferFrom(a)
	c := NewTransfer[testResource](nil)
	c.Assign(b)
	c.Close()

	assert.Equal(t, 1, deleted)
	assert.Equal(t, int32(0), r.finalized.Load())
}
