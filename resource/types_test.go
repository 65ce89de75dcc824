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

package resource

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type testCloser struct {
	closed int
	err    error
}

func (c *testCloser) Close() error {
	c.closed++
	return c.err
}

type testSimpleCloser struct {
	closed int
}

func (c *testSimpleCloser) Close() {
	c.closed++
}

func TestTeardown(t *testing.T) {
	finalized := 0
	ok, err := Teardown(FinalizerFn(func() { finalized++ }))
	assert.True(t, ok)
	assert.NoError(t, err)
	assert.Equal(t, 1, finalized)

	errClose := errors.New("close failed")
	closer := &testCloser{err: errClose}
	ok, err = Teardown(closer)
	assert.True(t, ok)
	assert.Equal(t, errClose, err)
	assert.Equal(t, 1, closer.closed)

	simple := &testSimpleCloser{}
	ok, err = Teardown(simple)
	assert.True(t, ok)
	assert.NoError(t, err)
	assert.Equal(t, 1, simple.closed)

	ok, err = Teardown(&struct{ x int }{})
	assert.False(t, ok)
	assert.NoError(t, err)
}
