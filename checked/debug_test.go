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

package checked

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTracebackIncRefAfterFree(t *testing.T) {
	SetTraceback(true)
	defer SetTraceback(false)

	elem := &struct {
		RefCount
		x int
	}{
		x: 42,
	}

	finalized := 0
	elem.SetFinalizer(FinalizerFn(func() {
		finalized++
	}))

	elem.IncRef()
	assert.Equal(t, 0, finalized)

	elem.DecRef()
	assert.Equal(t, 1, finalized)

	var err error
	SetPanicFn(func(e error) {
		err = e
	})
	defer ResetPanicFn()

	elem.IncRef()

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrIncRefAfterFree))

	str := err.Error()
	assertLineContains(t, str, 0, "inc ref after free: ref=1")
	assertLineContains(t, str, 1, "events:")
	assertLineContains(t, str, 2, "IncRef, ref=1, unixnanos=")
	assertLineContains(t, str, 3, "checked.(*RefCount).IncRef")
	assertLineContains(t, str, 4, "checked/ref.go")
	assert.True(t, strings.Contains(str, "Finalize, ref=0, unixnanos="))
	assert.True(t, strings.Contains(str, "DecRef, ref=0, unixnanos="))
	assert.True(t, strings.Contains(str, "checked.(*RefCount).DecRef"))
}

func TestNoTracebackWhenDisabled(t *testing.T) {
	var c RefCount

	var err error
	SetPanicFn(func(e error) {
		err = e
	})
	defer ResetPanicFn()

	c.DecRef()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidRefCount))
	assert.Equal(t, "invalid ref count: ref=-1", err.Error())
}

func TestRecordLeaks(t *testing.T) {
	ResetLeaks()
	defer ResetLeaks()

	RecordLeak("*ptr.conn")
	RecordLeak("*ptr.conn")
	RecordLeak("*ptr.node")

	assert.Equal(t, map[string]uint64{
		"*ptr.conn": 2,
		"*ptr.node": 1,
	}, DumpLeaks())
	assert.Equal(t, int64(3), Stats().Leaked)

	ResetLeaks()
	assert.Empty(t, DumpLeaks())
	assert.Equal(t, int64(0), Stats().Leaked)
}

func TestLeakDetectionFlag(t *testing.T) {
	assert.False(t, LeakDetectionEnabled())
	SetLeakDetectionFlag(true)
	assert.True(t, LeakDetectionEnabled())
	SetLeakDetectionFlag(false)
	assert.False(t, LeakDetectionEnabled())
}

func assertLineContains(
	t *testing.T,
	str string,
	line int,
	substr string,
) {
	lines := strings.Split(str, "\n")
	require.False(t, line < 0 || line >= len(lines))
	assert.True(t, strings.Contains(lines[line], substr),
		"line %d: %q does not contain %q", line, lines[line], substr)
}
