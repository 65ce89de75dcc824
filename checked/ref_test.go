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

package checked

import (
	"sync"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
)

func TestRefCountFinalizesOnceAtZero(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := NewMockFinalizer(ctrl)
	f.EXPECT().Finalize().Times(1)

	var c RefCount
	c.SetFinalizer(f)
	assert.Equal(t, f, c.Finalizer())

	assert.Equal(t, 1, c.IncRef())
	assert.Equal(t, 2, c.IncRef())
	assert.Equal(t, 3, c.IncRef())
	assert.Equal(t, 2, c.DecRef())
	assert.Equal(t, 1, c.DecRef())
	assert.False(t, c.Finalized())

	assert.Equal(t, 0, c.DecRef())
	assert.True(t, c.Finalized())
	assert.Equal(t, 0, c.NumRef())
}

func TestRefCountWithoutFinalizer(t *testing.T) {
	var c RefCount
	assert.Nil(t, c.Finalizer())

	c.IncRef()
	assert.Equal(t, 0, c.DecRef())
	assert.True(t, c.Finalized())
}

func TestRefCountTryIncRef(t *testing.T) {
	var c RefCount
	assert.False(t, c.TryIncRef())

	c.IncRef()
	assert.True(t, c.TryIncRef())
	assert.Equal(t, 2, c.NumRef())

	c.DecRef()
	c.DecRef()
	assert.True(t, c.Finalized())
	assert.False(t, c.TryIncRef())
	assert.Equal(t, 0, c.NumRef())
}

func TestRefCountDecRefBelowZeroPanics(t *testing.T) {
	var c RefCount
	assert.Panics(t, func() {
		c.DecRef()
	})
}

func TestRefCountIncRefAfterFreePanics(t *testing.T) {
	var c RefCount
	c.IncRef()
	c.DecRef()
	assert.Panics(t, func() {
		c.IncRef()
	})
}

func TestRefCountConcurrentIncDec(t *testing.T) {
	var (
		c          RefCount
		finalized  int
		wg         sync.WaitGroup
		numWorkers = 8
		numIters   = 10000
	)
	c.SetFinalizer(FinalizerFn(func() {
		finalized++
	}))
	c.IncRef()

	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < numIters; j++ {
				c.IncRef()
				if j%2 == 0 {
					assert.True(t, c.TryIncRef())
					c.DecRef()
				}
				c.DecRef()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, c.NumRef())
	assert.Equal(t, 0, finalized)

	c.DecRef()
	assert.Equal(t, 1, finalized)
}

func TestStatsTrackLiveAndFinalized(t *testing.T) {
	before := Stats()

	var c RefCount
	c.IncRef()
	c.IncRef()
	assert.Equal(t, before.Live+1, Stats().Live)

	c.DecRef()
	c.DecRef()
	after := Stats()
	assert.Equal(t, before.Live, after.Live)
	assert.Equal(t, before.Finalized+1, after.Finalized)
}
