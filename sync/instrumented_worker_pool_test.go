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

package xsync

import (
	"sync"
	"testing"
	"time"

	"github.com/m3db/m3ptr/instrument"

	"github.com/fortytw2/leaktest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uber-go/tally/v4"
	"go.uber.org/zap"
)

type workerMetrics struct {
	idle, busy, waiting, total  float64
	timeouts, unavailable, runs int64
}

func snapshotWorkerMetrics(s tally.TestScope) workerMetrics {
	var (
		snap     = s.Snapshot()
		gauges   = snap.Gauges()
		counters = snap.Counters()
		m        workerMetrics
	)
	gauge := func(name string) float64 {
		if g, ok := gauges["workers."+name+"+"]; ok {
			return g.Value()
		}
		return -1
	}
	counter := func(name string) int64 {
		if c, ok := counters["workers."+name+"+"]; ok {
			return c.Value()
		}
		return 0
	}
	m.idle, m.busy, m.waiting, m.total = gauge("idle"), gauge("busy"), gauge("waiting"), gauge("total")
	m.timeouts, m.unavailable, m.runs = counter("timeouts"), counter("unavailable"), counter("run")
	return m
}

func requireWorkerMetrics(t *testing.T, s tally.TestScope, expected workerMetrics) {
	require.Eventually(t, func() bool {
		return snapshotWorkerMetrics(s) == expected
	}, 2*time.Second, 10*time.Millisecond, "last observed: %+v", snapshotWorkerMetrics(s))
}

func newTestInstrumentedPool(size int) (WorkerPool, tally.TestScope) {
	scope := tally.NewTestScope("", nil)
	opts := instrument.NewOptions().
		SetLogger(zap.NewNop()).
		SetMetricsScope(scope).
		SetReportInterval(20 * time.Millisecond)
	return NewInstrumentedWorkerPool(size, opts), scope
}

func TestInstrumentedWorkerPoolClose(t *testing.T) {
	defer leaktest.CheckTimeout(t, time.Second)()

	p, _ := newTestInstrumentedPool(4)
	p.Init()
	assert.NoError(t, p.Close())
	assert.Equal(t, errWorkerPoolClosed, p.Close())
}

func TestInstrumentedWorkerPool(t *testing.T) {
	defer leaktest.CheckTimeout(t, time.Second)()

	const size = 4
	p, scope := newTestInstrumentedPool(size)
	p.Init()
	defer func() {
		assert.NoError(t, p.Close())
	}()

	var (
		ready    sync.WaitGroup
		complete sync.WaitGroup
		release  = make(chan struct{})
	)
	for i := 0; i < size; i++ {
		ready.Add(1)
		complete.Add(1)
		p.Go(func() {
			ready.Done()
			<-release
			complete.Done()
		})
	}
	ready.Wait()

	requireWorkerMetrics(t, scope, workerMetrics{busy: size, total: size})

	// Every worker is busy so this one waits.
	complete.Add(1)
	go p.Go(func() { complete.Done() })
	requireWorkerMetrics(t, scope, workerMetrics{busy: size, waiting: 1, total: size})

	assert.False(t, p.GoWithTimeout(func() {}, 20*time.Millisecond))
	assert.False(t, p.GoIfAvailable(func() {}))
	requireWorkerMetrics(t, scope, workerMetrics{
		busy:        size,
		waiting:     1,
		total:       size,
		timeouts:    1,
		unavailable: 1,
	})

	close(release)
	complete.Wait()

	requireWorkerMetrics(t, scope, workerMetrics{
		idle:        size,
		total:       size,
		timeouts:    1,
		unavailable: 1,
		runs:        size + 1,
	})
}
