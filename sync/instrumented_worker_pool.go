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
	"time"

	"github.com/m3db/m3ptr/instrument"

	"github.com/uber-go/tally/v4"
	"go.uber.org/atomic"
)

type instrumentedWorkerPool struct {
	pool    WorkerPool
	closeCh chan struct{}
	doneCh  chan struct{}
	size    int
	metrics workerPoolMetrics
	opts    instrument.Options
}

// NewInstrumentedWorkerPool creates a worker pool that reports the number of
// idle, busy and waiting workers.
func NewInstrumentedWorkerPool(size int, opts instrument.Options) WorkerPool {
	return &instrumentedWorkerPool{
		pool:    NewWorkerPool(size),
		closeCh: make(chan struct{}),
		doneCh:  make(chan struct{}),
		size:    size,
		metrics: newWorkerPoolMetrics(size, opts.MetricsScope()),
		opts:    opts,
	}
}

func (p *instrumentedWorkerPool) Init() {
	p.pool.Init()
	p.metrics.idle.Add(int64(p.size))
	go p.metricLoop()
}

func (p *instrumentedWorkerPool) Close() error {
	if err := p.pool.Close(); err != nil {
		return err
	}
	close(p.closeCh)
	<-p.doneCh
	return nil
}

func (p *instrumentedWorkerPool) metricLoop() {
	ticker := time.NewTicker(p.opts.ReportInterval())
	defer func() {
		ticker.Stop()
		close(p.doneCh)
	}()

	for {
		select {
		case <-p.closeCh:
			p.metrics.update()
			return
		case <-ticker.C:
			p.metrics.update()
		}
	}
}

func (p *instrumentedWorkerPool) Go(work Work) {
	p.metrics.waiting.Inc()
	p.pool.Go(p.instrumentedWork(work))
}

func (p *instrumentedWorkerPool) GoIfAvailable(work Work) bool {
	p.metrics.waiting.Inc()
	if p.pool.GoIfAvailable(p.instrumentedWork(work)) {
		return true
	}
	p.metrics.unavailable.Inc(1)
	p.metrics.waiting.Dec()
	return false
}

func (p *instrumentedWorkerPool) GoWithTimeout(work Work, timeout time.Duration) bool {
	p.metrics.waiting.Inc()
	if p.pool.GoWithTimeout(p.instrumentedWork(work), timeout) {
		return true
	}
	p.metrics.timeouts.Inc(1)
	p.metrics.waiting.Dec()
	return false
}

func (p *instrumentedWorkerPool) instrumentedWork(w Work) Work {
	return func() {
		p.metrics.waiting.Dec()
		p.metrics.idle.Dec()
		p.metrics.busy.Inc()
		defer func() {
			p.metrics.busy.Dec()
			p.metrics.idle.Inc()
			p.metrics.run.Inc(1)
		}()
		w()
	}
}

type workerPoolMetrics struct {
	timeouts    tally.Counter
	unavailable tally.Counter
	run         tally.Counter
	idleGauge   tally.Gauge
	busyGauge   tally.Gauge
	waitGauge   tally.Gauge
	totalGauge  tally.Gauge

	idle    atomic.Int64
	busy    atomic.Int64
	waiting atomic.Int64
	total   int64
}

func newWorkerPoolMetrics(size int, s tally.Scope) workerPoolMetrics {
	scope := s.SubScope("workers")
	return workerPoolMetrics{
		timeouts:    scope.Counter("timeouts"),
		unavailable: scope.Counter("unavailable"),
		run:         scope.Counter("run"),
		idleGauge:   scope.Gauge("idle"),
		busyGauge:   scope.Gauge("busy"),
		waitGauge:   scope.Gauge("waiting"),
		totalGauge:  scope.Gauge("total"),
		total:       int64(size),
	}
}

func (m *workerPoolMetrics) update() {
	m.idleGauge.Update(float64(m.idle.Load()))
	m.busyGauge.Update(float64(m.busy.Load()))
	m.waitGauge.Update(float64(m.waiting.Load()))
	m.totalGauge.Update(float64(m.total))
}
