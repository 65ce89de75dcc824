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

package pool

import (
	"errors"

	"github.com/uber-go/tally/v4"
	"go.uber.org/atomic"
)

var (
	errPoolAlreadyInitialized   = errors.New("object pool already initialized")
	errPoolGetBeforeInitialized = errors.New("object pool get before initialized")
	errPoolPutBeforeInitialized = errors.New("object pool put before initialized")
)

type objectPoolMetrics struct {
	free       tally.Gauge
	total      tally.Gauge
	getOnEmpty tally.Counter
	putOnFull  tally.Counter
}

func newObjectPoolMetrics(s tally.Scope) objectPoolMetrics {
	return objectPoolMetrics{
		free:       s.Gauge("free"),
		total:      s.Gauge("total"),
		getOnEmpty: s.Counter("get-on-empty"),
		putOnFull:  s.Counter("put-on-full"),
	}
}

type objectPool[T any] struct {
	opts        ObjectPoolOptions
	values      chan *T
	alloc       Allocator[T]
	size        int
	metrics     objectPoolMetrics
	initialized atomic.Bool
}

// NewObjectPool creates a new pool.
func NewObjectPool[T any](opts ObjectPoolOptions) ObjectPool[T] {
	if opts == nil {
		opts = NewObjectPoolOptions()
	}

	scope := opts.InstrumentOptions().MetricsScope().SubScope("pool")
	return &objectPool[T]{
		opts:    opts,
		values:  make(chan *T, opts.Size()),
		size:    opts.Size(),
		metrics: newObjectPoolMetrics(scope),
	}
}

func (p *objectPool[T]) Init(alloc Allocator[T]) {
	if !p.initialized.CompareAndSwap(false, true) {
		p.opts.OnPoolAccessErrorFn()(errPoolAlreadyInitialized)
		return
	}

	p.alloc = alloc
	for i := 0; i < cap(p.values); i++ {
		p.values <- p.alloc()
	}

	p.setGauges()
}

func (p *objectPool[T]) Get() *T {
	if !p.initialized.Load() {
		p.opts.OnPoolAccessErrorFn()(errPoolGetBeforeInitialized)
		return nil
	}

	var v *T
	select {
	case v = <-p.values:
	default:
		v = p.alloc()
		p.metrics.getOnEmpty.Inc(1)
	}

	p.setGauges()
	return v
}

func (p *objectPool[T]) Put(obj *T) {
	if !p.initialized.Load() {
		p.opts.OnPoolAccessErrorFn()(errPoolPutBeforeInitialized)
		return
	}

	select {
	case p.values <- obj:
	default:
		p.metrics.putOnFull.Inc(1)
	}

	p.setGauges()
}

func (p *objectPool[T]) setGauges() {
	p.metrics.free.Update(float64(len(p.values)))
	p.metrics.total.Update(float64(p.size))
}
