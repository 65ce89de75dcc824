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
	"errors"
	"sync"
	"time"

	"github.com/m3db/m3ptr/instrument"

	"github.com/uber-go/tally/v4"
	"go.uber.org/zap"
)

type refReporterState int

const (
	refReporterNotStarted refReporterState = iota
	refReporterStarted
	refReporterStopped
)

var (
	errRefReporterAlreadyStartedOrStopped = errors.New(
		"ref reporter already started or stopped")
	errRefReporterNotRunning = errors.New(
		"ref reporter not running")
	errRefReporterInvalidInterval = errors.New(
		"ref reporter requires a positive report interval")
)

type refReporter struct {
	sync.Mutex

	state    refReporterState
	logger   *zap.Logger
	interval time.Duration
	closeCh  chan struct{}
	doneCh   chan struct{}

	live      tally.Gauge
	leaked    tally.Gauge
	finalized tally.Counter

	lastFinalized int64
	lastLeaked    int64
}

// NewRefReporter returns a reporter that periodically emits the process
// wide reference count statistics and logs newly detected leaks.
func NewRefReporter(iopts instrument.Options) instrument.Reporter {
	scope := iopts.MetricsScope().SubScope("refs")
	return &refReporter{
		logger:    iopts.Logger(),
		interval:  iopts.ReportInterval(),
		live:      scope.Gauge("live"),
		leaked:    scope.Gauge("leaked"),
		finalized: scope.Counter("finalized"),
	}
}

func (r *refReporter) Start() error {
	r.Lock()
	defer r.Unlock()

	if r.state != refReporterNotStarted {
		return errRefReporterAlreadyStartedOrStopped
	}
	if r.interval <= 0 {
		return errRefReporterInvalidInterval
	}

	r.state = refReporterStarted
	r.closeCh = make(chan struct{})
	r.doneCh = make(chan struct{})
	r.lastFinalized = Stats().Finalized

	go r.reportLoop()
	return nil
}

func (r *refReporter) Stop() error {
	r.Lock()
	defer r.Unlock()

	if r.state != refReporterStarted {
		return errRefReporterNotRunning
	}

	r.state = refReporterStopped
	close(r.closeCh)
	<-r.doneCh
	return nil
}

func (r *refReporter) reportLoop() {
	ticker := time.NewTicker(r.interval)
	defer func() {
		ticker.Stop()
		close(r.doneCh)
	}()

	r.report()
	for {
		select {
		case <-ticker.C:
			r.report()
		case <-r.closeCh:
			return
		}
	}
}

func (r *refReporter) report() {
	stats := Stats()

	r.live.Update(float64(stats.Live))
	r.leaked.Update(float64(stats.Leaked))
	if delta := stats.Finalized - r.lastFinalized; delta > 0 {
		r.finalized.Inc(delta)
	}
	r.lastFinalized = stats.Finalized

	if stats.Leaked > r.lastLeaked {
		for typeName, n := range DumpLeaks() {
			r.logger.Warn("leaked references detected",
				zap.String("type", typeName),
				zap.Uint64("count", n))
		}
	}
	r.lastLeaked = stats.Leaked
}
