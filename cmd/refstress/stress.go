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

package main

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/m3db/m3ptr/instrument"
	"github.com/m3db/m3ptr/ptr"
	xsync "github.com/m3db/m3ptr/sync"

	"go.uber.org/atomic"
	"go.uber.org/zap"
)

var (
	errUseCountChanged = errors.New("use count changed across the run")
	errDeletions       = errors.New("resource was not deleted exactly once")
)

type stressResource struct {
	name string
}

// Result is the outcome of a stress run.
type Result struct {
	UseCountBefore int
	UseCountAfter  int
	Deletions      int64
	Promotions     int64
	Expirations    int64
	Duration       time.Duration
}

// Run shares one resource between cfg.Workers goroutines, each cloning and
// closing its own handle cfg.Iterations times, and checks that the use count
// is unchanged afterwards and that the resource is deleted exactly once.
func Run(cfg Configuration, iopts instrument.Options) (Result, error) {
	var (
		logger      = iopts.Logger()
		deletions   atomic.Int64
		promotions  atomic.Int64
		expirations atomic.Int64
		wg          sync.WaitGroup
		start       = time.Now()
	)

	root := ptr.NewShared(&stressResource{name: "stress"},
		ptr.WithDeleterFn(func(r *stressResource) {
			deletions.Inc()
			logger.Debug("resource deleted", zap.String("name", r.name))
		}))
	weak := root.Weak()

	workers := xsync.NewInstrumentedWorkerPool(cfg.Workers, iopts)
	workers.Init()

	before := root.UseCount()
	for i := 0; i < cfg.Workers; i++ {
		// The clone is taken before the work is scheduled and closed when
		// the work completes.
		clone := root.Clone()
		wg.Add(1)
		workers.Go(func() {
			defer wg.Done()
			defer clone.Close()

			for j := 0; j < cfg.Iterations; j++ {
				c := clone.Clone()
				c.Close()

				if !cfg.WeakPromotions {
					continue
				}
				locked, err := weak.Lock()
				if err != nil {
					expirations.Inc()
					continue
				}
				promotions.Inc()
				locked.Close()
			}
		})
	}
	wg.Wait()
	after := root.UseCount()

	if err := workers.Close(); err != nil {
		return Result{}, err
	}
	root.Close()

	result := Result{
		UseCountBefore: before,
		UseCountAfter:  after,
		Deletions:      deletions.Load(),
		Promotions:     promotions.Load(),
		Expirations:    expirations.Load(),
		Duration:       time.Since(start),
	}
	logger.Info("stress run complete",
		zap.Int("workers", cfg.Workers),
		zap.Int("iterations", cfg.Iterations),
		zap.Int("useCountBefore", result.UseCountBefore),
		zap.Int("useCountAfter", result.UseCountAfter),
		zap.Int64("deletions", result.Deletions),
		zap.Int64("promotions", result.Promotions),
		zap.Duration("duration", result.Duration))

	if result.UseCountBefore != result.UseCountAfter {
		return result, fmt.Errorf("%w: before=%d, after=%d",
			errUseCountChanged, result.UseCountBefore, result.UseCountAfter)
	}
	if result.Deletions != 1 {
		return result, fmt.Errorf("%w: deletions=%d", errDeletions, result.Deletions)
	}
	return result, nil
}
