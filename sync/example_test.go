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

package xsync_test

import (
	"fmt"
	"sync"

	"github.com/m3db/m3ptr/ptr"
	xsync "github.com/m3db/m3ptr/sync"
)

type table struct {
	name string
}

func ExampleWorkerPool() {
	var (
		wg      sync.WaitGroup
		workers = xsync.NewWorkerPool(3)
		numWork = 9
		names   = make([]string, numWork)
		shared  = ptr.NewShared(&table{name: "series"}, ptr.WithDeleterFn(func(t *table) {
			fmt.Println("released", t.name)
		}))
	)

	wg.Add(numWork)
	workers.Init()

	for i := 0; i < numWork; i++ {
		i := i

		// Take a clone for the work before it is scheduled, the work
		// closes it when done.
		clone := shared.Clone()
		workers.Go(func() {
			defer wg.Done()
			defer clone.Close()

			// Each work writes a different index.
			names[i] = clone.Get().name
		})
	}

	wg.Wait()
	fmt.Println(len(names), names[0], shared.UseCount())

	shared.Close()
	// Output:
	// 9 series 1
	// released series
}
