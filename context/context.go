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

// Package context provides a scope that owns handles and other resources
// until it is closed.
package context

import (
	"sync"

	"github.com/m3db/m3ptr/resource"
)

const defaultInitFinalizersCap = 4

// Context owns the resources registered with it and releases them in
// registration order when closed.
type Context interface {
	resource.SimpleCloser

	// IsClosed returns whether the context is closed.
	IsClosed() bool

	// RegisterFinalizer registers a finalizer to run when the context closes.
	RegisterFinalizer(f resource.Finalizer)

	// RegisterCloser registers a closer to run when the context closes.
	RegisterCloser(c resource.SimpleCloser)

	// DependsOn delays finalization of this context until blocker is closed.
	DependsOn(blocker Context)

	// BlockingClose closes the context and waits for its resources to be
	// released.
	BlockingClose()

	// Reset makes a closed context reusable.
	Reset()
}

type finalizeable struct {
	finalizer resource.Finalizer
	closer    resource.SimpleCloser
}

type ctx struct {
	sync.RWMutex

	done          bool
	wg            sync.WaitGroup
	finalizeables []finalizeable
}

// NewContext creates a new context.
func NewContext() Context {
	return &ctx{}
}

func (c *ctx) IsClosed() bool {
	c.RLock()
	done := c.done
	c.RUnlock()
	return done
}

func (c *ctx) RegisterFinalizer(f resource.Finalizer) {
	c.register(finalizeable{finalizer: f})
}

func (c *ctx) RegisterCloser(f resource.SimpleCloser) {
	c.register(finalizeable{closer: f})
}

func (c *ctx) register(f finalizeable) {
	c.Lock()
	defer c.Unlock()

	if c.done {
		return
	}
	if c.finalizeables == nil {
		c.finalizeables = make([]finalizeable, 0, defaultInitFinalizersCap)
	}
	c.finalizeables = append(c.finalizeables, f)
}

func (c *ctx) DependsOn(blocker Context) {
	c.Lock()
	if !c.done {
		c.wg.Add(1)
		blocker.RegisterFinalizer(resource.FinalizerFn(c.wg.Done))
	}
	c.Unlock()
}

type closeMode int

const (
	closeAsync closeMode = iota
	closeBlock
)

func (c *ctx) Close() {
	c.close(closeAsync)
}

func (c *ctx) BlockingClose() {
	c.close(closeBlock)
}

func (c *ctx) close(mode closeMode) {
	c.Lock()
	if c.done {
		c.Unlock()
		return
	}
	c.done = true

	// Capture finalizeables to avoid concurrent r/w if Reset
	// is used after a caller waits for the finalizers to finish.
	f := c.finalizeables
	c.finalizeables = nil
	c.Unlock()

	switch mode {
	case closeAsync:
		go c.finalize(f)
	case closeBlock:
		c.finalize(f)
	}
}

func (c *ctx) finalize(f []finalizeable) {
	// Wait for dependencies.
	c.wg.Wait()

	for i := range f {
		if f[i].finalizer != nil {
			f[i].finalizer.Finalize()
		}
		if f[i].closer != nil {
			f[i].closer.Close()
		}
	}
}

func (c *ctx) Reset() {
	c.Lock()
	c.done, c.finalizeables = false, nil
	c.Unlock()
}
