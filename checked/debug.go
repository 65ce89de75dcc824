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
	"bytes"
	"fmt"
	"runtime"
	"sync"
	"time"

	"go.uber.org/atomic"
)

const (
	defaultTracebackEventsCap = 16
	tracebackStackDepth       = 16
)

var (
	tracebackEnabled = atomic.NewBool(false)
	leaksEnabled     = atomic.NewBool(false)
	numLeaked        = atomic.NewInt64(0)

	panicFn = defaultPanic

	traces struct {
		sync.Mutex
		m map[*RefCount][]debuggerEvent
	}

	leaks struct {
		sync.Mutex
		m map[string]uint64
	}
)

type debuggerEventType int

const (
	incRefEvent debuggerEventType = iota
	tryIncRefEvent
	decRefEvent
	finalizeEvent
)

func (t debuggerEventType) String() string {
	switch t {
	case incRefEvent:
		return "IncRef"
	case tryIncRefEvent:
		return "TryIncRef"
	case decRefEvent:
		return "DecRef"
	case finalizeEvent:
		return "Finalize"
	}
	return "Unknown"
}

type debuggerEvent struct {
	event debuggerEventType
	ref   int
	t     time.Time
	stack []uintptr
}

// PanicFn is a panic function to call on invalid checked state.
type PanicFn func(e error)

// SetPanicFn sets the panic function.
func SetPanicFn(fn PanicFn) {
	panicFn = fn
}

// ResetPanicFn resets the panic function to the default runtime panic.
func ResetPanicFn() {
	panicFn = defaultPanic
}

// Panic raises a contract violation through the current panic function.
func Panic(err error) {
	panicFn(err)
}

// SetTraceback sets whether to record and report the events of each count
// when an invalid state is detected. Enabling it is expensive.
func SetTraceback(value bool) {
	tracebackEnabled.Store(value)
	if !value {
		traces.Lock()
		traces.m = make(map[*RefCount][]debuggerEvent)
		traces.Unlock()
	}
}

// SetLeakDetectionFlag sets whether handles collected by the garbage
// collector while still holding a reference are recorded as leaks.
func SetLeakDetectionFlag(value bool) {
	leaksEnabled.Store(value)
}

// LeakDetectionEnabled returns whether leak detection is enabled.
func LeakDetectionEnabled() bool {
	return leaksEnabled.Load()
}

// RecordLeak records a leaked reference to a resource of the given type.
func RecordLeak(typeName string) {
	numLeaked.Inc()
	leaks.Lock()
	leaks.m[typeName]++
	leaks.Unlock()
}

// DumpLeaks returns the number of leaks recorded per resource type.
func DumpLeaks() map[string]uint64 {
	leaks.Lock()
	defer leaks.Unlock()

	r := make(map[string]uint64, len(leaks.m))
	for k, v := range leaks.m {
		r[k] = v
	}
	return r
}

// ResetLeaks clears the recorded leaks.
func ResetLeaks() {
	leaks.Lock()
	leaks.m = make(map[string]uint64)
	leaks.Unlock()
	numLeaked.Store(0)
}

func defaultPanic(e error) {
	panic(e)
}

func panicRef(c *RefCount, err error) {
	if tracebackEnabled.Load() {
		err = fmt.Errorf("%w: ref=%d\n%s", err, c.NumRef(), tracebackEvents(c))
	} else {
		err = fmt.Errorf("%w: ref=%d", err, c.NumRef())
	}
	panicFn(err)
}

func tracebackEvent(c *RefCount, ref int, e debuggerEventType) {
	if !tracebackEnabled.Load() {
		return
	}

	stack := make([]uintptr, tracebackStackDepth)
	// Skip runtime.Callers and this function.
	stack = stack[:runtime.Callers(2, stack)]

	traces.Lock()
	events, ok := traces.m[c]
	if !ok {
		events = make([]debuggerEvent, 0, defaultTracebackEventsCap)
	}
	traces.m[c] = append(events, debuggerEvent{
		event: e,
		ref:   ref,
		t:     time.Now(),
		stack: stack,
	})
	traces.Unlock()
}

func tracebackEvents(c *RefCount) string {
	traces.Lock()
	events := append([]debuggerEvent(nil), traces.m[c]...)
	traces.Unlock()

	var buf bytes.Buffer
	buf.WriteString("events:\n")
	// Most recent first.
	for i := len(events) - 1; i >= 0; i-- {
		e := events[i]
		fmt.Fprintf(&buf, "%s, ref=%d, unixnanos=%d:\n", e.event, e.ref, e.t.UnixNano())
		frames := runtime.CallersFrames(e.stack)
		for {
			f, more := frames.Next()
			fmt.Fprintf(&buf, "%s\n\t%s:%d\n", f.Function, f.File, f.Line)
			if !more {
				break
			}
		}
	}
	return buf.String()
}

func init() {
	traces.m = make(map[*RefCount][]debuggerEvent)
	leaks.m = make(map[string]uint64)
}
