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

// Package instrument provides the logging and metrics options shared by
// the reporters and pools.
package instrument

import (
	"time"

	"github.com/uber-go/tally/v4"
	"go.uber.org/zap"
)

// Reporter reports metrics about a component.
type Reporter interface {
	// Start starts the reporter.
	Start() error

	// Stop stops the reporter.
	Stop() error
}

// Options represents the options for instrumentation.
type Options interface {
	// SetLogger sets the logger.
	SetLogger(value *zap.Logger) Options

	// Logger returns the logger.
	Logger() *zap.Logger

	// SetMetricsScope sets the metrics scope.
	SetMetricsScope(value tally.Scope) Options

	// MetricsScope returns the metrics scope.
	MetricsScope() tally.Scope

	// SetReportInterval sets the time between reporting metrics.
	SetReportInterval(value time.Duration) Options

	// ReportInterval returns the time between reporting metrics.
	ReportInterval() time.Duration
}
