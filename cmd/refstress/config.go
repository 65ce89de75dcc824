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
	"time"

	"go.uber.org/zap"
)

const (
	defaultWorkers        = 2
	defaultIterations     = 100000
	defaultReportInterval = time.Second
)

// Configuration is the configuration of a stress run.
type Configuration struct {
	// Workers is the number of goroutines sharing the resource.
	Workers int `yaml:"workers" validate:"min=1"`

	// Iterations is the number of clone and close cycles per worker.
	Iterations int `yaml:"iterations" validate:"min=1"`

	// WeakPromotions also promotes a weak handle on every cycle.
	WeakPromotions bool `yaml:"weakPromotions"`

	// ReportInterval is the interval at which metrics are reported.
	ReportInterval time.Duration `yaml:"reportInterval" validate:"min=1"`

	// Logging configures the logger.
	Logging LoggingConfiguration `yaml:"logging"`
}

// LoggingConfiguration configures the logger.
type LoggingConfiguration struct {
	// Level is the minimum enabled level, info by default.
	Level string `yaml:"level"`
}

func defaultConfiguration() Configuration {
	return Configuration{
		Workers:        defaultWorkers,
		Iterations:     defaultIterations,
		ReportInterval: defaultReportInterval,
	}
}

// NewLogger builds the logger described by the configuration.
func (c LoggingConfiguration) NewLogger() (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if c.Level != "" {
		level, err := zap.ParseAtomicLevel(c.Level)
		if err != nil {
			return nil, err
		}
		cfg.Level = level
	}
	return cfg.Build()
}
