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

// refstress shares one resource between many goroutines that clone and
// close handles to it, then verifies the use count and the deletion.
package main

import (
	"os"

	"github.com/m3db/m3ptr/checked"
	"github.com/m3db/m3ptr/config"
	"github.com/m3db/m3ptr/instrument"

	"github.com/spf13/cobra"
	"github.com/uber-go/tally/v4"
	"go.uber.org/zap"
	validator "gopkg.in/validator.v2"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configFiles    []string
		workers        int
		iterations     int
		weakPromotions bool
		leakDetection  bool
	)

	cmd := &cobra.Command{
		Use:          "refstress",
		Short:        "Clone and close handles to one shared resource from many goroutines",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := defaultConfiguration()
			if len(configFiles) > 0 {
				if err := config.LoadFiles(&cfg, configFiles...); err != nil {
					return err
				}
			}

			flags := cmd.Flags()
			if flags.Changed("workers") {
				cfg.Workers = workers
			}
			if flags.Changed("iterations") {
				cfg.Iterations = iterations
			}
			if flags.Changed("weak") {
				cfg.WeakPromotions = weakPromotions
			}
			if err := validator.Validate(cfg); err != nil {
				return err
			}

			logger, err := cfg.Logging.NewLogger()
			if err != nil {
				return err
			}
			defer logger.Sync() // nolint: errcheck

			return run(cfg, logger, leakDetection)
		},
	}

	flags := cmd.Flags()
	flags.StringSliceVarP(&configFiles, "config", "f", nil, "configuration files, later files override earlier ones")
	flags.IntVar(&workers, "workers", defaultWorkers, "number of goroutines sharing the resource")
	flags.IntVar(&iterations, "iterations", defaultIterations, "clone and close cycles per goroutine")
	flags.BoolVar(&weakPromotions, "weak", false, "also promote a weak handle on every cycle")
	flags.BoolVar(&leakDetection, "leak-detection", false, "record handles collected without being closed")
	return cmd
}

func run(cfg Configuration, logger *zap.Logger, leakDetection bool) error {
	scope, closer := tally.NewRootScope(tally.ScopeOptions{
		Prefix:   "refstress",
		Reporter: tally.NullStatsReporter,
	}, cfg.ReportInterval)
	defer closer.Close()

	iopts := instrument.NewOptions().
		SetLogger(logger).
		SetMetricsScope(scope).
		SetReportInterval(cfg.ReportInterval)

	checked.SetLeakDetectionFlag(leakDetection)
	reporter := checked.NewRefReporter(iopts)
	if err := reporter.Start(); err != nil {
		return err
	}
	defer reporter.Stop() // nolint: errcheck

	if _, err := Run(cfg, iopts); err != nil {
		logger.Error("stress run failed", zap.Error(err))
		return err
	}
	return nil
}
