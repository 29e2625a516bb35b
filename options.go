// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package timerfuture

import (
	"fmt"
	"time"

	"github.com/joeycumines/logiface"
)

// reactorOptions holds configuration options for Reactor creation.
type reactorOptions struct {
	logger       *logiface.Logger[logiface.Event]
	timeUnit     time.Duration
	lockOSThread bool
}

// Option configures a Reactor instance.
type Option interface {
	applyReactor(*reactorOptions) error
}

// optionImpl implements Option.
type optionImpl struct {
	applyReactorFunc func(*reactorOptions) error
}

func (o *optionImpl) applyReactor(opts *reactorOptions) error {
	return o.applyReactorFunc(opts)
}

// WithLogger configures the structured logger, used for reactor diagnostics.
// A nil logger (the default) disables logging.
func WithLogger(logger *logiface.Logger[logiface.Event]) Option {
	return &optionImpl{func(opts *reactorOptions) error {
		opts.logger = logger
		return nil
	}}
}

// WithTimeUnit sets the length of one unit of task duration.
// Defaults to time.Second. Must be positive.
func WithTimeUnit(unit time.Duration) Option {
	return &optionImpl{func(opts *reactorOptions) error {
		if unit <= 0 {
			return fmt.Errorf(`timerfuture: invalid time unit: %s`, unit)
		}
		opts.timeUnit = unit
		return nil
	}}
}

// WithLockOSThread sets whether the reactor's dispatcher goroutine should be
// wired to a dedicated OS thread, for its lifetime. Enabled by default.
func WithLockOSThread(enabled bool) Option {
	return &optionImpl{func(opts *reactorOptions) error {
		opts.lockOSThread = enabled
		return nil
	}}
}

// resolveOptions applies Option instances to reactorOptions.
func resolveOptions(opts []Option) (*reactorOptions, error) {
	cfg := &reactorOptions{
		timeUnit:     time.Second,
		lockOSThread: true,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.applyReactor(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}
