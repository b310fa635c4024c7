package fsm

import (
	"context"
	"log/slog"
)

type config struct {
	id     string
	name   string
	logger *slog.Logger
	trace  Trace
	ctx    context.Context
	policy Policy
	reset  func()
}

// Option configures a machine at construction.
type Option func(*config)

// WithId sets the machine id. Defaults to a UUIDv7.
func WithId(id string) Option {
	return func(config *config) {
		config.id = id
	}
}

// WithName sets the machine name used in traces and logs. Defaults to the
// name of the machine tag type.
func WithName(name string) Option {
	return func(config *config) {
		config.name = name
	}
}

// WithLogger enables Debug logging of lifecycle steps.
func WithLogger(logger *slog.Logger) Option {
	return func(config *config) {
		config.logger = logger
	}
}

func WithTrace(trace Trace) Option {
	return func(config *config) {
		config.trace = trace
	}
}

// WithContext sets the context passed to the trace and the logger. The
// machine never waits on it.
func WithContext(ctx context.Context) Option {
	return func(config *config) {
		config.ctx = ctx
	}
}

func WithPolicy(policy Policy) Option {
	return func(config *config) {
		config.policy = policy
	}
}

// WithReset sets the hook run by Machine.Reset.
func WithReset(reset func()) Option {
	return func(config *config) {
		config.reset = reset
	}
}
