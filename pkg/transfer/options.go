package transfer

import (
	"log/slog"
	"runtime"
)

// ProgressFunc receives progress events. done counts completed units of
// the stage and total is the expected number, or -1 when unknown. Calls
// are serialised.
type ProgressFunc func(stage State, done, total int)

// config holds Engine settings
type config struct {
	workers     int
	refPatterns []string
	fullWalk    bool
	log         *slog.Logger
	onProgress  ProgressFunc
}

func defaultConfig() config {
	return config{workers: runtime.NumCPU()}
}

// Option configures an Engine.
type Option func(*config)

// WithWorkers bounds the number of objects copied in parallel. Values
// below one fall back to runtime.NumCPU().
func WithWorkers(n int) Option {
	return func(c *config) {
		if n < 1 {
			n = runtime.NumCPU()
		}
		c.workers = n
	}
}

// WithRefPatterns limits the transfer to source references matching any
// of the patterns (see refs.RefPath.Matches).
func WithRefPatterns(patterns ...string) Option {
	return func(c *config) {
		c.refPatterns = append(c.refPatterns, patterns...)
	}
}

// WithFullWalk expands objects the target already has during the walk.
func WithFullWalk(full bool) Option {
	return func(c *config) {
		c.fullWalk = full
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		c.log = l
	}
}

// WithProgress sets a progress callback.
func WithProgress(fn ProgressFunc) Option {
	return func(c *config) {
		c.onProgress = fn
	}
}
