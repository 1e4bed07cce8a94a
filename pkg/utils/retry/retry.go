package retry

import (
	"context"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/llvmpack/pkg/domain/model"
)

const (
	// DefaultMaxRetries is the number of retries after the first attempt
	DefaultMaxRetries = 3
	// DefaultInterval is the fixed delay between attempts
	DefaultInterval = 10 * time.Second
)

type config struct {
	maxRetries int
	interval   time.Duration
}

// Option configures Do
type Option func(*config)

// WithMaxRetries overrides the retry bound
func WithMaxRetries(n int) Option {
	return func(c *config) {
		c.maxRetries = n
	}
}

// WithInterval overrides the delay between attempts
func WithInterval(d time.Duration) Option {
	return func(c *config) {
		c.interval = d
	}
}

// Do executes op, retrying when it fails with an error tagged
// model.ErrTagTransient. Untagged errors propagate immediately. After
// maxRetries retries (maxRetries+1 attempts in total) the last error is
// returned wrapped in an exhausted-retries message.
func Do(ctx context.Context, op func(ctx context.Context) error, opts ...Option) error {
	cfg := &config{
		maxRetries: DefaultMaxRetries,
		interval:   DefaultInterval,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	logger := ctxlog.From(ctx)

	for attempt := 0; ; attempt++ {
		err := op(ctx)
		if err == nil {
			return nil
		}
		if !goerr.HasTag(err, model.ErrTagTransient) {
			return err
		}
		if attempt >= cfg.maxRetries {
			return goerr.Wrap(err, "number of retries exceeded",
				goerr.V("max_retries", cfg.maxRetries))
		}

		logger.Warn("Operation failed, retrying",
			"error", err,
			"attempt", attempt+1,
			"interval", cfg.interval,
		)

		select {
		case <-ctx.Done():
			return goerr.Wrap(ctx.Err(), "retry interrupted")
		case <-time.After(cfg.interval):
		}
	}
}
