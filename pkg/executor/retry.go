package executor

import (
	"log/slog"
	"time"
)

// RetryPolicy is a bounded exponential backoff: attempt n waits
// InitialDelay * BackoffFactor^(n-1) before the next try.
type RetryPolicy struct {
	MaxAttempts   int
	InitialDelay  time.Duration
	BackoffFactor float64
}

// DefaultRetryPolicy matches the service's tolerances: three attempts,
// one second initial delay, doubling.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:   3,
		InitialDelay:  time.Second,
		BackoffFactor: 2.0,
	}
}

func (p RetryPolicy) withDefaults() RetryPolicy {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = 3
	}
	if p.InitialDelay <= 0 {
		p.InitialDelay = time.Second
	}
	if p.BackoffFactor <= 0 {
		p.BackoffFactor = 2.0
	}
	return p
}

// Do runs fn until it succeeds, returns a non-retryable failure, or exhausts
// the attempt budget. fn reports whether its failure is worth another try.
// The sleep function is injectable so tests run instantly. Do returns the
// number of attempts made and the last error.
func (p RetryPolicy) Do(logger *slog.Logger, sleep func(time.Duration), fn func() (retryable bool, err error)) (int, error) {
	p = p.withDefaults()
	if sleep == nil {
		sleep = time.Sleep
	}

	delay := p.InitialDelay
	var lastErr error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		retryable, err := fn()
		if err == nil {
			return attempt, nil
		}
		lastErr = err
		if !retryable || attempt == p.MaxAttempts {
			return attempt, lastErr
		}

		logger.Warn("attempt failed, retrying",
			"attempt", attempt,
			"max_attempts", p.MaxAttempts,
			"delay", delay,
			"error", err)
		sleep(delay)
		delay = time.Duration(float64(delay) * p.BackoffFactor)
	}
	return p.MaxAttempts, lastErr
}
