package graphapi

import (
	"context"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"
)

// BreakerSettings tunes the circuit breaker wrapper.
type BreakerSettings struct {
	// MaxRequests allowed through while half-open.
	MaxRequests uint32
	// Interval between counter resets while closed, in seconds.
	Interval int
	// Timeout before an open breaker moves to half-open, in seconds.
	Timeout int
	// ReadyToTripRatio is the failure ratio that opens the breaker.
	ReadyToTripRatio float64
}

// BreakerClient wraps an API with a circuit breaker so a long batch run
// stops hammering a graph service that is clearly down. Only retryable
// failures count against the breaker; not-found and client errors are
// ordinary results.
type BreakerClient struct {
	api    API
	cb     *gobreaker.CircuitBreaker
	logger *slog.Logger
}

// NewBreakerClient wraps api with circuit breaking.
func NewBreakerClient(api API, cfg BreakerSettings, logger *slog.Logger) *BreakerClient {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.ReadyToTripRatio <= 0 {
		cfg.ReadyToTripRatio = 0.6
	}

	st := gobreaker.Settings{
		Name:        "graphapi",
		MaxRequests: cfg.MaxRequests,
		Interval:    time.Duration(cfg.Interval) * time.Second,
		Timeout:     time.Duration(cfg.Timeout) * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= cfg.ReadyToTripRatio
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				"breaker", name,
				"from", from.String(),
				"to", to.String())
		},
	}

	return &BreakerClient{
		api:    api,
		cb:     gobreaker.NewCircuitBreaker(st),
		logger: logger,
	}
}

type mergeEnvelope struct {
	result *MergeResult
	err    error
}

func (c *BreakerClient) MergeEntities(ctx context.Context, entitiesToChange []string, entityToChangeInto string) (*MergeResult, error) {
	out, cbErr := c.cb.Execute(func() (interface{}, error) {
		result, err := c.api.MergeEntities(ctx, entitiesToChange, entityToChangeInto)
		if err != nil && result != nil && !result.Outcome.Retryable() {
			// Terminal API answers are not service failures.
			return mergeEnvelope{result, err}, nil
		}
		return mergeEnvelope{result, err}, err
	})
	if env, ok := out.(mergeEnvelope); ok {
		return env.result, env.err
	}
	return &MergeResult{Outcome: OutcomeServerError, Message: cbErr.Error()}, cbErr
}

type editEnvelope struct {
	result *EditResult
	err    error
}

func (c *BreakerClient) EditEntity(ctx context.Context, entityName, newName, entityType string) (*EditResult, error) {
	out, cbErr := c.cb.Execute(func() (interface{}, error) {
		result, err := c.api.EditEntity(ctx, entityName, newName, entityType)
		if err != nil && result != nil && !result.Outcome.Retryable() {
			return editEnvelope{result, err}, nil
		}
		return editEnvelope{result, err}, err
	})
	if env, ok := out.(editEnvelope); ok {
		return env.result, env.err
	}
	return &EditResult{Outcome: OutcomeServerError, Message: cbErr.Error()}, cbErr
}

type deleteEnvelope struct {
	outcome Outcome
	err     error
}

func (c *BreakerClient) DeleteEntity(ctx context.Context, entityName string) (Outcome, error) {
	out, cbErr := c.cb.Execute(func() (interface{}, error) {
		outcome, err := c.api.DeleteEntity(ctx, entityName)
		if err != nil && !outcome.Retryable() {
			return deleteEnvelope{outcome, err}, nil
		}
		return deleteEnvelope{outcome, err}, err
	})
	if env, ok := out.(deleteEnvelope); ok {
		return env.outcome, env.err
	}
	return OutcomeServerError, cbErr
}
