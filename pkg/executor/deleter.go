package executor

import (
	"context"
	"log/slog"
	"time"

	"github.com/soundprediction/graphmend/pkg/graphapi"
	"github.com/soundprediction/graphmend/pkg/telemetry"
	"github.com/soundprediction/graphmend/pkg/types"
)

// Deleter removes entities in bulk through the graph API. Transient failures
// are retried with 2^n seconds of backoff; 404 means the entity is already
// gone and is tracked separately from real failures.
type Deleter struct {
	api        graphapi.API
	maxRetries int
	logger     *slog.Logger

	Recorder *telemetry.Recorder

	sleep func(time.Duration)
}

// NewDeleter creates a bulk deleter. maxRetries is the number of additional
// attempts after the first; values below zero fall back to 3.
func NewDeleter(api graphapi.API, maxRetries int, logger *slog.Logger) *Deleter {
	if maxRetries < 0 {
		maxRetries = 3
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Deleter{
		api:        api,
		maxRetries: maxRetries,
		logger:     logger,
		sleep:      time.Sleep,
	}
}

// Delete removes every listed entity and aggregates the outcomes. One
// entity failing never stops the run. In dry-run mode nothing is deleted.
func (d *Deleter) Delete(ctx context.Context, entities []types.Entity, dryRun bool) *types.DeleteStats {
	stats := &types.DeleteStats{Total: len(entities)}

	for _, entity := range entities {
		if dryRun {
			d.logger.Info("DRY RUN: would delete entity",
				"entity", entity.Name,
				"entity_type", entity.Type)
			continue
		}

		outcome, attempts := d.deleteWithRetry(ctx, entity.Name)
		switch outcome {
		case graphapi.OutcomeSuccess:
			stats.Deleted++
			d.logger.Info("deleted entity", "entity", entity.Name)
		case graphapi.OutcomeNotFound:
			stats.NotFound++
			d.logger.Info("entity not found, nothing to delete", "entity", entity.Name)
		case graphapi.OutcomeClientError:
			stats.Failed++
			stats.ClientErrors++
			d.logger.Error("delete rejected", "entity", entity.Name)
		case graphapi.OutcomeServerError:
			stats.Failed++
			stats.ServerErrors++
			d.logger.Error("delete failed after retries", "entity", entity.Name, "attempts", attempts)
		case graphapi.OutcomeNetworkError:
			stats.Failed++
			stats.NetworkErrors++
			d.logger.Error("delete unreachable after retries", "entity", entity.Name, "attempts", attempts)
		}

		d.Recorder.Record(entity.Name, nil, entity.Type, string(outcome), "", 0, attempts)
	}

	d.logger.Info("cleanup complete",
		"total", stats.Total,
		"deleted", stats.Deleted,
		"not_found", stats.NotFound,
		"failed", stats.Failed)

	return stats
}

// deleteWithRetry issues the delete, retrying only transient outcomes with
// exponential backoff.
func (d *Deleter) deleteWithRetry(ctx context.Context, name string) (graphapi.Outcome, int) {
	var outcome graphapi.Outcome
	attempts := 0
	for retry := 0; retry <= d.maxRetries; retry++ {
		attempts++
		var err error
		outcome, err = d.api.DeleteEntity(ctx, name)
		if err == nil || !outcome.Retryable() {
			return outcome, attempts
		}

		if retry < d.maxRetries {
			backoff := time.Duration(1<<uint(retry)) * time.Second
			d.logger.Warn("delete failed, retrying",
				"entity", name,
				"retry", retry+1,
				"max_retries", d.maxRetries,
				"backoff", backoff,
				"error", err)
			d.sleep(backoff)
		}
	}
	return outcome, attempts
}
