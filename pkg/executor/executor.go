package executor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/soundprediction/graphmend/pkg/checkpoint"
	"github.com/soundprediction/graphmend/pkg/graphapi"
	"github.com/soundprediction/graphmend/pkg/telemetry"
	"github.com/soundprediction/graphmend/pkg/types"
)

// Options tunes a merge run.
type Options struct {
	// BatchSize groups operations for progress logging. Execution is
	// strictly sequential either way.
	BatchSize int
	// OpDelay is the pause between operations so the API is not hammered.
	OpDelay time.Duration
	Retry   RetryPolicy
	DryRun  bool
}

func (o Options) withDefaults() Options {
	if o.BatchSize <= 0 {
		o.BatchSize = 10
	}
	if o.OpDelay <= 0 {
		o.OpDelay = 500 * time.Millisecond
	}
	return o
}

// MergeExecutor drives a reviewed merge plan against the graph API, one
// operation at a time. A single failed operation never aborts the run;
// failures surface in the final report.
type MergeExecutor struct {
	api    graphapi.API
	opts   Options
	logger *slog.Logger

	// Checkpoints, when set, lets a re-run skip operations that were already
	// applied. Failed operations are never checkpointed and always re-run.
	Checkpoints *checkpoint.Store
	// Recorder, when set, captures one telemetry record per operation.
	Recorder *telemetry.Recorder

	sleep func(time.Duration)
}

// NewMergeExecutor creates an executor over the given API client.
func NewMergeExecutor(api graphapi.API, opts Options, logger *slog.Logger) *MergeExecutor {
	if logger == nil {
		logger = slog.Default()
	}
	return &MergeExecutor{
		api:    api,
		opts:   opts.withDefaults(),
		logger: logger,
		sleep:  time.Sleep,
	}
}

// Execute runs every operation in the plan and returns the aggregated
// report. In dry-run mode no API call is made and every operation is
// reported as dry_run.
func (e *MergeExecutor) Execute(ctx context.Context, ops []types.MergeOperation) (*types.MergeReport, error) {
	report := &types.MergeReport{
		RunID: e.Recorder.RunID(),
		Total: len(ops),
	}

	digest := ""
	if e.Checkpoints != nil {
		digest = checkpoint.PlanDigest(ops)
		applied, err := e.Checkpoints.AppliedCount(digest)
		if err != nil {
			return nil, err
		}
		if applied > 0 {
			e.logger.Info("resuming plan with existing checkpoints",
				"applied", applied,
				"total", len(ops))
		}
	}

	for start := 0; start < len(ops); start += e.opts.BatchSize {
		end := start + e.opts.BatchSize
		if end > len(ops) {
			end = len(ops)
		}
		e.logger.Info("processing batch",
			"batch", start/e.opts.BatchSize+1,
			"operations", end-start)

		for i := start; i < end; i++ {
			result := e.executeOne(ctx, ops[i], digest, i)
			report.Add(result)
		}
	}

	e.logger.Info("merge run complete",
		"total", report.Total,
		"successful", report.Successful,
		"failed", report.Failed,
		"skipped", report.Skipped,
		"renamed", report.EntitiesRenamed())

	return report, nil
}

func (e *MergeExecutor) executeOne(ctx context.Context, op types.MergeOperation, digest string, index int) types.OperationResult {
	result := types.OperationResult{
		EntityToChangeInto: op.EntityToChangeInto,
		EntitiesToChange:   op.EntitiesToChange,
		EntityType:         op.EntityType,
		NormalizedName:     op.NormalizedName,
	}

	if e.Checkpoints != nil {
		if status, ok, err := e.Checkpoints.Applied(digest, index); err != nil {
			e.logger.Warn("checkpoint read failed, executing anyway", "index", index, "error", err)
		} else if ok && status != types.StatusFailed {
			// A recorded failure was never applied; the operation runs again.
			result.Status = types.StatusSkipped
			result.Message = fmt.Sprintf("already applied in a previous run (status: %s)", status)
			e.logger.Info("skipping checkpointed operation",
				"survivor", op.EntityToChangeInto,
				"previous_status", string(status))
			return result
		}
	}

	if e.opts.DryRun {
		msg := fmt.Sprintf("DRY RUN: would merge %v -> %q", op.EntitiesToChange, op.EntityToChangeInto)
		if op.NormalizedName != "" && op.NormalizedName != op.EntityToChangeInto {
			msg += fmt.Sprintf(" and rename to %q", op.NormalizedName)
		}
		e.logger.Info(msg, "entity_type", op.EntityType)
		result.Status = types.StatusDryRun
		result.Message = "Dry run - not executed"
		return result
	}

	var mergeResult *graphapi.MergeResult
	attempts, err := e.opts.Retry.Do(e.logger, e.sleep, func() (bool, error) {
		var callErr error
		mergeResult, callErr = e.api.MergeEntities(ctx, op.EntitiesToChange, op.EntityToChangeInto)
		if callErr == nil {
			return false, nil
		}
		return mergeResult != nil && mergeResult.Outcome.Retryable(), callErr
	})

	switch {
	case err == nil:
		result.Status = types.StatusSuccess
		result.Message = mergeResult.Message
		result.RelationshipsTransferred = mergeResult.RelationshipsTransferred
		e.logger.Info("merged entities",
			"survivor", op.EntityToChangeInto,
			"merged", len(op.EntitiesToChange),
			"entity_type", op.EntityType,
			"relationships_transferred", result.RelationshipsTransferred)
		e.maybeRename(ctx, op, &result)

	case mergeResult != nil && mergeResult.Outcome == graphapi.OutcomeNotFound:
		// The source entities are already gone, which is exactly the state
		// this operation was meant to produce.
		result.Status = types.StatusSkipped
		result.Message = fmt.Sprintf("entities not found, already merged or deleted: %v", err)
		e.logger.Info("skipping operation, entities not found",
			"survivor", op.EntityToChangeInto)

	default:
		result.Status = types.StatusFailed
		result.Message = err.Error()
		e.logger.Error("merge failed",
			"survivor", op.EntityToChangeInto,
			"entities", op.EntitiesToChange,
			"attempts", attempts,
			"error", err)
	}

	// Only applied states checkpoint. A failed operation must be retried by
	// the next run, not skipped as done.
	if e.Checkpoints != nil && result.Status != types.StatusFailed {
		if err := e.Checkpoints.MarkApplied(digest, index, result.Status); err != nil {
			e.logger.Warn("failed to record checkpoint", "index", index, "error", err)
		}
	}

	e.Recorder.Record(op.EntityToChangeInto, op.EntitiesToChange, op.EntityType,
		string(result.Status), result.Message, result.RelationshipsTransferred, attempts)

	e.sleep(e.opts.OpDelay)
	return result
}

// maybeRename updates the surviving entity to its canonical display name and
// type. A rename failure is reported but never downgrades the merge verdict.
func (e *MergeExecutor) maybeRename(ctx context.Context, op types.MergeOperation, result *types.OperationResult) {
	if op.NormalizedName == "" || op.NormalizedName == op.EntityToChangeInto {
		return
	}

	var editResult *graphapi.EditResult
	_, err := e.opts.Retry.Do(e.logger, e.sleep, func() (bool, error) {
		var callErr error
		editResult, callErr = e.api.EditEntity(ctx, op.EntityToChangeInto, op.NormalizedName, op.EntityType)
		if callErr == nil {
			return false, nil
		}
		return editResult != nil && editResult.Outcome.Retryable(), callErr
	})

	if err != nil {
		result.EntityUpdated = false
		result.UpdateMessage = fmt.Sprintf("Update failed: %v", err)
		e.logger.Warn("failed to rename surviving entity",
			"from", op.EntityToChangeInto,
			"to", op.NormalizedName,
			"error", err)
		return
	}

	result.EntityUpdated = true
	result.UpdateMessage = editResult.Message
	e.logger.Info("renamed surviving entity",
		"from", op.EntityToChangeInto,
		"to", op.NormalizedName,
		"entity_type", op.EntityType)
}
