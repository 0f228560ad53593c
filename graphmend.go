package graphmend

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/soundprediction/graphmend/pkg/catalog"
	"github.com/soundprediction/graphmend/pkg/checkpoint"
	"github.com/soundprediction/graphmend/pkg/config"
	"github.com/soundprediction/graphmend/pkg/dedupe"
	"github.com/soundprediction/graphmend/pkg/driver"
	"github.com/soundprediction/graphmend/pkg/executor"
	"github.com/soundprediction/graphmend/pkg/graphapi"
	"github.com/soundprediction/graphmend/pkg/plan"
	"github.com/soundprediction/graphmend/pkg/telemetry"
	"github.com/soundprediction/graphmend/pkg/types"
)

// Client composes the entity-resolution pipeline: catalog reads from the
// graph store, duplicate grouping, plan persistence, and plan execution
// against the mutation API.
type Client struct {
	cfg     *config.Config
	logger  *slog.Logger
	api     graphapi.API
	store   *plan.Store
	grouper *dedupe.Grouper

	// newDriver is swappable in tests. The graph connection is opened and
	// closed within each read phase rather than held for the process
	// lifetime.
	newDriver func() (driver.GraphDriver, error)
}

// NewClient creates a pipeline client from configuration. No connection is
// opened until a read operation runs.
func NewClient(cfg *config.Config, logger *slog.Logger) (*Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	var api graphapi.API = graphapi.NewClient(
		cfg.API.URL,
		time.Duration(cfg.API.TimeoutSeconds)*time.Second,
		logger,
	)
	if cfg.CircuitBreaker.Enabled {
		api = graphapi.NewBreakerClient(api, graphapi.BreakerSettings{
			MaxRequests:      cfg.CircuitBreaker.MaxRequests,
			Interval:         cfg.CircuitBreaker.Interval,
			Timeout:          cfg.CircuitBreaker.Timeout,
			ReadyToTripRatio: cfg.CircuitBreaker.ReadyToTripRatio,
		}, logger)
	}

	return &Client{
		cfg:     cfg,
		logger:  logger,
		api:     api,
		store:   plan.NewStore(cfg.Output.Dir, cfg.Output.Subject, logger),
		grouper: dedupe.NewGrouper(logger),
		newDriver: func() (driver.GraphDriver, error) {
			return driver.NewNeo4jDriver(
				cfg.Database.URI,
				cfg.Database.Username,
				cfg.Database.Password,
				cfg.Database.Database,
			)
		},
	}, nil
}

// IdentifyOptions selects the entity universe and grouping behavior for a
// duplicate-identification run.
type IdentifyOptions struct {
	// NamePattern and TypePattern restrict the universe by regex. When both
	// are empty the full universe (optionally limited to EntityTypes) is
	// fetched.
	NamePattern string
	TypePattern string
	// EntityTypes limits the universe to the listed types. Ignored when
	// AllTypes is set.
	EntityTypes []string
	AllTypes    bool

	CrossTypes     bool
	PreferredTypes []string

	// TaxonomyPath points at a canonical taxonomy document. When set, the
	// universe is whitelisted against it and its names and types are
	// authoritative.
	TaxonomyPath string

	// DryRun reports the operations without writing a plan file.
	DryRun bool
}

// IdentifyDuplicates fetches the entity universe, groups duplicates, and
// writes a reviewable merge plan. It returns the operations and the plan
// path (empty in dry-run mode).
func (c *Client) IdentifyDuplicates(ctx context.Context, opts IdentifyOptions) ([]types.MergeOperation, string, error) {
	var canonical *catalog.CanonicalSet
	if opts.TaxonomyPath != "" {
		var err error
		canonical, err = catalog.LoadCanonicalSet(opts.TaxonomyPath)
		if err != nil {
			return nil, "", err
		}
		c.logger.Info("loaded canonical taxonomy",
			"path", opts.TaxonomyPath,
			"entries", canonical.Len())
	}

	entities, err := c.fetchUniverse(ctx, opts, canonical)
	if err != nil {
		return nil, "", err
	}
	c.logger.Info("fetched entity universe", "entities", len(entities))

	ops := c.grouper.Group(entities, dedupe.Options{
		CrossTypes:     opts.CrossTypes,
		PreferredTypes: opts.PreferredTypes,
		Canonical:      canonical,
	})
	c.logger.Info("identified duplicate groups", "operations", len(ops))

	if opts.DryRun {
		return ops, "", nil
	}

	path, err := c.store.SaveOperations(ops)
	if err != nil {
		return nil, "", err
	}
	return ops, path, nil
}

// IdentifyFromTaxonomy identifies duplicates among entities whose names
// appear in a canonical taxonomy, merging across entity types. The taxonomy
// decides canonical names and types.
func (c *Client) IdentifyFromTaxonomy(ctx context.Context, taxonomyPath string, dryRun bool) ([]types.MergeOperation, string, error) {
	return c.IdentifyDuplicates(ctx, IdentifyOptions{
		TaxonomyPath: taxonomyPath,
		CrossTypes:   true,
		DryRun:       dryRun,
	})
}

func (c *Client) fetchUniverse(ctx context.Context, opts IdentifyOptions, canonical *catalog.CanonicalSet) ([]types.Entity, error) {
	d, err := c.newDriver()
	if err != nil {
		return nil, err
	}
	defer d.Close(ctx)

	if err := d.VerifyConnectivity(ctx); err != nil {
		return nil, err
	}

	reader := catalog.NewReader(d, c.logger)
	switch {
	case canonical != nil:
		return reader.FetchByWhitelist(ctx, canonical)
	case opts.NamePattern != "" || opts.TypePattern != "":
		return reader.FetchFiltered(ctx, driver.EntityFilter{
			NamePattern: opts.NamePattern,
			TypePattern: opts.TypePattern,
			Types:       opts.EntityTypes,
		})
	case opts.AllTypes:
		return reader.FetchAll(ctx, nil)
	default:
		return reader.FetchAll(ctx, opts.EntityTypes)
	}
}

// ExtractEntities fetches entities matching the given patterns and writes
// them to an extract artifact for review before deletion. The path is empty
// in dry-run mode.
func (c *Client) ExtractEntities(ctx context.Context, namePattern, typePattern string, dryRun bool) ([]types.Entity, string, error) {
	d, err := c.newDriver()
	if err != nil {
		return nil, "", err
	}
	defer d.Close(ctx)

	if err := d.VerifyConnectivity(ctx); err != nil {
		return nil, "", err
	}

	reader := catalog.NewReader(d, c.logger)
	entities, err := reader.FetchFiltered(ctx, driver.EntityFilter{
		NamePattern: namePattern,
		TypePattern: typePattern,
	})
	if err != nil {
		return nil, "", err
	}
	c.logger.Info("extracted entities", "count", len(entities))

	if dryRun {
		return entities, "", nil
	}

	path, err := c.store.SaveEntities(entities)
	if err != nil {
		return nil, "", err
	}
	return entities, path, nil
}

// ExecuteOptions tunes a merge run.
type ExecuteOptions struct {
	BatchSize     int
	RetryAttempts int
	DryRun        bool
	// Resume skips operations already recorded in the checkpoint store.
	Resume bool
}

// ExecutePlan loads and validates a plan file, executes it, and writes the
// report. The report path is empty in dry-run mode.
func (c *Client) ExecutePlan(ctx context.Context, planPath string, opts ExecuteOptions) (*types.MergeReport, string, error) {
	ops, err := plan.LoadOperations(planPath)
	if err != nil {
		return nil, "", err
	}
	c.logger.Info("loaded merge plan", "path", planPath, "operations", len(ops))

	execOpts := executor.Options{
		BatchSize: c.cfg.Execution.BatchSize,
		OpDelay:   time.Duration(c.cfg.Execution.OpDelayMillis) * time.Millisecond,
		Retry: executor.RetryPolicy{
			MaxAttempts:   c.cfg.Execution.RetryAttempts,
			InitialDelay:  time.Duration(c.cfg.Execution.InitialDelayMS) * time.Millisecond,
			BackoffFactor: c.cfg.Execution.BackoffFactor,
		},
		DryRun: opts.DryRun,
	}
	if opts.BatchSize > 0 {
		execOpts.BatchSize = opts.BatchSize
	}
	if opts.RetryAttempts > 0 {
		execOpts.Retry.MaxAttempts = opts.RetryAttempts
	}

	exec := executor.NewMergeExecutor(c.api, execOpts, c.logger)

	if (opts.Resume || c.cfg.Checkpoint.Enabled) && !opts.DryRun {
		store, err := checkpoint.Open(c.cfg.Checkpoint.Dir, c.logger)
		if err != nil {
			return nil, "", err
		}
		defer store.Close()
		exec.Checkpoints = store
	}

	if c.cfg.Telemetry.Dir != "" && !opts.DryRun {
		recorder, err := telemetry.NewRecorder(c.cfg.Telemetry.Dir, c.cfg.Output.Subject, c.logger)
		if err != nil {
			return nil, "", err
		}
		defer func() {
			if err := recorder.Close(); err != nil {
				c.logger.Warn("failed to flush telemetry", "error", err)
			}
		}()
		exec.Recorder = recorder
	}

	report, err := exec.Execute(ctx, ops)
	if err != nil {
		return nil, "", err
	}

	if opts.DryRun {
		return report, "", nil
	}

	reportPath, err := c.store.SaveReport(report)
	if err != nil {
		return report, "", err
	}
	return report, reportPath, nil
}

// DeleteEntities loads an extract artifact and deletes every listed entity
// through the mutation API.
func (c *Client) DeleteEntities(ctx context.Context, extractPath string, maxRetries int, dryRun bool) (*types.DeleteStats, error) {
	entities, err := plan.LoadEntities(extractPath)
	if err != nil {
		return nil, err
	}
	c.logger.Info("loaded entity list", "path", extractPath, "entities", len(entities))

	if maxRetries < 0 {
		maxRetries = c.cfg.Execution.DeleteRetries
	}
	deleter := executor.NewDeleter(c.api, maxRetries, c.logger)
	return deleter.Delete(ctx, entities, dryRun), nil
}

// Close releases client resources. Read connections are scoped to each
// operation, so there is nothing long-lived to tear down today; the method
// exists so callers do not depend on that detail.
func (c *Client) Close(context.Context) error {
	return nil
}
