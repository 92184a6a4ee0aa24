// Package sync drives the recurring sync cycle against the insolvency
// register: supplement sweep, feed fetch, reconciliation, purge and cleanup.
package sync

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/isirwatch/backend/internal/events"
	"github.com/isirwatch/backend/internal/registry"
	"github.com/isirwatch/backend/pkg/courts"
	"github.com/isirwatch/backend/pkg/db/models"
	"github.com/isirwatch/backend/pkg/logger"
	"github.com/isirwatch/backend/pkg/metrics"
)

const (
	// cursor names in the counters table
	feedCursor       = "DL"
	supplementCursor = "PR"

	// case state marking a record the court entered by mistake
	erroneousStateMarker = "MYLNÝ ZÁP."

	// JobName identifies the cycle in cron logs and metrics.
	JobName = "isir-sync"
)

// RegistryClient is the remote-registry contract the cycle depends on.
type RegistryClient interface {
	FetchTransactions(ctx context.Context, fromID int64) ([]registry.RawTransaction, error)
	FetchCaseSupplement(ctx context.Context, number, year int) (*registry.Supplement, error)
}

// Applier merges one parsed event into the entity graph.
type Applier interface {
	Apply(ctx context.Context, event *events.ParsedEvent, published time.Time) (*models.Vec, error)
}

// ChangeTracker records pending notifications for a reconciled change.
type ChangeTracker interface {
	NoteChange(ctx context.Context, vec *models.Vec, eventType, section string) error
}

// Store is the persistence contract the cycle depends on. Implemented by
// Repository.
type Store interface {
	GetCursor(ctx context.Context, name string) (int64, error)
	SetCursor(ctx context.Context, name string, value int64) error
	InsertTransactions(ctx context.Context, rows []models.Transaction) error
	PendingTransactions(ctx context.Context) ([]models.Transaction, error)
	MarkErrored(ctx context.Context, id int64) error
	PurgeProcessed(ctx context.Context) (int64, error)
	CasesMissingLink(ctx context.Context) ([]models.Vec, error)
	SetCaseSupplement(ctx context.Context, vecID uint, senate *int, link string) error
	PurgeErroneousCases(ctx context.Context, marker string) (int64, error)
}

// CycleParams carries the dependencies for NewCycle.
type CycleParams struct {
	Logger   *logger.Logger
	Registry RegistryClient
	Store    Store
	Applier  Applier
	Tracker  ChangeTracker
	Metrics  *metrics.SyncMetrics
}

// Cycle is one full sync pass, run as a cron job. Phases are ordered but
// independent: a failed phase is reported without blocking the others, since
// each is idempotent and resumes from its own cursor next time.
type Cycle struct {
	logg     *logger.Logger
	registry RegistryClient
	store    Store
	applier  Applier
	tracker  ChangeTracker
	metrics  *metrics.SyncMetrics
}

// NewCycle validates deps and returns a runnable cycle.
func NewCycle(params CycleParams) (*Cycle, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("sync: logger is required")
	}
	if params.Registry == nil {
		return nil, fmt.Errorf("sync: registry client is required")
	}
	if params.Store == nil {
		return nil, fmt.Errorf("sync: store is required")
	}
	if params.Applier == nil {
		return nil, fmt.Errorf("sync: applier is required")
	}
	if params.Tracker == nil {
		return nil, fmt.Errorf("sync: tracker is required")
	}
	return &Cycle{
		logg:     params.Logger,
		registry: params.Registry,
		store:    params.Store,
		applier:  params.Applier,
		tracker:  params.Tracker,
		metrics:  params.Metrics,
	}, nil
}

// Name implements cron.Job.
func (c *Cycle) Name() string { return JobName }

// Run executes one full cycle: supplement sweep, feed fetch, reconciliation,
// purge of handled rows and cleanup of erroneous cases. Phase failures are
// collected and reported together.
func (c *Cycle) Run(ctx context.Context) error {
	var errs error
	if err := c.supplementSweep(ctx); err != nil {
		c.logg.Error(ctx, "supplement sweep failed", err)
		errs = multierr.Append(errs, fmt.Errorf("supplement sweep: %w", err))
	}
	if err := c.fetchFeed(ctx); err != nil {
		c.logg.Error(ctx, "feed fetch failed", err)
		errs = multierr.Append(errs, fmt.Errorf("feed fetch: %w", err))
	}
	if err := c.reconcilePending(ctx); err != nil {
		c.logg.Error(ctx, "reconciliation pass failed", err)
		errs = multierr.Append(errs, fmt.Errorf("reconciliation: %w", err))
	}
	if err := c.purgeProcessed(ctx); err != nil {
		c.logg.Error(ctx, "purge failed", err)
		errs = multierr.Append(errs, fmt.Errorf("purge: %w", err))
	}
	if err := c.cleanupErroneous(ctx); err != nil {
		c.logg.Error(ctx, "erroneous-case cleanup failed", err)
		errs = multierr.Append(errs, fmt.Errorf("cleanup: %w", err))
	}
	return errs
}

// supplementSweep visits every case still lacking its detail link, asks the
// supplement service for senate/link, and records the last case id considered
// in the "PR" cursor. A mismatched or empty lookup leaves the case for the
// next sweep; a transport failure aborts the phase without moving the cursor.
func (c *Cycle) supplementSweep(ctx context.Context) error {
	cases, err := c.store.CasesMissingLink(ctx)
	if err != nil {
		return fmt.Errorf("selecting cases without link: %w", err)
	}
	if len(cases) == 0 {
		return nil
	}

	var lastConsidered uint
	for _, vec := range cases {
		caseCtx := c.logg.WithCase(ctx, vec.Court, vec.Number, vec.Year)

		sup, err := c.registry.FetchCaseSupplement(ctx, vec.Number, vec.Year)
		if err != nil {
			return fmt.Errorf("supplement lookup for %s %d/%d: %w", vec.Court, vec.Number, vec.Year, err)
		}
		lastConsidered = vec.ID

		if sup == nil || sup.Count == 0 || sup.Link == "" {
			continue
		}
		court, known := courts.ByCode(vec.Court)
		if !known {
			c.logg.Warn(caseCtx, "case references an unknown court; leaving supplement unset")
			continue
		}
		if !sup.MatchesOrganization(court.Name) {
			c.logg.Warn(caseCtx, "supplement organization mismatch; leaving supplement unset")
			continue
		}

		if err := c.store.SetCaseSupplement(ctx, vec.ID, sup.Senate, sup.Link); err != nil {
			return fmt.Errorf("saving supplement for %s %d/%d: %w", vec.Court, vec.Number, vec.Year, err)
		}
		c.metrics.IncSupplementFilled()
	}

	if err := c.store.SetCursor(ctx, supplementCursor, int64(lastConsidered)); err != nil {
		return fmt.Errorf("advancing %s cursor: %w", supplementCursor, err)
	}
	return nil
}

// fetchFeed pulls feed batches starting after the "DL" cursor until the
// registry reports no more data. Each batch is persisted before the cursor
// advances, so a crash refetches at most one batch. A remote failure ends the
// loop for this cycle without failing the phase.
func (c *Cycle) fetchFeed(ctx context.Context) error {
	cursor, err := c.store.GetCursor(ctx, feedCursor)
	if err != nil {
		return fmt.Errorf("loading %s cursor: %w", feedCursor, err)
	}

	for {
		batch, err := c.registry.FetchTransactions(ctx, cursor+1)
		if err != nil {
			c.logg.Warn(c.logg.WithField(ctx, "cursor", cursor), "feed unavailable, ending fetch loop: "+err.Error())
			return nil
		}
		if len(batch) == 0 {
			return nil
		}

		rows := make([]models.Transaction, 0, len(batch))
		for _, raw := range batch {
			rows = append(rows, transactionFromRaw(raw))
			if raw.ID > cursor {
				cursor = raw.ID
			}
		}
		if err := c.store.InsertTransactions(ctx, rows); err != nil {
			return fmt.Errorf("persisting fetched batch: %w", err)
		}
		if err := c.store.SetCursor(ctx, feedCursor, cursor); err != nil {
			return fmt.Errorf("advancing %s cursor: %w", feedCursor, err)
		}
		c.metrics.AddFetched(len(rows))
	}
}

// reconcilePending parses and applies every un-errored raw row in id order.
// One bad row never aborts the pass: genuine failures flag the row and move
// on, benign skips leave it for the purge.
func (c *Cycle) reconcilePending(ctx context.Context) error {
	rows, err := c.store.PendingTransactions(ctx)
	if err != nil {
		return fmt.Errorf("selecting pending rows: %w", err)
	}

	for _, row := range rows {
		event, err := events.Parse(row.CaseRef, row.Note)
		if err != nil {
			c.flagRow(ctx, row.ID, err)
			continue
		}
		if event == nil {
			c.metrics.IncSkipped()
			continue
		}

		vec, err := c.applier.Apply(ctx, event, row.PublishedAt)
		if err != nil {
			c.flagRow(ctx, row.ID, err)
			continue
		}
		if err := c.tracker.NoteChange(ctx, vec, row.EventType, row.Section); err != nil {
			c.flagRow(ctx, row.ID, err)
			continue
		}
		c.metrics.IncApplied()
	}
	return nil
}

func (c *Cycle) flagRow(ctx context.Context, id int64, cause error) {
	c.logg.Error(c.logg.WithField(ctx, "transaction_id", id), "flagging transaction as erroneous", cause)
	c.metrics.IncErrored()
	if err := c.store.MarkErrored(ctx, id); err != nil {
		c.logg.Error(ctx, "failed to flag transaction", err)
	}
}

func (c *Cycle) purgeProcessed(ctx context.Context) error {
	purged, err := c.store.PurgeProcessed(ctx)
	if err != nil {
		return err
	}
	c.metrics.AddPurged(purged)
	return nil
}

func (c *Cycle) cleanupErroneous(ctx context.Context) error {
	removed, err := c.store.PurgeErroneousCases(ctx, erroneousStateMarker)
	if err != nil {
		return err
	}
	if removed > 0 {
		c.logg.Info(c.logg.WithField(ctx, "removed", removed), "purged erroneous cases")
	}
	return nil
}

func transactionFromRaw(raw registry.RawTransaction) models.Transaction {
	var docURL *string
	if raw.DocumentURL != "" {
		url := raw.DocumentURL
		docURL = &url
	}
	return models.Transaction{
		ID:          raw.ID,
		CreatedAt:   raw.Created,
		PublishedAt: raw.Published,
		DocumentURL: docURL,
		CaseRef:     raw.CaseRef,
		EventType:   raw.EventType,
		Description: raw.Description,
		Section:     raw.Section,
		SectionItem: raw.SectionItem,
		Note:        raw.Note,
	}
}
