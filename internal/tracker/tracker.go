// Package tracker turns reconciled case changes into pending per-user
// notification markers, filtered by subscription and event type.
package tracker

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/isirwatch/backend/pkg/db/models"
)

// serviceEventTypes are administrative feed events that never interest
// subscribers: re-publications, renumbering and similar registry
// housekeeping. They are dropped before any subscription lookup.
var serviceEventTypes = newStringSet(
	"39", "40", "62", "119", "146", "148",
)

// businessEventTypes are events tracked even for non-detailed subscriptions:
// filing, bankruptcy declaration, discharge rulings and the like. This set is
// independent of the service set above.
var businessEventTypes = newStringSet(
	"5", "8", "63", "97", "205", "491",
)

func newStringSet(values ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

// Store is the persistence contract the tracker depends on.
type Store interface {
	SubscriptionsForCase(ctx context.Context, number, year int) ([]models.Insolvency, error)
	EnsureTracked(ctx context.Context, userID uuid.UUID, desc string, vecID uint) error
}

// TrackerParams carries the dependencies for NewTracker.
type TrackerParams struct {
	Store Store
}

// Tracker records pending notifications for subscribed users.
type Tracker struct {
	store Store
}

// NewTracker validates deps and returns a ready tracker.
func NewTracker(params TrackerParams) (*Tracker, error) {
	if params.Store == nil {
		return nil, fmt.Errorf("tracker: store is required")
	}
	return &Tracker{store: params.Store}, nil
}

// NoteChange records a pending notification for every subscription matching
// the case, subject to the event-type filters. Called once per reconciled
// event; events without a section or type code carry no subscriber-visible
// change and are ignored. Recording is idempotent per (user, description,
// case).
func (t *Tracker) NoteChange(ctx context.Context, vec *models.Vec, eventType, section string) error {
	if vec == nil {
		return fmt.Errorf("tracker: case is required")
	}
	if eventType == "" || section == "" {
		return nil
	}
	if _, service := serviceEventTypes[eventType]; service {
		return nil
	}

	subs, err := t.store.SubscriptionsForCase(ctx, vec.Number, vec.Year)
	if err != nil {
		return fmt.Errorf("loading subscriptions for case %d/%d: %w", vec.Number, vec.Year, err)
	}

	_, business := businessEventTypes[eventType]
	for _, sub := range subs {
		if !sub.Detailed && !business {
			continue
		}
		if err := t.store.EnsureTracked(ctx, sub.UserID, sub.Desc, vec.ID); err != nil {
			return fmt.Errorf("tracking case %d/%d for user %s: %w", vec.Number, vec.Year, sub.UserID, err)
		}
	}
	return nil
}
