// Package reconcile merges parsed registry events into the persistent
// case/person/role/address entity graph.
package reconcile

import (
	"context"
	"fmt"
	"time"

	"github.com/isirwatch/backend/internal/events"
	"github.com/isirwatch/backend/pkg/db/models"
)

// Store is the persistence contract the reconciler depends on. Implemented by
// Repository; kept narrow so tests can substitute a fake.
type Store interface {
	UpsertCase(ctx context.Context, court string, number, year int, firstSeen time.Time) (*models.Vec, error)
	SaveCase(ctx context.Context, vec *models.Vec) error
	UpsertStateKind(ctx context.Context, desc string) (*models.StateKind, error)
	UpsertRoleKind(ctx context.Context, desc string) (*models.RoleKind, error)
	UpsertPerson(ctx context.Context, osoba *models.Osoba) (*models.Osoba, error)
	UpsertAddress(ctx context.Context, adresa *models.Adresa) (*models.Adresa, error)
	AttachRole(ctx context.Context, vec *models.Vec, osoba *models.Osoba, kind *models.RoleKind) error
	DetachRole(ctx context.Context, vec *models.Vec, osoba *models.Osoba, kind *models.RoleKind) error
	AttachAddress(ctx context.Context, osoba *models.Osoba, adresa *models.Adresa) error
	DetachAddress(ctx context.Context, osoba *models.Osoba, adresa *models.Adresa) error
}

// ReconcilerParams carries the dependencies for NewReconciler.
type ReconcilerParams struct {
	Store Store
}

// Reconciler applies parsed events to the entity graph. Re-applying the same
// event content is safe; every mutation is an upsert by natural key.
type Reconciler struct {
	store Store
}

// NewReconciler validates deps and returns a ready reconciler.
func NewReconciler(params ReconcilerParams) (*Reconciler, error) {
	if params.Store == nil {
		return nil, fmt.Errorf("reconcile: store is required")
	}
	return &Reconciler{store: params.Store}, nil
}

// Apply merges one event into the graph and returns the affected case. Facts
// are applied case first, then person, then address, since the later groups
// hang off the earlier ones. published is the feed's publication timestamp
// and drives the case's last-action date.
func (r *Reconciler) Apply(ctx context.Context, event *events.ParsedEvent, published time.Time) (*models.Vec, error) {
	if event == nil {
		return nil, fmt.Errorf("reconcile: event is required")
	}

	vec, err := r.store.UpsertCase(ctx, event.Court, event.Number, event.Year, published)
	if err != nil {
		return nil, fmt.Errorf("upserting case %s %d/%d: %w", event.Court, event.Number, event.Year, err)
	}
	if err := r.applyCaseFacts(ctx, vec, event.Case, published); err != nil {
		return nil, err
	}

	var osoba *models.Osoba
	if event.Person != nil {
		osoba, err = r.applyPersonFacts(ctx, vec, event.Person)
		if err != nil {
			return nil, err
		}
	}

	if event.Address != nil {
		if osoba == nil {
			return nil, fmt.Errorf("event for case %s %d/%d carries an address without a person", event.Court, event.Number, event.Year)
		}
		if err := r.applyAddressFacts(ctx, osoba, event.Address); err != nil {
			return nil, err
		}
	}

	return vec, nil
}

func (r *Reconciler) applyCaseFacts(ctx context.Context, vec *models.Vec, facts *events.CaseFacts, published time.Time) error {
	// last action only moves forward
	if vec.LastAction == nil || published.After(*vec.LastAction) {
		ts := published
		vec.LastAction = &ts
	}

	if facts != nil {
		if facts.State != "" {
			state, err := r.store.UpsertStateKind(ctx, facts.State)
			if err != nil {
				return fmt.Errorf("upserting state kind %q: %w", facts.State, err)
			}
			vec.StateKindID = &state.ID
		}
		if facts.StruckOff != nil {
			// an explicit strike-off date supersedes the running last action
			vec.StruckOff = facts.StruckOff
			vec.LastAction = facts.StruckOff
		}
	}

	if err := r.store.SaveCase(ctx, vec); err != nil {
		return fmt.Errorf("saving case %s %d/%d: %w", vec.Court, vec.Number, vec.Year, err)
	}
	return nil
}

func (r *Reconciler) applyPersonFacts(ctx context.Context, vec *models.Vec, facts *events.PersonFacts) (*models.Osoba, error) {
	osoba, err := r.store.UpsertPerson(ctx, &models.Osoba{
		Court:        facts.Court,
		PersonID:     facts.PersonID,
		Name:         facts.Name,
		BusinessName: facts.BusinessName,
		GivenName:    facts.GivenName,
		TitleBefore:  facts.TitleBefore,
		TitleAfter:   facts.TitleAfter,
		ICO:          facts.ICO,
		DIC:          facts.DIC,
		BirthDate:    facts.BirthDate,
		BirthID:      facts.BirthID,
	})
	if err != nil {
		return nil, fmt.Errorf("upserting person %s/%s: %w", facts.Court, facts.PersonID, err)
	}

	if facts.RoleKind == "" {
		return osoba, nil
	}
	kind, err := r.store.UpsertRoleKind(ctx, facts.RoleKind)
	if err != nil {
		return nil, fmt.Errorf("upserting role kind %q: %w", facts.RoleKind, err)
	}

	if facts.Detached {
		if err := r.store.DetachRole(ctx, vec, osoba, kind); err != nil {
			return nil, fmt.Errorf("detaching role %q from case: %w", facts.RoleKind, err)
		}
		return osoba, nil
	}
	if err := r.store.AttachRole(ctx, vec, osoba, kind); err != nil {
		return nil, fmt.Errorf("attaching role %q to case: %w", facts.RoleKind, err)
	}
	return osoba, nil
}

func (r *Reconciler) applyAddressFacts(ctx context.Context, osoba *models.Osoba, facts *events.AddressFacts) error {
	adresa, err := r.store.UpsertAddress(ctx, &models.Adresa{
		Kind:        facts.Kind,
		City:        facts.City,
		Street:      facts.Street,
		HouseNumber: facts.HouseNumber,
		District:    facts.District,
		Country:     facts.Country,
		PostalCode:  facts.PostalCode,
		Phone:       facts.Phone,
		Fax:         facts.Fax,
		Text:        facts.Text,
	})
	if err != nil {
		return fmt.Errorf("upserting address: %w", err)
	}

	if facts.Detached {
		if err := r.store.DetachAddress(ctx, osoba, adresa); err != nil {
			return fmt.Errorf("detaching address from person %s/%s: %w", osoba.Court, osoba.PersonID, err)
		}
		return nil
	}
	if err := r.store.AttachAddress(ctx, osoba, adresa); err != nil {
		return fmt.Errorf("attaching address to person %s/%s: %w", osoba.Court, osoba.PersonID, err)
	}
	return nil
}
