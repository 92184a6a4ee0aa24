package reconcile

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/isirwatch/backend/pkg/db/models"
)

// Repository exposes the entity-graph persistence operations. Every upsert is
// idempotent by the entity's natural key.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a reconciliation repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// UpsertCase loads or creates the case identified by (court, number, year).
// firstSeen becomes the first-action date only when the row is created.
func (r *Repository) UpsertCase(ctx context.Context, court string, number, year int, firstSeen time.Time) (*models.Vec, error) {
	var vec models.Vec
	err := r.db.WithContext(ctx).
		Where(models.Vec{Court: court, Number: number, Year: year}).
		Attrs(models.Vec{FirstAction: &firstSeen}).
		FirstOrCreate(&vec).Error
	if err != nil {
		return nil, err
	}
	return &vec, nil
}

// SaveCase persists the case's mutable attributes.
func (r *Repository) SaveCase(ctx context.Context, vec *models.Vec) error {
	return r.db.WithContext(ctx).
		Model(vec).
		Select("first_action", "last_action", "struck_off", "state_kind_id", "senate", "link").
		Updates(vec).Error
}

// UpsertStateKind loads or creates the state lookup row for desc.
func (r *Repository) UpsertStateKind(ctx context.Context, desc string) (*models.StateKind, error) {
	var state models.StateKind
	err := r.db.WithContext(ctx).
		Where(models.StateKind{Desc: desc}).
		FirstOrCreate(&state).Error
	if err != nil {
		return nil, err
	}
	return &state, nil
}

// UpsertRoleKind loads or creates the role lookup row for desc.
func (r *Repository) UpsertRoleKind(ctx context.Context, desc string) (*models.RoleKind, error) {
	var role models.RoleKind
	err := r.db.WithContext(ctx).
		Where(models.RoleKind{Desc: desc}).
		FirstOrCreate(&role).Error
	if err != nil {
		return nil, err
	}
	return &role, nil
}

// UpsertPerson loads or creates the person identified by (court, personID)
// and overwrites all descriptive attributes with the given values.
func (r *Repository) UpsertPerson(ctx context.Context, osoba *models.Osoba) (*models.Osoba, error) {
	var existing models.Osoba
	err := r.db.WithContext(ctx).
		Where(models.Osoba{Court: osoba.Court, PersonID: osoba.PersonID}).
		FirstOrCreate(&existing).Error
	if err != nil {
		return nil, err
	}

	// last-write-wins: the newest event fully replaces the descriptive fields
	err = r.db.WithContext(ctx).
		Model(&existing).
		Select("name", "business_name", "given_name", "title_before", "title_after",
			"ico", "dic", "birth_date", "birth_id").
		Updates(map[string]any{
			"name":          osoba.Name,
			"business_name": osoba.BusinessName,
			"given_name":    osoba.GivenName,
			"title_before":  osoba.TitleBefore,
			"title_after":   osoba.TitleAfter,
			"ico":           osoba.ICO,
			"dic":           osoba.DIC,
			"birth_date":    osoba.BirthDate,
			"birth_id":      osoba.BirthID,
		}).Error
	if err != nil {
		return nil, err
	}
	return &existing, nil
}

// UpsertAddress loads or creates the address row matching the full tuple.
// Conditions are a map so that empty fields still participate in matching.
func (r *Repository) UpsertAddress(ctx context.Context, adresa *models.Adresa) (*models.Adresa, error) {
	var existing models.Adresa
	err := r.db.WithContext(ctx).
		Where(map[string]any{
			"kind":         adresa.Kind,
			"city":         adresa.City,
			"street":       adresa.Street,
			"house_number": adresa.HouseNumber,
			"district":     adresa.District,
			"country":      adresa.Country,
			"postal_code":  adresa.PostalCode,
			"phone":        adresa.Phone,
			"fax":          adresa.Fax,
			"text":         adresa.Text,
		}).
		FirstOrCreate(&existing).Error
	if err != nil {
		return nil, err
	}
	return &existing, nil
}

// AttachRole links the person to the case under the given role kind. Safe to
// call repeatedly.
func (r *Repository) AttachRole(ctx context.Context, vec *models.Vec, osoba *models.Osoba, kind *models.RoleKind) error {
	var role models.Role
	err := r.db.WithContext(ctx).
		Where(models.Role{OsobaID: osoba.ID, RoleKindID: kind.ID}).
		FirstOrCreate(&role).Error
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Model(vec).Association("Roles").Append(&role)
}

// DetachRole removes the person's role link from the case. A role that was
// never attached is a no-op.
func (r *Repository) DetachRole(ctx context.Context, vec *models.Vec, osoba *models.Osoba, kind *models.RoleKind) error {
	var role models.Role
	err := r.db.WithContext(ctx).
		Where(models.Role{OsobaID: osoba.ID, RoleKindID: kind.ID}).
		First(&role).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil
		}
		return err
	}
	return r.db.WithContext(ctx).Model(vec).Association("Roles").Delete(&role)
}

// AttachAddress links the address to the person. Safe to call repeatedly.
func (r *Repository) AttachAddress(ctx context.Context, osoba *models.Osoba, adresa *models.Adresa) error {
	return r.db.WithContext(ctx).Model(osoba).Association("Addresses").Append(adresa)
}

// DetachAddress unlinks the address from the person; the address row itself
// stays for other holders.
func (r *Repository) DetachAddress(ctx context.Context, osoba *models.Osoba, adresa *models.Adresa) error {
	return r.db.WithContext(ctx).Model(osoba).Association("Addresses").Delete(adresa)
}
