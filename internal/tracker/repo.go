package tracker

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/isirwatch/backend/pkg/db/models"
)

// Repository is the GORM-backed Store implementation.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a tracker repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// SubscriptionsForCase returns every subscription watching (number, year).
// Zero, one or many rows may match; descriptions are not assumed unique.
func (r *Repository) SubscriptionsForCase(ctx context.Context, number, year int) ([]models.Insolvency, error) {
	var subs []models.Insolvency
	err := r.db.WithContext(ctx).
		Where("number = ? AND year = ?", number, year).
		Find(&subs).Error
	if err != nil {
		return nil, err
	}
	return subs, nil
}

// EnsureTracked creates the pending-notification marker unless an identical
// one already exists.
func (r *Repository) EnsureTracked(ctx context.Context, userID uuid.UUID, desc string, vecID uint) error {
	var tracked models.Tracked
	return r.db.WithContext(ctx).
		Where(map[string]any{"user_id": userID, "description": desc, "vec_id": vecID}).
		FirstOrCreate(&tracked).Error
}
