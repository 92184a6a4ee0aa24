package notices

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

// NewRepository constructs a notices repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// PendingForUser loads the user's tracked changes with their cases, oldest
// first so the digest reads chronologically.
func (r *Repository) PendingForUser(ctx context.Context, userID uuid.UUID) ([]models.Tracked, error) {
	var pending []models.Tracked
	err := r.db.WithContext(ctx).
		Preload("Vec").
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&pending).Error
	if err != nil {
		return nil, err
	}
	return pending, nil
}

// DeleteForUser removes all tracked changes for the user in one statement.
func (r *Repository) DeleteForUser(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.Tracked{}).Error
}

// UserIDsWithPending returns the distinct users that currently have at least
// one tracked change, for the digest worker's fan-out.
func (r *Repository) UserIDsWithPending(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&models.Tracked{}).
		Distinct("user_id").
		Pluck("user_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
