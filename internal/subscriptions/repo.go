package subscriptions

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/isirwatch/backend/pkg/db/models"
	"github.com/isirwatch/backend/pkg/pagination"
)

// Repository exposes subscription persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a subscriptions repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new subscription and returns the persisted model.
func (r *Repository) Create(ctx context.Context, sub *models.Insolvency) (*models.Insolvency, error) {
	if err := r.db.WithContext(ctx).Create(sub).Error; err != nil {
		return nil, err
	}
	return sub, nil
}

// ListByUser returns one page of the user's subscriptions, newest first.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) (SubscriptionsPageDTO, error) {
	normalizedLimit := pagination.NormalizeLimit(params.Limit)
	limitWithBuffer := pagination.LimitWithBuffer(params.Limit)
	cursor, err := pagination.ParseCursor(strings.TrimSpace(params.Cursor))
	if err != nil {
		return SubscriptionsPageDTO{}, err
	}

	query := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if cursor != nil {
		query = query.Where("id < ?", cursor.ID)
	}

	var subs []models.Insolvency
	if err := query.Order("id DESC").Limit(limitWithBuffer).Find(&subs).Error; err != nil {
		return SubscriptionsPageDTO{}, err
	}

	nextCursor := ""
	if len(subs) > normalizedLimit {
		subs = subs[:normalizedLimit]
		last := subs[len(subs)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{ID: last.ID})
	}
	return SubscriptionsPageDTO{Items: subs, NextCursor: nextCursor}, nil
}

// FindByID loads one subscription owned by the user.
func (r *Repository) FindByID(ctx context.Context, userID uuid.UUID, id uint) (*models.Insolvency, error) {
	var sub models.Insolvency
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// Delete removes one subscription owned by the user and reports whether a
// row was actually deleted.
func (r *Repository) Delete(ctx context.Context, userID uuid.UUID, id uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.Insolvency{})
	return res.RowsAffected > 0, res.Error
}
