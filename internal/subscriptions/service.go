// Package subscriptions manages user watch definitions for insolvency cases.
package subscriptions

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/isirwatch/backend/pkg/db/models"
	pkgerrors "github.com/isirwatch/backend/pkg/errors"
	"github.com/isirwatch/backend/pkg/pagination"
)

var validate = validator.New()

// Store is the persistence contract the service depends on.
type Store interface {
	Create(ctx context.Context, sub *models.Insolvency) (*models.Insolvency, error)
	ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) (SubscriptionsPageDTO, error)
	FindByID(ctx context.Context, userID uuid.UUID, id uint) (*models.Insolvency, error)
	Delete(ctx context.Context, userID uuid.UUID, id uint) (bool, error)
}

// ServiceParams carries the dependencies for NewService.
type ServiceParams struct {
	Store Store
}

// Service validates and stores subscriptions.
type Service struct {
	store Store
}

// NewService validates deps and returns a ready service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Store == nil {
		return nil, fmt.Errorf("subscriptions: store is required")
	}
	return &Service{store: params.Store}, nil
}

// Create validates and stores one subscription. Duplicate descriptions per
// user are allowed; the change tracker copes with any number of matches.
func (s *Service) Create(ctx context.Context, dto CreateSubscriptionDTO) (*models.Insolvency, error) {
	if err := validate.Struct(dto); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid subscription")
	}
	sub, err := s.store.Create(ctx, dto.ToModel())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "storing subscription")
	}
	return sub, nil
}

// List returns one page of the subscriptions owned by the user.
func (s *Service) List(ctx context.Context, userID uuid.UUID, params pagination.Params) (SubscriptionsPageDTO, error) {
	if _, err := pagination.ParseCursor(params.Cursor); err != nil {
		return SubscriptionsPageDTO{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	page, err := s.store.ListByUser(ctx, userID, params)
	if err != nil {
		return SubscriptionsPageDTO{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing subscriptions")
	}
	return page, nil
}

// Get loads one subscription owned by the user.
func (s *Service) Get(ctx context.Context, userID uuid.UUID, id uint) (*models.Insolvency, error) {
	sub, err := s.store.FindByID(ctx, userID, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "subscription not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading subscription")
	}
	return sub, nil
}

// Delete removes one subscription owned by the user.
func (s *Service) Delete(ctx context.Context, userID uuid.UUID, id uint) error {
	deleted, err := s.store.Delete(ctx, userID, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting subscription")
	}
	if !deleted {
		return pkgerrors.New(pkgerrors.CodeNotFound, "subscription not found")
	}
	return nil
}

// Import stores a batch of subscriptions, skipping invalid entries instead of
// failing the whole batch. The result reports each skipped position with its
// reason.
func (s *Service) Import(ctx context.Context, dtos []CreateSubscriptionDTO) (*ImportResult, error) {
	result := &ImportResult{Skipped: map[int]string{}}
	for i, dto := range dtos {
		if err := validate.Struct(dto); err != nil {
			result.Skipped[i] = err.Error()
			continue
		}
		if _, err := s.store.Create(ctx, dto.ToModel()); err != nil {
			return result, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "storing imported subscription")
		}
		result.Created++
	}
	if len(result.Skipped) == 0 {
		result.Skipped = nil
	}
	return result, nil
}
