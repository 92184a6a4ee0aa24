package subscriptions

import (
	"github.com/google/uuid"

	"github.com/isirwatch/backend/pkg/db/models"
)

// CreateSubscriptionDTO is one watch definition to store for a user. The
// register opened in 2008, so earlier filing years are rejected outright.
type CreateSubscriptionDTO struct {
	UserID   uuid.UUID `json:"user_id" validate:"required"`
	Desc     string    `json:"description" validate:"required,max=200"`
	Number   int       `json:"number" validate:"required,gt=0"`
	Year     int       `json:"year" validate:"required,gte=2008"`
	Detailed bool      `json:"detailed"`
}

// ToModel converts the DTO into the persistence model.
func (d CreateSubscriptionDTO) ToModel() *models.Insolvency {
	return &models.Insolvency{
		UserID:   d.UserID,
		Desc:     d.Desc,
		Number:   d.Number,
		Year:     d.Year,
		Detailed: d.Detailed,
	}
}

// SubscriptionsPageDTO is one page of a user's subscriptions plus the opaque
// cursor for the next page, empty on the last one.
type SubscriptionsPageDTO struct {
	Items      []models.Insolvency `json:"items"`
	NextCursor string              `json:"next_cursor,omitempty"`
}

// ImportResult summarizes a bulk import: how many rows were stored and which
// input lines were rejected, keyed by their zero-based position.
type ImportResult struct {
	Created int            `json:"created"`
	Skipped map[int]string `json:"skipped,omitempty"`
}
