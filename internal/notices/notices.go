// Package notices renders pending tracked changes into per-user plain-text
// digests and clears them once drained.
package notices

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/isirwatch/backend/pkg/courts"
	"github.com/isirwatch/backend/pkg/db/models"
)

const digestHeader = "V insolvenčním rejstříku došlo ke změnám u sledovaných řízení:\n\n"

// Store is the persistence contract the notifier depends on.
type Store interface {
	PendingForUser(ctx context.Context, userID uuid.UUID) ([]models.Tracked, error)
	DeleteForUser(ctx context.Context, userID uuid.UUID) error
}

// ServiceParams carries the dependencies for NewService.
type ServiceParams struct {
	Store Store
}

// Service drains tracked changes into notification digests.
type Service struct {
	store Store
}

// NewService validates deps and returns a ready notifier.
func NewService(params ServiceParams) (*Service, error) {
	if params.Store == nil {
		return nil, fmt.Errorf("notices: store is required")
	}
	return &Service{store: params.Store}, nil
}

// DigestForUser renders every pending tracked change for the user as one
// plain-text message and deletes the drained rows. Returns an empty string
// when there is nothing to report; a second call right after a drain is
// always empty.
func (s *Service) DigestForUser(ctx context.Context, userID uuid.UUID) (string, error) {
	pending, err := s.store.PendingForUser(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("loading tracked changes for user %s: %w", userID, err)
	}
	if len(pending) == 0 {
		return "", nil
	}

	var b strings.Builder
	b.WriteString(digestHeader)
	for _, tracked := range pending {
		b.WriteString(formatLine(tracked))
	}

	if err := s.store.DeleteForUser(ctx, userID); err != nil {
		return "", fmt.Errorf("clearing tracked changes for user %s: %w", userID, err)
	}
	return b.String(), nil
}

// formatLine renders one tracked change:
//
//	" - <description>, sp. zn. <court-short> <senate> INS <number>/<year>"
//
// with the description segment omitted when blank and the detail link, when
// known, indented on the following line.
func formatLine(tracked models.Tracked) string {
	vec := tracked.Vec

	short := vec.Court
	if court, ok := courts.ByCode(vec.Court); ok {
		short = court.Short
	}

	senate := 0
	if vec.Senate != nil {
		senate = *vec.Senate
	}

	var b strings.Builder
	b.WriteString(" - ")
	if tracked.Desc != "" {
		b.WriteString(tracked.Desc)
		b.WriteString(", ")
	}
	fmt.Fprintf(&b, "sp. zn. %s %d INS %d/%d\n", short, senate, vec.Number, vec.Year)
	if vec.Link != nil && *vec.Link != "" {
		b.WriteString("   ")
		b.WriteString(*vec.Link)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	return b.String()
}
