package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/isirwatch/backend/api/responses"
	"github.com/isirwatch/backend/api/validators"
	"github.com/isirwatch/backend/internal/subscriptions"
	pkgerrors "github.com/isirwatch/backend/pkg/errors"
	"github.com/isirwatch/backend/pkg/logger"
	"github.com/isirwatch/backend/pkg/pagination"
)

// userIDHeader carries the authenticated user's id. Authentication itself
// happens in the upstream web layer; this service trusts the forwarded id.
const userIDHeader = "X-User-Id"

type subscriptionPayload struct {
	Desc     string `json:"description" validate:"required,max=200"`
	Number   int    `json:"number" validate:"required,gt=0"`
	Year     int    `json:"year" validate:"required,gte=2008"`
	Detailed bool   `json:"detailed"`
}

// importPayload entries are validated by the service, which skips bad rows
// instead of failing the whole batch.
type importPayload struct {
	Subscriptions []importEntry `json:"subscriptions" validate:"required,min=1,max=500"`
}

type importEntry struct {
	Desc     string `json:"description"`
	Number   int    `json:"number"`
	Year     int    `json:"year"`
	Detailed bool   `json:"detailed"`
}

func userIDFromRequest(r *http.Request) (uuid.UUID, error) {
	raw := strings.TrimSpace(r.Header.Get(userIDHeader))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "missing user id header")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid user id header")
	}
	return id, nil
}

// SubscriptionsList returns the caller's watch definitions.
func SubscriptionsList(svc *subscriptions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		userID, err := userIDFromRequest(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		limit := 0
		if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid limit"))
				return
			}
			limit = parsed
		}

		page, err := svc.List(ctx, userID, pagination.Params{
			Limit:  limit,
			Cursor: r.URL.Query().Get("cursor"),
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

// SubscriptionsCreate stores one new watch definition.
func SubscriptionsCreate(svc *subscriptions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		userID, err := userIDFromRequest(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload subscriptionPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		sub, err := svc.Create(ctx, subscriptions.CreateSubscriptionDTO{
			UserID:   userID,
			Desc:     payload.Desc,
			Number:   payload.Number,
			Year:     payload.Year,
			Detailed: payload.Detailed,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, sub)
	}
}

// SubscriptionsGet returns one watch definition owned by the caller.
func SubscriptionsGet(svc *subscriptions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		userID, err := userIDFromRequest(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		id, err := subscriptionIDFromURL(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		sub, err := svc.Get(ctx, userID, id)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, sub)
	}
}

// SubscriptionsDelete removes one watch definition owned by the caller.
func SubscriptionsDelete(svc *subscriptions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		userID, err := userIDFromRequest(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		id, err := subscriptionIDFromURL(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.Delete(ctx, userID, id); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// SubscriptionsImport stores a batch of watch definitions, reporting skipped
// entries instead of failing the batch.
func SubscriptionsImport(svc *subscriptions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		userID, err := userIDFromRequest(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload importPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		dtos := make([]subscriptions.CreateSubscriptionDTO, 0, len(payload.Subscriptions))
		for _, item := range payload.Subscriptions {
			dtos = append(dtos, subscriptions.CreateSubscriptionDTO{
				UserID:   userID,
				Desc:     item.Desc,
				Number:   item.Number,
				Year:     item.Year,
				Detailed: item.Detailed,
			})
		}

		result, err := svc.Import(ctx, dtos)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func subscriptionIDFromURL(r *http.Request) (uint, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "invalid subscription id")
	}
	return uint(id), nil
}
