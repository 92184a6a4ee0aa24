package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/isirwatch/backend/internal/subscriptions"
	"github.com/isirwatch/backend/pkg/db/models"
	"github.com/isirwatch/backend/pkg/logger"
)

func newTestRouter(t *testing.T) chi.Router {
	t.Helper()

	dsn := "file:controllers_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Insolvency{}))

	svc, err := subscriptions.NewService(subscriptions.ServiceParams{
		Store: subscriptions.NewRepository(db),
	})
	require.NoError(t, err)

	logg := logger.New(logger.Options{ServiceName: "controllers-test"})
	r := chi.NewRouter()
	r.Route("/v1/subscriptions", func(r chi.Router) {
		r.Get("/", SubscriptionsList(svc, logg))
		r.Post("/", SubscriptionsCreate(svc, logg))
		r.Post("/import", SubscriptionsImport(svc, logg))
		r.Get("/{id}", SubscriptionsGet(svc, logg))
		r.Delete("/{id}", SubscriptionsDelete(svc, logg))
	})
	return r
}

func doJSON(t *testing.T, router http.Handler, method, path string, userID string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if userID != "" {
		req.Header.Set("X-User-Id", userID)
	}
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestSubscriptionsCreateAndList(t *testing.T) {
	router := newTestRouter(t)
	user := uuid.NewString()

	rec := doJSON(t, router, http.MethodPost, "/v1/subscriptions/", user, map[string]any{
		"description": "klient A",
		"number":      1234,
		"year":        2026,
		"detailed":    true,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = doJSON(t, router, http.MethodGet, "/v1/subscriptions/", user, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var envelope struct {
		Data subscriptions.SubscriptionsPageDTO `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data.Items, 1)
	assert.Equal(t, "klient A", envelope.Data.Items[0].Desc)
	assert.Empty(t, envelope.Data.NextCursor)

	// another user sees an empty list
	rec = doJSON(t, router, http.MethodGet, "/v1/subscriptions/", uuid.NewString(), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	envelope.Data = subscriptions.SubscriptionsPageDTO{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Empty(t, envelope.Data.Items)
}

func TestSubscriptionsCreateValidation(t *testing.T) {
	router := newTestRouter(t)

	// missing user header
	rec := doJSON(t, router, http.MethodPost, "/v1/subscriptions/", "", map[string]any{
		"description": "x", "number": 1, "year": 2026,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// invalid body
	rec = doJSON(t, router, http.MethodPost, "/v1/subscriptions/", uuid.NewString(), map[string]any{
		"description": "", "number": 0, "year": 1999,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSubscriptionsDelete(t *testing.T) {
	router := newTestRouter(t)
	user := uuid.NewString()

	rec := doJSON(t, router, http.MethodPost, "/v1/subscriptions/", user, map[string]any{
		"description": "klient A", "number": 1, "year": 2026,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created struct {
		Data models.Insolvency `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	// a stranger cannot delete it
	rec = doJSON(t, router, http.MethodDelete, "/v1/subscriptions/1", uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, router, http.MethodDelete, "/v1/subscriptions/1", user, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/v1/subscriptions/1", user, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSubscriptionsImport(t *testing.T) {
	router := newTestRouter(t)
	user := uuid.NewString()

	rec := doJSON(t, router, http.MethodPost, "/v1/subscriptions/import", user, map[string]any{
		"subscriptions": []map[string]any{
			{"description": "klient A", "number": 1, "year": 2026},
			{"description": "", "number": 2, "year": 2026},
			{"description": "klient B", "number": 3, "year": 2026},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var envelope struct {
		Data subscriptions.ImportResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, 2, envelope.Data.Created)
	assert.Contains(t, envelope.Data.Skipped, 1)
}
