package infrastructure

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-market/internal/catalog/adapters"
	"go-market/internal/catalog/application"
	"go-market/internal/catalog/domain"
	"go-market/pkg/db/dbtest"
	"go-market/pkg/errors"
	"go-market/pkg/logger"
	"go-market/pkg/middleware"
)

// trustProfile stands in for Authenticate + RequireProfile
func trustProfile(c *gin.Context) {
	if id, err := uuid.Parse(c.GetHeader(middleware.ProfileHeader)); err == nil {
		c.Set(middleware.ProfileIDKey, id)
	}
	c.Next()
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	conn := dbtest.Open(t)
	items := adapters.NewGormItemRepository(conn)
	options := adapters.NewGormOptionsRepository(conn)
	delivery := adapters.NewGormDeliveryRepository(conn)
	require.NoError(t, items.Migrate())
	require.NoError(t, options.Migrate())
	require.NoError(t, delivery.Migrate())

	log := logger.NewNop()
	h := NewHTTPHandler(application.NewCatalogUseCase(items, options, delivery, log))

	router := gin.New()
	router.Use(middleware.TraceID(), middleware.ErrorHandler(log))
	h.RegisterRoutes(router.Group("/api/v1", trustProfile))
	return router
}

func do(t *testing.T, router *gin.Engine, method, path string, profile uuid.UUID, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.ProfileHeader, profile.String())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeItem(t *testing.T, w *httptest.ResponseRecorder) domain.Item {
	t.Helper()
	var resp struct {
		Data domain.Item `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Data
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp errors.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Error.Code
}

func createItem(t *testing.T, router *gin.Engine, owner uuid.UUID) domain.Item {
	t.Helper()
	w := do(t, router, http.MethodPost, "/api/v1/items", owner, `{"name":"Honey jar","price":"12.50","use_in_stock":true,"in_stock":3}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decodeItem(t, w)
}

func TestCreateItem(t *testing.T) {
	router := newTestRouter(t)
	owner := uuid.New()

	item := createItem(t, router, owner)

	assert.Equal(t, owner, item.OwnerProfileID)
	assert.Equal(t, "Honey jar", item.Name)
	assert.True(t, decimal.RequireFromString("12.50").Equal(item.Price))
	assert.Equal(t, 3, item.InStock)
	assert.True(t, item.Active)

	w := do(t, router, http.MethodGet, "/api/v1/items/"+item.ID.String(), uuid.New(), "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, item.ID, decodeItem(t, w).ID)
}

func TestCreateItem_Validation(t *testing.T) {
	router := newTestRouter(t)

	tests := []struct {
		name string
		body string
	}{
		{"missing name", `{"price":"10"}`},
		{"zero price", `{"name":"Honey jar","price":"0"}`},
		{"negative price", `{"name":"Honey jar","price":"-1"}`},
		{"negative stock", `{"name":"Honey jar","price":"10","use_in_stock":true,"in_stock":-1}`},
		{"bad discount bracket", `{"name":"Honey jar","price":"10","discount_brackets":[{"minimum_quantity":0,"price":"8"}]}`},
		{"bad currency", `{"name":"Honey jar","price":"10","item_options":{"accepted_payment_options":[{"kind":"card"}],"base_currency":"EURO"}}`},
		{"malformed json", `{"name":`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, router, http.MethodPost, "/api/v1/items", uuid.New(), tt.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, errors.CodeValidation, errorCode(t, w))
		})
	}
}

func TestSetItemActive_OwnerOnly(t *testing.T) {
	router := newTestRouter(t)
	owner := uuid.New()
	item := createItem(t, router, owner)
	path := "/api/v1/items/" + item.ID.String() + "/active"

	w := do(t, router, http.MethodPatch, path, uuid.New(), `{"active":false}`)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, errors.CodeForbidden, errorCode(t, w))

	w = do(t, router, http.MethodGet, "/api/v1/items/"+item.ID.String(), owner, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decodeItem(t, w).Active, "a rejected toggle must not change the item")

	w = do(t, router, http.MethodPatch, path, owner, `{"active":false}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.False(t, decodeItem(t, w).Active)
}

func TestSetItemActive_RequestErrors(t *testing.T) {
	router := newTestRouter(t)
	owner := uuid.New()
	item := createItem(t, router, owner)

	w := do(t, router, http.MethodPatch, "/api/v1/items/"+item.ID.String()+"/active", owner, `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code, "active is required")

	w = do(t, router, http.MethodPatch, "/api/v1/items/not-a-uuid/active", owner, `{"active":true}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, router, http.MethodPatch, "/api/v1/items/"+uuid.NewString()+"/active", owner, `{"active":true}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, errors.CodeNotFound, errorCode(t, w))
}

func TestListItems_HidesInactiveFromOthers(t *testing.T) {
	router := newTestRouter(t)
	owner := uuid.New()
	createItem(t, router, owner)
	hidden := createItem(t, router, owner)
	w := do(t, router, http.MethodPatch, "/api/v1/items/"+hidden.ID.String()+"/active", owner, `{"active":false}`)
	require.Equal(t, http.StatusOK, w.Code)

	count := func(caller uuid.UUID) int {
		w := do(t, router, http.MethodGet, "/api/v1/sellers/"+owner.String()+"/items", caller, "")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var resp struct {
			Data []domain.Item `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		return len(resp.Data)
	}

	assert.Equal(t, 2, count(owner))
	assert.Equal(t, 1, count(uuid.New()))
}
