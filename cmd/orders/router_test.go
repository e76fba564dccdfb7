package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swaggo/swag"

	"go-market/docs/swagger"
	catalogapp "go-market/internal/catalog/application"
	cataloghttp "go-market/internal/catalog/infrastructure"
	"go-market/internal/orders/application"
	"go-market/internal/orders/infrastructure"
	"go-market/internal/orders/ordertest"
	"go-market/internal/orders/ports"
	"go-market/pkg/logger"
	"go-market/pkg/metrics"
	"go-market/pkg/middleware"
)

var jwtSecret = []byte("router-test-secret")

type routerFixture struct {
	router  *gin.Engine
	userID  string
	profile uuid.UUID
}

func newRouterFixture(t *testing.T, burst int) *routerFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	f := &routerFixture{userID: "user-1", profile: uuid.New()}
	profiles := ordertest.NewProfiles(ports.ProfileInfo{ID: f.profile, UserID: f.userID})
	log := logger.NewNop()
	uc := application.NewOrderUseCase(ordertest.NewStore(), profiles, ordertest.NewGateway(), &ordertest.Publisher{}, application.Config{
		TransactionFeeRate: decimal.RequireFromString("0.05"),
	}, log)

	f.router = newRouter(routerConfig{
		orders:    infrastructure.NewHTTPHandler(uc, "whsec_router", log),
		catalog:   cataloghttp.NewHTTPHandler(catalogapp.NewCatalogUseCase(nil, nil, nil, log)),
		verifier:  profiles,
		jwtSecret: jwtSecret,
		limiter:   middleware.NewRateLimiter(0.001, burst),
		metrics:   metrics.NewServerMetrics(prometheus.NewRegistry(), "orders"),
	}, log)
	return f
}

func (f *routerFixture) listOrders(t *testing.T) int {
	t.Helper()
	token, err := middleware.IssueToken(jwtSecret, f.userID, time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set(middleware.ProfileHeader, f.profile.String())
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w.Code
}

func (f *routerFixture) postWebhook() int {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/webhook/confirm-payment", strings.NewReader(`{"id":"evt_1"}`))
	req.Header.Set("Stripe-Signature", "t=1,v1=deadbeef")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w.Code
}

func TestRouter_RateLimitsAuthenticatedRoutes(t *testing.T) {
	f := newRouterFixture(t, 1)

	assert.Equal(t, http.StatusOK, f.listOrders(t))
	assert.Equal(t, http.StatusTooManyRequests, f.listOrders(t))
}

func TestRouter_WebhookBypassesRateLimit(t *testing.T) {
	f := newRouterFixture(t, 1)

	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusUnauthorized, f.postWebhook(), "attempt %d", i+1)
	}
	// Webhook traffic does not use up the callers' budget either.
	assert.Equal(t, http.StatusOK, f.listOrders(t))
}

func TestRouter_RejectsMissingToken(t *testing.T) {
	f := newRouterFixture(t, 10)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRouter_EveryAPIRouteIsDocumented(t *testing.T) {
	f := newRouterFixture(t, 10)

	raw, err := swag.ReadDoc(swagger.OrdersInfo.InstanceName())
	require.NoError(t, err)
	var doc struct {
		Paths map[string]map[string]json.RawMessage `json:"paths"`
	}
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))

	param := regexp.MustCompile(`:(\w+)`)
	documented := 0
	for _, route := range f.router.Routes() {
		if !strings.HasPrefix(route.Path, "/api/v1/") {
			continue
		}
		path := param.ReplaceAllString(route.Path, "{$1}")
		_, ok := doc.Paths[path][strings.ToLower(route.Method)]
		assert.True(t, ok, "%s %s is not documented", route.Method, path)
		documented++
	}
	assert.Equal(t, 23, documented)
}
