package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"go-market/docs/swagger"
	cataloghttp "go-market/internal/catalog/infrastructure"
	"go-market/internal/orders/infrastructure"
	"go-market/pkg/logger"
	"go-market/pkg/metrics"
	"go-market/pkg/middleware"
)

// routerConfig carries everything the HTTP router mounts
type routerConfig struct {
	orders     *infrastructure.HTTPHandler
	catalog    *cataloghttp.HTTPHandler
	verifier   middleware.ProfileVerifier
	jwtSecret  []byte
	limiter    *middleware.RateLimiter
	idempotent []gin.HandlerFunc
	metrics    *metrics.ServerMetrics
}

// newRouter builds the HTTP API. The payment webhook is signed by the gateway
// and retried on failure, so it sits outside the rate limiter and the token check.
func newRouter(rc routerConfig, log *logger.Logger) *gin.Engine {
	router := gin.New()
	router.Use(middleware.TraceID())
	router.Use(middleware.RequestLogger(log))
	router.Use(middleware.ErrorHandler(log))
	router.Use(middleware.CORS())
	router.Use(rc.metrics.Middleware())

	api := router.Group("/api/v1")
	rc.orders.RegisterWebhook(api)

	authed := api.Group("",
		rc.limiter.Middleware(),
		middleware.Authenticate(rc.jwtSecret),
		middleware.RequireProfile(rc.verifier),
	)
	rc.orders.RegisterRoutes(authed, rc.idempotent...)
	rc.catalog.RegisterRoutes(authed)

	router.GET("/metrics", gin.WrapH(metrics.Handler()))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler,
		ginSwagger.InstanceName(swagger.OrdersInfo.InstanceName())))
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return router
}
