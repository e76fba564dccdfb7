// Package main Market Orders API
//
// Orders service of the marketplace: catalog, order lifecycle and payment webhook.
//
//	@title			Market Orders API
//	@version		1.0
//	@description	Catalog and order lifecycle for multi-profile marketplaces
//
//	@contact.name	API Support
//	@contact.email	support@example.com
//
//	@license.name	MIT
//	@license.url	https://opensource.org/licenses/MIT
//
//	@host		localhost:8082
//	@BasePath	/
//	@schemes	http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Type "Bearer" followed by a space and the JWT.
package main

import (
	"context"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	ordersv1 "go-market/api/orders/v1"
	catalogadapters "go-market/internal/catalog/adapters"
	catalogapp "go-market/internal/catalog/application"
	cataloghttp "go-market/internal/catalog/infrastructure"
	"go-market/internal/orders/adapters"
	"go-market/internal/orders/application"
	"go-market/internal/orders/infrastructure"
	"go-market/internal/orders/ports"
	"go-market/pkg/config"
	"go-market/pkg/db"
	"go-market/pkg/events"
	grpcpkg "go-market/pkg/grpc"
	"go-market/pkg/logger"
	"go-market/pkg/metrics"
	"go-market/pkg/middleware"
	"go-market/pkg/payments"
	"go-market/pkg/rabbitmq"
)

const idempotencyTTL = 24 * time.Hour

func main() {
	// Load configuration
	cfg := config.LoadForService("ORDERS")

	// Initialize logger
	log := logger.NewWithFormat("orders-service", cfg.LogLevel, cfg.LogFormat)
	defer log.Sync()

	log.Info("starting orders service")

	// Connect to database
	dbConn, err := db.NewConnection(db.Config{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		DBName:   cfg.DBName,
		SSLMode:  cfg.DBSSLMode,
		Timeout:  cfg.DBTimeout,
	})
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	log.Info("connected to database")

	// Catalog and orders share one database so stock moves in the order transaction
	store := adapters.NewGormStore(dbConn)
	if err := store.Migrate(); err != nil {
		log.Fatal("failed to migrate database", zap.Error(err))
	}

	// Connect to profiles service via gRPC
	tlsFiles := grpcpkg.TLSFiles{
		Enabled:  cfg.GRPCMTLSEnabled,
		CertFile: cfg.GRPCCertFile,
		KeyFile:  cfg.GRPCKeyFile,
		CAFile:   cfg.TLSCAFile,
	}
	profileClient, err := adapters.NewGRPCProfileClient(cfg.ProfilesGRPCAddr, cfg.GRPCTimeout, tlsFiles)
	if err != nil {
		log.Fatal("failed to create profiles client", zap.Error(err))
	}
	defer profileClient.Close()

	// Connect to RabbitMQ. Without it events stay in the outbox.
	var publisher ports.EventPublisher
	rabbitConn, err := rabbitmq.NewConnection(cfg.RabbitMQURL, log)
	if err != nil {
		log.Warn("failed to connect to RabbitMQ, events will be held in the outbox", zap.Error(err))
	} else {
		defer rabbitConn.Close()

		pub, err := rabbitmq.NewPublisher(rabbitConn, events.ExchangeOrders, log)
		if err != nil {
			log.Warn("failed to create publisher", zap.Error(err))
		} else {
			publisher = adapters.NewRabbitMQPublisher(pub, log)
		}
	}

	var gateway ports.PaymentGateway
	if cfg.StripeAPIKey != "" {
		gateway = payments.NewClient(cfg.StripeAPIURL, cfg.StripeAPIKey, cfg.PaymentTimeout, log.Named("payments"))
	} else {
		log.Warn("STRIPE_API_KEY not set, checkout is disabled")
	}

	// Initialize use cases
	reg := prometheus.DefaultRegisterer
	useCase := application.NewOrderUseCase(store, profileClient, gateway, publisher, application.Config{
		TransactionFeeRate: cfg.TransactionFeeRate,
		Transitions:        metrics.NewTransitionCounter(reg),
	}, log)
	catalogUseCase := catalogapp.NewCatalogUseCase(
		catalogadapters.NewGormItemRepository(dbConn),
		catalogadapters.NewGormOptionsRepository(dbConn),
		catalogadapters.NewGormDeliveryRepository(dbConn),
		log.Named("catalog"),
	)

	var idempotent []gin.HandlerFunc
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatal("invalid REDIS_URL", zap.Error(err))
		}
		redisClient := redis.NewClient(opts)
		defer redisClient.Close()
		idempotent = append(idempotent, middleware.Idempotency(
			middleware.NewRedisIdempotencyStore(redisClient, "orders:idempotency:"), idempotencyTTL, log,
		))
	}

	// Setup HTTP server
	gin.SetMode(gin.ReleaseMode)
	router := newRouter(routerConfig{
		orders:     infrastructure.NewHTTPHandler(useCase, cfg.StripeWebhookSecret, log),
		catalog:    cataloghttp.NewHTTPHandler(catalogUseCase),
		verifier:   profileClient,
		jwtSecret:  []byte(cfg.JWTSecret),
		limiter:    middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
		idempotent: idempotent,
		metrics:    metrics.NewServerMetrics(reg, "orders"),
	}, log)

	httpServer := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  cfg.HTTPTimeout,
		WriteTimeout: cfg.HTTPTimeout,
	}

	// Setup gRPC server
	grpcServer := setupGRPCServer(cfg, tlsFiles, log, useCase)
	lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
	if err != nil {
		log.Fatal("failed to listen for gRPC", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("HTTP server listening on :" + cfg.HTTPPort)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		log.Info("gRPC server listening on :" + cfg.GRPCPort)
		return grpcServer.Serve(lis)
	})
	if publisher != nil {
		relay := application.NewOutboxRelay(store, publisher, cfg.OutboxRelayInterval, log.Named("relay"))
		g.Go(func() error {
			return relay.Run(gctx)
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down servers...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		grpcServer.GracefulStop()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server error", zap.Error(err))
	}
	log.Info("servers stopped")
}

func setupGRPCServer(cfg *config.Config, tlsFiles grpcpkg.TLSFiles, log *logger.Logger, useCase *application.OrderUseCase) *grpc.Server {
	opts := []grpc.ServerOption{
		grpc.UnaryInterceptor(grpcpkg.UnaryServerInterceptor(log, cfg.GRPCTimeout)),
	}

	creds, err := grpcpkg.ServerOption(tlsFiles)
	if err != nil {
		log.Fatal("failed to load TLS config", zap.Error(err))
	}
	if creds != nil {
		opts = append(opts, creds)
		log.Info("gRPC mTLS enabled")
	}

	server := grpc.NewServer(opts...)
	ordersv1.RegisterOrderServiceServer(server, infrastructure.NewGRPCServer(useCase))

	return server
}
