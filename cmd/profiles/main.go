// Package main Market Profiles API
//
// Profiles service of the marketplace: the buyer and seller identities a user acts as.
//
//	@title			Market Profiles API
//	@version		1.0
//	@description	Profiles owned by authenticated users
//
//	@contact.name	API Support
//	@contact.email	support@example.com
//
//	@license.name	MIT
//	@license.url	https://opensource.org/licenses/MIT
//
//	@host		localhost:8081
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
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	profilesv1 "go-market/api/profiles/v1"
	"go-market/docs/swagger"
	"go-market/internal/profiles/adapters"
	"go-market/internal/profiles/application"
	"go-market/internal/profiles/infrastructure"
	"go-market/internal/profiles/ports"
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

func main() {
	// Load configuration
	cfg := config.LoadForService("PROFILES")

	// Initialize logger
	log := logger.NewWithFormat("profiles-service", cfg.LogLevel, cfg.LogFormat)
	defer log.Sync()

	log.Info("starting profiles service")

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

	// Initialize repository and run migrations
	repo := adapters.NewGormProfileRepository(dbConn)
	if err := repo.Migrate(); err != nil {
		log.Fatal("failed to migrate database", zap.Error(err))
	}

	// Connect to RabbitMQ
	var publisher ports.EventPublisher
	var consumer *adapters.OrderCompletedConsumer
	rabbitConn, err := rabbitmq.NewConnection(cfg.RabbitMQURL, log)
	if err != nil {
		log.Warn("failed to connect to RabbitMQ, events will be disabled", zap.Error(err))
	} else {
		defer rabbitConn.Close()

		pub, err := rabbitmq.NewPublisher(rabbitConn, events.ExchangeProfiles, log)
		if err != nil {
			log.Warn("failed to create publisher", zap.Error(err))
		} else {
			publisher = adapters.NewRabbitMQPublisher(pub, log)
		}
	}

	var accounts ports.AccountCreator
	if cfg.StripeAPIKey != "" {
		accounts = payments.NewClient(cfg.StripeAPIURL, cfg.StripeAPIKey, cfg.PaymentTimeout, log.Named("payments"))
	}

	// Initialize use case
	useCase := application.NewProfileUseCase(repo, publisher, accounts, log)

	if rabbitConn != nil {
		consumer, err = adapters.NewOrderCompletedConsumer(rabbitConn, useCase, log)
		if err != nil {
			log.Warn("failed to create order completed consumer", zap.Error(err))
		}
	}

	// Setup HTTP server
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(middleware.TraceID())
	router.Use(middleware.RequestLogger(log))
	router.Use(middleware.ErrorHandler(log))
	router.Use(middleware.CORS())
	router.Use(metrics.NewServerMetrics(prometheus.DefaultRegisterer, "profiles").Middleware())
	router.Use(middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst).Middleware())

	api := router.Group("/api/v1", middleware.Authenticate([]byte(cfg.JWTSecret)))
	infrastructure.NewHTTPHandler(useCase).RegisterRoutes(api)

	router.GET("/metrics", gin.WrapH(metrics.Handler()))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler,
		ginSwagger.InstanceName(swagger.ProfilesInfo.InstanceName())))
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	httpServer := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  cfg.HTTPTimeout,
		WriteTimeout: cfg.HTTPTimeout,
	}

	// Setup gRPC server
	grpcServer := setupGRPCServer(cfg, log, useCase)
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
	if consumer != nil {
		g.Go(func() error {
			return consumer.Start(gctx)
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

func setupGRPCServer(cfg *config.Config, log *logger.Logger, useCase *application.ProfileUseCase) *grpc.Server {
	opts := []grpc.ServerOption{
		grpc.UnaryInterceptor(grpcpkg.UnaryServerInterceptor(log, cfg.GRPCTimeout)),
	}

	creds, err := grpcpkg.ServerOption(grpcpkg.TLSFiles{
		Enabled:  cfg.GRPCMTLSEnabled,
		CertFile: cfg.GRPCCertFile,
		KeyFile:  cfg.GRPCKeyFile,
		CAFile:   cfg.TLSCAFile,
	})
	if err != nil {
		log.Fatal("failed to load TLS config", zap.Error(err))
	}
	if creds != nil {
		opts = append(opts, creds)
		log.Info("gRPC mTLS enabled")
	}

	server := grpc.NewServer(opts...)
	profilesv1.RegisterProfileServiceServer(server, infrastructure.NewGRPCServer(useCase))

	return server
}
