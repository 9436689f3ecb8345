package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/parkmate/service-parking/internal/application"
	"github.com/parkmate/service-parking/internal/config"
	bookingDomain "github.com/parkmate/service-parking/internal/domain/booking"
	"github.com/parkmate/service-parking/internal/domain/carwash"
	"github.com/parkmate/service-parking/internal/events/consumer"
	"github.com/parkmate/service-parking/internal/handler"
	"github.com/parkmate/service-parking/internal/notify"
	"github.com/parkmate/service-parking/internal/pkg/auth"
	"github.com/parkmate/service-parking/internal/pkg/database"
	"github.com/parkmate/service-parking/internal/pkg/kafka"
	"github.com/parkmate/service-parking/internal/pkg/logger"
	"github.com/parkmate/service-parking/internal/pkg/middleware"
	"github.com/parkmate/service-parking/internal/repository"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewNamed(cfg.AppEnv, "service-parking")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting service-parking",
		zap.String("port", cfg.Port),
	)

	// Connect to database
	db, err := database.Connect(cfg.DBConfig, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	// Run database migrations
	if cfg.IsDevelopment() {
		if err := db.AutoMigrate(repository.AllModels()...); err != nil {
			log.Fatal("failed to run auto-migration", zap.Error(err))
		}
		log.Info("database migration completed (dev auto-migrate)")
	}

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(
		cfg.JWT.Secret,
		cfg.JWT.AccessDuration,
		cfg.JWT.RefreshDuration,
	)

	// Build business policies from configuration
	bookingPolicy, err := bookingDomain.NewPolicy(cfg.Policy.BookingDuration, cfg.Policy.RenewalFactor)
	if err != nil {
		log.Fatal("invalid booking policy", zap.Error(err))
	}
	schedulePolicy, err := carwash.NewSchedulePolicy(
		cfg.Policy.WashMinLeadTime,
		cfg.Policy.WashAdvanceWindow,
		cfg.Policy.WashBucketCapacity,
		cfg.Policy.WashAutoCompleteDelay,
	)
	if err != nil {
		log.Fatal("invalid wash schedule policy", zap.Error(err))
	}
	busyThreshold := cfg.Policy.EmployeeBusyThreshold

	// Initialize Kafka producer
	var kafkaProducer *kafka.Producer
	if cfg.Kafka.Enabled {
		kafkaProducer = kafka.NewProducer(cfg.Kafka.Brokers, log)
		defer func() { _ = kafkaProducer.Close() }()
	}

	// Initialize websocket notification hub
	hub := notify.NewHub(log)

	// Initialize repositories
	accountRepo := repository.NewGormAccountRepository(db)
	lotRepo := repository.NewGormLotRepository(db)
	slotRepo := repository.NewGormSlotRepository(db)
	bookingRepo := repository.NewGormBookingRepository(db, busyThreshold)
	paymentRepo := repository.NewGormPaymentRepository(db)
	washTypeRepo := repository.NewGormWashTypeRepository(db)
	addonRepo := repository.NewGormAddonRepository(db, busyThreshold)
	washBookingRepo := repository.NewGormWashBookingRepository(db, busyThreshold)
	employeeRepo := repository.NewGormEmployeeRepository(db)
	reviewRepo := repository.NewGormReviewRepository(db)

	// Initialize application services
	authService := application.NewAuthService(accountRepo, jwtManager, log)
	bookingService := application.NewBookingService(bookingRepo, slotRepo, lotRepo, bookingPolicy, kafkaProducer, hub, log)
	lotService := application.NewLotService(lotRepo, slotRepo, accountRepo, reviewRepo, bookingService, log)
	carwashService := application.NewCarwashService(washTypeRepo, addonRepo, bookingRepo, lotRepo, hub, kafkaProducer, log)
	washBookingService := application.NewWashBookingService(washBookingRepo, washTypeRepo, lotRepo, schedulePolicy, hub, kafkaProducer, log)
	employeeService := application.NewEmployeeService(employeeRepo, busyThreshold, hub, log)
	paymentService := application.NewPaymentService(paymentRepo, bookingRepo, lotRepo, bookingPolicy, hub, kafkaProducer, log)
	reviewService := application.NewReviewService(reviewRepo, lotRepo, log)
	adminService := application.NewAdminService(accountRepo, hub, kafkaProducer, log)

	// Start the payment gateway event consumer
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Kafka.Enabled {
		paymentConsumer := consumer.NewPaymentEventConsumer(
			cfg.Kafka.Brokers,
			cfg.Kafka.GroupID,
			paymentService,
			log,
		)
		defer func() { _ = paymentConsumer.Close() }()

		go func() {
			log.Info("starting payment event consumer")
			if err := paymentConsumer.Start(ctx); err != nil && err != context.Canceled {
				log.Error("payment event consumer error", zap.Error(err))
			}
		}()
	}

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	// Apply global middleware
	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.LoggerMiddleware(log))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())

	// Health check
	router.GET("/healthz", func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err != nil || sqlDB.Ping() != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "service-parking"})
	})

	// Websocket notifications
	ws := router.Group("/ws")
	ws.Use(middleware.AuthMiddleware(jwtManager))
	ws.GET("", hub.HandleWS)

	// Register routes
	handler.NewAuthHandler(authService).RegisterRoutes(&router.RouterGroup, jwtManager)
	handler.NewLotHandler(lotService).RegisterRoutes(&router.RouterGroup, jwtManager)
	handler.NewBookingHandler(bookingService).RegisterRoutes(&router.RouterGroup, jwtManager)
	handler.NewCarwashHandler(carwashService).RegisterRoutes(&router.RouterGroup, jwtManager)
	handler.NewWashBookingHandler(washBookingService).RegisterRoutes(&router.RouterGroup, jwtManager)
	handler.NewEmployeeHandler(employeeService).RegisterRoutes(&router.RouterGroup, jwtManager)
	handler.NewPaymentHandler(paymentService).RegisterRoutes(&router.RouterGroup, jwtManager)
	handler.NewReviewHandler(reviewService).RegisterRoutes(&router.RouterGroup, jwtManager)
	handler.NewAdminHandler(adminService, bookingService).RegisterRoutes(&router.RouterGroup, jwtManager)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info("HTTP server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down service-parking...")

	// Cancel the consumer context
	cancel()

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced shutdown", zap.Error(err))
	}

	log.Info("service-parking stopped")
}
