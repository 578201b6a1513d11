package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/prenciarlinda-webwise/webwise-webservice/internal/config"
	"github.com/prenciarlinda-webwise/webwise-webservice/internal/handlers"
	"github.com/prenciarlinda-webwise/webwise-webservice/internal/middleware"
	"github.com/prenciarlinda-webwise/webwise-webservice/internal/models"
	"github.com/prenciarlinda-webwise/webwise-webservice/internal/repository"
	"github.com/prenciarlinda-webwise/webwise-webservice/internal/services"
	"github.com/prenciarlinda-webwise/webwise-webservice/internal/storage"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	db, err := initDatabase(cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize database")
	}

	if err := autoMigrate(db, logger); err != nil {
		logger.WithError(err).Fatal("Failed to migrate database")
	}

	redisClient := initRedis(cfg, logger)

	store := initObjectStore(cfg, logger)

	// Repositories
	userRepo := repository.NewUserRepository(db)
	clientRepo := repository.NewClientRepository(db)
	planRepo := repository.NewPlanRepository(db)
	keywordRepo := repository.NewKeywordRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	reportRepo := repository.NewReportRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	// Services
	passwordSvc := services.NewPasswordService()
	tokenSvc := services.NewTokenService(
		cfg.JWT.AccessSecret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessTTL,
		cfg.JWT.RefreshTTL,
		redisClient,
		logger,
	)
	authSvc := services.NewAuthService(userRepo, tokenSvc, passwordSvc, logger)
	clientSvc := services.NewClientService(db, clientRepo, userRepo, planRepo, keywordRepo, paymentRepo, passwordSvc, logger)
	planSvc := services.NewPlanService(planRepo)
	keywordSvc := services.NewKeywordService(keywordRepo, clientRepo, logger)
	paymentSvc := services.NewPaymentService(db, paymentRepo, clientRepo, planRepo, logger)
	taskSvc := services.NewTaskService(taskRepo, clientRepo, logger)
	reportSvc := services.NewReportService(reportRepo, clientRepo, store, logger)
	notificationSvc := services.NewNotificationService(db, notificationRepo, clientRepo, logger)
	dashboardSvc := services.NewDashboardService(clientRepo, paymentRepo, keywordRepo, reportRepo, logger)

	if err := seedAdminUser(db, cfg, userRepo, passwordSvc, logger); err != nil {
		logger.WithError(err).Fatal("Failed to seed admin user")
	}

	// Handlers
	authMW := middleware.NewAuthMiddleware(tokenSvc, userRepo, logger)
	healthHandler := handlers.NewHealthHandler(db)
	authHandler := handlers.NewAuthHandler(authSvc)
	clientHandler := handlers.NewClientHandler(clientSvc)
	planHandler := handlers.NewPlanHandler(planSvc)
	keywordHandler := handlers.NewKeywordHandler(keywordSvc)
	paymentHandler := handlers.NewPaymentHandler(paymentSvc, clientSvc)
	taskHandler := handlers.NewTaskHandler(taskSvc, clientSvc)
	reportHandler := handlers.NewReportHandler(reportSvc, clientSvc)
	notificationHandler := handlers.NewNotificationHandler(notificationSvc, clientSvc)
	dashboardHandler := handlers.NewDashboardHandler(dashboardSvc)

	router := setupRouter(
		cfg,
		logger,
		authMW,
		healthHandler,
		authHandler,
		clientHandler,
		planHandler,
		keywordHandler,
		paymentHandler,
		taskHandler,
		reportHandler,
		notificationHandler,
		dashboardHandler,
	)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.WithField("port", cfg.Server.Port).Info("Starting webwise-webservice")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("Failed to start server")
		}
	}()

	// Expired token sessions pile up over time; sweep them hourly.
	purgeCtx, purgeCancel := context.WithCancel(context.Background())
	defer purgeCancel()
	go purgeExpiredSessions(purgeCtx, userRepo, logger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	purgeCancel()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.WithError(err).Warn("Server forced to shutdown")
	}

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			logger.WithError(err).Warn("Error closing redis connection")
		}
	}

	logger.Info("Server exited")
}

func setupRouter(
	cfg *config.Config,
	logger *logrus.Logger,
	authMW *middleware.AuthMiddleware,
	healthHandler *handlers.HealthHandler,
	authHandler *handlers.AuthHandler,
	clientHandler *handlers.ClientHandler,
	planHandler *handlers.PlanHandler,
	keywordHandler *handlers.KeywordHandler,
	paymentHandler *handlers.PaymentHandler,
	taskHandler *handlers.TaskHandler,
	reportHandler *handlers.ReportHandler,
	notificationHandler *handlers.NotificationHandler,
	dashboardHandler *handlers.DashboardHandler,
) *gin.Engine {
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORS.AllowedOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"}
	corsConfig.AllowCredentials = true

	router.Use(cors.New(corsConfig))
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.StructuredLogger(logger))
	router.Use(middleware.Metrics())

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/health", healthHandler.Health)
	router.GET("/ready", healthHandler.Ready)

	api := router.Group("/api")

	// Authentication (login/refresh are public, the rest require a token)
	auth := api.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)

		authed := auth.Group("")
		authed.Use(authMW.RequireAuth())
		{
			authed.POST("/logout", authHandler.Logout)
			authed.GET("/me", authHandler.Me)
			authed.PATCH("/me", authHandler.UpdateMe)
			authed.POST("/change-password", authHandler.ChangePassword)
		}
	}

	// Admin surface
	admin := api.Group("/admin")
	admin.Use(authMW.RequireAuth(), authMW.RequireRole(models.RoleAdmin))
	{
		admin.GET("/dashboard/stats", dashboardHandler.Stats)

		clients := admin.Group("/clients")
		{
			clients.GET("", clientHandler.List)
			clients.POST("", clientHandler.Create)
			clients.GET("/:id", clientHandler.Get)
			clients.PATCH("/:id", clientHandler.Update)
			clients.DELETE("/:id", clientHandler.Delete)
			clients.POST("/:id/reset-password", clientHandler.ResetPassword)
		}

		plans := admin.Group("/plans")
		{
			plans.GET("", planHandler.List)
			plans.POST("", planHandler.Create)
			plans.GET("/:id", planHandler.Get)
			plans.PATCH("/:id", planHandler.Update)
			plans.DELETE("/:id", planHandler.Delete)
		}

		keywords := admin.Group("/keywords")
		{
			keywords.GET("", keywordHandler.List)
			keywords.POST("", keywordHandler.Create)
			keywords.GET("/:id", keywordHandler.Get)
			keywords.PATCH("/:id", keywordHandler.Update)
			keywords.DELETE("/:id", keywordHandler.Delete)
			keywords.POST("/:id/rankings", keywordHandler.AddRanking)
		}
		admin.POST("/rankings/bulk", keywordHandler.BulkRankings)

		payments := admin.Group("/payments")
		{
			payments.GET("", paymentHandler.List)
			payments.POST("", paymentHandler.Create)
			payments.GET("/:id", paymentHandler.Get)
			payments.PATCH("/:id", paymentHandler.Update)
			payments.DELETE("/:id", paymentHandler.Delete)
			payments.POST("/:id/mark-paid", paymentHandler.MarkPaid)
			payments.POST("/:id/mark-cancelled", paymentHandler.MarkCancelled)
			payments.POST("/:id/confirm", paymentHandler.Confirm)
		}

		methods := admin.Group("/payment-methods")
		{
			methods.GET("", paymentHandler.ListMethods)
			methods.POST("", paymentHandler.CreateMethod)
			methods.PATCH("/:id", paymentHandler.UpdateMethod)
			methods.DELETE("/:id", paymentHandler.DeleteMethod)
		}

		tasks := admin.Group("/tasks")
		{
			tasks.GET("", taskHandler.List)
			tasks.POST("", taskHandler.Create)
			tasks.GET("/stats", taskHandler.Stats)
			tasks.GET("/:id", taskHandler.Get)
			tasks.PATCH("/:id", taskHandler.Update)
			tasks.DELETE("/:id", taskHandler.Delete)
			tasks.POST("/:id/complete", taskHandler.MarkCompleted)
			tasks.POST("/:id/start", taskHandler.MarkInProgress)
		}

		reports := admin.Group("/reports")
		{
			reports.GET("", reportHandler.List)
			reports.POST("", reportHandler.Create)
			reports.POST("/upload-url", reportHandler.UploadURL)
			reports.GET("/:id", reportHandler.Get)
			reports.PATCH("/:id", reportHandler.Update)
			reports.DELETE("/:id", reportHandler.Delete)
			reports.GET("/:id/download-url", reportHandler.DownloadURL)
		}

		notifications := admin.Group("/notifications")
		{
			notifications.GET("", notificationHandler.AdminList)
			notifications.GET("/unread-count", notificationHandler.AdminUnreadCount)
			notifications.POST("/mark-all-read", notificationHandler.AdminMarkAllRead)
			notifications.POST("/offers", notificationHandler.SendOffer)
			notifications.POST("/:id/read", notificationHandler.AdminMarkRead)
			notifications.DELETE("/:id", notificationHandler.AdminDelete)
		}
	}

	// Client portal surface
	client := api.Group("/client")
	client.Use(authMW.RequireAuth(), authMW.RequireRole(models.RoleClient))
	{
		client.GET("/profile", clientHandler.Profile)
		client.PATCH("/profile", clientHandler.UpdateProfile)
		client.GET("/keywords", clientHandler.Keywords)
		client.GET("/payments", paymentHandler.ClientList)
		client.GET("/payment-methods", paymentHandler.ClientMethods)
		client.POST("/payments/:id/mark-paid", paymentHandler.ClientMarkPaid)
		client.GET("/tasks", taskHandler.ClientList)
		client.GET("/reports", reportHandler.ClientList)
		client.GET("/reports/:id", reportHandler.ClientGet)

		notifications := client.Group("/notifications")
		{
			notifications.GET("", notificationHandler.ClientList)
			notifications.GET("/unread-count", notificationHandler.ClientUnreadCount)
			notifications.POST("/mark-all-read", notificationHandler.ClientMarkAllRead)
			notifications.POST("/:id/read", notificationHandler.ClientMarkRead)
			notifications.POST("/:id/acknowledge", notificationHandler.Acknowledge)
			notifications.POST("/:id/respond", notificationHandler.RespondOffer)
		}
	}

	return router
}

func initDatabase(cfg *config.Config, logger *logrus.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.Database.DSN()), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("Connected to database")
	return db, nil
}

func autoMigrate(db *gorm.DB, logger *logrus.Logger) error {
	modelsToMigrate := []interface{}{
		&models.User{},
		&models.TokenSession{},
		&models.Plan{},
		&models.ClientProfile{},
		&models.Keyword{},
		&models.KeywordRanking{},
		&models.AdminPaymentMethod{},
		&models.Payment{},
		&models.Task{},
		&models.Report{},
		&models.Notification{},
	}

	for _, model := range modelsToMigrate {
		if err := db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate %T: %w", model, err)
		}
	}

	logger.Info("Database migration completed")
	return nil
}

// initRedis returns nil when no address is configured or the server is
// unreachable; refresh revocation then relies on token sessions alone.
func initRedis(cfg *config.Config, logger *logrus.Logger) *redis.Client {
	if cfg.Redis.Addr == "" {
		logger.Info("Redis not configured, refresh denylist disabled")
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.WithError(err).Warn("Failed to connect to redis, refresh denylist disabled")
		return nil
	}

	logger.Info("Connected to redis")
	return client
}

func initObjectStore(cfg *config.Config, logger *logrus.Logger) storage.ObjectStore {
	if cfg.Storage.Provider == "s3" && cfg.Storage.Bucket != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		store, err := storage.NewS3Store(ctx, storage.S3Config{
			Bucket:          cfg.Storage.Bucket,
			Region:          cfg.Storage.Region,
			AccessKeyID:     cfg.Storage.AccessKeyID,
			SecretAccessKey: cfg.Storage.SecretAccessKey,
			Endpoint:        cfg.Storage.Endpoint,
			ForcePathStyle:  cfg.Storage.ForcePathStyle,
		}, logger)
		if err != nil {
			logger.WithError(err).Warn("Failed to initialize S3 store, report files disabled")
			return nil
		}
		logger.WithField("bucket", cfg.Storage.Bucket).Info("S3 report storage initialized")
		return store
	}

	store, err := storage.NewLocalStore(cfg.Storage.LocalDir, cfg.Storage.LocalBaseURL)
	if err != nil {
		logger.WithError(err).Warn("Failed to initialize local store, report files disabled")
		return nil
	}
	logger.WithField("dir", cfg.Storage.LocalDir).Info("Local report storage initialized")
	return store
}

// seedAdminUser creates the first admin account from configuration. Skipped
// when any admin already exists or no password is configured.
func seedAdminUser(db *gorm.DB, cfg *config.Config, users *repository.UserRepository, passwords *services.PasswordService, logger *logrus.Logger) error {
	ctx := context.Background()

	exists, err := users.AdminExists(ctx)
	if err != nil {
		return fmt.Errorf("failed to check for admin user: %w", err)
	}
	if exists {
		return nil
	}
	if cfg.Admin.Password == "" {
		logger.Warn("No admin user exists and no admin password configured, skipping seed")
		return nil
	}

	hash, err := passwords.Hash(cfg.Admin.Password)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	admin := &models.User{
		Email:        cfg.Admin.Email,
		PasswordHash: hash,
		FirstName:    "Admin",
		Role:         models.RoleAdmin,
		IsActive:     true,
	}
	if err := db.WithContext(ctx).Create(admin).Error; err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	logger.WithField("email", admin.Email).Info("Seeded admin user")
	return nil
}

func purgeExpiredSessions(ctx context.Context, users *repository.UserRepository, logger *logrus.Logger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			count, err := users.PurgeExpiredSessions(ctx, time.Now())
			if err != nil {
				logger.WithError(err).Warn("Failed to purge expired token sessions")
				continue
			}
			if count > 0 {
				logger.WithField("count", count).Debug("Purged expired token sessions")
			}
		}
	}
}
