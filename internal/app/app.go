package app

import (
	"database/sql"
	"fmt"
	"log"
	"net/http"

	"kleenestar/internal/cache"
	"kleenestar/internal/config"
	"kleenestar/internal/handlers"
	"kleenestar/internal/middleware"
	"kleenestar/internal/repositories"
	"kleenestar/internal/routes"
	"kleenestar/internal/services"
	"kleenestar/internal/session"
	"kleenestar/internal/utils"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	_ "kleenestar/docs"
)

func Run() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Configuration error: ", err)
	}

	// === DB ===
	db, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Failed to close database: %v", err)
		}
	}()

	// === Redis (cache + sessions) ===
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer func() {
		if err := rdb.Close(); err != nil {
			log.Printf("Failed to close redis client: %v", err)
		}
	}()

	// === Repos ===
	userRepo := repositories.NewUserRepository(db)
	verificationRepo := repositories.NewEmailVerificationRepository(db)
	resetRepo := repositories.NewPasswordResetRepository(db)
	phoneTokenRepo := repositories.NewPhoneTokenRepository(db)

	// === Services ===
	authService := services.NewAuthService(cfg.SecretKey)
	emailService := services.NewEmailService(
		cfg.Email.SMTPHost,
		cfg.Email.SMTPPort,
		cfg.Email.SMTPUser,
		cfg.Email.SMTPPassword,
		cfg.Email.FromEmail,
	)

	verificationService := services.NewVerificationService(verificationRepo, userRepo, emailService)
	userService := services.NewUserService(userRepo, verificationService, authService)
	resetService := services.NewPasswordResetService(userRepo, resetRepo, emailService, authService)

	smsClient := utils.NewSMSClient(
		cfg.Mobizon.APIKey,
		cfg.Mobizon.SenderID,
		cfg.Mobizon.DryRun,
	)
	otpService := services.NewOTPService(userRepo, phoneTokenRepo, smsClient)

	resultCache := cache.NewRedisCache(rdb)
	searchService := services.NewSearchService(resultCache, cfg.ClassifierURL)

	sessionStore := session.NewRedisStore(rdb, cfg.Session.TTL)

	// === Handlers ===
	authHandler := handlers.NewAuthHandler(userService, authService, verificationService, sessionStore, cfg.Session.TTL)
	otpHandler := handlers.NewOTPHandler(otpService, authService, sessionStore, cfg.Session.TTL)
	passwordHandler := handlers.NewPasswordHandler(resetService, userService, authService, sessionStore)
	userHandler := handlers.NewUserHandler(userService, authService)
	searchHandler := handlers.NewSearchHandler(searchService)

	// === Gin ===
	router := gin.Default()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(corsMiddleware(cfg.FrontendURL))

	// Swagger
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authRequired := middleware.AuthMiddleware(sessionStore, userRepo, authService)

	routes.SetupRoutes(
		router,
		authHandler,
		otpHandler,
		passwordHandler,
		userHandler,
		searchHandler,
		authRequired,
	)

	// === Run ===
	listenAddr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("Server listening on %s", listenAddr)
	if err := router.Run(listenAddr); err != nil {
		log.Fatal("Failed to start server: ", err)
	}
}

// corsMiddleware echoes the configured frontend origin; cookies require a
// concrete origin, not "*".
func corsMiddleware(frontendURL string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := frontendURL
		if origin == "" {
			origin = c.GetHeader("Origin")
		}
		if origin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
			c.Writer.Header().Set("Vary", "Origin")
		}
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, X-CSRFToken")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
