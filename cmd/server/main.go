package main

import (
	"context"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/trove/backend/internal/config"
	"github.com/trove/backend/internal/handlers"
	appMiddleware "github.com/trove/backend/internal/middleware"
	"github.com/trove/backend/internal/moderation"
	"github.com/trove/backend/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()

	// Firebase Auth (server-side verification of ID tokens)
	authClient, err := appMiddleware.NewFirebaseAuthClient(ctx, appMiddleware.FirebaseAuthConfig{
		ProjectID:       cfg.FirebaseProjectID,
		CredentialsJSON: cfg.FirebaseCredentialsJSON,
	})
	if err != nil {
		log.Printf("Warning: failed to initialize Firebase Auth client: %v", err)
	}

	// Persistent stores
	reportSvc, err := services.NewMongoReportService(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		log.Fatalf("Failed to initialize report service: %v", err)
	}
	strikeSvc, err := services.NewMongoStrikeService(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		log.Fatalf("Failed to initialize strike service: %v", err)
	}
	accountSvc, err := services.NewMongoAccountService(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		log.Fatalf("Failed to initialize account service: %v", err)
	}
	listingSvc, err := services.NewMongoListingService(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		log.Fatalf("Failed to initialize listing service: %v", err)
	}
	notificationSvc, err := services.NewMongoNotificationService(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		log.Fatalf("Failed to initialize notification service: %v", err)
	}
	staffSvc, err := services.NewMongoStaffService(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		log.Fatalf("Failed to initialize staff service: %v", err)
	}
	repairSvc, err := services.NewMongoRepairService(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		log.Fatalf("Failed to initialize repair service: %v", err)
	}

	// Strike totals read through Redis when configured.
	var ledger services.StrikeLedger = strikeSvc
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Printf("Warning: Redis unavailable, strike totals served uncached: %v", err)
		} else {
			ledger = services.NewCachedStrikeLedger(strikeSvc, rdb, cfg.StrikeCacheTTL)
			log.Printf("[Server] strike total cache enabled addr=%s ttl=%s", cfg.RedisAddr, cfg.StrikeCacheTTL)
		}
	}

	// Optional integrations
	var cleaner services.ContentCleaner
	if cfg.StorageBucket != "" {
		storageSvc, err := services.NewStorageCleanupService(ctx, cfg.StorageBucket)
		if err != nil {
			log.Printf("Warning: storage cleanup disabled: %v", err)
		} else {
			cleaner = storageSvc
		}
	}

	var mailer *services.ModerationMailer
	if cfg.SendGridAPIKey != "" {
		mailer = services.NewModerationMailer(cfg.SendGridAPIKey, cfg.ModerationFromEmail, cfg.ModerationAlertEmail)
	}

	var recaptcha *services.RecaptchaVerifier
	if cfg.RecaptchaSecret != "" {
		recaptcha = services.NewRecaptchaVerifier(cfg.RecaptchaSecret)
	}

	// Engine
	classifier := moderation.NewClassifier()
	enforcer := services.NewEnforcementService(reportSvc, ledger, accountSvc, listingSvc, repairSvc, cleaner, cfg.DefaultSuspensionDays)
	dispatcher := services.NewNotificationDispatcher(notificationSvc, mailer)
	controller := services.NewReportController(staffSvc, reportSvc, ledger, listingSvc, classifier, enforcer, dispatcher)

	// Handlers
	authHandler := handlers.NewAuthHandler(staffSvc, cfg.JWTSecret, cfg.JWTExpiration)
	reportHandler := handlers.NewReportHandler(controller, recaptcha)
	moderationHandler := handlers.NewModerationHandler(controller)
	notificationHandler := handlers.NewNotificationHandler(notificationSvc)

	// Create router
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r.Handle("/metrics", promhttp.Handler())

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Marketplace user routes
		r.Group(func(r chi.Router) {
			r.Use(appMiddleware.FirebaseAuth(authClient))

			r.Post("/reports", reportHandler.Submit)

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", notificationHandler.List)
				r.Post("/{notificationId}/read", notificationHandler.MarkRead)
			})
		})

		// Moderation console routes
		r.Route("/moderation", func(r chi.Router) {
			r.Post("/login", authHandler.Login)

			r.Group(func(r chi.Router) {
				r.Use(appMiddleware.StaffAuth(cfg.JWTSecret))

				r.Route("/reports", func(r chi.Router) {
					r.Get("/", moderationHandler.ListReports)
					r.Get("/{reportId}/preview", moderationHandler.PreviewDecision)
					r.Post("/{reportId}/decision", moderationHandler.Decide)
				})
				r.Get("/users/{userId}/strikes", moderationHandler.StrikeHistory)
				r.Post("/strike-totals", moderationHandler.StrikeTotals)
			})
		})
	})

	log.Printf("🚀 Trove moderation API starting on %s", cfg.ServerAddress)
	if err := http.ListenAndServe(cfg.ServerAddress, r); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
