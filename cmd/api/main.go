package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/gamebay/gamebay-api/internal/config"
	"github.com/gamebay/gamebay-api/internal/domain/auth"
	"github.com/gamebay/gamebay-api/internal/domain/listing"
	"github.com/gamebay/gamebay-api/internal/domain/notification"
	"github.com/gamebay/gamebay-api/internal/domain/payout"
	"github.com/gamebay/gamebay-api/internal/domain/transaction"
	"github.com/gamebay/gamebay-api/internal/domain/user"
	"github.com/gamebay/gamebay-api/internal/domain/wallet"
	"github.com/gamebay/gamebay-api/internal/middleware"
	"github.com/gamebay/gamebay-api/internal/pkg/database"
	"github.com/gamebay/gamebay-api/internal/pkg/email"
	"github.com/gamebay/gamebay-api/internal/pkg/jwt"
	"github.com/gamebay/gamebay-api/internal/pkg/logger"
	"github.com/gamebay/gamebay-api/internal/pkg/payos"
	pkgresponse "github.com/gamebay/gamebay-api/internal/pkg/response"
	"github.com/gamebay/gamebay-api/internal/pkg/storage"
)

// wsTokenAuth lifts a `token` query parameter into the Authorization
// header before running the auth middleware, since browser WebSocket
// clients cannot set request headers.
func wsTokenAuth(authMiddleware func(http.Handler) http.Handler, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if token := r.URL.Query().Get("token"); token != "" {
			r.Header.Set("Authorization", "Bearer "+token)
		}
		authMiddleware(next).ServeHTTP(w, r)
	}
}

func main() {
	cfg := config.Load()
	logger.Init(logger.Config{Level: cfg.LogLevel, Environment: cfg.Env})

	log.Info().
		Str("env", cfg.Env).
		Str("port", cfg.Port).
		Msg("Starting GameBay API")

	db, err := database.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer database.ClosePostgres(db)

	redis, err := database.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer database.CloseRedis(redis)

	jwtService := jwt.NewService(cfg.JWTSecret, cfg.JWTAccessTTL, cfg.JWTRefreshTTL)

	emailSvc := email.NewService(email.SendGridConfig{
		APIKey:    cfg.SendGridAPIKey,
		FromEmail: cfg.EmailFrom,
		FromName:  cfg.EmailFromName,
	})
	defer emailSvc.Close()

	r2Storage, err := storage.NewR2Storage(storage.R2Config{
		AccountID:       cfg.R2AccountID,
		AccessKeyID:     cfg.R2AccessKeyID,
		AccessKeySecret: cfg.R2AccessKeySecret,
		BucketName:      cfg.R2BucketName,
		PublicURL:       cfg.R2PublicURL,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create R2 storage")
	}

	gateway := payos.NewClient(payos.Config{
		BaseURL:     cfg.PayOSBaseURL,
		ClientID:    cfg.PayOSClientID,
		APIKey:      cfg.PayOSAPIKey,
		ChecksumKey: cfg.PayOSChecksumKey,
		ReturnURL:   cfg.FrontendURL + "/payment/return",
		CancelURL:   cfg.FrontendURL + "/payment/cancel",
		Timeout:     cfg.PayOSTimeout(),
	})

	// ---------- Repositories ----------
	userRepo := user.NewRepository(db)
	listingRepo := listing.NewRepository(db)
	walletRepo := wallet.NewRepository(db)
	transactionRepo := transaction.NewRepository(db)
	payoutRepo := payout.NewRepository(db)
	notificationRepo := notification.NewRepository(db)

	// ---------- WebSocket hub ----------
	hub := notification.NewHub(redis)
	go hub.Run()
	defer hub.Shutdown()

	// ---------- Services ----------
	cleanupCtx, cancelCleanup := context.WithCancel(context.Background())
	defer cancelCleanup()

	notificationSvc := notification.NewService(notificationRepo, hub)
	notificationSvc.StartCleanup(cleanupCtx, 24*time.Hour, 90*24*time.Hour)

	authSvc := auth.NewService(userRepo, jwtService, emailSvc, cfg.FrontendURL)
	walletSvc := wallet.NewService(walletRepo)
	listingSvc := listing.NewService(listingRepo, userRepo, emailSvc, notificationSvc, r2Storage, cfg.FrontendURL)
	transactionSvc := transaction.NewService(transactionRepo, listingRepo, userRepo, walletSvc, gateway, emailSvc, notificationSvc)
	payoutSvc := payout.NewService(payoutRepo, userRepo, emailSvc, notificationSvc, cfg.FrontendURL)

	// ---------- Handlers ----------
	authHandler := auth.NewHandler(authSvc)
	listingHandler := listing.NewHandler(listingSvc)
	walletHandler := wallet.NewHandler(walletSvc)
	transactionHandler := transaction.NewHandler(transactionSvc, redis, cfg.PayOSChecksumKey)
	payoutHandler := payout.NewHandler(payoutSvc)
	notificationHandler := notification.NewHandler(notificationSvc, hub, cfg.AllowedOrigins)

	authMiddleware := middleware.Auth(jwtService)
	adminMiddleware := middleware.RequireAdmin()

	// ---------- Router ----------
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recover)
	r.Use(middleware.CORSHandler(cfg.AllowedOrigins))

	// WebSocket endpoint; browsers cannot set headers on WS, so the
	// token rides in the query string
	r.Get("/ws", wsTokenAuth(authMiddleware, notificationHandler.WebSocket))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		pkgresponse.OK(w, map[string]interface{}{
			"status":         "ok",
			"version":        "1.0.0",
			"ws_connections": hub.ConnectionCount(),
		})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Timeout(30 * time.Second))

		r.Mount("/auth", authHandler.Routes())
		r.Mount("/listings", listingHandler.Routes(authMiddleware))
		r.Mount("/wallet", walletHandler.Routes(authMiddleware))
		r.Mount("/transactions", transactionHandler.Routes(authMiddleware))
		r.Mount("/payouts", payoutHandler.Routes(authMiddleware))
		r.Mount("/notifications", notificationHandler.Routes(authMiddleware))

		r.Route("/admin", func(r chi.Router) {
			r.Mount("/listings", listingHandler.AdminRoutes(authMiddleware, adminMiddleware))
			r.Mount("/transactions", transactionHandler.AdminRoutes(authMiddleware, adminMiddleware))
			r.Mount("/payouts", payoutHandler.AdminRoutes(authMiddleware, adminMiddleware))
		})
	})

	r.Mount("/webhooks", transactionHandler.WebhookRoutes())

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited properly")
}
