package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/gamebay/gamebay-api/internal/config"
	"github.com/gamebay/gamebay-api/internal/domain/notification"
	"github.com/gamebay/gamebay-api/internal/domain/payout"
	"github.com/gamebay/gamebay-api/internal/domain/user"
	"github.com/gamebay/gamebay-api/internal/pkg/database"
	"github.com/gamebay/gamebay-api/internal/pkg/email"
	"github.com/gamebay/gamebay-api/internal/pkg/logger"
)

const (
	checkInterval = 1 * time.Hour
	// the lock outlives any plausible run so crashed holders cannot
	// hand the period to a second worker mid-run
	lockTTL = 48 * time.Hour
)

func main() {
	cfg := config.Load()
	logger.Init(logger.Config{Level: cfg.LogLevel, Environment: cfg.Env})

	log.Info().Msg("Starting settlement-worker")

	db, err := database.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer database.ClosePostgres(db)

	rdb, err := database.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer database.CloseRedis(rdb)

	emailSvc := email.NewService(email.SendGridConfig{
		APIKey:    cfg.SendGridAPIKey,
		FromEmail: cfg.EmailFrom,
		FromName:  cfg.EmailFromName,
	})
	defer emailSvc.Close()

	// The hub relays pushes over Redis, so sellers connected to the API
	// still get the payout notification even though this process serves
	// no WebSockets itself.
	hub := notification.NewHub(rdb)
	go hub.Run()
	defer hub.Shutdown()

	userRepo := user.NewRepository(db)
	payoutRepo := payout.NewRepository(db)
	notificationRepo := notification.NewRepository(db)

	notificationSvc := notification.NewService(notificationRepo, hub)
	payoutSvc := payout.NewService(payoutRepo, userRepo, emailSvc, notificationSvc, cfg.FrontendURL)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		<-sigChan
		log.Info().Msg("Shutdown signal received")
		cancel()
	}()

	ticker := time.NewTicker(checkInterval)
	defer ticker.Stop()

	// Run once at startup so a worker deployed on the 1st does not wait
	// an hour for its first check.
	runIfDue(ctx, rdb, payoutSvc, time.Now())

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("settlement-worker stopped")
			return
		case <-ticker.C:
			runIfDue(ctx, rdb, payoutSvc, time.Now())
		}
	}
}

// runIfDue runs the monthly settlement on the first day of the month.
// A Redis lock keyed by period keeps concurrent workers from starting
// the same run; the settlement itself is also idempotent per seller
// and period, so a rerun after a crash only fills in what is missing.
func runIfDue(ctx context.Context, rdb *redis.Client, svc *payout.Service, now time.Time) {
	if now.Day() != 1 {
		return
	}

	lockKey := fmt.Sprintf("payout:settlement:%04d-%02d", now.Year(), int(now.Month()))
	acquired, err := rdb.SetNX(ctx, lockKey, "1", lockTTL).Result()
	if err != nil {
		log.Error().Err(err).Str("key", lockKey).Msg("Failed to acquire settlement lock")
		return
	}
	if !acquired {
		log.Info().Str("key", lockKey).Msg("Settlement already ran for this period")
		return
	}

	start := time.Now()
	created, err := svc.RunMonthlySettlement(ctx, now)
	if err != nil {
		log.Error().Err(err).Msg("Monthly settlement failed")
		// release the lock so the next check can retry the period
		if err := rdb.Del(ctx, lockKey).Err(); err != nil {
			log.Error().Err(err).Str("key", lockKey).Msg("Failed to release settlement lock")
		}
		return
	}

	log.Info().
		Int("created", created).
		Dur("took", time.Since(start)).
		Msg("Monthly settlement complete")
}
