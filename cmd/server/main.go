package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/trendlotto/invest/internal/cache"
	"github.com/trendlotto/invest/internal/clients/kis"
	"github.com/trendlotto/invest/internal/clients/naver"
	"github.com/trendlotto/invest/internal/clients/yahoo"
	"github.com/trendlotto/invest/internal/config"
	"github.com/trendlotto/invest/internal/database"
	"github.com/trendlotto/invest/internal/modules/alerts"
	"github.com/trendlotto/invest/internal/modules/auth"
	"github.com/trendlotto/invest/internal/modules/billing"
	"github.com/trendlotto/invest/internal/modules/community"
	"github.com/trendlotto/invest/internal/modules/forecast"
	"github.com/trendlotto/invest/internal/modules/leaderboard"
	"github.com/trendlotto/invest/internal/modules/market"
	"github.com/trendlotto/invest/internal/modules/portfolio"
	"github.com/trendlotto/invest/internal/modules/review"
	"github.com/trendlotto/invest/internal/modules/scoring"
	"github.com/trendlotto/invest/internal/modules/seo"
	"github.com/trendlotto/invest/internal/notifier"
	"github.com/trendlotto/invest/internal/reliability"
	"github.com/trendlotto/invest/internal/scheduler"
	"github.com/trendlotto/invest/internal/server"
	"github.com/trendlotto/invest/internal/services"
	"github.com/trendlotto/invest/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		basicLog := logger.New(logger.Config{Level: "info", Pretty: true})
		basicLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})
	logger.SetGlobalLogger(log)

	log.Info().Str("data_dir", cfg.DataDir).Msg("Starting Trend-Lotto Invest")

	// Databases: durable user data in app.db, rebuildable scrape results
	// and forecasts in cache.db.
	appDB, err := database.New(database.Config{
		Path: filepath.Join(cfg.DataDir, "app.db"),
		Name: "app",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open app database")
	}
	defer appDB.Close()

	cacheDB, err := database.New(database.Config{
		Path: filepath.Join(cfg.DataDir, "cache.db"),
		Name: "cache",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open cache database")
	}
	defer cacheDB.Close()

	for _, db := range []*database.DB{appDB, cacheDB} {
		if err := db.Migrate(); err != nil {
			log.Fatal().Err(err).Str("database", db.Name()).Msg("Failed to run migrations")
		}
	}

	// Caches over cache.db. Snapshots survive restarts.
	quoteCache := cache.NewQuoteCache(cacheDB.Conn())
	snapshots := cache.NewSnapshotStore(cacheDB.Conn(), log)
	if err := snapshots.Restore(); err != nil {
		log.Warn().Err(err).Msg("Failed to restore cached snapshots, starting cold")
	}

	// Price sources, most trusted first. Without credentials the KIS
	// client reports ErrNoCredentials and the chain moves on.
	naverClient := naver.NewClient(log)
	quoteService := services.NewQuoteService(quoteCache, log,
		kis.NewClient(cfg.KISAppKey, cfg.KISAppSecret, log),
		naverClient,
		yahoo.NewClient(log),
	)

	telegram := notifier.NewTelegram(cfg.TelegramBotToken, cfg.TelegramChatID, log)
	if !telegram.Enabled() {
		log.Warn().Msg("Telegram not configured, alert notifications will be dropped")
	}

	// Repositories and services.
	users := auth.NewUserRepository(appDB.Conn(), log)
	authService := auth.NewService(users, cfg.JWTSecret, time.Duration(cfg.TokenExpiryMins)*time.Minute, log)

	portfolioRepo := portfolio.NewRepository(appDB.Conn(), log)
	portfolioService := portfolio.NewService(portfolioRepo, quoteService, log)

	alertRepo := alerts.NewRepository(appDB.Conn(), log)
	alertService := alerts.NewService(alertRepo, quoteService, telegram, log)

	communityRepo := community.NewRepository(appDB.Conn(), log)
	billingService := billing.NewService(appDB.Conn(), users, log)
	leaderboardService := leaderboard.NewService(users, portfolioService, log)

	marketService := market.NewService(naverClient, snapshots, log)
	scoringService := scoring.NewService(naverClient, log)
	forecastStore := forecast.NewStore(cacheDB.Conn(), log)
	reviewService := review.NewService(scoringService, naverClient, forecastStore, log)

	// Background jobs.
	sched := scheduler.New(log)
	marketJob := scheduler.NewMarketRefreshJob(marketService, log)
	registerJob(log, sched, "@every 10m", marketJob)
	registerJob(log, sched, "@every 5m", scheduler.NewAlertCheckJob(alertService, log))
	registerJob(log, sched, "30 0 * * *", scheduler.NewLeaderboardSettleJob(leaderboardService, log))
	registerJob(log, sched, "0 1 * * *", scheduler.NewForecastRefreshJob(portfolioRepo, naverClient, forecastStore, log))

	if cfg.BackupEnabled() {
		s3Client, err := reliability.NewS3Client(context.Background(), reliability.S3Config{
			Endpoint:        cfg.BackupEndpoint,
			Region:          cfg.BackupRegion,
			AccessKeyID:     cfg.BackupAccessKey,
			SecretAccessKey: cfg.BackupSecretKey,
			Bucket:          cfg.BackupBucket,
		}, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize backup storage")
		}
		backupService := reliability.NewBackupService(s3Client,
			[]reliability.DatabaseBackuper{appDB, cacheDB}, cfg.DataDir, log)
		registerJob(log, sched, "0 3 * * *", scheduler.NewBackupJob(backupService, s3Client, cfg.BackupKeep, log))
	} else {
		log.Info().Msg("Backups not configured, nightly backup job disabled")
	}

	sched.Start()
	defer sched.Stop()

	// Warm the snapshots before serving the first request.
	if err := sched.RunNow(marketJob); err != nil {
		log.Warn().Err(err).Msg("Initial market refresh failed, serving sample data until the next run")
	}

	pages, err := server.NewPageHandlers(marketService, leaderboardService, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to parse page templates")
	}

	srv := server.New(server.Config{
		Port:        cfg.Port,
		Log:         log,
		DevMode:     cfg.DevMode,
		Auth:        auth.NewHandler(authService, log),
		AuthService: authService,
		Portfolio:   portfolio.NewHandler(portfolioService, log),
		Alerts:      alerts.NewHandler(alertService, log),
		Community:   community.NewHandler(communityRepo, log),
		Billing:     billing.NewHandler(billingService, log),
		Leaderboard: leaderboard.NewHandler(leaderboardService, log),
		Market:      market.NewHandler(marketService, log),
		Review:      review.NewHandler(reviewService, log),
		SEO:         seo.NewHandler(cfg.SiteBaseURL, cfg.AdSensePublisher, log),
		System:      server.NewSystemHandlers(cfg.DataDir, log),
		Pages:       pages,
	})

	go func() {
		if err := srv.Start(); err != nil {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}

func registerJob(log zerolog.Logger, sched *scheduler.Scheduler, schedule string, job scheduler.Job) {
	if err := sched.AddJob(schedule, job); err != nil {
		log.Fatal().Err(err).Str("job", job.Name()).Msg("Failed to register job")
	}
}
