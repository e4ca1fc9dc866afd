package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/steplykh/tutor_calendar/internal/app"
	"github.com/steplykh/tutor_calendar/internal/calendar"
	"github.com/steplykh/tutor_calendar/internal/config"
	"github.com/steplykh/tutor_calendar/internal/model"
	"github.com/steplykh/tutor_calendar/internal/repository"
	"github.com/steplykh/tutor_calendar/internal/timezone"
)

// Хост ядра планирования: применяет миграции, резолвит зону репетитора и
// держит календарь спроецированным (софт-пул + фид изменений). UI-оболочка
// монтируется поверх сервисов из internal/ и в модуль не входит.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := app.NewLogger(cfg.Environment)
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.DBDSN)
	if err != nil {
		logger.Fatal("Failed to create connection pool", zap.Error(err))
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		logger.Fatal("Failed to ping database", zap.Error(err))
	}

	migrator, err := app.NewMigrator(pool, cfg.MigrationsPath, logger)
	if err != nil {
		logger.Fatal("Failed to create migrator", zap.Error(err))
	}
	if err := migrator.Run(ctx); err != nil {
		logger.Fatal("Failed to apply migrations", zap.Error(err))
	}
	migrator.Close()

	fallbackZone, err := time.LoadLocation(cfg.DefaultTimezone)
	if err != nil {
		logger.Fatal("Invalid DEFAULT_TIMEZONE", zap.String("timezone", cfg.DefaultTimezone), zap.Error(err))
	}

	sessionRepo := repository.NewSessionRepository(pool, logger)
	profileRepo := repository.NewProfileRepository(pool)

	resolver := timezone.NewResolver(profileRepo, fallbackZone, logger)
	projector := calendar.NewProjector(logger)

	resolver.Resolve(ctx, cfg.TutorID)

	refresh := func(ctx context.Context) {
		// Зона резолвится до первого refresh; bounded wait — страховка
		// на случай гонки со стартом.
		loc := resolver.ZoneOrDefault(ctx, 2*time.Second)

		now := time.Now()
		sessions, err := sessionRepo.ListByTutorRange(ctx, cfg.TutorID,
			now.AddDate(0, -1, 0), now.AddDate(0, 2, 0))
		if err != nil {
			logger.Error("Failed to load sessions for projection", zap.Error(err))
			return
		}

		projection := projector.Project(sessions, loc, now, model.TimeFormat24h)
		logger.Debug("Calendar projected",
			zap.Int("events", len(projection.Events)),
			zap.Int("skipped", projection.Skipped),
		)
	}

	refresher := app.NewRefresher(sessionRepo, cfg.TutorID, refresh, logger)
	refresher.Start(ctx)

	logger.Info("Scheduling core started",
		zap.String("environment", cfg.Environment),
		zap.Int64("tutor_id", cfg.TutorID),
		zap.String("default_timezone", cfg.DefaultTimezone),
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down")
	refresher.Stop()
	cancel()
}
