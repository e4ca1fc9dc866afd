package app

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// DefaultRefreshInterval — период софт-пула перепроекции календаря.
const DefaultRefreshInterval = 30 * time.Second

// ChangeFeed — подписка на фид изменений хранилища занятий.
type ChangeFeed interface {
	Subscribe(ctx context.Context, tutorID int64, onChange func()) error
}

// Refresher дёргает колбэк перепроекции по трём источникам: периодический
// софт-пул, пуш из фида изменений и явный Kick после успешной мутации.
// События могут приходить в любом порядке и дублироваться, поэтому колбэк
// обязан быть идемпотентным.
type Refresher struct {
	feed     ChangeFeed
	tutorID  int64
	interval time.Duration
	refresh  func(ctx context.Context)
	logger   *zap.Logger
	kickChan chan struct{}
	stopChan chan struct{}
}

// NewRefresher создаёт рефрешер для одного репетитора.
func NewRefresher(feed ChangeFeed, tutorID int64, refresh func(ctx context.Context), logger *zap.Logger) *Refresher {
	return &Refresher{
		feed:     feed,
		tutorID:  tutorID,
		interval: DefaultRefreshInterval,
		refresh:  refresh,
		logger:   logger,
		kickChan: make(chan struct{}, 1),
		stopChan: make(chan struct{}),
	}
}

// Start запускает цикл обновления и слушателя фида изменений.
func (r *Refresher) Start(ctx context.Context) {
	r.logger.Info("Starting calendar refresher",
		zap.Int64("tutor_id", r.tutorID),
		zap.Duration("interval", r.interval))

	go r.runFeedListener(ctx)
	go r.runLoop(ctx)
}

// Stop останавливает цикл обновления.
func (r *Refresher) Stop() {
	r.logger.Info("Stopping calendar refresher")
	close(r.stopChan)
}

// Kick запрашивает внеочередное обновление (после успешной мутации).
// Неблокирующий: если обновление уже запрошено, второй сигнал не нужен.
func (r *Refresher) Kick() {
	select {
	case r.kickChan <- struct{}{}:
	default:
	}
}

func (r *Refresher) runLoop(ctx context.Context) {
	// Первое обновление сразу при старте
	r.refresh(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.refresh(ctx)
		case <-r.kickChan:
			r.refresh(ctx)
		case <-r.stopChan:
			r.logger.Info("Calendar refresher stopped")
			return
		case <-ctx.Done():
			r.logger.Info("Calendar refresher cancelled")
			return
		}
	}
}

func (r *Refresher) runFeedListener(ctx context.Context) {
	err := r.feed.Subscribe(ctx, r.tutorID, r.Kick)
	if err != nil {
		// Потеря слушателя не фатальна: софт-пул продолжает работать,
		// календарь отстаёт максимум на interval.
		r.logger.Warn("Change feed subscription ended", zap.Error(err))
	}
}
