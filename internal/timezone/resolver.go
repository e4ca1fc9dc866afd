// Package timezone резолвит каноническую IANA-зону репетитора.
package timezone

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/steplykh/tutor_calendar/internal/model"
)

// ProfileStore — доступ к профилю репетитора (внешняя система, только чтение).
type ProfileStore interface {
	GetByID(ctx context.Context, tutorID int64) (*model.TutorProfile, error)
}

// Resolver хранит текущую зону репетитора. До первого успешного Resolve
// любое чтение зоны завершается ErrTimezoneNotReady: молча подставлять
// fallback ядру запрещено, это право только внешней границы (ZoneOrDefault).
type Resolver struct {
	profiles ProfileStore
	fallback *time.Location
	logger   *zap.Logger

	mu       sync.RWMutex
	loc      *time.Location
	resolved bool
	ready    chan struct{}
}

// NewResolver создаёт резолвер с запасной зоной fallback.
func NewResolver(profiles ProfileStore, fallback *time.Location, logger *zap.Logger) *Resolver {
	return &Resolver{
		profiles: profiles,
		fallback: fallback,
		logger:   logger,
		ready:    make(chan struct{}),
	}
}

// Resolve загружает профиль и фиксирует зону. Вызывается при входе
// репетитора и повторно при обновлении профиля. Если профиль недоступен
// или зона пуста/некорректна — фиксируется fallback.
func (r *Resolver) Resolve(ctx context.Context, tutorID int64) *time.Location {
	loc := r.fallback

	profile, err := r.profiles.GetByID(ctx, tutorID)
	switch {
	case err != nil:
		r.logger.Warn("Profile lookup failed, using fallback timezone",
			zap.Int64("tutor_id", tutorID),
			zap.String("fallback", r.fallback.String()),
			zap.Error(err))
	case profile == nil || profile.Timezone == "":
		r.logger.Warn("Profile has no timezone, using fallback",
			zap.Int64("tutor_id", tutorID),
			zap.String("fallback", r.fallback.String()))
	default:
		parsed, parseErr := time.LoadLocation(profile.Timezone)
		if parseErr != nil {
			r.logger.Warn("Invalid IANA timezone in profile, using fallback",
				zap.Int64("tutor_id", tutorID),
				zap.String("timezone", profile.Timezone),
				zap.Error(parseErr))
		} else {
			loc = parsed
		}
	}

	r.mu.Lock()
	r.loc = loc
	if !r.resolved {
		r.resolved = true
		close(r.ready)
	}
	r.mu.Unlock()

	r.logger.Info("Timezone resolved",
		zap.Int64("tutor_id", tutorID),
		zap.String("timezone", loc.String()))

	return loc
}

// Zone возвращает текущую зону или ErrTimezoneNotReady до первого Resolve.
func (r *Resolver) Zone() (*time.Location, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if !r.resolved {
		return nil, fmt.Errorf("resolve timezone: %w", model.ErrTimezoneNotReady)
	}
	return r.loc, nil
}

// Resolved сообщает, завершилась ли хотя бы одна загрузка зоны.
func (r *Resolver) Resolved() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.resolved
}

// ZoneOrDefault ждёт разрешения зоны не дольше wait и возвращает fallback,
// если резолв так и не случился. Использовать только на внешней границе.
func (r *Resolver) ZoneOrDefault(ctx context.Context, wait time.Duration) *time.Location {
	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case <-r.ready:
		loc, err := r.Zone()
		if err != nil {
			return r.fallback
		}
		return loc
	case <-timer.C:
	case <-ctx.Done():
	}

	r.logger.Warn("Timezone not resolved within wait, substituting fallback",
		zap.Duration("wait", wait),
		zap.String("fallback", r.fallback.String()))
	return r.fallback
}
