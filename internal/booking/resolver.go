// Package booking — публичная запись: вычисление доступных стартов по окнам
// репетитора и создание pending-занятий от имени визитёра.
package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/steplykh/tutor_calendar/internal/model"
	"github.com/steplykh/tutor_calendar/internal/scheduling"
	"github.com/steplykh/tutor_calendar/internal/timeconv"
)

// StartStep — шаг выравнивания стартов внутри окна записи.
const StartStep = 30 * time.Minute

// DefaultLessonMinutes — длительность занятия публичной записи, если
// визитёр её не указал.
const DefaultLessonMinutes = 60

var validate = validator.New()

// SlotReader — доступ к окнам записи, только чтение: публичная форма
// никогда не мутирует окна, доступность пересчитывается на каждом чтении.
type SlotReader interface {
	ListActiveByTutor(ctx context.Context, tutorID int64) ([]*model.BookingSlot, error)
}

// SessionStore — чтение занятий для буферной проверки и вставка pending.
type SessionStore interface {
	ListByTutor(ctx context.Context, tutorID int64) ([]*model.Session, error)
	Insert(ctx context.Context, sessions []*model.Session) error
}

// StartOption — один доступный старт, с подписью в зоне визитёра.
type StartOption struct {
	Start      time.Time `json:"start"` // UTC
	LocalLabel string    `json:"local_label"`
}

// SlotAvailability — доступные старты одного окна записи.
type SlotAvailability struct {
	SlotID  int64         `json:"slot_id"`
	Options []StartOption `json:"options"`
}

// BookingRequest — заявка визитёра на занятие.
type BookingRequest struct {
	TutorID         int64     `validate:"required,gt=0"`
	Start           time.Time `validate:"required"` // UTC
	DurationMinutes int       `validate:"omitempty,min=30,max=240"`
	VisitorName     string    `validate:"required,max=120"`
}

// Resolver вычисляет доступность и оформляет публичные записи.
type Resolver struct {
	slots    SlotReader
	sessions SessionStore
	logger   *zap.Logger
	now      func() time.Time
}

// NewResolver создаёт резолвер публичной записи.
func NewResolver(slots SlotReader, sessions SessionStore, logger *zap.Logger) *Resolver {
	return &Resolver{
		slots:    slots,
		sessions: sessions,
		logger:   logger,
		now:      time.Now,
	}
}

// Availability возвращает для каждого активного непрошедшего окна старты с
// шагом StartStep, прошедшие буферную проверку против существующих занятий.
// Подписи форматируются в зоне визитёра (автоопределённой на клиенте, с
// возможностью ручного выбора).
func (r *Resolver) Availability(ctx context.Context, tutorID int64, visitorZone *time.Location, lessonMinutes int) ([]SlotAvailability, error) {
	if lessonMinutes <= 0 {
		lessonMinutes = DefaultLessonMinutes
	}
	lesson := time.Duration(lessonMinutes) * time.Minute

	slots, err := r.slots.ListActiveByTutor(ctx, tutorID)
	if err != nil {
		return nil, fmt.Errorf("list active slots: %w", err)
	}

	sessions, err := r.sessions.ListByTutor(ctx, tutorID)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	starts := sessionStarts(sessions)
	now := r.now()

	availability := make([]SlotAvailability, 0, len(slots))
	for _, slot := range slots {
		if !slot.End.After(now) {
			continue
		}

		entry := SlotAvailability{SlotID: slot.ID}
		for start := slot.Start; !start.Add(lesson).After(slot.End); start = start.Add(StartStep) {
			if start.Before(now) {
				continue
			}
			if scheduling.ViolatesStartBuffer(start, starts) {
				continue
			}
			entry.Options = append(entry.Options, StartOption{
				Start:      start,
				LocalLabel: timeconv.ToLocalWallClock(start, visitorZone, model.TimeFormat24h),
			})
		}

		if len(entry.Options) > 0 {
			availability = append(availability, entry)
		}
	}

	return availability, nil
}

// Book создаёт pending-занятие по заявке визитёра. Буферная проверка
// перечитывает занятия непосредственно перед вставкой; окно гонки между
// чтением и записью — принятое ограничение (побеждает последняя запись).
func (r *Resolver) Book(ctx context.Context, req BookingRequest) (*model.Session, error) {
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("validate booking request: %w", err)
	}

	if req.DurationMinutes == 0 {
		req.DurationMinutes = DefaultLessonMinutes
	}

	start := req.Start.UTC()
	end := start.Add(time.Duration(req.DurationMinutes) * time.Minute)
	now := r.now()

	if start.Before(now) {
		return nil, fmt.Errorf("book session: start is in the past: %w", model.ErrInvalidInterval)
	}

	covered, err := r.withinActiveSlot(ctx, req.TutorID, start, end)
	if err != nil {
		return nil, fmt.Errorf("list active slots: %w", err)
	}
	if !covered {
		return nil, fmt.Errorf("book session: no active slot covers the interval: %w", model.ErrOverlapConflict)
	}

	sessions, err := r.sessions.ListByTutor(ctx, req.TutorID)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	if scheduling.ViolatesStartBuffer(start, sessionStarts(sessions)) {
		return nil, fmt.Errorf("book session at %s: %w",
			start.Format(time.RFC3339), model.ErrOverlapConflict)
	}

	session := &model.Session{
		TutorID:         req.TutorID,
		StudentID:       nil,
		StudentName:     req.VisitorName,
		Start:           start,
		End:             end,
		DurationMinutes: req.DurationMinutes,
		Rate:            0,
		Paid:            false,
		Status:          model.SessionStatusPending,
	}

	if err := r.sessions.Insert(ctx, []*model.Session{session}); err != nil {
		return nil, fmt.Errorf("insert pending session: %w", err)
	}

	r.logger.Info("Public booking created",
		zap.Int64("session_id", session.ID),
		zap.Int64("tutor_id", req.TutorID),
		zap.Time("start", start),
		zap.String("visitor", req.VisitorName),
	)

	return session, nil
}

// withinActiveSlot проверяет, что интервал целиком лежит в активном окне.
// Ошибка хранилища поднимается наверх: сбой инфраструктуры не должен
// выглядеть для визитёра как конфликт расписания.
func (r *Resolver) withinActiveSlot(ctx context.Context, tutorID int64, start, end time.Time) (bool, error) {
	slots, err := r.slots.ListActiveByTutor(ctx, tutorID)
	if err != nil {
		return false, err
	}
	for _, slot := range slots {
		if !start.Before(slot.Start) && !end.After(slot.End) {
			return true, nil
		}
	}
	return false, nil
}

func sessionStarts(sessions []*model.Session) []time.Time {
	starts := make([]time.Time, 0, len(sessions))
	for _, session := range sessions {
		starts = append(starts, session.Start)
	}
	return starts
}
