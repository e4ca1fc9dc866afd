// Package calendar проецирует сохранённые занятия в события для отрисовки.
package calendar

import (
	"time"

	"go.uber.org/zap"

	"github.com/steplykh/tutor_calendar/internal/model"
	"github.com/steplykh/tutor_calendar/internal/timeconv"
)

// Цвета событий. Первое совпавшее правило побеждает:
// pending → amber, неоплаченное подтверждённое → red, явный тег → тег.
const (
	ColorPending = "#f59e0b"
	ColorUnpaid  = "#ef4444"
	ColorDefault = "#3b82f6"
)

const placeholderTitle = "Session"

// Projection — результат проекции. Skipped считает записи без одного из
// концов интервала: они пропускаются, проекция на них не падает.
type Projection struct {
	Events  []model.CalendarEvent
	Skipped int
}

// Projector переводит занятия в события календаря в целевой зоне.
// Чистый и идемпотентный: повторный вызов на тех же входах даёт тот же
// список и не накапливает состояния, поэтому его безопасно дёргать из
// софт-пула, из фида изменений и после каждой мутации в любом порядке.
type Projector struct {
	logger *zap.Logger
}

// NewProjector создаёт проектор.
func NewProjector(logger *zap.Logger) *Projector {
	return &Projector{logger: logger}
}

// Project строит события для списка занятий в зоне loc.
func (p *Projector) Project(sessions []*model.Session, loc *time.Location, now time.Time, format model.TimeFormat) Projection {
	projection := Projection{
		Events: make([]model.CalendarEvent, 0, len(sessions)),
	}

	for _, session := range sessions {
		if session == nil || session.Start.IsZero() || session.End.IsZero() {
			projection.Skipped++
			continue
		}

		projection.Events = append(projection.Events, model.CalendarEvent{
			ID:              session.ID,
			Title:           eventTitle(session),
			StartLocal:      timeconv.ToLocalWallClock(session.Start, loc, format),
			EndLocal:        timeconv.ToLocalWallClock(session.End, loc, format),
			BackgroundColor: eventColor(session),
			IsPast:          session.End.Before(now),
		})
	}

	if projection.Skipped > 0 {
		p.logger.Warn("Skipped malformed sessions during projection",
			zap.Int("skipped", projection.Skipped),
			zap.Int("projected", len(projection.Events)),
		)
	}

	return projection
}

// eventTitle: имя назначенного ученика > имя из публичной записи > заглушка.
// Оба имени приходят в одном поле: у назначенных учеников оно заполняется
// из связанного профиля на границе хранилища, у публичных записей — визитёром.
func eventTitle(session *model.Session) string {
	if session.StudentName != "" {
		return session.StudentName
	}
	return placeholderTitle
}

func eventColor(session *model.Session) string {
	switch {
	case session.Status == model.SessionStatusPending:
		return ColorPending
	case !session.Paid:
		return ColorUnpaid
	case session.ColorTag != "":
		return session.ColorTag
	default:
		return ColorDefault
	}
}
