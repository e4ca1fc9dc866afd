package scheduling

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/steplykh/tutor_calendar/internal/model"
	"github.com/steplykh/tutor_calendar/internal/timeconv"
)

// MinSessionMinutes — нижняя граница длительности занятия при resize.
const MinSessionMinutes = 15

// SessionStore — то, что сервису нужно от хранилища занятий.
type SessionStore interface {
	GetByID(ctx context.Context, id int64) (*model.Session, error)
	ListByTutor(ctx context.Context, tutorID int64) ([]*model.Session, error)
	Insert(ctx context.Context, sessions []*model.Session) error
	UpdateInterval(ctx context.Context, id int64, start, end time.Time, durationMinutes int) error
	UpdateNotes(ctx context.Context, id int64, notes string) error
	UpdateSeriesNotes(ctx context.Context, recurrenceID uuid.UUID, from time.Time, notes string) error
	SetPaid(ctx context.Context, id int64, paid bool) error
	Delete(ctx context.Context, id int64) error
	DeleteSeriesFrom(ctx context.Context, recurrenceID uuid.UUID, from time.Time) (int64, error)
}

// MutationResult — дискриминированный результат drag/resize. При отказе
// Applied=false, а Previous хранит интервал до попытки, чтобы UI мог
// откатить перетащенное событие на место.
type MutationResult struct {
	Applied  bool
	Previous Interval
	Session  *model.Session
}

// SessionService реализует планирование и мутации занятий.
//
// Проверка пересечений читает хранилище непосредственно перед записью;
// между чтением и записью остаётся окно гонки check-then-act. Это принятое
// и задокументированное ограничение: блокировок на этом уровне нет,
// последняя запись побеждает, UI откатывается при отказе.
type SessionService struct {
	sessions SessionStore
	logger   *zap.Logger
	now      func() time.Time
}

// NewSessionService создаёт сервис занятий.
func NewSessionService(sessions SessionStore, logger *zap.Logger) *SessionService {
	return &SessionService{
		sessions: sessions,
		logger:   logger,
		now:      time.Now,
	}
}

// Schedule разворачивает черновик в серию занятий, проверяет каждое по
// строгой политике пересечений и сохраняет всё одним действием.
func (s *SessionService) Schedule(ctx context.Context, tutorID int64, tutorZone *time.Location, draft SessionDraft) ([]*model.Session, error) {
	occurrences, err := GenerateOccurrences(draft, tutorID, tutorZone, s.now())
	if err != nil {
		return nil, err
	}

	existing, err := s.tutorIntervals(ctx, tutorID, 0)
	if err != nil {
		return nil, err
	}

	for _, occ := range occurrences {
		candidate := Interval{Start: occ.Start, End: occ.End}
		if Intersects(candidate, existing) {
			return nil, fmt.Errorf("schedule session at %s: %w",
				occ.Start.Format(time.RFC3339), model.ErrOverlapConflict)
		}
		// Вхождения серии не должны пересекаться и между собой.
		existing = append(existing, candidate)
	}

	if err := s.sessions.Insert(ctx, occurrences); err != nil {
		return nil, fmt.Errorf("insert sessions: %w", err)
	}

	s.logger.Info("Sessions scheduled",
		zap.Int64("tutor_id", tutorID),
		zap.Int("count", len(occurrences)),
		zap.Bool("series", draft.RepeatWeekly),
	)

	return occurrences, nil
}

// Drag переносит занятие на новый старт с сохранением длительности.
// При отказе возвращает результат с прежним интервалом для отката UI.
func (s *SessionService) Drag(ctx context.Context, tutorID, sessionID int64, newStart time.Time) (*MutationResult, error) {
	session, err := s.ownedSession(ctx, tutorID, sessionID)
	if err != nil {
		return nil, err
	}

	result := &MutationResult{
		Previous: Interval{Start: session.Start, End: session.End},
		Session:  session,
	}

	duration := session.End.Sub(session.Start)
	newStart = newStart.UTC()
	newEnd := newStart.Add(duration)

	others, err := s.tutorIntervals(ctx, tutorID, sessionID)
	if err != nil {
		return nil, err
	}

	if Intersects(Interval{Start: newStart, End: newEnd}, others) {
		return result, fmt.Errorf("drag session %d: %w: %w",
			sessionID, model.ErrMutationRejected, model.ErrOverlapConflict)
	}

	if err := s.sessions.UpdateInterval(ctx, sessionID, newStart, newEnd, session.DurationMinutes); err != nil {
		return result, fmt.Errorf("drag session %d: %w: %v", sessionID, model.ErrMutationRejected, err)
	}

	session.Start = newStart
	session.End = newEnd
	result.Applied = true

	s.logger.Info("Session dragged",
		zap.Int64("session_id", sessionID),
		zap.Int64("tutor_id", tutorID),
		zap.Time("new_start", newStart),
	)

	return result, nil
}

// Resize меняет конец занятия, пересчитывая длительность. Отклоняет
// результат короче MinSessionMinutes и resize уже прошедших занятий.
func (s *SessionService) Resize(ctx context.Context, tutorID, sessionID int64, newEnd time.Time) (*MutationResult, error) {
	session, err := s.ownedSession(ctx, tutorID, sessionID)
	if err != nil {
		return nil, err
	}

	result := &MutationResult{
		Previous: Interval{Start: session.Start, End: session.End},
		Session:  session,
	}

	if session.End.Before(s.now()) {
		return result, fmt.Errorf("resize session %d: session is past: %w",
			sessionID, model.ErrMutationRejected)
	}

	newEnd = newEnd.UTC()
	minutes, err := timeconv.DurationMinutes(session.Start, newEnd)
	if err != nil {
		return result, fmt.Errorf("resize session %d: %w: %v", sessionID, model.ErrMutationRejected, err)
	}
	if minutes < MinSessionMinutes {
		return result, fmt.Errorf("resize session %d: duration %d min is below minimum: %w",
			sessionID, minutes, model.ErrMutationRejected)
	}

	others, err := s.tutorIntervals(ctx, tutorID, sessionID)
	if err != nil {
		return nil, err
	}

	if Intersects(Interval{Start: session.Start, End: newEnd}, others) {
		return result, fmt.Errorf("resize session %d: %w: %w",
			sessionID, model.ErrMutationRejected, model.ErrOverlapConflict)
	}

	if err := s.sessions.UpdateInterval(ctx, sessionID, session.Start, newEnd, minutes); err != nil {
		return result, fmt.Errorf("resize session %d: %w: %v", sessionID, model.ErrMutationRejected, err)
	}

	session.End = newEnd
	session.DurationMinutes = minutes
	result.Applied = true

	s.logger.Info("Session resized",
		zap.Int64("session_id", sessionID),
		zap.Int64("tutor_id", tutorID),
		zap.Int("duration_minutes", minutes),
	)

	return result, nil
}

// CancelSession удаляет одно занятие.
func (s *SessionService) CancelSession(ctx context.Context, tutorID, sessionID int64) error {
	if _, err := s.ownedSession(ctx, tutorID, sessionID); err != nil {
		return err
	}

	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	s.logger.Info("Session canceled",
		zap.Int64("session_id", sessionID),
		zap.Int64("tutor_id", tutorID),
	)

	return nil
}

// CancelSeries удаляет все будущие вхождения серии (start >= now).
func (s *SessionService) CancelSeries(ctx context.Context, tutorID int64, recurrenceID uuid.UUID) (int64, error) {
	sessions, err := s.sessions.ListByTutor(ctx, tutorID)
	if err != nil {
		return 0, fmt.Errorf("list sessions: %w", err)
	}

	owned := false
	for _, session := range sessions {
		if session.RecurrenceID != nil && *session.RecurrenceID == recurrenceID {
			owned = true
			break
		}
	}
	if !owned {
		return 0, fmt.Errorf("recurrence %s: %w", recurrenceID, model.ErrNotFound)
	}

	deleted, err := s.sessions.DeleteSeriesFrom(ctx, recurrenceID, s.now())
	if err != nil {
		return 0, fmt.Errorf("delete series: %w", err)
	}

	s.logger.Info("Series canceled",
		zap.String("recurrence_id", recurrenceID.String()),
		zap.Int64("tutor_id", tutorID),
		zap.Int64("deleted", deleted),
	)

	return deleted, nil
}

// SetPaid переключает отметку оплаты. Прошедшие занятия остаются
// редактируемыми: IsPast влияет только на отображение.
func (s *SessionService) SetPaid(ctx context.Context, tutorID, sessionID int64, paid bool) error {
	if _, err := s.ownedSession(ctx, tutorID, sessionID); err != nil {
		return err
	}

	if err := s.sessions.SetPaid(ctx, sessionID, paid); err != nil {
		return fmt.Errorf("set paid: %w", err)
	}

	s.logger.Info("Session payment updated",
		zap.Int64("session_id", sessionID),
		zap.Bool("paid", paid),
	)

	return nil
}

// UpdateNotes обновляет заметки занятия; при applyToSeries — заметки всех
// будущих вхождений той же серии.
func (s *SessionService) UpdateNotes(ctx context.Context, tutorID, sessionID int64, notes string, applyToSeries bool) error {
	session, err := s.ownedSession(ctx, tutorID, sessionID)
	if err != nil {
		return err
	}

	if applyToSeries && session.RecurrenceID != nil {
		if err := s.sessions.UpdateSeriesNotes(ctx, *session.RecurrenceID, session.Start, notes); err != nil {
			return fmt.Errorf("update series notes: %w", err)
		}
	} else {
		if err := s.sessions.UpdateNotes(ctx, sessionID, notes); err != nil {
			return fmt.Errorf("update notes: %w", err)
		}
	}

	s.logger.Info("Session notes updated",
		zap.Int64("session_id", sessionID),
		zap.Bool("apply_to_series", applyToSeries),
	)

	return nil
}

// ownedSession загружает занятие и проверяет принадлежность репетитору.
func (s *SessionService) ownedSession(ctx context.Context, tutorID, sessionID int64) (*model.Session, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	if session == nil {
		return nil, fmt.Errorf("session %d: %w", sessionID, model.ErrNotFound)
	}
	if session.TutorID != tutorID {
		return nil, fmt.Errorf("session %d does not belong to tutor %d: %w",
			sessionID, tutorID, model.ErrMutationRejected)
	}
	return session, nil
}

// tutorIntervals собирает интервалы занятий репетитора, исключая excludeID.
// Чтение происходит непосредственно перед записью (см. комментарий к типу).
func (s *SessionService) tutorIntervals(ctx context.Context, tutorID, excludeID int64) ([]Interval, error) {
	sessions, err := s.sessions.ListByTutor(ctx, tutorID)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	intervals := make([]Interval, 0, len(sessions))
	for _, session := range sessions {
		if session.ID == excludeID {
			continue
		}
		intervals = append(intervals, Interval{Start: session.Start, End: session.End})
	}
	return intervals, nil
}
