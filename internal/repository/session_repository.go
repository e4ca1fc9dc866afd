package repository

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/steplykh/tutor_calendar/internal/model"
)

const sessionColumns = `id, tutor_id, student_id, student_name, start_time, end_time,
		duration_minutes, rate, paid, status, color_tag, notes, recurrence_id, created_at`

// SessionRepository управляет занятиями в базе данных. Интервалы хранятся
// в UTC (timestamptz); единственное каноническое представление времени —
// пара start_time/end_time, раздельных полей даты и времени в схеме нет.
type SessionRepository struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewSessionRepository создаёт новый репозиторий занятий.
func NewSessionRepository(pool *pgxpool.Pool, logger *zap.Logger) *SessionRepository {
	return &SessionRepository{pool: pool, logger: logger}
}

func scanSession(row pgx.Row) (*model.Session, error) {
	var session model.Session
	err := row.Scan(
		&session.ID,
		&session.TutorID,
		&session.StudentID,
		&session.StudentName,
		&session.Start,
		&session.End,
		&session.DurationMinutes,
		&session.Rate,
		&session.Paid,
		&session.Status,
		&session.ColorTag,
		&session.Notes,
		&session.RecurrenceID,
		&session.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	session.Start = session.Start.UTC()
	session.End = session.End.UTC()
	return &session, nil
}

// GetByID получает занятие по ID.
func (r *SessionRepository) GetByID(ctx context.Context, id int64) (*model.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE id = $1`

	session, err := scanSession(r.pool.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session by id: %w", err)
	}

	return session, nil
}

// ListByTutor получает все занятия репетитора.
func (r *SessionRepository) ListByTutor(ctx context.Context, tutorID int64) ([]*model.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE tutor_id = $1 ORDER BY start_time`

	rows, err := r.pool.Query(ctx, query, tutorID)
	if err != nil {
		return nil, fmt.Errorf("list sessions by tutor: %w", err)
	}
	defer rows.Close()

	return collectSessions(rows)
}

// ListByTutorRange получает занятия репетитора в диапазоне [from, to).
func (r *SessionRepository) ListByTutorRange(ctx context.Context, tutorID int64, from, to time.Time) ([]*model.Session, error) {
	query := `SELECT ` + sessionColumns + `
		FROM sessions
		WHERE tutor_id = $1
		  AND start_time >= $2
		  AND start_time < $3
		ORDER BY start_time`

	rows, err := r.pool.Query(ctx, query, tutorID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list sessions by range: %w", err)
	}
	defer rows.Close()

	return collectSessions(rows)
}

func collectSessions(rows pgx.Rows) ([]*model.Session, error) {
	var sessions []*model.Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, session)
	}
	return sessions, nil
}

// Insert сохраняет пачку занятий одной транзакцией: серия создаётся
// целиком или не создаётся вовсе.
func (r *SessionRepository) Insert(ctx context.Context, sessions []*model.Session) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO sessions (tutor_id, student_id, student_name, start_time, end_time,
			duration_minutes, rate, paid, status, color_tag, notes, recurrence_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at
	`

	for _, session := range sessions {
		err := tx.QueryRow(
			ctx, query,
			session.TutorID,
			session.StudentID,
			session.StudentName,
			session.Start,
			session.End,
			session.DurationMinutes,
			session.Rate,
			session.Paid,
			session.Status,
			session.ColorTag,
			session.Notes,
			session.RecurrenceID,
		).Scan(&session.ID, &session.CreatedAt)

		if err != nil {
			return fmt.Errorf("insert session: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// UpdateInterval обновляет интервал занятия после drag/resize.
func (r *SessionRepository) UpdateInterval(ctx context.Context, id int64, start, end time.Time, durationMinutes int) error {
	query := `
		UPDATE sessions
		SET start_time = $1, end_time = $2, duration_minutes = $3
		WHERE id = $4
	`

	result, err := r.pool.Exec(ctx, query, start, end, durationMinutes, id)
	if err != nil {
		return fmt.Errorf("update session interval: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("session %d: %w", id, model.ErrNotFound)
	}

	return nil
}

// UpdateNotes обновляет заметки одного занятия.
func (r *SessionRepository) UpdateNotes(ctx context.Context, id int64, notes string) error {
	result, err := r.pool.Exec(ctx, `UPDATE sessions SET notes = $1 WHERE id = $2`, notes, id)
	if err != nil {
		return fmt.Errorf("update session notes: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("session %d: %w", id, model.ErrNotFound)
	}

	return nil
}

// UpdateSeriesNotes обновляет заметки вхождений серии, начиная с from.
func (r *SessionRepository) UpdateSeriesNotes(ctx context.Context, recurrenceID uuid.UUID, from time.Time, notes string) error {
	query := `
		UPDATE sessions
		SET notes = $1
		WHERE recurrence_id = $2 AND start_time >= $3
	`

	_, err := r.pool.Exec(ctx, query, notes, recurrenceID, from)
	if err != nil {
		return fmt.Errorf("update series notes: %w", err)
	}

	return nil
}

// SetPaid обновляет отметку оплаты.
func (r *SessionRepository) SetPaid(ctx context.Context, id int64, paid bool) error {
	result, err := r.pool.Exec(ctx, `UPDATE sessions SET paid = $1 WHERE id = $2`, paid, id)
	if err != nil {
		return fmt.Errorf("set session paid: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("session %d: %w", id, model.ErrNotFound)
	}

	return nil
}

// Delete удаляет занятие.
func (r *SessionRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("session %d: %w", id, model.ErrNotFound)
	}

	return nil
}

// DeleteSeriesFrom удаляет вхождения серии с start_time >= from.
func (r *SessionRepository) DeleteSeriesFrom(ctx context.Context, recurrenceID uuid.UUID, from time.Time) (int64, error) {
	query := `DELETE FROM sessions WHERE recurrence_id = $1 AND start_time >= $2`

	result, err := r.pool.Exec(ctx, query, recurrenceID, from)
	if err != nil {
		return 0, fmt.Errorf("delete series: %w", err)
	}

	return result.RowsAffected(), nil
}

// Subscribe слушает канал session_changes (NOTIFY из триггера миграции) и
// зовёт onChange на каждое изменение занятий репетитора. Блокируется до
// отмены контекста; запускать в отдельной горутине.
func (r *SessionRepository) Subscribe(ctx context.Context, tutorID int64, onChange func()) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, `LISTEN session_changes`); err != nil {
		return fmt.Errorf("listen session_changes: %w", err)
	}

	r.logger.Info("Subscribed to session changes", zap.Int64("tutor_id", tutorID))

	for {
		notification, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("wait for notification: %w", err)
		}

		// В payload триггер кладёт tutor_id изменённой строки.
		changedTutor, err := strconv.ParseInt(notification.Payload, 10, 64)
		if err != nil {
			r.logger.Warn("Malformed change notification payload",
				zap.String("payload", notification.Payload))
			continue
		}

		if changedTutor == tutorID {
			onChange()
		}
	}
}
