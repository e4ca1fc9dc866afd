package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/steplykh/tutor_calendar/internal/model"
)

// SlotRepository управляет окнами публичной записи.
type SlotRepository struct {
	pool *pgxpool.Pool
}

// NewSlotRepository создаёт новый репозиторий окон.
func NewSlotRepository(pool *pgxpool.Pool) *SlotRepository {
	return &SlotRepository{pool: pool}
}

// Insert создаёт новое окно записи.
func (r *SlotRepository) Insert(ctx context.Context, slot *model.BookingSlot) error {
	query := `
		INSERT INTO booking_slots (tutor_id, start_time, end_time, active)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	err := r.pool.QueryRow(
		ctx, query,
		slot.TutorID,
		slot.Start,
		slot.End,
		slot.Active,
	).Scan(&slot.ID, &slot.CreatedAt)

	if err != nil {
		return fmt.Errorf("insert booking slot: %w", err)
	}

	return nil
}

// GetByID получает окно по ID.
func (r *SlotRepository) GetByID(ctx context.Context, id int64) (*model.BookingSlot, error) {
	query := `
		SELECT id, tutor_id, start_time, end_time, active, created_at
		FROM booking_slots
		WHERE id = $1
	`

	var slot model.BookingSlot
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&slot.ID,
		&slot.TutorID,
		&slot.Start,
		&slot.End,
		&slot.Active,
		&slot.CreatedAt,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get booking slot by id: %w", err)
	}

	slot.Start = slot.Start.UTC()
	slot.End = slot.End.UTC()
	return &slot, nil
}

// ListActiveByTutor получает активные окна репетитора.
func (r *SlotRepository) ListActiveByTutor(ctx context.Context, tutorID int64) ([]*model.BookingSlot, error) {
	query := `
		SELECT id, tutor_id, start_time, end_time, active, created_at
		FROM booking_slots
		WHERE tutor_id = $1 AND active
		ORDER BY start_time
	`

	rows, err := r.pool.Query(ctx, query, tutorID)
	if err != nil {
		return nil, fmt.Errorf("list active booking slots: %w", err)
	}
	defer rows.Close()

	var slots []*model.BookingSlot
	for rows.Next() {
		var slot model.BookingSlot
		err := rows.Scan(
			&slot.ID,
			&slot.TutorID,
			&slot.Start,
			&slot.End,
			&slot.Active,
			&slot.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan booking slot: %w", err)
		}
		slot.Start = slot.Start.UTC()
		slot.End = slot.End.UTC()
		slots = append(slots, &slot)
	}

	return slots, nil
}

// SetActive переключает активность окна.
func (r *SlotRepository) SetActive(ctx context.Context, id int64, active bool) error {
	result, err := r.pool.Exec(ctx, `UPDATE booking_slots SET active = $1 WHERE id = $2`, active, id)
	if err != nil {
		return fmt.Errorf("set booking slot active: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("booking slot %d: %w", id, model.ErrNotFound)
	}

	return nil
}

// Delete удаляет окно записи.
func (r *SlotRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM booking_slots WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete booking slot: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("booking slot %d: %w", id, model.ErrNotFound)
	}

	return nil
}
