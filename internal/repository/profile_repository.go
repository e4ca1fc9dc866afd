package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/steplykh/tutor_calendar/internal/model"
)

// ProfileRepository читает профили репетиторов. Профиль принадлежит
// внешней системе, здесь только чтение.
type ProfileRepository struct {
	pool *pgxpool.Pool
}

// NewProfileRepository создаёт новый репозиторий профилей.
func NewProfileRepository(pool *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{pool: pool}
}

// GetByID получает профиль репетитора по ID.
func (r *ProfileRepository) GetByID(ctx context.Context, tutorID int64) (*model.TutorProfile, error) {
	query := `
		SELECT id, timezone, currency, time_format
		FROM tutor_profiles
		WHERE id = $1
	`

	var profile model.TutorProfile
	err := r.pool.QueryRow(ctx, query, tutorID).Scan(
		&profile.ID,
		&profile.Timezone,
		&profile.Currency,
		&profile.TimeFormat,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get tutor profile by id: %w", err)
	}

	return &profile, nil
}
