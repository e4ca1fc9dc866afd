package model

import (
	"time"

	"github.com/google/uuid"
)

type SessionStatus string

const (
	SessionStatusConfirmed SessionStatus = "confirmed" // Создана репетитором
	SessionStatusPending   SessionStatus = "pending"   // Создана через публичную запись, ждёт подтверждения
)

// Session представляет занятие. Start и End всегда хранятся в UTC,
// в локальное время они переводятся только на границе отображения.
type Session struct {
	ID              int64         `json:"id"`
	TutorID         int64         `json:"tutor_id"`
	StudentID       *int64        `json:"student_id"` // nil для неназначенных публичных записей
	StudentName     string        `json:"student_name"`
	Start           time.Time     `json:"start"`
	End             time.Time     `json:"end"`
	DurationMinutes int           `json:"duration_minutes"`
	Rate            int           `json:"rate"`
	Paid            bool          `json:"paid"`
	Status          SessionStatus `json:"status"`
	ColorTag        string        `json:"color_tag"`
	Notes           string        `json:"notes"`
	RecurrenceID    *uuid.UUID    `json:"recurrence_id"` // общий для занятий, созданных одной серией
	CreatedAt       time.Time     `json:"created_at"`
}
