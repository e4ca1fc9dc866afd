package model

import "time"

// BookingSlot представляет окно, в которое публичная форма может создать
// занятие со статусом pending. Слот никогда не мутируется при записи.
type BookingSlot struct {
	ID        int64     `json:"id"`
	TutorID   int64     `json:"tutor_id"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}
