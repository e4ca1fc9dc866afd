package model

type TimeFormat string

const (
	TimeFormat24h TimeFormat = "24h"
	TimeFormat12h TimeFormat = "12h"
)

// TutorProfile — профиль репетитора. Принадлежит внешней системе,
// здесь читается только timezone/currency/time_format.
type TutorProfile struct {
	ID         int64      `json:"id"`
	Timezone   string     `json:"timezone"` // IANA, например "Europe/Kyiv"
	Currency   string     `json:"currency"`
	TimeFormat TimeFormat `json:"time_format"`
}
