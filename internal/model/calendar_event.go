package model

// CalendarEvent — готовое к отрисовке событие календаря в целевой зоне.
// IsPast влияет только на отображение, не на право редактирования.
type CalendarEvent struct {
	ID              int64  `json:"id"`
	Title           string `json:"title"`
	StartLocal      string `json:"start_local"`
	EndLocal        string `json:"end_local"`
	BackgroundColor string `json:"background_color"`
	IsPast          bool   `json:"is_past"`
}
