package scheduling

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/teambition/rrule-go"

	"github.com/steplykh/tutor_calendar/internal/model"
	"github.com/steplykh/tutor_calendar/internal/timeconv"
)

var validate = validator.New()

// SessionDraft — черновик занятия из формы планирования.
type SessionDraft struct {
	StudentID          *int64 `validate:"omitempty,gt=0"`
	StudentName        string
	LocalDate          string `validate:"required"` // "2006-01-02" в зоне репетитора
	LocalTime          string `validate:"required"` // "15:04" в зоне репетитора
	DurationMinutes    int    `validate:"min=15,max=480"`
	Rate               int    `validate:"min=0"`
	ColorTag           string
	Notes              string
	RepeatWeekly       bool
	Weeks              int `validate:"omitempty,min=1,max=12"`
	ApplyNotesToSeries bool
}

// GenerateOccurrences разворачивает черновик в упорядоченный список занятий.
//
// Нулевое вхождение стоит на заданном локальном старте; вхождение k — на
// localStart + 7k дней с тем же локальным временем суток. Каждое вхождение
// конвертируется в UTC независимо: прибавлять 168 часов к UTC нельзя, на
// границе перевода часов это сместило бы локальное время на час.
func GenerateOccurrences(draft SessionDraft, tutorID int64, tutorZone *time.Location, now time.Time) ([]*model.Session, error) {
	if err := validate.Struct(draft); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrInvalidRecurrenceRequest, err)
	}

	clock, err := time.ParseInLocation("15:04", draft.LocalTime, tutorZone)
	if err != nil {
		return nil, fmt.Errorf("%w: parse local time %q: %v", model.ErrInvalidRecurrenceRequest, draft.LocalTime, err)
	}
	day, err := time.ParseInLocation(timeconv.DateLayout, draft.LocalDate, tutorZone)
	if err != nil {
		return nil, fmt.Errorf("%w: parse local date %q: %v", model.ErrInvalidRecurrenceRequest, draft.LocalDate, err)
	}

	localStart := time.Date(day.Year(), day.Month(), day.Day(),
		clock.Hour(), clock.Minute(), 0, 0, tutorZone)

	weeks := 1
	var recurrenceID *uuid.UUID
	if draft.RepeatWeekly {
		weeks = draft.Weeks
		if weeks == 0 {
			weeks = 1
		}

		// Якорь серии не может лежать раньше текущего локального дня.
		localToday := now.In(tutorZone)
		todayStart := time.Date(localToday.Year(), localToday.Month(), localToday.Day(), 0, 0, 0, 0, tutorZone)
		if day.Before(todayStart) {
			return nil, fmt.Errorf("%w: anchor date %s is before today in %s",
				model.ErrInvalidRecurrenceRequest, draft.LocalDate, tutorZone)
		}

		id := uuid.New()
		recurrenceID = &id
	}

	rule, err := rrule.NewRRule(rrule.ROption{
		Freq:    rrule.WEEKLY,
		Count:   weeks,
		Dtstart: localStart,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: build weekly rule: %v", model.ErrInvalidRecurrenceRequest, err)
	}

	duration := time.Duration(draft.DurationMinutes) * time.Minute

	sessions := make([]*model.Session, 0, weeks)
	for i, occLocal := range rule.All() {
		start := occLocal.UTC()

		notes := ""
		if i == 0 || draft.ApplyNotesToSeries {
			notes = draft.Notes
		}

		sessions = append(sessions, &model.Session{
			TutorID:         tutorID,
			StudentID:       draft.StudentID,
			StudentName:     draft.StudentName,
			Start:           start,
			End:             start.Add(duration),
			DurationMinutes: draft.DurationMinutes,
			Rate:            draft.Rate,
			Paid:            false,
			Status:          model.SessionStatusConfirmed,
			ColorTag:        draft.ColorTag,
			Notes:           notes,
			RecurrenceID:    recurrenceID,
		})
	}

	return sessions, nil
}
