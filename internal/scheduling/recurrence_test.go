package scheduling

import (
	"errors"
	"testing"
	"time"

	"github.com/steplykh/tutor_calendar/internal/model"
)

func mustZone(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	if err != nil {
		t.Fatalf("load location %s: %v", name, err)
	}
	return loc
}

func weeklyDraft(date string, weeks int) SessionDraft {
	return SessionDraft{
		StudentName:     "Олена",
		LocalDate:       date,
		LocalTime:       "09:00",
		DurationMinutes: 60,
		Rate:            500,
		RepeatWeekly:    true,
		Weeks:           weeks,
	}
}

func TestGenerateOccurrencesKeepsLocalTimeAcrossSpringForward(t *testing.T) {
	ny := mustZone(t, "America/New_York")
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	sessions, err := GenerateOccurrences(weeklyDraft("2025-03-02", 4), 1, ny, now)
	if err != nil {
		t.Fatalf("GenerateOccurrences: %v", err)
	}
	if len(sessions) != 4 {
		t.Fatalf("expected 4 occurrences, got %d", len(sessions))
	}

	// 2025-03-09 — весенний перевод стрелок в New York. Каждое вхождение
	// обязано остаться на 09:00 местного, а не уехать на 08:00 или 10:00.
	wantUTC := []time.Time{
		time.Date(2025, 3, 2, 14, 0, 0, 0, time.UTC),  // 09:00 EST
		time.Date(2025, 3, 9, 13, 0, 0, 0, time.UTC),  // 09:00 EDT
		time.Date(2025, 3, 16, 13, 0, 0, 0, time.UTC), // 09:00 EDT
		time.Date(2025, 3, 23, 13, 0, 0, 0, time.UTC), // 09:00 EDT
	}

	for i, session := range sessions {
		if !session.Start.Equal(wantUTC[i]) {
			t.Fatalf("occurrence %d: expected %s, got %s", i, wantUTC[i], session.Start)
		}
		local := session.Start.In(ny)
		if local.Hour() != 9 || local.Minute() != 0 {
			t.Fatalf("occurrence %d: expected 09:00 local, got %02d:%02d", i, local.Hour(), local.Minute())
		}
		if local.Weekday() != time.Sunday {
			t.Fatalf("occurrence %d: expected Sunday, got %s", i, local.Weekday())
		}
	}
}

func TestGenerateOccurrencesKyivSeries(t *testing.T) {
	kyiv := mustZone(t, "Europe/Kyiv")
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	draft := SessionDraft{
		LocalDate:       "2025-06-10",
		LocalTime:       "14:00",
		DurationMinutes: 60,
		RepeatWeekly:    true,
		Weeks:           3,
	}

	sessions, err := GenerateOccurrences(draft, 7, kyiv, now)
	if err != nil {
		t.Fatalf("GenerateOccurrences: %v", err)
	}
	if len(sessions) != 3 {
		t.Fatalf("expected 3 occurrences, got %d", len(sessions))
	}

	wantUTC := []time.Time{
		time.Date(2025, 6, 10, 11, 0, 0, 0, time.UTC),
		time.Date(2025, 6, 17, 11, 0, 0, 0, time.UTC),
		time.Date(2025, 6, 24, 11, 0, 0, 0, time.UTC),
	}

	if sessions[0].RecurrenceID == nil {
		t.Fatalf("series occurrences must carry a recurrence id")
	}
	recurrenceID := *sessions[0].RecurrenceID

	for i, session := range sessions {
		if !session.Start.Equal(wantUTC[i]) {
			t.Fatalf("occurrence %d: expected %s, got %s", i, wantUTC[i], session.Start)
		}
		if session.DurationMinutes != 60 {
			t.Fatalf("occurrence %d: expected 60 minutes, got %d", i, session.DurationMinutes)
		}
		if !session.End.Equal(session.Start.Add(60 * time.Minute)) {
			t.Fatalf("occurrence %d: end is inconsistent with duration", i)
		}
		if session.RecurrenceID == nil || *session.RecurrenceID != recurrenceID {
			t.Fatalf("occurrence %d: recurrence id differs within series", i)
		}
		if session.TutorID != 7 {
			t.Fatalf("occurrence %d: expected tutor 7, got %d", i, session.TutorID)
		}
	}
}

func TestGenerateOccurrencesSingleSessionHasNoRecurrenceID(t *testing.T) {
	kyiv := mustZone(t, "Europe/Kyiv")
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	draft := SessionDraft{
		LocalDate:       "2025-06-10",
		LocalTime:       "14:00",
		DurationMinutes: 60,
	}

	sessions, err := GenerateOccurrences(draft, 1, kyiv, now)
	if err != nil {
		t.Fatalf("GenerateOccurrences: %v", err)
	}
	if len(sessions) != 1 {
		t.Fatalf("expected a single occurrence, got %d", len(sessions))
	}
	if sessions[0].RecurrenceID != nil {
		t.Fatalf("single session must not carry a recurrence id")
	}
}

func TestGenerateOccurrencesNotesPropagation(t *testing.T) {
	kyiv := mustZone(t, "Europe/Kyiv")
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	draft := weeklyDraft("2025-06-10", 3)
	draft.LocalTime = "14:00"
	draft.Notes = "взять учебник"

	sessions, err := GenerateOccurrences(draft, 1, kyiv, now)
	if err != nil {
		t.Fatalf("GenerateOccurrences: %v", err)
	}
	if sessions[0].Notes != "взять учебник" {
		t.Fatalf("occurrence 0 must always carry the notes")
	}
	for i, session := range sessions[1:] {
		if session.Notes != "" {
			t.Fatalf("occurrence %d must not carry notes without ApplyNotesToSeries", i+1)
		}
	}

	draft.ApplyNotesToSeries = true
	sessions, err = GenerateOccurrences(draft, 1, kyiv, now)
	if err != nil {
		t.Fatalf("GenerateOccurrences: %v", err)
	}
	for i, session := range sessions {
		if session.Notes != "взять учебник" {
			t.Fatalf("occurrence %d must carry notes with ApplyNotesToSeries", i)
		}
	}
}

func TestGenerateOccurrencesRejectsPastAnchor(t *testing.T) {
	kyiv := mustZone(t, "Europe/Kyiv")
	// 23:30 UTC 10 июня — в Киеве уже 11 июня, якорь 10 июня в прошлом.
	now := time.Date(2025, 6, 10, 23, 30, 0, 0, time.UTC)

	_, err := GenerateOccurrences(weeklyDraft("2025-06-10", 2), 1, kyiv, now)
	if !errors.Is(err, model.ErrInvalidRecurrenceRequest) {
		t.Fatalf("expected ErrInvalidRecurrenceRequest for past anchor, got %v", err)
	}
}

func TestGenerateOccurrencesTodayAnchorIsAllowed(t *testing.T) {
	kyiv := mustZone(t, "Europe/Kyiv")
	now := time.Date(2025, 6, 10, 5, 0, 0, 0, time.UTC) // 08:00 в Киеве

	if _, err := GenerateOccurrences(weeklyDraft("2025-06-10", 2), 1, kyiv, now); err != nil {
		t.Fatalf("anchor on the current local day must be allowed: %v", err)
	}
}

func TestGenerateOccurrencesRejectsInvalidWeeks(t *testing.T) {
	kyiv := mustZone(t, "Europe/Kyiv")
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	_, err := GenerateOccurrences(weeklyDraft("2025-06-10", 13), 1, kyiv, now)
	if !errors.Is(err, model.ErrInvalidRecurrenceRequest) {
		t.Fatalf("expected ErrInvalidRecurrenceRequest for weeks=13, got %v", err)
	}
}

func TestGenerateOccurrencesRejectsShortDuration(t *testing.T) {
	kyiv := mustZone(t, "Europe/Kyiv")
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	draft := weeklyDraft("2025-06-10", 2)
	draft.DurationMinutes = 10

	if _, err := GenerateOccurrences(draft, 1, kyiv, now); !errors.Is(err, model.ErrInvalidRecurrenceRequest) {
		t.Fatalf("expected ErrInvalidRecurrenceRequest for 10-minute draft, got %v", err)
	}
}
