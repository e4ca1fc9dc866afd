// Package timeconv — чистая конвертация между UTC-инстантами и локальным
// настенным временем. Каждый инстант хранится в UTC; через этот пакет он
// проходит ровно один раз на пути к пользователю и обратно.
package timeconv

import (
	"fmt"
	"time"

	"github.com/steplykh/tutor_calendar/internal/model"
)

const (
	DateLayout = "2006-01-02"

	timeLayout24 = "15:04"
	timeLayout12 = "3:04 PM"
)

// timeLayout возвращает layout времени по формату из профиля репетитора.
func timeLayout(format model.TimeFormat) string {
	if format == model.TimeFormat12h {
		return timeLayout12
	}
	return timeLayout24
}

// ToLocalWallClock форматирует UTC-инстант как "дата время" в зоне loc.
func ToLocalWallClock(instant time.Time, loc *time.Location, format model.TimeFormat) string {
	local := instant.In(loc)
	return local.Format(DateLayout) + " " + local.Format(timeLayout(format))
}

// ToLocalDate форматирует только дату в зоне loc.
func ToLocalDate(instant time.Time, loc *time.Location) string {
	return instant.In(loc).Format(DateLayout)
}

// ToLocalTime форматирует только время в зоне loc.
func ToLocalTime(instant time.Time, loc *time.Location, format model.TimeFormat) string {
	return instant.In(loc).Format(timeLayout(format))
}

// FromLocalWallClock переводит локальные дату и время ("2006-01-02", "15:04")
// в UTC-инстант.
//
// Политика для несуществующего настенного времени (весенний переход, стрелки
// вперёд): время сдвигается вперёд на величину пропущенного интервала, т.е.
// 02:30 при переходе 02:00→03:00 становится 03:30 местного. Результат
// детерминирован и покрыт тестом, а не оставлен на усмотрение платформы.
func FromLocalWallClock(dateStr, timeStr string, loc *time.Location) (time.Time, error) {
	day, err := time.ParseInLocation(DateLayout, dateStr, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse local date %q: %w", dateStr, err)
	}

	clock, err := time.ParseInLocation(timeLayout24, timeStr, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse local time %q: %w", timeStr, err)
	}

	local := time.Date(day.Year(), day.Month(), day.Day(),
		clock.Hour(), clock.Minute(), 0, 0, loc)

	// time.Date разрешает несуществующее время со смещением до перехода,
	// т.е. настенные часы уезжают назад. Политика требует сдвига вперёд:
	// при расхождении с запрошенным временем добавляем величину разрыва.
	wanted := clock.Hour()*60 + clock.Minute()
	got := local.Hour()*60 + local.Minute()
	shift := wanted - got
	if shift > 12*60 {
		shift -= 24 * 60
	}
	if shift < -12*60 {
		shift += 24 * 60
	}
	if shift > 0 {
		local = local.Add(time.Duration(shift) * time.Minute)
	}

	return local.UTC(), nil
}

// DurationMinutes возвращает длительность интервала в минутах.
func DurationMinutes(start, end time.Time) (int, error) {
	if !end.After(start) {
		return 0, fmt.Errorf("%w: start=%s end=%s",
			model.ErrInvalidInterval, start.Format(time.RFC3339), end.Format(time.RFC3339))
	}
	return int(end.Sub(start) / time.Minute), nil
}
