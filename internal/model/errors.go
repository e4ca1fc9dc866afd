package model

import "errors"

// Ошибки ядра планирования. Вызывающий код различает их через errors.Is.
var (
	// ErrTimezoneNotReady — попытка форматировать локальное время до того,
	// как резолвер зоны завершил первую загрузку профиля.
	ErrTimezoneNotReady = errors.New("timezone not resolved yet")

	// ErrInvalidInterval — конец интервала не позже начала.
	ErrInvalidInterval = errors.New("interval end must be after start")

	// ErrInvalidRecurrenceRequest — некорректный запрос еженедельной серии.
	ErrInvalidRecurrenceRequest = errors.New("invalid recurrence request")

	// ErrOverlapConflict — кандидат пересекается с существующим занятием.
	ErrOverlapConflict = errors.New("interval overlaps an existing session")

	// ErrMutationRejected — drag/resize отклонён, UI должен откатить событие.
	ErrMutationRejected = errors.New("mutation rejected")

	// ErrNotFound — сущность не найдена.
	ErrNotFound = errors.New("not found")
)
