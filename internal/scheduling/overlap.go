package scheduling

import "time"

// StartBuffer — минимальный зазор между началом кандидата публичной записи
// и началом любого существующего занятия.
const StartBuffer = 30 * time.Minute

// Interval — полуоткрытый интервал [Start, End): начало входит, конец нет,
// поэтому занятия встык пересечением не считаются.
type Interval struct {
	Start time.Time
	End   time.Time
}

// Contains сообщает, попадает ли инстант внутрь интервала.
func (i Interval) Contains(t time.Time) bool {
	return !t.Before(i.Start) && t.Before(i.End)
}

// Intersects — строгая политика пересечения: истинное пересечение
// полуоткрытых интервалов. Используется при создании слотов репетитором
// и при валидации drag/resize. Вход не обязан быть отсортирован, O(n).
func Intersects(candidate Interval, existing []Interval) bool {
	for _, e := range existing {
		if candidate.Start.Before(e.End) && e.Start.Before(candidate.End) {
			return true
		}
	}
	return false
}

// ViolatesStartBuffer — буферная политика публичной записи: кандидат
// отклоняется, если его начало отстоит меньше чем на StartBuffer от начала
// любого существующего занятия, независимо от фактического пересечения
// интервалов. Намеренно держится отдельно от Intersects: исходные правила
// для репетитора и для публичной формы различаются, и мы их не объединяем.
func ViolatesStartBuffer(candidateStart time.Time, existingStarts []time.Time) bool {
	for _, s := range existingStarts {
		diff := candidateStart.Sub(s)
		if diff < 0 {
			diff = -diff
		}
		if diff < StartBuffer {
			return true
		}
	}
	return false
}
