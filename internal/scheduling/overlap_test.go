package scheduling

import (
	"testing"
	"time"
)

func at(hour, minute int) time.Time {
	return time.Date(2025, 6, 10, hour, minute, 0, 0, time.UTC)
}

func TestIntersectsBackToBackIsNotOverlap(t *testing.T) {
	existing := []Interval{{Start: at(11, 0), End: at(12, 0)}}

	if Intersects(Interval{Start: at(10, 0), End: at(11, 0)}, existing) {
		t.Fatalf("[10:00,11:00) and [11:00,12:00) must not overlap")
	}
}

func TestIntersectsTrueIntersection(t *testing.T) {
	existing := []Interval{{Start: at(10, 30), End: at(11, 30)}}

	if !Intersects(Interval{Start: at(10, 0), End: at(11, 0)}, existing) {
		t.Fatalf("[10:00,11:00) and [10:30,11:30) must overlap")
	}
}

func TestIntersectsContainment(t *testing.T) {
	existing := []Interval{{Start: at(9, 0), End: at(13, 0)}}

	if !Intersects(Interval{Start: at(10, 0), End: at(11, 0)}, existing) {
		t.Fatalf("contained interval must overlap")
	}
}

func TestIntersectsUnsortedInput(t *testing.T) {
	existing := []Interval{
		{Start: at(15, 0), End: at(16, 0)},
		{Start: at(8, 0), End: at(9, 0)},
		{Start: at(10, 30), End: at(11, 30)},
	}

	if !Intersects(Interval{Start: at(10, 0), End: at(11, 0)}, existing) {
		t.Fatalf("overlap must be found regardless of input order")
	}
	if Intersects(Interval{Start: at(12, 0), End: at(13, 0)}, existing) {
		t.Fatalf("free interval reported as overlapping")
	}
}

func TestViolatesStartBuffer(t *testing.T) {
	existing := []time.Time{at(14, 0)}

	if !ViolatesStartBuffer(at(14, 20), existing) {
		t.Fatalf("start 20 minutes after an existing start must be rejected")
	}
	if ViolatesStartBuffer(at(14, 35), existing) {
		t.Fatalf("start 35 minutes after an existing start must be accepted")
	}
	if !ViolatesStartBuffer(at(13, 45), existing) {
		t.Fatalf("buffer is symmetric: start 15 minutes before must be rejected")
	}
	if ViolatesStartBuffer(at(14, 30), existing) {
		t.Fatalf("start exactly at the buffer boundary must be accepted")
	}
}

func TestViolatesStartBufferIgnoresIntervalIntersection(t *testing.T) {
	// Буферная политика смотрит только на старты: занятие 14:00-15:00
	// не блокирует кандидата 14:35, хотя интервалы пересекаются.
	existing := []time.Time{at(14, 0)}

	if ViolatesStartBuffer(at(14, 35), existing) {
		t.Fatalf("buffered policy must ignore true interval intersection")
	}
}
