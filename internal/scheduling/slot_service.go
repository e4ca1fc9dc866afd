package scheduling

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/steplykh/tutor_calendar/internal/model"
)

// SlotStore — то, что сервису нужно от хранилища окон записи.
type SlotStore interface {
	GetByID(ctx context.Context, id int64) (*model.BookingSlot, error)
	ListActiveByTutor(ctx context.Context, tutorID int64) ([]*model.BookingSlot, error)
	Insert(ctx context.Context, slot *model.BookingSlot) error
	SetActive(ctx context.Context, id int64, active bool) error
	Delete(ctx context.Context, id int64) error
}

// SlotService управляет окнами публичной записи репетитора.
type SlotService struct {
	slots  SlotStore
	logger *zap.Logger
	now    func() time.Time
}

// NewSlotService создаёт сервис окон записи.
func NewSlotService(slots SlotStore, logger *zap.Logger) *SlotService {
	return &SlotService{
		slots:  slots,
		logger: logger,
		now:    time.Now,
	}
}

// CreateSlot создаёт окно записи. Активные окна одного репетитора не должны
// пересекаться — здесь действует строгая политика, не буферная.
func (s *SlotService) CreateSlot(ctx context.Context, tutorID int64, start, end time.Time) (*model.BookingSlot, error) {
	start, end = start.UTC(), end.UTC()

	if !end.After(start) {
		return nil, fmt.Errorf("create slot: %w", model.ErrInvalidInterval)
	}
	if start.Before(s.now()) {
		return nil, fmt.Errorf("create slot: start is in the past: %w", model.ErrInvalidInterval)
	}

	active, err := s.slots.ListActiveByTutor(ctx, tutorID)
	if err != nil {
		return nil, fmt.Errorf("list active slots: %w", err)
	}

	existing := make([]Interval, 0, len(active))
	for _, slot := range active {
		existing = append(existing, Interval{Start: slot.Start, End: slot.End})
	}

	if Intersects(Interval{Start: start, End: end}, existing) {
		return nil, fmt.Errorf("create slot: %w", model.ErrOverlapConflict)
	}

	slot := &model.BookingSlot{
		TutorID: tutorID,
		Start:   start,
		End:     end,
		Active:  true,
	}

	if err := s.slots.Insert(ctx, slot); err != nil {
		return nil, fmt.Errorf("insert slot: %w", err)
	}

	s.logger.Info("Booking slot created",
		zap.Int64("slot_id", slot.ID),
		zap.Int64("tutor_id", tutorID),
		zap.Time("start", start),
	)

	return slot, nil
}

// ToggleSlot переключает активность окна.
func (s *SlotService) ToggleSlot(ctx context.Context, tutorID, slotID int64) (*model.BookingSlot, error) {
	slot, err := s.ownedSlot(ctx, tutorID, slotID)
	if err != nil {
		return nil, err
	}

	// Повторная активация не должна создавать пересечений с окнами,
	// появившимися пока это было выключено.
	if !slot.Active {
		active, err := s.slots.ListActiveByTutor(ctx, tutorID)
		if err != nil {
			return nil, fmt.Errorf("list active slots: %w", err)
		}
		existing := make([]Interval, 0, len(active))
		for _, other := range active {
			if other.ID == slotID {
				continue
			}
			existing = append(existing, Interval{Start: other.Start, End: other.End})
		}
		if Intersects(Interval{Start: slot.Start, End: slot.End}, existing) {
			return nil, fmt.Errorf("activate slot: %w", model.ErrOverlapConflict)
		}
	}

	slot.Active = !slot.Active
	if err := s.slots.SetActive(ctx, slotID, slot.Active); err != nil {
		return nil, fmt.Errorf("set slot active: %w", err)
	}

	s.logger.Info("Booking slot toggled",
		zap.Int64("slot_id", slotID),
		zap.Bool("active", slot.Active),
	)

	return slot, nil
}

// DeleteSlot удаляет окно записи.
func (s *SlotService) DeleteSlot(ctx context.Context, tutorID, slotID int64) error {
	if _, err := s.ownedSlot(ctx, tutorID, slotID); err != nil {
		return err
	}

	if err := s.slots.Delete(ctx, slotID); err != nil {
		return fmt.Errorf("delete slot: %w", err)
	}

	s.logger.Info("Booking slot deleted",
		zap.Int64("slot_id", slotID),
		zap.Int64("tutor_id", tutorID),
	)

	return nil
}

func (s *SlotService) ownedSlot(ctx context.Context, tutorID, slotID int64) (*model.BookingSlot, error) {
	slot, err := s.slots.GetByID(ctx, slotID)
	if err != nil {
		return nil, fmt.Errorf("get slot: %w", err)
	}
	if slot == nil {
		return nil, fmt.Errorf("slot %d: %w", slotID, model.ErrNotFound)
	}
	if slot.TutorID != tutorID {
		return nil, fmt.Errorf("slot %d does not belong to tutor %d: %w",
			slotID, tutorID, model.ErrNotFound)
	}
	return slot, nil
}
