package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"daytrack-backend/internal/model"
)

var (
	// ErrNotFound is returned when a lookup or update matches no record.
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when a slot with the same start time exists.
	ErrConflict = errors.New("record already exists")
)

// TimeSlotStore defines the persistence operations for time slots.
type TimeSlotStore interface {
	// Get returns matching slots ordered by start time.
	Get(ctx context.Context, p Predicate) ([]model.TimeSlot, error)
	Create(ctx context.Context, slot *model.TimeSlot) error
	// Update applies mutate to the first slot matching p and persists it.
	Update(ctx context.Context, p Predicate, mutate func(*model.TimeSlot)) (*model.TimeSlot, error)
	// GetLast returns the slot with the latest start time, or nil.
	GetLast(ctx context.Context) (*model.TimeSlot, error)
	// Transaction runs fn against a store whose writes commit together.
	Transaction(ctx context.Context, fn func(tx TimeSlotStore) error) error
}

// gormTimeSlotStore implements TimeSlotStore using GORM.
type gormTimeSlotStore struct {
	db *gorm.DB
}

// NewGormTimeSlotStore creates a new GORM-backed time slot store.
func NewGormTimeSlotStore(db *gorm.DB) TimeSlotStore {
	return &gormTimeSlotStore{db: db}
}

func (s *gormTimeSlotStore) Get(ctx context.Context, p Predicate) ([]model.TimeSlot, error) {
	var slots []model.TimeSlot
	if err := p.apply(s.db.WithContext(ctx)).Order("start_time ASC").Find(&slots).Error; err != nil {
		return nil, fmt.Errorf("failed to query time slots: %w", err)
	}
	return slots, nil
}

func (s *gormTimeSlotStore) Create(ctx context.Context, slot *model.TimeSlot) error {
	normalizeSlot(slot)
	if err := s.db.WithContext(ctx).Create(slot).Error; err != nil {
		if isDuplicate(err) {
			return fmt.Errorf("%w: slot starting %s", ErrConflict, slot.StartTime)
		}
		return fmt.Errorf("failed to create time slot starting %s: %w", slot.StartTime, err)
	}
	return nil
}

func (s *gormTimeSlotStore) Update(ctx context.Context, p Predicate, mutate func(*model.TimeSlot)) (*model.TimeSlot, error) {
	var slot model.TimeSlot
	err := p.apply(s.db.WithContext(ctx)).Order("start_time ASC").Take(&slot).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load time slot for update: %w", err)
	}

	mutate(&slot)
	normalizeSlot(&slot)
	if err := s.db.WithContext(ctx).Save(&slot).Error; err != nil {
		return nil, fmt.Errorf("failed to update time slot %d: %w", slot.ID, err)
	}
	return &slot, nil
}

func (s *gormTimeSlotStore) GetLast(ctx context.Context) (*model.TimeSlot, error) {
	var slot model.TimeSlot
	err := s.db.WithContext(ctx).Order("start_time DESC").Take(&slot).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch last time slot: %w", err)
	}
	return &slot, nil
}

func (s *gormTimeSlotStore) Transaction(ctx context.Context, fn func(tx TimeSlotStore) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTimeSlotStore{db: tx})
	})
}

// normalizeSlot stores every instant in UTC so that sqlite's textual
// timestamps compare in chronological order.
func normalizeSlot(slot *model.TimeSlot) {
	slot.StartTime = slot.StartTime.UTC()
	if slot.EndTime != nil {
		end := slot.EndTime.UTC()
		slot.EndTime = &end
	}
	if slot.LocatedAt != nil {
		at := slot.LocatedAt.UTC()
		slot.LocatedAt = &at
	}
}

// isDuplicate recognizes unique violations whether or not the dialector
// translates them to gorm.ErrDuplicatedKey.
func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}
