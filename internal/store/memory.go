package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"daytrack-backend/internal/model"
)

// memoryTimeSlotStore keeps slots sorted by start time. Transactions run
// against a copy that replaces the live data only when fn succeeds.
type memoryTimeSlotStore struct {
	mu     sync.RWMutex
	slots  []model.TimeSlot
	nextID int64
}

// NewMemoryTimeSlotStore creates an empty in-memory time slot store.
func NewMemoryTimeSlotStore() TimeSlotStore {
	return &memoryTimeSlotStore{nextID: 1}
}

func (s *memoryTimeSlotStore) Get(_ context.Context, p Predicate) ([]model.TimeSlot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.TimeSlot
	for _, slot := range s.slots {
		if p.Matches(slot.StartTime) {
			out = append(out, cloneSlot(slot))
		}
	}
	return out, nil
}

func (s *memoryTimeSlotStore) Create(_ context.Context, slot *model.TimeSlot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	normalizeSlot(slot)
	i := sort.Search(len(s.slots), func(i int) bool { return !s.slots[i].StartTime.Before(slot.StartTime) })
	if i < len(s.slots) && s.slots[i].StartTime.Equal(slot.StartTime) {
		return fmt.Errorf("%w: slot starting %s", ErrConflict, slot.StartTime)
	}

	slot.ID = s.nextID
	s.nextID++
	s.slots = append(s.slots, model.TimeSlot{})
	copy(s.slots[i+1:], s.slots[i:])
	s.slots[i] = cloneSlot(*slot)
	return nil
}

func (s *memoryTimeSlotStore) Update(_ context.Context, p Predicate, mutate func(*model.TimeSlot)) (*model.TimeSlot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.slots {
		if !p.Matches(s.slots[i].StartTime) {
			continue
		}
		updated := cloneSlot(s.slots[i])
		mutate(&updated)
		normalizeSlot(&updated)
		// The start time is the sort key and must not move.
		updated.StartTime = s.slots[i].StartTime
		updated.ID = s.slots[i].ID
		s.slots[i] = cloneSlot(updated)
		return &updated, nil
	}
	return nil, ErrNotFound
}

func (s *memoryTimeSlotStore) GetLast(_ context.Context) (*model.TimeSlot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.slots) == 0 {
		return nil, nil
	}
	last := cloneSlot(s.slots[len(s.slots)-1])
	return &last, nil
}

func (s *memoryTimeSlotStore) Transaction(_ context.Context, fn func(tx TimeSlotStore) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memoryTimeSlotStore{nextID: s.nextID, slots: make([]model.TimeSlot, len(s.slots))}
	for i, slot := range s.slots {
		tx.slots[i] = cloneSlot(slot)
	}
	if err := fn(tx); err != nil {
		return err
	}
	s.slots = tx.slots
	s.nextID = tx.nextID
	return nil
}

func cloneSlot(slot model.TimeSlot) model.TimeSlot {
	if slot.EndTime != nil {
		end := *slot.EndTime
		slot.EndTime = &end
	}
	if slot.SmartGuessID != nil {
		id := *slot.SmartGuessID
		slot.SmartGuessID = &id
	}
	if slot.Latitude != nil {
		lat := *slot.Latitude
		slot.Latitude = &lat
	}
	if slot.Longitude != nil {
		lng := *slot.Longitude
		slot.Longitude = &lng
	}
	if slot.LocatedAt != nil {
		at := *slot.LocatedAt
		slot.LocatedAt = &at
	}
	return slot
}

// memorySmartGuessStore indexes guesses by ID and remembers insertion order.
type memorySmartGuessStore struct {
	mu      sync.RWMutex
	guesses map[string]model.SmartGuess
	order   []string
}

// NewMemorySmartGuessStore creates an empty in-memory smart guess store.
func NewMemorySmartGuessStore() SmartGuessStore {
	return &memorySmartGuessStore{guesses: make(map[string]model.SmartGuess)}
}

func (s *memorySmartGuessStore) Get(_ context.Context, id string) (*model.SmartGuess, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.guesses[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &g, nil
}

func (s *memorySmartGuessStore) GetAll(_ context.Context) ([]model.SmartGuess, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.SmartGuess, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.guesses[id])
	}
	return out, nil
}

func (s *memorySmartGuessStore) Create(_ context.Context, g *model.SmartGuess) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	if _, exists := s.guesses[g.ID]; exists {
		return fmt.Errorf("%w: smart guess %s", ErrConflict, g.ID)
	}
	g.LastUsed = g.LastUsed.UTC()
	s.guesses[g.ID] = *g
	s.order = append(s.order, g.ID)
	return nil
}

func (s *memorySmartGuessStore) Update(_ context.Context, id string, mutate func(*model.SmartGuess)) (*model.SmartGuess, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.guesses[id]
	if !ok {
		return nil, ErrNotFound
	}
	mutate(&g)
	g.ID = id
	g.LastUsed = g.LastUsed.UTC()
	s.guesses[id] = g
	return &g, nil
}
