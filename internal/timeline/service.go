package timeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"daytrack-backend/internal/clock"
	"daytrack-backend/internal/geo"
	"daytrack-backend/internal/model"
	"daytrack-backend/internal/store"
)

var (
	// ErrInvalidOrdering is returned when a new slot does not start strictly
	// after the most recent one.
	ErrInvalidOrdering = errors.New("slot must start after the current slot")
	// ErrNegativeDuration is the same failure seen from the closing side.
	ErrNegativeDuration = ErrInvalidOrdering
	// ErrNotFound is returned when no slot starts at the requested time.
	ErrNotFound = errors.New("time slot not found")
	// ErrPersistence wraps every other storage error.
	ErrPersistence = errors.New("persistence failure")
)

// Service owns the tiling of the timeline: slots of a day are ordered,
// adjacent, non-overlapping and never cross midnight. Writes are
// serialized and published to subscribers after they commit.
type Service struct {
	mu    sync.RWMutex
	pub   sync.Mutex // taken before mu is released, keeps events in commit order
	store store.TimeSlotStore
	clock clock.Clock
	loc   *time.Location
	bus   bus
}

// NewService creates a timeline service computing calendar days in loc.
func NewService(s store.TimeSlotStore, c clock.Clock, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{store: s, clock: c, loc: loc}
}

// Location returns the time zone calendar days are computed in.
func (s *Service) Location() *time.Location {
	return s.loc
}

// OnSlotCreated registers h for newly created slots.
func (s *Service) OnSlotCreated(h Handler) Subscription {
	return s.bus.subscribe(slotCreated, h)
}

// OnSlotUpdated registers h for closed or recategorized slots.
func (s *Service) OnSlotUpdated(h Handler) Subscription {
	return s.bus.subscribe(slotUpdated, h)
}

// Unsubscribe removes a handler. It reports whether sub was registered.
func (s *Service) Unsubscribe(sub Subscription) bool {
	return s.bus.unsubscribe(sub)
}

// AddManualSlot starts a slot the user picked a category for.
func (s *Service) AddManualSlot(ctx context.Context, start time.Time, category model.Category, setByUser bool, loc *geo.Fix) (*model.TimeSlot, error) {
	slot := model.TimeSlot{
		StartTime:            start,
		Category:             category,
		CategoryWasSetByUser: setByUser,
	}
	slot.SetLocation(loc)
	return s.add(ctx, slot)
}

// AddGuessedSlot starts a slot whose category comes from guess.
func (s *Service) AddGuessedSlot(ctx context.Context, start time.Time, guess *model.SmartGuess, loc *geo.Fix) (*model.TimeSlot, error) {
	if guess == nil {
		return nil, errors.New("guessed slot needs a smart guess")
	}
	id := guess.ID
	slot := model.TimeSlot{
		StartTime:    start,
		Category:     guess.Category,
		SmartGuessID: &id,
	}
	slot.SetLocation(loc)
	return s.add(ctx, slot)
}

// AddTemporarySlot records an activity detected after the fact, already
// ended at end. The end is clamped to midnight of the start day. The next
// add closes it again at its own start.
func (s *Service) AddTemporarySlot(ctx context.Context, start, end time.Time, category model.Category, loc *geo.Fix, activity string) (*model.TimeSlot, error) {
	if !end.After(start) {
		return nil, fmt.Errorf("%w: end %s is not after start %s", ErrNegativeDuration, end, start)
	}
	end = s.clampToDay(start, end)
	slot := model.TimeSlot{
		StartTime: start,
		EndTime:   &end,
		Category:  category,
		Activity:  activity,
	}
	slot.SetLocation(loc)
	return s.add(ctx, slot)
}

// add closes the most recent slot at slot.StartTime and creates slot, both
// in one transaction.
func (s *Service) add(ctx context.Context, slot model.TimeSlot) (*model.TimeSlot, error) {
	var closed *model.TimeSlot
	created := slot

	s.mu.Lock()
	err := s.store.Transaction(ctx, func(tx store.TimeSlotStore) error {
		last, err := tx.GetLast(ctx)
		if err != nil {
			return err
		}
		if last != nil {
			if closed, err = s.closeSlot(ctx, tx, *last, slot.StartTime); err != nil {
				return err
			}
		}
		return tx.Create(ctx, &created)
	})
	if err != nil {
		s.mu.Unlock()
		return nil, wrapError(err)
	}
	s.pub.Lock()
	s.mu.Unlock()
	defer s.pub.Unlock()

	if closed != nil {
		s.bus.publish(slotUpdated, s.localize(*closed))
	}
	out := s.localize(created)
	s.bus.publish(slotCreated, out)
	return &out, nil
}

// Close ends the most recent slot at the given time, with the same ordering
// and midnight rules as adding a slot. slot must be the most recent one;
// ending an earlier slot would overlap its successor.
func (s *Service) Close(ctx context.Context, slot model.TimeSlot, at time.Time) (*model.TimeSlot, error) {
	var closed *model.TimeSlot

	s.mu.Lock()
	err := s.store.Transaction(ctx, func(tx store.TimeSlotStore) error {
		found, err := tx.Get(ctx, store.StartTimeEquals(slot.StartTime))
		if err != nil {
			return err
		}
		if len(found) == 0 {
			return store.ErrNotFound
		}
		last, err := tx.GetLast(ctx)
		if err != nil {
			return err
		}
		if !last.StartTime.Equal(found[0].StartTime) {
			return fmt.Errorf("%w: slot starting %s is followed by %s",
				ErrInvalidOrdering, found[0].StartTime.In(s.loc), last.StartTime.In(s.loc))
		}
		closed, err = s.closeSlot(ctx, tx, found[0], at)
		return err
	})
	if err != nil {
		s.mu.Unlock()
		return nil, wrapError(err)
	}
	s.pub.Lock()
	s.mu.Unlock()
	defer s.pub.Unlock()

	out := s.localize(*closed)
	s.bus.publish(slotUpdated, out)
	return &out, nil
}

// Recategorize sets a user-chosen category on the slot starting at
// slot.StartTime. Start, end and location are untouched.
func (s *Service) Recategorize(ctx context.Context, slot model.TimeSlot, category model.Category) (*model.TimeSlot, error) {
	s.mu.Lock()
	updated, err := s.store.Update(ctx, store.StartTimeEquals(slot.StartTime), func(stored *model.TimeSlot) {
		*stored = stored.WithCategory(category, true)
	})
	if err != nil {
		s.mu.Unlock()
		return nil, wrapError(err)
	}
	s.pub.Lock()
	s.mu.Unlock()
	defer s.pub.Unlock()

	out := s.localize(*updated)
	s.bus.publish(slotUpdated, out)
	return &out, nil
}

func (s *Service) closeSlot(ctx context.Context, tx store.TimeSlotStore, open model.TimeSlot, at time.Time) (*model.TimeSlot, error) {
	if !at.After(open.StartTime) {
		return nil, fmt.Errorf("%w: %s is not after %s", ErrInvalidOrdering, at.In(s.loc), open.StartTime.In(s.loc))
	}
	end := s.clampToDay(open.StartTime, at)
	if !end.Equal(at) {
		log.Printf("timeline: slot starting %s ended at midnight %s instead of %s",
			open.StartTime.In(s.loc).Format(time.RFC3339), end.Format(time.RFC3339), at.In(s.loc).Format(time.RFC3339))
	}

	return tx.Update(ctx, store.StartTimeEquals(open.StartTime), func(stored *model.TimeSlot) {
		stored.EndTime = &end
	})
}

// clampToDay returns end, or the midnight after start when end falls on a
// later calendar day.
func (s *Service) clampToDay(start, end time.Time) time.Time {
	localStart := start.In(s.loc)
	if geo.SameDay(localStart, end.In(s.loc)) {
		return end
	}
	return geo.StartOfNextDay(localStart)
}

// QueryDay returns the slots starting on the calendar day containing day.
func (s *Service) QueryDay(ctx context.Context, day time.Time) ([]model.TimeSlot, error) {
	from := geo.StartOfDay(day.In(s.loc))
	return s.QueryRange(ctx, from, geo.StartOfNextDay(from))
}

// QueryRange returns the slots with from <= start < to, ordered by start.
func (s *Service) QueryRange(ctx context.Context, from, to time.Time) ([]model.TimeSlot, error) {
	s.mu.RLock()
	slots, err := s.store.Get(ctx, store.StartTimeBetween(from, to))
	s.mu.RUnlock()
	if err != nil {
		return nil, wrapError(err)
	}
	for i := range slots {
		slots[i] = s.localize(slots[i])
	}
	return slots, nil
}

// QuerySinceDaysAgo returns the slots from the start of the day that was
// days days ago up to the end of today.
func (s *Service) QuerySinceDaysAgo(ctx context.Context, days int) ([]model.TimeSlot, error) {
	today := geo.StartOfDay(s.clock.Now().In(s.loc))
	return s.QueryRange(ctx, today.AddDate(0, 0, -days), geo.StartOfNextDay(today))
}

// MostRecent returns the latest slot, or nil when the timeline is empty.
func (s *Service) MostRecent(ctx context.Context) (*model.TimeSlot, error) {
	s.mu.RLock()
	last, err := s.store.GetLast(ctx)
	s.mu.RUnlock()
	if err != nil {
		return nil, wrapError(err)
	}
	if last == nil {
		return nil, nil
	}
	out := s.localize(*last)
	return &out, nil
}

// EffectiveEnd returns the slot's end, or for a running slot the current
// time capped at the midnight after its start.
func (s *Service) EffectiveEnd(slot model.TimeSlot) time.Time {
	return s.localize(slot).EffectiveEnd(s.clock.Now().In(s.loc))
}

// Duration returns EffectiveEnd(slot) - slot.StartTime.
func (s *Service) Duration(slot model.TimeSlot) time.Duration {
	return s.EffectiveEnd(slot).Sub(slot.StartTime)
}

// IsToday reports whether day falls on the current calendar day.
func (s *Service) IsToday(day time.Time) bool {
	return geo.SameDay(day.In(s.loc), s.clock.Now().In(s.loc))
}

// Now returns the service clock's time in the service's time zone.
func (s *Service) Now() time.Time {
	return s.clock.Now().In(s.loc)
}

func (s *Service) localize(slot model.TimeSlot) model.TimeSlot {
	slot.StartTime = slot.StartTime.In(s.loc)
	if slot.EndTime != nil {
		end := slot.EndTime.In(s.loc)
		slot.EndTime = &end
	}
	return slot
}

func wrapError(err error) error {
	switch {
	case errors.Is(err, ErrInvalidOrdering):
		return err
	case errors.Is(err, store.ErrNotFound):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	default:
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
}
