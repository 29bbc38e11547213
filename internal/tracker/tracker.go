package tracker

import (
	"context"
	"fmt"
	"log"
	"time"

	"daytrack-backend/internal/aggregate"
	"daytrack-backend/internal/clock"
	"daytrack-backend/internal/geo"
	"daytrack-backend/internal/model"
	"daytrack-backend/internal/smartguess"
	"daytrack-backend/internal/timeline"
)

// Tracker ties user actions and location changes to the timeline and the
// smart guess engine.
type Tracker struct {
	timeline *timeline.Service
	engine   *smartguess.Engine
	location geo.LocationSource
	clock    clock.Clock
}

// New creates a new Tracker.
func New(tl *timeline.Service, engine *smartguess.Engine, location geo.LocationSource, c clock.Clock) *Tracker {
	return &Tracker{timeline: tl, engine: engine, location: location, clock: c}
}

// StartActivity starts a slot the user picked now. When the position is
// known the choice is remembered as a new smart guess.
func (t *Tracker) StartActivity(ctx context.Context, category model.Category) (*model.TimeSlot, error) {
	fix := t.location.LastKnownLocation()
	slot, err := t.timeline.AddManualSlot(ctx, t.clock.Now(), category, true, fix)
	if err != nil {
		return nil, err
	}
	if fix != nil {
		if _, err := t.engine.Add(ctx, category, *fix); err != nil {
			log.Printf("tracker: slot started but guess not stored: %v", err)
		}
	}
	return slot, nil
}

// StartFromLocation starts a slot for a detected change of place. The
// category comes from the engine when it has an opinion and is unknown
// otherwise.
func (t *Tracker) StartFromLocation(ctx context.Context, at time.Time, fix geo.Fix) (*model.TimeSlot, error) {
	guess := t.engine.Guess(ctx, fix)
	if guess == nil {
		return t.timeline.AddManualSlot(ctx, at, model.CategoryUnknown, false, &fix)
	}

	slot, err := t.timeline.AddGuessedSlot(ctx, at, guess, &fix)
	if err != nil {
		return nil, err
	}
	if err := t.engine.Reinforce(ctx, guess.ID); err != nil {
		log.Printf("tracker: failed to reinforce guess %s: %v", guess.ID, err)
	}
	return slot, nil
}

// Correct applies a user-chosen category to slots. Once a slot is stored
// with the new category, the guess behind its old category is struck, or a
// located slot without a guess teaches a new one.
func (t *Tracker) Correct(ctx context.Context, slots []model.TimeSlot, category model.Category) ([]model.TimeSlot, error) {
	out := make([]model.TimeSlot, 0, len(slots))
	for _, slot := range slots {
		updated, err := t.timeline.Recategorize(ctx, slot, category)
		if err != nil {
			return out, fmt.Errorf("failed to recategorize slot %s: %w", slot.StartTime, err)
		}
		out = append(out, *updated)

		switch {
		case slot.SmartGuessID != nil:
			if err := t.engine.Strike(ctx, *slot.SmartGuessID); err != nil {
				log.Printf("tracker: failed to strike guess %s: %v", *slot.SmartGuessID, err)
			}
		case slot.Location() != nil:
			if _, err := t.engine.Add(ctx, category, *slot.Location()); err != nil {
				log.Printf("tracker: failed to learn guess for slot %s: %v", slot.StartTime, err)
			}
		}
	}
	return out, nil
}

// CorrectItem corrects every slot grouped in item.
func (t *Tracker) CorrectItem(ctx context.Context, item aggregate.Item, category model.Category) ([]model.TimeSlot, error) {
	return t.Correct(ctx, item.Slots, category)
}
