package smartguess

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"daytrack-backend/config"
	"daytrack-backend/internal/clock"
	"daytrack-backend/internal/geo"
	"daytrack-backend/internal/model"
	"daytrack-backend/internal/store"
)

// Engine predicts categories from stored guesses by a proximity and
// trust weighted vote. Every prediction scans the full guess set.
type Engine struct {
	mu              sync.RWMutex
	store           store.SmartGuessStore
	clock           clock.Clock
	baseline        int
	sameWeekdayOnly bool
}

// NewEngine creates a new Engine.
func NewEngine(s store.SmartGuessStore, c clock.Clock, cfg config.SmartGuessConfig) *Engine {
	baseline := cfg.BaselineConfidence
	if baseline <= 0 {
		baseline = 1
	}
	return &Engine{
		store:           s,
		clock:           c,
		baseline:        baseline,
		sameWeekdayOnly: cfg.SameWeekdayOnly,
	}
}

// Predict returns the winning category for fix. ok is false when there are
// no guesses, all weights are zero, or the two best categories tie.
func (e *Engine) Predict(ctx context.Context, fix geo.Fix) (category model.Category, ok bool) {
	g := e.Guess(ctx, fix)
	if g == nil {
		return "", false
	}
	return g.Category, true
}

// Guess is Predict returning the guess that cast the heaviest vote for the
// winning category, so callers can link a slot to it.
func (e *Engine) Guess(ctx context.Context, fix geo.Fix) *model.SmartGuess {
	e.mu.RLock()
	guesses, err := e.store.GetAll(ctx)
	e.mu.RUnlock()
	if err != nil {
		log.Printf("smart guess: failed to load guesses, predicting nothing: %v", err)
		return nil
	}
	if e.sameWeekdayOnly && !fix.Timestamp.IsZero() {
		guesses = sameWeekday(guesses, fix)
	}
	return elect(guesses, fix.Coordinate)
}

// Add stores a new guess at baseline confidence.
func (e *Engine) Add(ctx context.Context, category model.Category, fix geo.Fix) (*model.SmartGuess, error) {
	lastUsed := fix.Timestamp
	if lastUsed.IsZero() {
		lastUsed = e.clock.Now()
	}
	g := &model.SmartGuess{
		Category:   category,
		Latitude:   fix.Latitude,
		Longitude:  fix.Longitude,
		LastUsed:   lastUsed,
		Confidence: e.baseline,
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.store.Create(ctx, g); err != nil {
		return nil, fmt.Errorf("failed to add smart guess: %w", err)
	}
	return g, nil
}

// Strike records that the user overrode a category derived from guess id.
// Unknown ids are ignored.
func (e *Engine) Strike(ctx context.Context, id string) error {
	return e.update(ctx, "strike", id, func(g *model.SmartGuess) {
		g.ErrorCount++
	})
}

// Reinforce records that guess id won and was accepted.
// Unknown ids are ignored.
func (e *Engine) Reinforce(ctx context.Context, id string) error {
	now := e.clock.Now()
	return e.update(ctx, "reinforce", id, func(g *model.SmartGuess) {
		g.Confidence++
		g.LastUsed = now
	})
}

func (e *Engine) update(ctx context.Context, op, id string, mutate func(*model.SmartGuess)) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	_, err := e.store.Update(ctx, id, mutate)
	if errors.Is(err, store.ErrNotFound) {
		log.Printf("smart guess: %s on unknown guess %s ignored", op, id)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to %s smart guess %s: %w", op, id, err)
	}
	return nil
}

func sameWeekday(guesses []model.SmartGuess, fix geo.Fix) []model.SmartGuess {
	want := geo.DayOfWeek(fix.Timestamp)
	loc := fix.Timestamp.Location()
	out := guesses[:0:0]
	for _, g := range guesses {
		if geo.DayOfWeek(g.LastUsed.In(loc)) == want {
			out = append(out, g)
		}
	}
	return out
}
