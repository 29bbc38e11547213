package aggregate

import (
	"context"
	"time"

	"daytrack-backend/internal/model"
)

// Item groups consecutive slots of the same category for display.
type Item struct {
	Category                  model.Category   `json:"category"`
	Slots                     []model.TimeSlot `json:"slots"`
	StartTime                 time.Time        `json:"startTime"`
	EndTime                   time.Time        `json:"endTime"`
	Duration                  time.Duration    `json:"duration"`
	ShouldDisplayCategoryName bool             `json:"shouldDisplayCategoryName"`
	IsLastInPastDay           bool             `json:"isLastInPastDay"`
	IsRunning                 bool             `json:"isRunning"`
}

// Build groups slots, ordered by start, into runs of adjacent slots
// sharing a category. Durations use each slot's effective end at now.
// The last item is flagged running when isCurrentDay, otherwise as the
// last item of a past day.
func Build(slots []model.TimeSlot, now time.Time, isCurrentDay bool) []Item {
	var items []Item
	for _, slot := range slots {
		n := len(items)
		if n > 0 && items[n-1].Category == slot.Category {
			last := &items[n-1]
			last.Slots = append(last.Slots, slot)
			last.EndTime = slot.EffectiveEnd(now)
			last.Duration += slot.Duration(now)
			continue
		}
		items = append(items, Item{
			Category:                  slot.Category,
			Slots:                     []model.TimeSlot{slot},
			StartTime:                 slot.StartTime,
			EndTime:                   slot.EffectiveEnd(now),
			Duration:                  slot.Duration(now),
			ShouldDisplayCategoryName: true,
		})
	}

	if len(items) > 0 {
		last := &items[len(items)-1]
		if isCurrentDay {
			last.IsRunning = true
		} else {
			last.IsLastInPastDay = true
		}
	}
	return items
}

// Querier is the part of the timeline service ForDay needs.
type Querier interface {
	QueryDay(ctx context.Context, day time.Time) ([]model.TimeSlot, error)
	IsToday(day time.Time) bool
	Now() time.Time
}

// ForDay queries the day containing day and builds its items.
func ForDay(ctx context.Context, q Querier, day time.Time) ([]Item, error) {
	slots, err := q.QueryDay(ctx, day)
	if err != nil {
		return nil, err
	}
	return Build(slots, q.Now(), q.IsToday(day)), nil
}
