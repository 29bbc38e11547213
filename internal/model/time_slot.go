package model

import (
	"time"

	"daytrack-backend/internal/geo"
)

// TimeSlot is one categorized, half-open interval of the user's day.
// StartTime is the natural key; EndTime is nil while the slot is running.
type TimeSlot struct {
	ID                   int64      `gorm:"primaryKey" json:"-"`
	StartTime            time.Time  `gorm:"uniqueIndex;not null" json:"startTime"`
	EndTime              *time.Time `json:"endTime,omitempty"`
	Category             Category   `gorm:"size:32;not null" json:"category"`
	CategoryWasSetByUser bool       `gorm:"not null" json:"categoryWasSetByUser"`
	SmartGuessID         *string    `gorm:"size:36;index" json:"smartGuessId,omitempty"`
	Activity             string     `gorm:"size:64" json:"activity,omitempty"`

	// Location columns are all set or all nil.
	Latitude  *float64   `json:"latitude,omitempty"`
	Longitude *float64   `json:"longitude,omitempty"`
	LocatedAt *time.Time `json:"locatedAt,omitempty"`
}

// Location returns the fix recorded when the slot started, if any.
func (s TimeSlot) Location() *geo.Fix {
	if s.Latitude == nil || s.Longitude == nil {
		return nil
	}
	fix := geo.Fix{Coordinate: geo.Coordinate{Latitude: *s.Latitude, Longitude: *s.Longitude}}
	if s.LocatedAt != nil {
		fix.Timestamp = *s.LocatedAt
	}
	return &fix
}

// SetLocation copies f into the location columns; nil clears them.
func (s *TimeSlot) SetLocation(f *geo.Fix) {
	if f == nil {
		s.Latitude, s.Longitude, s.LocatedAt = nil, nil, nil
		return
	}
	lat, lng, at := f.Latitude, f.Longitude, f.Timestamp
	s.Latitude, s.Longitude, s.LocatedAt = &lat, &lng, &at
}

// IsRunning reports whether the slot has not been ended yet.
func (s TimeSlot) IsRunning() bool {
	return s.EndTime == nil
}

// EffectiveEnd is the end used for display and durations. A running slot
// ends at now, but never later than the midnight after its start.
func (s TimeSlot) EffectiveEnd(now time.Time) time.Time {
	if s.EndTime != nil {
		return *s.EndTime
	}
	limit := geo.StartOfNextDay(s.StartTime)
	if now.After(limit) {
		return limit
	}
	return now
}

// Duration returns EffectiveEnd(now) - StartTime.
func (s TimeSlot) Duration(now time.Time) time.Duration {
	return s.EffectiveEnd(now).Sub(s.StartTime)
}

// WithCategory returns a copy carrying the new category.
func (s TimeSlot) WithCategory(c Category, setByUser bool) TimeSlot {
	s.Category = c
	s.CategoryWasSetByUser = setByUser
	return s
}

// WithEndTime returns a copy ended at end.
func (s TimeSlot) WithEndTime(end time.Time) TimeSlot {
	s.EndTime = &end
	return s
}
