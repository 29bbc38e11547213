package store

import (
	"time"

	"gorm.io/gorm"
)

type predicateKind int

const (
	kindBetween predicateKind = iota
	kindEquals
)

// Predicate selects time slots by start time. Only a half-open range or an
// exact match is supported.
type Predicate struct {
	kind predicateKind
	from time.Time
	to   time.Time
}

// StartTimeBetween matches slots with from <= start < to.
func StartTimeBetween(from, to time.Time) Predicate {
	return Predicate{kind: kindBetween, from: from.UTC(), to: to.UTC()}
}

// StartTimeEquals matches the slot whose start is exactly t.
func StartTimeEquals(t time.Time) Predicate {
	return Predicate{kind: kindEquals, from: t.UTC()}
}

// Matches reports whether a slot starting at start satisfies p.
func (p Predicate) Matches(start time.Time) bool {
	if p.kind == kindEquals {
		return start.Equal(p.from)
	}
	return !start.Before(p.from) && start.Before(p.to)
}

func (p Predicate) apply(db *gorm.DB) *gorm.DB {
	if p.kind == kindEquals {
		return db.Where("start_time = ?", p.from)
	}
	return db.Where("start_time >= ? AND start_time < ?", p.from, p.to)
}
