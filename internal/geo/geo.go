package geo

import (
	"math"
	"sync"
	"time"
)

// earthRadiusMeters is the mean Earth radius used for great-circle distances.
const earthRadiusMeters = 6371000.0

// Coordinate is a point on the Earth's surface in decimal degrees.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Valid reports whether the coordinate lies within WGS84 bounds.
func (c Coordinate) Valid() bool {
	return c.Latitude >= -90 && c.Latitude <= 90 &&
		c.Longitude >= -180 && c.Longitude <= 180 &&
		!math.IsNaN(c.Latitude) && !math.IsNaN(c.Longitude)
}

// Distance returns the haversine distance between a and b in meters.
func Distance(a, b Coordinate) float64 {
	lat1 := toRadians(a.Latitude)
	lat2 := toRadians(b.Latitude)
	dLat := lat2 - lat1
	dLon := toRadians(b.Longitude - a.Longitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	// Rounding can push h a hair above 1 for antipodal points.
	h = math.Min(1, h)
	return 2 * earthRadiusMeters * math.Asin(math.Sqrt(h))
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

// DayOfWeek returns the weekday of t in its own location.
func DayOfWeek(t time.Time) time.Weekday {
	return t.Weekday()
}

// StartOfDay returns 00:00:00 of the same day.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// StartOfNextDay returns the start of the next day (midnight) in the same location.
func StartOfNextDay(t time.Time) time.Time {
	next := t.AddDate(0, 0, 1)
	return time.Date(next.Year(), next.Month(), next.Day(), 0, 0, 0, 0, t.Location())
}

// SameDay reports whether two times fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// LocationSource provides the most recent position known for the user.
type LocationSource interface {
	// LastKnownLocation returns nil when no fix is available.
	LastKnownLocation() *Fix
}

// Fix is a coordinate observed at a point in time.
type Fix struct {
	Coordinate
	Timestamp time.Time `json:"timestamp"`
}

// LastKnown is a LocationSource fed by whoever acquires positions.
type LastKnown struct {
	mu  sync.RWMutex
	fix *Fix
}

// Update stores f as the latest fix.
func (l *LastKnown) Update(f Fix) {
	l.mu.Lock()
	l.fix = &f
	l.mu.Unlock()
}

// LastKnownLocation returns a copy of the latest fix or nil.
func (l *LastKnown) LastKnownLocation() *Fix {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.fix == nil {
		return nil
	}
	f := *l.fix
	return &f
}
