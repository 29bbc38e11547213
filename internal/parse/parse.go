package parse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"daytrack-backend/internal/geo"
	"daytrack-backend/internal/model"
)

var relativeDayRe = regexp.MustCompile(`^(?i)(today|yesterday|(-\d+)d)$`)

// DayLayout is the calendar day format used in URLs and flags.
const DayLayout = "2006-01-02"

// Day parses "2006-01-02", "today", "yesterday" or "-Nd" (N days ago)
// into midnight of that day in loc.
func Day(raw string, now time.Time, loc *time.Location) (time.Time, error) {
	s := strings.TrimSpace(raw)
	now = now.In(loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)

	if m := relativeDayRe.FindStringSubmatch(s); m != nil {
		switch {
		case strings.EqualFold(m[1], "today"):
			return today, nil
		case strings.EqualFold(m[1], "yesterday"):
			return today.AddDate(0, 0, -1), nil
		default:
			n, err := strconv.Atoi(m[2])
			if err != nil {
				return time.Time{}, fmt.Errorf("invalid relative day %q: %w", raw, err)
			}
			return today.AddDate(0, 0, n), nil
		}
	}

	day, err := time.ParseInLocation(DayLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid day %q: want YYYY-MM-DD", raw)
	}
	return day, nil
}

// Category parses a category name case-insensitively.
func Category(raw string) (model.Category, error) {
	c := model.Category(strings.ToLower(strings.TrimSpace(raw)))
	if !c.Valid() {
		return "", fmt.Errorf("unknown category %q", raw)
	}
	return c, nil
}

// Coordinate parses decimal degree strings and checks their bounds.
func Coordinate(lat, lng string) (geo.Coordinate, error) {
	latitude, err := strconv.ParseFloat(strings.TrimSpace(lat), 64)
	if err != nil {
		return geo.Coordinate{}, fmt.Errorf("invalid latitude %q", lat)
	}
	longitude, err := strconv.ParseFloat(strings.TrimSpace(lng), 64)
	if err != nil {
		return geo.Coordinate{}, fmt.Errorf("invalid longitude %q", lng)
	}
	c := geo.Coordinate{Latitude: latitude, Longitude: longitude}
	if !c.Valid() {
		return geo.Coordinate{}, fmt.Errorf("coordinate %v,%v out of range", latitude, longitude)
	}
	return c, nil
}

// Instant parses an RFC 3339 timestamp, as used for slot start times.
func Instant(raw string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: want RFC 3339", raw)
	}
	return t, nil
}
