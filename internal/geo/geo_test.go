package geo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDistance(t *testing.T) {
	testCases := []struct {
		name   string
		a, b   Coordinate
		want   float64
		within float64
	}{
		{
			name:   "Same point",
			a:      Coordinate{Latitude: 41.9754219072948, Longitude: -71.0230522245947},
			b:      Coordinate{Latitude: 41.9754219072948, Longitude: -71.0230522245947},
			want:   0,
			within: 1e-9,
		},
		{
			name:   "A ten-thousandth of a degree of longitude near Boston",
			a:      Coordinate{Latitude: 41.9754219072948, Longitude: -71.0230522245947},
			b:      Coordinate{Latitude: 41.9754219072948, Longitude: -71.0229522245947},
			want:   8.27,
			within: 0.01,
		},
		{
			name:   "One degree of latitude",
			a:      Coordinate{Latitude: 0, Longitude: 0},
			b:      Coordinate{Latitude: 1, Longitude: 0},
			want:   111194.93,
			within: 0.01,
		},
		{
			name:   "Antipodes",
			a:      Coordinate{Latitude: 0, Longitude: 0},
			b:      Coordinate{Latitude: 0, Longitude: 180},
			want:   20015086.80,
			within: 0.01,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, Distance(tc.a, tc.b), tc.within)
			assert.InDelta(t, Distance(tc.a, tc.b), Distance(tc.b, tc.a), 1e-9, "distance must be symmetric")
		})
	}
}

func TestCoordinateValid(t *testing.T) {
	assert.True(t, Coordinate{Latitude: 52.52, Longitude: 13.40}.Valid())
	assert.False(t, Coordinate{Latitude: 91, Longitude: 0}.Valid())
	assert.False(t, Coordinate{Latitude: 0, Longitude: -181}.Valid())
}

func TestDayHelpers(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	assert.NoError(t, err)

	at := time.Date(2026, 10, 18, 23, 30, 0, 0, berlin)
	assert.Equal(t, time.Date(2026, 10, 18, 0, 0, 0, 0, berlin), StartOfDay(at))
	assert.Equal(t, time.Date(2026, 10, 19, 0, 0, 0, 0, berlin), StartOfNextDay(at))
	assert.Equal(t, time.Sunday, DayOfWeek(at))

	// 2026-10-25 is the DST switch in Berlin, the day is 25 hours long.
	dst := time.Date(2026, 10, 25, 12, 0, 0, 0, berlin)
	assert.Equal(t, 25*time.Hour, StartOfNextDay(dst).Sub(StartOfDay(dst)))

	assert.True(t, SameDay(at, StartOfDay(at)))
	assert.False(t, SameDay(at, StartOfNextDay(at)))
}

func TestLastKnown(t *testing.T) {
	var src LastKnown
	assert.Nil(t, src.LastKnownLocation())

	fix := Fix{Coordinate: Coordinate{Latitude: 1, Longitude: 2}, Timestamp: time.Unix(100, 0)}
	src.Update(fix)

	got := src.LastKnownLocation()
	if assert.NotNil(t, got) {
		assert.Equal(t, fix, *got)
		got.Latitude = 50
		assert.Equal(t, 1.0, src.LastKnownLocation().Latitude, "callers must receive a copy")
	}
}
