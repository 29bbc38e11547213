package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestManual(t *testing.T) {
	start := time.Date(2026, 10, 18, 23, 59, 0, 0, time.UTC)
	c := NewManual(start)
	assert.Equal(t, start, c.Now())

	assert.Equal(t, start.Add(2*time.Minute), c.Advance(2*time.Minute))
	assert.Equal(t, start.Add(2*time.Minute), c.Now())

	c.Set(start)
	assert.Equal(t, start, c.Now())
}

func TestSystem(t *testing.T) {
	before := time.Now()
	got := System{}.Now()
	assert.False(t, got.Before(before))
}
