package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestManualAdvance(t *testing.T) {
	start := time.Unix(1000, 0)
	c := NewManual(start)

	require.Equal(t, start, c.Now())

	c.Advance(time.Minute)
	require.Equal(t, start.Add(time.Minute), c.Now())
}

func TestManualRegression(t *testing.T) {
	start := time.Unix(1000, 0)
	c := NewManual(start)

	c.Advance(-time.Second)
	require.True(t, c.Now().Before(start))
}

func TestSystemTracksWallClock(t *testing.T) {
	before := time.Now()
	got := System{}.Now()
	require.False(t, got.Before(before))
}
