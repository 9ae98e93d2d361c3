package engine

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCounterRunningUpFiresExactlyAtBound(t *testing.T) {
	ctx := NewContext(fixedRNG{})
	c := NewCounter(ctx, "C", 3)

	c.CountBy1(CW)
	require.Equal(t, 1, c.Value())
	require.False(t, c.RunningUp())

	c.CountBy1(CW)
	require.Equal(t, 2, c.Value())
	require.False(t, c.RunningUp())

	// The third call would take value to bound (3): clamps instead of
	// incrementing, and fires RunningUp.
	c.CountBy1(CW)
	require.Equal(t, 2, c.Value())
	require.True(t, c.RunningUp())
}

func TestCounterUnboundedNeverRunsUp(t *testing.T) {
	ctx := NewContext(fixedRNG{})
	c := NewCounter(ctx, "C", 0)
	for i := 0; i < 100; i++ {
		c.CountBy1(CW)
	}
	require.Equal(t, 100, c.Value())
	require.False(t, c.RunningUp())
}

func TestCounterCCWRunsUpAtZero(t *testing.T) {
	ctx := NewContext(fixedRNG{})
	c := NewCounter(ctx, "C", 0)
	c.CountBy1(CCW)
	require.Equal(t, 0, c.Value())
	require.True(t, c.RunningUp())
}

func TestCounterClearResetsRunningUp(t *testing.T) {
	ctx := NewContext(fixedRNG{})
	c := NewCounter(ctx, "C", 1)
	c.CountBy1(CW)
	require.True(t, c.RunningUp())
	c.Clear()
	require.Equal(t, 0, c.Value())
	require.False(t, c.RunningUp())
}
