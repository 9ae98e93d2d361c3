package engine

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// fixedRNG always returns 0, making TimeUnitTick's draw order deterministic
// for tests that don't care about randomized ordering.
type fixedRNG struct{}

func (fixedRNG) Intn(n int) int { return 0 }

func TestDigitStackSetValueAndValueRoundTrip(t *testing.T) {
	ctx := NewContext(fixedRNG{})
	ds := NewDigitStack(ctx, "S", 0, 4, false)

	for _, v := range []int{0, 9, 1234, -7, -9999} {
		ds.SetValue(v)
		require.Equal(t, v, ds.Value())
	}
}

func TestMoveWheelCWArmsCarryOnAdditionWrap(t *testing.T) {
	ctx := NewContext(fixedRNG{})
	ds := NewDigitStack(ctx, "S", 0, 2, true)
	lsb := ds.Wheels[0]
	lsb.whposition = 9

	require.NoError(t, lsb.moveWheel(ctx, CW))
	require.NoError(t, ctx.TimeUnitTick())

	require.Equal(t, 0, lsb.whposition)
	require.True(t, lsb.carryWarned, "CW wrap from 9 to 0 must arm carryWarned")
}

func TestMoveWheelCCWArmsCarryOnSubtractionWrap(t *testing.T) {
	ctx := NewContext(fixedRNG{})
	ds := NewDigitStack(ctx, "S", 0, 2, true)
	lsb := ds.Wheels[0]
	lsb.whposition = 0

	require.NoError(t, lsb.moveWheel(ctx, CCW))
	require.NoError(t, ctx.TimeUnitTick())

	require.Equal(t, 9, lsb.whposition)
	require.True(t, lsb.carryWarned, "CCW wrap from 0 to 9 must arm carryWarned")
}

func TestMoveWheelNonWrapDoesNotArmCarry(t *testing.T) {
	ctx := NewContext(fixedRNG{})
	ds := NewDigitStack(ctx, "S", 0, 2, true)
	lsb := ds.Wheels[0]
	lsb.whposition = 3

	require.NoError(t, lsb.moveWheel(ctx, CW))
	require.NoError(t, ctx.TimeUnitTick())

	require.Equal(t, 4, lsb.whposition)
	require.False(t, lsb.carryWarned)
}

func TestAdvanceContractIsAlwaysOneStep(t *testing.T) {
	ctx := NewContext(fixedRNG{})
	ds := NewDigitStack(ctx, "S", 0, 1, false)
	w := ds.Wheels[0]

	for start := 0; start < 10; start++ {
		w.whposition = start
		w.carryWarned = false
		require.NoError(t, w.moveWheel(ctx, CW))
		require.NoError(t, ctx.TimeUnitTick())
		diff := ((w.whposition-start)%10 + 10) % 10
		require.Equal(t, 1, diff)
	}
}

func TestQueueMoveRejectsMultiStep(t *testing.T) {
	ctx := NewContext(fixedRNG{})
	ds := NewDigitStack(ctx, "S", 0, 1, false)
	w := ds.Wheels[0]
	w.whposition = 0

	err := w.queueMove(ctx, 5, CW)
	require.ErrorIs(t, err, ErrMultiStepMove)
}
