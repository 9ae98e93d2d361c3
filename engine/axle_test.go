package engine

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestAxleGivingOffPropagatesThroughMeshToAccumulator drives a real Axle's
// finger across its attached DigitStack — exercising checkFinger and
// Axle.Advance's giving-off branch directly, not count-by-1 — and follows
// the resulting rotation through a connector PinionStack into a second
// digit wheel that has no axle of its own: an accumulator fed purely by the
// mesh graph, the same pattern AxleCarriage.ComputeCarriage's doc comment
// describes.
func TestAxleGivingOffPropagatesThroughMeshToAccumulator(t *testing.T) {
	ctx := NewContext(fixedRNG{})

	source := NewAxle(ctx, "Source")
	sourceStack := NewDigitStack(ctx, "SourceStack", source.ID(), 1, false)
	source.AttachStack(0, sourceStack)
	sourceWheel := sourceStack.Wheels[0]
	// A fresh Axle's finger rests at 9; its first advance moves it to 8,
	// which checkFinger reads as "the wheel that was sitting at 9 is due".
	sourceWheel.whposition = 9

	accumulator := NewDigitStack(ctx, "Accumulator", 0, 1, false)
	accWheel := accumulator.Wheels[0]
	accWheel.whposition = 3

	connector := NewPinionStack(ctx, "Connector", 1)
	connector.DefineMesh(ctx.Mesh, ALWAYS, []EntityID{sourceWheel.ID()}, 0)
	connector.DefineMesh(ctx.Mesh, ALWAYS, []EntityID{accWheel.ID()}, 0)
	require.NoError(t, ctx.Mesh.Compute(ctx))

	source.Lift(DigitFingerDistance)
	require.NoError(t, ctx.AddToAdvanceList(source.ID(), CCW))
	require.NoError(t, ctx.TimeUnitTick())

	require.Equal(t, 8, sourceWheel.whposition, "giving off draws the source wheel down one position")
	// Two mesh hops (sourceWheel -> connector -> accWheel) flip direction
	// twice, so the accumulator wheel moves the same sense as the source.
	require.Equal(t, 2, accWheel.whposition, "mesh propagation carries the same direction across an even number of hops")
}

// TestAxleGivingOffArmsCarryAndAxleCarriageRipplesBorrow drives a two-digit
// carry-capable stack through a full giving-off + carriage cycle: the least
// significant wheel wraps 0->9 during a giving-off step, arming
// carryWarned, and AxleCarriage.ComputeCarriage/DoCarriage ripple that into
// a borrow against the next wheel — the mechanism barrel phases 16-17
// invoke on every long cycle.
func TestAxleGivingOffArmsCarryAndAxleCarriageRipplesBorrow(t *testing.T) {
	ctx := NewContext(fixedRNG{})

	axle := NewAxle(ctx, "Result")
	stack := NewDigitStack(ctx, "ResultStack", axle.ID(), 2, true)
	axle.AttachStack(0, stack)
	carriage := NewAxleCarriage(ctx, "Carriage", axle, stack)

	stack.SetValue(50)
	// SetValue leaves the sign wheel at 0, the same resting value as the
	// units wheel under test; move it clear so only the units wheel's
	// give-off fires this step (giving off dispatches every wheel sitting
	// at the triggering position, sign wheel included).
	stack.Wheels[stack.Ndigits()].whposition = 4

	// Park the finger one step before the units wheel's resting value (0)
	// so this single advance triggers its give-off.
	axle.fingerpos = 0
	axle.Lift(DigitFingerDistance)
	require.NoError(t, ctx.AddToAdvanceList(axle.ID(), CCW))
	require.NoError(t, ctx.TimeUnitTick())

	require.Equal(t, 9, stack.Wheels[0].whposition, "the units wheel wrapped 0 -> 9 giving off")
	require.True(t, stack.Wheels[0].carryWarned, "a 0->9 wrap arms the carry-capable wheel")

	carriage.ComputeCarriage(ctx)
	require.NoError(t, carriage.DoCarriage(ctx))
	require.NoError(t, ctx.TimeUnitTick())

	require.Equal(t, 49, stack.Value(), "the borrow rippled into the tens wheel")
	require.False(t, carriage.RunningUp(), "the borrow had a wheel to ripple into, so it never reached the top")
}
