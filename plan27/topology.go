// Package plan27 wires engine components into runnable multiply and divide
// machines. Both operations are built from the same small accumulator
// topology: an axle driving a carry-capable digit stack by unit steps
// (count_by_1), with an anticipating carriage rippling the result through
// the stack, and one or two counters a barrel microprogram tests each cycle
// to decide whether to repeat, advance to the next stage, or halt.
//
// This topology is one example configuration of the engine substrate, not
// part of its core design (see spec.md §1's scope note on Plan-27-style
// topologies): it favors unit-step accumulation, a primitive the engine
// exposes directly (count-by-1), over a mesh-linked digit-for-digit
// transfer mechanism whose correctness would hinge on the exact relative
// timing of a multi-phase giving-off sweep. It still exercises axles,
// carry-capable digit stacks, anticipating carriages, counters, and
// conditional skips — the full vocabulary spec.md §8's scenarios check —
// just via the simpler of the two primitives the stud vocabulary offers.
package plan27

import (
	"fmt"

	"github.com/aesim/babbage/engine"
)

// NDigits matches spec.md §8's end-to-end scenario configuration.
const NDigits = 25

// Machine is a single carry-capable accumulator: Result is the axle whose
// finger-height is never actually used for giving-off (every program here
// drives Stack purely through count-by-1), but which must still be lifted
// (the LIFT_RESULT stud, in every vertical that moves Stack) to get onto the
// scheduler's advance list at all. Carry ripples
// Result's unit steps into genuine multi-digit sums and borrows.
type Machine struct {
	Ctx    *engine.Context
	Table  *engine.StudTable
	Result *engine.Axle
	Stack  *engine.DigitStack
	Carry  *engine.AxleCarriage
}

// newMachine builds the shared topology: one axle-driven, carry-capable
// digit stack of ndigits digits plus sign.
func newMachine(rng engine.Randomizer, ndigits int, trace engine.TraceFlags) *Machine {
	ctx := engine.NewContext(rng)
	ctx.Trace = trace
	m := &Machine{Ctx: ctx, Table: engine.NewStudTable()}

	m.Result = engine.NewAxle(ctx, "Result")
	m.Stack = engine.NewDigitStack(ctx, "Stack", m.Result.ID(), ndigits, true)
	m.Result.AttachStack(0, m.Stack)
	m.Carry = engine.NewAxleCarriage(ctx, "Carriage", m.Result, m.Stack)

	return m
}

// liftResult registers the stud that keeps Result on the advance list for a
// cycle; its own finger-height and lift direction are irrelevant (Axle.Advance
// drives slot 0 whenever Stack is mid count-by-1 regardless of height), so
// both are left at their zero values.
func liftResult(m *Machine) engine.Stud {
	m.Table.CreateStud("LIFT_RESULT", &engine.StudAction{
		Kind: engine.ActionLift, FirePhase: 2, Target: m.Result.ID(),
	}, false)
	s, _ := m.Table.ByName("LIFT_RESULT")
	return s
}

// run drives barrel through its program one phase (one time unit) at a
// time until ctx.Stopped, returning the number of completed barrel cycles —
// the meaningful progress counter here. This is the same shape as
// component.py's domult/dodiv drivers: add the barrel back to the advance
// list, then tick, once per phase, since a Barrel no longer re-enqueues
// itself (see Barrel.Advance's doc comment). limit caps barrel cycles,
// aborting a runaway microprogram with ErrTimeLimit instead of looping
// forever.
func run(ctx *engine.Context, barrel *engine.Barrel, limit int) (int, error) {
	ctx.SetTimeLimit(limit)
	for !ctx.Stopped {
		if err := barrel.Start(ctx); err != nil {
			return ctx.Cycle(), fmt.Errorf("plan27: %w", err)
		}
		if err := ctx.TimeUnitTick(); err != nil {
			return ctx.Cycle(), fmt.Errorf("plan27: %w", err)
		}
	}
	return ctx.Cycle(), nil
}
