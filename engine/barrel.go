package engine

import (
	"fmt"

	"github.com/golang/glog"
)

// Barrel holds a finished Program and cycles through its verticals in a
// 15- or 20-phase micro-sequence, firing stud actions and reducing the
// next-vertical jump at cycle end. It is itself an Advancer: one Advance
// call executes exactly one phase. Unlike an Axle, a Barrel is not exempt
// from the scheduler's already-driven check, so it does not re-enqueue
// itself — the driver loop running the simulation calls Start before every
// TimeUnitTick, one time unit per phase (see Start's and TimeUnitTick's
// doc comments).
type Barrel struct {
	id            EntityID
	name          string
	program       *Program
	phase         int
	position      int
	moveDistance  int
	doskip        bool
	jumpBackwards bool
	numPhases     int
	driven        bool
}

// NewBarrel creates a barrel over a finalized program (EndProgram must
// already have been called) and registers it with ctx.
func NewBarrel(ctx *Context, name string, program *Program) *Barrel {
	b := &Barrel{name: name, program: program}
	b.id = ctx.registerAdvancer(b)
	b.Reset(0)
	return b
}

func (b *Barrel) EntityName() string { return b.name }
func (b *Barrel) ID() EntityID       { return b.id }
func (b *Barrel) IsDriven() bool     { return b.driven }
func (b *Barrel) SetDriven(d bool)   { b.driven = d }

// Position reports the vertical index the barrel is currently cycling.
func (b *Barrel) Position() int { return b.position }

// Reset points the barrel at position and reinitializes every per-cycle
// field: phase 0 (so the next Advance begins phase 1), a short (15-phase)
// cycle, zeroed move distance, and cleared doskip/jumpBackwards.
func (b *Barrel) Reset(position int) {
	b.position = position
	b.phase = 0
	b.moveDistance = 0
	b.doskip = false
	b.jumpBackwards = false
	b.numPhases = 15
}

// Start enqueues the barrel for its next phase advance. Since Advance no
// longer re-enqueues the barrel itself, a caller driving a full run must
// call Start again before every TimeUnitTick call, not just the first —
// see TimeUnitTick's doc comment.
func (b *Barrel) Start(ctx *Context) error {
	return ctx.AddToAdvanceList(b.id, CCW)
}

func (b *Barrel) vertical() *vertical { return b.program.Verticals[b.position] }

// Advance executes exactly one phase of the current cycle, and — once
// num_phases phases have run — reduces the jump and starts the next cycle.
// It does not re-enqueue itself: per spec.md §4.5, one TimeUnitTick call is
// one time unit, and only the outer driver loop re-adds the barrel before
// the next call (matching component.py's domult/dodiv drivers, which call
// add_to_advance_list(barrel, CCW) once per iteration of their own "while
// not stopped" loop, immediately before timeunit_tick()). The scheduler's
// end-of-tick sweep (TimeUnitTick) already clears the barrel's own driven
// flag, same as any other non-axle entity, so Advance need not touch it.
func (b *Barrel) Advance(ctx *Context, dir Direction) error {
	b.phase++
	if b.phase > b.numPhases {
		return fmt.Errorf("%w: phase %d at position %d", ErrBadPhase, b.phase, b.position)
	}
	if err := b.runPhase(ctx, b.phase); err != nil {
		return err
	}
	if b.phase == b.numPhases {
		if b.numPhases < 18 && b.doskip {
			// A short cycle ends before phase 18 runs, so a skip set by one
			// of its checks is applied here instead.
			if b.jumpBackwards {
				b.moveDistance--
			} else {
				b.moveDistance++
			}
		}
		nv := len(b.program.Verticals)
		next := ((b.position+b.moveDistance)%nv + nv) % nv
		if ctx.Trace.has(TraceBarrels) {
			glog.V(1).Infof("barrel %s: cycle end at position %d, move %d, next %d", b.name, b.position, b.moveDistance, next)
		}
		b.Reset(next)
		ctx.bumpCycle()
	}
	return nil
}

// runPhase executes the mechanical and stud-driven effects of one phase of
// the current vertical, per spec.md §4.6's phase table.
func (b *Barrel) runPhase(ctx *Context, phase int) error {
	v := b.vertical()
	switch phase {
	case 2:
		if v.studsOn[MoveBackStud] {
			b.jumpBackwards = true
		}
	case 3:
		if err := ctx.Mesh.Compute(ctx); err != nil {
			return err
		}
	case 13:
		ctx.Mesh.Remove(ctx)
	case 16:
		// Only reachable when num_phases is 20: a short cycle ends and
		// resets at phase 15, before phase 16 is ever run.
		for _, axle := range ctx.Axles() {
			if axle.carriage != nil {
				axle.carriage.ComputeCarriage(ctx)
			}
		}
	case 17:
		for _, axle := range ctx.Axles() {
			if axle.carriage != nil {
				if err := axle.carriage.DoCarriage(ctx); err != nil {
					return err
				}
				// The carry moves DoCarriage queued run later in this time
				// unit; keep them from re-arming carryWarned until phase 18.
				axle.carriage.stack.doingCarries = true
			}
		}
	case 18:
		for _, axle := range ctx.Axles() {
			if axle.carriage != nil {
				axle.carriage.stack.doingCarries = false
			}
		}
		if b.doskip {
			delta := 1
			if b.jumpBackwards {
				delta = -1
			}
			b.moveDistance += delta
		}
	}
	if (phase >= 4 && phase <= 12) || phase == 14 {
		// Every driven axle revolves once more this phase; axles are exempt
		// from the scheduler's already-driven check (see AddToAdvanceList),
		// so re-enqueuing one that is still engaged is always safe.
		for _, axle := range ctx.Axles() {
			if axle.IsDriven() {
				if err := ctx.AddToAdvanceList(axle.id, axle.gear.Direction); err != nil {
					return err
				}
			}
		}
	}
	if err := b.fireMoveStuds(v, phase); err != nil {
		return err
	}
	return b.fireStudActions(ctx, v, phase)
}

// fireMoveStuds accumulates moveDistance from the reserved MOVE4/MOVE2/
// MOVE1 studs, one unit per phase each is active: MOVE4 across phases
// 6-9, MOVE2 across phases 10-11, MOVE1 at phase 12, each signed by
// jumpBackwards.
func (b *Barrel) fireMoveStuds(v *vertical, phase int) error {
	sign := 1
	if b.jumpBackwards {
		sign = -1
	}
	switch {
	case phase >= 6 && phase <= 9 && v.studsOn[Move4Stud]:
		b.moveDistance += sign
	case phase >= 10 && phase <= 11 && v.studsOn[Move2Stud]:
		b.moveDistance += sign
	case phase == 12 && v.studsOn[Move1Stud]:
		b.moveDistance += sign
	}
	return nil
}

// fireStudActions applies every ON stud's action whose FirePhase matches
// phase.
func (b *Barrel) fireStudActions(ctx *Context, v *vertical, phase int) error {
	for _, num := range v.studNums {
		if num%2 != 0 {
			continue // OFF form
		}
		stud := b.program.Table.ByNum(num)
		if stud.Action == nil || stud.Action.firePhase() != phase {
			continue
		}
		if err := stud.Action.Apply(ctx, b, true); err != nil {
			return err
		}
	}
	return nil
}
