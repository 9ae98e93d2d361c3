package engine

// Axle carries a revolving finger past its digit stacks' wheels during the
// giving-off window (barrel phases 4-12). The finger's height picks which
// of the axle's two digit stacks (slot 0 for a positive lift, slot 1 for a
// reversed lift) is driven this time unit; a height of zero drives neither.
type Axle struct {
	id           EntityID
	name         string
	gear         *Gear
	driven       bool
	fingerheight float64
	fingerpos    int // 0..9
	digitstacks  [2]*DigitStack
	carriage     *AxleCarriage
}

// NewAxle creates an axle with no attached digit stacks and registers it
// with ctx, exempting it from the scheduler's per-tick driven-flag reset.
// fingerpos starts at 9, not 0: a freshly built stack's wheels (including
// the sign wheel) rest at 0, and checkFinger fires for a wheel at position
// (fingerpos+1)%10, so starting at 0 would spuriously trigger every wheel
// resting at 0 on the very first giving-off step.
func NewAxle(ctx *Context, name string) *Axle {
	a := &Axle{name: name, fingerpos: 9}
	a.id = ctx.registerAxle(a)
	a.gear = newGear(a.id)
	return a
}

func (a *Axle) EntityName() string { return a.name }
func (a *Axle) ID() EntityID       { return a.id }
func (a *Axle) Mesh() *Gear        { return a.gear }
func (a *Axle) IsDriven() bool     { return a.driven }
func (a *Axle) SetDriven(d bool)   { a.driven = d }

// AttachStack wires one of this axle's two digit-stack slots. Slot 0 fires
// when the axle is lifted to DigitFingerDistance, slot 1 when lifted to
// -DigitFingerDistance.
func (a *Axle) AttachStack(slot int, ds *DigitStack) { a.digitstacks[slot] = ds }

// Lift sets the finger height, selecting which attached stack (if either)
// the finger drives on the next advance. ActionLift calls it at its fire
// phase, barrel phase 2 by default.
func (a *Axle) Lift(height float64) { a.fingerheight = height }

func (a *Axle) meshedRotate(ctx *Context, dir Direction) error {
	a.gear.Direction = dir
	return ctx.AddToAdvanceList(a.id, dir)
}

// Advance revolves the finger by one position, drives whichever attached
// stack is at the current lift height (or is mid count-by-1 regardless of
// lift height), and propagates the rotation to any meshed gears (the
// reversing pinion stack). The finger always moves the same physical sense
// — fingerpos always decrements, wrapping 0 to 9 — regardless of dir: dir
// only selects which digit stack slot giving-off or count-by-1 addresses,
// matching the original simulator's Axle.advance.
func (a *Axle) Advance(ctx *Context, dir Direction) error {
	a.gear.Direction = dir
	a.fingerpos = (a.fingerpos + 9) % 10
	switch {
	case a.fingerheight == DigitFingerDistance, a.digitstacks[0] != nil && a.digitstacks[0].countBy1:
		if ds := a.digitstacks[0]; ds != nil {
			if err := ds.Advance(ctx, a.fingerpos); err != nil {
				return err
			}
		}
	case a.fingerheight == -DigitFingerDistance:
		if ds := a.digitstacks[1]; ds != nil {
			if err := ds.Advance(ctx, a.fingerpos); err != nil {
				return err
			}
		}
	}
	return rotateMeshedGears(ctx, a)
}

// AxleCarriage is the anticipating carriage attached to an axle's
// carry-capable digit stack: it watches for wheels that wrapped during
// ordinary giving-off and, at the end of a long cycle, ripples the
// resulting carry or borrow up through the stack.
type AxleCarriage struct {
	id          EntityID
	name        string
	axle        *Axle
	stack       *DigitStack
	carryNeeded []bool
	runningUp   bool
}

// NewAxleCarriage attaches a carriage to stack, which must have been built
// withCarry. The carriage does not drive the scheduler itself; it is
// invoked directly by the barrel runtime at phases 16 and 17.
func NewAxleCarriage(ctx *Context, name string, axle *Axle, stack *DigitStack) *AxleCarriage {
	ac := &AxleCarriage{name: name, axle: axle, stack: stack, carryNeeded: make([]bool, stack.ndigits)}
	ac.id = ctx.register(ac)
	axle.carriage = ac
	return ac
}

func (ac *AxleCarriage) EntityName() string { return ac.name }
func (ac *AxleCarriage) ID() EntityID       { return ac.id }

// RunningUp reports whether do_carriage's most recent pass needed to carry
// out of the top digit wheel — the carriage's own overflow condition,
// distinct from a Counter's RunningUp flag (the two predicates are kept
// separate on purpose: a Counter has no digit stack of its own to chain
// through).
func (ac *AxleCarriage) RunningUp() bool { return ac.runningUp }

// CheckOverflow reports ErrOverflow if RunningUp is set: a carry rippled
// past the top digit wheel with nowhere further to go, meaning the result
// needed more digits than the stack has — spec.md §7's "result value >=
// 10^NDIGITS" abort condition. RunningUp is reset on every DoCarriage call,
// so this only means what a caller expects when the carriage is never also
// read for loop control (a restoring-division borrow check, say): such a
// caller must use RunningUp directly instead.
func (ac *AxleCarriage) CheckOverflow() error {
	if ac.runningUp {
		return ErrOverflow
	}
	return nil
}

// ComputeCarriage builds the ripple chain: a wheel that wrapped during
// giving-off needs a carry into its neighbor; the chain continues through
// any subsequent wheel already sitting at the digit that wrapping would
// also carry out of (0 for a CCW/subtraction chain, 9 for CW/addition), and
// stops at the first wheel that isn't. Direction is read from the stack's
// own last-moved direction rather than the axle's, since a stack can be
// driven purely through a mesh (an accumulator fed by another axle's
// giving-off) without its own axle ever advancing. This is barrel phase 16
// (long cycle only).
func (ac *AxleCarriage) ComputeCarriage(ctx *Context) {
	dir := ac.stack.lastDirection
	chainDigit := 0
	if dir != CCW {
		chainDigit = 9
	}
	chain := false
	for i := 0; i < ac.stack.ndigits; i++ {
		w := ac.stack.Wheels[i]
		switch {
		case w.carryWarned:
			chain = true
		case chain && w.whposition == chainDigit:
			// chain continues
		default:
			chain = false
		}
		ac.carryNeeded[i] = chain
	}
}

// DoCarriage executes every carry ComputeCarriage found necessary, moving
// each affected wheel's upper neighbor by one position. Carrying out of the
// topmost digit wheel has no further wheel to move into; it sets RunningUp
// instead. This is barrel phase 17 (long cycle only).
func (ac *AxleCarriage) DoCarriage(ctx *Context) error {
	dir := ac.stack.lastDirection
	ac.stack.doingCarries = true
	defer func() { ac.stack.doingCarries = false }()
	ac.runningUp = false
	for i := 0; i < ac.stack.ndigits; i++ {
		w := ac.stack.Wheels[i]
		if !w.carryWarned && !ac.carryNeeded[i] {
			continue
		}
		if i == ac.stack.ndigits-1 {
			ac.runningUp = true
		} else if err := ac.stack.Wheels[i+1].moveWheel(ctx, dir); err != nil {
			return err
		}
		w.carryWarned = false
		ac.carryNeeded[i] = false
	}
	return nil
}
