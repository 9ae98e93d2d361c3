package engine

import "fmt"

// DigitWheel is a basic digit wheel: a 10-position rotatable whose value
// is moved either by its axle's finger impinging on it during giving-off,
// or unconditionally by a carry/borrow or a count-by-1 operation. When
// carryCapable is set (the wheel sits in a stack built withCarry), a 9-to-0
// or 0-to-9 wraparound by any move outside a carry pass (giving-off or
// count-by-1) arms carryWarned for the stack's AxleCarriage to pick up at
// phase 16.
type DigitWheel struct {
	id             EntityID
	name           string
	gear           *Gear
	driven         bool
	digitstack     *DigitStack
	digitIndex     int // 0 is least significant
	whposition     int // 0..9
	nextWhposition *int
	carryCapable   bool
	carryWarned    bool
}

func newDigitWheel(ctx *Context, name string, stack *DigitStack, index int, carryCapable bool) *DigitWheel {
	w := &DigitWheel{name: name, digitstack: stack, digitIndex: index, carryCapable: carryCapable}
	w.id = ctx.registerAdvancer(w)
	w.gear = newGear(w.id)
	return w
}

func (w *DigitWheel) EntityName() string { return w.name }
func (w *DigitWheel) ID() EntityID       { return w.id }
func (w *DigitWheel) Mesh() *Gear        { return w.gear }
func (w *DigitWheel) IsDriven() bool     { return w.driven }
func (w *DigitWheel) SetDriven(d bool)   { w.driven = d }

func (w *DigitWheel) meshedRotate(ctx *Context, dir Direction) error {
	w.gear.Direction = dir
	if w.nextWhposition != nil {
		return fmt.Errorf("%s already has a next position set", w.name)
	}
	next := w.whposition - 1
	if dir != CCW {
		next = w.whposition + 1
	}
	next = ((next % 10) + 10) % 10
	w.nextWhposition = &next
	return ctx.AddToAdvanceList(w.id, dir)
}

// queueMove schedules this wheel to move to position, which must be
// exactly one step away from its current position in either direction —
// spec.md's "wheel asked to move more than one position" fatal error. dir
// must match the actual sense of that one-step move: it is what the
// scheduler hands back to Advance, and Advance's carry-arming check reads
// it to tell a 9-to-0 addition wrap from a 0-to-9 subtraction one.
func (w *DigitWheel) queueMove(ctx *Context, position int, dir Direction) error {
	if (position+1)%10 != w.whposition && ((position-1)+10)%10 != w.whposition {
		return fmt.Errorf("%w: %s from %d to %d", ErrMultiStepMove, w.name, w.whposition, position)
	}
	p := position
	w.nextWhposition = &p
	return ctx.AddToAdvanceList(w.id, dir)
}

// checkFinger is called when the owning axle's finger just moved to
// fingerpos; if this wheel was sitting at the position the finger just
// left, it is due to advance in step with the finger. Giving-off always
// draws the source wheel down, so this move is always CCW.
func (w *DigitWheel) checkFinger(ctx *Context, fingerpos int) (bool, error) {
	if (fingerpos+1)%10 == w.whposition {
		return true, w.queueMove(ctx, fingerpos, CCW)
	}
	return false, nil
}

// moveWheel schedules an unconditional move (carry/borrow/count-by-1) in dir.
func (w *DigitWheel) moveWheel(ctx *Context, dir Direction) error {
	w.gear.Direction = dir
	delta := -1
	if dir != CCW {
		delta = 1
	}
	return w.queueMove(ctx, ((w.whposition+delta)%10+10)%10, dir)
}

// Advance commits the queued position change, marks the owning stack
// changed, propagates the rotation to any meshed gears, and — for a
// carry-capable wheel outside an active carry pass — arms carryWarned on a
// 9-to-0 (addition) or 0-to-9 (subtraction) wraparound for the stack's
// AxleCarriage to pick up at phase 16.
func (w *DigitWheel) Advance(ctx *Context, dir Direction) error {
	w.gear.Direction = dir
	if w.nextWhposition == nil {
		return fmt.Errorf("%w: %s", ErrNoNextPosition, w.name)
	}
	w.whposition = *w.nextWhposition
	w.nextWhposition = nil
	w.digitstack.changed = true
	w.digitstack.lastDirection = dir
	if w.carryCapable && !w.digitstack.doingCarries {
		want := 0
		if dir == CCW {
			want = 9
		}
		if w.whposition == want {
			w.carryWarned = true
		}
	}
	return rotateMeshedGears(ctx, w)
}

// DigitStack is a vertical grouping of wheels and an optional sign wheel,
// threaded by a common axle; it is the conduit that transmits the axle's
// finger movements and giving-off to its wheels.
type DigitStack struct {
	id            EntityID
	name          string
	axleID        EntityID
	ndigits       int
	Wheels        []*DigitWheel // index NDIGITS is the sign wheel, 0/1 = +/-
	withCarry     bool
	countBy1      bool
	doingCarries  bool
	changed       bool
	lastDirection Direction // direction of the most recent wheel movement, for AxleCarriage
}

// NewDigitStack creates a stack of ndigits+1 wheels (the last is the sign
// wheel). When withCarry is true the ordinary digit wheels (not the sign
// wheel) are carry-capable, arming carryWarned for the AxleCarriage.
func NewDigitStack(ctx *Context, name string, axleID EntityID, ndigits int, withCarry bool) *DigitStack {
	ds := &DigitStack{name: name, axleID: axleID, ndigits: ndigits, withCarry: withCarry}
	ds.id = ctx.register(ds)
	for n := 0; n <= ndigits; n++ {
		wname := fmt.Sprintf("%s.W%d", name, n)
		ds.Wheels = append(ds.Wheels, newDigitWheel(ctx, wname, ds, n, withCarry && n < ndigits))
	}
	return ds
}

func (ds *DigitStack) EntityName() string { return ds.name }
func (ds *DigitStack) ID() EntityID       { return ds.id }

// Ndigits reports the number of magnitude digit wheels (excluding the sign
// wheel).
func (ds *DigitStack) Ndigits() int { return ds.ndigits }

// signWheel returns the NDIGITS-indexed sign wheel: 0 for +, 1 for -.
func (ds *DigitStack) signWheel() *DigitWheel { return ds.Wheels[ds.ndigits] }

// Advance is called by the owning Axle when this stack's slot matches the
// finger height: either the count-by-1 path (increment/decrement the
// least-significant wheel and clear the flag), or giving-off, where every
// wheel whose position matches the axle's finger is queued to follow it.
func (ds *DigitStack) Advance(ctx *Context, fingerpos int) error {
	if ds.countBy1 {
		lsb := ds.Wheels[0]
		if err := lsb.moveWheel(ctx, lsb.gear.Direction); err != nil {
			return err
		}
		ds.countBy1 = false
		return nil
	}
	for _, w := range ds.Wheels {
		if _, err := w.checkFinger(ctx, fingerpos); err != nil {
			return err
		}
	}
	return nil
}

// SetValue sets a signed NDIGITS-digit number directly on the wheels,
// bypassing the mechanism — this is a meta-operation for test drivers
// (spec.md §6), not a mechanical action.
func (ds *DigitStack) SetValue(number int) {
	if number < 0 {
		ds.signWheel().whposition = 1
		number = -number
	} else {
		ds.signWheel().whposition = 0
	}
	for w := 0; w < ds.ndigits; w++ {
		ds.Wheels[w].whposition = number % 10
		number /= 10
	}
}

// Value reads the signed integer currently on the wheels.
func (ds *DigitStack) Value() int {
	val := 0
	for w := ds.ndigits - 1; w >= 0; w-- {
		val = val*10 + ds.Wheels[w].whposition
	}
	if ds.signWheel().whposition&1 == 1 {
		val = -val
	}
	return val
}

// String renders the stack's value as a signed decimal string, matching
// the original simulator's _printvalue layout.
func (ds *DigitStack) String() string {
	sign := ""
	if ds.signWheel().whposition&1 == 1 {
		sign = "-"
	}
	digits := make([]byte, ds.ndigits)
	for w := 0; w < ds.ndigits; w++ {
		digits[w] = byte('0' + ds.Wheels[ds.ndigits-1-w].whposition)
	}
	return fmt.Sprintf("%s: %s%s", ds.name, sign, string(digits))
}
