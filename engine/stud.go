package engine

import "fmt"

// StudActionKind tags the small set of primitive effects a stud action can
// have on the simulation. Representing actions as a tagged record rather
// than a closure keeps a Program trivially serializable (see DESIGN.md).
type StudActionKind int

const (
	// ActionLift lifts an Axle or PinionStack to Height and, for an axle,
	// keeps it queued for giving-off for as long as it stays driven.
	ActionLift StudActionKind = iota
	// ActionSetBackwards marks the current cycle's jump as backwards.
	ActionSetBackwards
	// ActionSetLongCycle switches the barrel to the 20-phase cycle.
	ActionSetLongCycle
	// ActionCountBy1 arms a DigitStack's count-by-1 path, moving the
	// least-significant wheel one step in CountDirection.
	ActionCountBy1
	// ActionCounterChange increments or decrements a Counter.
	ActionCounterChange
	// ActionCounterClear resets a Counter to zero.
	ActionCounterClear
	// ActionChkRunup sets Barrel.doskip from a carriage's or counter's
	// RunningUp flag, XORed with Invert.
	ActionChkRunup
	// ActionChkSign sets Barrel.doskip from a DigitStack's sign wheel,
	// XORed with Invert.
	ActionChkSign
	// ActionChkCounterZero sets Barrel.doskip from whether a Counter's
	// value is zero, XORed with Invert — the runtime loop-termination test
	// a repeat-count-driven program uses instead of unrolling at build time.
	ActionChkCounterZero
	// ActionDoStop halts the simulation at the end of the current time unit.
	ActionDoStop
)

// StudAction is the tagged-record effect attached to a Stud. Apply is
// called once per vertical, at FirePhase, for every stud ON in that
// vertical — representing a closure as data so a Program stays trivially
// serializable (see DESIGN.md).
type StudAction struct {
	Kind           StudActionKind
	FirePhase      int // 0 defaults to phase 2, the general lift/setup phase
	Target         EntityID
	Height         float64
	LiftDirection  Direction
	CountDirection Direction
	Invert         bool
}

// firePhase reports the phase this action fires at.
func (a *StudAction) firePhase() int {
	if a.FirePhase == 0 {
		return 2
	}
	return a.FirePhase
}

// Apply executes the action; on is false when this is the OFF half of the
// stud pair (every kind here is a no-op when off).
func (a *StudAction) Apply(ctx *Context, barrel *Barrel, on bool) error {
	if a == nil || !on {
		return nil
	}
	switch a.Kind {
	case ActionLift:
		switch t := ctx.Entity(a.Target).(type) {
		case *Axle:
			t.Lift(a.Height)
			return ctx.AddToAdvanceList(t.ID(), a.LiftDirection)
		case *PinionStack:
			t.Lift(a.Height)
			return nil
		default:
			return fmt.Errorf("%w: stud lift target %d", ErrMeshTypeMismatch, a.Target)
		}
	case ActionSetBackwards:
		barrel.jumpBackwards = true
		return nil
	case ActionSetLongCycle:
		barrel.numPhases = 20
		return nil
	case ActionCountBy1:
		ds, ok := ctx.Entity(a.Target).(*DigitStack)
		if !ok {
			return fmt.Errorf("%w: count-by-1 target %d", ErrMeshTypeMismatch, a.Target)
		}
		ds.Wheels[0].gear.Direction = a.CountDirection
		ds.countBy1 = true
		return nil
	case ActionCounterChange:
		c, ok := ctx.Entity(a.Target).(*Counter)
		if !ok {
			return fmt.Errorf("%w: counter target %d", ErrMeshTypeMismatch, a.Target)
		}
		c.CountBy1(a.CountDirection)
		return nil
	case ActionCounterClear:
		c, ok := ctx.Entity(a.Target).(*Counter)
		if !ok {
			return fmt.Errorf("%w: counter target %d", ErrMeshTypeMismatch, a.Target)
		}
		c.Clear()
		return nil
	case ActionChkRunup:
		running := false
		switch t := ctx.Entity(a.Target).(type) {
		case *AxleCarriage:
			running = t.RunningUp()
		case *Counter:
			running = t.RunningUp()
		default:
			return fmt.Errorf("%w: chk_runup target %d", ErrMeshTypeMismatch, a.Target)
		}
		barrel.doskip = running != a.Invert
		return nil
	case ActionChkSign:
		ds, ok := ctx.Entity(a.Target).(*DigitStack)
		if !ok {
			return fmt.Errorf("%w: chk_sign target %d", ErrMeshTypeMismatch, a.Target)
		}
		negative := ds.signWheel().whposition&1 == 1
		barrel.doskip = negative != a.Invert
		return nil
	case ActionChkCounterZero:
		c, ok := ctx.Entity(a.Target).(*Counter)
		if !ok {
			return fmt.Errorf("%w: chk_counter_zero target %d", ErrMeshTypeMismatch, a.Target)
		}
		barrel.doskip = (c.Value() == 0) != a.Invert
		return nil
	case ActionDoStop:
		ctx.Stopped = true
		return nil
	default:
		return fmt.Errorf("unknown stud action kind %d", a.Kind)
	}
}

// Stud is an immutable control descriptor. Num is always even; Num+1 is
// the paired OFF control for the same name.
type Stud struct {
	Name    string
	Num     int
	Action  *StudAction
	CanSkip bool
}

// StudTable is the ordered registry of studs for one program: the first
// four entries are always MOVE1, MOVE2, MOVE4, MOVEBACK (the reserved jump
// primitives the barrel interprets natively), followed by whatever
// topology- and program-specific studs a caller registers.
type StudTable struct {
	Studs         []Stud
	byName        map[string]int
	MovesBoundary int
}

// NewStudTable creates a table pre-populated with the four reserved move
// studs.
func NewStudTable() *StudTable {
	t := &StudTable{byName: make(map[string]int)}
	for _, name := range []string{"MOVE1", "MOVE2", "MOVE4", "MOVEBACK"} {
		t.CreateStud(name, nil, false)
	}
	t.MovesBoundary = len(t.Studs) * 2
	return t
}

// CreateStud appends a new stud at the next even number and returns its ON
// stud number; Num+1 is its OFF number.
func (t *StudTable) CreateStud(name string, action *StudAction, canSkip bool) int {
	num := len(t.Studs) * 2
	t.Studs = append(t.Studs, Stud{Name: name, Num: num, Action: action, CanSkip: canSkip})
	t.byName[name] = len(t.Studs) - 1
	return num
}

// ByName resolves a registered stud by name; its Num is the ON number.
func (t *StudTable) ByName(name string) (Stud, bool) {
	idx, ok := t.byName[name]
	if !ok {
		return Stud{}, false
	}
	return t.Studs[idx], true
}

// ByNum resolves a stud (ON or OFF form) to its descriptor; the OFF form
// of a stud shares its ON form's name and action metadata.
func (t *StudTable) ByNum(num int) Stud { return t.Studs[num/2] }

// Move stud numbers are fixed by NewStudTable's registration order.
const (
	Move1Stud    = 0
	Move2Stud    = 2
	Move4Stud    = 4
	MoveBackStud = 6
)
