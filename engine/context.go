// Package engine simulates the mechanical component graph and barrel
// runtime of Charles Babbage's Analytical Engine at the resolution of
// gears, pinions, digit wheels, axles, and anticipating carriages.
package engine

import (
	"fmt"
	"math/rand"

	"github.com/golang/glog"
)

// Direction is the sense of rotation of a gear, pinion, or digit wheel.
type Direction bool

const (
	CCW Direction = true
	CW  Direction = false
)

func (d Direction) String() string {
	if d == CCW {
		return "CCW"
	}
	return "CW"
}

// EntityID is a stable handle for any component registered with a Context.
// Cross-references between components (mesh partners, a DigitStack's
// owning Axle, a stud action's target) are expressed as EntityID, never as
// an owning Go pointer, so the mesh graph can be recomputed every vertical
// without the registry itself being part of any ownership cycle.
type EntityID int

// Advancer is anything that can occupy the awaiting-advance list and be
// driven for one time unit: gears' pinions and digit wheels, axles,
// counters, and the barrel itself.
type Advancer interface {
	EntityName() string
	IsDriven() bool
	SetDriven(bool)
	Advance(ctx *Context, dir Direction) error
}

// Randomizer is the pluggable randomness source required by spec: an
// injected interface supporting uniform index selection, so that reruns
// with a fixed seed replay identically.
type Randomizer interface {
	Intn(n int) int
}

// NewRandomizer wraps a seed in the default math/rand-backed source. No
// library in the retrieval pack supplies a dedicated uniform-index RNG
// abstraction, so this is the one place the engine reaches for the
// standard library instead of a pack dependency (see DESIGN.md).
func NewRandomizer(seed int64) Randomizer {
	return rand.New(rand.NewSource(seed))
}

// TraceFlags mirrors the original simulator's TRACE_* bitmask, gating
// glog.V(n) output instead of bare prints.
type TraceFlags int

const (
	TraceAdvance TraceFlags = 1 << iota
	TraceWheels
	TraceGears
	TraceQueues
	TraceBarrels
	TraceMeshes
	TraceJumps
	TraceValues
	TraceEndingValues
	TraceAll = -1
)

func (t TraceFlags) has(f TraceFlags) bool { return t&f != 0 }

type pendingAdvance struct {
	id  EntityID
	dir Direction
}

// Context is the explicit simulation context that replaces the source
// program's module-level globals (awaiting_advance, timeunit, and the
// per-name globals it created dynamically for studs and digit stacks).
// Everything that used to be a global is a field here, passed by
// reference to every operation that needs it.
type Context struct {
	entities   map[EntityID]any
	advancers  map[EntityID]Advancer
	axleIDs    map[EntityID]bool
	nextID     EntityID
	awaiting   []pendingAdvance
	Timeunit   int
	cycle      int
	Stopped    bool
	rng        Randomizer
	Mesh       *MeshGraph
	Trace      TraceFlags
	axleList   []*Axle // all registered axles, for the giving-off phase loop
	timeLimit  int
}

// NewContext creates an empty simulation context seeded with rng.
func NewContext(rng Randomizer) *Context {
	return &Context{
		entities:  make(map[EntityID]any),
		advancers: make(map[EntityID]Advancer),
		axleIDs:   make(map[EntityID]bool),
		Mesh:      newMeshGraph(),
		rng:       rng,
	}
}

// SetTimeLimit aborts TimeUnitTick with ErrTimeLimit once the number of
// completed barrel cycles exceeds limit. A limit of 0 (the default) means
// unlimited. Cycles, not Timeunit, are what callers actually want to bound
// a run by — Timeunit counts individual TimeUnitTick calls (one per barrel
// phase, per spec.md §4.5), so it grows 15-20x faster than Cycle and isn't
// the number a caller sizing a generous-but-finite limit (e.g. plan27's
// run helper) can reason about in advance; a microprogram that never
// reaches its DOSTOP stud would otherwise loop forever one phase at a time.
func (ctx *Context) SetTimeLimit(limit int) { ctx.timeLimit = limit }

func (ctx *Context) register(v any) EntityID {
	id := ctx.nextID
	ctx.nextID++
	ctx.entities[id] = v
	return id
}

// registerAdvancer registers an Advancer and remembers it for driven-flag
// bookkeeping at the end of each time unit.
func (ctx *Context) registerAdvancer(a Advancer) EntityID {
	id := ctx.register(a)
	ctx.advancers[id] = a
	return id
}

// Entity resolves a handle back to the concrete component that registered
// it. Callers type-assert to whatever concrete type they expect; a mismatch
// is the "mesh partner of unexpected type" fault spec.md §7 calls out.
func (ctx *Context) Entity(id EntityID) any {
	return ctx.entities[id]
}

// AddToAdvanceList enqueues comp for an advance this time unit. It is the
// one place mechanical exclusion is enforced: a component already driven
// may not be scheduled again, except for an Axle, whose driven state is
// managed across multiple phases by barrel stud actions rather than by the
// scheduler itself.
func (ctx *Context) AddToAdvanceList(id EntityID, dir Direction) error {
	a, ok := ctx.advancers[id]
	if !ok {
		return fmt.Errorf("%w: entity %d is not an advancer", ErrUnknownEntity, id)
	}
	if ctx.Trace.has(TraceAdvance) {
		glog.V(2).Infof("adding %s %s to advance list", a.EntityName(), dir)
	}
	if !ctx.axleIDs[id] && a.IsDriven() {
		return fmt.Errorf("%w: %s is already driven", ErrAlreadyDriven, a.EntityName())
	}
	a.SetDriven(true)
	ctx.awaiting = append(ctx.awaiting, pendingAdvance{id: id, dir: dir})
	return nil
}

// TimeUnitTick advances the simulator by one time unit: components already
// queued (typically just the barrel, which a caller must re-add with
// Barrel.Start before every single call — see its doc comment) are drained
// in uniformly random order until none remain, each advance free to enqueue
// further components within the same time unit. See spec.md §4.5/§5 — there
// is no suspension within a time unit, only between one TimeUnitTick call
// and the next, matching component.py's domult/dodiv drivers: one call to
// timeunit_tick() corresponds to one barrel phase, not a whole run.
func (ctx *Context) TimeUnitTick() error {
	ctx.Timeunit++
	for len(ctx.awaiting) > 0 {
		if ctx.timeLimit > 0 && ctx.cycle > ctx.timeLimit {
			return fmt.Errorf("%w: at cycle %d", ErrTimeLimit, ctx.cycle)
		}
		idx := ctx.rng.Intn(len(ctx.awaiting))
		next := ctx.awaiting[idx]
		ctx.awaiting[idx] = ctx.awaiting[len(ctx.awaiting)-1]
		ctx.awaiting = ctx.awaiting[:len(ctx.awaiting)-1]
		a := ctx.advancers[next.id]
		if !a.IsDriven() {
			return fmt.Errorf("%w: %s is on the advance list but not driven, at timeunit %d", ErrNotDriven, a.EntityName(), ctx.Timeunit)
		}
		if ctx.Trace.has(TraceAdvance) {
			glog.V(2).Infof("advancing %s %s at timeunit %d", a.EntityName(), next.dir, ctx.Timeunit)
		}
		if err := a.Advance(ctx, next.dir); err != nil {
			return err
		}
	}
	// Every advancer except an axle clears its driven flag at the end of
	// every time unit; an axle's flag persists across phases and cycles, and
	// neither the scheduler nor the barrel runtime ever clears it.
	for id, a := range ctx.advancers {
		if !ctx.axleIDs[id] {
			a.SetDriven(false)
		}
	}
	return nil
}

// registerAxle records id as an axle for the scheduler's driven-flag
// bookkeeping exemption.
func (ctx *Context) registerAxle(a *Axle) EntityID {
	id := ctx.registerAdvancer(a)
	ctx.axleIDs[id] = true
	ctx.axleList = append(ctx.axleList, a)
	return id
}

// Axles returns every registered axle, in registration order.
func (ctx *Context) Axles() []*Axle { return ctx.axleList }

func (ctx *Context) bumpCycle() { ctx.cycle++ }

// Cycle returns the number of barrel cycles completed so far.
func (ctx *Context) Cycle() int { return ctx.cycle }
