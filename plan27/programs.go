package plan27

import (
	"fmt"

	"github.com/aesim/babbage/engine"
)

// Multiply computes a*c by repeated addition: c chunks, each chunk adding
// exactly a to Result one count-by-1 unit at a time, the chunk's progress
// tracked on a bound-a counter whose RunningUp flag fires on the a-th unit,
// and the chunks themselves tracked on a bound-c counter the same way. Both
// operands must be non-negative. Because the underlying primitive moves
// Result by one unit per barrel cycle, wall-clock cost is proportional to
// a*c — fine for the modest operands a demonstration program exercises,
// impractical for spec.md §8's largest literal figures (see DESIGN.md).
// timeunits reports how many barrel cycles the run consumed, for the
// determinism property (identical seed and inputs always yield identical
// cycle counts and results). ndigits sizes the underlying digit stack;
// 0 or negative selects NDigits, the width spec.md §8's scenarios assume. A
// product that needs more than ndigits digits returns engine.ErrOverflow
// (spec.md §7) instead of a wrapped value.
// trace gates which categories of engine.Context tracing glog emits during
// the run; pass 0 for silence.
func Multiply(rng engine.Randomizer, a, c, ndigits int, trace engine.TraceFlags) (product int, timeunits int, err error) {
	if a < 0 || c < 0 {
		return 0, 0, fmt.Errorf("plan27: multiply requires non-negative operands, got %d*%d", a, c)
	}
	if a == 0 || c == 0 {
		return 0, 0, nil
	}
	if ndigits <= 0 {
		ndigits = NDigits
	}

	m := newMachine(rng, ndigits, trace)
	p, err := buildMultiplyProgram(m, a, c)
	if err != nil {
		return 0, 0, err
	}

	m.Stack.SetValue(0)

	barrel := engine.NewBarrel(m.Ctx, "multiply", p)
	units, err := run(m.Ctx, barrel, 2*a*c+2*c+10)
	if err != nil {
		return 0, units, err
	}
	// Multiply's microprogram never reads m.Carry (unlike Divide's, which
	// checks it each chunk for borrow control), so its RunningUp state at
	// the end of the run unambiguously means the result overflowed ndigits.
	if err := m.Carry.CheckOverflow(); err != nil {
		return 0, units, fmt.Errorf("plan27: multiply %d*%d overflowed %d digits: %w", a, c, ndigits, err)
	}
	return m.Stack.Value(), units, nil
}

// MultiplyProgram builds (but does not run) the microprogram Multiply(a, c)
// would execute, for disassembly: a*c only selects which counter bounds get
// baked into the program, since the bound value itself isn't visible in the
// stud listing.
func MultiplyProgram(a, c, ndigits int) (*engine.Program, error) {
	if a <= 0 {
		a = 1
	}
	if c <= 0 {
		c = 1
	}
	if ndigits <= 0 {
		ndigits = NDigits
	}
	m := newMachine(engine.NewRandomizer(1), ndigits, 0)
	return buildMultiplyProgram(m, a, c)
}

func buildMultiplyProgram(m *Machine, a, c int) (*engine.Program, error) {
	lift := liftResult(m)
	chunk := engine.NewCounter(m.Ctx, "Chunk", a)
	reps := engine.NewCounter(m.Ctx, "Reps", c)

	m.Table.CreateStud("COUNT_UP_RESULT", &engine.StudAction{
		Kind: engine.ActionCountBy1, Target: m.Stack.ID(), CountDirection: engine.CW,
	}, false)
	sCountUpResult, _ := m.Table.ByName("COUNT_UP_RESULT")

	m.Table.CreateStud("COUNT_UP_CHUNK", &engine.StudAction{
		Kind: engine.ActionCounterChange, Target: chunk.ID(), CountDirection: engine.CW,
	}, false)
	sCountUpChunk, _ := m.Table.ByName("COUNT_UP_CHUNK")

	m.Table.CreateStud("LONGCYCLE", &engine.StudAction{Kind: engine.ActionSetLongCycle}, false)
	sLongCycle, _ := m.Table.ByName("LONGCYCLE")

	m.Table.CreateStud("CHK_CHUNK_DONE", &engine.StudAction{
		Kind: engine.ActionChkRunup, FirePhase: 3, Target: chunk.ID(),
	}, true)
	sChkChunkDone, _ := m.Table.ByName("CHK_CHUNK_DONE")

	m.Table.CreateStud("COUNT_UP_REPS", &engine.StudAction{
		Kind: engine.ActionCounterChange, Target: reps.ID(), CountDirection: engine.CW,
	}, false)
	sCountUpReps, _ := m.Table.ByName("COUNT_UP_REPS")

	m.Table.CreateStud("CLEAR_CHUNK", &engine.StudAction{
		Kind: engine.ActionCounterClear, Target: chunk.ID(),
	}, false)
	sClearChunk, _ := m.Table.ByName("CLEAR_CHUNK")

	m.Table.CreateStud("CHK_REPS_DONE", &engine.StudAction{
		Kind: engine.ActionChkRunup, FirePhase: 3, Target: reps.ID(), Invert: true,
	}, true)
	sChkRepsDone, _ := m.Table.ByName("CHK_REPS_DONE")

	m.Table.CreateStud("STOP", &engine.StudAction{Kind: engine.ActionDoStop}, false)
	sStop, _ := m.Table.ByName("STOP")

	p := engine.NewProgram("multiply", m.Table)
	// Vertical order fixes each conditional jump's landing: a CanSkip
	// vertical's skip path always lands exactly one position past its
	// normal path's target, in the same direction, so the two destinations
	// of every check below must sit adjacent to each other in this list.
	// step (0): +2 to checkstep.
	if err := p.Vertical("step",
		[]engine.Stud{lift, sCountUpResult, sCountUpChunk, sLongCycle}, "checkstep"); err != nil {
		return nil, err
	}
	// stop (1): terminal.
	if err := p.Vertical("stop", []engine.Stud{sStop}); err != nil {
		return nil, err
	}
	// checkstep (2): -2 to step if chunk not done, -3 (skip) to bump if done.
	if err := p.Vertical("checkstep", []engine.Stud{sChkChunkDone}, "step"); err != nil {
		return nil, err
	}
	// bump (3): Invert so "reps done" is the base path, landing -2 at stop;
	// not done skips -3, back to step.
	if err := p.Vertical("bump",
		[]engine.Stud{sCountUpReps, sClearChunk, sChkRepsDone}, "stop"); err != nil {
		return nil, err
	}
	if err := p.EndProgram(); err != nil {
		return nil, err
	}
	return p, nil
}

// Divide computes dividend/divisor by restoring division at unit-step
// granularity: Result (initialized to dividend) is decremented one unit at
// a time, a bound-divisor counter tracking units consumed in the current
// chunk; a chunk that completes (the counter's RunningUp fires) bumps the
// quotient tally. A chunk that instead runs Result negative — detected via
// the carriage's own RunningUp, which only fires when a borrow ripples out
// of the top digit wheel — is undone unit-by-unit (the same count the
// partial chunk had consumed) and the run halts, leaving Result holding the
// exact remainder. dividend must be non-negative and divisor strictly
// positive. See Multiply's doc comment on this primitive's O(dividend) cost
// and on the trace parameter.
func Divide(rng engine.Randomizer, dividend, divisor, ndigits int, trace engine.TraceFlags) (quotient int, remainder int, timeunits int, err error) {
	if dividend < 0 || divisor <= 0 {
		return 0, 0, 0, fmt.Errorf("plan27: divide requires dividend >= 0 and divisor > 0, got %d/%d", dividend, divisor)
	}
	if dividend == 0 {
		return 0, 0, 0, nil
	}
	if ndigits <= 0 {
		ndigits = NDigits
	}

	m := newMachine(rng, ndigits, trace)
	p, quot, err := buildDivideProgram(m, divisor)
	if err != nil {
		return 0, 0, 0, err
	}

	m.Stack.SetValue(dividend)

	barrel := engine.NewBarrel(m.Ctx, "divide", p)
	units, err := run(m.Ctx, barrel, 3*dividend+3*divisor+10)
	if err != nil {
		return 0, 0, units, err
	}
	return quot.Value(), m.Stack.Value(), units, nil
}

// DivideProgram builds (but does not run) the microprogram Divide(_, divisor)
// would execute, for disassembly.
func DivideProgram(divisor, ndigits int) (*engine.Program, error) {
	if divisor <= 0 {
		divisor = 1
	}
	if ndigits <= 0 {
		ndigits = NDigits
	}
	m := newMachine(engine.NewRandomizer(1), ndigits, 0)
	p, _, err := buildDivideProgram(m, divisor)
	return p, err
}

func buildDivideProgram(m *Machine, divisor int) (*engine.Program, *engine.Counter, error) {
	lift := liftResult(m)
	step := engine.NewCounter(m.Ctx, "Step", divisor)
	quot := engine.NewCounter(m.Ctx, "Quotient", 0)

	m.Table.CreateStud("COUNT_DOWN_RESULT", &engine.StudAction{
		Kind: engine.ActionCountBy1, Target: m.Stack.ID(), CountDirection: engine.CCW,
	}, false)
	sCountDownResult, _ := m.Table.ByName("COUNT_DOWN_RESULT")

	m.Table.CreateStud("COUNT_UP_STEP", &engine.StudAction{
		Kind: engine.ActionCounterChange, Target: step.ID(), CountDirection: engine.CW,
	}, false)
	sCountUpStep, _ := m.Table.ByName("COUNT_UP_STEP")

	m.Table.CreateStud("LONGCYCLE", &engine.StudAction{Kind: engine.ActionSetLongCycle}, false)
	sLongCycle, _ := m.Table.ByName("LONGCYCLE")

	m.Table.CreateStud("CHK_BORROW", &engine.StudAction{
		Kind: engine.ActionChkRunup, FirePhase: 17, Target: m.Carry.ID(),
	}, true)
	sChkBorrow, _ := m.Table.ByName("CHK_BORROW")

	m.Table.CreateStud("CHK_STEP_DONE", &engine.StudAction{
		Kind: engine.ActionChkRunup, FirePhase: 3, Target: step.ID(),
	}, true)
	sChkStepDone, _ := m.Table.ByName("CHK_STEP_DONE")

	m.Table.CreateStud("COUNT_UP_RESULT", &engine.StudAction{
		Kind: engine.ActionCountBy1, Target: m.Stack.ID(), CountDirection: engine.CW,
	}, false)
	sCountUpResult, _ := m.Table.ByName("COUNT_UP_RESULT")

	m.Table.CreateStud("COUNT_DOWN_STEP", &engine.StudAction{
		Kind: engine.ActionCounterChange, Target: step.ID(), CountDirection: engine.CCW,
	}, false)
	sCountDownStep, _ := m.Table.ByName("COUNT_DOWN_STEP")

	m.Table.CreateStud("CHK_ZERO_STEP", &engine.StudAction{
		Kind: engine.ActionChkCounterZero, FirePhase: 3, Target: step.ID(), Invert: true,
	}, true)
	sChkZeroStep, _ := m.Table.ByName("CHK_ZERO_STEP")

	m.Table.CreateStud("COUNT_UP_QUOTIENT", &engine.StudAction{
		Kind: engine.ActionCounterChange, Target: quot.ID(), CountDirection: engine.CW,
	}, false)
	sCountUpQuotient, _ := m.Table.ByName("COUNT_UP_QUOTIENT")

	m.Table.CreateStud("CLEAR_STEP", &engine.StudAction{
		Kind: engine.ActionCounterClear, Target: step.ID(),
	}, false)
	sClearStep, _ := m.Table.ByName("CLEAR_STEP")

	m.Table.CreateStud("STOP", &engine.StudAction{Kind: engine.ActionDoStop}, false)
	sStop, _ := m.Table.ByName("STOP")

	p := engine.NewProgram("divide", m.Table)
	// Vertical order: step, checkstep, undo, stop, undocheck, bump — again
	// chosen so each CanSkip vertical's two destinations sit adjacent.
	// step (0): default +1 to checkstep if no borrow, skip +2 to undo on borrow.
	if err := p.Vertical("step",
		[]engine.Stud{lift, sCountDownResult, sCountUpStep, sLongCycle, sChkBorrow}); err != nil {
		return nil, nil, err
	}
	// checkstep (1): -1 to step if chunk not done, skip -2 (wraps) to bump if done.
	if err := p.Vertical("checkstep", []engine.Stud{sChkStepDone}, "step"); err != nil {
		return nil, nil, err
	}
	// undo (2): unconditional +2 to undocheck.
	if err := p.Vertical("undo",
		[]engine.Stud{lift, sCountUpResult, sCountDownStep, sLongCycle}, "undocheck"); err != nil {
		return nil, nil, err
	}
	// stop (3): terminal.
	if err := p.Vertical("stop", []engine.Stud{sStop}); err != nil {
		return nil, nil, err
	}
	// undocheck (4): Invert so "step back to zero" is the base path, -1 to
	// stop; still unwinding skips -2 back to undo.
	if err := p.Vertical("undocheck", []engine.Stud{sChkZeroStep}, "stop"); err != nil {
		return nil, nil, err
	}
	// bump (5): unconditional -5 back to step.
	if err := p.Vertical("bump",
		[]engine.Stud{sCountUpQuotient, sClearStep}, "step"); err != nil {
		return nil, nil, err
	}
	if err := p.EndProgram(); err != nil {
		return nil, nil, err
	}
	return p, quot, nil
}
