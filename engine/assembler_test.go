package engine

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func newCountingTable() *StudTable {
	t := NewStudTable()
	t.CreateStud("A", nil, false)
	t.CreateStud("B", nil, true)
	return t
}

func TestProgramDefaultMove1(t *testing.T) {
	table := newCountingTable()
	a, _ := table.ByName("A")
	p := NewProgram("default-move", table)
	require.NoError(t, p.Vertical(a))
	require.NoError(t, p.Vertical(a))
	require.NoError(t, p.EndProgram())

	require.Equal(t, 1, p.Verticals[0].decodeJump())
}

func TestProgramExplicitJumpDistances(t *testing.T) {
	table := newCountingTable()
	a, _ := table.ByName("A")
	p := NewProgram("jumps", table)
	require.NoError(t, p.Vertical("start", a, "mid"))
	require.NoError(t, p.Vertical(a))
	require.NoError(t, p.Vertical(a))
	require.NoError(t, p.Vertical("mid", a))
	require.NoError(t, p.EndProgram())

	require.Equal(t, 3, p.Verticals[0].decodeJump())
}

func TestProgramBackwardsJumpSetsMoveback(t *testing.T) {
	table := newCountingTable()
	a, _ := table.ByName("A")
	p := NewProgram("back", table)
	require.NoError(t, p.Vertical("top", a))
	require.NoError(t, p.Vertical(a))
	require.NoError(t, p.Vertical(a, "top"))
	require.NoError(t, p.EndProgram())

	last := p.Verticals[2]
	require.Equal(t, -2, last.decodeJump())
	require.True(t, last.studsOn[MoveBackStud])
}

func TestProgramJumpTooFarRejected(t *testing.T) {
	table := newCountingTable()
	a, _ := table.ByName("A")
	p := NewProgram("toofar", table)
	require.NoError(t, p.Vertical("start", a))
	for i := 0; i < 8; i++ {
		require.NoError(t, p.Vertical(a))
	}
	err := p.Vertical(a, "start")
	require.ErrorIs(t, err, ErrJumpTooFar)
}

func TestProgramUndefinedLabelRejected(t *testing.T) {
	table := newCountingTable()
	a, _ := table.ByName("A")
	p := NewProgram("dangling", table)
	require.NoError(t, p.Vertical(a, "nowhere"))
	err := p.EndProgram()
	require.ErrorIs(t, err, ErrUndefinedLabel)
}

func TestProgramDuplicateLabelRejected(t *testing.T) {
	table := newCountingTable()
	a, _ := table.ByName("A")
	p := NewProgram("dup", table)
	require.NoError(t, p.Vertical("same", a))
	err := p.Vertical("same", a)
	require.ErrorIs(t, err, ErrDuplicateLabel)
}

func TestProgramCanSkipMarksSkipSet(t *testing.T) {
	table := newCountingTable()
	b, _ := table.ByName("B")
	p := NewProgram("skip", table)
	require.NoError(t, p.Vertical(b))
	require.NoError(t, p.EndProgram())

	require.True(t, p.SkipSet[0])
}

func TestDisassembleRoundTripsLabelsAndJumps(t *testing.T) {
	table := newCountingTable()
	a, _ := table.ByName("A")
	p := NewProgram("disasm", table)
	require.NoError(t, p.Vertical("loop", a))
	require.NoError(t, p.Vertical(a, "loop"))
	require.NoError(t, p.EndProgram())

	out := p.Disassemble()
	require.Contains(t, out, "loop")
	require.Contains(t, out, "-1")
}

// buildLoopProgram constructs the same single-label, self-jumping program
// TestDisassembleRoundTripsLabelsAndJumps exercises, for comparison.
func buildLoopProgram(t *testing.T) *Program {
	t.Helper()
	table := newCountingTable()
	a, _ := table.ByName("A")
	p := NewProgram("disasm", table)
	require.NoError(t, p.Vertical("loop", a))
	require.NoError(t, p.Vertical(a, "loop"))
	require.NoError(t, p.EndProgram())
	return p
}

func TestDisassembleOutputIsStableAcrossIdenticalBuilds(t *testing.T) {
	first := buildLoopProgram(t).Disassemble()
	second := buildLoopProgram(t).Disassemble()
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("two builds of the same program disassembled differently (-first +second):\n%s", diff)
	}
}
