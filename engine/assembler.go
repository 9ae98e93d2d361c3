package engine

import (
	"fmt"
	"sort"
	"strings"
)

// labelRecord tracks one label's definition state and any verticals that
// jumped to it before it was defined.
type labelRecord struct {
	name        string
	defined     bool
	vertIndex   int
	pendingRefs map[int]bool
}

// vertical is one rotational position of the barrel under construction:
// the set of ON studs accumulated by calls to Program.Vertical, finalized
// into a fully-populated (every pair represented) sorted list by
// Program.EndProgram.
type vertical struct {
	label    string
	studsOn  map[int]bool
	studNums []int
}

// Program is an ordered list of verticals under construction, together
// with the label table needed to resolve jump targets. It is the
// assembler's core data structure (spec.md §3 Program / §4.1).
type Program struct {
	Name      string
	Table     *StudTable
	Verticals []*vertical
	Labels    map[string]*labelRecord
	SkipSet   map[int]bool
	ended     bool
}

// NewProgram creates an empty program over the given stud table.
func NewProgram(name string, table *StudTable) *Program {
	return &Program{
		Name:    name,
		Table:   table,
		Labels:  make(map[string]*labelRecord),
		SkipSet: make(map[int]bool),
	}
}

// Vertical appends a new vertical, interpreting args left to right: a
// leading string names a label defined at this vertical; a Stud or []Stud
// argument turns those studs ON; a trailing string (distinct from a
// leading label) names a jump target, resolved immediately if the label is
// already defined or deferred as a pending reference otherwise.
func (p *Program) Vertical(args ...any) error {
	if p.ended {
		return fmt.Errorf("vertical: program %q already ended", p.Name)
	}
	idx := len(p.Verticals)
	v := &vertical{studsOn: make(map[int]bool)}
	var labelArg, targetArg string
	sawStud := false
	for i, arg := range args {
		switch x := arg.(type) {
		case string:
			if i == 0 && !sawStud {
				labelArg = x
			} else {
				targetArg = x
			}
		case Stud:
			if err := p.turnOn(v, idx, x); err != nil {
				return err
			}
			sawStud = true
		case []Stud:
			for _, s := range x {
				if err := p.turnOn(v, idx, s); err != nil {
					return err
				}
			}
			sawStud = true
		default:
			return fmt.Errorf("vertical: unsupported argument type %T", arg)
		}
	}
	p.Verticals = append(p.Verticals, v)
	if labelArg != "" {
		if err := p.label(labelArg, idx); err != nil {
			return err
		}
	}
	if targetArg != "" {
		return p.gotoLabel(idx, targetArg)
	}
	return nil
}

func (p *Program) turnOn(v *vertical, idx int, s Stud) error {
	if v.studsOn[s.Num] {
		return nil // duplicate stud in the same vertical: silently ignored
	}
	v.studsOn[s.Num] = true
	if s.CanSkip {
		p.SkipSet[idx] = true
	}
	return nil
}

// label records name as defined at vertIdx, patching any pending jumps to
// it. Fails on a duplicate label name or a second label at a vertical that
// already has one.
func (p *Program) label(name string, vertIdx int) error {
	for other, lr := range p.Labels {
		if lr.defined && lr.vertIndex == vertIdx && other != name {
			return fmt.Errorf("%w: %q and %q both at vertical %d", ErrRedundantLabel, other, name, vertIdx)
		}
	}
	lr, ok := p.Labels[name]
	if !ok {
		lr = &labelRecord{name: name, pendingRefs: make(map[int]bool)}
		p.Labels[name] = lr
	}
	if lr.defined {
		return fmt.Errorf("%w: %q", ErrDuplicateLabel, name)
	}
	lr.defined = true
	lr.vertIndex = vertIdx
	for ref := range lr.pendingRefs {
		if err := p.applyJump(ref, vertIdx-ref); err != nil {
			return err
		}
	}
	lr.pendingRefs = make(map[int]bool)
	return nil
}

// gotoLabel resolves a jump from vertIdx to name: immediately if name is
// already defined, or as a pending reference otherwise.
func (p *Program) gotoLabel(vertIdx int, name string) error {
	lr, ok := p.Labels[name]
	if !ok {
		lr = &labelRecord{name: name, pendingRefs: make(map[int]bool)}
		p.Labels[name] = lr
	}
	if lr.defined {
		return p.applyJump(vertIdx, lr.vertIndex-vertIdx)
	}
	lr.pendingRefs[vertIdx] = true
	return nil
}

// applyJump encodes signed distance d onto vertIdx's move studs: negative
// distances turn on MOVEBACK and proceed with the magnitude; the magnitude
// is then decomposed into the {4, 2, 1} move studs. Zero and magnitudes
// over 7 are fatal assembler errors.
func (p *Program) applyJump(vertIdx int, d int) error {
	v := p.Verticals[vertIdx]
	if d == 0 {
		return ErrZeroJump
	}
	if d < 0 {
		v.studsOn[MoveBackStud] = true
		d = -d
	}
	if d > 7 {
		return ErrJumpTooFar
	}
	if d&4 != 0 {
		v.studsOn[Move4Stud] = true
	}
	if d&2 != 0 {
		v.studsOn[Move2Stud] = true
	}
	if d&1 != 0 {
		v.studsOn[Move1Stud] = true
	}
	return nil
}

// EndProgram finalizes every vertical: a vertical with no move stud ON
// gets the default MOVE1 (+1); every stud pair neither of whose ON/OFF
// form was set gets its OFF form added; the final stud list is sorted
// ascending. Fails if any label has an unresolved pending reference.
func (p *Program) EndProgram() error {
	for name, lr := range p.Labels {
		if !lr.defined || len(lr.pendingRefs) > 0 {
			return fmt.Errorf("%w: %q", ErrUndefinedLabel, name)
		}
	}
	for _, v := range p.Verticals {
		hasMove := v.studsOn[Move1Stud] || v.studsOn[Move2Stud] || v.studsOn[Move4Stud] || v.studsOn[MoveBackStud]
		if !hasMove {
			v.studsOn[Move1Stud] = true
		}
		final := make([]int, 0, len(p.Table.Studs))
		for i := range p.Table.Studs {
			on := i * 2
			if v.studsOn[on] {
				final = append(final, on)
			} else {
				final = append(final, on+1)
			}
		}
		sort.Ints(final)
		v.studNums = final
	}
	p.ended = true
	return nil
}

// decodeJump reads the signed jump distance encoded on a finalized
// vertical's move studs.
func (v *vertical) decodeJump() int {
	mag := 0
	if v.studsOn[Move4Stud] {
		mag += 4
	}
	if v.studsOn[Move2Stud] {
		mag += 2
	}
	if v.studsOn[Move1Stud] {
		mag += 1
	}
	if v.studsOn[MoveBackStud] {
		return -mag
	}
	return mag
}

// labelAt returns the label name defined at idx, if any.
func (p *Program) labelAt(idx int) string {
	for name, lr := range p.Labels {
		if lr.defined && lr.vertIndex == idx {
			return name
		}
	}
	return ""
}

// Disassemble renders a bit-exact text dump: one line per vertical, label
// column, index, comma-separated ON stud names (excluding move studs)
// wrapped at column 80, and a trailing jump description.
func (p *Program) Disassemble() string {
	var b strings.Builder
	nv := len(p.Verticals)
	for idx, v := range p.Verticals {
		label := p.labelAt(idx)
		names := make([]string, 0)
		for _, num := range v.studNums {
			if num < p.Table.MovesBoundary {
				continue
			}
			if num%2 != 0 {
				continue // OFF form, not printed
			}
			names = append(names, p.Table.ByNum(num).Name)
		}
		fmt.Fprintf(&b, "%-12s %4d  ", label, idx)
		wrapJoin(&b, names, 80)
		dist := v.decodeJump()
		target := ((idx+dist)%nv + nv) % nv
		targetLabel := p.labelAt(target)
		if targetLabel == "" {
			targetLabel = fmt.Sprintf("%d", target)
		}
		switch {
		case p.SkipSet[idx]:
			altDist := dist
			if dist < 0 {
				altDist--
			} else {
				altDist++
			}
			alt := ((idx+altDist)%nv + nv) % nv
			altLabel := p.labelAt(alt)
			if altLabel == "" {
				altLabel = fmt.Sprintf("%d", alt)
			}
			fmt.Fprintf(&b, "  --> %s or %s (%+d)\n", targetLabel, altLabel, dist)
		case dist != 1:
			fmt.Fprintf(&b, "  --> %s (%+d)\n", targetLabel, dist)
		default:
			b.WriteString("\n")
		}
	}
	return b.String()
}

func wrapJoin(b *strings.Builder, names []string, width int) {
	col := 0
	for i, n := range names {
		piece := n
		if i < len(names)-1 {
			piece += ", "
		}
		if col+len(piece) > width && col > 0 {
			b.WriteString("\n")
			col = 0
		}
		b.WriteString(piece)
		col += len(piece)
	}
}

// ShowVerticals renders a rectangular grid: one row per stud (descending
// stud number), one column per vertical, with an asterisk where the stud's
// ON form is set and stud names right-aligned in the row header. OFF-form
// rows (names marked with ') never carry an asterisk, so they always read
// unused.
func (p *Program) ShowVerticals() string {
	var b strings.Builder
	for i := len(p.Table.Studs)*2 - 1; i >= 0; i-- {
		stud := p.Table.ByNum(i)
		row := make([]byte, len(p.Verticals))
		anyOn := false
		for idx, v := range p.Verticals {
			row[idx] = ' '
			if v.studsOn[i] {
				row[idx] = '*'
				anyOn = true
			}
		}
		name := stud.Name
		if i%2 != 0 {
			name += "'" // OFF form marker
		}
		suffix := ""
		if !anyOn {
			suffix = " unused"
		}
		fmt.Fprintf(&b, "%12s |%s|%s\n", name, string(row), suffix)
	}
	return b.String()
}
