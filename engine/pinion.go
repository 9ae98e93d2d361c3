package engine

import "fmt"

// Pinion is a pinion gear that can mesh with other gears, perhaps
// conditionally on its vertical position. It has no internal value of its
// own; it exists to transmit rotation between the gear it is meshed to and
// the gear its own Gear drives.
type Pinion struct {
	id        EntityID
	name      string
	stack     *PinionStack
	indexInStack int
	gear      *Gear
	driven    bool
	vposition float64
}

func (p *Pinion) EntityName() string { return p.name }
func (p *Pinion) ID() EntityID       { return p.id }
func (p *Pinion) Mesh() *Gear         { return p.gear }
func (p *Pinion) IsDriven() bool      { return p.driven }
func (p *Pinion) SetDriven(d bool)    { p.driven = d }

func (p *Pinion) meshedRotate(ctx *Context, dir Direction) error {
	p.gear.Direction = dir
	return ctx.AddToAdvanceList(p.id, dir)
}

// Advance rotates the pinion and propagates the rotation to its mesh
// partners in the opposite direction.
func (p *Pinion) Advance(ctx *Context, dir Direction) error {
	p.gear.Direction = dir
	return rotateMeshedGears(ctx, p)
}

// PinionStack is a vertical grouping of pinions threaded by a common
// lift mechanism; lifting the stack moves every pinion to the same
// vposition at once.
type PinionStack struct {
	id      EntityID
	name    string
	Pinions []*Pinion
}

// NewPinionStack creates a stack of count pinions and registers each one
// with ctx.
func NewPinionStack(ctx *Context, name string, count int) *PinionStack {
	ps := &PinionStack{name: name}
	ps.id = ctx.register(ps)
	for n := 0; n < count; n++ {
		p := &Pinion{name: fmt.Sprintf("%s.P%d", name, n), stack: ps, indexInStack: n}
		p.id = ctx.registerAdvancer(p)
		p.gear = newGear(p.id)
		ps.Pinions = append(ps.Pinions, p)
	}
	return ps
}

func (ps *PinionStack) EntityName() string { return ps.name }
func (ps *PinionStack) ID() EntityID       { return ps.id }

// DefineMesh registers a possible mesh at vposition between every pinion
// in the stack and the corresponding entry of partners, shifted by shift
// positions. Per spec.md §9 ("shift off either end"), a shifted index
// outside [0, len(partners)) is silently ignored rather than erroring.
func (ps *PinionStack) DefineMesh(mesh *MeshGraph, vposition float64, partners []EntityID, shift int) {
	for idx, p := range ps.Pinions {
		j := idx + shift
		if j < 0 || j >= len(partners) {
			continue
		}
		mesh.Define(p.id, vposition, partners[j])
	}
}

// Lift moves every pinion in the stack to vposition.
func (ps *PinionStack) Lift(vposition float64) {
	for _, p := range ps.Pinions {
		p.vposition = vposition
	}
}
