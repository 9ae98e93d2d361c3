package engine

// meshDef is one entry in a Rotatable's table of possible meshes: "when my
// vposition equals vposition (or vposition is ALWAYS), I am meshed to
// partner".
type meshDef struct {
	vposition float64
	partner   EntityID
}

// MeshGraph is the dynamic bipartite graph of currently-meshed gear pairs,
// recomputed from vposition every vertical. The possible-mesh table is
// static configuration (registered once, at topology-build time); the
// active edges living on each Gear.meshes are rebuilt at barrel phase 3
// and torn down at phase 13.
type MeshGraph struct {
	defs map[EntityID][]meshDef
}

func newMeshGraph() *MeshGraph {
	return &MeshGraph{defs: make(map[EntityID][]meshDef)}
}

// Define registers a possible mesh: when owner's vposition equals
// vposition (or vposition is ALWAYS), owner is meshed to partner.
func (mg *MeshGraph) Define(owner EntityID, vposition float64, partner EntityID) {
	mg.defs[owner] = append(mg.defs[owner], meshDef{vposition, partner})
}

// Compute rebuilds every gear's meshes list from the current vposition of
// every Pinion with a possible-mesh table (only pinions ever own mesh
// definitions; digit wheels are always partners, never owners — they have
// no vertical position of their own to key a mesh on). This is barrel
// phase 3.
func (mg *MeshGraph) Compute(ctx *Context) error {
	for owner, defs := range mg.defs {
		pinion, ok := ctx.Entity(owner).(*Pinion)
		if !ok {
			return ErrMeshTypeMismatch
		}
		ownerObj := Rotatable(pinion)
		vpos := pinion.vposition
		for _, d := range defs {
			if d.vposition != ALWAYS && d.vposition != vpos {
				continue
			}
			partnerObj, ok := ctx.Entity(d.partner).(Rotatable)
			if !ok {
				return ErrMeshTypeMismatch
			}
			ownerObj.Mesh().meshes = append(ownerObj.Mesh().meshes, d.partner)
			partnerObj.Mesh().meshes = append(partnerObj.Mesh().meshes, owner)
		}
	}
	return nil
}

// Remove clears every gear's active mesh edges. This is barrel phase 13.
func (mg *MeshGraph) Remove(ctx *Context) {
	for owner := range mg.defs {
		if ownerObj, ok := ctx.Entity(owner).(Rotatable); ok {
			ownerObj.Mesh().meshes = nil
		}
		for _, d := range mg.defs[owner] {
			if partnerObj, ok := ctx.Entity(d.partner).(Rotatable); ok {
				partnerObj.Mesh().meshes = nil
			}
		}
	}
}
