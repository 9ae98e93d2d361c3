package engine

import "errors"

// Assembler errors (fatal, abort at build time).
var (
	ErrDuplicateLabel   = errors.New("duplicate label")
	ErrRedundantLabel   = errors.New("redundant label: two labels at the same vertical")
	ErrUndefinedLabel   = errors.New("undefined label")
	ErrJumpTooFar       = errors.New("jump distance exceeds 7")
	ErrZeroJump         = errors.New("jump distance of 0 is not allowed")
	ErrDuplicateStudnum = errors.New("stud already present in vertical")
)

// Runtime invariant errors (fatal, abort the simulation).
var (
	ErrNotDriven       = errors.New("component on the advance list is not driven")
	ErrAlreadyDriven   = errors.New("component is already driven")
	ErrUnknownEntity   = errors.New("unknown entity handle")
	ErrMeshTypeMismatch = errors.New("mesh partner is not a rotatable component")
	ErrMultiStepMove   = errors.New("wheel asked to move more than one position")
	ErrNoNextPosition  = errors.New("wheel has no queued next position")
	ErrMeshConflict    = errors.New("mechanical over-constraint: component already driven by a different gear")
	ErrOverflow        = errors.New("arithmetic overflow: result has too many digits")
	ErrTimeLimit       = errors.New("simulation time limit reached")
	ErrBadPhase        = errors.New("barrel phase exceeds num_phases")
)
