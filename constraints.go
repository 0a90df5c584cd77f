package circlette

// Constraint is a pure predicate over a few labels of a codeword.
type Constraint struct {
	ID     string  // Short tag: "R1".."R4"
	Name   string  // Descriptive name
	Labels []Label // Labels the predicate reads
	Holds  func(Codeword) bool
}

// ConstraintSet is an immutable, ordered set of constraints.
// Build one with NewConstraintSet or use StandardConstraints.
type ConstraintSet struct {
	constraints []Constraint
}

// NewConstraintSet copies cs into a set.
func NewConstraintSet(cs ...Constraint) ConstraintSet {
	out := make([]Constraint, len(cs))
	copy(out, cs)
	return ConstraintSet{constraints: out}
}

// StandardConstraints returns the four ring constraints.
//
//	R1: (G0,G1) ≠ (1,1)              three generations only
//	R2: χ = W                         chirality gate
//	R3: LQ=0 ⇔ colour = (0,0)         leptons colourless, quarks coloured
//	R4: LQ=0 ∧ I3=0 ⇒ χ=0             no right-handed neutrinos
//
// Every predicate spans at most three adjacent ring positions.
func StandardConstraints() ConstraintSet {
	return NewConstraintSet(
		Constraint{
			ID:     "R1",
			Name:   "generation-exclusion",
			Labels: []Label{G0, G1},
			Holds: func(c Codeword) bool {
				return !(c.Has(G0) && c.Has(G1))
			},
		},
		Constraint{
			ID:     "R2",
			Name:   "chirality-equals-weak",
			Labels: []Label{CHI, W},
			Holds: func(c Codeword) bool {
				return c.Bit(CHI) == c.Bit(W)
			},
		},
		Constraint{
			ID:     "R3",
			Name:   "bridge-implies-colour",
			Labels: []Label{C0, C1, LQ},
			Holds: func(c Codeword) bool {
				coloured := c.Has(C0) || c.Has(C1)
				return coloured == c.Has(LQ)
			},
		},
		Constraint{
			ID:     "R4",
			Name:   "bridge-and-isospin-implies-chirality",
			Labels: []Label{LQ, I3, CHI},
			Holds: func(c Codeword) bool {
				return c.Has(LQ) || c.Has(I3) || !c.Has(CHI)
			},
		},
	)
}

// Len returns the number of constraints.
func (s ConstraintSet) Len() int { return len(s.constraints) }

// All returns a copy of the constraints in declaration order.
func (s ConstraintSet) All() []Constraint {
	out := make([]Constraint, len(s.constraints))
	copy(out, s.constraints)
	return out
}

// Lookup finds a constraint by ID.
func (s ConstraintSet) Lookup(id string) (Constraint, bool) {
	for _, c := range s.constraints {
		if c.ID == id {
			return c, true
		}
	}
	return Constraint{}, false
}

// Violations returns the IDs of the constraints c fails.
func (s ConstraintSet) Violations(c Codeword) []string {
	var out []string
	for _, k := range s.constraints {
		if !k.Holds(c) {
			out = append(out, k.ID)
		}
	}
	return out
}

// Evaluate reports whether c satisfies k.
func Evaluate(c Codeword, k Constraint) bool {
	return k.Holds(c)
}
