package circlette

import (
	"iter"
	"slices"
)

// Space enumerates and classifies codewords against a constraint set.
type Space struct {
	constraints ConstraintSet
}

// NewSpace binds a constraint set.
func NewSpace(cs ConstraintSet) *Space {
	return &Space{constraints: cs}
}

// Constraints returns the bound set.
func (s *Space) Constraints() ConstraintSet { return s.constraints }

// Enumerate yields all 256 codewords in integer order. Each call starts over.
func (s *Space) Enumerate() iter.Seq[Codeword] {
	return func(yield func(Codeword) bool) {
		for i := 0; i < UniverseSize; i++ {
			if !yield(Codeword{v: uint8(i)}) {
				return
			}
		}
	}
}

// Evaluate reports whether c satisfies k.
func (s *Space) Evaluate(c Codeword, k Constraint) bool {
	return Evaluate(c, k)
}

// Classify returns the number of violated constraints.
func (s *Space) Classify(c Codeword) int {
	n := 0
	for _, k := range s.constraints.constraints {
		if !k.Holds(c) {
			n++
		}
	}
	return n
}

// IsValid reports whether c violates nothing.
func (s *Space) IsValid(c Codeword) bool {
	return s.Classify(c) == 0
}

// Valid computes the valid spectrum by full enumeration.
func (s *Space) Valid() ValidSet {
	var members []Codeword
	for c := range s.Enumerate() {
		if s.IsValid(c) {
			members = append(members, c)
		}
	}
	return newValidSet(members)
}

// Histogram counts codewords by number of violations. Index i holds the
// count with exactly i violations.
func (s *Space) Histogram() []int {
	h := make([]int, s.constraints.Len()+1)
	for c := range s.Enumerate() {
		h[s.Classify(c)]++
	}
	return h
}

// ExtendedValidCount enumerates the 512-state universe formed by appending
// an independent matter/antimatter flag and counts the valid states.
// The flag is unconstrained, so the result is twice the valid count.
func (s *Space) ExtendedValidCount() int {
	n := 0
	for i := 0; i < 2*UniverseSize; i++ {
		// Lowest bit is the flag.
		if s.IsValid(Codeword{v: uint8(i >> 1)}) {
			n++
		}
	}
	return n
}

// SterileCandidates returns codewords that fail exactly the constraint with
// the given ID and nothing else.
func (s *Space) SterileCandidates(id string) []Codeword {
	var out []Codeword
	for c := range s.Enumerate() {
		v := s.constraints.Violations(c)
		if len(v) == 1 && v[0] == id {
			out = append(out, c)
		}
	}
	return out
}

// ReversalUnion returns the valid set together with the ring-reversed image
// of every valid codeword, deduplicated and sorted.
func (s *Space) ReversalUnion() []Codeword {
	seen := make(map[Codeword]struct{})
	for _, c := range s.Valid().Members() {
		seen[c] = struct{}{}
		seen[c.Reverse()] = struct{}{}
	}
	out := make([]Codeword, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sortCodewords(out)
	return out
}

// Report summarises the partition of the universe.
func (s *Space) Report() SpectrumReport {
	valid := s.Valid()
	sterile := s.SterileCandidates("R4")
	st := make([]string, len(sterile))
	for i, c := range sterile {
		st[i] = c.String()
	}
	return SpectrumReport{
		Total:             UniverseSize,
		Valid:             valid.Len(),
		ValidWithFlag:     s.ExtendedValidCount(),
		Histogram:         s.Histogram(),
		SterileCandidates: st,
		ReversalUnion:     len(s.ReversalUnion()),
	}
}

// ValidSet is an immutable set of codewords.
type ValidSet struct {
	members []Codeword
	index   [UniverseSize]bool
}

func newValidSet(members []Codeword) ValidSet {
	vs := ValidSet{members: slices.Clone(members)}
	sortCodewords(vs.members)
	for _, c := range vs.members {
		vs.index[c.v] = true
	}
	return vs
}

// NewValidSet builds a set from explicit members. Duplicates are dropped.
func NewValidSet(members ...Codeword) ValidSet {
	var uniq []Codeword
	var seen [UniverseSize]bool
	for _, c := range members {
		if !seen[c.v] {
			seen[c.v] = true
			uniq = append(uniq, c)
		}
	}
	return newValidSet(uniq)
}

// Len returns the cardinality.
func (v ValidSet) Len() int { return len(v.members) }

// Contains reports membership.
func (v ValidSet) Contains(c Codeword) bool { return v.index[c.v] }

// Members returns a sorted copy of the members.
func (v ValidSet) Members() []Codeword { return slices.Clone(v.members) }

// All yields the members in integer order.
func (v ValidSet) All() iter.Seq[Codeword] {
	return func(yield func(Codeword) bool) {
		for _, c := range v.members {
			if !yield(c) {
				return
			}
		}
	}
}

func sortCodewords(cs []Codeword) {
	slices.SortFunc(cs, func(a, b Codeword) int { return int(a.v) - int(b.v) })
}
