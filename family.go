package circlette

import (
	"fmt"
	"iter"
)

// Family is a declared, finite set of candidate rules. The uniqueness of a
// search result only holds relative to the family it was computed over, so
// every report carries the family's name and size.
type Family struct {
	Name        string
	Description string
	size        int
	candidates  iter.Seq[Rule]
}

// NewFamily declares a family from an explicit rule list.
func NewFamily(name, description string, rules ...Rule) Family {
	rs := make([]Rule, len(rules))
	copy(rs, rules)
	return NewGeneratedFamily(name, description, len(rs), func(yield func(Rule) bool) {
		for _, r := range rs {
			if !yield(r) {
				return
			}
		}
	})
}

// NewGeneratedFamily declares a family whose rules are produced on demand.
// gen must be restartable and yield exactly size rules.
func NewGeneratedFamily(name, description string, size int, gen iter.Seq[Rule]) Family {
	return Family{Name: name, Description: description, size: size, candidates: gen}
}

// Candidates yields the family's rules in declaration order. Each call starts
// over.
func (f Family) Candidates() iter.Seq[Rule] {
	if f.candidates == nil {
		return func(func(Rule) bool) {}
	}
	return f.candidates
}

// Size returns the number of declared candidates.
func (f Family) Size() int { return f.size }

// SectorBoundary is a pair of ring-adjacent labels from different sectors.
type SectorBoundary struct {
	A, B Label
	Name string
}

// SectorBoundaries lists the four boundaries between the generation, colour,
// bridge and electroweak sectors.
func SectorBoundaries() []SectorBoundary {
	return []SectorBoundary{
		{A: G1, B: C0, Name: "generation|colour"},
		{A: C1, B: LQ, Name: "colour|bridge"},
		{A: LQ, B: I3, Name: "bridge|electroweak"},
		{A: W, B: G0, Name: "electroweak|generation"},
	}
}

// SectorBoundaryFamily couples each sector boundary in both directions:
// eight conditional flips.
func SectorBoundaryFamily() Family {
	var rules []Rule
	for _, b := range SectorBoundaries() {
		rules = append(rules,
			ConditionalFlip{Control: b.A, Target: b.B},
			ConditionalFlip{Control: b.B, Target: b.A},
		)
	}
	return NewFamily("sector-boundary",
		"single conditional flips across the four sector boundaries, both directions", rules...)
}

// ConditionalFlipFamily admits every ordered (control, target) pair with
// control ≠ target: 56 conditional flips.
func ConditionalFlipFamily() Family {
	n := len(Labels())
	return NewGeneratedFamily("conditional-flip",
		"every single-control, single-target conditional flip on the ring", n*(n-1),
		func(yield func(Rule) bool) {
			for _, c := range Labels() {
				for _, t := range Labels() {
					if c != t && !yield(ConditionalFlip{Control: c, Target: t}) {
						return
					}
				}
			}
		})
}

// Pair is a (control, target) declaration.
type Pair struct {
	Control Label
	Target  Label
}

// PairFamily declares conditional flips from explicit pairs.
func PairFamily(name string, pairs ...Pair) (Family, error) {
	rules := make([]Rule, 0, len(pairs))
	for _, p := range pairs {
		if !p.Control.Valid() || !p.Target.Valid() {
			return Family{}, fmt.Errorf("family %q: pair %v: label out of range", name, p)
		}
		if p.Control == p.Target {
			return Family{}, fmt.Errorf("family %q: control and target are both %s", name, p.Control)
		}
		rules = append(rules, ConditionalFlip{Control: p.Control, Target: p.Target})
	}
	return NewFamily(name, "declared conditional flips", rules...), nil
}

// FamilyByName resolves the built-in families.
func FamilyByName(name string) (Family, error) {
	switch name {
	case "", "sector-boundary":
		return SectorBoundaryFamily(), nil
	case "conditional-flip":
		return ConditionalFlipFamily(), nil
	default:
		return Family{}, fmt.Errorf("unknown rule family %q", name)
	}
}
