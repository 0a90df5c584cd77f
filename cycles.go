package circlette

import (
	"slices"
	"sort"
)

// IterateRule applies r repeatedly and records the trajectory, start
// excluded.
func IterateRule(r Rule, start Codeword, steps int) []Codeword {
	trajectory := make([]Codeword, 0, steps)
	c := start
	for i := 0; i < steps; i++ {
		c = r.Apply(c)
		trajectory = append(trajectory, c)
	}
	return trajectory
}

// DetectPeriod returns the smallest k ≤ maxPeriod with r^k(start) = start,
// or -1 if the orbit does not close in time (r not bijective, or a longer
// cycle).
func DetectPeriod(r Rule, start Codeword, maxPeriod int) int {
	c := start
	for k := 1; k <= maxPeriod; k++ {
		c = r.Apply(c)
		if c == start {
			return k
		}
	}
	return -1
}

// CycleDecomposition is the partition of the full universe into the cycles
// of a bijective rule.
type CycleDecomposition struct {
	Cycles [][]Codeword // Each cycle starts at its smallest member
}

// Decompose walks every codeword in integer order and records each new
// cycle. r must be bijective; otherwise trajectories that merge are recorded
// as open chains.
func Decompose(r Rule) CycleDecomposition {
	var seen [UniverseSize]bool
	var out CycleDecomposition
	for i := 0; i < UniverseSize; i++ {
		if seen[i] {
			continue
		}
		var cycle []Codeword
		c := Codeword{v: uint8(i)}
		for !seen[c.v] {
			seen[c.v] = true
			cycle = append(cycle, c)
			c = r.Apply(c)
		}
		out.Cycles = append(out.Cycles, cycle)
	}
	return out
}

// Len returns the number of cycles.
func (d CycleDecomposition) Len() int { return len(d.Cycles) }

// Lengths returns the cycle lengths in decreasing order.
func (d CycleDecomposition) Lengths() []int {
	out := make([]int, len(d.Cycles))
	for i, c := range d.Cycles {
		out[i] = len(c)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(out)))
	return out
}

// PureValid returns the cycles whose members are all in vs.
func (d CycleDecomposition) PureValid(vs ValidSet) [][]Codeword {
	var out [][]Codeword
	for _, c := range d.Cycles {
		pure := true
		for _, s := range c {
			if !vs.Contains(s) {
				pure = false
				break
			}
		}
		if pure {
			out = append(out, slices.Clone(c))
		}
	}
	return out
}

// PureValidCount counts the valid codewords lying in pure-valid cycles.
func (d CycleDecomposition) PureValidCount(vs ValidSet) int {
	n := 0
	for _, c := range d.PureValid(vs) {
		n += len(c)
	}
	return n
}

// Rank orders candidate verdicts by valid codewords in pure-valid cycles
// (descending), then by average bit-flip cost (ascending), then by family
// position.
func Rank(vs []CandidateVerdict) []CandidateVerdict {
	out := slices.Clone(vs)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].PureValid != out[j].PureValid {
			return out[i].PureValid > out[j].PureValid
		}
		if out[i].AvgFlips != out[j].AvgFlips {
			return out[i].AvgFlips < out[j].AvgFlips
		}
		return out[i].Index < out[j].Index
	})
	return out
}
