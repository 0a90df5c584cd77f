package circlette

import "strconv"

// SpectrumReport summarises the enumeration and classification of the
// universe.
type SpectrumReport struct {
	Total             int      `json:"total" yaml:"total"`
	Valid             int      `json:"valid" yaml:"valid"`
	ValidWithFlag     int      `json:"valid_with_antimatter" yaml:"valid_with_antimatter"`
	Histogram         []int    `json:"violation_histogram" yaml:"violation_histogram"`
	SterileCandidates []string `json:"sterile_candidates" yaml:"sterile_candidates"`
	ReversalUnion     int      `json:"reversal_union" yaml:"reversal_union"`
}

// Records flattens the report into key-value pairs.
func (r SpectrumReport) Records() map[string]any {
	m := map[string]any{
		"total":                 r.Total,
		"valid":                 r.Valid,
		"valid_with_antimatter": r.ValidWithFlag,
		"sterile_candidates":    len(r.SterileCandidates),
		"reversal_union":        r.ReversalUnion,
	}
	for i, n := range r.Histogram {
		m["violations_"+strconv.Itoa(i)] = n
	}
	return m
}

// SearchReport summarises a rule search. The verdict only holds relative to
// the named family.
type SearchReport struct {
	Family     string   `json:"family" yaml:"family"`
	FamilySize int      `json:"family_size" yaml:"family_size"`
	Evaluated  int      `json:"evaluated" yaml:"evaluated"`
	Verdict    string   `json:"verdict" yaml:"verdict"`
	Accepted   string   `json:"accepted,omitempty" yaml:"accepted,omitempty"`
	Control    string   `json:"control,omitempty" yaml:"control,omitempty"`
	Target     string   `json:"target,omitempty" yaml:"target,omitempty"`
	Equation   string   `json:"equation,omitempty" yaml:"equation,omitempty"`
	Passing    []string `json:"passing" yaml:"passing"`
}

// Records flattens the report into key-value pairs.
func (r SearchReport) Records() map[string]any {
	return map[string]any{
		"family":      r.Family,
		"family_size": r.FamilySize,
		"evaluated":   r.Evaluated,
		"verdict":     r.Verdict,
		"accepted":    r.Accepted,
		"passing":     len(r.Passing),
	}
}

// OrbitReport summarises an orbit classification.
type OrbitReport struct {
	Rule         string  `json:"rule" yaml:"rule"`
	FixedPoints  int     `json:"fixed_points" yaml:"fixed_points"`
	CyclePairs   int     `json:"cycle_pairs" yaml:"cycle_pairs"`
	CycleMembers int     `json:"cycle_members" yaml:"cycle_members"`
	Accounted    int     `json:"accounted" yaml:"accounted"`
	AvgBitFlips  float64 `json:"avg_bit_flips" yaml:"avg_bit_flips"`
}

// Records flattens the report into key-value pairs.
func (r OrbitReport) Records() map[string]any {
	return map[string]any{
		"rule":          r.Rule,
		"fixed_points":  r.FixedPoints,
		"cycle_pairs":   r.CyclePairs,
		"cycle_members": r.CycleMembers,
		"accounted":     r.Accounted,
		"avg_bit_flips": r.AvgBitFlips,
	}
}

// WalkReport summarises a walk simulation and its continuum comparison.
type WalkReport struct {
	Rule       string  `json:"rule" yaml:"rule"`
	Base       string  `json:"base" yaml:"base"`
	Sites      int     `json:"sites" yaml:"sites"`
	Steps      int     `json:"steps" yaml:"steps"`
	Theta      float64 `json:"theta" yaml:"theta"`
	Reference  string  `json:"reference" yaml:"reference"`
	Overlap    float64 `json:"overlap" yaml:"overlap"`
	Expected   float64 `json:"expected" yaml:"expected"`
	Tolerance  float64 `json:"tolerance" yaml:"tolerance"`
	Agrees     bool    `json:"agrees" yaml:"agrees"`
	FinalNorm  float64 `json:"final_norm" yaml:"final_norm"`
	RightPeak  int     `json:"right_peak" yaml:"right_peak"`
	LeftPeak   int     `json:"left_peak" yaml:"left_peak"`
	Separation int     `json:"separation" yaml:"separation"`
}

// Records flattens the report into key-value pairs.
func (r WalkReport) Records() map[string]any {
	return map[string]any{
		"rule":       r.Rule,
		"base":       r.Base,
		"sites":      r.Sites,
		"steps":      r.Steps,
		"theta":      r.Theta,
		"reference":  r.Reference,
		"overlap":    r.Overlap,
		"expected":   r.Expected,
		"tolerance":  r.Tolerance,
		"agrees":     r.Agrees,
		"final_norm": r.FinalNorm,
		"separation": r.Separation,
	}
}

// Report bundles every component's report from one analysis run.
type Report struct {
	Spectrum SpectrumReport `json:"spectrum" yaml:"spectrum"`
	Search   SearchReport   `json:"search" yaml:"search"`
	Orbits   *OrbitReport   `json:"orbits,omitempty" yaml:"orbits,omitempty"`
	Walk     *WalkReport    `json:"walk,omitempty" yaml:"walk,omitempty"`
}
