package circlette

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

// AssertionConfig contains the expected figures for the standard model.
type AssertionConfig struct {
	// Expected valid codewords
	ValidCount int

	// Expected fixed points and two-cycles under the accepted rule
	FixedPoints int
	CyclePairs  int

	// Expected mean Hamming distance state→image, and its tolerance
	AvgBitFlips   float64
	FlipTolerance float64

	// Expected continuum overlap, and its tolerance
	Overlap          float64
	OverlapTolerance float64
}

// DefaultAssertionConfig returns the figures for the standard constraints
// and the documented walk.
func DefaultAssertionConfig() AssertionConfig {
	return AssertionConfig{
		ValidCount:       45,
		FixedPoints:      9,
		CyclePairs:       18,
		AvgBitFlips:      0.80,
		FlipTolerance:    1e-9,
		Overlap:          0.986,
		OverlapTolerance: 0.005,
	}
}

// AssertSpectrumSize verifies the valid set has the expected cardinality and
// that every member satisfies every constraint.
func AssertSpectrumSize(t *testing.T, s *Space, cfg AssertionConfig) {
	t.Helper()

	vs := s.Valid()
	if vs.Len() != cfg.ValidCount {
		t.Errorf("Spectrum size: %d valid codewords (want %d)", vs.Len(), cfg.ValidCount)
	}
	for c := range vs.All() {
		if v := s.Constraints().Violations(c); len(v) > 0 {
			t.Errorf("Valid member %s violates %v", c, v)
		}
	}

	t.Logf("✓ Spectrum: %d of %d codewords valid", vs.Len(), UniverseSize)
}

// AssertUniqueRule verifies the family yields exactly one accepted rule and
// returns it. The test stops when it does not.
func AssertUniqueRule(t *testing.T, f Family, vs ValidSet) Rule {
	t.Helper()

	res, err := NewEngine(f, SearchConfig{Workers: 1}).FindUniqueNonTrivialRule(context.Background(), vs)
	if err != nil {
		var multi *MultipleRulesError
		if errors.As(err, &multi) {
			t.Fatalf("Family %q is not unique: %d rules pass: %v", f.Name, len(multi.Passing), multi.Error())
		}
		t.Fatalf("Rule search failed: %v", err)
	}
	if res.Evaluated != f.Size() {
		t.Errorf("Search evaluated %d of %d candidates", res.Evaluated, f.Size())
	}

	t.Logf("✓ Unique rule: %s (%d candidates in %q)", res.Accepted.Name(), res.FamilySize, res.Family)
	return res.Accepted
}

// AssertInvolution verifies r applied twice is the identity on states.
func AssertInvolution(t *testing.T, r Rule, states []Codeword) {
	t.Helper()

	var failures []string
	for _, c := range states {
		if back := r.Apply(r.Apply(c)); back != c {
			failures = append(failures, fmt.Sprintf("  %s → %s → %s", c, r.Apply(c), back))
		}
	}
	if len(failures) > 0 {
		t.Errorf("%s is not an involution on %d states:\n%v", r.Name(), len(failures), failures)
	}

	t.Logf("✓ Involution: %s² = I on %d states", r.Name(), len(states))
}

// AssertOrbitStatistics classifies vs under r and checks the counts and the
// mean bit-flip cost.
func AssertOrbitStatistics(t *testing.T, r Rule, vs ValidSet, cfg AssertionConfig) OrbitStatistics {
	t.Helper()

	cl, err := NewOrbitClassifier(DefaultOrbitConfig()).Classify(context.Background(), r, vs)
	if err != nil {
		t.Fatalf("Failed to classify orbits: %v", err)
	}
	s := cl.Statistics()

	if s.FixedPoints != cfg.FixedPoints || s.CyclePairs != cfg.CyclePairs {
		t.Errorf("Orbits: %d fixed, %d pairs (want %d fixed, %d pairs)",
			s.FixedPoints, s.CyclePairs, cfg.FixedPoints, cfg.CyclePairs)
	}
	if s.Accounted != vs.Len() {
		t.Errorf("Orbits account for %d of %d states", s.Accounted, vs.Len())
	}
	if d := s.AvgBitFlips - cfg.AvgBitFlips; d > cfg.FlipTolerance || d < -cfg.FlipTolerance {
		t.Errorf("Average bit flips: %.4f (want %.4f ± %g)", s.AvgBitFlips, cfg.AvgBitFlips, cfg.FlipTolerance)
	}

	t.Logf("✓ Orbits: %d fixed + %d×2 cycling = %d", s.FixedPoints, s.CyclePairs, s.Accounted)
	t.Logf("  Average bit flips: %.4f", s.AvgBitFlips)
	return s
}

// AssertOverlap verifies a continuum overlap lies within tolerance.
func AssertOverlap(t *testing.T, overlap float64, cfg AssertionConfig) {
	t.Helper()

	if overlap < 0 || overlap > 1 {
		t.Fatalf("Overlap %.6f outside [0, 1]", overlap)
	}
	if !Agrees(overlap, cfg.Overlap, cfg.OverlapTolerance) {
		t.Errorf("Continuum overlap: %.6f (want %.3f ± %.3f)", overlap, cfg.Overlap, cfg.OverlapTolerance)
	}

	t.Logf("✓ Continuum overlap: %.6f (expected %.3f ± %.3f)", overlap, cfg.Overlap, cfg.OverlapTolerance)
}

// PrintSearch outputs the per-candidate table of a search to the test log.
func PrintSearch(t *testing.T, res SearchResult) {
	t.Helper()

	t.Logf("\n=== Rule Search: %s ===", res.Family)
	t.Logf("  #   Rule      Bij  Triv  Pres  Esc  Pure  Flips")
	t.Logf("  --  --------  ---  ----  ----  ---  ----  -----")
	for _, v := range res.Verdicts {
		mark := " "
		if v.Accepted() {
			mark = "✓"
		}
		t.Logf("%s %-3d %-8s  %-3v  %-4v  %-4v  %3d  %4d  %5.2f",
			mark, v.Index, v.Rule.Name(), yn(v.Bijective), yn(v.Trivial), yn(v.Preserves),
			v.Escapes, v.PureValid, v.AvgFlips)
	}

	t.Logf("\nVerdict: %s (%d passing of %d)", res.Verdict, len(res.Passing), res.Evaluated)
	for i, v := range Rank(res.Verdicts) {
		if i == 3 {
			break
		}
		t.Logf("  rank %d: %s (pure-valid %d, flips %.2f)", i+1, v.Rule.Name(), v.PureValid, v.AvgFlips)
	}
}

func yn(b bool) string {
	if b {
		return "y"
	}
	return "n"
}
