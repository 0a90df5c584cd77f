package circlette

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// TestSearch_SectorBoundaryUnique verifies the sector-boundary family yields
// exactly one rule, LQ→I3.
func TestSearch_SectorBoundaryUnique(t *testing.T) {
	vs := standardSpace().Valid()
	r := AssertUniqueRule(t, SectorBoundaryFamily(), vs)

	assert.Equal(t, ConditionalFlip{Control: LQ, Target: I3}, r)
	AssertInvolution(t, r, vs.Members())
}

func TestSearch_EscapeCounts(t *testing.T) {
	res, err := NewEngine(SectorBoundaryFamily(), DefaultSearchConfig()).
		Search(context.Background(), standardSpace().Valid())
	require.NoError(t, err)
	PrintSearch(t, res)

	escapes := map[string]int{}
	for _, v := range res.Verdicts {
		escapes[v.Rule.Name()] = v.Escapes
	}
	want := map[string]int{
		"G1→C0": 7, "C0→G1": 8,
		"C1→LQ": 24, "LQ→C1": 12,
		"LQ→I3": 0, "I3→LQ": 24,
		"W→G0": 7, "G0→W": 15,
	}
	if diff := cmp.Diff(want, escapes); diff != "" {
		t.Errorf("❌ Escape counts mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 8, res.Evaluated)
}

// TestSearch_ConditionalFlipMultiple verifies the full family reports every
// passing rule instead of picking one.
func TestSearch_ConditionalFlipMultiple(t *testing.T) {
	res, err := NewEngine(ConditionalFlipFamily(), DefaultSearchConfig()).
		FindUniqueNonTrivialRule(context.Background(), standardSpace().Valid())

	require.ErrorIs(t, err, ErrMultipleRulesFound)
	var multi *MultipleRulesError
	require.True(t, errors.As(err, &multi))

	names := make([]string, len(multi.Passing))
	for i, r := range multi.Passing {
		names[i] = r.Name()
	}
	assert.Equal(t, []string{"C0→C1", "C0→I3", "C1→C0", "C1→I3", "LQ→I3"}, names)
	assert.Equal(t, VerdictMultiple, res.Verdict)
	assert.Nil(t, res.Accepted)
	assert.Equal(t, 56, res.Evaluated)

	rep := res.Report()
	assert.Equal(t, "multiple", rep.Verdict)
	assert.Len(t, rep.Passing, 5)
	assert.Empty(t, rep.Accepted)
}

func TestSearch_ParallelMatchesSequential(t *testing.T) {
	defer goleak.VerifyNone(t)

	vs := standardSpace().Valid()
	ctx := context.Background()

	seq, err := NewEngine(ConditionalFlipFamily(), SearchConfig{Workers: 1}).Search(ctx, vs)
	require.NoError(t, err)
	par, err := NewEngine(ConditionalFlipFamily(), SearchConfig{Workers: 8}).Search(ctx, vs)
	require.NoError(t, err)

	assert.Equal(t, seq.Verdict, par.Verdict)
	assert.Equal(t, seq.Passing, par.Passing)
	require.Len(t, par.Verdicts, len(seq.Verdicts))
	for i := range seq.Verdicts {
		assert.Equal(t, i, par.Verdicts[i].Index)
		assert.Equal(t, seq.Verdicts[i].Rule, par.Verdicts[i].Rule)
		assert.Equal(t, seq.Verdicts[i].Escapes, par.Verdicts[i].Escapes)
	}
}

func TestSearch_Cancelled(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, workers := range []int{1, 4} {
		_, err := NewEngine(ConditionalFlipFamily(), SearchConfig{Workers: workers}).
			Search(ctx, standardSpace().Valid())
		assert.ErrorIs(t, err, context.Canceled, "workers=%d", workers)
	}
}

// TestSearch_IdentityAudited verifies an identity candidate is evaluated and
// recorded as trivial but never counted toward uniqueness.
func TestSearch_IdentityAudited(t *testing.T) {
	f := NewFamily("audited", "", IdentityRule, ConditionalFlip{Control: LQ, Target: I3})

	res, err := NewEngine(f, DefaultSearchConfig()).FindUniqueNonTrivialRule(context.Background(), standardSpace().Valid())
	require.NoError(t, err)
	assert.Equal(t, 2, res.Evaluated)
	assert.True(t, res.Verdicts[0].Trivial)
	assert.True(t, res.Verdicts[0].Preserves)
	assert.False(t, res.Verdicts[0].Accepted())
	assert.Equal(t, "LQ→I3", res.Accepted.Name())

	for _, f := range []Family{SectorBoundaryFamily(), ConditionalFlipFamily()} {
		for r := range f.Candidates() {
			assert.False(t, IsTrivial(r), "%s in %s", r.Name(), f.Name)
		}
	}
	t.Logf("✓ Identity evaluated as trivial, excluded from uniqueness")
}

// cancellingRule cancels the search context the first time it is applied.
type cancellingRule struct{ cancel context.CancelFunc }

func (r cancellingRule) Apply(c Codeword) Codeword { r.cancel(); return c.Flip(W) }
func (r cancellingRule) Name() string { return "cancel" }

// TestSearch_PullsCandidatesLazily verifies the sequential search draws
// candidates one at a time and stops drawing once the context ends.
func TestSearch_PullsCandidatesLazily(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pulled := 0
	f := NewGeneratedFamily("counted", "", 56, func(yield func(Rule) bool) {
		if pulled++; !yield(cancellingRule{cancel: cancel}) {
			return
		}
		for r := range ConditionalFlipFamily().Candidates() {
			if pulled == 56 {
				return
			}
			if pulled++; !yield(r) {
				return
			}
		}
	})

	_, err := NewEngine(f, DefaultSearchConfig()).Search(ctx, standardSpace().Valid())
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 2, pulled)

	t.Logf("✓ Search stopped after pulling %d of %d candidates", pulled, f.Size())
}

func TestSearch_NoUniqueRule(t *testing.T) {
	vs := standardSpace().Valid()
	ctx := context.Background()

	tests := []struct {
		name   string
		family Family
	}{
		{"empty", NewFamily("empty", "")},
		{"identity only", NewFamily("identity", "", IdentityRule)},
		{"escaping flips", NewFamily("escaping", "",
			ConditionalFlip{Control: G1, Target: C0},
			ConditionalFlip{Control: I3, Target: LQ})},
		{"non-bijective", NewFamily("constant", "", constantRule{})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := NewEngine(tt.family, DefaultSearchConfig()).FindUniqueNonTrivialRule(ctx, vs)
			assert.ErrorIs(t, err, ErrNoUniqueRule)
			assert.Equal(t, VerdictNone, res.Verdict)
			assert.Equal(t, tt.family.Size(), res.Evaluated)
		})
	}
}

func TestSearch_EmptySpectrum(t *testing.T) {
	_, err := NewEngine(SectorBoundaryFamily(), DefaultSearchConfig()).
		FindUniqueNonTrivialRule(context.Background(), NewValidSet())
	assert.ErrorIs(t, err, ErrEmptySpectrum)
}

// TestSearch_LatePassingCandidate verifies the search never stops at the
// first failure: the only passing rule sits last in the family.
func TestSearch_LatePassingCandidate(t *testing.T) {
	f, err := PairFamily("late",
		Pair{Control: G0, Target: W},
		Pair{Control: W, Target: G0},
		Pair{Control: C1, Target: LQ},
		Pair{Control: LQ, Target: I3},
	)
	require.NoError(t, err)

	r := AssertUniqueRule(t, f, standardSpace().Valid())
	assert.Equal(t, "LQ→I3", r.Name())
}

func TestSearchReport_Accepted(t *testing.T) {
	res, err := NewEngine(SectorBoundaryFamily(), DefaultSearchConfig()).
		FindUniqueNonTrivialRule(context.Background(), standardSpace().Valid())
	require.NoError(t, err)

	rep := res.Report()
	assert.Equal(t, "unique", rep.Verdict)
	assert.Equal(t, "LQ→I3", rep.Accepted)
	assert.Equal(t, "LQ", rep.Control)
	assert.Equal(t, "I3", rep.Target)
	assert.Equal(t, "I3(t+1) = I3(t) ⊕ LQ(t)", rep.Equation)
	assert.Equal(t, 8, rep.Records()["family_size"])
}

// TestDecompose_AcceptedRule checks the full-universe cycle structure of
// LQ→I3: 128 codewords with LQ = 1 pair up, the other 128 are fixed.
func TestDecompose_AcceptedRule(t *testing.T) {
	vs := standardSpace().Valid()
	d := Decompose(ConditionalFlip{Control: LQ, Target: I3})

	assert.Equal(t, 192, d.Len())
	lengths := d.Lengths()
	assert.Equal(t, 2, lengths[0])
	assert.Equal(t, 1, lengths[len(lengths)-1])

	pure := d.PureValid(vs)
	assert.Len(t, pure, 27)
	assert.Equal(t, 45, d.PureValidCount(vs))
}

func TestRank_ConditionalFlipFamily(t *testing.T) {
	res, err := NewEngine(ConditionalFlipFamily(), DefaultSearchConfig()).
		Search(context.Background(), standardSpace().Valid())
	require.NoError(t, err)

	ranked := Rank(res.Verdicts)
	top := make([]string, 5)
	for i := range top {
		top[i] = ranked[i].Rule.Name()
		assert.Equal(t, 45, ranked[i].PureValid)
		assert.True(t, ranked[i].Accepted())
	}
	// Colour flips cost fewer bit flips than the bridge rule.
	assert.Equal(t, []string{"C0→C1", "C0→I3", "C1→C0", "C1→I3", "LQ→I3"}, top)
	assert.InDelta(t, 0.8, ranked[4].AvgFlips, 1e-9)
	assert.Less(t, ranked[5].PureValid, 45)
}
