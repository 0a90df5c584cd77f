package circlette

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// SearchConfig controls rule search execution.
type SearchConfig struct {
	Workers int          // Parallel candidate evaluations (≤1 = sequential)
	Logger  *slog.Logger // nil = slog.Default()
}

// DefaultSearchConfig evaluates candidates sequentially.
func DefaultSearchConfig() SearchConfig {
	return SearchConfig{Workers: 1}
}

// Verdict is the uniqueness outcome of a search.
type Verdict string

const (
	VerdictUnique   Verdict = "unique"
	VerdictNone     Verdict = "none"
	VerdictMultiple Verdict = "multiple"
)

// CandidateVerdict records how one candidate fared.
type CandidateVerdict struct {
	Index     int     // Position in the family
	Rule      Rule    // The candidate
	Bijective bool    // Permutes all 256 codewords
	Trivial   bool    // Fixes every codeword
	Preserves bool    // Maps the valid set bijectively onto itself
	Escapes   int     // Valid codewords mapped outside the valid set
	PureValid int     // Valid codewords lying in pure-valid cycles
	AvgFlips  float64 // Mean Hamming distance state→image over the valid set
}

// Accepted reports whether the candidate counts toward uniqueness.
func (v CandidateVerdict) Accepted() bool {
	return v.Bijective && !v.Trivial && v.Preserves
}

// SearchResult is the full accounting of a search. Verdicts are in family
// order regardless of evaluation order.
type SearchResult struct {
	Family     string
	FamilySize int
	Evaluated  int
	Verdicts   []CandidateVerdict
	Passing    []Rule
	Verdict    Verdict
	Accepted   Rule // Set only when Verdict == VerdictUnique
}

// Engine searches a declared family for spectrum-preserving rules.
type Engine struct {
	family Family
	cfg    SearchConfig
	logger *slog.Logger
}

// NewEngine binds a family and configuration.
func NewEngine(f Family, cfg SearchConfig) *Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{family: f, cfg: cfg, logger: logger}
}

// Family returns the declared family.
func (e *Engine) Family() Family { return e.family }

// PreservesSpectrum reports whether r maps vs bijectively onto itself: every
// image is a member and no two members share an image.
func PreservesSpectrum(r Rule, vs ValidSet) bool {
	var hit [UniverseSize]bool
	for c := range vs.All() {
		img := r.Apply(c)
		if !vs.Contains(img) || hit[img.v] {
			return false
		}
		hit[img.v] = true
	}
	return true
}

// EvaluateCandidate scores a single candidate against vs.
func EvaluateCandidate(r Rule, vs ValidSet) CandidateVerdict {
	v := CandidateVerdict{
		Rule:      r,
		Bijective: IsBijective(r),
		Trivial:   IsTrivial(r),
		Preserves: PreservesSpectrum(r, vs),
	}
	flips := 0
	for c := range vs.All() {
		img := r.Apply(c)
		if !vs.Contains(img) {
			v.Escapes++
		}
		flips += c.Hamming(img)
	}
	if vs.Len() > 0 {
		v.AvgFlips = float64(flips) / float64(vs.Len())
	}
	if v.Bijective {
		v.PureValid = Decompose(r).PureValidCount(vs)
	}
	return v
}

// Search evaluates every candidate in the family. It never stops early: a
// passing candidate late in the family must still be found and reported.
func (e *Engine) Search(ctx context.Context, vs ValidSet) (SearchResult, error) {
	verdicts := make([]CandidateVerdict, 0, e.family.Size())
	if e.cfg.Workers <= 1 {
		for r := range e.family.Candidates() {
			if err := ctx.Err(); err != nil {
				return SearchResult{}, fmt.Errorf("search %q: %w", e.family.Name, err)
			}
			v := EvaluateCandidate(r, vs)
			v.Index = len(verdicts)
			verdicts = append(verdicts, v)
		}
	} else {
		var rules []Rule
		for r := range e.family.Candidates() {
			rules = append(rules, r)
		}
		verdicts = make([]CandidateVerdict, len(rules))

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(e.cfg.Workers)
		for i, r := range rules {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				v := EvaluateCandidate(r, vs)
				v.Index = i
				verdicts[i] = v // each worker owns its slot
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return SearchResult{}, fmt.Errorf("search %q: %w", e.family.Name, err)
		}
	}

	res := SearchResult{
		Family:     e.family.Name,
		FamilySize: e.family.Size(),
		Evaluated:  len(verdicts),
		Verdicts:   verdicts,
	}
	for _, v := range verdicts {
		e.logger.Debug("candidate evaluated",
			"family", e.family.Name,
			"rule", v.Rule.Name(),
			"bijective", v.Bijective,
			"trivial", v.Trivial,
			"preserves", v.Preserves,
			"escapes", v.Escapes,
			"avg_flips", v.AvgFlips)
		if v.Accepted() {
			res.Passing = append(res.Passing, v.Rule)
		}
	}

	switch len(res.Passing) {
	case 0:
		res.Verdict = VerdictNone
	case 1:
		res.Verdict = VerdictUnique
		res.Accepted = res.Passing[0]
	default:
		res.Verdict = VerdictMultiple
	}

	e.logger.Info("rule search complete",
		"family", res.Family,
		"family_size", res.FamilySize,
		"evaluated", res.Evaluated,
		"passing", len(res.Passing),
		"verdict", string(res.Verdict))

	return res, nil
}

// FindUniqueNonTrivialRule searches the family and returns the single
// accepted rule. The result is always populated so callers can report it;
// the error is ErrNoUniqueRule or a *MultipleRulesError when the uniqueness
// claim fails.
func (e *Engine) FindUniqueNonTrivialRule(ctx context.Context, vs ValidSet) (SearchResult, error) {
	if vs.Len() == 0 {
		return SearchResult{}, ErrEmptySpectrum
	}
	res, err := e.Search(ctx, vs)
	if err != nil {
		return res, err
	}
	switch res.Verdict {
	case VerdictNone:
		return res, fmt.Errorf("family %q (%d candidates): %w", res.Family, res.FamilySize, ErrNoUniqueRule)
	case VerdictMultiple:
		return res, &MultipleRulesError{Family: res.Family, Passing: res.Passing}
	}
	return res, nil
}

// Report converts a result into its plain-data form.
func (r SearchResult) Report() SearchReport {
	rep := SearchReport{
		Family:     r.Family,
		FamilySize: r.FamilySize,
		Evaluated:  r.Evaluated,
		Verdict:    string(r.Verdict),
	}
	for _, p := range r.Passing {
		rep.Passing = append(rep.Passing, p.Name())
	}
	if r.Accepted != nil {
		rep.Accepted = r.Accepted.Name()
		if cf, ok := r.Accepted.(ConditionalFlip); ok {
			rep.Control = cf.Control.String()
			rep.Target = cf.Target.String()
			rep.Equation = cf.Describe()
		}
	}
	return rep
}
