package circlette

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// Analysis runs the four components in order: enumerate the spectrum,
// search the declared family, classify orbits under the accepted rule, and
// compare the rule-driven walk with its continuum reference.
type Analysis struct {
	cfg    Config
	space  *Space
	logger *slog.Logger
}

// NewAnalysis prepares a run over the standard constraints.
func NewAnalysis(cfg Config, logger *slog.Logger) *Analysis {
	return NewAnalysisWithConstraints(cfg, StandardConstraints(), logger)
}

// NewAnalysisWithConstraints prepares a run over an explicit constraint set.
func NewAnalysisWithConstraints(cfg Config, cs ConstraintSet, logger *slog.Logger) *Analysis {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analysis{cfg: cfg, space: NewSpace(cs), logger: logger}
}

// Space returns the codeword space.
func (a *Analysis) Space() *Space { return a.space }

// Spectrum enumerates the universe.
func (a *Analysis) Spectrum() SpectrumReport {
	rep := a.space.Report()
	a.logger.Info("spectrum enumerated",
		"total", rep.Total,
		"valid", rep.Valid,
		"valid_with_antimatter", rep.ValidWithFlag)
	return rep
}

// Search runs the rule search over the configured family.
func (a *Analysis) Search(ctx context.Context) (SearchResult, error) {
	fam, err := a.cfg.Family()
	if err != nil {
		return SearchResult{}, err
	}
	return NewEngine(fam, a.cfg.SearchConfig(a.logger)).FindUniqueNonTrivialRule(ctx, a.space.Valid())
}

// Orbits classifies the valid set under r.
func (a *Analysis) Orbits(ctx context.Context, r Rule) (Classification, error) {
	return NewOrbitClassifier(a.cfg.OrbitConfig(a.logger)).Classify(ctx, r, a.space.Valid())
}

// Walk simulates the configured walk under r and scores it against the
// configured reference.
func (a *Analysis) Walk(r Rule) (WalkReport, *WalkState, error) {
	wc, err := a.cfg.WalkConfig(a.logger)
	if err != nil {
		return WalkReport{}, nil, err
	}
	ref, err := a.cfg.Reference()
	if err != nil {
		return WalkReport{}, nil, err
	}
	w := a.cfg.Walk
	initial, err := NewGaussianPacket(w.Sites, w.Sites/2, w.Sigma0)
	if err != nil {
		return WalkReport{}, nil, err
	}
	final, err := NewSimulator(wc).Simulate(r, initial, w.Steps)
	if err != nil {
		return WalkReport{}, nil, err
	}
	overlap := ContinuumOverlap(final, ref)
	peaks := final.Peaks()
	rep := WalkReport{
		Rule:       r.Name(),
		Base:       ParticleName(wc.Base),
		Sites:      w.Sites,
		Steps:      w.Steps,
		Theta:      w.Theta,
		Reference:  ref.Name(),
		Overlap:    overlap,
		Expected:   w.Expected,
		Tolerance:  w.OverlapTolerance,
		Agrees:     Agrees(overlap, w.Expected, w.OverlapTolerance),
		FinalNorm:  final.Norm(),
		RightPeak:  peaks.Right,
		LeftPeak:   peaks.Left,
		Separation: peaks.Separation,
	}
	a.logger.Info("walk compared with continuum",
		"reference", rep.Reference,
		"overlap", rep.Overlap,
		"expected", rep.Expected,
		"agrees", rep.Agrees)
	return rep, final, nil
}

// Run executes every stage. When the search does not yield a unique rule
// the report carries the search verdict and the error is returned; the
// orbit and walk stages need an accepted rule and are skipped.
func (a *Analysis) Run(ctx context.Context, withWalk bool) (Report, error) {
	rep := Report{Spectrum: a.Spectrum()}

	res, err := a.Search(ctx)
	if res.Family != "" {
		rep.Search = res.Report()
	}
	if err != nil {
		return rep, fmt.Errorf("search: %w", err)
	}

	cl, err := a.Orbits(ctx, res.Accepted)
	if err != nil {
		return rep, fmt.Errorf("orbits: %w", err)
	}
	orep := cl.Report()
	rep.Orbits = &orep

	if withWalk {
		wrep, _, err := a.Walk(res.Accepted)
		if err != nil {
			var inst *SimulationInstabilityError
			if errors.As(err, &inst) {
				a.logger.Error("walk unstable", "step", inst.Step, "norm", inst.Norm)
			}
			return rep, fmt.Errorf("walk: %w", err)
		}
		rep.Walk = &wrep
	}
	return rep, nil
}
