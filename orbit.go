package circlette

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// OrbitKind labels a valid codeword under the accepted rule.
type OrbitKind string

const (
	FixedPoint  OrbitKind = "fixed-point"
	CycleMember OrbitKind = "cycle-member"
)

// OrbitConfig controls classification.
type OrbitConfig struct {
	Workers int
	Logger  *slog.Logger
}

// DefaultOrbitConfig classifies sequentially.
func DefaultOrbitConfig() OrbitConfig {
	return OrbitConfig{Workers: 1}
}

// OrbitClassifier partitions a valid set into fixed points and two-cycles.
type OrbitClassifier struct {
	cfg    OrbitConfig
	logger *slog.Logger
}

// NewOrbitClassifier returns a classifier.
func NewOrbitClassifier(cfg OrbitConfig) *OrbitClassifier {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &OrbitClassifier{cfg: cfg, logger: logger}
}

type orbitEntry struct {
	state Codeword
	image Codeword
	kind  OrbitKind
	flips int
}

// Classification maps each valid codeword to its orbit kind.
type Classification struct {
	Rule   string
	Kinds  map[Codeword]OrbitKind
	Fixed  []Codeword    // Integer order
	Pairs  [][2]Codeword // Smaller member first, ordered by first member
	flips  int
	states int
}

// Classify applies r once to every member of vs. A member that moves must
// land in vs and return after a second application; anything else is a
// *ClassificationInconsistencyError and halts classification.
func (oc *OrbitClassifier) Classify(ctx context.Context, r Rule, vs ValidSet) (Classification, error) {
	if vs.Len() == 0 {
		return Classification{}, ErrEmptySpectrum
	}
	members := vs.Members()
	entries := make([]orbitEntry, len(members))

	classify := func(i int) error {
		c := members[i]
		img := r.Apply(c)
		if img == c {
			entries[i] = orbitEntry{state: c, image: img, kind: FixedPoint}
			return nil
		}
		second := r.Apply(img)
		if !vs.Contains(img) {
			return &ClassificationInconsistencyError{
				Rule: r.Name(), Reason: "image leaves the valid set",
				State: c, Image: img, Second: second,
			}
		}
		if second != c {
			return &ClassificationInconsistencyError{
				Rule: r.Name(), Reason: "second application does not return",
				State: c, Image: img, Second: second,
			}
		}
		entries[i] = orbitEntry{state: c, image: img, kind: CycleMember, flips: c.Hamming(img)}
		return nil
	}

	if oc.cfg.Workers <= 1 {
		for i := range members {
			if err := classify(i); err != nil {
				return Classification{}, fmt.Errorf("classify %s: %w", r.Name(), err)
			}
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(oc.cfg.Workers)
		for i := range members {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				return classify(i)
			})
		}
		if err := g.Wait(); err != nil {
			return Classification{}, fmt.Errorf("classify %s: %w", r.Name(), err)
		}
	}

	cl := Classification{
		Rule:   r.Name(),
		Kinds:  make(map[Codeword]OrbitKind, len(entries)),
		states: len(entries),
	}
	for _, e := range entries {
		cl.Kinds[e.state] = e.kind
		cl.flips += e.flips
		switch e.kind {
		case FixedPoint:
			cl.Fixed = append(cl.Fixed, e.state)
		case CycleMember:
			if e.state.v < e.image.v {
				cl.Pairs = append(cl.Pairs, [2]Codeword{e.state, e.image})
			}
		}
	}

	stats := cl.Statistics()
	oc.logger.Info("orbits classified",
		"rule", cl.Rule,
		"fixed_points", stats.FixedPoints,
		"cycle_pairs", stats.CyclePairs,
		"avg_bit_flips", stats.AvgBitFlips)

	return cl, nil
}

// OrbitStatistics aggregates a classification.
type OrbitStatistics struct {
	FixedPoints  int
	CyclePairs   int
	CycleMembers int
	Accounted    int
	AvgBitFlips  float64
}

// Statistics counts fixed points and two-cycles and averages the Hamming
// distance between each state and its image.
func (cl Classification) Statistics() OrbitStatistics {
	s := OrbitStatistics{
		FixedPoints:  len(cl.Fixed),
		CyclePairs:   len(cl.Pairs),
		CycleMembers: 2 * len(cl.Pairs),
	}
	s.Accounted = s.FixedPoints + s.CycleMembers
	if cl.states > 0 {
		s.AvgBitFlips = float64(cl.flips) / float64(cl.states)
	}
	return s
}

// Report converts the classification into its plain-data form.
func (cl Classification) Report() OrbitReport {
	s := cl.Statistics()
	return OrbitReport{
		Rule:         cl.Rule,
		FixedPoints:  s.FixedPoints,
		CyclePairs:   s.CyclePairs,
		CycleMembers: s.CycleMembers,
		Accounted:    s.Accounted,
		AvgBitFlips:  s.AvgBitFlips,
	}
}
