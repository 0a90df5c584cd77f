// Package circlette is a toy model of the fermion spectrum as 8-bit codewords
// on a ring, with a search for the one local update rule that preserves it.
//
// # Overview
//
// Each codeword assigns a bit to eight labels arranged on a ring:
//
//	G0 G1 | C0 C1 | LQ | I3 χ W
//	gen.    colour  bridge  electroweak
//
// Four constraints cut the 256 codewords down to 45 valid states: three
// generations of one lepton doublet and three coloured quark doublets, all
// left-handed, plus the right-handed singlets. A search over a declared family
// of conditional flips finds the single non-trivial rule that maps the valid
// set onto itself, LQ→I3. Under that rule every valid state is either a fixed
// point or half of a two-cycle, and driving a coined quantum walk with the
// rule's two-state coin reproduces the free Schrödinger packet.
//
// # Architecture
//
// The package components:
//
//   - codeword/    - Labels, codewords, bit access and reversal
//   - constraints/ - R1–R4 and the constraint set
//   - space/       - Enumeration, validity, violation histogram
//   - catalogue/   - Particle names, charges, colours for valid states
//   - family/      - Declared candidate families
//   - search/      - Rule search and uniqueness verdict
//   - cycles/      - Cycle decomposition and candidate ranking
//   - orbit/       - Fixed points and two-cycles under the accepted rule
//   - walk/        - Coined walk on a periodic lattice
//   - reference/   - Continuum references and Bhattacharyya overlap
//   - analysis/    - The four stages wired together from a Config
//   - assertions/  - Test helpers for spectrum properties
//
// # Quick Start
//
// Enumerate the spectrum and find the rule:
//
//	space := circlette.NewSpace(circlette.StandardConstraints())
//	valid := space.Valid() // 45 codewords
//
//	engine := circlette.NewEngine(circlette.SectorBoundaryFamily(), circlette.DefaultSearchConfig())
//	res, err := engine.FindUniqueNonTrivialRule(ctx, valid)
//	if err != nil {
//	    log.Fatal(err) // ErrNoUniqueRule or *MultipleRulesError
//	}
//	fmt.Println(res.Accepted.Name()) // LQ→I3
//
// Classify orbits:
//
//	cl, err := circlette.NewOrbitClassifier(circlette.DefaultOrbitConfig()).
//	    Classify(ctx, res.Accepted, valid)
//	stats := cl.Statistics() // 9 fixed points, 18 two-cycles, 0.80 flips
//
// Compare the walk with Schrödinger:
//
//	sim := circlette.NewSimulator(circlette.DefaultWalkConfig())
//	psi, _ := circlette.NewGaussianPacket(10000, 5000, 30)
//	final, err := sim.Simulate(res.Accepted, psi, 2500)
//	ref := circlette.SchrodingerReference{Center: 5000, Sigma0: 30, Theta: 0.05}
//	overlap := circlette.ContinuumOverlap(final, ref) // ≈ 0.986
//
// Or run everything from a configuration:
//
//	rep, err := circlette.NewAnalysis(circlette.DefaultConfig(), logger).Run(ctx, true)
//
// # Uniqueness
//
// "Unique" is always relative to the declared family. The sector-boundary
// family (eight flips across the four ring boundaries) yields exactly one
// rule. The full conditional-flip family (all 56 ordered pairs) yields five,
// and the search reports them as *MultipleRulesError rather than picking one.
//
// # Testing
//
// The Assert* helpers check the documented figures:
//
//	func TestStandardModel(t *testing.T) {
//	    cfg := circlette.DefaultAssertionConfig()
//	    space := circlette.NewSpace(circlette.StandardConstraints())
//	    circlette.AssertSpectrumSize(t, space, cfg)
//	    rule := circlette.AssertUniqueRule(t, circlette.SectorBoundaryFamily(), space.Valid())
//	    circlette.AssertOrbitStatistics(t, rule, space.Valid(), cfg)
//	}
package circlette
