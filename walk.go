package circlette

import (
	"fmt"
	"log/slog"
	"math"
	"math/cmplx"
)

// AutoLabel asks the simulator to key the shift on the rule's target label.
const AutoLabel Label = -1

// WalkState holds the amplitudes of a coined walk on a periodic 1D lattice.
// Amp[0] is the component whose shift label is 0 (moves right), Amp[1] the
// component whose shift label is 1 (moves left).
type WalkState struct {
	Sites int
	Step  int
	Amp   [2][]complex128
}

// NewWalkState allocates a zero state.
func NewWalkState(sites int) (*WalkState, error) {
	if sites <= 0 {
		return nil, fmt.Errorf("walk lattice needs at least one site, got %d", sites)
	}
	return &WalkState{
		Sites: sites,
		Amp:   [2][]complex128{make([]complex128, sites), make([]complex128, sites)},
	}, nil
}

// NewGaussianPacket places a zero-momentum Gaussian packet at center with
// probability-density width sigma0, split equally between the two internal
// components:
//
//	ψ₀(x) = ψ₁(x) = exp(-(x-x₀)²/(4σ₀²)) / (2πσ₀²)^¼ / √2
func NewGaussianPacket(sites, center int, sigma0 float64) (*WalkState, error) {
	if sigma0 <= 0 {
		return nil, fmt.Errorf("packet width must be positive, got %g", sigma0)
	}
	s, err := NewWalkState(sites)
	if err != nil {
		return nil, err
	}
	norm := math.Pow(2*math.Pi*sigma0*sigma0, 0.25)
	for x := 0; x < sites; x++ {
		d := float64(periodicOffset(x, center, sites))
		a := math.Exp(-d*d/(4*sigma0*sigma0)) / norm / math.Sqrt2
		s.Amp[0][x] = complex(a, 0)
		s.Amp[1][x] = complex(a, 0)
	}
	return s, nil
}

// Clone deep-copies the state.
func (s *WalkState) Clone() *WalkState {
	out := &WalkState{Sites: s.Sites, Step: s.Step}
	for k := range s.Amp {
		out.Amp[k] = append([]complex128(nil), s.Amp[k]...)
	}
	return out
}

// Density returns |ψ₀|² + |ψ₁|² per site.
func (s *WalkState) Density() []float64 {
	out := make([]float64, s.Sites)
	for x := range out {
		out[x] = abs2(s.Amp[0][x]) + abs2(s.Amp[1][x])
	}
	return out
}

// Norm returns the total probability.
func (s *WalkState) Norm() float64 {
	n := 0.0
	for k := range s.Amp {
		for _, a := range s.Amp[k] {
			n += abs2(a)
		}
	}
	return n
}

// Peak returns the site of maximum probability in one component.
func (s *WalkState) Peak(component int) int {
	best, at := -1.0, 0
	for x, a := range s.Amp[component] {
		if p := abs2(a); p > best {
			best, at = p, x
		}
	}
	return at
}

// PacketPeaks locates the two components of a walk state.
type PacketPeaks struct {
	Right      int // Peak site of component 0
	Left       int // Peak site of component 1
	Separation int // Periodic distance Right − Left
}

// Peaks returns the component peaks. For the massless walk started from a
// centred packet the separation after t steps is 2t.
func (s *WalkState) Peaks() PacketPeaks {
	r, l := s.Peak(0), s.Peak(1)
	return PacketPeaks{Right: r, Left: l, Separation: periodicOffset(r, l, s.Sites)}
}

// Coin is a 2×2 operator on the internal components.
type Coin [2][2]complex128

// IsUnitary checks C†C = I within tol.
func (c Coin) IsUnitary(tol float64) bool {
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			var sum complex128
			for k := 0; k < 2; k++ {
				sum += cmplx.Conj(c[k][i]) * c[k][j]
			}
			want := complex(0, 0)
			if i == j {
				want = 1
			}
			if cmplx.Abs(sum-want) > tol {
				return false
			}
		}
	}
	return true
}

// CoinFromRule embeds r's action on the two internal basis states
// base[shift=0] and base[shift=1] as a unitary rotation:
//
//	C = cos θ·I − i sin θ·P
//
// where P is r's permutation of the basis. C is unitary because P² = I.
// A rule that fixes both basis states gives P = I and a pure phase, the
// massless walk.
func CoinFromRule(r Rule, base Codeword, shift Label, theta float64) (Coin, error) {
	basis := [2]Codeword{base.With(shift, 0), base.With(shift, 1)}
	var p [2][2]float64
	for k, b := range basis {
		img := r.Apply(b)
		switch img {
		case basis[0]:
			p[0][k] = 1
		case basis[1]:
			p[1][k] = 1
		default:
			return Coin{}, fmt.Errorf("%w: %s maps %s to %s", ErrCoinNotClosed, r.Name(), b, img)
		}
	}
	if p[0][0]+p[0][1] != 1 || p[1][0]+p[1][1] != 1 {
		return Coin{}, fmt.Errorf("%w: %s is not injective on {%s, %s}",
			ErrCoinNotClosed, r.Name(), basis[0], basis[1])
	}
	if !IsInvolutionOn(r, basis[:]) {
		return Coin{}, fmt.Errorf("%w: %s is not an involution on {%s, %s}",
			ErrCoinNotClosed, r.Name(), basis[0], basis[1])
	}

	cos, sin := math.Cos(theta), math.Sin(theta)
	var c Coin
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			id := 0.0
			if i == j {
				id = 1
			}
			c[i][j] = complex(cos*id, -sin*p[i][j])
		}
	}
	return c, nil
}

// WalkConfig controls the simulator.
type WalkConfig struct {
	Theta         float64      // Coin angle θ = mc²Δt/ℏ in lattice units
	Base          Codeword     // Codeword whose internal space the walk explores
	ShiftLabel    Label        // Label keying the shift; AutoLabel = rule target
	NormTolerance float64      // Allowed drift of total probability; ≤0 = 1e-9
	Coin          *Coin        // Explicit coin; overrides the rule-derived one
	Logger        *slog.Logger // nil = slog.Default()
}

const defaultNormTolerance = 1e-9

// DefaultWalkConfig uses θ = 0.05 on the up-quark codeword u_r_L.
func DefaultWalkConfig() WalkConfig {
	return WalkConfig{
		Theta:         0.05,
		Base:          MustFromBits(0, 0, 1, 0, 1, 0, 0, 0),
		ShiftLabel:    AutoLabel,
		NormTolerance: defaultNormTolerance,
	}
}

// Simulator runs coined walks.
type Simulator struct {
	cfg    WalkConfig
	logger *slog.Logger
}

// NewSimulator returns a simulator.
func NewSimulator(cfg WalkConfig) *Simulator {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.NormTolerance <= 0 {
		cfg.NormTolerance = defaultNormTolerance
	}
	return &Simulator{cfg: cfg, logger: logger}
}

// ResolveShiftLabel returns the configured shift label, or the rule's
// target when the configuration says AutoLabel.
func (sim *Simulator) ResolveShiftLabel(r Rule) (Label, error) {
	if sim.cfg.ShiftLabel.Valid() {
		return sim.cfg.ShiftLabel, nil
	}
	if t, ok := r.(Targeted); ok {
		return t.TargetLabel(), nil
	}
	return 0, fmt.Errorf("rule %s has no target label; set WalkConfig.ShiftLabel", r.Name())
}

// Coin returns the coin the simulator would use for r.
func (sim *Simulator) Coin(r Rule) (Coin, error) {
	if sim.cfg.Coin != nil {
		return *sim.cfg.Coin, nil
	}
	if !IsBijective(r) {
		return Coin{}, fmt.Errorf("coin for %s: %w", r.Name(), ErrNotBijective)
	}
	shift, err := sim.ResolveShiftLabel(r)
	if err != nil {
		return Coin{}, err
	}
	return CoinFromRule(r, sim.cfg.Base, shift, sim.cfg.Theta)
}

// Simulate evolves initial for the given number of steps. Each step applies
// the coin at every site, then shifts component 0 one site right and
// component 1 one site left on the periodic lattice. The initial state is
// not modified.
//
// Total probability is checked after every step; drift beyond
// NormTolerance is reported as *SimulationInstabilityError.
func (sim *Simulator) Simulate(r Rule, initial *WalkState, steps int) (*WalkState, error) {
	if initial == nil || initial.Sites <= 0 {
		return nil, fmt.Errorf("simulate: empty initial state")
	}
	if steps < 0 {
		return nil, fmt.Errorf("simulate: negative step count %d", steps)
	}
	coin, err := sim.Coin(r)
	if err != nil {
		return nil, fmt.Errorf("simulate: %w", err)
	}

	n := initial.Sites
	ref := initial.Norm()
	if ref == 0 || math.IsNaN(ref) || math.IsInf(ref, 0) {
		return nil, fmt.Errorf("simulate: initial norm %g", ref)
	}

	cur := initial.Clone()
	next := &WalkState{Sites: n, Step: cur.Step,
		Amp: [2][]complex128{make([]complex128, n), make([]complex128, n)}}

	for t := 1; t <= steps; t++ {
		for x := 0; x < n; x++ {
			a, b := cur.Amp[0][x], cur.Amp[1][x]
			right := coin[0][0]*a + coin[0][1]*b
			left := coin[1][0]*a + coin[1][1]*b
			next.Amp[0][(x+1)%n] = right
			next.Amp[1][(x-1+n)%n] = left
		}
		next.Step = cur.Step + 1
		cur, next = next, cur

		norm := cur.Norm()
		if math.IsNaN(norm) || math.Abs(norm-ref) > sim.cfg.NormTolerance {
			sim.logger.Warn("walk norm drift",
				"step", t, "norm", norm, "reference", ref, "tolerance", sim.cfg.NormTolerance)
			return nil, &SimulationInstabilityError{
				Step: t, Norm: norm, Reference: ref, Tolerance: sim.cfg.NormTolerance,
			}
		}
	}

	sim.logger.Debug("walk simulated",
		"rule", r.Name(),
		"sites", n,
		"steps", steps,
		"theta", sim.cfg.Theta,
		"norm", cur.Norm())

	return cur, nil
}

func abs2(z complex128) float64 {
	return real(z)*real(z) + imag(z)*imag(z)
}

// periodicOffset returns x-center wrapped into [-n/2, n/2).
func periodicOffset(x, center, n int) int {
	d := ((x-center)%n + n) % n
	if d >= n-n/2 {
		d -= n
	}
	return d
}
