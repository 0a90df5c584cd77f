package circlette

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	upRedLeft = MustFromBits(0, 0, 1, 0, 1, 0, 0, 0)
	electronL = MustFromBits(0, 0, 0, 0, 0, 1, 0, 0)
)

// TestWalk_SchrodingerLimit runs the documented walk: 10000 sites, 2500
// steps, σ₀ = 30, θ = 0.05 on u_r_L, compared with the free Schrödinger
// packet of mass tan θ.
func TestWalk_SchrodingerLimit(t *testing.T) {
	if testing.Short() {
		t.Skip("documented walk takes a few seconds")
	}
	const sites, steps, sigma0 = 10000, 2500, 30.0

	psi, err := NewGaussianPacket(sites, sites/2, sigma0)
	require.NoError(t, err)

	sim := NewSimulator(DefaultWalkConfig())
	final, err := sim.Simulate(bridgeRule, psi, steps)
	require.NoError(t, err)
	assert.Equal(t, steps, final.Step)

	ref := SchrodingerReference{Center: sites / 2, Sigma0: sigma0, Theta: 0.05}
	overlap := ContinuumOverlap(final, ref)
	AssertOverlap(t, overlap, DefaultAssertionConfig())

	t.Logf("  Effective mass: %.5f, σ(t) = %.2f", ref.Mass(), ref.Width(steps))
	t.Logf("  Final norm: %.12f", final.Norm())
}

// TestWalk_Massless verifies that a rule fixing both internal basis states
// gives the dispersionless d'Alembert solution: two half-weight packets
// moving apart at one site per step.
func TestWalk_Massless(t *testing.T) {
	const sites, steps, sigma0 = 2000, 300, 20.0
	center := sites / 2

	tests := []struct {
		name  string
		base  Codeword
		theta float64
	}{
		{"lepton base", electronL, 0.05},
		{"zero angle", upRedLeft, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultWalkConfig()
			cfg.Base, cfg.Theta = tt.base, tt.theta

			psi, err := NewGaussianPacket(sites, center, sigma0)
			require.NoError(t, err)
			final, err := NewSimulator(cfg).Simulate(bridgeRule, psi, steps)
			require.NoError(t, err)

			overlap := ContinuumOverlap(final, DAlembertReference{Center: center, Sigma0: sigma0})
			assert.InDelta(t, 1.0, overlap, 1e-9)

			peaks := final.Peaks()
			assert.Equal(t, center+steps, peaks.Right)
			assert.Equal(t, center-steps, peaks.Left)
			assert.Equal(t, 2*steps, peaks.Separation)
		})
	}
}

func TestWalk_InitialUnchanged(t *testing.T) {
	psi, err := NewGaussianPacket(200, 100, 5)
	require.NoError(t, err)
	before := psi.Clone()

	final, err := NewSimulator(DefaultWalkConfig()).Simulate(bridgeRule, psi, 50)
	require.NoError(t, err)

	assert.Equal(t, before, psi)
	assert.Equal(t, 50, final.Step)
	assert.InDelta(t, psi.Norm(), final.Norm(), 1e-9)
	assert.InDelta(t, 1.0, psi.Norm(), 1e-9)
}

func TestWalk_ZeroSteps(t *testing.T) {
	psi, err := NewGaussianPacket(64, 32, 4)
	require.NoError(t, err)

	final, err := NewSimulator(DefaultWalkConfig()).Simulate(bridgeRule, psi, 0)
	require.NoError(t, err)
	assert.Equal(t, psi.Density(), final.Density())

	_, err = NewSimulator(DefaultWalkConfig()).Simulate(bridgeRule, psi, -1)
	assert.Error(t, err)
}

func TestCoinFromRule_Unitary(t *testing.T) {
	for _, theta := range []float64{0, 0.05, 0.7, math.Pi / 3} {
		c, err := CoinFromRule(bridgeRule, upRedLeft, I3, theta)
		require.NoError(t, err)
		assert.True(t, c.IsUnitary(1e-12), "θ=%g", theta)
		assert.InDelta(t, math.Cos(theta), real(c[0][0]), 1e-15)
		assert.InDelta(t, -math.Sin(theta), imag(c[0][1]), 1e-15)
	}

	// Lepton basis is fixed by the rule, so the coin is a pure phase.
	c, err := CoinFromRule(bridgeRule, electronL, I3, 0.05)
	require.NoError(t, err)
	assert.Equal(t, complex(0, 0), c[0][1])
	assert.Equal(t, complex(0, 0), c[1][0])
}

func TestCoinFromRule_NotClosed(t *testing.T) {
	_, err := CoinFromRule(ConditionalFlip{Control: LQ, Target: C1}, upRedLeft, I3, 0.05)
	assert.ErrorIs(t, err, ErrCoinNotClosed)

	sim := NewSimulator(WalkConfig{Theta: 0.05, Base: upRedLeft, ShiftLabel: I3, NormTolerance: 1e-9})
	psi, err := NewGaussianPacket(32, 16, 3)
	require.NoError(t, err)
	_, err = sim.Simulate(ConditionalFlip{Control: LQ, Target: C1}, psi, 1)
	assert.ErrorIs(t, err, ErrCoinNotClosed)
}

func TestSimulator_RuleChecks(t *testing.T) {
	sim := NewSimulator(DefaultWalkConfig())

	_, err := sim.Coin(constantRule{})
	assert.ErrorIs(t, err, ErrNotBijective)

	_, err = sim.Coin(IdentityRule)
	assert.ErrorContains(t, err, "no target label")

	label, err := sim.ResolveShiftLabel(bridgeRule)
	require.NoError(t, err)
	assert.Equal(t, I3, label)
}

// TestWalk_ZeroTolerance verifies a zero norm tolerance falls back to the
// default instead of flagging round-off as drift.
func TestWalk_ZeroTolerance(t *testing.T) {
	psi, err := NewGaussianPacket(400, 200, 10)
	require.NoError(t, err)

	sim := NewSimulator(WalkConfig{Theta: 0.05, Base: upRedLeft, ShiftLabel: AutoLabel})
	final, err := sim.Simulate(bridgeRule, psi, 100)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, final.Norm(), 1e-9)
}

// TestWalk_NonUnitaryCoin verifies norm drift is caught on the first step.
func TestWalk_NonUnitaryCoin(t *testing.T) {
	coin := Coin{{1.01, 0}, {0, 1.01}}
	require.False(t, coin.IsUnitary(1e-9))

	cfg := DefaultWalkConfig()
	cfg.Coin = &coin

	psi, err := NewGaussianPacket(128, 64, 8)
	require.NoError(t, err)
	_, err = NewSimulator(cfg).Simulate(bridgeRule, psi, 10)

	require.ErrorIs(t, err, ErrSimulationInstability)
	var inst *SimulationInstabilityError
	require.True(t, errors.As(err, &inst))
	assert.Equal(t, 1, inst.Step)
	assert.Greater(t, inst.Norm, inst.Reference)
}

func TestBhattacharyyaOverlap_Range(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 200; i++ {
		n := 1 + rng.IntN(50)
		p, q := make([]float64, n), make([]float64, n)
		for j := range p {
			p[j] = rng.Float64()
			q[j] = rng.Float64() * 10
		}
		o := BhattacharyyaOverlap(p, q)
		if o < 0 || o > 1 {
			t.Fatalf("❌ Overlap %g outside [0, 1]", o)
		}
	}

	p := []float64{1, 2, 3}
	assert.InDelta(t, 1.0, BhattacharyyaOverlap(p, []float64{2, 4, 6}), 1e-12)
	assert.Equal(t, 0.0, BhattacharyyaOverlap([]float64{1, 0}, []float64{0, 1}))
	assert.Equal(t, 0.0, BhattacharyyaOverlap(p, []float64{1, 2}))
	assert.Equal(t, 0.0, BhattacharyyaOverlap(nil, nil))
	assert.Equal(t, 0.0, BhattacharyyaOverlap([]float64{0, 0}, []float64{1, 1}))

	inf, nan := math.Inf(1), math.NaN()
	for _, tc := range [][2][]float64{
		{{inf, 1}, {1, 1}},
		{{1, 1}, {inf, 1}},
		{{inf, 1}, {inf, 1}},
		{{nan, 1}, {1, 1}},
		{{1, 1}, {1, nan}},
	} {
		assert.Equal(t, 0.0, BhattacharyyaOverlap(tc[0], tc[1]), "p=%v q=%v", tc[0], tc[1])
	}
}

func TestDensityReference_SelfOverlap(t *testing.T) {
	psi, err := NewGaussianPacket(500, 250, 12)
	require.NoError(t, err)
	final, err := NewSimulator(DefaultWalkConfig()).Simulate(bridgeRule, psi, 100)
	require.NoError(t, err)

	ref := DensityReference{Label: "self", Values: final.Density()}
	assert.InDelta(t, 1.0, ContinuumOverlap(final, ref), 1e-12)
	assert.Equal(t, "self", ref.Name())

	blown := DensityReference{Values: append([]float64{math.Inf(1)}, final.Density()[1:]...)}
	assert.Equal(t, 0.0, ContinuumOverlap(final, blown))

	short := DensityReference{Values: []float64{1, 2, 3}}
	assert.Equal(t, 0.0, ContinuumOverlap(final, short))
	assert.Equal(t, "density", short.Name())
	assert.Equal(t, 0.0, ContinuumOverlap(nil, ref))
}

func TestSchrodingerReference_Width(t *testing.T) {
	ref := SchrodingerReference{Center: 0, Sigma0: 30, Theta: 0.05}
	assert.InDelta(t, 30.0, ref.Width(0), 1e-12)
	assert.Greater(t, ref.Width(2500), ref.Width(1000))

	massless := SchrodingerReference{Sigma0: 30}
	assert.True(t, math.IsInf(massless.Width(10), 1))
}

func TestAgrees(t *testing.T) {
	assert.True(t, Agrees(0.9858, 0.986, 0.005))
	assert.True(t, Agrees(0.982, 0.986, 0.005))
	assert.False(t, Agrees(0.97, 0.986, 0.005))
}

func TestPeriodicOffset(t *testing.T) {
	tests := []struct {
		x, center, n, want int
	}{
		{5, 5, 10, 0},
		{6, 5, 10, 1},
		{0, 9, 10, 1},
		{9, 0, 10, -1},
		{0, 5, 10, -5},
		{3, 0, 5, -2},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, periodicOffset(tt.x, tt.center, tt.n), "x=%d center=%d n=%d", tt.x, tt.center, tt.n)
	}
}

func TestNewGaussianPacket_Invalid(t *testing.T) {
	_, err := NewGaussianPacket(0, 0, 1)
	assert.Error(t, err)
	_, err = NewGaussianPacket(10, 5, 0)
	assert.Error(t, err)
}
