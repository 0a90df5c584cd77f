package circlette

import (
	"math"
)

// Reference is a closed-form probability distribution on the lattice at a
// given time step.
type Reference interface {
	Name() string
	Distribution(sites, step int) []float64
}

// SchrodingerReference is the free-particle Schrödinger solution for a
// zero-momentum Gaussian packet. The walk's small-k dispersion
// cos ω = cos θ cos k gives ω ≈ θ + k²/(2 tan θ), so the effective mass is
// tan θ and
//
//	σ(t) = σ₀ √(1 + (t / (2 m σ₀²))²)
type SchrodingerReference struct {
	Center int
	Sigma0 float64
	Theta  float64
}

// Name implements Reference.
func (SchrodingerReference) Name() string { return "schrodinger" }

// Mass returns the effective mass tan θ.
func (r SchrodingerReference) Mass() float64 { return math.Tan(r.Theta) }

// Width returns σ(t).
func (r SchrodingerReference) Width(step int) float64 {
	m := r.Mass()
	if m == 0 {
		return math.Inf(1)
	}
	ratio := float64(step) / (2 * m * r.Sigma0 * r.Sigma0)
	return r.Sigma0 * math.Sqrt(1+ratio*ratio)
}

// Distribution implements Reference.
func (r SchrodingerReference) Distribution(sites, step int) []float64 {
	sigma := r.Width(step)
	out := make([]float64, sites)
	for x := range out {
		out[x] = gaussian(float64(periodicOffset(x, r.Center, sites)), sigma)
	}
	return out
}

// DAlembertReference is the massless (relativistic) solution: the packet
// splits into two half-weight copies moving at ±c without dispersion.
type DAlembertReference struct {
	Center int
	Sigma0 float64
}

// Name implements Reference.
func (DAlembertReference) Name() string { return "dalembert" }

// Distribution implements Reference.
func (r DAlembertReference) Distribution(sites, step int) []float64 {
	out := make([]float64, sites)
	for x := range out {
		right := float64(periodicOffset(x, r.Center+step, sites))
		left := float64(periodicOffset(x, r.Center-step, sites))
		out[x] = 0.5*gaussian(right, r.Sigma0) + 0.5*gaussian(left, r.Sigma0)
	}
	return out
}

// DensityReference is an explicit distribution, independent of time.
type DensityReference struct {
	Label  string
	Values []float64
}

// Name implements Reference.
func (r DensityReference) Name() string {
	if r.Label != "" {
		return r.Label
	}
	return "density"
}

// Distribution implements Reference. A length mismatch yields an empty
// distribution, which overlaps nothing.
func (r DensityReference) Distribution(sites, _ int) []float64 {
	if len(r.Values) != sites {
		return nil
	}
	return append([]float64(nil), r.Values...)
}

// BhattacharyyaOverlap returns Σ √(p̂ᵢ q̂ᵢ) for the normalised
// distributions p̂ and q̂. Negative entries count as zero. The result lies in
// [0, 1] and is 1 exactly when the normalised distributions coincide.
// Mismatched lengths, empty mass or infinite mass give 0.
func BhattacharyyaOverlap(p, q []float64) float64 {
	if len(p) == 0 || len(p) != len(q) {
		return 0
	}
	var sp, sq float64
	for i := range p {
		sp += math.Max(p[i], 0)
		sq += math.Max(q[i], 0)
	}
	if sp <= 0 || sq <= 0 || math.IsNaN(sp) || math.IsNaN(sq) || math.IsInf(sp, 0) || math.IsInf(sq, 0) {
		return 0
	}
	bc := 0.0
	for i := range p {
		bc += math.Sqrt(math.Max(p[i], 0) / sp * math.Max(q[i], 0) / sq)
	}
	if math.IsNaN(bc) {
		return 0
	}
	return math.Min(math.Max(bc, 0), 1)
}

// ContinuumOverlap compares the walk's spatial distribution with the
// reference at the state's time step.
func ContinuumOverlap(s *WalkState, ref Reference) float64 {
	if s == nil {
		return 0
	}
	return BhattacharyyaOverlap(s.Density(), ref.Distribution(s.Sites, s.Step))
}

// Agrees reports whether overlap lies within tolerance of expected.
func Agrees(overlap, expected, tolerance float64) bool {
	return math.Abs(overlap-expected) <= tolerance
}

func gaussian(d, sigma float64) float64 {
	if math.IsInf(sigma, 1) {
		return 0
	}
	return math.Exp(-d*d/(2*sigma*sigma)) / (math.Sqrt(2*math.Pi) * sigma)
}
