package circlette

import (
	"fmt"
	"strings"
)

// Rule maps codewords to codewords.
type Rule interface {
	Apply(Codeword) Codeword
	Name() string
}

// Targeted is implemented by rules that only ever change one label.
type Targeted interface {
	TargetLabel() Label
}

// ConditionalFlip flips Target when Control is set: Target ⊕= Control.
// With Control ≠ Target it is a CNOT gate and its own inverse.
type ConditionalFlip struct {
	Control Label
	Target  Label
}

// Apply implements Rule.
func (r ConditionalFlip) Apply(c Codeword) Codeword {
	if c.Has(r.Control) {
		return c.Flip(r.Target)
	}
	return c
}

// Name implements Rule.
func (r ConditionalFlip) Name() string {
	return fmt.Sprintf("%s→%s", r.Control, r.Target)
}

// TargetLabel implements Targeted.
func (r ConditionalFlip) TargetLabel() Label { return r.Target }

// Describe renders the update equation, e.g. "I3(t+1) = I3(t) ⊕ LQ(t)".
func (r ConditionalFlip) Describe() string {
	return fmt.Sprintf("%s(t+1) = %s(t) ⊕ %s(t)", r.Target, r.Target, r.Control)
}

// Matrix returns the GF(2) matrix I + e_target·e_controlᵀ.
func (r ConditionalFlip) Matrix() F2Matrix {
	m := IdentityF2()
	m = m.Set(int(r.Target), int(r.Control), 1)
	return m
}

type identityRule struct{}

// IdentityRule leaves every codeword unchanged. The search engine treats it
// as trivial.
var IdentityRule Rule = identityRule{}

func (identityRule) Apply(c Codeword) Codeword { return c }
func (identityRule) Name() string              { return "identity" }

// MatrixRule applies a linear map over GF(2).
type MatrixRule struct {
	Label  string
	Matrix F2Matrix
}

// Apply implements Rule.
func (r MatrixRule) Apply(c Codeword) Codeword { return r.Matrix.Apply(c) }

// Name implements Rule.
func (r MatrixRule) Name() string {
	if r.Label != "" {
		return r.Label
	}
	return "matrix"
}

// IsTrivial reports whether r fixes every codeword.
func IsTrivial(r Rule) bool {
	for i := 0; i < UniverseSize; i++ {
		c := Codeword{v: uint8(i)}
		if r.Apply(c) != c {
			return false
		}
	}
	return true
}

// IsBijective checks by enumeration that r permutes the full universe.
func IsBijective(r Rule) bool {
	var hit [UniverseSize]bool
	for i := 0; i < UniverseSize; i++ {
		img := r.Apply(Codeword{v: uint8(i)})
		if hit[img.v] {
			return false
		}
		hit[img.v] = true
	}
	return true
}

// IsInvolutionOn reports whether applying r twice returns every member of
// states to itself.
func IsInvolutionOn(r Rule, states []Codeword) bool {
	for _, c := range states {
		if r.Apply(r.Apply(c)) != c {
			return false
		}
	}
	return true
}

// F2Matrix is an 8×8 matrix over GF(2). Row i is a bitmask whose bit j
// (counted from the least significant end) is entry (i, j).
type F2Matrix [NumLabels]uint8

// IdentityF2 returns the identity matrix.
func IdentityF2() F2Matrix {
	var m F2Matrix
	for i := range m {
		m[i] = 1 << i
	}
	return m
}

// At returns entry (i, j).
func (m F2Matrix) At(i, j int) int { return int(m[i]>>j) & 1 }

// Set returns a copy with entry (i, j) set to v mod 2.
func (m F2Matrix) Set(i, j, v int) F2Matrix {
	if v&1 == 1 {
		m[i] |= 1 << j
	} else {
		m[i] &^= 1 << j
	}
	return m
}

// Apply computes m·c over GF(2), reading c's labels as a column vector.
func (m F2Matrix) Apply(c Codeword) Codeword {
	var x uint8
	for j := 0; j < NumLabels; j++ {
		x |= uint8(c.Bit(Label(j))) << j
	}
	var out Codeword
	for i := 0; i < NumLabels; i++ {
		parity := popParity(m[i] & x)
		out = out.With(Label(i), parity)
	}
	return out
}

// Mul returns m·o over GF(2).
func (m F2Matrix) Mul(o F2Matrix) F2Matrix {
	var out F2Matrix
	for i := 0; i < NumLabels; i++ {
		for k := 0; k < NumLabels; k++ {
			if m.At(i, k) == 1 {
				out[i] ^= o[k]
			}
		}
	}
	return out
}

// Add returns m+o over GF(2).
func (m F2Matrix) Add(o F2Matrix) F2Matrix {
	var out F2Matrix
	for i := range m {
		out[i] = m[i] ^ o[i]
	}
	return out
}

// IsZero reports whether every entry is zero.
func (m F2Matrix) IsZero() bool { return m == F2Matrix{} }

// Invertible runs Gaussian elimination over GF(2).
func (m F2Matrix) Invertible() bool {
	a := m
	for col := 0; col < NumLabels; col++ {
		pivot := -1
		for row := col; row < NumLabels; row++ {
			if a.At(row, col) == 1 {
				pivot = row
				break
			}
		}
		if pivot < 0 {
			return false
		}
		a[col], a[pivot] = a[pivot], a[col]
		for row := 0; row < NumLabels; row++ {
			if row != col && a.At(row, col) == 1 {
				a[row] ^= a[col]
			}
		}
	}
	return true
}

// Order returns the smallest k ≥ 1 with m^k = I, or 0 if none is found
// within maxK powers.
func (m F2Matrix) Order(maxK int) int {
	id := IdentityF2()
	p := m
	for k := 1; k <= maxK; k++ {
		if p == id {
			return k
		}
		p = p.Mul(m)
	}
	return 0
}

// String renders the matrix one row per line with ring labels.
func (m F2Matrix) String() string {
	var b strings.Builder
	b.WriteString("     ")
	for j := 0; j < NumLabels; j++ {
		fmt.Fprintf(&b, "%3s", Label(j))
	}
	for i := 0; i < NumLabels; i++ {
		fmt.Fprintf(&b, "\n%4s:", Label(i))
		for j := 0; j < NumLabels; j++ {
			fmt.Fprintf(&b, "%3d", m.At(i, j))
		}
	}
	return b.String()
}

func popParity(x uint8) int {
	x ^= x >> 4
	x ^= x >> 2
	x ^= x >> 1
	return int(x & 1)
}
