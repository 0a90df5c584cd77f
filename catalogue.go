package circlette

import "fmt"

// Particle describes a valid codeword in Standard Model terms.
type Particle struct {
	Name       string
	State      Codeword
	Kind       string  // "lepton" or "quark"
	Generation int     // 1, 2 or 3
	Colour     string  // "red", "green", "blue" or "colourless"
	Chirality  string  // "L" or "R"
	Charge     float64 // electric charge in units of e
}

var (
	generationOf = map[[2]int]int{{0, 0}: 1, {0, 1}: 2, {1, 0}: 3}
	colourOf     = map[[2]int]string{{1, 0}: "red", {0, 1}: "green", {1, 1}: "blue"}

	leptonNames = map[int][2]string{
		1: {"nu_e", "e"},
		2: {"nu_mu", "mu"},
		3: {"nu_tau", "tau"},
	}
	quarkNames = map[int][2]string{
		1: {"u", "d"},
		2: {"c", "s"},
		3: {"t", "b"},
	}
)

// Describe names a codeword. It assumes c is valid under the standard
// constraints and returns false otherwise.
func Describe(c Codeword) (Particle, bool) {
	gen, ok := generationOf[[2]int{c.Bit(G0), c.Bit(G1)}]
	if !ok || c.Bit(CHI) != c.Bit(W) {
		return Particle{}, false
	}
	chir := "L"
	if c.Has(CHI) {
		chir = "R"
	}
	iso := c.Bit(I3)

	if !c.Has(LQ) {
		if c.Has(C0) || c.Has(C1) || (iso == 0 && chir == "R") {
			return Particle{}, false
		}
		base := leptonNames[gen][iso]
		charge := 0.0
		if iso == 1 {
			charge = -1
		}
		return Particle{
			Name:       base + "_" + chir,
			State:      c,
			Kind:       "lepton",
			Generation: gen,
			Colour:     "colourless",
			Chirality:  chir,
			Charge:     charge,
		}, true
	}

	col, ok := colourOf[[2]int{c.Bit(C0), c.Bit(C1)}]
	if !ok {
		return Particle{}, false
	}
	base := quarkNames[gen][iso]
	charge := 2.0 / 3.0
	if iso == 1 {
		charge = -1.0 / 3.0
	}
	return Particle{
		Name:       fmt.Sprintf("%s_%c_%s", base, col[0], chir),
		State:      c,
		Kind:       "quark",
		Generation: gen,
		Colour:     col,
		Chirality:  chir,
		Charge:     charge,
	}, true
}

// Catalogue describes every member of vs that Describe recognises.
func Catalogue(vs ValidSet) []Particle {
	out := make([]Particle, 0, vs.Len())
	for c := range vs.All() {
		if p, ok := Describe(c); ok {
			out = append(out, p)
		}
	}
	return out
}

// ParticleName returns the catalogue name or the bracketed bit string.
func ParticleName(c Codeword) string {
	if p, ok := Describe(c); ok {
		return p.Name
	}
	return "[" + c.String() + "]"
}
