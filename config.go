package circlette

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

// Config describes one analysis run. Every table the analysis depends on
// (rule family, walk parameters, tolerances) is declared here and passed in,
// so alternative runs never touch process-wide state.
type Config struct {
	Search SearchSection `yaml:"search"`
	Orbits OrbitSection  `yaml:"orbits"`
	Walk   WalkSection   `yaml:"walk"`
}

// SearchSection declares the candidate family.
type SearchSection struct {
	Family  string     `yaml:"family"`          // "sector-boundary", "conditional-flip" or a custom name
	Pairs   []PairSpec `yaml:"pairs,omitempty"` // Custom family; overrides Family's built-in meaning
	Workers int        `yaml:"workers"`
}

// PairSpec is a (control, target) pair by label name.
type PairSpec struct {
	Control string `yaml:"control"`
	Target  string `yaml:"target"`
}

// OrbitSection controls classification.
type OrbitSection struct {
	Workers int `yaml:"workers"`
}

// WalkSection declares the walk and its continuum comparison.
type WalkSection struct {
	Sites            int     `yaml:"sites"`
	Steps            int     `yaml:"steps"`
	Sigma0           float64 `yaml:"sigma0"`
	Theta            float64 `yaml:"theta"`
	Base             string  `yaml:"base"`        // Particle name ("u_r_L") or 8-bit string
	ShiftLabel       string  `yaml:"shift_label"` // Empty = rule target
	Reference        string  `yaml:"reference"`   // "schrodinger" or "dalembert"
	Expected         float64 `yaml:"expected"`
	OverlapTolerance float64 `yaml:"overlap_tolerance"`
	NormTolerance    float64 `yaml:"norm_tolerance"`
}

// DefaultConfig returns the documented configuration: the sector-boundary
// family and the 10000-site, 2500-step walk at θ = 0.05 compared with the
// Schrödinger solution (expected overlap ≈ 0.986).
func DefaultConfig() Config {
	return Config{
		Search: SearchSection{Family: "sector-boundary", Workers: 1},
		Orbits: OrbitSection{Workers: 1},
		Walk: WalkSection{
			Sites:            10000,
			Steps:            2500,
			Sigma0:           30,
			Theta:            0.05,
			Base:             "u_r_L",
			Reference:        "schrodinger",
			Expected:         0.986,
			OverlapTolerance: 0.005,
			NormTolerance:    1e-9,
		},
	}
}

// LoadConfig reads a YAML file. Missing fields take their defaults.
func LoadConfig(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	defer f.Close()
	return ParseConfig(f)
}

// ParseConfig decodes YAML from r. Missing fields take their defaults.
func ParseConfig(r io.Reader) (Config, error) {
	var cfg Config
	if err := yaml.NewDecoder(r).Decode(&cfg); err != nil && err != io.EOF {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// applyDefaults fills in zero values.
func (c *Config) applyDefaults() {
	d := DefaultConfig()
	if c.Search.Family == "" {
		c.Search.Family = d.Search.Family
	}
	if c.Search.Workers == 0 {
		c.Search.Workers = d.Search.Workers
	}
	if c.Orbits.Workers == 0 {
		c.Orbits.Workers = d.Orbits.Workers
	}
	w, dw := &c.Walk, d.Walk
	if w.Sites == 0 {
		w.Sites = dw.Sites
	}
	if w.Steps == 0 {
		w.Steps = dw.Steps
	}
	if w.Sigma0 == 0 {
		w.Sigma0 = dw.Sigma0
	}
	if w.Theta == 0 {
		w.Theta = dw.Theta
	}
	if w.Base == "" {
		w.Base = dw.Base
	}
	if w.Reference == "" {
		w.Reference = dw.Reference
	}
	if w.Expected == 0 {
		w.Expected = dw.Expected
	}
	if w.OverlapTolerance == 0 {
		w.OverlapTolerance = dw.OverlapTolerance
	}
	if w.NormTolerance == 0 {
		w.NormTolerance = dw.NormTolerance
	}
}

// Validate checks the configuration without running anything.
func (c Config) Validate() error {
	if _, err := c.Family(); err != nil {
		return err
	}
	if c.Walk.Sites <= 0 || c.Walk.Steps < 0 || c.Walk.Sigma0 <= 0 {
		return fmt.Errorf("walk: sites=%d steps=%d sigma0=%g out of range",
			c.Walk.Sites, c.Walk.Steps, c.Walk.Sigma0)
	}
	if _, err := ParseCodeword(c.Walk.Base); err != nil {
		return fmt.Errorf("walk base: %w", err)
	}
	if c.Walk.ShiftLabel != "" {
		if _, err := ParseLabel(c.Walk.ShiftLabel); err != nil {
			return fmt.Errorf("walk shift label: %w", err)
		}
	}
	if _, err := c.Reference(); err != nil {
		return err
	}
	if c.Walk.OverlapTolerance < 0 || c.Walk.NormTolerance < 0 {
		return fmt.Errorf("walk tolerances must be non-negative")
	}
	return nil
}

// Family resolves the declared candidate family.
func (c Config) Family() (Family, error) {
	if len(c.Search.Pairs) == 0 {
		return FamilyByName(c.Search.Family)
	}
	pairs := make([]Pair, 0, len(c.Search.Pairs))
	for _, p := range c.Search.Pairs {
		ctl, err := ParseLabel(p.Control)
		if err != nil {
			return Family{}, fmt.Errorf("search pairs: %w", err)
		}
		tgt, err := ParseLabel(p.Target)
		if err != nil {
			return Family{}, fmt.Errorf("search pairs: %w", err)
		}
		pairs = append(pairs, Pair{Control: ctl, Target: tgt})
	}
	return PairFamily(c.Search.Family, pairs...)
}

// SearchConfig builds the engine configuration.
func (c Config) SearchConfig(logger *slog.Logger) SearchConfig {
	return SearchConfig{Workers: c.Search.Workers, Logger: logger}
}

// OrbitConfig builds the classifier configuration.
func (c Config) OrbitConfig(logger *slog.Logger) OrbitConfig {
	return OrbitConfig{Workers: c.Orbits.Workers, Logger: logger}
}

// WalkConfig builds the simulator configuration.
func (c Config) WalkConfig(logger *slog.Logger) (WalkConfig, error) {
	base, err := ParseCodeword(c.Walk.Base)
	if err != nil {
		return WalkConfig{}, err
	}
	shift := AutoLabel
	if c.Walk.ShiftLabel != "" {
		if shift, err = ParseLabel(c.Walk.ShiftLabel); err != nil {
			return WalkConfig{}, err
		}
	}
	return WalkConfig{
		Theta:         c.Walk.Theta,
		Base:          base,
		ShiftLabel:    shift,
		NormTolerance: c.Walk.NormTolerance,
		Logger:        logger,
	}, nil
}

// Reference builds the declared continuum reference, centred on the lattice.
func (c Config) Reference() (Reference, error) {
	center := c.Walk.Sites / 2
	switch c.Walk.Reference {
	case "schrodinger":
		return SchrodingerReference{Center: center, Sigma0: c.Walk.Sigma0, Theta: c.Walk.Theta}, nil
	case "dalembert":
		return DAlembertReference{Center: center, Sigma0: c.Walk.Sigma0}, nil
	default:
		return nil, fmt.Errorf("unknown walk reference %q", c.Walk.Reference)
	}
}

// ParseCodeword accepts an 8-character bit string in ring order or a
// particle name from the catalogue.
func ParseCodeword(s string) (Codeword, error) {
	if len(s) == NumLabels {
		b := make([]int, NumLabels)
		ok := true
		for i, r := range s {
			switch r {
			case '0':
			case '1':
				b[i] = 1
			default:
				ok = false
			}
		}
		if ok {
			return FromBits(b...)
		}
	}
	for c := range NewSpace(StandardConstraints()).Valid().All() {
		if p, ok := Describe(c); ok && p.Name == s {
			return c, nil
		}
	}
	return Codeword{}, fmt.Errorf("%w: %q is neither a bit string nor a particle name", ErrInvalidEncoding, s)
}
