package circlette

import (
	"fmt"
	"math/bits"
	"strings"
)

// Label identifies one position on the 8-bit ring.
type Label int

// Ring layout. Adjacent labels from different sectors form the sector
// boundaries used by SectorBoundaryFamily.
//
//	Index:   0   1   2   3   4   5   6   7
//	Label:  G0  G1  C0  C1  LQ  I3  χ   W
//	Sector: [generation] [colour] [bridge] [electroweak]
const (
	G0  Label = iota // generation bit 0
	G1               // generation bit 1
	C0               // colour bit 0
	C1               // colour bit 1
	LQ               // lepton/quark bridge
	I3               // weak isospin
	CHI              // chirality
	W                // weak participation
)

// NumLabels is the ring width.
const NumLabels = 8

// UniverseSize is the number of distinct codewords.
const UniverseSize = 1 << NumLabels

var labelNames = [NumLabels]string{"G0", "G1", "C0", "C1", "LQ", "I3", "χ", "W"}

// Labels returns all labels in ring order.
func Labels() []Label {
	return []Label{G0, G1, C0, C1, LQ, I3, CHI, W}
}

func (l Label) String() string {
	if l < 0 || l >= NumLabels {
		return fmt.Sprintf("Label(%d)", int(l))
	}
	return labelNames[l]
}

// Valid reports whether l names a ring position.
func (l Label) Valid() bool {
	return l >= 0 && l < NumLabels
}

// ParseLabel accepts the ring names ("LQ", "I3", ...) and "CHI" as an ASCII
// spelling of χ. Matching is case-insensitive.
func ParseLabel(s string) (Label, error) {
	u := strings.ToUpper(strings.TrimSpace(s))
	if u == "CHI" {
		return CHI, nil
	}
	for i, name := range labelNames {
		if strings.ToUpper(name) == u {
			return Label(i), nil
		}
	}
	return 0, fmt.Errorf("unknown label %q", s)
}

// Codeword is an immutable 8-label binary state. Label 0 is the most
// significant bit, so integer order equals lexicographic tuple order.
type Codeword struct {
	v uint8
}

// FromInt builds a codeword from its integer encoding.
func FromInt(i int) (Codeword, error) {
	if i < 0 || i >= UniverseSize {
		return Codeword{}, fmt.Errorf("%w: %d outside [0,%d)", ErrInvalidEncoding, i, UniverseSize)
	}
	return Codeword{v: uint8(i)}, nil
}

// MustFromInt is like FromInt but panics on error.
// Use only with constants.
func MustFromInt(i int) Codeword {
	c, err := FromInt(i)
	if err != nil {
		panic(fmt.Sprintf("circlette: %v", err))
	}
	return c
}

// FromBits builds a codeword from an explicit tuple in ring order.
func FromBits(b ...int) (Codeword, error) {
	if len(b) != NumLabels {
		return Codeword{}, fmt.Errorf("%w: want %d labels, got %d", ErrInvalidEncoding, NumLabels, len(b))
	}
	var v uint8
	for i, x := range b {
		if x != 0 && x != 1 {
			return Codeword{}, fmt.Errorf("%w: label %s = %d", ErrInvalidEncoding, Label(i), x)
		}
		v |= uint8(x) << (NumLabels - 1 - i)
	}
	return Codeword{v: v}, nil
}

// MustFromBits is like FromBits but panics on error.
func MustFromBits(b ...int) Codeword {
	c, err := FromBits(b...)
	if err != nil {
		panic(fmt.Sprintf("circlette: %v", err))
	}
	return c
}

// Int returns the integer encoding.
func (c Codeword) Int() int { return int(c.v) }

// Bit returns the value of label l.
func (c Codeword) Bit(l Label) int {
	return int(c.v>>(NumLabels-1-int(l))) & 1
}

// Has reports whether label l is set.
func (c Codeword) Has(l Label) bool { return c.Bit(l) == 1 }

// Bits returns the labels in ring order.
func (c Codeword) Bits() [NumLabels]int {
	var out [NumLabels]int
	for i := range out {
		out[i] = c.Bit(Label(i))
	}
	return out
}

// With returns a copy with label l set to b (0 or 1).
func (c Codeword) With(l Label, b int) Codeword {
	mask := uint8(1) << (NumLabels - 1 - int(l))
	if b&1 == 1 {
		return Codeword{v: c.v | mask}
	}
	return Codeword{v: c.v &^ mask}
}

// Flip returns a copy with label l inverted.
func (c Codeword) Flip(l Label) Codeword {
	return Codeword{v: c.v ^ uint8(1)<<(NumLabels-1-int(l))}
}

// Reverse reads the ring in the opposite direction (antimatter view).
func (c Codeword) Reverse() Codeword {
	return Codeword{v: bits.Reverse8(c.v)}
}

// Hamming returns the number of labels that differ.
func (c Codeword) Hamming(o Codeword) int {
	return bits.OnesCount8(c.v ^ o.v)
}

// String formats the codeword as a binary string in ring order.
func (c Codeword) String() string {
	return fmt.Sprintf("%08b", c.v)
}
