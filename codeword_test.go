package circlette

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestCodeword_RoundTrip verifies every integer encodes and decodes to itself.
func TestCodeword_RoundTrip(t *testing.T) {
	for i := 0; i < UniverseSize; i++ {
		c, err := FromInt(i)
		require.NoError(t, err)

		b := c.Bits()
		back, err := FromBits(b[:]...)
		require.NoError(t, err)

		if back != c || back.Int() != i {
			t.Fatalf("❌ Round trip failed: %d → %v → %d", i, b, back.Int())
		}
	}
	t.Logf("✓ All %d encodings round-trip", UniverseSize)
}

// TestCodeword_LabelZeroIsMostSignificant pins the bit order so that integer
// order equals lexicographic order of the tuple.
func TestCodeword_LabelZeroIsMostSignificant(t *testing.T) {
	c := MustFromBits(1, 0, 0, 0, 0, 0, 0, 0)
	assert.Equal(t, 128, c.Int())
	assert.Equal(t, 1, c.Bit(G0))

	c = MustFromBits(0, 0, 0, 0, 0, 0, 0, 1)
	assert.Equal(t, 1, c.Int())
	assert.True(t, c.Has(W))

	assert.Equal(t, "00101000", MustFromBits(0, 0, 1, 0, 1, 0, 0, 0).String())
}

func TestFromInt_OutOfRange(t *testing.T) {
	for _, i := range []int{-1, 256, 1000} {
		_, err := FromInt(i)
		if !errors.Is(err, ErrInvalidEncoding) {
			t.Errorf("❌ FromInt(%d): got %v, want ErrInvalidEncoding", i, err)
		}
	}
}

func TestFromBits_Invalid(t *testing.T) {
	tests := []struct {
		name string
		bits []int
	}{
		{"too short", []int{0, 1, 0}},
		{"too long", []int{0, 0, 0, 0, 0, 0, 0, 0, 0}},
		{"not binary", []int{0, 0, 2, 0, 0, 0, 0, 0}},
		{"negative", []int{0, 0, 0, 0, -1, 0, 0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromBits(tt.bits...)
			assert.ErrorIs(t, err, ErrInvalidEncoding)
		})
	}
}

func TestCodeword_FlipWithReverse(t *testing.T) {
	c := MustFromInt(0)

	c = c.Flip(LQ)
	assert.True(t, c.Has(LQ))
	assert.Equal(t, 1, c.Hamming(MustFromInt(0)))

	c = c.With(LQ, 0).With(I3, 1)
	assert.Equal(t, "00000100", c.String())

	// G0 ↔ W, G1 ↔ χ, C0 ↔ I3, C1 ↔ LQ
	r := MustFromBits(1, 1, 0, 0, 0, 0, 0, 0).Reverse()
	assert.Equal(t, "00000011", r.String())
	assert.Equal(t, c, c.Reverse().Reverse())
}

func TestParseLabel(t *testing.T) {
	tests := []struct {
		in   string
		want Label
	}{
		{"G0", G0},
		{"lq", LQ},
		{" I3 ", I3},
		{"χ", CHI},
		{"chi", CHI},
		{"W", W},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLabel(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseLabel("Q")
	assert.Error(t, err)
	assert.Equal(t, "Label(9)", Label(9).String())
	assert.False(t, Label(-1).Valid())
}
