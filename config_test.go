package circlette

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfig_Empty(t *testing.T) {
	cfg, err := ParseConfig(strings.NewReader(""))
	require.NoError(t, err)

	if diff := cmp.Diff(DefaultConfig(), cfg); diff != "" {
		t.Errorf("❌ Empty config should equal defaults (-want +got):\n%s", diff)
	}
}

func TestParseConfig_CustomFamily(t *testing.T) {
	const doc = `
search:
  family: bridge-and-chirality
  workers: 4
  pairs:
    - {control: LQ, target: I3}
    - {control: chi, target: W}
walk:
  sites: 400
  steps: 50
  base: e_L
  reference: dalembert
`
	cfg, err := ParseConfig(strings.NewReader(doc))
	require.NoError(t, err)

	f, err := cfg.Family()
	require.NoError(t, err)
	assert.Equal(t, "bridge-and-chirality", f.Name)
	assert.Equal(t, 2, f.Size())
	assert.Equal(t, 4, cfg.SearchConfig(nil).Workers)

	// Unset fields take their defaults.
	assert.Equal(t, 0.05, cfg.Walk.Theta)
	assert.Equal(t, 30.0, cfg.Walk.Sigma0)
	assert.Equal(t, 1, cfg.Orbits.Workers)

	wc, err := cfg.WalkConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, electronL, wc.Base)
	assert.Equal(t, AutoLabel, wc.ShiftLabel)

	ref, err := cfg.Reference()
	require.NoError(t, err)
	assert.Equal(t, DAlembertReference{Center: 200, Sigma0: 30}, ref)
}

func TestParseConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"unknown family", "search: {family: everything}"},
		{"bad pair label", "search: {pairs: [{control: LQ, target: Z}]}"},
		{"self pair", "search: {pairs: [{control: LQ, target: LQ}]}"},
		{"bad base", "walk: {base: gluon}"},
		{"bad shift label", "walk: {shift_label: X}"},
		{"bad reference", "walk: {reference: dirac}"},
		{"negative sites", "walk: {sites: -4}"},
		{"negative tolerance", "walk: {norm_tolerance: -1}"},
		{"not yaml", "search: [unterminated"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfig(strings.NewReader(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "circlette.yaml")
	require.NoError(t, os.WriteFile(path, []byte("walk:\n  shift_label: I3\n  base: \"00101000\"\n"), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	wc, err := cfg.WalkConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, I3, wc.ShiftLabel)
	assert.Equal(t, upRedLeft, wc.Base)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestParseCodeword(t *testing.T) {
	c, err := ParseCodeword("u_r_L")
	require.NoError(t, err)
	assert.Equal(t, upRedLeft, c)

	c, err = ParseCodeword("11000000")
	require.NoError(t, err)
	assert.Equal(t, 192, c.Int())

	for _, bad := range []string{"", "0010100", "0010x000", "photon"} {
		_, err := ParseCodeword(bad)
		assert.ErrorIs(t, err, ErrInvalidEncoding, "input %q", bad)
	}
}
