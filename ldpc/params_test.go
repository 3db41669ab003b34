package ldpc_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheMapleseed/LDPC-AVX512/ldpc"
)

func validParams() ldpc.CodeParameters {
	return ldpc.CodeParameters{
		N: 96, K: 48, WC: 3, WR: 6,
		Seed:           1,
		MaxIterations:  20,
		Algorithm:      ldpc.BeliefPropagation,
		ErrorThreshold: 1e-6,
	}
}

func TestCodeParametersValidate(t *testing.T) {
	require.NoError(t, validParams().Validate())

	cases := []struct {
		name   string
		mutate func(*ldpc.CodeParameters)
	}{
		{"zero message length", func(p *ldpc.CodeParameters) { p.K = 0 }},
		{"negative message length", func(p *ldpc.CodeParameters) { p.K = -5 }},
		{"codeword not longer than message", func(p *ldpc.CodeParameters) { p.N = 48 }},
		{"column weight below two", func(p *ldpc.CodeParameters) { p.WC = 1 }},
		{"broken regularity", func(p *ldpc.CodeParameters) { p.WR = 5 }},
		{"parity not splitting into bands", func(p *ldpc.CodeParameters) {
			*p = ldpc.CodeParameters{
				N: 512, K: 256, WC: 3, WR: 6,
				Seed: 1, MaxIterations: 20,
				Algorithm: ldpc.BeliefPropagation, ErrorThreshold: 1e-6,
			}
		}},
		{"zero iteration budget", func(p *ldpc.CodeParameters) { p.MaxIterations = 0 }},
		{"unknown algorithm", func(p *ldpc.CodeParameters) { p.Algorithm = ldpc.AlgorithmKind(200) }},
		{"zero threshold", func(p *ldpc.CodeParameters) { p.ErrorThreshold = 0 }},
		{"negative threshold", func(p *ldpc.CodeParameters) { p.ErrorThreshold = -1 }},
		{"nan threshold", func(p *ldpc.CodeParameters) { p.ErrorThreshold = math.NaN() }},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			p := validParams()
			tc.mutate(&p)
			assert.ErrorIs(t, p.Validate(), ldpc.ErrInvalidConfiguration)
		})
	}
}

func TestAlgorithmKindString(t *testing.T) {
	assert.Equal(t, "belief-propagation", ldpc.BeliefPropagation.String())
	assert.Equal(t, "min-sum", ldpc.MinSum.String())
	assert.Equal(t, "weighted-bp", ldpc.WeightedBP.String())
	assert.Equal(t, "adaptive", ldpc.Adaptive.String())
	assert.Contains(t, ldpc.AlgorithmKind(77).String(), "77")
}

func TestParseAlgorithmKind(t *testing.T) {
	cases := map[string]ldpc.AlgorithmKind{
		"bp":                 ldpc.BeliefPropagation,
		"belief-propagation": ldpc.BeliefPropagation,
		"sum-product":        ldpc.BeliefPropagation,
		"min-sum":            ldpc.MinSum,
		"MinSum":             ldpc.MinSum,
		"weighted":           ldpc.WeightedBP,
		"weighted-bp":        ldpc.WeightedBP,
		"normalized-min-sum": ldpc.WeightedBP,
		"adaptive":           ldpc.Adaptive,
		" Adaptive ":         ldpc.Adaptive,
	}
	for in, want := range cases {
		got, err := ldpc.ParseAlgorithmKind(in)
		require.NoError(t, err, "input %q", in)
		assert.Equal(t, want, got, "input %q", in)
	}

	_, err := ldpc.ParseAlgorithmKind("turbo")
	assert.ErrorIs(t, err, ldpc.ErrInvalidConfiguration)
}

func TestBuiltinProfiles(t *testing.T) {
	require.NotEmpty(t, ldpc.Profiles)
	for _, pr := range ldpc.Profiles {
		pr := pr
		t.Run(pr.Name, func(t *testing.T) {
			p := pr.Parameters()
			assert.NoError(t, p.Validate(), "built-in profile must expand to valid parameters")
			assert.Equal(t, ldpc.BeliefPropagation, p.Algorithm)
			assert.Equal(t, ldpc.DefaultMaxIterations, p.MaxIterations)
			assert.Equal(t, ldpc.DefaultErrorThreshold, p.ErrorThreshold)

			byName, ok := ldpc.ProfileByName(pr.Name)
			require.True(t, ok)
			assert.Equal(t, pr, byName)
		})
	}

	_, ok := ldpc.ProfileByName("no-such-profile")
	assert.False(t, ok)
}

func TestDeriveSeed(t *testing.T) {
	a := ldpc.DeriveSeed("telemetry-uplink")
	b := ldpc.DeriveSeed("telemetry-uplink")
	c := ldpc.DeriveSeed("telemetry-downlink")
	assert.Equal(t, a, b, "equal labels must derive equal seeds")
	assert.NotEqual(t, a, c, "distinct labels must not collide")
	assert.NotZero(t, a)
}
