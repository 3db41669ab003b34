package ldpc

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"

	"golang.org/x/crypto/sha3"
)

// AlgorithmKind selects the check-node update rule used by Decode.
type AlgorithmKind uint8

const (
	// BeliefPropagation runs the exact sum-product rule through the
	// quantized tanh/atanh tables.
	BeliefPropagation AlgorithmKind = iota
	// MinSum approximates the check update with a sign product and the
	// minimum input magnitude.
	MinSum
	// WeightedBP is min-sum with its magnitudes scaled by a fixed
	// normalization factor below one.
	WeightedBP
	// Adaptive starts with min-sum and switches to belief propagation
	// once the syndrome weight plateaus.
	Adaptive
)

func (a AlgorithmKind) String() string {
	switch a {
	case BeliefPropagation:
		return "belief-propagation"
	case MinSum:
		return "min-sum"
	case WeightedBP:
		return "weighted-bp"
	case Adaptive:
		return "adaptive"
	default:
		return fmt.Sprintf("AlgorithmKind(%d)", uint8(a))
	}
}

func (a AlgorithmKind) valid() bool {
	return a <= Adaptive
}

// ParseAlgorithmKind maps a configuration string onto an AlgorithmKind.
// It accepts the String form of each kind plus common aliases.
func ParseAlgorithmKind(s string) (AlgorithmKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bp", "belief-propagation", "sum-product":
		return BeliefPropagation, nil
	case "min-sum", "minsum":
		return MinSum, nil
	case "weighted", "weighted-bp", "normalized-min-sum":
		return WeightedBP, nil
	case "adaptive":
		return Adaptive, nil
	default:
		return 0, fmt.Errorf("%w: unknown algorithm %q", ErrInvalidConfiguration, s)
	}
}

const (
	// DefaultMaxIterations is the decode iteration budget used by the
	// built-in profiles.
	DefaultMaxIterations = 20
	// DefaultErrorThreshold is the L2 LLR-change floor below which an
	// unconverged decode is treated as stalled.
	DefaultErrorThreshold = 1e-6
	// DefaultCrossover is the assumed binary-symmetric crossover
	// probability when seeding LLRs from hard bits.
	DefaultCrossover = 0.01
	// DefaultStrategyWeight is the normalization factor for WeightedBP.
	DefaultStrategyWeight = 0.75
	// DefaultAdaptiveWindow is the number of non-improving iterations
	// Adaptive tolerates before switching rules.
	DefaultAdaptiveWindow = 3
)

// CodeParameters fixes the geometry and decode policy of a codec.
//
// The code is (WC, WR)-regular: every column of the parity-check matrix
// carries WC ones and every row carries WR, which ties the dimensions
// together as N*WC == (N-K)*WR. Band construction additionally needs the
// parity count N-K to split evenly into WC bands.
type CodeParameters struct {
	// N is the codeword length in bits.
	N int
	// K is the message length in bits.
	K int
	// WC is the column weight of the parity-check matrix.
	WC int
	// WR is the row weight of the parity-check matrix.
	WR int
	// Seed drives every random draw of the matrix construction. Equal
	// seeds and dimensions yield identical codecs.
	Seed uint64
	// MaxIterations bounds the message-passing loop of a single decode.
	MaxIterations int
	// Algorithm selects the check-update rule.
	Algorithm AlgorithmKind
	// ErrorThreshold is the minimum L2 change of the LLR vector between
	// iterations; below it the decode is considered stalled.
	ErrorThreshold float64
}

// Validate checks the structural constraints of p. All violations are
// reported as ErrInvalidConfiguration.
func (p CodeParameters) Validate() error {
	if p.K <= 0 {
		return fmt.Errorf("%w: message length k=%d must be positive", ErrInvalidConfiguration, p.K)
	}
	if p.N <= p.K {
		return fmt.Errorf("%w: codeword length n=%d must exceed message length k=%d", ErrInvalidConfiguration, p.N, p.K)
	}
	if p.WC < 2 {
		return fmt.Errorf("%w: column weight wc=%d must be at least 2", ErrInvalidConfiguration, p.WC)
	}
	m := p.N - p.K
	if p.N*p.WC != m*p.WR {
		return fmt.Errorf("%w: regularity requires n*wc == (n-k)*wr, got %d*%d != %d*%d",
			ErrInvalidConfiguration, p.N, p.WC, m, p.WR)
	}
	if m%p.WC != 0 {
		return fmt.Errorf("%w: parity count %d must split into wc=%d equal bands", ErrInvalidConfiguration, m, p.WC)
	}
	if p.MaxIterations <= 0 {
		return fmt.Errorf("%w: max iterations %d must be positive", ErrInvalidConfiguration, p.MaxIterations)
	}
	if !p.Algorithm.valid() {
		return fmt.Errorf("%w: unknown algorithm kind %d", ErrInvalidConfiguration, uint8(p.Algorithm))
	}
	if math.IsNaN(p.ErrorThreshold) || p.ErrorThreshold <= 0 {
		return fmt.Errorf("%w: error threshold %v must be positive", ErrInvalidConfiguration, p.ErrorThreshold)
	}
	return nil
}

// Profile is a named, known-good code geometry.
type Profile struct {
	Name string
	N    int
	K    int
	WC   int
	WR   int
}

// Profiles lists the built-in code geometries, from a toy rate-1/4 code
// up to a rate-1/2 code of a thousand bits.
var Profiles = []Profile{
	{Name: "toy-32", N: 32, K: 8, WC: 3, WR: 4},
	{Name: "short-96", N: 96, K: 48, WC: 3, WR: 6},
	{Name: "base-512", N: 512, K: 256, WC: 4, WR: 8},
	{Name: "wide-1024", N: 1024, K: 512, WC: 4, WR: 8},
}

// ProfileByName returns the named built-in profile.
func ProfileByName(name string) (Profile, bool) {
	for _, pr := range Profiles {
		if pr.Name == name {
			return pr, true
		}
	}
	return Profile{}, false
}

// Parameters expands a profile into full CodeParameters with default
// decode policy: belief propagation, the default iteration budget, and
// the default stall threshold.
func (pr Profile) Parameters() CodeParameters {
	return CodeParameters{
		N:              pr.N,
		K:              pr.K,
		WC:             pr.WC,
		WR:             pr.WR,
		Seed:           1,
		MaxIterations:  DefaultMaxIterations,
		Algorithm:      BeliefPropagation,
		ErrorThreshold: DefaultErrorThreshold,
	}
}

// DeriveSeed hashes a human-readable label into a matrix seed, so
// deployments can pin a code to a name instead of a raw integer.
func DeriveSeed(label string) uint64 {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(label))
	return binary.LittleEndian.Uint64(h.Sum(nil)[:8])
}
