// Package channel provides deterministic noise models for exercising
// the codec: a binary symmetric channel that flips an exact bit count
// per codeword, and an AWGN channel producing soft LLRs from BPSK
// symbols.
package channel

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/TheMapleseed/LDPC-AVX512/ldpc"
)

// Received is a corrupted codeword in whichever domain the model
// emits: exactly one of Hard and Soft is set.
type Received struct {
	Hard *ldpc.BitVector
	Soft []float64
}

// Model corrupts codewords. A model is deterministic for a fixed seed
// and is not safe for concurrent use.
type Model interface {
	Name() string
	Corrupt(cw *ldpc.BitVector) Received
}

// BSC flips an exact number of distinct bit positions per codeword.
type BSC struct {
	flips int
	rng   *rand.Rand
}

func NewBSC(flips int, seed int64) (*BSC, error) {
	if flips < 0 {
		return nil, errors.New("channel: flip count must be nonnegative")
	}
	return &BSC{flips: flips, rng: rand.New(rand.NewSource(seed))}, nil
}

func (b *BSC) Name() string { return fmt.Sprintf("bsc-%d", b.flips) }

func (b *BSC) Corrupt(cw *ldpc.BitVector) Received {
	out := cw.Clone()
	n := out.Len()
	k := b.flips
	if k > n {
		k = n
	}
	for _, pos := range b.rng.Perm(n)[:k] {
		out.Flip(pos)
	}
	return Received{Hard: out}
}

// AWGN maps bits to BPSK symbols (+1 for zero), adds Gaussian noise of
// the configured sigma, and emits channel LLRs 2y/sigma^2.
type AWGN struct {
	sigma float64
	rng   *rand.Rand
}

func NewAWGN(sigma float64, seed int64) (*AWGN, error) {
	if math.IsNaN(sigma) || sigma <= 0 {
		return nil, errors.New("channel: sigma must be positive")
	}
	return &AWGN{sigma: sigma, rng: rand.New(rand.NewSource(seed))}, nil
}

func (a *AWGN) Name() string { return fmt.Sprintf("awgn-%.2f", a.sigma) }

func (a *AWGN) Corrupt(cw *ldpc.BitVector) Received {
	n := cw.Len()
	llrs := make([]float64, n)
	scale := 2 / (a.sigma * a.sigma)
	for i := 0; i < n; i++ {
		sym := 1.0
		if cw.Bit(i) == 1 {
			sym = -1.0
		}
		llrs[i] = scale * (sym + a.sigma*a.rng.NormFloat64())
	}
	return Received{Soft: llrs}
}
