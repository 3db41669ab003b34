package ldpc_test

import (
	"math/rand"
	"testing"

	"github.com/TheMapleseed/LDPC-AVX512/ldpc"
)

func benchCodec(b *testing.B, alg ldpc.AlgorithmKind) (*ldpc.Codec, *ldpc.BitVector, *ldpc.BitVector) {
	b.Helper()
	pr, ok := ldpc.ProfileByName("base-512")
	if !ok {
		b.Fatal("profile base-512 must exist")
	}
	p := pr.Parameters()
	p.Algorithm = alg
	codec, err := ldpc.New(p)
	if err != nil {
		b.Fatalf("codec: %v", err)
	}

	rng := rand.New(rand.NewSource(42))
	msg := ldpc.NewBitVector(p.K)
	for i := 0; i < p.K; i++ {
		if rng.Intn(2) == 1 {
			msg.SetBit(i, 1)
		}
	}
	cw, err := codec.Encode(msg)
	if err != nil {
		b.Fatalf("encode: %v", err)
	}
	noisy := cw.Clone()
	noisy.Flip(10)
	noisy.Flip(100)
	noisy.Flip(400)
	return codec, msg, noisy
}

func BenchmarkEncode(b *testing.B) {
	codec, msg, _ := benchCodec(b, ldpc.BeliefPropagation)
	defer codec.Close()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := codec.Encode(msg); err != nil {
			b.Fatalf("encode: %v", err)
		}
	}
}

func benchmarkDecode(b *testing.B, alg ldpc.AlgorithmKind) {
	codec, _, noisy := benchCodec(b, alg)
	defer codec.Close()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, _, err := codec.Decode(noisy); err != nil {
			b.Fatalf("decode: %v", err)
		}
	}
}

func BenchmarkDecode_BeliefPropagation(b *testing.B) { benchmarkDecode(b, ldpc.BeliefPropagation) }

func BenchmarkDecode_MinSum(b *testing.B) { benchmarkDecode(b, ldpc.MinSum) }

func BenchmarkDecode_WeightedBP(b *testing.B) { benchmarkDecode(b, ldpc.WeightedBP) }

func BenchmarkDecode_Adaptive(b *testing.B) { benchmarkDecode(b, ldpc.Adaptive) }

func BenchmarkMatrixBuild(b *testing.B) {
	pr, ok := ldpc.ProfileByName("base-512")
	if !ok {
		b.Fatal("profile base-512 must exist")
	}
	p := pr.Parameters()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		codec, err := ldpc.New(p)
		if err != nil {
			b.Fatalf("codec: %v", err)
		}
		codec.Close()
	}
}
