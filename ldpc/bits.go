package ldpc

import (
	"fmt"
	"math/bits"
)

const wordBits = 64

func wordsFor(n int) int {
	return (n + wordBits - 1) / wordBits
}

// BitVector is a fixed-length bit buffer packed into 64-bit words.
// Bit i lives at words[i/64], position i%64, so byte and word layouts
// agree in little-endian order. Padding bits past the declared length
// are always zero.
type BitVector struct {
	n     int
	words []uint64
}

// NewBitVector returns an all-zero vector of n bits. It panics if n is
// not positive.
func NewBitVector(n int) *BitVector {
	if n <= 0 {
		panic("ldpc: bit vector length must be positive")
	}
	return &BitVector{n: n, words: make([]uint64, wordsFor(n))}
}

// BitVectorFromWords wraps a packed word slice as an n-bit vector. The
// slice must hold exactly ceil(n/64) words and any padding bits in the
// last word must be clear, otherwise ErrAlignment is returned. The
// words are copied.
func BitVectorFromWords(words []uint64, n int) (*BitVector, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: bit length %d must be positive", ErrAlignment, n)
	}
	need := wordsFor(n)
	if len(words) != need {
		return nil, fmt.Errorf("%w: %d words cannot back %d bits, want %d", ErrAlignment, len(words), n, need)
	}
	if tail := uint(n % wordBits); tail != 0 && words[need-1]>>tail != 0 {
		return nil, fmt.Errorf("%w: padding bits beyond length %d are set", ErrAlignment, n)
	}
	w := make([]uint64, need)
	copy(w, words)
	return &BitVector{n: n, words: w}, nil
}

// BitVectorFromBytes wraps a byte buffer as an n-bit vector, bits taken
// LSB-first within each byte. The buffer must hold exactly ceil(n/8)
// bytes with clear padding bits.
func BitVectorFromBytes(buf []byte, n int) (*BitVector, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: bit length %d must be positive", ErrAlignment, n)
	}
	if need := (n + 7) / 8; len(buf) != need {
		return nil, fmt.Errorf("%w: %d bytes cannot back %d bits, want %d", ErrAlignment, len(buf), n, need)
	}
	for i := n; i < len(buf)*8; i++ {
		if buf[i/8]>>(uint(i)%8)&1 != 0 {
			return nil, fmt.Errorf("%w: padding bits beyond length %d are set", ErrAlignment, n)
		}
	}
	v := NewBitVector(n)
	for i, b := range buf {
		v.words[i/8] |= uint64(b) << (uint(i%8) * 8)
	}
	return v, nil
}

// BitVectorFromBits packs a 0/1 slice into a vector; any nonzero entry
// becomes a one bit.
func BitVectorFromBits(raw []uint8) *BitVector {
	v := NewBitVector(len(raw))
	for i, b := range raw {
		if b != 0 {
			v.words[i>>6] |= 1 << (uint(i) & 63)
		}
	}
	return v
}

// Len returns the length in bits.
func (v *BitVector) Len() int { return v.n }

// Bit returns bit i as 0 or 1. It panics if i is out of range.
func (v *BitVector) Bit(i int) uint8 {
	v.check(i)
	return uint8(v.words[i>>6] >> (uint(i) & 63) & 1)
}

// SetBit sets bit i to b&1. It panics if i is out of range.
func (v *BitVector) SetBit(i int, b uint8) {
	v.check(i)
	mask := uint64(1) << (uint(i) & 63)
	if b&1 == 1 {
		v.words[i>>6] |= mask
	} else {
		v.words[i>>6] &^= mask
	}
}

// Flip inverts bit i. It panics if i is out of range.
func (v *BitVector) Flip(i int) {
	v.check(i)
	v.words[i>>6] ^= 1 << (uint(i) & 63)
}

func (v *BitVector) check(i int) {
	if i < 0 || i >= v.n {
		panic(fmt.Sprintf("ldpc: bit index %d out of range [0,%d)", i, v.n))
	}
}

// PopCount returns the number of one bits.
func (v *BitVector) PopCount() int {
	c := 0
	for _, w := range v.words {
		c += bits.OnesCount64(w)
	}
	return c
}

// HammingDistance counts positions where v and o differ. It panics if
// the lengths differ.
func (v *BitVector) HammingDistance(o *BitVector) int {
	if v.n != o.n {
		panic(fmt.Sprintf("ldpc: hamming distance of %d-bit and %d-bit vectors", v.n, o.n))
	}
	d := 0
	for i, w := range v.words {
		d += bits.OnesCount64(w ^ o.words[i])
	}
	return d
}

// Equal reports whether v and o have the same length and bits.
func (v *BitVector) Equal(o *BitVector) bool {
	if o == nil || v.n != o.n {
		return false
	}
	for i, w := range v.words {
		if w != o.words[i] {
			return false
		}
	}
	return true
}

// Clone returns an independent copy.
func (v *BitVector) Clone() *BitVector {
	w := make([]uint64, len(v.words))
	copy(w, v.words)
	return &BitVector{n: v.n, words: w}
}

// Words returns a copy of the packed backing words.
func (v *BitVector) Words() []uint64 {
	w := make([]uint64, len(v.words))
	copy(w, v.words)
	return w
}

// Bytes returns the vector packed LSB-first into ceil(n/8) bytes.
func (v *BitVector) Bytes() []byte {
	out := make([]byte, (v.n+7)/8)
	for i := range out {
		out[i] = byte(v.words[i/8] >> (uint(i%8) * 8))
	}
	return out
}
