package ldpc

import (
	"fmt"
	"math/bits"
)

// Encode maps a k-bit message onto an n-bit codeword. The code is
// systematic: every message bit appears unchanged at its assigned
// codeword position and the parity bits are packed dot products of the
// parity equations with the message.
func (c *Codec) Encode(message *BitVector) (*BitVector, error) {
	if c.closed.Load() {
		return nil, ErrCodecClosed
	}
	if message == nil {
		return nil, fmt.Errorf("%w: nil message", ErrInvalidConfiguration)
	}
	if message.Len() != c.params.K {
		return nil, fmt.Errorf("%w: message length %d, want %d", ErrInvalidConfiguration, message.Len(), c.params.K)
	}
	c.opts.observer.OnSectionStart(SectionEncode)
	defer c.opts.observer.OnSectionEnd(SectionEncode)

	cw := NewBitVector(c.params.N)
	c.ms.encodeInto(message, cw)
	return cw, nil
}

func (ms *matrixStore) encodeInto(message, cw *BitVector) {
	if ms.identity && ms.k%wordBits == 0 {
		// Message and parity regions fall on word boundaries, so the
		// systematic part is a straight word copy.
		copy(cw.words[:ms.kWords], message.words)
		for i := 0; i < ms.m; i++ {
			if parityBit(ms.parityRows[i], message.words) == 1 {
				setRowBit(cw.words, ms.k+i)
			}
		}
		return
	}
	for s := 0; s < ms.k; s++ {
		if message.Bit(s) == 1 {
			cw.SetBit(ms.colPerm[s], 1)
		}
	}
	for i := 0; i < ms.m; i++ {
		if parityBit(ms.parityRows[i], message.words) == 1 {
			cw.SetBit(ms.colPerm[ms.k+i], 1)
		}
	}
}

// parityBit computes the GF(2) dot product of a packed parity equation
// with a packed message: AND per word, popcount, keep the low bit.
func parityBit(row, msg []uint64) uint8 {
	sum := 0
	for w := range row {
		sum += bits.OnesCount64(row[w] & msg[w])
	}
	return uint8(sum & 1)
}
