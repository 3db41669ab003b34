package ldpc

import "fmt"

// syndromeWeight counts unsatisfied checks of a hard-decision word by
// walking the check adjacency, one XOR per edge. A zero weight means
// the word is a codeword.
func (ms *matrixStore) syndromeWeight(hard []uint8) int {
	w := 0
	for _, cols := range ms.checkCols {
		var x uint8
		for _, c := range cols {
			x ^= hard[c]
		}
		if x != 0 {
			w++
		}
	}
	return w
}

// ParityErrors counts the parity checks an n-bit word violates. A
// valid codeword scores zero.
func (c *Codec) ParityErrors(word *BitVector) (int, error) {
	if c.closed.Load() {
		return 0, ErrCodecClosed
	}
	if word == nil {
		return 0, fmt.Errorf("%w: nil word", ErrInvalidConfiguration)
	}
	if word.Len() != c.params.N {
		return 0, fmt.Errorf("%w: word length %d, want %d", ErrInvalidConfiguration, word.Len(), c.params.N)
	}
	hard := make([]uint8, c.params.N)
	for i := range hard {
		hard[i] = word.Bit(i)
	}
	return c.ms.syndromeWeight(hard), nil
}
