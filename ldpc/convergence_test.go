package ldpc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSyndromeWeightWalk(t *testing.T) {
	ms := &matrixStore{
		n:         4,
		m:         2,
		checkCols: [][]int32{{0, 1, 2}, {1, 2, 3}},
	}
	assert.Zero(t, ms.syndromeWeight([]uint8{0, 0, 0, 0}))
	assert.Equal(t, 2, ms.syndromeWeight([]uint8{0, 1, 0, 0}), "bit 1 sits in both checks")
	assert.Equal(t, 1, ms.syndromeWeight([]uint8{1, 0, 0, 0}), "bit 0 sits in the first check only")
	assert.Zero(t, ms.syndromeWeight([]uint8{1, 1, 0, 1}), "even overlap on every check")
	assert.Equal(t, 2, ms.syndromeWeight([]uint8{1, 0, 0, 1}), "odd overlap on both checks")
}
