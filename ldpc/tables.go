package ldpc

import "math"

const (
	tableSize = 4096
	tableHalf = tableSize / 2

	// tanhScale quantizes the tanh argument domain [-8, 8).
	tanhScale = 16.0 / tableSize
	// atanhScale quantizes the tanh-product domain [-1, 1).
	atanhScale = 2.0 / tableSize

	// llrClamp bounds every log-domain quantity in the decoder.
	llrClamp = 64.0
	// atanhEdge is the saturated atanh output at the domain boundary;
	// the factor 2 in the belief-propagation combine turns it into
	// exactly llrClamp.
	atanhEdge = llrClamp / 2
)

// lookupTable is a uniform quantization of a monotonic transfer
// function. Out-of-domain arguments land on the edge entries.
type lookupTable struct {
	inv     float64
	entries [tableSize]float64
}

func newTanhTable() *lookupTable {
	t := &lookupTable{inv: 1 / tanhScale}
	for i := range t.entries {
		t.entries[i] = math.Tanh(float64(i-tableHalf) * tanhScale)
	}
	return t
}

func newAtanhTable() *lookupTable {
	t := &lookupTable{inv: 1 / atanhScale}
	for i := range t.entries {
		x := float64(i-tableHalf) * atanhScale
		if x <= -1 {
			t.entries[i] = -atanhEdge
			continue
		}
		t.entries[i] = math.Atanh(x)
	}
	// Saturate the top entry too, so both poles behave the same.
	t.entries[tableSize-1] = atanhEdge
	return t
}

// at returns the entry nearest to x. The quantized index is clamped in
// the float domain before conversion, so arbitrarily large or infinite
// arguments never index out of bounds. NaN reads as zero, the
// no-information LLR.
func (t *lookupTable) at(x float64) float64 {
	if math.IsNaN(x) {
		return 0
	}
	q := math.Round(x * t.inv)
	if q < -tableHalf {
		q = -tableHalf
	} else if q > tableHalf-1 {
		q = tableHalf - 1
	}
	return t.entries[int(q)+tableHalf]
}

// clamp bounds x to the representable LLR range.
func clamp(x float64) float64 {
	if x > llrClamp {
		return llrClamp
	}
	if x < -llrClamp {
		return -llrClamp
	}
	return x
}
