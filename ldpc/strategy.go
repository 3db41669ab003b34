package ldpc

import "math"

// strategy is the closed set of check-update rules. One instance is
// selected per decode session; the adaptive member is the only
// stateful one.
type strategy interface {
	algorithm() AlgorithmKind
	updateChecks(c *Codec, s *session)
	recordSyndrome(weight, iter int)
}

func newStrategy(kind AlgorithmKind, o options) strategy {
	switch kind {
	case MinSum:
		return &minSumStrategy{kind: MinSum, weight: 1}
	case WeightedBP:
		return &minSumStrategy{kind: WeightedBP, weight: o.weight}
	case Adaptive:
		return &adaptiveStrategy{
			window:     o.window,
			current:    &minSumStrategy{kind: MinSum, weight: 1},
			best:       math.MaxInt,
			switchedAt: -1,
		}
	default:
		return bpStrategy{}
	}
}

// bpStrategy is the exact sum-product rule evaluated through the
// quantized tanh/atanh tables. Per check, a prefix product and a
// running suffix product give every edge the product of all incoming
// beliefs except its own.
type bpStrategy struct{}

func (bpStrategy) algorithm() AlgorithmKind { return BeliefPropagation }

func (bpStrategy) recordSyndrome(int, int) {}

func (bpStrategy) updateChecks(c *Codec, s *session) {
	e := 0
	for _, cols := range c.ms.checkCols {
		d := len(cols)
		base := e
		for j, v := range cols {
			q := clamp(s.llr[v] - s.r[base+j])
			s.t[j] = c.tanh.at(q / 2)
		}
		s.pre[0] = 1
		for j := 0; j < d; j++ {
			s.pre[j+1] = s.pre[j] * s.t[j]
		}
		suf := 1.0
		for j := d - 1; j >= 0; j-- {
			s.r[base+j] = clamp(2 * c.atanh.at(s.pre[j]*suf))
			suf *= s.t[j]
		}
		e = base + d
	}
}

// minSumStrategy approximates the check update with the product of
// input signs and the smallest input magnitude, excluding each edge's
// own contribution through the two-minima trick. A weight below one
// gives the normalized variant.
type minSumStrategy struct {
	kind   AlgorithmKind
	weight float64
}

func (m *minSumStrategy) algorithm() AlgorithmKind { return m.kind }

func (m *minSumStrategy) recordSyndrome(int, int) {}

func (m *minSumStrategy) updateChecks(c *Codec, s *session) {
	e := 0
	for _, cols := range c.ms.checkCols {
		d := len(cols)
		base := e
		sign := 1.0
		min1, min2 := math.MaxFloat64, math.MaxFloat64
		minAt := -1
		for j, v := range cols {
			q := clamp(s.llr[v] - s.r[base+j])
			s.q[j] = q
			a := math.Abs(q)
			if q < 0 {
				sign = -sign
			}
			if a < min1 {
				min2, min1, minAt = min1, a, j
			} else if a < min2 {
				min2 = a
			}
		}
		for j := 0; j < d; j++ {
			mag := min1
			if j == minAt {
				mag = min2
			}
			sj := sign
			if s.q[j] < 0 {
				sj = -sj
			}
			s.r[base+j] = clamp(m.weight * sj * mag)
		}
		e = base + d
	}
}

// adaptiveStrategy runs min-sum while the syndrome weight keeps
// improving and hands the session to belief propagation after window
// consecutive iterations without a new best weight.
type adaptiveStrategy struct {
	window     int
	current    strategy
	best       int
	plateau    int
	switched   bool
	switchedAt int
}

func (a *adaptiveStrategy) algorithm() AlgorithmKind { return a.current.algorithm() }

func (a *adaptiveStrategy) updateChecks(c *Codec, s *session) { a.current.updateChecks(c, s) }

func (a *adaptiveStrategy) recordSyndrome(weight, iter int) {
	if a.switched {
		return
	}
	if weight < a.best {
		a.best = weight
		a.plateau = 0
		return
	}
	a.plateau++
	if a.plateau >= a.window {
		// The switch takes effect on the next check update.
		a.current = bpStrategy{}
		a.switched = true
		a.switchedAt = iter + 1
	}
}
