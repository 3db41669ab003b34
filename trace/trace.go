// Package trace provides ready-made ldpc.Observer implementations: a
// zerolog-backed iteration logger, a Prometheus metrics sink, and a
// fan-out combinator for running several observers at once.
package trace

import (
	"github.com/TheMapleseed/LDPC-AVX512/ldpc"
)

// Multi fans every callback out to its members in order.
type Multi []ldpc.Observer

func (m Multi) OnSectionStart(name string) {
	for _, o := range m {
		o.OnSectionStart(name)
	}
}

func (m Multi) OnSectionEnd(name string) {
	for _, o := range m {
		o.OnSectionEnd(name)
	}
}

func (m Multi) OnIterationRecorded(it ldpc.IterationMetrics) {
	for _, o := range m {
		o.OnIterationRecorded(it)
	}
}
