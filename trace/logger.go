package trace

import (
	"github.com/rs/zerolog"

	"github.com/TheMapleseed/LDPC-AVX512/ldpc"
)

// LogObserver writes section boundaries and per-iteration decoder
// state to a zerolog logger at debug level.
type LogObserver struct {
	log zerolog.Logger
}

func NewLogObserver(log zerolog.Logger) *LogObserver {
	return &LogObserver{log: log}
}

func (l *LogObserver) OnSectionStart(name string) {
	l.log.Debug().Str("section", name).Msg("section start")
}

func (l *LogObserver) OnSectionEnd(name string) {
	l.log.Debug().Str("section", name).Msg("section end")
}

func (l *LogObserver) OnIterationRecorded(m ldpc.IterationMetrics) {
	l.log.Debug().
		Int("iteration", m.Iteration).
		Int("syndrome_weight", m.SyndromeWeight).
		Float64("llr_delta", m.LLRDelta).
		Stringer("algorithm", m.Algorithm).
		Msg("decode iteration")
}
