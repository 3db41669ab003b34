// Package sim runs Monte-Carlo codec trials: random messages through
// encode, a noise model, and decode, with aggregate statistics over
// the run.
package sim

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/stat"

	"github.com/TheMapleseed/LDPC-AVX512/channel"
	"github.com/TheMapleseed/LDPC-AVX512/ldpc"
)

// Config fixes one simulation run.
type Config struct {
	Codec   *ldpc.Codec
	Channel channel.Model
	Trials  int
	// Seed drives message generation only; channel models carry their
	// own seeds.
	Seed int64
}

// Trial is the outcome of one encode/corrupt/decode round trip.
type Trial struct {
	Index      int
	Converged  bool
	Stalled    bool
	Iterations int
	BitErrors  int
	Elapsed    time.Duration
}

// Summary aggregates a run.
type Summary struct {
	Trials         int
	Converged      int
	FrameErrors    int
	FrameErrorRate float64
	MeanIterations float64
	StdIterations  float64
	MeanBitErrors  float64
	TotalElapsed   time.Duration
}

// Run executes cfg.Trials round trips and returns per-trial outcomes
// plus an aggregate summary. Convergence failures count as frame
// outcomes, not errors; only setup problems abort the run.
func Run(cfg Config, log zerolog.Logger) (Summary, []Trial, error) {
	if cfg.Codec == nil {
		return Summary{}, nil, fmt.Errorf("sim: codec is required")
	}
	if cfg.Channel == nil {
		return Summary{}, nil, fmt.Errorf("sim: channel model is required")
	}
	if cfg.Trials <= 0 {
		return Summary{}, nil, fmt.Errorf("sim: trial count %d must be positive", cfg.Trials)
	}

	p := cfg.Codec.Params()
	rng := rand.New(rand.NewSource(cfg.Seed))
	trials := make([]Trial, 0, cfg.Trials)
	iters := make([]float64, 0, cfg.Trials)
	bitErrs := make([]float64, 0, cfg.Trials)
	var total time.Duration
	converged, frameErrs := 0, 0

	for t := 0; t < cfg.Trials; t++ {
		msg := randomMessage(p.K, rng)
		cw, err := cfg.Codec.Encode(msg)
		if err != nil {
			return Summary{}, trials, fmt.Errorf("sim: encode trial %d: %w", t, err)
		}
		rcv := cfg.Channel.Corrupt(cw)

		start := time.Now()
		var decoded *ldpc.BitVector
		var rep ldpc.Report
		if rcv.Hard != nil {
			decoded, rep, err = cfg.Codec.Decode(rcv.Hard)
		} else {
			decoded, rep, err = cfg.Codec.DecodeSoft(rcv.Soft)
		}
		elapsed := time.Since(start)
		if err != nil && !errors.Is(err, ldpc.ErrConvergenceFailure) {
			return Summary{}, trials, fmt.Errorf("sim: decode trial %d: %w", t, err)
		}

		be := msg.HammingDistance(decoded)
		trials = append(trials, Trial{
			Index:      t,
			Converged:  rep.Converged,
			Stalled:    rep.Stalled,
			Iterations: rep.Iterations,
			BitErrors:  be,
			Elapsed:    elapsed,
		})
		iters = append(iters, float64(rep.Iterations))
		bitErrs = append(bitErrs, float64(be))
		total += elapsed
		if rep.Converged {
			converged++
		}
		if be > 0 {
			frameErrs++
		}
		log.Debug().
			Int("trial", t).
			Bool("converged", rep.Converged).
			Int("iterations", rep.Iterations).
			Int("bit_errors", be).
			Dur("elapsed", elapsed).
			Msg("trial finished")
	}

	sum := Summary{
		Trials:         cfg.Trials,
		Converged:      converged,
		FrameErrors:    frameErrs,
		FrameErrorRate: float64(frameErrs) / float64(cfg.Trials),
		MeanIterations: stat.Mean(iters, nil),
		MeanBitErrors:  stat.Mean(bitErrs, nil),
		TotalElapsed:   total,
	}
	if cfg.Trials > 1 {
		sum.StdIterations = stat.StdDev(iters, nil)
	}
	log.Info().
		Str("channel", cfg.Channel.Name()).
		Int("trials", sum.Trials).
		Int("converged", sum.Converged).
		Float64("frame_error_rate", sum.FrameErrorRate).
		Float64("mean_iterations", sum.MeanIterations).
		Dur("elapsed", total).
		Msg("simulation complete")
	return sum, trials, nil
}

func randomMessage(k int, rng *rand.Rand) *ldpc.BitVector {
	msg := ldpc.NewBitVector(k)
	for i := 0; i < k; i++ {
		if rng.Intn(2) == 1 {
			msg.SetBit(i, 1)
		}
	}
	return msg
}
