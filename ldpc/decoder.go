package ldpc

import (
	"context"
	"fmt"
	"math"
	"sync/atomic"

	"gonum.org/v1/gonum/floats"
)

// Section names passed to Observer hooks.
const (
	SectionBuild  = "matrix_build"
	SectionEncode = "encode"
	SectionDecode = "decode"
)

// IterationMetrics is one decode iteration as seen by an Observer.
// Algorithm is the rule that actually ran, which matters for adaptive
// sessions.
type IterationMetrics struct {
	Iteration      int
	SyndromeWeight int
	LLRDelta       float64
	Algorithm      AlgorithmKind
}

// Observer receives instrumentation callbacks from a codec. Callbacks
// run synchronously on the calling goroutine and must not block.
// Ready-made implementations live in the trace package.
type Observer interface {
	OnSectionStart(name string)
	OnSectionEnd(name string)
	OnIterationRecorded(m IterationMetrics)
}

type nopObserver struct{}

func (nopObserver) OnSectionStart(string) {}

func (nopObserver) OnSectionEnd(string) {}

func (nopObserver) OnIterationRecorded(IterationMetrics) {}

type options struct {
	observer  Observer
	weight    float64
	window    int
	crossover float64
}

func defaultOptions() options {
	return options{
		observer:  nopObserver{},
		weight:    DefaultStrategyWeight,
		window:    DefaultAdaptiveWindow,
		crossover: DefaultCrossover,
	}
}

func (o options) validate() error {
	if math.IsNaN(o.weight) || o.weight <= 0 || o.weight > 1 {
		return fmt.Errorf("%w: strategy weight %v must be in (0, 1]", ErrInvalidConfiguration, o.weight)
	}
	if o.window < 1 {
		return fmt.Errorf("%w: adaptive window %d must be at least 1", ErrInvalidConfiguration, o.window)
	}
	if math.IsNaN(o.crossover) || o.crossover <= 0 || o.crossover >= 0.5 {
		return fmt.Errorf("%w: crossover probability %v must be in (0, 0.5)", ErrInvalidConfiguration, o.crossover)
	}
	return nil
}

// Option adjusts codec construction.
type Option func(*options)

// WithObserver attaches an instrumentation observer. Passing nil
// restores the no-op default.
func WithObserver(obs Observer) Option {
	return func(o *options) {
		if obs == nil {
			o.observer = nopObserver{}
			return
		}
		o.observer = obs
	}
}

// WithStrategyWeight sets the WeightedBP normalization factor, in
// (0, 1].
func WithStrategyWeight(w float64) Option {
	return func(o *options) { o.weight = w }
}

// WithAdaptiveWindow sets how many non-improving iterations an
// Adaptive session tolerates before switching to belief propagation.
func WithAdaptiveWindow(n int) Option {
	return func(o *options) { o.window = n }
}

// WithCrossoverProbability sets the assumed channel crossover
// probability used to weight hard-decision inputs, in (0, 0.5).
func WithCrossoverProbability(p float64) Option {
	return func(o *options) { o.crossover = p }
}

// Codec is an immutable encoder/decoder pair for one code. It is safe
// for concurrent use; every decode call allocates its own session.
type Codec struct {
	params  CodeParameters
	opts    options
	tanh    *lookupTable
	atanh   *lookupTable
	ms      *matrixStore
	hardLLR float64
	closed  atomic.Bool
}

// New builds a codec from validated parameters: it draws the
// parity-check matrix from the seed, derives the systematic generator,
// and precomputes the lookup tables.
func New(params CodeParameters, opts ...Option) (*Codec, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.validate(); err != nil {
		return nil, err
	}

	o.observer.OnSectionStart(SectionBuild)
	ms, err := newMatrixStore(params)
	o.observer.OnSectionEnd(SectionBuild)
	if err != nil {
		return nil, err
	}

	return &Codec{
		params:  params,
		opts:    o,
		tanh:    newTanhTable(),
		atanh:   newAtanhTable(),
		ms:      ms,
		hardLLR: math.Log((1 - o.crossover) / o.crossover),
	}, nil
}

// Params returns the parameters the codec was built with.
func (c *Codec) Params() CodeParameters { return c.params }

// Close marks the codec unusable. Further calls return ErrCodecClosed;
// closing again is a no-op.
func (c *Codec) Close() error {
	c.closed.Store(true)
	return nil
}

// Report summarizes one decode call.
type Report struct {
	// Converged is true when the hard decision satisfied every parity
	// check within the iteration budget.
	Converged bool
	// Stalled is true when iteration stopped early because the LLR
	// vector moved less than the error threshold while checks were
	// still unsatisfied. A stalled decode is not converged.
	Stalled bool
	// Iterations counts the iterations that actually ran.
	Iterations int
	// SyndromeWeight is the number of unsatisfied checks at exit.
	SyndromeWeight int
	// LLRDelta is the L2 change of the LLR vector over the last
	// iteration.
	LLRDelta float64
	// Switched reports that an adaptive session fell back to belief
	// propagation, effective from iteration SwitchedAt. SwitchedAt is
	// -1 when no switch happened.
	Switched   bool
	SwitchedAt int
}

// session is the private working state of one decode call. Check
// messages are stored per edge in check-major order; variable-to-check
// messages are never materialized, they are recomputed as the total
// LLR minus the stored edge message.
type session struct {
	iter      int
	synWeight int
	delta     float64

	chLLR   []float64
	llr     []float64
	prevLLR []float64
	hard    []uint8
	r       []float64

	// scratch sized to the widest check row
	q   []float64
	t   []float64
	pre []float64
}

func newSession(c *Codec) *session {
	n := c.params.N
	d := c.ms.maxCheckDeg
	return &session{
		chLLR:   make([]float64, n),
		llr:     make([]float64, n),
		prevLLR: make([]float64, n),
		hard:    make([]uint8, n),
		r:       make([]float64, c.ms.edges),
		q:       make([]float64, d),
		t:       make([]float64, d),
		pre:     make([]float64, d+1),
	}
}

// seedHard weights received bits with the configured crossover LLR:
// positive for zero bits, negative for one bits.
func (s *session) seedHard(received *BitVector, l float64) {
	for i := range s.chLLR {
		if received.Bit(i) == 0 {
			s.chLLR[i] = l
		} else {
			s.chLLR[i] = -l
		}
	}
	copy(s.llr, s.chLLR)
}

// seedSoft copies caller LLRs, clamping saturated values and mapping
// NaN to zero, the no-information belief.
func (s *session) seedSoft(in []float64) {
	for i, x := range in {
		if math.IsNaN(x) {
			x = 0
		}
		s.chLLR[i] = clamp(x)
	}
	copy(s.llr, s.chLLR)
}

// Decode runs iterative decoding on an n-bit hard-decision word and
// returns the recovered k-bit message. On failure the message carries
// the final hard decision anyway and the error wraps
// ErrConvergenceFailure.
func (c *Codec) Decode(received *BitVector) (*BitVector, Report, error) {
	return c.DecodeContext(context.Background(), received)
}

// DecodeContext is Decode with cancellation checked between
// iterations. On cancellation the message reflects the hard decision
// reached so far and the error wraps ctx.Err().
func (c *Codec) DecodeContext(ctx context.Context, received *BitVector) (*BitVector, Report, error) {
	if c.closed.Load() {
		return nil, Report{}, ErrCodecClosed
	}
	if received == nil {
		return nil, Report{}, fmt.Errorf("%w: nil received word", ErrInvalidConfiguration)
	}
	if received.Len() != c.params.N {
		return nil, Report{}, fmt.Errorf("%w: received word length %d, want %d", ErrInvalidConfiguration, received.Len(), c.params.N)
	}
	s := newSession(c)
	s.seedHard(received, c.hardLLR)
	return c.run(ctx, s)
}

// DecodeSoft decodes from soft channel beliefs, one LLR per codeword
// bit with positive values favoring zero. NaN entries read as
// erasures and saturated magnitudes are clamped.
func (c *Codec) DecodeSoft(llrs []float64) (*BitVector, Report, error) {
	return c.DecodeSoftContext(context.Background(), llrs)
}

// DecodeSoftContext is DecodeSoft with cancellation checked between
// iterations.
func (c *Codec) DecodeSoftContext(ctx context.Context, llrs []float64) (*BitVector, Report, error) {
	if c.closed.Load() {
		return nil, Report{}, ErrCodecClosed
	}
	if len(llrs) != c.params.N {
		return nil, Report{}, fmt.Errorf("%w: LLR vector length %d, want %d", ErrInvalidConfiguration, len(llrs), c.params.N)
	}
	s := newSession(c)
	s.seedSoft(llrs)
	return c.run(ctx, s)
}

func (c *Codec) run(ctx context.Context, s *session) (*BitVector, Report, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	obs := c.opts.observer
	obs.OnSectionStart(SectionDecode)
	defer obs.OnSectionEnd(SectionDecode)

	st := newStrategy(c.params.Algorithm, c.opts)
	c.decideHard(s)
	s.synWeight = c.ms.syndromeWeight(s.hard)

	converged, stalled := false, false
	for s.iter = 0; s.iter < c.params.MaxIterations; s.iter++ {
		if err := ctx.Err(); err != nil {
			return c.extractMessage(s), c.report(s, st, false, false),
				fmt.Errorf("ldpc: decode aborted: %w", err)
		}
		copy(s.prevLLR, s.llr)

		st.updateChecks(c, s)
		c.updateVariables(s)
		c.decideHard(s)
		s.synWeight = c.ms.syndromeWeight(s.hard)
		s.delta = floats.Distance(s.llr, s.prevLLR, 2)

		obs.OnIterationRecorded(IterationMetrics{
			Iteration:      s.iter,
			SyndromeWeight: s.synWeight,
			LLRDelta:       s.delta,
			Algorithm:      st.algorithm(),
		})

		if s.synWeight == 0 {
			converged = true
			s.iter++
			break
		}
		if s.delta < c.params.ErrorThreshold {
			stalled = true
			s.iter++
			break
		}
		st.recordSyndrome(s.synWeight, s.iter)
	}

	msg := c.extractMessage(s)
	rep := c.report(s, st, converged, stalled)
	if converged {
		return msg, rep, nil
	}
	if stalled {
		return msg, rep, fmt.Errorf("%w: stalled after %d iterations with %d unsatisfied checks",
			ErrConvergenceFailure, rep.Iterations, rep.SyndromeWeight)
	}
	return msg, rep, fmt.Errorf("%w: iteration budget %d exhausted with %d unsatisfied checks",
		ErrConvergenceFailure, c.params.MaxIterations, rep.SyndromeWeight)
}

func (c *Codec) report(s *session, st strategy, converged, stalled bool) Report {
	rep := Report{
		Converged:      converged,
		Stalled:        stalled,
		Iterations:     s.iter,
		SyndromeWeight: s.synWeight,
		LLRDelta:       s.delta,
		SwitchedAt:     -1,
	}
	if ad, ok := st.(*adaptiveStrategy); ok && ad.switched {
		rep.Switched = true
		rep.SwitchedAt = ad.switchedAt
	}
	return rep
}

// updateVariables recomputes every total LLR as the channel belief
// plus all incoming check messages, then clamps.
func (c *Codec) updateVariables(s *session) {
	copy(s.llr, s.chLLR)
	e := 0
	for _, cols := range c.ms.checkCols {
		for _, v := range cols {
			s.llr[v] += s.r[e]
			e++
		}
	}
	for i, x := range s.llr {
		s.llr[i] = clamp(x)
	}
}

// decideHard maps totals to bits: a nonnegative LLR decides zero.
func (c *Codec) decideHard(s *session) {
	for i, l := range s.llr {
		if l >= 0 {
			s.hard[i] = 0
		} else {
			s.hard[i] = 1
		}
	}
}

func (c *Codec) extractMessage(s *session) *BitVector {
	msg := NewBitVector(c.params.K)
	for i := 0; i < c.params.K; i++ {
		if s.hard[c.ms.colPerm[i]] == 1 {
			msg.SetBit(i, 1)
		}
	}
	return msg
}
