// Package ldpc implements a systematic low-density parity-check codec
// over GF(2).
//
// A Codec is built once from CodeParameters and is safe for concurrent
// use: Encode maps k message bits onto an n-bit codeword through a
// generator derived from a Gallager-style parity-check matrix, and
// Decode runs iterative message passing over the matrix's bipartite
// graph until the syndrome clears or an iteration budget runs out.
// Each decode call owns its private working state, so no mutable
// buffers are shared between calls.
//
// Four check-update strategies are available: exact belief propagation
// through quantized tanh/atanh lookup tables, plain min-sum, normalized
// (weighted) min-sum, and an adaptive mode that starts with min-sum and
// falls back to belief propagation when the syndrome weight stops
// improving.
//
// All soft values are log-likelihood ratios with the convention that a
// positive LLR favors bit zero. Every log-domain quantity is clamped to
// a fixed range, so saturated and non-finite inputs degrade to
// bounded values instead of propagating through the iteration.
package ldpc
