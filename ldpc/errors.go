package ldpc

import "errors"

var (
	// ErrInvalidConfiguration reports code parameters, options, or buffer
	// lengths that violate the codec's structural constraints.
	ErrInvalidConfiguration = errors.New("ldpc: invalid configuration")

	// ErrAlignment reports a packed buffer whose word count or padding
	// bits do not match the declared bit length.
	ErrAlignment = errors.New("ldpc: buffer alignment violation")

	// ErrConvergenceFailure reports a decode that ended without a zero
	// syndrome, either by exhausting the iteration budget or by stalling
	// below the LLR-change threshold.
	ErrConvergenceFailure = errors.New("ldpc: decoder did not converge")

	// ErrMatrixConstruction reports that no usable parity-check matrix
	// could be drawn from the configured seed.
	ErrMatrixConstruction = errors.New("ldpc: parity-check matrix construction failed")

	// ErrCodecClosed reports use of a codec after Close.
	ErrCodecClosed = errors.New("ldpc: codec is closed")
)
