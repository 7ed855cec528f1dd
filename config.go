// Package cannon configuration constants
package cannon

// Message tags used by the block exchanges. Tags only need to be distinct
// per (source, destination) pair and phase; collectives in package comm use
// their own reserved tags.
const (
	// Skew exchange of A-blocks along a grid row
	TagSkewA = 10 + iota
	// Skew exchange of B-blocks along a grid column
	TagSkewB
	// Systolic rotation of A-blocks one step left
	TagShiftA
	// Systolic rotation of B-blocks one step up
	TagShiftB
)

// Verdict codes broadcast by the root after validation.
const (
	verdictOK = iota
	verdictInvalidDimension
)

// Defaults for Options.
const (
	// DefaultSkew is the skew strategy used when none is given
	DefaultSkew = SkewShift

	// DefaultKernel lets package compute pick the block kernel for the CPU
	DefaultKernel = "auto"
)
