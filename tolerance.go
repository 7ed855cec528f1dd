// Package cannon tolerance-based verification for floating-point comparisons
package cannon

import (
	"fmt"
	"math"
)

// ToleranceConfig defines tolerance parameters for floating-point comparison
type ToleranceConfig struct {
	// AbsTol is the absolute tolerance for values near zero
	AbsTol float64

	// RelTol is the relative tolerance as a fraction of the larger value
	RelTol float64

	// ULPTol is the maximum allowed difference in ULPs (Units in Last Place)
	ULPTol uint64

	// CheckNaN determines if NaN values should be considered equal
	CheckNaN bool

	// CheckInf determines if Inf values should be considered equal
	CheckInf bool
}

// DefaultTolerance returns the tolerance used to compare a distributed
// product against the sequential one. Summation order differs between the
// two, so exact equality is not expected.
func DefaultTolerance() ToleranceConfig {
	return ToleranceConfig{
		AbsTol:   1e-9,
		RelTol:   1e-6,
		ULPTol:   16,
		CheckNaN: true,
		CheckInf: true,
	}
}

// StrictTolerance returns strict tolerance configuration for high precision
func StrictTolerance() ToleranceConfig {
	return ToleranceConfig{
		AbsTol:   1e-14,
		RelTol:   1e-12,
		ULPTol:   4,
		CheckNaN: true,
		CheckInf: true,
	}
}

// Float64NearEqual checks if two float64 values are equal within tolerance
func Float64NearEqual(a, b float64, tol ToleranceConfig) bool {
	if tol.CheckNaN && math.IsNaN(a) && math.IsNaN(b) {
		return true
	}
	if tol.CheckInf {
		if math.IsInf(a, 1) && math.IsInf(b, 1) {
			return true
		}
		if math.IsInf(a, -1) && math.IsInf(b, -1) {
			return true
		}
	}

	// Handles ±0
	if a == b {
		return true
	}
	if math.IsNaN(a) || math.IsNaN(b) || math.IsInf(a, 0) || math.IsInf(b, 0) {
		return false
	}

	diff := math.Abs(a - b)
	if diff <= tol.AbsTol {
		return true
	}

	larger := math.Max(math.Abs(a), math.Abs(b))
	if diff <= larger*tol.RelTol {
		return true
	}

	if tol.ULPTol > 0 && Float64ULPDiff(a, b) <= tol.ULPTol {
		return true
	}
	return false
}

// Float64ULPDiff computes the difference in ULPs between two float64 values.
// Values of different sign are treated as maximally far apart.
func Float64ULPDiff(a, b float64) uint64 {
	aBits := math.Float64bits(a)
	bBits := math.Float64bits(b)

	if (aBits^bBits)&(1<<63) != 0 {
		return math.MaxUint64
	}
	if aBits > bBits {
		return aBits - bBits
	}
	return bBits - aBits
}

// VerificationResult summarises an element-wise comparison
type VerificationResult struct {
	MaxAbsError float64
	MaxRelError float64
	MaxULPError uint64
	NumErrors   int
	TotalItems  int
	FirstError  int // Index of first error, -1 if none
}

// VerifyFloat64Array compares two float64 arrays and returns detailed results
func VerifyFloat64Array(expected, actual []float64, tol ToleranceConfig) VerificationResult {
	result := VerificationResult{
		TotalItems: len(expected),
		FirstError: -1,
	}

	if len(expected) != len(actual) {
		result.NumErrors = len(expected)
		return result
	}

	for i := range expected {
		if Float64NearEqual(expected[i], actual[i], tol) {
			continue
		}
		result.NumErrors++
		if result.FirstError == -1 {
			result.FirstError = i
		}

		absDiff := math.Abs(expected[i] - actual[i])
		if absDiff > result.MaxAbsError {
			result.MaxAbsError = absDiff
		}
		if expected[i] != 0 {
			relDiff := absDiff / math.Abs(expected[i])
			if relDiff > result.MaxRelError {
				result.MaxRelError = relDiff
			}
		}
		if ulp := Float64ULPDiff(expected[i], actual[i]); ulp > result.MaxULPError {
			result.MaxULPError = ulp
		}
	}

	return result
}

// Passed reports whether every element matched
func (r VerificationResult) Passed() bool {
	return r.NumErrors == 0
}

// String formats the verification result for display
func (r VerificationResult) String() string {
	if r.NumErrors == 0 {
		return "PASS: All values match within tolerance"
	}

	errorRate := float64(r.NumErrors) / float64(max(r.TotalItems, 1)) * 100
	return fmt.Sprintf("FAIL: %d/%d values differ (%.2f%%)\n"+
		"  Max absolute error: %e\n"+
		"  Max relative error: %e\n"+
		"  Max ULP difference: %d\n"+
		"  First error at index: %d",
		r.NumErrors, r.TotalItems, errorRate,
		r.MaxAbsError, r.MaxRelError, r.MaxULPError,
		r.FirstError)
}
