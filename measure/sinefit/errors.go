package sinefit

import "errors"

var (
	// ErrLengthMismatch is returned when x and y differ in length.
	ErrLengthMismatch = errors.New("sinefit: x and y must have the same length")
	// ErrTooFewPoints is returned when there are fewer points than free parameters.
	ErrTooFewPoints = errors.New("sinefit: fewer data points than parameters")
	// ErrNonFinite is returned when inputs, the anchor, or the guess hold NaN or Inf.
	ErrNonFinite = errors.New("sinefit: array must not contain infs or NaNs")
	// ErrDegenerateDomain is returned when all x values are equal.
	ErrDegenerateDomain = errors.New("sinefit: x values span a zero-width domain")
	// ErrNoConvergence is returned when the evaluation budget runs out.
	ErrNoConvergence = errors.New("sinefit: optimal parameters not found")
	// ErrZeroFrequency is returned when an x shift is requested for a zero frequency.
	ErrZeroFrequency = errors.New("sinefit: fitted frequency is zero")
)
