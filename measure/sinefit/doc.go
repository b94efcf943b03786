// Package sinefit fits a constrained sinusoid to a sampled series with
// Levenberg–Marquardt nonlinear least squares.
//
// The model ties the amplitude to an observed maximum instead of fitting it:
//
//	y(x) = (MaxValue - VerticalShift) * sin(Frequency*x + Phase) + VerticalShift
//
// Only Frequency, Phase, and VerticalShift are free. MaxValue is fixed by the
// caller, usually the maximum of the raw (unsmoothed) samples.
//
// # Usage
//
//	model := sinefit.Model{MaxValue: timestats.Max(raw)}
//	guess := sinefit.Params{
//	    Frequency:     2 * math.Pi / (xMax - xMin),
//	    VerticalShift: timestats.Median(smoothed),
//	}
//	res, err := sinefit.NewFitter(sinefit.Config{}).Fit(x, smoothed, model, guess)
//	if err != nil {
//	    // not converged, or the input was unusable
//	}
//	fitted := model.Eval(x, res.Params)
//
// Every error returned by [Fitter.Fit] describes a fit that could not be
// produced; callers may treat them uniformly as a skipped fit.
package sinefit
