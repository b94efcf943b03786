package sinefit

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

const (
	defaultMaxEvaluations = 200 * (numParams + 1)
	defaultTolerance      = 1.49012e-8
	defaultDamping        = 1e-3

	maxDamping = 1e16
	minDamping = 1e-15
)

// Config holds Levenberg–Marquardt parameters. Zero values select defaults.
type Config struct {
	// MaxEvaluations bounds the number of model evaluations over the whole
	// series (default 800).
	MaxEvaluations int
	// FTol is the relative reduction of the residual sum of squares below
	// which the fit is considered converged.
	FTol float64
	// XTol is the relative step size below which the fit is considered converged.
	XTol float64
	// InitialDamping is the starting Marquardt damping factor.
	InitialDamping float64
}

// Result holds the outcome of a successful fit.
type Result struct {
	Params Params
	// StdErr holds one standard error per parameter, estimated from the
	// Jacobian at the solution. Entries are +Inf when they cannot be estimated.
	StdErr      Params
	SSR         float64 // residual sum of squares
	RMSE        float64
	Iterations  int
	Evaluations int
}

// Fitter performs constrained sine fits.
type Fitter struct {
	cfg Config
}

// NewFitter creates a Fitter, filling zero-valued config fields with defaults.
func NewFitter(cfg Config) *Fitter {
	return &Fitter{cfg: normalizeConfig(cfg)}
}

// Fit is a one-shot fit with the given config.
func Fit(x, y []float64, model Model, guess Params, cfg Config) (Result, error) {
	return NewFitter(cfg).Fit(x, y, model, guess)
}

// Config returns the effective configuration.
func (f *Fitter) Config() Config {
	return f.cfg
}

func normalizeConfig(cfg Config) Config {
	if cfg.MaxEvaluations <= 0 {
		cfg.MaxEvaluations = defaultMaxEvaluations
	}
	if cfg.FTol <= 0 {
		cfg.FTol = defaultTolerance
	}
	if cfg.XTol <= 0 {
		cfg.XTol = defaultTolerance
	}
	if cfg.InitialDamping <= 0 {
		cfg.InitialDamping = defaultDamping
	}
	return cfg
}

// Fit minimizes the squared residuals between y and model over x, starting
// from guess.
//
//nolint:cyclop,funlen
func (f *Fitter) Fit(x, y []float64, model Model, guess Params) (Result, error) {
	n := len(x)
	if n != len(y) {
		return Result{}, fmt.Errorf("%w: %d vs %d", ErrLengthMismatch, n, len(y))
	}
	if n < numParams {
		return Result{}, fmt.Errorf("%w: %d points for %d parameters", ErrTooFewPoints, n, numParams)
	}
	if !allFinite(x) || !allFinite(y) || !isFinite(model.MaxValue) || !guess.Finite() {
		return Result{}, ErrNonFinite
	}
	if floats.Max(x) == floats.Min(x) {
		return Result{}, fmt.Errorf("%w: all x equal %v", ErrDegenerateDomain, x[0])
	}

	cfg := f.cfg
	p := guess.vector()

	resid := make([]float64, n)
	trialResid := make([]float64, n)
	cost := residuals(resid, x, y, model, p)
	evals := 1

	jac := mat.NewDense(n, numParams, nil)
	jtj := mat.NewSymDense(numParams, nil)
	damped := mat.NewSymDense(numParams, nil)
	jtr := mat.NewVecDense(numParams, nil)
	step := mat.NewVecDense(numParams, nil)
	var chol mat.Cholesky

	lambda := cfg.InitialDamping
	iterations := 0

	for {
		if cost == 0 {
			break
		}
		if evals >= cfg.MaxEvaluations {
			return Result{}, noConvergence(cfg.MaxEvaluations)
		}

		iterations++
		jacobian(jac, x, model, p)
		jtj.SymOuterK(1, jac.T())
		jtr.MulVec(jac.T(), mat.NewVecDense(n, resid))

		floor := 1e-12 * math.Max(maxDiag(jtj), 1)

		converged := false
		for {
			damped.CopySym(jtj)
			for i := range numParams {
				d := math.Max(jtj.At(i, i), floor)
				damped.SetSym(i, i, jtj.At(i, i)+lambda*d)
			}

			if ok := chol.Factorize(damped); !ok {
				lambda *= 10
				if lambda > maxDamping {
					return Result{}, fmt.Errorf("%w: normal equations are singular", ErrNoConvergence)
				}
				continue
			}
			if err := chol.SolveVecTo(step, jtr); err != nil {
				lambda *= 10
				if lambda > maxDamping {
					return Result{}, fmt.Errorf("%w: %v", ErrNoConvergence, err)
				}
				continue
			}

			var trial [numParams]float64
			for i := range numParams {
				trial[i] = p[i] + step.AtVec(i)
			}
			stepNorm := mat.Norm(step, 2)
			smallStep := stepNorm <= cfg.XTol*(floats.Norm(p[:], 2)+cfg.XTol)

			trialCost := residuals(trialResid, x, y, model, trial)
			evals++

			if isFinite(trialCost) && trialCost < cost {
				reduction := (cost - trialCost) / cost
				p = trial
				cost = trialCost
				resid, trialResid = trialResid, resid
				lambda = math.Max(lambda/10, minDamping)
				converged = reduction <= cfg.FTol || smallStep
				break
			}

			if smallStep {
				converged = true
				break
			}

			lambda *= 10
			if lambda > maxDamping {
				converged = true
				break
			}
			if evals >= cfg.MaxEvaluations {
				return Result{}, noConvergence(cfg.MaxEvaluations)
			}
		}

		if converged {
			break
		}
	}

	params := paramsFromVector(p)
	if !params.Finite() {
		return Result{}, ErrNonFinite
	}

	return Result{
		Params:      params,
		StdErr:      standardErrors(jac, x, model, p, cost),
		SSR:         cost,
		RMSE:        math.Sqrt(cost / float64(n)),
		Iterations:  iterations,
		Evaluations: evals,
	}, nil
}

func noConvergence(maxEvals int) error {
	return fmt.Errorf("%w: number of calls to function has reached max evaluations = %d", ErrNoConvergence, maxEvals)
}

// residuals writes y - model(x, p) into dst and returns the sum of squares.
func residuals(dst, x, y []float64, model Model, p [numParams]float64) float64 {
	params := paramsFromVector(p)
	for i := range x {
		dst[i] = y[i] - model.At(x[i], params)
	}
	return floats.Dot(dst, dst)
}

func jacobian(dst *mat.Dense, x []float64, model Model, p [numParams]float64) {
	params := paramsFromVector(p)
	row := make([]float64, numParams)
	for i, v := range x {
		model.gradient(row, v, params)
		dst.SetRow(i, row)
	}
}

// standardErrors estimates parameter standard errors from the covariance
// (JᵀJ)⁻¹ · SSR/(n-p) at the solution.
func standardErrors(jac *mat.Dense, x []float64, model Model, p [numParams]float64, ssr float64) Params {
	inf := math.Inf(1)
	unknown := Params{Frequency: inf, Phase: inf, VerticalShift: inf}

	n := len(x)
	if n <= numParams {
		return unknown
	}

	jacobian(jac, x, model, p)
	jtj := mat.NewSymDense(numParams, nil)
	jtj.SymOuterK(1, jac.T())

	var chol mat.Cholesky
	if ok := chol.Factorize(jtj); !ok {
		return unknown
	}
	var cov mat.SymDense
	if err := chol.InverseTo(&cov); err != nil {
		return unknown
	}

	scale := ssr / float64(n-numParams)
	var se [numParams]float64
	for i := range numParams {
		v := cov.At(i, i) * scale
		if v < 0 || !isFinite(v) {
			se[i] = inf
			continue
		}
		se[i] = math.Sqrt(v)
	}

	return paramsFromVector(se)
}

func maxDiag(s *mat.SymDense) float64 {
	m := 0.0
	for i := range s.SymmetricDim() {
		m = math.Max(m, s.At(i, i))
	}
	return m
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func allFinite(values []float64) bool {
	for _, v := range values {
		if !isFinite(v) {
			return false
		}
	}
	return true
}
