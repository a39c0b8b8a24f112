package telescope

import (
	"errors"
	"fmt"
	"math"

	"go-hep.org/x/hep/fit"
	"go-hep.org/x/hep/hbook"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize"
	"gonum.org/v1/gonum/stat"
)

// Half width of the Gaussian window around the most populated bin.
const gausWindow = 0.3

// The step fit range is this many Gaussian sigmas around the Gaussian mean.
const stepWindowSigmas = 5.

// Limits bounds one fit parameter.
type Limits struct {
	Min float64
	Max float64
}

func (l Limits) clamp(v float64) float64 {
	return math.Max(l.Min, math.Min(l.Max, v))
}

// FitResult is the outcome of one chi-square fit over the bins of [Lo, Hi].
type FitResult struct {
	Function  string
	Params    []float64
	Chi2      float64
	NDF       int
	Status    optimize.Status
	Converged bool
	Lo        float64
	Hi        float64
}

type GausParams struct {
	Height float64
	Mean   float64
	Sigma  float64
}

type StepGausParams struct {
	Pitch      float64
	Sigma      float64
	Amplitude  float64
	Background float64
	Center     float64
}

func (p StepGausParams) slice() []float64 {
	return []float64{p.Pitch, p.Sigma, p.Amplitude, p.Background, p.Center}
}

func (r FitResult) Gaus() GausParams {
	return GausParams{Height: r.Params[0], Mean: r.Params[1], Sigma: r.Params[2]}
}

func (r FitResult) StepGaus() StepGausParams {
	return StepGausParams{
		Pitch:      r.Params[0],
		Sigma:      r.Params[1],
		Amplitude:  r.Params[2],
		Background: r.Params[3],
		Center:     r.Params[4],
	}
}

// Gaus is exp(-0.5*((x-mean)/sigma)^2) scaled by the height, ps = (height, mean, sigma).
func Gaus(x float64, ps []float64) float64 {
	v := (x - ps[1]) / ps[2]
	return ps[0] * math.Exp(-0.5*v*v)
}

// StepGausShift is a box of full width ps[0] centered on ps[4], with edges smeared
// by a Gaussian of width ps[1], scaled by ps[2] on top of a flat background ps[3].
func StepGausShift(x float64, ps []float64) float64 {
	half := ps[0] / 2.
	sigma := math.Max(ps[1], 1e-9) * math.Sqrt2
	step := math.Erf((x-ps[4]+half)/sigma) - math.Erf((x-ps[4]-half)/sigma)
	return ps[3] + ps[2]*0.5*step
}

type binPoints struct {
	x   []float64
	y   []float64
	err []float64
}

// pointsInRange collects the non-empty bins whose center lies in [lo, hi].
func pointsInRange(h *hbook.H1D, lo, hi float64) binPoints {
	var pts binPoints
	for _, bin := range h.Binning.Bins {
		x := bin.XMid()
		if x < lo || x > hi {
			continue
		}
		if bin.SumW() == 0 {
			continue
		}
		pts.x = append(pts.x, x)
		pts.y = append(pts.y, bin.SumW())
		pts.err = append(pts.err, math.Sqrt(bin.SumW2()))
	}
	return pts
}

func binContents(h *hbook.H1D) []float64 {
	contents := make([]float64, len(h.Binning.Bins))
	for i, bin := range h.Binning.Bins {
		contents[i] = bin.SumW()
	}
	return contents
}

// ModeCenter returns the upper edge of the most populated bin.
func ModeCenter(h *hbook.H1D) float64 {
	nbins := len(h.Binning.Bins)
	width := (h.XMax() - h.XMin()) / float64(nbins)
	maxBin := floats.MaxIdx(binContents(h)) + 1
	return float64(maxBin)*width + h.XMin()
}

// MaximumInRange returns the largest bin content with bin center in [lo, hi].
func MaximumInRange(h *hbook.H1D, lo, hi float64) float64 {
	pts := pointsInRange(h, lo, hi)
	if len(pts.y) == 0 {
		return 0
	}
	return floats.Max(pts.y)
}

func fitPoints(name string, f func(float64, []float64) float64, init []float64, limits []Limits, pts binPoints) (FitResult, error) {
	result := FitResult{Function: name}
	if len(pts.x) <= len(init) {
		err := fmt.Errorf("%d non-empty bins for %d parameters", len(pts.x), len(init))
		return result, &ErrFitFailed{Function: name, Status: optimize.Failure, Err: err}
	}

	clamped := func(ps []float64) []float64 {
		if limits == nil {
			return ps
		}
		out := make([]float64, len(ps))
		for i, p := range ps {
			out[i] = limits[i].clamp(p)
		}
		return out
	}

	fct := fit.Func1D{
		F: func(x float64, ps []float64) float64 {
			return f(x, clamped(ps))
		},
		N:   len(init),
		Ps:  clamped(init),
		X:   pts.x,
		Y:   pts.y,
		Err: pts.err,
	}
	settings := &optimize.Settings{MajorIterations: 20000}
	res, err := fit.Curve1D(fct, settings, &optimize.NelderMead{})
	if res == nil {
		if err == nil {
			err = errors.New("no result from minimizer")
		}
		return result, &ErrFitFailed{Function: name, Status: optimize.Failure, Err: err}
	}

	result.Params = clamped(res.X)
	result.Status = res.Status
	result.Converged = err == nil && converged(res.Status)
	result.NDF = len(pts.x) - len(init)
	for i, x := range pts.x {
		d := (f(x, result.Params) - pts.y[i]) / pts.err[i]
		result.Chi2 += d * d
	}
	if err != nil {
		logger.Error(fmt.Sprintf("fit %s did not converge: %v", name, err))
	}
	return result, nil
}

func converged(status optimize.Status) bool {
	switch status {
	case optimize.Success, optimize.MethodConverge, optimize.FunctionConvergence,
		optimize.FunctionThreshold, optimize.GradientThreshold, optimize.StepConvergence:
		return true
	}
	return false
}

// FitGaussian fits a Gaussian to the bins of h in [lo, hi], starting from the
// window's maximum, mean and standard deviation.
func FitGaussian(h *hbook.H1D, lo, hi float64) (FitResult, error) {
	pts := pointsInRange(h, lo, hi)
	if len(pts.x) == 0 {
		err := fmt.Errorf("no entries in [%g, %g]", lo, hi)
		return FitResult{Function: "gaus"}, &ErrFitFailed{Function: "gaus", Status: optimize.Failure, Err: err}
	}
	mean, sigma := stat.MeanStdDev(pts.x, pts.y)
	if math.IsNaN(sigma) || sigma <= 0 {
		sigma = (h.XMax() - h.XMin()) / float64(len(h.Binning.Bins))
	}
	init := []float64{floats.Max(pts.y), mean, sigma}
	result, err := fitPoints("gaus", Gaus, init, nil, pts)
	if err != nil {
		return result, err
	}
	result.Params[2] = math.Abs(result.Params[2])
	result.Lo, result.Hi = lo, hi
	return result, nil
}

// StepGausLimits are the parameter bounds of the step fit for a given Gaussian height.
func StepGausLimits(height float64) []Limits {
	return []Limits{
		{0., 0.4},
		{0., 1.},
		{0., height},
		{0., 50.},
		{-1., 1.},
	}
}

// FitStepGaus fits StepGausShift to the bins of h in [lo, hi].
func FitStepGaus(h *hbook.H1D, lo, hi float64, init StepGausParams, limits []Limits) (FitResult, error) {
	pts := pointsInRange(h, lo, hi)
	result, err := fitPoints("stepgaus", StepGausShift, init.slice(), limits, pts)
	if err != nil {
		return result, err
	}
	result.Lo, result.Hi = lo, hi
	return result, nil
}

// ResidualFit holds the Gaussian pre-fit and the step fit of one residual axis.
type ResidualFit struct {
	Gaus FitResult
	Step FitResult
}

func (r ResidualFit) Converged() bool {
	return r.Gaus.Converged && r.Step.Converged
}

// FitResidual runs the Gaussian fit around the most populated bin and then
// the step fit over five Gaussian sigmas.
func FitResidual(h *hbook.H1D, initialPitch float64) (ResidualFit, error) {
	var rf ResidualFit

	center := ModeCenter(h)
	gaus, err := FitGaussian(h, center-gausWindow, center+gausWindow)
	if err != nil {
		return rf, err
	}
	rf.Gaus = gaus

	g := gaus.Gaus()
	rms := stepWindowSigmas * g.Sigma
	lo, hi := g.Mean-rms, g.Mean+rms
	maximum := MaximumInRange(h, lo, hi)
	height := math.Max(g.Height, maximum)
	init := StepGausParams{
		Pitch:      initialPitch,
		Sigma:      0.003,
		Amplitude:  maximum,
		Background: 0,
		Center:     g.Mean,
	}
	step, err := FitStepGaus(h, lo, hi, init, StepGausLimits(height))
	if err != nil {
		return rf, err
	}
	rf.Step = step
	return rf, nil
}
