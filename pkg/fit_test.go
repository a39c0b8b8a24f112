package telescope

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go-hep.org/x/hep/hbook"
)

// fillShape fills h with the rounded value of f at every bin center.
func fillShape(h *hbook.H1D, f func(float64) float64) {
	for _, bin := range h.Binning.Bins {
		x := bin.XMid()
		n := int(math.Round(f(x)))
		for i := 0; i < n; i++ {
			h.Fill(x, 1)
		}
	}
}

func TestModeCenter(t *testing.T) {
	h := hbook.NewH1D(10, 0, 10)
	for i := 0; i < 5; i++ {
		h.Fill(3.5, 1)
	}
	h.Fill(7.5, 1)
	assert.Equal(t, 4., ModeCenter(h))
}

func TestStepGausShift(t *testing.T) {
	ps := []float64{0.25, 0.001, 100, 2, 0.1}
	assert.InDelta(t, 102, StepGausShift(0.1, ps), 1e-9)
	assert.InDelta(t, 2, StepGausShift(0.5, ps), 1e-9)
	assert.InDelta(t, 52, StepGausShift(0.1+0.125, ps), 1e-9)

	// zero smearing is a sharp box
	ps[1] = 0
	assert.InDelta(t, 102, StepGausShift(0.0, ps), 1e-9)
	assert.False(t, math.IsNaN(StepGausShift(0.1+0.125, ps)))
}

func TestFitGaussian(t *testing.T) {
	h := hbook.NewH1D(400, -1, 1)
	fillShape(h, func(x float64) float64 {
		return Gaus(x, []float64{1000, 0.1, 0.05})
	})

	res, err := FitGaussian(h, -0.2, 0.4)
	require.NoError(t, err)
	g := res.Gaus()
	assert.True(t, res.Converged)
	assert.InDelta(t, 0.1, g.Mean, 0.005)
	assert.InDelta(t, 0.05, g.Sigma, 0.005)
	assert.InDelta(t, 1000, g.Height, 50)
	assert.Equal(t, -0.2, res.Lo)
	assert.Equal(t, 0.4, res.Hi)
	assert.Greater(t, res.NDF, 0)
}

func TestFitGaussianEmpty(t *testing.T) {
	h := hbook.NewH1D(100, -1, 1)
	_, err := FitGaussian(h, -0.3, 0.3)
	var fitErr *ErrFitFailed
	assert.True(t, errors.As(err, &fitErr))
}

func TestFitStepGausRespectsLimits(t *testing.T) {
	h := hbook.NewH1D(400, -1, 1)
	fillShape(h, func(x float64) float64 {
		return StepGausShift(x, []float64{0.25, 0.01, 500, 0, 0.05})
	})

	init := StepGausParams{Pitch: 0.2, Sigma: 0.003, Amplitude: 450, Center: 0.0}
	limits := StepGausLimits(300)
	res, err := FitStepGaus(h, -0.4, 0.5, init, limits)
	require.NoError(t, err)
	p := res.StepGaus()
	assert.LessOrEqual(t, p.Amplitude, 300.)
	assert.GreaterOrEqual(t, p.Background, 0.)
	assert.LessOrEqual(t, p.Pitch, 0.4)
}

func TestFitResidualStep(t *testing.T) {
	h := hbook.NewH1D(400, -1, 1)
	fillShape(h, func(x float64) float64 {
		return StepGausShift(x, []float64{0.25, 0.01, 500, 0, 0.05})
	})

	rf, err := FitResidual(h, 0.25)
	require.NoError(t, err)
	assert.InDelta(t, 0.05, rf.Gaus.Gaus().Mean, 0.01)

	p := rf.Step.StepGaus()
	assert.InDelta(t, 0.05, p.Center, 0.005)
	assert.InDelta(t, 0.25, p.Pitch, 0.01)
	assert.InDelta(t, 500, p.Amplitude, 25)
	assert.True(t, rf.Converged())
}

func TestAlignmentResultParameters(t *testing.T) {
	result := AlignmentResult{
		X: ResidualFit{
			Gaus: FitResult{Params: []float64{1, 2, 3}, Converged: true},
			Step: FitResult{Params: []float64{0.26, 0.01, 100, 0, 0.03}, Converged: true},
		},
		Y: ResidualFit{
			Gaus: FitResult{Params: []float64{1, 2, 3}, Converged: true},
			Step: FitResult{Params: []float64{0.049, 0.002, 100, 0, -0.01}, Converged: false},
		},
	}
	assert.Equal(t, AlignmentParameters{OffsetX: 0.03, OffsetY: -0.01, PitchX: 0.26, PitchY: 0.049}, result.Parameters())
	assert.False(t, result.Converged())
	assert.Equal(t, Offset{X: 0.03, Y: -0.01}, result.Parameters().Offset())
}
