package telescope

import "fmt"

// AlignmentParameters is what the first pass hands to the second one.
type AlignmentParameters struct {
	OffsetX float64 `db:"OffsetX"`
	OffsetY float64 `db:"OffsetY"`
	PitchX  float64 `db:"PitchX"`
	PitchY  float64 `db:"PitchY"`
}

func (p AlignmentParameters) Offset() Offset {
	return Offset{X: p.OffsetX, Y: p.OffsetY}
}

type AlignmentResult struct {
	X ResidualFit
	Y ResidualFit
}

// Parameters takes offsets and pitches from the step fits.
func (r AlignmentResult) Parameters() AlignmentParameters {
	x := r.X.Step.StepGaus()
	y := r.Y.Step.StepGaus()
	return AlignmentParameters{
		OffsetX: x.Center,
		OffsetY: y.Center,
		PitchX:  x.Pitch,
		PitchY:  y.Pitch,
	}
}

func (r AlignmentResult) Converged() bool {
	return r.X.Converged() && r.Y.Converged()
}

func (r AlignmentResult) logSummary() {
	gx, gy := r.X.Gaus.Gaus(), r.Y.Gaus.Gaus()
	logger.Info("Summary of the Gaussian fits to the residuals:", "alignment")
	logger.Info(fmt.Sprintf("Residual X>>>Mean=%g>>>Sigma=%g", gx.Mean, gx.Sigma), "alignment")
	logger.Info(fmt.Sprintf("Residual Y>>>Mean=%g>>>Sigma=%g", gy.Mean, gy.Sigma), "alignment")

	sx, sy := r.X.Step.StepGaus(), r.Y.Step.StepGaus()
	logger.Info("Summary of the step convolved with Gauss fits to the residuals:", "alignment")
	logger.Info(fmt.Sprintf("Residual X>>>Mean=%g>>>Pitch=%g>>>Chi2/NDF=%g/%d", sx.Center, sx.Pitch, r.X.Step.Chi2, r.X.Step.NDF), "alignment")
	logger.Info(fmt.Sprintf("Residual Y>>>Mean=%g>>>Pitch=%g>>>Chi2/NDF=%g/%d", sy.Center, sy.Pitch, r.Y.Step.Chi2, r.Y.Step.NDF), "alignment")
}
