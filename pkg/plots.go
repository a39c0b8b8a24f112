package telescope

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"go-hep.org/x/hep/hbook"
	"go-hep.org/x/hep/hplot"
	"gonum.org/v1/plot/vg"
)

// PlotResidual draws a residual histogram with both fitted curves,
// zoomed on the step fit range.
func PlotResidual(h *hbook.H1D, rf ResidualFit, filename string) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return fmt.Errorf("failed to create plot dir: %w", err)
	}

	p := hplot.New()
	p.Title.Text = h.Name()
	p.X.Label.Text = "residual [mm]"
	p.Y.Label.Text = "entries"

	hh := hplot.NewH1D(h)
	hh.LineStyle.Color = color.Black
	p.Add(hh)

	if rf.Gaus.Params != nil {
		ps := rf.Gaus.Params
		gaus := hplot.NewFunction(func(x float64) float64 { return Gaus(x, ps) })
		gaus.XMin, gaus.XMax = rf.Gaus.Lo, rf.Gaus.Hi
		gaus.Samples = 200
		gaus.LineStyle.Color = color.RGBA{B: 255, A: 255}
		p.Add(gaus)
	}
	if rf.Step.Params != nil {
		ps := rf.Step.Params
		step := hplot.NewFunction(func(x float64) float64 { return StepGausShift(x, ps) })
		step.XMin, step.XMax = rf.Step.Lo, rf.Step.Hi
		step.Samples = 200
		step.LineStyle.Color = color.RGBA{R: 255, A: 255}
		step.LineStyle.Width = vg.Points(2)
		p.Add(step)
		p.X.Min, p.X.Max = rf.Step.Lo, rf.Step.Hi
	}

	if err := p.Save(6*vg.Inch, 4*vg.Inch, filename); err != nil {
		return fmt.Errorf("error saving plot %q: %w", filename, err)
	}
	return nil
}
