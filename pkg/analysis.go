package telescope

import (
	"errors"
	"fmt"
	"path/filepath"
)

var errStopPass = errors.New("max events reached")

// Analysis runs the two passes of the telescope/FEI4 alignment over one event source.
type Analysis struct {
	source EventSource
	hists  *HistogramStore
	geom   Geometry
	config Configuration
}

func NewAnalysis(source EventSource, hists *HistogramStore, geom Geometry, config Configuration) *Analysis {
	return &Analysis{
		source: source,
		hists:  hists,
		geom:   geom,
		config: config,
	}
}

func (a *Analysis) BookHistograms() error {
	return BookTelescopeAnalysisHistograms(a.hists)
}

// loop visits the configured entry range once, in order.
func (a *Analysis) loop(pass string, fn func(evt *Event) error) error {
	logger.Info(fmt.Sprintf("#Events=%d", a.source.NumEvents()), pass)
	err := a.source.ReadEvents(func(entry int64, evt *Event) error {
		if entry >= int64(a.config.MaxEvents) {
			return errStopPass
		}
		if entry < int64(a.config.Skip) {
			return nil
		}
		if entry%1000 == 0 {
			logger.Info(fmt.Sprintf("Events processed. %8d", entry), pass)
		}
		if err := evt.Validate(); err != nil {
			return err
		}
		return fn(evt)
	})
	if errors.Is(err, errStopPass) {
		if a.config.Verbosity > 0 {
			logger.Info("Max events reached", pass)
		}
		return nil
	}
	return err
}

func (a *Analysis) fill1D(name string, x float64) error {
	return a.hists.Fill1D(AnalysisDir, name, x)
}

func (a *Analysis) fill2D(name string, x, y float64) error {
	return a.hists.Fill2D(AnalysisDir, name, x, y)
}

// FirstPass fills the raw position and hit-centric residual distributions.
func (a *Analysis) FirstPass() error {
	return a.loop("pass1", a.firstPassEvent)
}

func (a *Analysis) firstPassEvent(evt *Event) error {
	var errs []error
	errs = append(errs, a.fill1D("nhitsFei4", float64(evt.Fei4.NPixHits)))
	errs = append(errs, a.fill1D("nTrack", float64(evt.Telescope.NTracks())))

	if evt.Fei4.NPixHits > a.config.MaxPixHits || evt.Telescope.NTracks() == 0 {
		return errors.Join(errs...)
	}

	for i := 0; i < evt.Telescope.NTracks(); i++ {
		tkX, tkY := trackFrame(evt.Telescope.Track(i))
		errs = append(errs, a.fill1D("TkXPos", tkX))
		errs = append(errs, a.fill1D("TkYPos", tkY))
	}

	tracks := RemoveTrackDuplicates(&evt.Telescope)
	hits := evt.Fei4.Hits()
	residuals := HitResiduals(tracks, hits, a.geom, Offset{})
	for i, hit := range hits {
		errs = append(errs, a.fill1D("HtColumn", float64(hit.Col)))
		errs = append(errs, a.fill1D("HtRow", float64(hit.Row)))
		xval, yval := a.geom.Position(hit)
		errs = append(errs, a.fill1D("HtXPos", xval))
		errs = append(errs, a.fill1D("HtYPos", yval))
		for _, track := range tracks {
			tkX, tkY := trackFrame(track)
			errs = append(errs, a.fill2D("tkXPosVsHtXPos", xval, tkX))
			errs = append(errs, a.fill2D("tkYPosVsHtYPos", yval, tkY))
		}
		errs = append(errs, a.fill1D("deltaXPos", residuals[i].X))
		errs = append(errs, a.fill1D("deltaYPos", residuals[i].Y))
	}
	return errors.Join(errs...)
}

// FitAlignment fits the first pass residuals. Y is perpendicular to the
// long pixel side of the DUT and is fitted first.
func (a *Analysis) FitAlignment() (AlignmentResult, error) {
	var result AlignmentResult

	hy, err := a.hists.Hist1D(AnalysisDir, "deltaYPos")
	if err != nil {
		return result, fmt.Errorf("error fitting Y residuals: %w", err)
	}
	result.Y, err = FitResidual(hy, a.geom.PitchY)
	if err != nil {
		return result, fmt.Errorf("error fitting Y residuals: %w", err)
	}

	hx, err := a.hists.Hist1D(AnalysisDir, "deltaXPos")
	if err != nil {
		return result, fmt.Errorf("error fitting X residuals: %w", err)
	}
	result.X, err = FitResidual(hx, a.geom.PitchX)
	if err != nil {
		return result, fmt.Errorf("error fitting X residuals: %w", err)
	}

	result.logSummary()
	if !result.Converged() {
		logger.Error(fmt.Sprintf("alignment fits did not all converge (X gaus=%v step=%v, Y gaus=%v step=%v)",
			result.X.Gaus.Status, result.X.Step.Status, result.Y.Gaus.Status, result.Y.Step.Status))
	}
	return result, nil
}

// SecondPass recomputes offset-corrected residuals for events with exactly one
// surviving track and fills the matched distributions.
func (a *Analysis) SecondPass(params AlignmentParameters) error {
	return a.loop("pass2", func(evt *Event) error {
		return a.secondPassEvent(evt, params)
	})
}

func (a *Analysis) secondPassEvent(evt *Event, params AlignmentParameters) error {
	if evt.Fei4.NPixHits > a.config.MaxPixHits {
		return nil
	}
	tracks := RemoveTrackDuplicates(&evt.Telescope)
	if len(tracks) != 1 {
		return nil
	}
	hits := evt.Fei4.Hits()

	var errs []error
	corrected := TrackResiduals(tracks, hits, a.geom, params.Offset())
	raw := TrackResiduals(tracks, hits, a.geom, Offset{})
	for i := range tracks {
		errs = append(errs, a.fill1D("deltaXPos_trkfei4", corrected[i].X))
		errs = append(errs, a.fill1D("deltaYPos_trkfei4", corrected[i].Y))
		errs = append(errs, a.fill1D("deltaXPos_trkfei4Raw", raw[i].X))
		errs = append(errs, a.fill1D("deltaYPos_trkfei4Raw", raw[i].Y))
		if corrected[i].Selected(params.PitchX, params.PitchY) {
			errs = append(errs, a.fill1D("deltaXPos_trkfei4M", corrected[i].X))
			errs = append(errs, a.fill1D("deltaYPos_trkfei4M", corrected[i].Y))
		}
	}
	for _, track := range SelectMatchedTracks(tracks, hits, a.geom, params) {
		tkX, tkY := trackFrame(track)
		errs = append(errs, a.fill1D("TkXPosMatched", tkX))
		errs = append(errs, a.fill1D("TkYPosMatched", tkY))
	}
	return errors.Join(errs...)
}

// Run books the histograms and executes pass 1, the alignment fit and pass 2.
func (a *Analysis) Run() (AlignmentResult, error) {
	if err := a.BookHistograms(); err != nil {
		return AlignmentResult{}, fmt.Errorf("error booking histograms: %w", err)
	}
	if err := a.FirstPass(); err != nil {
		return AlignmentResult{}, fmt.Errorf("error in first pass: %w", err)
	}
	result, err := a.FitAlignment()
	if err != nil {
		return result, err
	}
	if a.config.PlotDir != "" {
		if err := a.plotResiduals(result); err != nil {
			logger.Error(fmt.Errorf("error plotting residuals: %w", err).Error())
		}
	}
	if err := a.SecondPass(result.Parameters()); err != nil {
		return result, fmt.Errorf("error in second pass: %w", err)
	}
	return result, nil
}

func (a *Analysis) plotResiduals(result AlignmentResult) error {
	var errs []error
	for _, axis := range []struct {
		name string
		fit  ResidualFit
		file string
	}{
		{"deltaXPos", result.X, "residualX.png"},
		{"deltaYPos", result.Y, "residualY.png"},
	} {
		h, err := a.hists.Hist1D(AnalysisDir, axis.name)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		errs = append(errs, PlotResidual(h, axis.fit, filepath.Join(a.config.PlotDir, axis.file)))
	}
	return errors.Join(errs...)
}
