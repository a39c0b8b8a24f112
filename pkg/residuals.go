package telescope

import "math"

// Sentinel residual before any candidate is compared.
const noResidual = 999.0

// Residual is the pair of minimum residuals found for one hit or one track.
// X and Y minima are searched independently and may come from different partners.
type Residual struct {
	X float64
	Y float64
}

// Offset is the mean shift subtracted from every residual.
type Offset struct {
	X float64
	Y float64
}

// trackFrame maps a telescope track into the DUT frame; the telescope X axis is flipped.
func trackFrame(t Track) (float64, float64) {
	return -1. * t.XPos, t.YPos
}

func updateMin(minres, candidate float64) float64 {
	if math.Abs(candidate) < math.Abs(minres) {
		return candidate
	}
	return minres
}

// HitResiduals returns, for every hit, the minimum residual over all tracks.
func HitResiduals(tracks []Track, hits []Hit, geom Geometry, offset Offset) []Residual {
	residuals := make([]Residual, 0, len(hits))
	for _, hit := range hits {
		xval, yval := geom.Position(hit)
		minres := Residual{X: noResidual, Y: noResidual}
		for _, track := range tracks {
			tkX, tkY := trackFrame(track)
			minres.X = updateMin(minres.X, xval-tkX-offset.X)
			minres.Y = updateMin(minres.Y, yval-tkY-offset.Y)
		}
		residuals = append(residuals, minres)
	}
	return residuals
}

// TrackResiduals returns, for every track, the minimum residual over all hits.
func TrackResiduals(tracks []Track, hits []Hit, geom Geometry, offset Offset) []Residual {
	residuals := make([]Residual, 0, len(tracks))
	for _, track := range tracks {
		tkX, tkY := trackFrame(track)
		minres := Residual{X: noResidual, Y: noResidual}
		for _, hit := range hits {
			xval, yval := geom.Position(hit)
			minres.X = updateMin(minres.X, xval-tkX-offset.X)
			minres.Y = updateMin(minres.Y, yval-tkY-offset.Y)
		}
		residuals = append(residuals, minres)
	}
	return residuals
}

// Selected reports whether both residuals lie strictly inside half a pitch.
func (r Residual) Selected(pitchX, pitchY float64) bool {
	return math.Abs(r.X) < pitchX/2. && math.Abs(r.Y) < pitchY/2.
}

// SelectMatchedTracks keeps the tracks whose offset-corrected residuals
// to the closest hit fall inside the fitted pitch window.
func SelectMatchedTracks(tracks []Track, hits []Hit, geom Geometry, params AlignmentParameters) []Track {
	selected := make([]Track, 0, len(tracks))
	residuals := TrackResiduals(tracks, hits, geom, params.Offset())
	for i, res := range residuals {
		if res.Selected(params.PitchX, params.PitchY) {
			selected = append(selected, tracks[i])
		}
	}
	return selected
}
