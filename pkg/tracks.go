package telescope

import "math"

// Tolerance window used to decide that two telescope tracks are the same particle.
const (
	DuplicateToleranceX = 4 * 0.072
	DuplicateToleranceY = 4 * 0.015
)

// RemoveTrackDuplicates compares all track pairs of the event and keeps,
// in order, the tracks that have no later track inside the tolerance window.
// Within a cluster of near-identical tracks the last one survives.
func RemoveTrackDuplicates(tel *TelescopeEvent) []Track {
	n := tel.NTracks()
	tracks := make([]Track, 0, n)
	for i := 0; i < n; i++ {
		if hasLaterDuplicate(tel.XPos, tel.YPos, i) {
			continue
		}
		tracks = append(tracks, tel.Track(i))
	}
	return tracks
}

// RemoveDuplicates applies the same rule to already built tracks.
func RemoveDuplicates(in []Track) []Track {
	xs := make([]float64, len(in))
	ys := make([]float64, len(in))
	for i, t := range in {
		xs[i] = t.XPos
		ys[i] = t.YPos
	}
	out := make([]Track, 0, len(in))
	for i, t := range in {
		if hasLaterDuplicate(xs, ys, i) {
			continue
		}
		out = append(out, t)
	}
	return out
}

func hasLaterDuplicate(xs, ys []float64, i int) bool {
	for j := i + 1; j < len(xs); j++ {
		if math.Abs(ys[i]-ys[j]) < DuplicateToleranceY && math.Abs(xs[i]-xs[j]) < DuplicateToleranceX {
			return true
		}
	}
	return false
}
