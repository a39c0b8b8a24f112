package telescope

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func telescopeEvent(xy ...[2]float64) TelescopeEvent {
	var tel TelescopeEvent
	for i, p := range xy {
		tel.XPos = append(tel.XPos, p[0])
		tel.YPos = append(tel.YPos, p[1])
		tel.DxDz = append(tel.DxDz, 0.001*float64(i))
		tel.DyDz = append(tel.DyDz, -0.001*float64(i))
		tel.Chi2 = append(tel.Chi2, float64(i)+1)
		tel.Ndof = append(tel.Ndof, 8)
	}
	return tel
}

func trackIDs(tracks []Track) []int {
	ids := make([]int, len(tracks))
	for i, t := range tracks {
		ids[i] = t.ID
	}
	return ids
}

func TestRemoveTrackDuplicates(t *testing.T) {
	tests := []struct {
		name string
		xy   [][2]float64
		ids  []int
	}{
		{"empty event", nil, []int{}},
		{"single track", [][2]float64{{1, 2}}, []int{0}},
		{"separated tracks are kept in order", [][2]float64{{0, 0}, {1, 0}, {0, 1}, {-3, -3}}, []int{0, 1, 2, 3}},
		{"identical tracks collapse", [][2]float64{{0.5, 0.5}, {0.5, 0.5}, {4, 4}}, []int{1, 2}},
		{"close tracks keep the later one", [][2]float64{{0, 0}, {0.01, 0.01}}, []int{1}},
		{"chain keeps only the last", [][2]float64{{0, 0}, {0.1, 0.01}, {0.2, 0.02}}, []int{2}},
		{"only x close", [][2]float64{{0, 0}, {0.1, 0.5}}, []int{0, 1}},
		{"only y close", [][2]float64{{0, 0}, {1, 0.01}}, []int{0, 1}},
		{"window edge is not a duplicate", [][2]float64{{0, 0}, {DuplicateToleranceX, 0}}, []int{0, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tel := telescopeEvent(tt.xy...)
			tracks := RemoveTrackDuplicates(&tel)
			assert.Equal(t, tt.ids, trackIDs(tracks))

			all := make([]Track, tel.NTracks())
			for i := range all {
				all[i] = tel.Track(i)
			}
			assert.Equal(t, tracks, RemoveDuplicates(all))
		})
	}
}

func TestRemoveTrackDuplicatesKeepsTrackFields(t *testing.T) {
	tel := telescopeEvent([2]float64{0, 0}, [2]float64{0.01, 0.02}, [2]float64{3, 3})
	tracks := RemoveTrackDuplicates(&tel)
	require.Len(t, tracks, 2)
	assert.Equal(t, Track{ID: 1, XPos: 0.01, YPos: 0.02, DxDz: 0.001, DyDz: -0.001, Chi2: 2, Ndof: 8}, tracks[0])
	assert.Equal(t, 2, tracks[1].ID)
}
