package telescope

import "fmt"

// TelescopeEvent holds the reference tracker record of one event.
// Every slice has one entry per reconstructed track.
type TelescopeEvent struct {
	XPos []float64
	YPos []float64
	DxDz []float64
	DyDz []float64
	Chi2 []float64
	Ndof []float64
}

func (t *TelescopeEvent) NTracks() int {
	return len(t.XPos)
}

// Fei4Event holds the pixel hits of the device under test.
type Fei4Event struct {
	NPixHits int
	Col      []int
	Row      []int
}

type Event struct {
	Entry     int64
	Telescope TelescopeEvent
	Fei4      Fei4Event
}

type Track struct {
	ID   int
	XPos float64
	YPos float64
	DxDz float64
	DyDz float64
	Chi2 float64
	Ndof float64
}

type Hit struct {
	Col int
	Row int
}

// Track builds the i-th track of the event.
func (t *TelescopeEvent) Track(i int) Track {
	return Track{
		ID:   i,
		XPos: t.XPos[i],
		YPos: t.YPos[i],
		DxDz: t.DxDz[i],
		DyDz: t.DyDz[i],
		Chi2: t.Chi2[i],
		Ndof: t.Ndof[i],
	}
}

// Hits returns the first NPixHits hits of the event.
func (f *Fei4Event) Hits() []Hit {
	hits := make([]Hit, f.NPixHits)
	for i := 0; i < f.NPixHits; i++ {
		hits[i] = Hit{Col: f.Col[i], Row: f.Row[i]}
	}
	return hits
}

func (e *Event) Reset() {
	e.Entry = 0
	e.Telescope = TelescopeEvent{}
	e.Fei4 = Fei4Event{}
}

// Validate checks that the parallel collections of the event agree.
func (e *Event) Validate() error {
	n := len(e.Telescope.XPos)
	tel := e.Telescope
	if len(tel.YPos) != n || len(tel.DxDz) != n || len(tel.DyDz) != n ||
		len(tel.Chi2) != n || len(tel.Ndof) != n {
		reason := fmt.Sprintf("track collections differ in length (xPos=%d yPos=%d dxdz=%d dydz=%d chi2=%d ndof=%d)",
			n, len(tel.YPos), len(tel.DxDz), len(tel.DyDz), len(tel.Chi2), len(tel.Ndof))
		return &ErrMalformedEvent{Entry: e.Entry, Reason: reason}
	}
	fei4 := e.Fei4
	if fei4.NPixHits < 0 || fei4.NPixHits > len(fei4.Col) || fei4.NPixHits > len(fei4.Row) {
		reason := fmt.Sprintf("nPixHits=%d with %d columns and %d rows", fei4.NPixHits, len(fei4.Col), len(fei4.Row))
		return &ErrMalformedEvent{Entry: e.Entry, Reason: reason}
	}
	return nil
}
