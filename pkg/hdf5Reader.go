package telescope

import (
	"fmt"

	hdf5 "github.com/jmbenlloch/go-hdf5"
)

// HDF5EventSource loads the event tables of a file written by Writer.
type HDF5EventSource struct {
	Filename string
	events   []EventInfoHDF5
	tracks   []TrackHDF5
	hits     []HitHDF5
}

func OpenHDF5EventSource(filename string) (*HDF5EventSource, error) {
	f, err := hdf5.OpenFile(filename, hdf5.F_ACC_RDONLY)
	if err != nil {
		return nil, &ErrOpenFile{Filename: filename, Err: err}
	}
	defer f.Close()

	src := &HDF5EventSource{Filename: filename}

	runGroup, err := f.OpenGroup(RunGroupName)
	if err != nil {
		return nil, fmt.Errorf("error opening group %q: %w", RunGroupName, err)
	}
	defer runGroup.Close()
	if src.events, err = readTable[EventInfoHDF5](runGroup, EventsTableName); err != nil {
		return nil, err
	}

	telGroup, err := f.OpenGroup(TelescopeGroupName)
	if err != nil {
		return nil, fmt.Errorf("error opening group %q: %w", TelescopeGroupName, err)
	}
	defer telGroup.Close()
	if src.tracks, err = readTable[TrackHDF5](telGroup, TracksTableName); err != nil {
		return nil, err
	}

	fei4Group, err := f.OpenGroup(Fei4GroupName)
	if err != nil {
		return nil, fmt.Errorf("error opening group %q: %w", Fei4GroupName, err)
	}
	defer fei4Group.Close()
	if src.hits, err = readTable[HitHDF5](fei4Group, HitsTableName); err != nil {
		return nil, err
	}

	if err := src.checkCounts(); err != nil {
		return nil, err
	}
	if configuration.Verbosity > 0 {
		message := fmt.Sprintf("Read %d events, %d tracks, %d hits from %s", len(src.events), len(src.tracks), len(src.hits), filename)
		logger.Info(message, "hdf5reader")
	}
	return src, nil
}

func (h *HDF5EventSource) checkCounts() error {
	nTracks, nHits := 0, 0
	for _, info := range h.events {
		nTracks += int(info.n_tracks)
		nHits += int(info.n_hits)
	}
	if nTracks != len(h.tracks) || nHits != len(h.hits) {
		return fmt.Errorf("inconsistent event tables in %q: events announce %d tracks and %d hits, tables hold %d and %d",
			h.Filename, nTracks, nHits, len(h.tracks), len(h.hits))
	}
	return nil
}

func (h *HDF5EventSource) NumEvents() int64 {
	return int64(len(h.events))
}

func (h *HDF5EventSource) ReadEvents(fn func(entry int64, evt *Event) error) error {
	trackPos, hitPos := 0, 0
	var evt Event
	for i, info := range h.events {
		evt.Reset()
		evt.Entry = int64(i)

		nTracks := int(info.n_tracks)
		tel := TelescopeEvent{
			XPos: make([]float64, nTracks),
			YPos: make([]float64, nTracks),
			DxDz: make([]float64, nTracks),
			DyDz: make([]float64, nTracks),
			Chi2: make([]float64, nTracks),
			Ndof: make([]float64, nTracks),
		}
		for j, tk := range h.tracks[trackPos : trackPos+nTracks] {
			tel.XPos[j] = tk.x
			tel.YPos[j] = tk.y
			tel.DxDz[j] = tk.dxdz
			tel.DyDz[j] = tk.dydz
			tel.Chi2[j] = tk.chi2
			tel.Ndof[j] = tk.ndof
		}
		trackPos += nTracks

		nHits := int(info.n_hits)
		fei4 := Fei4Event{
			NPixHits: nHits,
			Col:      make([]int, nHits),
			Row:      make([]int, nHits),
		}
		for j, hit := range h.hits[hitPos : hitPos+nHits] {
			fei4.Col[j] = int(hit.col)
			fei4.Row[j] = int(hit.row)
		}
		hitPos += nHits

		evt.Telescope = tel
		evt.Fei4 = fei4
		if err := fn(int64(i), &evt); err != nil {
			return err
		}
	}
	return nil
}

func (h *HDF5EventSource) Close() error {
	return nil
}
