package telescope

import (
	"errors"
	"fmt"

	hdf5 "github.com/jmbenlloch/go-hdf5"
)

// Writer stores events in the HDF5 event format read by HDF5EventSource.
type Writer struct {
	File           *hdf5.File
	Filename       string
	RunGroup       *hdf5.Group
	TelescopeGroup *hdf5.Group
	Fei4Group      *hdf5.Group
	EventTable     *hdf5.Dataset
	TrackTable     *hdf5.Dataset
	HitTable       *hdf5.Dataset
	EvtCounter     int
	TrackCounter   int
	HitCounter     int
}

func NewWriter(filename string) (*Writer, error) {
	var err error
	writer := &Writer{Filename: filename}
	logger.Info(fmt.Sprintf("Creating file: %s", filename), "hdf5writer")

	writer.File, err = createFile(filename)
	if err != nil {
		return nil, err
	}
	if writer.RunGroup, err = createGroup(writer.File, RunGroupName); err != nil {
		return nil, errors.Join(err, writer.Close())
	}
	if writer.TelescopeGroup, err = createGroup(writer.File, TelescopeGroupName); err != nil {
		return nil, errors.Join(err, writer.Close())
	}
	if writer.Fei4Group, err = createGroup(writer.File, Fei4GroupName); err != nil {
		return nil, errors.Join(err, writer.Close())
	}
	if writer.EventTable, err = createTable(writer.RunGroup, EventsTableName, EventInfoHDF5{}); err != nil {
		return nil, errors.Join(err, writer.Close())
	}
	if writer.TrackTable, err = createTable(writer.TelescopeGroup, TracksTableName, TrackHDF5{}); err != nil {
		return nil, errors.Join(err, writer.Close())
	}
	if writer.HitTable, err = createTable(writer.Fei4Group, HitsTableName, HitHDF5{}); err != nil {
		return nil, errors.Join(err, writer.Close())
	}
	return writer, nil
}

func (w *Writer) WriteEvent(event *Event) error {
	if err := event.Validate(); err != nil {
		return err
	}
	evtNumber := int32(event.Entry)
	tel := event.Telescope
	nTracks := tel.NTracks()
	nHits := event.Fei4.NPixHits

	info := []EventInfoHDF5{{
		evt_number: evtNumber,
		n_tracks:   int32(nTracks),
		n_hits:     int32(nHits),
	}}
	if err := writeArrayToTable(w.EventTable, &info, w.EvtCounter); err != nil {
		return fmt.Errorf("error writing event %d: %w", event.Entry, err)
	}

	// The arrays MUST be allocated at creation, HDF5 writes from the backing memory
	tracks := make([]TrackHDF5, nTracks)
	for i := 0; i < nTracks; i++ {
		tracks[i] = TrackHDF5{
			evt_number: evtNumber,
			track_id:   int32(i),
			x:          tel.XPos[i],
			y:          tel.YPos[i],
			dxdz:       tel.DxDz[i],
			dydz:       tel.DyDz[i],
			chi2:       tel.Chi2[i],
			ndof:       tel.Ndof[i],
		}
	}
	if err := writeArrayToTable(w.TrackTable, &tracks, w.TrackCounter); err != nil {
		return fmt.Errorf("error writing tracks of event %d: %w", event.Entry, err)
	}

	hits := make([]HitHDF5, nHits)
	for i := 0; i < nHits; i++ {
		hits[i] = HitHDF5{
			evt_number: evtNumber,
			col:        int32(event.Fei4.Col[i]),
			row:        int32(event.Fei4.Row[i]),
		}
	}
	if err := writeArrayToTable(w.HitTable, &hits, w.HitCounter); err != nil {
		return fmt.Errorf("error writing hits of event %d: %w", event.Entry, err)
	}

	w.EvtCounter++
	w.TrackCounter += nTracks
	w.HitCounter += nHits
	return nil
}

func (w *Writer) Close() error {
	var errs []error

	closeDataset := func(d *hdf5.Dataset, what string) {
		if d == nil {
			return
		}
		if err := d.Close(); err != nil {
			errs = append(errs, fmt.Errorf("error closing %s: %w", what, err))
		}
	}
	closeGroup := func(g *hdf5.Group, what string) {
		if g == nil {
			return
		}
		if err := g.Close(); err != nil {
			errs = append(errs, fmt.Errorf("error closing %s: %w", what, err))
		}
	}

	closeDataset(w.EventTable, "event table")
	closeDataset(w.TrackTable, "track table")
	closeDataset(w.HitTable, "hit table")
	closeGroup(w.RunGroup, "run group")
	closeGroup(w.TelescopeGroup, "telescope group")
	closeGroup(w.Fei4Group, "FEI4 group")
	if w.File != nil {
		if err := w.File.Close(); err != nil {
			errs = append(errs, fmt.Errorf("error closing file: %w", err))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
