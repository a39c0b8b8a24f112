package telescope

import (
	"fmt"

	hdf5 "github.com/jmbenlloch/go-hdf5"
)

type EventInfoHDF5 struct {
	evt_number int32
	n_tracks   int32
	n_hits     int32
}

type TrackHDF5 struct {
	evt_number int32
	track_id   int32
	x          float64
	y          float64
	dxdz       float64
	dydz       float64
	chi2       float64
	ndof       float64
}

type HitHDF5 struct {
	evt_number int32
	col        int32
	row        int32
}

const (
	RunGroupName       = "Run"
	TelescopeGroupName = "Telescope"
	Fei4GroupName      = "FEI4"
	EventsTableName    = "events"
	TracksTableName    = "tracks"
	HitsTableName      = "hits"
)

func createFile(fname string) (*hdf5.File, error) {
	f, err := hdf5.CreateFile(fname, hdf5.F_ACC_TRUNC)
	if err != nil {
		return nil, &ErrOpenFile{Filename: fname, Err: err}
	}
	return f, nil
}

func createGroup(file *hdf5.File, groupName string) (*hdf5.Group, error) {
	g, err := file.CreateGroup(groupName)
	if err != nil {
		return nil, fmt.Errorf("error creating group %q: %w", groupName, err)
	}
	return g, nil
}

func createTable(group *hdf5.Group, name string, datatype interface{}) (*hdf5.Dataset, error) {
	dims := []uint{0}
	unlimitedDims := -1 // H5S_UNLIMITED is -1L
	maxDims := []uint{uint(unlimitedDims)}
	fileSpace, err := hdf5.CreateSimpleDataspace(dims, maxDims)
	if err != nil {
		return nil, fmt.Errorf("error creating dataspace for %q: %w", name, err)
	}
	defer fileSpace.Close()

	plist, err := hdf5.NewPropList(hdf5.P_DATASET_CREATE)
	if err != nil {
		return nil, fmt.Errorf("error creating property list for %q: %w", name, err)
	}
	defer plist.Close()

	chunks := []uint{32768}
	plist.SetChunk(chunks)
	plist.SetDeflate(configuration.CompressionLevel)

	dtype, err := hdf5.NewDatatypeFromValue(datatype)
	if err != nil {
		return nil, fmt.Errorf("error creating datatype for %q: %w", name, err)
	}

	dset, err := group.CreateDatasetWith(name, dtype, fileSpace, plist)
	if err != nil {
		return nil, fmt.Errorf("error creating table %q: %w", name, err)
	}
	return dset, nil
}

// writeArrayToTable appends data after the first rowCounter rows of the table.
func writeArrayToTable[T any](dataset *hdf5.Dataset, data *[]T, rowCounter int) error {
	length := uint(len(*data))
	if length == 0 {
		return nil
	}
	dims := []uint{length}
	dataspace, err := hdf5.CreateSimpleDataspace(dims, nil)
	if err != nil {
		return fmt.Errorf("error creating memory dataspace: %w", err)
	}
	defer dataspace.Close()

	rows := uint(rowCounter)
	newsize := []uint{rows + length}
	if err := dataset.Resize(newsize); err != nil {
		return fmt.Errorf("error extending table: %w", err)
	}
	filespace := dataset.Space()
	defer filespace.Close()

	start := []uint{rows}
	count := []uint{length}
	if err := filespace.SelectHyperslab(start, nil, count, nil); err != nil {
		return fmt.Errorf("error selecting rows: %w", err)
	}

	return dataset.WriteSubset(data, dataspace, filespace)
}

func readTable[T any](group *hdf5.Group, name string) ([]T, error) {
	dset, err := group.OpenDataset(name)
	if err != nil {
		return nil, fmt.Errorf("error opening table %q: %w", name, err)
	}
	defer dset.Close()

	space := dset.Space()
	dims, _, err := space.SimpleExtentDims()
	space.Close()
	if err != nil {
		return nil, fmt.Errorf("error reading dimensions of %q: %w", name, err)
	}

	data := make([]T, dims[0])
	if len(data) == 0 {
		return data, nil
	}
	if err := dset.Read(&data); err != nil {
		return nil, fmt.Errorf("error reading table %q: %w", name, err)
	}
	return data, nil
}
