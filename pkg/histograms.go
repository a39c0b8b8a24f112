package telescope

import (
	"errors"
	"fmt"
	"strings"

	"go-hep.org/x/hep/groot"
	"go-hep.org/x/hep/groot/rhist"
	"go-hep.org/x/hep/groot/riofs"
	"go-hep.org/x/hep/hbook"
	"golang.org/x/exp/slices"
)

// HistogramStore owns every booked histogram, keyed by directory and name.
type HistogramStore struct {
	h1     map[string]*hbook.H1D
	h2     map[string]*hbook.H2D
	closed bool
}

func NewHistogramStore() *HistogramStore {
	return &HistogramStore{
		h1: make(map[string]*hbook.H1D),
		h2: make(map[string]*hbook.H2D),
	}
}

func histKey(dir, name string) string {
	return dir + "/" + name
}

func splitKey(key string) (string, string) {
	i := strings.LastIndex(key, "/")
	return key[:i], key[i+1:]
}

func (s *HistogramStore) exists(key string) bool {
	_, ok1 := s.h1[key]
	_, ok2 := s.h2[key]
	return ok1 || ok2
}

func (s *HistogramStore) Book1D(dir, name string, nbins int, xlow, xhigh float64) (*hbook.H1D, error) {
	key := histKey(dir, name)
	if s.exists(key) {
		return nil, &ErrHistogramExists{Dir: dir, Name: name}
	}
	h := hbook.NewH1D(nbins, xlow, xhigh)
	h.Annotation()["name"] = name
	s.h1[key] = h
	return h, nil
}

func (s *HistogramStore) Book2D(dir, name string, nx int, xlow, xhigh float64, ny int, ylow, yhigh float64) (*hbook.H2D, error) {
	key := histKey(dir, name)
	if s.exists(key) {
		return nil, &ErrHistogramExists{Dir: dir, Name: name}
	}
	h := hbook.NewH2D(nx, xlow, xhigh, ny, ylow, yhigh)
	h.Annotation()["name"] = name
	s.h2[key] = h
	return h, nil
}

// Hist1D looks up a booked 1D histogram.
func (s *HistogramStore) Hist1D(dir, name string) (*hbook.H1D, error) {
	h, ok := s.h1[histKey(dir, name)]
	if !ok {
		return nil, &ErrHistogramNotFound{Dir: dir, Name: name}
	}
	return h, nil
}

// Hist2D looks up a booked 2D histogram.
func (s *HistogramStore) Hist2D(dir, name string) (*hbook.H2D, error) {
	h, ok := s.h2[histKey(dir, name)]
	if !ok {
		return nil, &ErrHistogramNotFound{Dir: dir, Name: name}
	}
	return h, nil
}

func (s *HistogramStore) Fill1D(dir, name string, x float64) error {
	h, err := s.Hist1D(dir, name)
	if err != nil {
		return err
	}
	h.Fill(x, 1)
	return nil
}

func (s *HistogramStore) Fill2D(dir, name string, x, y float64) error {
	h, err := s.Hist2D(dir, name)
	if err != nil {
		return err
	}
	h.Fill(x, y, 1)
	return nil
}

// Names returns the sorted "dir/name" keys of all booked histograms.
func (s *HistogramStore) Names() []string {
	names := make([]string, 0, len(s.h1)+len(s.h2))
	for key := range s.h1 {
		names = append(names, key)
	}
	for key := range s.h2 {
		names = append(names, key)
	}
	slices.Sort(names)
	return names
}

// Save writes every histogram into a ROOT file, one directory per analysis.
func (s *HistogramStore) Save(filename string) error {
	if s.closed {
		return errors.New("histogram store is closed")
	}
	f, err := groot.Create(filename)
	if err != nil {
		return &ErrOpenFile{Filename: filename, Err: err}
	}

	var errs []error
	dirs := make(map[string]riofs.Directory)
	for _, key := range s.Names() {
		dirName, name := splitKey(key)
		dir, ok := dirs[dirName]
		if !ok {
			dir, err = riofs.Dir(f).Mkdir(dirName)
			if err != nil {
				errs = append(errs, fmt.Errorf("error creating directory %q: %w", dirName, err))
				break
			}
			dirs[dirName] = dir
		}
		if h, ok := s.h1[key]; ok {
			err = dir.Put(name, rhist.NewH1DFrom(h))
		} else {
			err = dir.Put(name, rhist.NewH2DFrom(s.h2[key]))
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("error writing histogram %q: %w", key, err))
		}
	}

	if err := f.Close(); err != nil {
		errs = append(errs, fmt.Errorf("error closing file %q: %w", filename, err))
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	logger.Info(fmt.Sprintf("Wrote %d histograms to %s", len(s.h1)+len(s.h2), filename), "histograms")
	return nil
}

// Close releases the histograms; further lookups fail.
func (s *HistogramStore) Close() {
	s.h1 = make(map[string]*hbook.H1D)
	s.h2 = make(map[string]*hbook.H2D)
	s.closed = true
}

type histo1DDef struct {
	name  string
	nbins int
	xlow  float64
	xhigh float64
}

type histo2DDef struct {
	name  string
	nx    int
	xlow  float64
	xhigh float64
	ny    int
	ylow  float64
	yhigh float64
}

const AnalysisDir = "TelescopeAnalysis"

var telescopeHistos1D = []histo1DDef{
	{"nhitsFei4", 20, -0.5, 19.5},
	{"nTrack", 20, -0.5, 19.5},
	{"TkXPos", 400, -20., 20.},
	{"TkYPos", 400, -20., 20.},
	{"HtColumn", 80, 0.5, 80.5},
	{"HtRow", 336, 0.5, 336.5},
	{"HtXPos", 400, -20., 20.},
	{"HtYPos", 400, -20., 20.},
	{"deltaXPos", 4000, -10., 10.},
	{"deltaYPos", 4000, -10., 10.},
	{"deltaXPos_trkfei4", 400, -1., 1.},
	{"deltaYPos_trkfei4", 400, -1., 1.},
	{"deltaXPos_trkfei4Raw", 4000, -10., 10.},
	{"deltaYPos_trkfei4Raw", 4000, -10., 10.},
	{"deltaXPos_trkfei4M", 400, -1., 1.},
	{"deltaYPos_trkfei4M", 400, -1., 1.},
	{"TkXPosMatched", 400, -20., 20.},
	{"TkYPosMatched", 400, -20., 20.},
}

var telescopeHistos2D = []histo2DDef{
	{"tkXPosVsHtXPos", 200, -20., 20., 200, -20., 20.},
	{"tkYPosVsHtYPos", 200, -20., 20., 200, -20., 20.},
}

// BookTelescopeAnalysisHistograms books every histogram filled by the two passes.
func BookTelescopeAnalysisHistograms(s *HistogramStore) error {
	for _, def := range telescopeHistos1D {
		if _, err := s.Book1D(AnalysisDir, def.name, def.nbins, def.xlow, def.xhigh); err != nil {
			return err
		}
	}
	for _, def := range telescopeHistos2D {
		if _, err := s.Book2D(AnalysisDir, def.name, def.nx, def.xlow, def.xhigh, def.ny, def.ylow, def.yhigh); err != nil {
			return err
		}
	}
	return nil
}
