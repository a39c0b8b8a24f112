package telescope

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go-hep.org/x/hep/groot"
	"go-hep.org/x/hep/groot/rhist"
	"go-hep.org/x/hep/groot/riofs"
)

func TestHistogramStoreBookAndFill(t *testing.T) {
	s := NewHistogramStore()

	h, err := s.Book1D("dir", "h1", 10, 0, 10)
	require.NoError(t, err)
	require.NoError(t, s.Fill1D("dir", "h1", 1.5))
	require.NoError(t, s.Fill1D("dir", "h1", 2.5))
	assert.Equal(t, int64(2), h.Entries())
	assert.Equal(t, "h1", h.Name())

	h2, err := s.Book2D("dir", "h2", 4, 0, 4, 4, 0, 4)
	require.NoError(t, err)
	require.NoError(t, s.Fill2D("dir", "h2", 1, 1))
	assert.Equal(t, int64(1), h2.Entries())

	got, err := s.Hist1D("dir", "h1")
	require.NoError(t, err)
	assert.Same(t, h, got)

	assert.Equal(t, []string{"dir/h1", "dir/h2"}, s.Names())
}

func TestHistogramStoreErrors(t *testing.T) {
	s := NewHistogramStore()
	_, err := s.Book1D("dir", "h", 10, 0, 1)
	require.NoError(t, err)

	t.Run("double booking", func(t *testing.T) {
		_, err := s.Book2D("dir", "h", 2, 0, 1, 2, 0, 1)
		var exists *ErrHistogramExists
		assert.True(t, errors.As(err, &exists))
	})

	t.Run("missing 1D", func(t *testing.T) {
		h, err := s.Hist1D("dir", "missing")
		assert.Nil(t, h)
		var notFound *ErrHistogramNotFound
		require.True(t, errors.As(err, &notFound))
		assert.Equal(t, "missing", notFound.Name)
		assert.Equal(t, "dir", notFound.Dir)
	})

	t.Run("1D looked up as 2D", func(t *testing.T) {
		_, err := s.Hist2D("dir", "h")
		var notFound *ErrHistogramNotFound
		assert.True(t, errors.As(err, &notFound))
	})

	t.Run("fill unbooked", func(t *testing.T) {
		var notFound *ErrHistogramNotFound
		assert.True(t, errors.As(s.Fill1D("other", "h", 0.5), &notFound))
		assert.True(t, errors.As(s.Fill2D("dir", "h", 0.5, 0.5), &notFound))
	})

	t.Run("closed store", func(t *testing.T) {
		s.Close()
		_, err := s.Hist1D("dir", "h")
		assert.Error(t, err)
		assert.Error(t, s.Save(filepath.Join(t.TempDir(), "closed.root")))
	})
}

func TestBookTelescopeAnalysisHistograms(t *testing.T) {
	s := NewHistogramStore()
	require.NoError(t, BookTelescopeAnalysisHistograms(s))
	assert.Len(t, s.Names(), len(telescopeHistos1D)+len(telescopeHistos2D))

	for _, name := range []string{"deltaXPos", "deltaYPos", "deltaXPos_trkfei4", "deltaYPos_trkfei4M", "TkXPosMatched"} {
		_, err := s.Hist1D(AnalysisDir, name)
		assert.NoError(t, err, name)
	}
	_, err := s.Hist2D(AnalysisDir, "tkXPosVsHtXPos")
	assert.NoError(t, err)

	var exists *ErrHistogramExists
	assert.True(t, errors.As(BookTelescopeAnalysisHistograms(s), &exists))
}

func TestHistogramStoreSave(t *testing.T) {
	s := NewHistogramStore()
	require.NoError(t, BookTelescopeAnalysisHistograms(s))
	require.NoError(t, s.Fill1D(AnalysisDir, "deltaXPos", 0.1))
	require.NoError(t, s.Fill2D(AnalysisDir, "tkXPosVsHtXPos", 1, 1))

	fname := filepath.Join(t.TempDir(), "histos.root")
	require.NoError(t, s.Save(fname))
	_, err := os.Stat(fname)
	require.NoError(t, err)

	f, err := groot.Open(fname)
	require.NoError(t, err)
	defer f.Close()

	obj, err := riofs.Dir(f).Get(AnalysisDir + "/deltaXPos")
	require.NoError(t, err)
	h1, ok := obj.(rhist.H1)
	require.True(t, ok)
	assert.Equal(t, 1., h1.Entries())

	obj, err = riofs.Dir(f).Get(AnalysisDir + "/tkXPosVsHtXPos")
	require.NoError(t, err)
	_, ok = obj.(rhist.H2)
	assert.True(t, ok)
}
