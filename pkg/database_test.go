package telescope

import (
	"errors"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

const testSchema = `
CREATE TABLE DUTGeometry (
	MinRun INTEGER NOT NULL,
	MaxRun INTEGER NOT NULL,
	X0 REAL NOT NULL,
	PitchX REAL NOT NULL,
	Y0 REAL NOT NULL,
	PitchY REAL NOT NULL
);
CREATE TABLE Alignment (
	ID INTEGER PRIMARY KEY AUTOINCREMENT,
	RunNumber INTEGER NOT NULL,
	OffsetX REAL NOT NULL,
	OffsetY REAL NOT NULL,
	PitchX REAL NOT NULL,
	PitchY REAL NOT NULL,
	Converged INTEGER NOT NULL
);`

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := sqlx.Connect("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(testSchema)
	require.NoError(t, err)
	return db
}

func TestLoadGeometry(t *testing.T) {
	db := newTestDB(t)
	db.MustExec("INSERT INTO DUTGeometry VALUES (1, 100, -9.875, 0.25, -8.375, 0.05)")
	db.MustExec("INSERT INTO DUTGeometry VALUES (101, 200, -9.9, 0.25, -8.4, 0.05)")

	geom, err := LoadGeometry(db, 50)
	require.NoError(t, err)
	assert.Equal(t, Fei4Geometry, geom)

	geom, err = LoadGeometry(db, 150)
	require.NoError(t, err)
	assert.Equal(t, Geometry{X0: -9.9, PitchX: 0.25, Y0: -8.4, PitchY: 0.05}, geom)

	geom, err = LoadGeometry(db, 500)
	assert.True(t, errors.Is(err, ErrNoGeometry))
	assert.Equal(t, Fei4Geometry, geom)
}

func TestSaveAndLoadAlignment(t *testing.T) {
	db := newTestDB(t)

	first := AlignmentResult{
		X: ResidualFit{Step: FitResult{Params: []float64{0.25, 0.01, 100, 0, 0.02}, Converged: true}, Gaus: FitResult{Converged: true}},
		Y: ResidualFit{Step: FitResult{Params: []float64{0.05, 0.01, 100, 0, -0.01}, Converged: true}, Gaus: FitResult{Converged: true}},
	}
	require.NoError(t, SaveAlignment(db, 7, first))

	second := first
	second.X.Step = FitResult{Params: []float64{0.26, 0.01, 100, 0, 0.03}, Converged: false}
	require.NoError(t, SaveAlignment(db, 7, second))
	require.NoError(t, SaveAlignment(db, 8, first))

	entry, err := LoadAlignment(db, 7)
	require.NoError(t, err)
	assert.Equal(t, 7, entry.RunNumber)
	assert.Equal(t, second.Parameters(), entry.AlignmentParameters)
	assert.False(t, entry.Converged)

	entry, err = LoadAlignment(db, 8)
	require.NoError(t, err)
	assert.Equal(t, first.Parameters(), entry.AlignmentParameters)
	assert.True(t, entry.Converged)

	_, err = LoadAlignment(db, 9)
	assert.Error(t, err)
}
