package telescope

import (
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	sqlx "github.com/jmoiron/sqlx" //make alias name the package to sqlx
)

func ConnectToDatabase(user string, pass string, host string, dbname string) (*sqlx.DB, error) {
	port := "3306"
	dbURI := fmt.Sprintf("%s:%s@(%s:%s)/%s?parseTime=true", user, pass, host, port, dbname)
	db, err := sqlx.Connect("mysql", dbURI)
	return db, err
}

// LoadGeometry reads the DUT pixel geometry valid for the run.
func LoadGeometry(db *sqlx.DB, runNumber int) (Geometry, error) {
	query := "SELECT X0, PitchX, Y0, PitchY FROM DUTGeometry WHERE MinRun <= ? and MaxRun >= ? ORDER BY MinRun DESC LIMIT 1"
	if configuration.Verbosity > 0 {
		logger.Info(fmt.Sprintf("Reading DUT geometry for run %d from database", runNumber), "database")
	}
	if configuration.Verbosity > 2 {
		logger.Info(fmt.Sprintf("Query: %s", query), "database")
	}

	var geom Geometry
	err := db.Get(&geom, db.Rebind(query), runNumber, runNumber)
	if errors.Is(err, sql.ErrNoRows) {
		return Fei4Geometry, fmt.Errorf("run %d: %w", runNumber, ErrNoGeometry)
	}
	if err != nil {
		return Fei4Geometry, fmt.Errorf("error querying database: %w", err)
	}
	return geom, nil
}

type AlignmentEntry struct {
	RunNumber int `db:"RunNumber"`
	AlignmentParameters
	Converged bool `db:"Converged"`
}

// SaveAlignment stores the fitted alignment of a run.
func SaveAlignment(db *sqlx.DB, runNumber int, result AlignmentResult) error {
	entry := AlignmentEntry{
		RunNumber:           runNumber,
		AlignmentParameters: result.Parameters(),
		Converged:           result.Converged(),
	}
	query := `INSERT INTO Alignment (RunNumber, OffsetX, OffsetY, PitchX, PitchY, Converged)
		VALUES (:RunNumber, :OffsetX, :OffsetY, :PitchX, :PitchY, :Converged)`
	if configuration.Verbosity > 2 {
		logger.Info(fmt.Sprintf("Query: %s", query), "database")
	}
	if _, err := db.NamedExec(query, entry); err != nil {
		return fmt.Errorf("error inserting alignment for run %d: %w", runNumber, err)
	}
	return nil
}

// LoadAlignment returns the latest stored alignment of a run.
func LoadAlignment(db *sqlx.DB, runNumber int) (AlignmentEntry, error) {
	query := "SELECT RunNumber, OffsetX, OffsetY, PitchX, PitchY, Converged FROM Alignment WHERE RunNumber = ? ORDER BY ID DESC LIMIT 1"
	var entry AlignmentEntry
	if err := db.Get(&entry, db.Rebind(query), runNumber); err != nil {
		return entry, fmt.Errorf("error querying alignment for run %d: %w", runNumber, err)
	}
	return entry, nil
}
