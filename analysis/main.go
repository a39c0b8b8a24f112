package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	sqlx "github.com/jmoiron/sqlx"
	telescope "github.com/tbeam/telescope_go/pkg"
)

var dbConn *sqlx.DB
var configuration telescope.Configuration

var (
	logger         Logger
	VerbosityLevel int
)

func init() {
	opts := &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}
	handlerStdOut := NewHandler(os.Stdout, opts)
	handlerStdErr := slog.NewJSONHandler(os.Stderr, opts)
	logger = Logger{
		InfoLog:  slog.New(handlerStdOut),
		ErrorLog: slog.New(handlerStdErr),
	}
}

func main() {
	configFilename := flag.String("config", "", "Configuration file path")
	flag.Parse()

	if err := run(*configFilename); err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}
}

func run(configFilename string) error {
	var err error
	configuration, err = telescope.LoadConfiguration(configFilename)
	if err != nil {
		return fmt.Errorf("Error reading configuration file: %w", err)
	}
	telescope.SetConfiguration(configuration)
	telescope.SetLogger(logger)

	VerbosityLevel = configuration.Verbosity
	if VerbosityLevel > 0 {
		message := fmt.Sprintf("Reading configuration file: %s", configFilename)
		logger.Info(message, "main")
		telescope.PrintConfiguration(configuration, logger)
	}

	geometry := telescope.Fei4Geometry
	if !configuration.NoDB {
		dbConn, err = telescope.ConnectToDatabase(configuration.User, configuration.Passwd, configuration.Host, configuration.DBName)
		if err != nil {
			return fmt.Errorf("Error connection to database: %w", err)
		}
		defer dbConn.Close()

		geometry, err = telescope.LoadGeometry(dbConn, configuration.RunNumber)
		if errors.Is(err, telescope.ErrNoGeometry) {
			logger.Info(fmt.Sprintf("%v, using default FEI4 geometry", err), "main")
		} else if err != nil {
			return fmt.Errorf("Error reading geometry: %w", err)
		}
	}

	source, err := telescope.OpenEventSource(configuration)
	if err != nil {
		return fmt.Errorf("Error opening event source: %w", err)
	}
	defer source.Close()

	hists := telescope.NewHistogramStore()
	defer hists.Close()

	start := time.Now()
	analysis := telescope.NewAnalysis(source, hists, geometry, configuration)
	result, err := analysis.Run()
	if err != nil {
		return err
	}

	if configuration.FileOut != "" {
		if err := hists.Save(configuration.FileOut); err != nil {
			return fmt.Errorf("Error saving histograms: %w", err)
		}
	}

	if configuration.SaveAlignment && dbConn != nil {
		if err := telescope.SaveAlignment(dbConn, configuration.RunNumber, result); err != nil {
			return err
		}
		logger.Info(fmt.Sprintf("Alignment for run %d stored", configuration.RunNumber), "main")
	}

	params := result.Parameters()
	logger.Info(fmt.Sprintf("Alignment: offsetX=%g offsetY=%g pitchX=%g pitchY=%g converged=%t",
		params.OffsetX, params.OffsetY, params.PitchX, params.PitchY, result.Converged()), "main")
	logger.Info(fmt.Sprintf("Total time: %d ms", time.Since(start).Milliseconds()), "main")
	return nil
}
