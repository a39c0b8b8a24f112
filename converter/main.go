package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	telescope "github.com/tbeam/telescope_go/pkg"
)

var configuration telescope.Configuration

var logger Logger

func init() {
	opts := &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}
	logger = Logger{
		InfoLog:  slog.New(NewHandler(os.Stdout, opts)),
		ErrorLog: slog.New(slog.NewJSONHandler(os.Stderr, opts)),
	}
}

func main() {
	configFilename := flag.String("config", "", "Configuration file path")
	level := flag.Int("level", -1, "Deflate compression level (overrides configuration)")
	scan := flag.Bool("scan", false, "Write the output with every compression level and report size and time")
	flag.Parse()

	var err error
	configuration, err = telescope.LoadConfiguration(*configFilename)
	if err != nil {
		message := fmt.Errorf("Error reading configuration file: %w", err)
		logger.Error(message.Error())
		os.Exit(1)
	}
	if *level >= 0 {
		configuration.CompressionLevel = *level
	}
	telescope.SetConfiguration(configuration)
	telescope.SetLogger(logger)
	if configuration.Verbosity > 0 {
		telescope.PrintConfiguration(configuration, logger)
	}
	if configuration.Hdf5Out == "" {
		logger.Error("hdf5_out must be set")
		os.Exit(1)
	}

	source, err := telescope.OpenEventSource(configuration)
	if err != nil {
		logger.Error(fmt.Errorf("Error opening event source: %w", err).Error())
		os.Exit(1)
	}
	events, err := loadEvents(source, configuration)
	source.Close()
	if err != nil {
		logger.Error(fmt.Errorf("Error reading events: %w", err).Error())
		os.Exit(1)
	}
	logger.Info(fmt.Sprintf("Total events read: %d", len(events)), "main")

	if !*scan {
		if err := writeEvents(events, configuration.Hdf5Out); err != nil {
			logger.Error(err.Error())
			os.Exit(1)
		}
		return
	}

	for compressionLevel := 0; compressionLevel < 10; compressionLevel++ {
		configuration.CompressionLevel = compressionLevel
		telescope.SetConfiguration(configuration)
		start := time.Now()
		if err := writeEvents(events, configuration.Hdf5Out); err != nil {
			logger.Error(err.Error())
			continue
		}
		duration := time.Since(start)
		fileInfo, err := os.Stat(configuration.Hdf5Out)
		if err != nil {
			logger.Error(fmt.Sprintf("Error getting file info: %v", err))
			continue
		}
		logger.Info(fmt.Sprintf("(hdf5, comp %d) Time: %d ms, size %d bytes", compressionLevel, duration.Milliseconds(), fileInfo.Size()), "scan")
	}
}
