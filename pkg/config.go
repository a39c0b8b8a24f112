package telescope

import (
	"encoding/json"
	"fmt"
	"os"
)

type Configuration struct {
	FileIn           string `json:"file_in"`
	FileOut          string `json:"file_out"`
	InputFormat      string `json:"input_format"`
	TreeName         string `json:"tree_name"`
	MaxEvents        int    `json:"max_events"`
	Skip             int    `json:"skip"`
	Verbosity        int    `json:"verbosity"`
	MaxPixHits       int    `json:"max_pix_hits"`
	RunNumber        int    `json:"run_number"`
	NoDB             bool   `json:"no_db"`
	Host             string `json:"host"`
	User             string `json:"user"`
	Passwd           string `json:"pass"`
	DBName           string `json:"dbname"`
	SaveAlignment    bool   `json:"save_alignment"`
	PlotDir          string `json:"plot_dir"`
	CompressionLevel int    `json:"compression_level"`
	Hdf5Out          string `json:"hdf5_out"`
}

var configuration = DefaultConfiguration()

func GetConfiguration() Configuration {
	return configuration
}

func SetConfiguration(config Configuration) {
	configuration = config
}

func DefaultConfiguration() Configuration {
	return Configuration{
		InputFormat:      "",
		TreeName:         "analysisTree",
		MaxEvents:        1000000000,
		Skip:             0,
		Verbosity:        0,
		MaxPixHits:       2,
		RunNumber:        0,
		NoDB:             true,
		Host:             "localhost",
		User:             "tbreader",
		Passwd:           "readonly",
		DBName:           "TBEAM",
		SaveAlignment:    false,
		CompressionLevel: 4,
	}
}

// LoadConfiguration reads a JSON configuration on top of the defaults.
func LoadConfiguration(filename string) (Configuration, error) {
	config := DefaultConfiguration()

	data, err := os.ReadFile(filename)
	if err != nil {
		return config, err
	}
	err = json.Unmarshal(data, &config)
	if err != nil {
		return config, err
	}
	if config.MaxPixHits < 0 {
		return config, fmt.Errorf("invalid max_pix_hits: %d", config.MaxPixHits)
	}
	return config, nil
}

func PrintConfiguration(config Configuration, logger Logger) {
	logger.Info(fmt.Sprintf("File in: %s", config.FileIn), "config")
	logger.Info(fmt.Sprintf("File out: %s", config.FileOut), "config")
	logger.Info(fmt.Sprintf("Input format: %s", config.InputFormat), "config")
	logger.Info(fmt.Sprintf("Tree name: %s", config.TreeName), "config")
	logger.Info(fmt.Sprintf("Max events: %d", config.MaxEvents), "config")
	logger.Info(fmt.Sprintf("Skip: %d", config.Skip), "config")
	logger.Info(fmt.Sprintf("Verbosity: %d", config.Verbosity), "config")
	logger.Info(fmt.Sprintf("Max pixel hits: %d", config.MaxPixHits), "config")
	logger.Info(fmt.Sprintf("Run number: %d", config.RunNumber), "config")
	logger.Info(fmt.Sprintf("No DB: %t", config.NoDB), "config")
	logger.Info(fmt.Sprintf("Host: %s", config.Host), "config")
	logger.Info(fmt.Sprintf("DB name: %s", config.DBName), "config")
	logger.Info(fmt.Sprintf("Save alignment: %t", config.SaveAlignment), "config")
	logger.Info(fmt.Sprintf("Plot dir: %s", config.PlotDir), "config")
	logger.Info(fmt.Sprintf("Compression level: %d", config.CompressionLevel), "config")
	logger.Info(fmt.Sprintf("HDF5 out: %s", config.Hdf5Out), "config")
}
