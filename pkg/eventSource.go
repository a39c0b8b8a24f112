package telescope

import (
	"fmt"
	"path/filepath"
	"strings"
)

// EventSource iterates over the stored events. Each call to ReadEvents is one
// full sequential pass; the event passed to fn is only valid during the call.
type EventSource interface {
	NumEvents() int64
	ReadEvents(fn func(entry int64, evt *Event) error) error
	Close() error
}

// MemoryEventSource serves events kept in memory.
type MemoryEventSource struct {
	Events []Event
}

func NewMemoryEventSource(events []Event) *MemoryEventSource {
	return &MemoryEventSource{Events: events}
}

func (m *MemoryEventSource) NumEvents() int64 {
	return int64(len(m.Events))
}

func (m *MemoryEventSource) ReadEvents(fn func(entry int64, evt *Event) error) error {
	for i := range m.Events {
		evt := m.Events[i]
		evt.Entry = int64(i)
		if err := fn(int64(i), &evt); err != nil {
			return err
		}
	}
	return nil
}

func (m *MemoryEventSource) Close() error {
	return nil
}

func inputFormat(config Configuration) (string, error) {
	format := strings.ToLower(config.InputFormat)
	if format == "" {
		switch strings.ToLower(filepath.Ext(config.FileIn)) {
		case ".root":
			format = "root"
		case ".h5", ".hdf5":
			format = "hdf5"
		default:
			return "", fmt.Errorf("cannot guess input format of %q", config.FileIn)
		}
	}
	if format != "root" && format != "hdf5" {
		return "", fmt.Errorf("unknown input format %q", config.InputFormat)
	}
	return format, nil
}

// OpenEventSource opens FileIn as a ROOT tree or an HDF5 event file.
func OpenEventSource(config Configuration) (EventSource, error) {
	format, err := inputFormat(config)
	if err != nil {
		return nil, err
	}
	switch format {
	case "hdf5":
		return OpenHDF5EventSource(config.FileIn)
	default:
		return OpenRootEventSource(config.FileIn, config.TreeName)
	}
}
