package main

import (
	"errors"
	"fmt"

	telescope "github.com/tbeam/telescope_go/pkg"
)

var errMaxEvents = errors.New("max events reached")

// loadEvents copies the selected entry range of the source into memory.
func loadEvents(source telescope.EventSource, config telescope.Configuration) ([]telescope.Event, error) {
	events := make([]telescope.Event, 0, source.NumEvents())
	err := source.ReadEvents(func(entry int64, evt *telescope.Event) error {
		if entry >= int64(config.MaxEvents) {
			return errMaxEvents
		}
		if entry < int64(config.Skip) {
			return nil
		}
		if err := evt.Validate(); err != nil {
			return err
		}
		events = append(events, *evt)
		return nil
	})
	if err != nil && !errors.Is(err, errMaxEvents) {
		return nil, err
	}
	return events, nil
}

func writeEvents(events []telescope.Event, filename string) error {
	writer, err := telescope.NewWriter(filename)
	if err != nil {
		return fmt.Errorf("Error creating writer: %w", err)
	}
	for i := range events {
		if configuration.Verbosity > 1 {
			logger.Info(fmt.Sprintf("Writing event %d", events[i].Entry), "writer")
		}
		if err := writer.WriteEvent(&events[i]); err != nil {
			return errors.Join(err, writer.Close())
		}
	}
	return writer.Close()
}
