package telescope

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/optimize"
)

// ErrNoGeometry is returned when the conditions DB has no DUT geometry for a run.
var ErrNoGeometry = errors.New("no DUT geometry for run")

// ErrOpenFile represents an error when opening a file.
type ErrOpenFile struct {
	Filename string
	Err      error
}

func (e *ErrOpenFile) Error() string {
	return fmt.Sprintf("error opening file %q: %v", e.Filename, e.Err)
}

func (e *ErrOpenFile) Unwrap() error { return e.Err }

// ErrTreeNotFound represents a missing or mistyped event tree in a ROOT file.
type ErrTreeNotFound struct {
	Filename string
	Tree     string
}

func (e *ErrTreeNotFound) Error() string {
	return fmt.Sprintf("tree %q not found in %q", e.Tree, e.Filename)
}

// ErrHistogramNotFound represents a lookup of a histogram that was never booked.
type ErrHistogramNotFound struct {
	Dir  string
	Name string
}

func (e *ErrHistogramNotFound) Error() string {
	return fmt.Sprintf("histogram %s/%s not found", e.Dir, e.Name)
}

// ErrHistogramExists represents booking the same histogram twice.
type ErrHistogramExists struct {
	Dir  string
	Name string
}

func (e *ErrHistogramExists) Error() string {
	return fmt.Sprintf("histogram %s/%s already booked", e.Dir, e.Name)
}

// ErrFitFailed represents a fit that could not be performed at all.
type ErrFitFailed struct {
	Function string
	Status   optimize.Status
	Err      error
}

func (e *ErrFitFailed) Error() string {
	return fmt.Sprintf("fit %s failed (status %v): %v", e.Function, e.Status, e.Err)
}

func (e *ErrFitFailed) Unwrap() error { return e.Err }

// ErrMalformedEvent represents an event whose parallel collections disagree in length.
type ErrMalformedEvent struct {
	Entry  int64
	Reason string
}

func (e *ErrMalformedEvent) Error() string {
	return fmt.Sprintf("malformed event %d: %s", e.Entry, e.Reason)
}
