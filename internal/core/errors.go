package core

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound            = errors.New("entry not found")
	ErrAmbiguousID         = errors.New("ambiguous entry id")
	ErrDestinationOccupied = errors.New("destination already exists")
	ErrPersistenceFailed   = errors.New("manifest could not be saved")
	ErrIO                  = errors.New("i/o failure")
	ErrLevelUnspecified    = errors.New("security level not set")
	ErrUnsupportedType     = errors.New("unsupported file type")
	ErrClosed              = errors.New("engine closed")
	ErrInsideVault         = errors.New("path overlaps the vault or staging directory")
)

// FileError records a failed operation on one file.
type FileError struct {
	Op   string
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return e.Op + " " + e.Path + ": " + e.Err.Error()
}

func (e *FileError) Unwrap() error {
	return e.Err
}

func fileErr(op, path string, err error) error {
	return &FileError{Op: op, Path: path, Err: err}
}

// ioErr tags err as ErrIO while keeping it inspectable.
func ioErr(err error) error {
	return fmt.Errorf("%w: %w", ErrIO, err)
}

func persistErr(err error) error {
	return fmt.Errorf("%w: %w", ErrPersistenceFailed, err)
}
