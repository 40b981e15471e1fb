package config

import "errors"

var (
	// ErrRelativePath is returned when a configured path is not absolute.
	ErrRelativePath = errors.New("path must be absolute")
	// ErrInvalidGrace is returned for a negative staging grace period.
	ErrInvalidGrace = errors.New("staging grace must not be negative")
	// ErrOverlappingDirs is returned when the staging area sits inside the vault.
	ErrOverlappingDirs = errors.New("staging directory must be outside the vault")
)
