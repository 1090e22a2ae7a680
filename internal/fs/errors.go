package fs

import "errors"

var (
	// ErrNotFound is returned when a root or entry id is unknown to the source.
	ErrNotFound = errors.New("entry not found")
	// ErrExists is returned when a mutation would overwrite an existing path.
	ErrExists = errors.New("entry already exists")
	// ErrOutsideRoot is returned for paths that escape their root.
	ErrOutsideRoot = errors.New("path outside root")
)
