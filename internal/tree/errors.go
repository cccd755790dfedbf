package tree

import "errors"

var (
	// ErrTargetNotFound reports that the traversal target does not exist.
	ErrTargetNotFound = errors.New("target not found")
	// ErrNotADirectory reports that the traversal target exists but is not a directory.
	ErrNotADirectory = errors.New("target is not a directory")
)
