package domain

import "errors"

var (
	// ErrStorageUnavailable wraps transient or permanent remote failures.
	// Surfaced to the user, never retried automatically.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrNotFound means the object vanished between listing and access,
	// usually because another session moved it.
	ErrNotFound = errors.New("object not found")

	// ErrMoveConflict means the destination folder already holds a file with
	// the same name.
	ErrMoveConflict = errors.New("destination already has a file with this name")

	// ErrUnknownLabel means a label outside the closed {boo, simba, unclear}
	// set reached a folder lookup.
	ErrUnknownLabel = errors.New("unknown label")

	// ErrNothingToUndo means there is no previous tag in this session, or it
	// was already undone.
	ErrNothingToUndo = errors.New("nothing to undo")
)
