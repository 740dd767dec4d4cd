package store

import "errors"

var (
	ErrNotFound           = errors.New("food entry not found")
	ErrInvalidInput       = errors.New("invalid food entry")
	ErrSnapshotInProgress = errors.New("snapshot generation already in progress")
)
