package domain

import "errors"

var (
	ErrNotFound            = errors.New("not found")
	ErrInvalidInput        = errors.New("invalid input")
	ErrStorageUnavailable  = errors.New("storage unavailable")
	ErrWriteFailure        = errors.New("write failure")
	ErrArchiveFailure      = errors.New("archive failure")
	ErrLocationUnavailable = errors.New("location unavailable")
)
