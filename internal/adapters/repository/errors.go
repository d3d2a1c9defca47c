package repository

import "errors"

// Sentinel kinds for history persistence errors.
var (
	ErrCorruptSnapshot = errors.New("corrupt history snapshot")
	ErrSaveFailed      = errors.New("history save failed")
)
