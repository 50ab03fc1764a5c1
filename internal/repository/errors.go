package repository

import "errors"

var (
	ErrNotFound        = errors.New("record not found")
	ErrOutOfStock      = errors.New("equipment out of stock")
	ErrAlreadyReturned = errors.New("rental already returned")
	ErrInUse           = errors.New("record is still referenced")
	ErrInvalidCounts   = errors.New("available count must be within [0, total count]")
)
