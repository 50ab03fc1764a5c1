package rental

import "errors"

var (
	ErrInvalidRequest    = errors.New("invalid_request")
	ErrInvalidDates      = errors.New("invalid_dates")
	ErrInvalidStatus     = errors.New("invalid_status")
	ErrEquipmentNotFound = errors.New("equipment_not_found")
	ErrOutOfStock        = errors.New("out_of_stock")
	ErrNotFound          = errors.New("rental_not_found")
	ErrAlreadyReturned   = errors.New("already_returned")
)
