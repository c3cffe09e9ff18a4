package domain

import "errors"

var (
	ErrNotFound             = errors.New("not found")
	ErrDecodeFailure        = errors.New("invalid or corrupt code")
	ErrIntegrityMismatch    = errors.New("integrity mismatch")
	ErrStateConflict        = errors.New("entry state conflict")
	ErrNotApproved          = errors.New("not approved")
	ErrSeatsTaken           = errors.New("seats not available")
	ErrInsufficientCapacity = errors.New("not enough capacity")
	ErrInvalidInput         = errors.New("invalid input")
	ErrUnauthorized         = errors.New("unauthorized")
	ErrForbidden            = errors.New("forbidden")
	ErrAlreadyExists        = errors.New("already exists")
)
