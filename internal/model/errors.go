package model

import "errors"

var (
	ErrNotFound            = errors.New("not found")
	ErrConstraintViolation = errors.New("constraint violation")
	ErrInsufficientStock   = errors.New("insufficient stock")
	// ErrBusy is returned when a product lock could not be acquired in time.
	ErrBusy = errors.New("system busy, please try again later")
)
