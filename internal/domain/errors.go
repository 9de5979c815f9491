package domain

import "errors"

// Sentinel errors returned by repositories and usecases. The HTTP layer maps
// these to status codes; no SQL or driver detail crosses this boundary.
var (
	ErrNotFound           = errors.New("resource not found")
	ErrAlreadyBooked      = errors.New("user already has an active booking for this instance")
	ErrClassFull          = errors.New("class is at full capacity")
	ErrSlotTaken          = errors.New("private session slot is already taken")
	ErrInsufficientCredit = errors.New("insufficient credit balance")
	ErrInvalidState       = errors.New("operation not valid in current state")
)
