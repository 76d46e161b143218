package parking

import "github.com/cockroachdb/errors"

var (
	ErrInvalidConfiguration = errors.New("invalid parking lot configuration")
	ErrInvalidInput         = errors.New("invalid input")
	ErrLotFull              = errors.New("parking lot is full")
	ErrSlotNotFound         = errors.New("slot not found")
	// ErrAlreadyParked is returned instead of a ticket when the car's
	// registration number already occupies a slot.
	ErrAlreadyParked = errors.New("car is already parked")
)
