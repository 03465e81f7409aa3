package checklist

import "errors"

var (
	// ErrUnknownField is returned when Set receives a field it does not own.
	ErrUnknownField = errors.New("checklist: unknown field")
	// ErrInvalidValue is returned when a field value has the wrong type or shape.
	ErrInvalidValue = errors.New("checklist: invalid field value")
	// ErrCabinetIndex is returned for an out-of-range cabinet index.
	ErrCabinetIndex = errors.New("checklist: cabinet index out of range")
	// ErrBankIndex is returned for an out-of-range battery bank index.
	ErrBankIndex = errors.New("checklist: battery bank index out of range")
	// ErrCabinetCount is returned for a cabinet count outside 1..8.
	ErrCabinetCount = errors.New("checklist: cabinet count out of range")
)
