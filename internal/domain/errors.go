package domain

import "errors"

var (
	ErrHouseholdNotFound = errors.New("household not found")
	ErrListNotFound      = errors.New("list not found")
	ErrItemOutOfRange    = errors.New("item index out of range")
	ErrInvalidInput      = errors.New("invalid input")
	ErrStorage           = errors.New("storage error")
)
