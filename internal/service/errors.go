package service

import (
	"errors"
	"fmt"
)

var (
	ErrValidation       = errors.New("validation failed")
	ErrInvalidTimeRange = fmt.Errorf("%w: end time must be after start time", ErrValidation)
	ErrMissingSelection = fmt.Errorf("%w: please select a teacher and an available slot", ErrValidation)
	ErrMissingRecipient = fmt.Errorf("%w: please select a teacher", ErrValidation)

	ErrForbidden = errors.New("forbidden")
	ErrNotFound  = errors.New("not found")

	ErrSlotNotAvailable  = errors.New("slot is not available")
	ErrSlotInUse         = errors.New("slot has an active appointment")
	ErrInvalidTransition = errors.New("appointment status transition is not allowed")

	ErrUserRecordNotFound = errors.New("User data not found. Please contact admin.")
	ErrNotApproved        = errors.New("Your account is not yet approved by the admin. Please wait.")
)

// isDomainError отличает ожидаемые отказы от сбоев хранилища
func isDomainError(err error) bool {
	for _, target := range []error{
		ErrValidation, ErrForbidden, ErrNotFound,
		ErrSlotNotAvailable, ErrSlotInUse, ErrInvalidTransition,
		ErrUserRecordNotFound, ErrNotApproved,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
