package model

import "errors"

// Domain errors shared across services and mapped to HTTP codes in handlers.
var (
	ErrValidation       = errors.New("validation failed")
	ErrNotFound         = errors.New("not found")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrInvalidCode      = errors.New("invalid verification code")
	ErrOutOfSequence    = errors.New("step out of sequence")
	ErrAlreadyCompleted = errors.New("onboarding already completed")
)
