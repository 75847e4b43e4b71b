package core

import (
	"errors"
)

var (
	// ErrValidation covers empty or duplicate input at registration.
	ErrValidation = errors.New("invalid input")
	// ErrIncorrect is returned for an unknown username or a wrong password.
	// Callers must not be able to tell the two apart.
	ErrIncorrect = errors.New("incorrect credentials")
	// ErrTwoFactor is returned when the password matched but the secondary
	// token did not.
	ErrTwoFactor = errors.New("two-factor failure")
	ErrNotFound  = errors.New("record not found")
	ErrForbidden = errors.New("not authorized for this record")
	// ErrNoOpenSession means a logout/close found no open login record.
	ErrNoOpenSession = errors.New("no open login session")
	// ErrTargetRequired means an admin listed history without naming a user.
	ErrTargetRequired = errors.New("target username required")
	// ErrGateway covers spell-checker failures: non-zero exit, unreachable
	// binary, or timeout.
	ErrGateway = errors.New("spell-check gateway failure")
)
