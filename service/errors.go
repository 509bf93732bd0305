// Package service implements registration, session lifecycle and
// directory operations.
package service

import (
	"errors"
	"fmt"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrUserExists      = errors.New("user already exists")
	ErrInvalidPassword = errors.New("invalid password")
	ErrSessionNotFound = errors.New("session not found")
)

// ValidationError names the offending field so the boundary can surface
// it alongside the explanation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

const (
	genderReason    = "Gender can only be male or female."
	bloodTypeReason = "Blood type can only be onegative, opositive, anegative, apositive, bnegative, bpositive, abnegative, abpositive."
	dateReason      = "Date can be in the format of yyyy-MM-dd."
)
